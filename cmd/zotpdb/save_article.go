package main

import (
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pverm/zotpdb/internal/citation"
	"github.com/pverm/zotpdb/internal/pdf"
)

var articleFlags struct {
	title       string
	url         string
	authors     string
	abstract    string
	publication string
	date        string
	doi         string
	volume      string
	issue       string
	pages       string
	language    string
	extra       string
	tags        string
	keywords    string
	collection  string
	pdfPath     string
	pdfURL      string
	context     string
	summary     string
}

func init() {
	f := saveArticleCmd.Flags()
	f.StringVar(&articleFlags.title, "title", "", "Article title (required)")
	f.StringVar(&articleFlags.url, "url", "", "Source URL (required)")
	f.StringVar(&articleFlags.authors, "authors", "", "Comma-separated author names")
	f.StringVar(&articleFlags.abstract, "abstract", "", "Abstract text")
	f.StringVar(&articleFlags.publication, "publication", "", "Journal or publication title")
	f.StringVar(&articleFlags.date, "date", "", "Publication date")
	f.StringVar(&articleFlags.doi, "doi", "", "DOI (extracted from --pdf when omitted)")
	f.StringVar(&articleFlags.volume, "volume", "", "Volume")
	f.StringVar(&articleFlags.issue, "issue", "", "Issue")
	f.StringVar(&articleFlags.pages, "pages", "", "Pages")
	f.StringVar(&articleFlags.language, "language", "", "Language")
	f.StringVar(&articleFlags.extra, "extra", "", "Extra field text")
	f.StringVar(&articleFlags.tags, "tags", "", "Comma-separated tags")
	f.StringVar(&articleFlags.keywords, "keywords", "", "Comma-separated keywords, merged with tags")
	f.StringVar(&articleFlags.collection, "collection", "", "Collection name, created if missing")
	f.StringVar(&articleFlags.pdfPath, "pdf", "", "Local PDF file to attach")
	f.StringVar(&articleFlags.pdfURL, "pdf-url", "", "Remote PDF to fetch and attach")
	f.StringVar(&articleFlags.context, "context", "", "Research context for the note")
	f.StringVar(&articleFlags.summary, "summary", "", "Summary for the note")
	saveArticleCmd.MarkFlagRequired("title")
	saveArticleCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(saveArticleCmd)
}

var saveArticleCmd = &cobra.Command{
	Use:   "save-article",
	Short: "Save an article citation to Zotero",
	Long: `Save an article citation to the Zotero library.

A research note is created when --context, --summary, or --url carry
content. A PDF given with --pdf or --pdf-url is attached; when --doi is
omitted and --pdf names a local file, the DOI is read from the PDF text
if a publisher printed one.

Examples:
  zotpdb save-article --title "Attention Is All You Need" \
    --url https://arxiv.org/abs/1706.03762 \
    --authors "Ashish Vaswani, Noam Shazeer" --date 2017
  zotpdb save-article --title T --url U --pdf paper.pdf --collection "To Read"`,
	Args: cobra.NoArgs,
	Run:  runSaveArticle,
}

func runSaveArticle(cmd *cobra.Command, args []string) {
	svc := mustService()

	doi := articleFlags.doi
	if doi == "" && articleFlags.pdfPath != "" {
		found, err := pdf.ExtractDOI(articleFlags.pdfPath)
		if err != nil {
			slog.Debug("DOI extraction failed", "path", articleFlags.pdfPath, "error", err)
		} else if found != "" {
			slog.Debug("DOI extracted from PDF", "doi", found)
			doi = found
		}
	}

	res, err := svc.CreateCitation(cmd.Context(), citation.ArticleInput{
		Title:       articleFlags.title,
		URL:         articleFlags.url,
		Authors:     splitCommaList(articleFlags.authors),
		Abstract:    articleFlags.abstract,
		Publication: articleFlags.publication,
		Date:        articleFlags.date,
		DOI:         doi,
		Volume:      articleFlags.volume,
		Issue:       articleFlags.issue,
		Pages:       articleFlags.pages,
		Language:    articleFlags.language,
		Extra:       articleFlags.extra,
		Tags:        splitCommaList(articleFlags.tags),
		Keywords:    splitCommaList(articleFlags.keywords),
		Collection:  articleFlags.collection,
		PDFPath:     articleFlags.pdfPath,
		PDFURL:      articleFlags.pdfURL,
		Context:     articleFlags.context,
		Summary:     articleFlags.summary,
	})
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if jsonOutput {
		outputJSON(res)
		return
	}
	printResult(res)
}

// splitCommaList splits a comma-separated flag value, dropping blanks.
func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
