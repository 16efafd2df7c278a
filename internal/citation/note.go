package citation

import (
	"fmt"
	"html"
	"strings"

	"github.com/pverm/zotpdb/internal/rcsb"
)

// BuildArticleNote renders the research note for an article citation.
// Returns "" when there is nothing worth noting. All interpolated values
// are HTML-escaped.
func BuildArticleNote(researchContext, summary, sourceURL string) string {
	if researchContext == "" && summary == "" && sourceURL == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("<h2>Research Note</h2>\n")
	if researchContext != "" {
		fmt.Fprintf(&b, "<p><b>Context:</b> %s</p>\n", html.EscapeString(researchContext))
	}
	if summary != "" {
		fmt.Fprintf(&b, "<p><b>Summary:</b> %s</p>\n", html.EscapeString(summary))
	}
	if sourceURL != "" {
		escaped := html.EscapeString(sourceURL)
		fmt.Fprintf(&b, "<p><b>Source:</b> <a href=\"%s\">%s</a></p>\n", escaped, escaped)
	}
	return b.String()
}

// BuildStructureNote renders the experimental-details note for a PDB
// entry. Absent attributes are omitted rather than rendered blank.
func BuildStructureNote(e *rcsb.Entry) string {
	var b strings.Builder
	b.WriteString("<h2>Structure Details</h2>\n<ul>\n")
	fmt.Fprintf(&b, "<li><b>PDB ID:</b> %s</li>\n", html.EscapeString(e.ID))
	if e.Method != "" {
		fmt.Fprintf(&b, "<li><b>Method:</b> %s</li>\n", html.EscapeString(e.Method))
	}
	if e.Resolution > 0 {
		fmt.Fprintf(&b, "<li><b>Resolution:</b> %.2f Å</li>\n", e.Resolution)
	}
	if e.Organism != "" {
		fmt.Fprintf(&b, "<li><b>Organism:</b> %s</li>\n", html.EscapeString(e.Organism))
	}
	if e.Keywords != "" {
		fmt.Fprintf(&b, "<li><b>Keywords:</b> %s</li>\n", html.EscapeString(e.Keywords))
	}
	if e.Released != "" {
		fmt.Fprintf(&b, "<li><b>Released:</b> %s</li>\n", html.EscapeString(e.Released))
	}
	structureURL := html.EscapeString(StructureURL(e.ID))
	fmt.Fprintf(&b, "<li><b>Source:</b> <a href=\"%s\">%s</a></li>\n", structureURL, structureURL)
	b.WriteString("</ul>\n")
	return b.String()
}
