// Package citation maps source metadata onto Zotero items and
// orchestrates writing citations with their notes and attachments.
package citation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/zotero"
)

// ErrValidation indicates caller input that cannot become a citation.
var ErrValidation = errors.New("validation error")

// Common name suffixes to keep with the last name.
var nameSuffixes = map[string]bool{
	"jr":   true,
	"jr.":  true,
	"sr":   true,
	"sr.":  true,
	"ii":   true,
	"iii":  true,
	"iv":   true,
	"v":    true,
	"phd":  true,
	"ph.d": true,
	"md":   true,
	"m.d":  true,
}

// ArticleInput carries caller-supplied fields for an article citation.
// Only Title is required.
type ArticleInput struct {
	ItemType    string
	Title       string
	Authors     []string
	Abstract    string
	Publication string
	Date        string
	DOI         string
	URL         string
	Volume      string
	Issue       string
	Pages       string
	Language    string
	Extra       string
	Tags        []string
	Keywords    []string
	Collection  string // collection name, resolved to a key at write time
	Collections []any  // pre-resolved collection refs: keys or objects
	PDFPath     string
	PDFURL      string
	Context     string // research context for the note
	Summary     string // summary for the note
}

// BuildArticleItem maps caller bibliographic fields onto a Zotero item.
// Empty inputs are dropped so no blank values reach the wire.
func BuildArticleItem(in ArticleInput) (zotero.ItemData, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return zotero.ItemData{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	itemType := in.ItemType
	if itemType == "" {
		itemType = "journalArticle"
	}

	return zotero.ItemData{
		ItemType:         itemType,
		Title:            title,
		AbstractNote:     in.Abstract,
		PublicationTitle: in.Publication,
		Volume:           in.Volume,
		Issue:            in.Issue,
		Pages:            in.Pages,
		Date:             in.Date,
		DOI:              in.DOI,
		URL:              in.URL,
		Language:         in.Language,
		Extra:            in.Extra,
		Creators:         mapCreators(in.Authors),
		Tags:             MergeTags(in.Tags, in.Keywords),
	}, nil
}

// BuildStructureItem maps a PDB entry onto a Zotero journal article.
// Entries published without a journal are attributed to the Protein Data
// Bank itself, and entries without a citation DOI get the archive's
// per-entry DOI.
func BuildStructureItem(e *rcsb.Entry) zotero.ItemData {
	journal := e.Journal
	if journal == "" {
		journal = "Protein Data Bank"
	}

	var date string
	if e.Year > 0 {
		date = strconv.Itoa(e.Year)
	} else if e.Released != "" {
		date = e.Released
	}

	doi := e.DOI
	if doi == "" {
		doi = fmt.Sprintf("10.2210/pdb%s/pdb", strings.ToLower(e.ID))
	}

	creators := make([]zotero.Creator, 0, len(e.Authors))
	for _, a := range e.Authors {
		creators = append(creators, zotero.Creator{
			CreatorType: "author",
			FirstName:   a.Given,
			LastName:    a.Family,
		})
	}

	tags := []zotero.Tag{{Tag: "Protein Structure"}, {Tag: "PDB"}}
	if e.Method != "" {
		tags = append(tags, zotero.Tag{Tag: strings.ToLower(e.Method)})
	}

	var extra []string
	extra = append(extra, "PDB ID: "+e.ID)
	if e.Method != "" {
		extra = append(extra, "Method: "+e.Method)
	}
	if e.Resolution > 0 {
		extra = append(extra, fmt.Sprintf("Resolution: %.2f Å", e.Resolution))
	}
	if e.Organism != "" {
		extra = append(extra, "Organism: "+e.Organism)
	}

	return zotero.ItemData{
		ItemType:         "journalArticle",
		Title:            e.Title,
		PublicationTitle: journal,
		Date:             date,
		DOI:              doi,
		URL:              StructureURL(e.ID),
		Extra:            strings.Join(extra, "\n"),
		Creators:         creators,
		Tags:             tags,
	}
}

// StructureURL returns the RCSB page for a PDB entry.
func StructureURL(id string) string {
	return "https://www.rcsb.org/structure/" + id
}

// MergeTags combines explicit tags and source keywords into one list,
// dropping blanks and keeping the first occurrence of each tag.
func MergeTags(tags, keywords []string) []zotero.Tag {
	seen := make(map[string]bool)
	var merged []zotero.Tag
	for _, t := range append(append([]string{}, tags...), keywords...) {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		merged = append(merged, zotero.Tag{Tag: t})
	}
	return merged
}

// NormalizeCollectionRefs reduces mixed collection references to bare
// keys. Strings pass through; objects contribute their "key" entry.
// Already-bare input comes back unchanged, so normalizing twice is safe.
func NormalizeCollectionRefs(refs []any) []string {
	var keys []string
	for _, ref := range refs {
		switch v := ref.(type) {
		case string:
			if v != "" {
				keys = append(keys, v)
			}
		case map[string]any:
			if key, ok := v["key"].(string); ok && key != "" {
				keys = append(keys, key)
			}
		}
	}
	return keys
}

// mapCreators converts author names to Zotero creators. Names that
// reduce to nothing are dropped.
func mapCreators(names []string) []zotero.Creator {
	creators := make([]zotero.Creator, 0, len(names))
	for _, name := range names {
		first, last := splitAuthorName(name)
		if last == "" {
			continue
		}
		creators = append(creators, zotero.Creator{
			CreatorType: "author",
			FirstName:   first,
			LastName:    last,
		})
	}
	return creators
}

// splitAuthorName splits a full name into first and last name.
// Handles common suffixes (Jr, Sr, II, III, IV, PhD, MD).
//
// Known limitations:
// - Multi-part surnames (von Neumann, van der Waals) split incorrectly
// - Non-Western name formats may not be handled correctly
// - Middle names are included in the first name
func splitAuthorName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}

	parts := strings.Fields(name)
	if len(parts) == 1 {
		// Single name (e.g., "Madonna")
		return "", parts[0]
	}

	// Check if the last part is a suffix
	lastPart := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[lastPart] && len(parts) > 2 {
		// Keep suffix with last name
		last = parts[len(parts)-2] + " " + parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-2], " ")
	} else {
		// Standard split: last part is last name
		last = parts[len(parts)-1]
		first = strings.Join(parts[:len(parts)-1], " ")
	}

	return first, last
}
