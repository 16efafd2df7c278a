package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/docker/go-units"

	"github.com/pverm/zotpdb/internal/citation"
	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/zotero"
)

// Title truncation length for search result summaries.
const SearchTitleMaxLen = 70

// ErrorResponse is the JSON error shape printed on failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError prints an error in the active output mode and exits.
// Text mode prints "Error: msg"; JSON mode a single-line error object.
// Both go to stderr so stdout stays a clean data channel.
func exitWithError(code int, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if jsonOutput {
		json.NewEncoder(os.Stderr).Encode(ErrorResponse{Error: msg})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(code)
}

// exitCodeFor maps an error onto the CLI exit code taxonomy.
func exitCodeFor(err error) int {
	switch {
	case rcsb.IsNotFound(err) || zotero.IsNotFound(err):
		return ExitNotFound
	case errors.Is(err, citation.ErrValidation) || errors.Is(err, rcsb.ErrInvalidID):
		return ExitValidation
	default:
		return ExitError
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// formatBytes formats a byte count for text output.
func formatBytes(n int64) string {
	return units.HumanSize(float64(n))
}

// formatAuthors formats structure authors as "Given Family" joined with
// commas, with "et al." past maxCount.
func formatAuthors(authors []rcsb.Author, maxCount int) string {
	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		if a.Given != "" {
			names = append(names, a.Given+" "+a.Family)
		} else {
			names = append(names, a.Family)
		}
	}
	return strings.Join(names, ", ")
}

// printResult prints a citation write result in text mode, warnings last.
func printResult(res *citation.Result) {
	fmt.Printf("Saved: %s\n", res.Title)
	fmt.Printf("  Item key:   %s\n", res.ItemKey)
	if res.NoteKey != "" {
		fmt.Printf("  Note key:   %s\n", res.NoteKey)
	}
	if res.AttachmentKey != "" {
		fmt.Printf("  Attachment: %s (%s)\n", res.AttachmentKey, formatBytes(res.FileSize))
	}
	if res.Collection != "" {
		fmt.Printf("  Collection: %s\n", res.Collection)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  Warning: %s\n", w)
	}
}
