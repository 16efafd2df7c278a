package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pverm/zotpdb/internal/zotero"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", zotero.DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the Zotero library",
	Long: `Search the Zotero library by title, creator, and year.

Examples:
  zotpdb search "hemoglobin"
  zotpdb search "Vaswani 2017" --limit 5 --json`,
	Args: cobra.ExactArgs(1),
	Run:  runSearch,
}

// searchResult is one row of search output.
type searchResult struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	ItemType string `json:"itemType"`
	Date     string `json:"date,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) {
	client := mustLibraryClient()

	items, err := client.SearchItems(cmd.Context(), args[0], searchLimit)
	if err != nil {
		exitWithError(exitCodeFor(err), "searching: %v", err)
	}

	results := make([]searchResult, 0, len(items))
	for _, it := range items {
		results = append(results, searchResult{
			Key:      it.Key,
			Title:    it.Data.Title,
			ItemType: it.Data.ItemType,
			Date:     it.Data.Date,
		})
	}

	if jsonOutput {
		outputJSON(results)
		return
	}

	if len(results) == 0 {
		fmt.Println("No items found")
		return
	}
	fmt.Printf("Found %d items:\n\n", len(results))
	for i, r := range results {
		fmt.Printf("[%d] %s\n", i+1, r.Key)
		fmt.Printf("    %s\n", truncateString(r.Title, SearchTitleMaxLen))
		if r.Date != "" {
			fmt.Printf("    %s (%s)\n", r.ItemType, r.Date)
		} else {
			fmt.Printf("    %s\n", r.ItemType)
		}
		fmt.Println()
	}
}
