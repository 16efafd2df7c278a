package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show a library item with its notes and attachments",
	Long: `Show one library item and its child notes and attachments.

Examples:
  zotpdb get ABCD2345
  zotpdb get ABCD2345 --json`,
	Args: cobra.ExactArgs(1),
	Run:  runGet,
}

func runGet(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	client := mustLibraryClient()

	item, err := client.Item(ctx, args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	children, err := client.Children(ctx, args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "fetching children: %v", err)
	}

	if jsonOutput {
		outputJSON(map[string]any{"item": item, "children": children})
		return
	}

	fmt.Printf("%s: %s\n", item.Key, item.Data.Title)
	fmt.Printf("  Type:    %s\n", item.Data.ItemType)
	if item.Data.PublicationTitle != "" {
		fmt.Printf("  Journal: %s\n", item.Data.PublicationTitle)
	}
	if item.Data.Date != "" {
		fmt.Printf("  Date:    %s\n", item.Data.Date)
	}
	if item.Data.DOI != "" {
		fmt.Printf("  DOI:     %s\n", item.Data.DOI)
	}
	if item.Data.URL != "" {
		fmt.Printf("  URL:     %s\n", item.Data.URL)
	}
	if len(children) > 0 {
		fmt.Printf("  Children:\n")
		for _, child := range children {
			switch child.Data.ItemType {
			case "attachment":
				fmt.Printf("    %s  attachment  %s\n", child.Key, child.Data.Filename)
			case "note":
				fmt.Printf("    %s  note\n", child.Key)
			default:
				fmt.Printf("    %s  %s\n", child.Key, child.Data.ItemType)
			}
		}
	}
}
