package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(collectionsCmd)
}

var collectionsCmd = &cobra.Command{
	Use:   "collections",
	Short: "List the library's collections",
	Long: `List the collections in the Zotero library.

Examples:
  zotpdb collections
  zotpdb collections --json`,
	Args: cobra.NoArgs,
	Run:  runCollections,
}

func runCollections(cmd *cobra.Command, args []string) {
	client := mustLibraryClient()

	cols, err := client.Collections(cmd.Context())
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	if jsonOutput {
		outputJSON(cols)
		return
	}

	if len(cols) == 0 {
		fmt.Println("No collections")
		return
	}
	for _, col := range cols {
		fmt.Printf("%s  %s\n", col.Key, col.Name)
	}
}
