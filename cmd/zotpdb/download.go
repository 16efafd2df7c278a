package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(downloadCmd)
}

var downloadCmd = &cobra.Command{
	Use:   "download <key> <path>",
	Short: "Download an attachment's file",
	Long: `Download an attachment's file content to a local path.

Examples:
  zotpdb download ABCD2345 paper.pdf
  zotpdb download ABCD2345 4hhb.pdb --json`,
	Args: cobra.ExactArgs(2),
	Run:  runDownload,
}

func runDownload(cmd *cobra.Command, args []string) {
	key, dest := args[0], args[1]
	client := mustLibraryClient()

	data, err := client.DownloadFile(cmd.Context(), key)
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}
	if err := os.WriteFile(dest, data, 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", dest, err)
	}

	if jsonOutput {
		outputJSON(map[string]any{"key": key, "path": dest, "size": len(data)})
		return
	}
	fmt.Printf("Downloaded %s to %s (%s)\n", key, dest, formatBytes(int64(len(data))))
}
