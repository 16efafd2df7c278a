package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pverm/zotpdb/internal/citation"
	"github.com/pverm/zotpdb/internal/rcsb"
)

var fetchStructureOutput string

func init() {
	fetchStructureCmd.Flags().StringVarP(&fetchStructureOutput, "output", "o", "", "Also download the structure file to this path")
	rootCmd.AddCommand(fetchStructureCmd)
}

var fetchStructureCmd = &cobra.Command{
	Use:   "fetch-structure <id>",
	Short: "Fetch PDB entry metadata from RCSB",
	Long: `Fetch metadata for a PDB entry from RCSB without saving anything.

With --output the structure file is downloaded as well.

Examples:
  zotpdb fetch-structure 4HHB
  zotpdb fetch-structure 4hhb --output 4hhb.pdb
  zotpdb fetch-structure 4HHB --json`,
	Args: cobra.ExactArgs(1),
	Run:  runFetchStructure,
}

func runFetchStructure(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	client := rcsb.NewClient()

	entry, err := client.Entry(ctx, args[0])
	if err != nil {
		exitWithError(exitCodeFor(err), "%v", err)
	}

	var fileSize int
	if fetchStructureOutput != "" {
		data, err := client.StructureFile(ctx, entry.ID)
		if err != nil {
			exitWithError(exitCodeFor(err), "downloading structure file: %v", err)
		}
		if err := os.WriteFile(fetchStructureOutput, data, 0644); err != nil {
			exitWithError(ExitError, "writing %s: %v", fetchStructureOutput, err)
		}
		fileSize = len(data)
	}

	if jsonOutput {
		out := map[string]any{"entry": entry, "url": citation.StructureURL(entry.ID)}
		if fetchStructureOutput != "" {
			out["output"] = fetchStructureOutput
			out["fileSize"] = fileSize
		}
		outputJSON(out)
		return
	}

	fmt.Printf("%s: %s\n", entry.ID, entry.Title)
	fmt.Printf("  Authors:    %s\n", formatAuthors(entry.Authors, 5))
	if entry.Method != "" {
		fmt.Printf("  Method:     %s\n", entry.Method)
	}
	if entry.Resolution > 0 {
		fmt.Printf("  Resolution: %.2f Å\n", entry.Resolution)
	}
	if entry.Organism != "" {
		fmt.Printf("  Organism:   %s\n", entry.Organism)
	}
	if entry.DOI != "" {
		fmt.Printf("  DOI:        %s\n", entry.DOI)
	}
	if entry.Released != "" {
		fmt.Printf("  Released:   %s\n", entry.Released)
	}
	fmt.Printf("  URL:        %s\n", citation.StructureURL(entry.ID))
	if fetchStructureOutput != "" {
		fmt.Printf("  File:       %s (%s)\n", fetchStructureOutput, formatBytes(int64(fileSize)))
	}
}
