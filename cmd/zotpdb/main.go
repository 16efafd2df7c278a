// Package main provides the zotpdb CLI entry point.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pverm/zotpdb/internal/citation"
	"github.com/pverm/zotpdb/internal/config"
	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/zotero"
)

// Version is set at build time via ldflags
var Version = "dev"

// jsonOutput controls whether to emit JSON instead of human-readable text
var jsonOutput bool

// verbose lifts logging to debug level
var verbose bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		// This ensures Cobra errors (like missing required flags) are visible
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "zotpdb",
	Short: "Save PDB structures and articles as Zotero citations",
	Long: `zotpdb saves citations into a Zotero library from the command line.

Core features:
  - Fetch metadata and structure files for PDB entries from RCSB
  - Save structure citations with experimental details and the file attached
  - Save article citations with research notes and PDF attachments
  - Search, inspect, and download what the library already holds
  - HTTP tool surface for AI agent integration (zotpdb serve)

Credentials come from ZOTERO_API_KEY and ZOTERO_LIBRARY_ID, set in the
environment, a .env file, or ~/.config/zotpdb/config.yml.

Commands print human-readable text; use --json for agent consumption.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// mustLibraryClient builds the Zotero client from configuration, exits
// when credentials are missing.
func mustLibraryClient() *zotero.Client {
	apiKey, libraryID, err := config.Credentials()
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return zotero.NewClient(libraryID,
		zotero.WithAPIKey(apiKey),
		zotero.WithLibraryType(config.GetLibraryType()),
	)
}

// mustService wires the citation service over the configured clients.
func mustService() *citation.Service {
	zot := mustLibraryClient()
	return citation.NewService(zot, rcsb.NewClient(), citation.NewResolver(zot), config.GetDefaultCollection())
}
