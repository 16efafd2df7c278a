package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pverm/zotpdb/internal/config"
	"github.com/pverm/zotpdb/internal/rcsb"
	"github.com/pverm/zotpdb/internal/tools"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default "+config.DefaultListenAddr+")")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the citation tools over HTTP",
	Long: `Serve the tool set over HTTP for agent frontends.

Endpoints:
  GET  /healthz       liveness check
  GET  /tools         tool descriptors with input schemas
  POST /tools/:name   invoke a tool with a JSON argument object

Tool errors come back as 200 responses with an "isError" flag so the
calling agent can relay them; the process keeps serving.

Examples:
  zotpdb serve
  zotpdb serve --addr :9000`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	client := mustLibraryClient()
	svc := mustService()

	registry := tools.DefaultRegistry(tools.Deps{
		Library:    client,
		Citations:  svc,
		Structures: rcsb.NewClient(),
	})

	addr := serveAddr
	if addr == "" {
		addr = config.GetListenAddr()
	}

	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := tools.NewRouter(registry)

	slog.Info("serving citation tools", "addr", addr, "tools", len(registry.List()))
	if err := router.Run(addr); err != nil {
		exitWithError(ExitError, "server: %v", err)
	}
}
