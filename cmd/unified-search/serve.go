// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/mcpserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the engine as MCP tools",
	Long: `Serve exposes web_search, paper_search, paper_download, paper_read,
content_extract, content_crawl, content_map and list_providers as Model
Context Protocol tools. By default it speaks MCP over stdio; with --http it
serves streamable HTTP at /mcp together with /healthz and /metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("http")
		origins, _ := cmd.Flags().GetStringSlice("origins")

		mcpserver.Version = version
		opts := []mcpserver.Option{
			mcpserver.WithLogger(state.logger),
			mcpserver.WithMetricsHandler(state.metrics.Handler()),
		}
		if len(origins) > 0 {
			opts = append(opts, mcpserver.WithAllowedOrigins(origins...))
		}
		srv, err := mcpserver.New(state.engine, opts...)
		if err != nil {
			return err
		}
		if addr == "" {
			return srv.Run(cmd.Context())
		}
		return srv.RunHTTP(cmd.Context(), addr)
	},
}

func init() {
	serveCmd.Flags().String("http", "", "serve streamable HTTP on this address instead of stdio (e.g. :8080)")
	serveCmd.Flags().StringSlice("origins", nil, "CORS origins allowed on the HTTP transport (default: any)")
	rootCmd.AddCommand(serveCmd)
}
