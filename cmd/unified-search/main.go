// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the unified-search CLI. Every
// subcommand runs one engine operation; serve exposes the same operations
// as MCP tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/config"
	"github.com/pdiddy/unified-search/internal/convert"
	"github.com/pdiddy/unified-search/internal/history"
	"github.com/pdiddy/unified-search/internal/metrics"
	"github.com/pdiddy/unified-search/internal/providers"
	"github.com/pdiddy/unified-search/internal/search"
)

// version is set at build time via ldflags.
var version = "dev"

// app holds what PersistentPreRunE builds for the subcommands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	engine  *search.Engine
	history *history.Store
}

var state app

// rootCmd is the base command for the unified-search CLI.
var rootCmd = &cobra.Command{
	Use:   "unified-search",
	Short: "One query across many web, paper and content providers",
	Long: `unified-search fans a query out to every configured provider of a category
concurrently and returns one deduplicated, ranked list. A provider that fails
or times out is reported alongside the results instead of failing the search.

Web providers: brave, tavily, searxng.
Paper providers: arxiv, pubmed, semantic_scholar, openalex.
Content providers: tavily, readability.

Credentials are read from the environment, the credentials section of the
config file, or one file per key under .secrets/.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations["skipEngine"] == "true" {
			return nil
		}
		file, _ := cmd.Flags().GetString("config")
		return state.setup(file)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state.history != nil {
			_ = state.history.Close()
		}
		if state.logger != nil {
			_ = state.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file (default: ./unified-search.yaml or ~/.config/unified-search/config.yaml)")
}

// setup loads configuration and builds the engine with its collaborators.
func (a *app) setup(file string) error {
	cfg, err := config.Load(file, providers.Names()...)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Debug("using config file", zap.String("path", cfg.File))
	}

	lookup, err := cfg.Lookup(logger)
	if err != nil {
		return fmt.Errorf("loading secrets: %w", err)
	}
	reg, err := providers.NewRegistry(providers.Options{
		UserAgent: cfg.UserAgent,
		Lookup:    lookup,
		Settings:  cfg.Providers,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	m := metrics.New()
	a.cfg = cfg
	a.logger = logger
	a.metrics = m
	a.engine = search.New(reg,
		search.WithLogger(logger),
		search.WithMetrics(m),
		search.WithTextReader(convert.Default(logger)),
		search.WithDownloadDir(cfg.DownloadDir),
		search.WithDownloadTimeout(cfg.DownloadTimeout),
	)
	return nil
}

// historyStore opens the search log on first use. It returns nil when
// history_db is not configured.
func (a *app) historyStore() (*history.Store, error) {
	if a.history != nil || a.cfg.HistoryDB == "" {
		return a.history, nil
	}
	s, err := history.Open(a.cfg.HistoryDB)
	if err != nil {
		return nil, err
	}
	a.history = s
	return s, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
