// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

var webCmd = newSearchCmd(types.CategoryWeb, "web QUERY...", "Search the web across every configured web provider",
	`Web queries brave, tavily and searxng concurrently. Results are deduplicated
by normalized URL and ranked by provider weight and per-provider rank.`)

var papersCmd = newSearchCmd(types.CategoryPaper, "papers QUERY...", "Search academic papers across every configured paper provider",
	`Papers queries arXiv, PubMed, Semantic Scholar and OpenAlex concurrently.
Results are deduplicated by DOI, or by title similarity when no DOI is
shared, and ranked by provider weight and per-provider rank.

Use --save to write the query and results to a YAML file that show can
render later, and --format csl to export CSL-YAML for Pandoc and citation managers.`)

func newSearchCmd(cat types.Category, use, short, long string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd, report.FormatText, report.FormatJSON, report.FormatCSL)
			if err != nil {
				return err
			}
			names, _ := cmd.Flags().GetStringSlice("providers")
			maxResults, _ := cmd.Flags().GetInt("max-results")
			save, _ := cmd.Flags().GetString("save")

			req := types.SearchRequest{
				Query:      strings.Join(args, " "),
				Providers:  names,
				MaxResults: maxResults,
			}
			var env types.Envelope[types.SearchResponse]
			if cat == types.CategoryPaper {
				env = state.engine.SearchPapers(cmd.Context(), req)
			} else {
				env = state.engine.SearchWeb(cmd.Context(), req)
			}

			if env.Success {
				record(cmd, cat, req, *env.Data)
			}
			if save != "" && env.Success {
				if err := report.WriteQueryFile(save, cat, req, *env.Data); err != nil {
					return err
				}
				state.logger.Info("saved query file", zap.String("path", save))
			}
			return renderSearch(cmd.OutOrStdout(), format, env)
		},
	}
	cmd.Flags().StringSlice("providers", nil, "providers to query (default: every configured provider)")
	cmd.Flags().Int("max-results", types.DefaultMaxResults, "maximum number of results to return")
	cmd.Flags().String("save", "", "write the query and results to this YAML file")
	addFormatFlag(cmd, report.FormatText, report.FormatJSON, report.FormatCSL)
	return cmd
}

// record appends a successful search to the search log. Failures are
// logged and never fail the search.
func record(cmd *cobra.Command, cat types.Category, req types.SearchRequest, resp types.SearchResponse) {
	store, err := state.historyStore()
	if err != nil {
		state.logger.Warn("opening search history", zap.Error(err))
		return
	}
	if store == nil {
		return
	}
	id, err := store.Record(cmd.Context(), cat, req, resp)
	if err != nil {
		state.logger.Warn("recording search", zap.Error(err))
		return
	}
	state.logger.Debug("recorded search", zap.Int64("history_id", id))
}

func init() {
	rootCmd.AddCommand(webCmd, papersCmd)
}
