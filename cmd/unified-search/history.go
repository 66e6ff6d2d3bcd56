// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/history"
	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

var errHistoryDisabled = errors.New("search history is disabled; set history_db in the config file")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List, show and search earlier web and paper searches",
	Long: `History reads the search log kept in the SQLite file named by history_db.
Every successful web or papers search is recorded there when it is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if format == report.FormatJSON {
			return report.JSON(w, entries)
		}
		fmt.Fprintf(w, "%-5s  %-20s  %-5s  %-7s  %s\n", "ID", "When", "Kind", "Results", "Query")
		fmt.Fprintln(w, strings.Repeat("-", 80))
		for _, e := range entries {
			fmt.Fprintf(w, "%-5d  %-20s  %-5s  %-7d  %s\n",
				e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04:05"), e.Category, e.Total, e.Query)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Render a recorded search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON, report.FormatCSL)
		if err != nil {
			return err
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid search id %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		_, resp, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}
		return renderSearch(cmd.OutOrStdout(), format, types.OK(resp))
	},
}

var historyFindCmd = &cobra.Command{
	Use:   "find TEXT...",
	Short: "Find recorded results whose title, snippet or URL contains TEXT",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		hits, err := store.Find(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if format == report.FormatJSON {
			return report.JSON(w, hits)
		}
		if len(hits) == 0 {
			fmt.Fprintln(w, "No recorded results match.")
			return nil
		}
		for _, h := range hits {
			fmt.Fprintf(w, "#%d rank %d (%q)\n  %s\n  %s\n", h.SearchID, h.Rank, h.Query, h.Result.Title, h.Result.URL)
		}
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Remove a recorded search",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid search id %q", args[0])
		}
		store, err := openHistory()
		if err != nil {
			return err
		}
		return store.Delete(cmd.Context(), id)
	},
}

func openHistory() (*history.Store, error) {
	store, err := state.historyStore()
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, errHistoryDisabled
	}
	return store, nil
}

func init() {
	historyCmd.Flags().Int("limit", history.DefaultLimit, "number of searches to list")
	historyFindCmd.Flags().Int("limit", history.DefaultLimit, "number of results to list")
	addFormatFlag(historyCmd, report.FormatText, report.FormatJSON)
	addFormatFlag(historyShowCmd, report.FormatText, report.FormatJSON, report.FormatCSL)
	addFormatFlag(historyFindCmd, report.FormatText, report.FormatJSON)

	historyCmd.AddCommand(historyShowCmd, historyFindCmd, historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}
