// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract URL...",
	Short: "Extract the readable content of web pages",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := types.ExtractRequest{URLs: args}
		req.Provider, _ = f.GetString("provider")
		req.ExtractDepth, _ = f.GetString("depth")
		req.Format, _ = f.GetString("content-format")
		req.IncludeImages, _ = f.GetBool("images")
		req.IncludeFavicon, _ = f.GetBool("favicon")
		return renderContent(cmd.OutOrStdout(), format, state.engine.Extract(cmd.Context(), req))
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl URL",
	Short: "Crawl a site from a root URL and print page content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := types.CrawlRequest{WalkOptions: walkOptions(f, args[0])}
		req.Provider, _ = f.GetString("provider")
		req.ExtractDepth, _ = f.GetString("depth")
		req.Format, _ = f.GetString("content-format")
		req.IncludeFavicon, _ = f.GetBool("favicon")
		return renderContent(cmd.OutOrStdout(), format, state.engine.Crawl(cmd.Context(), req))
	},
}

var mapCmd = &cobra.Command{
	Use:   "map URL",
	Short: "List the URLs reachable from a root URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := types.MapRequest{WalkOptions: walkOptions(f, args[0])}
		req.Provider, _ = f.GetString("provider")
		return renderContent(cmd.OutOrStdout(), format, state.engine.Map(cmd.Context(), req))
	},
}

func walkOptions(f *pflag.FlagSet, root string) types.WalkOptions {
	o := types.WalkOptions{URL: root}
	o.MaxDepth, _ = f.GetInt("max-depth")
	o.MaxBreadth, _ = f.GetInt("max-breadth")
	o.Limit, _ = f.GetInt("limit")
	o.Instructions, _ = f.GetString("instructions")
	o.SelectPaths, _ = f.GetStringSlice("select-paths")
	o.SelectDomains, _ = f.GetStringSlice("select-domains")
	o.AllowExternal, _ = f.GetBool("allow-external")
	o.Categories, _ = f.GetStringSlice("categories")
	return o
}

func addWalkFlags(f *pflag.FlagSet) {
	f.Int("max-depth", types.DefaultMaxDepth, "link depth to follow")
	f.Int("max-breadth", types.DefaultMaxBreadth, "links followed per page")
	f.Int("limit", types.DefaultLimit, "total pages to visit")
	f.String("instructions", "", "natural language guidance for the crawler (tavily only)")
	f.StringSlice("select-paths", nil, "regular expressions a path must match")
	f.StringSlice("select-domains", nil, "regular expressions a domain must match")
	f.Bool("allow-external", false, "follow links to other domains")
	f.StringSlice("categories", nil, "page categories to keep (tavily only)")
}

func addExtractFlags(f *pflag.FlagSet) {
	f.String("depth", types.DefaultExtractDepth, "extraction depth: basic or advanced")
	f.String("content-format", types.DefaultContentFormat, "page content format: markdown or text")
	f.Bool("favicon", false, "include page favicons")
}

func init() {
	for _, cmd := range []*cobra.Command{extractCmd, crawlCmd, mapCmd} {
		cmd.Flags().String("provider", types.DefaultContentProvider, "content provider: tavily or readability")
		addFormatFlag(cmd, report.FormatText, report.FormatJSON)
		rootCmd.AddCommand(cmd)
	}
	addExtractFlags(extractCmd.Flags())
	extractCmd.Flags().Bool("images", false, "include image URLs")
	addExtractFlags(crawlCmd.Flags())
	addWalkFlags(crawlCmd.Flags())
	addWalkFlags(mapCmd.Flags())
}
