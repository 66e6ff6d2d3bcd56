// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/report"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List providers with their capabilities and configuration state",
	Long: `Providers lists every registered provider by category, whether its
credentials are configured, and which keys are missing when they are not.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		env := state.engine.Providers()
		if format == report.FormatJSON {
			return report.JSON(cmd.OutOrStdout(), env)
		}
		return report.ProviderTable(cmd.OutOrStdout(), *env.Data)
	},
}

func init() {
	addFormatFlag(providersCmd, report.FormatText, report.FormatJSON)
	rootCmd.AddCommand(providersCmd)
}
