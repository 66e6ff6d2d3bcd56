// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/report"
)

var showCmd = &cobra.Command{
	Use:         "show FILE",
	Short:       "Render a query file saved with --save",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{"skipEngine": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON, report.FormatCSL)
		if err != nil {
			return err
		}
		qf, err := report.ReadQueryFile(args[0])
		if err != nil {
			return err
		}
		return renderSearch(cmd.OutOrStdout(), format, qf.Envelope())
	},
}

func init() {
	addFormatFlag(showCmd, report.FormatText, report.FormatJSON, report.FormatCSL)
	rootCmd.AddCommand(showCmd)
}
