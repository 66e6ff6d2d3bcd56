// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

// errReported marks a failure whose message was already written with the
// command output.
var errReported = errors.New("operation failed")

func addFormatFlag(cmd *cobra.Command, formats ...string) {
	cmd.Flags().String("format", report.FormatText, fmt.Sprintf("output format %v", formats))
}

// outputFormat returns the --format value after checking it against allowed.
func outputFormat(cmd *cobra.Command, allowed ...string) (string, error) {
	f, _ := cmd.Flags().GetString("format")
	if !slices.Contains(allowed, f) {
		return "", fmt.Errorf("unknown format %q (want one of %v)", f, allowed)
	}
	return f, nil
}

// done turns a failed envelope into errReported once it has been rendered.
func done[T any](env types.Envelope[T]) error {
	if env.Success {
		return nil
	}
	return errReported
}

// renderSearch writes a search envelope in the chosen format.
func renderSearch(w io.Writer, format string, env types.Envelope[types.SearchResponse]) error {
	var err error
	switch format {
	case report.FormatJSON:
		err = report.JSON(w, env)
	case report.FormatCSL:
		if !env.Success || env.Data == nil {
			err = report.SearchTable(w, env)
			break
		}
		err = report.CSL(w, env.Data.Results)
	default:
		err = report.SearchTable(w, env)
	}
	if err != nil {
		return err
	}
	return done(env)
}

// renderContent writes a content envelope in the chosen format.
func renderContent(w io.Writer, format string, env types.Envelope[types.ContentResult]) error {
	var err error
	if format == report.FormatJSON {
		err = report.JSON(w, env)
	} else {
		err = report.ContentTable(w, env)
	}
	if err != nil {
		return err
	}
	return done(env)
}
