// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

var downloadCmd = &cobra.Command{
	Use:   "download PAPER_ID...",
	Short: "Download paper PDFs from a paper provider",
	Long: `Download fetches the PDF of each paper in turn. An identifier is the one the
provider returned in its search results: an arXiv ID, a PubMed ID, a
Semantic Scholar paper ID, or an OpenAlex work ID or DOI. Without
--provider the provider is inferred from each identifier's shape.

A failed paper is reported and the remaining papers are still attempted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("provider")
		dir, _ := cmd.Flags().GetString("output")

		var batch downloadBatch
		for _, id := range args {
			env := state.engine.Download(cmd.Context(), types.DownloadRequest{PaperID: id, Provider: name, SavePath: dir})
			batch.add(id, env)
		}

		w := cmd.OutOrStdout()
		if format == report.FormatJSON {
			err = report.JSON(w, batch.results)
		} else {
			err = batch.print(w)
		}
		if err != nil {
			return err
		}
		if batch.failed > 0 {
			return errReported
		}
		return nil
	},
}

// downloadBatch tallies the outcome of a multi-paper download.
type downloadBatch struct {
	results    []types.Envelope[types.DownloadResult]
	ids        []string
	downloaded int
	failed     int
}

func (b *downloadBatch) add(id string, env types.Envelope[types.DownloadResult]) {
	b.results = append(b.results, env)
	b.ids = append(b.ids, id)
	if env.Success {
		b.downloaded++
	} else {
		b.failed++
	}
}

func (b *downloadBatch) print(w io.Writer) error {
	for i, env := range b.results {
		if env.Success {
			fmt.Fprintf(w, "downloaded: %s -> %s\n", b.ids[i], env.Data.FilePath)
		} else {
			fmt.Fprintf(w, "failed: %s: %s\n", b.ids[i], env.Error)
		}
	}
	if len(b.results) == 1 {
		return nil
	}
	_, err := fmt.Fprintf(w, "\n%d downloaded, %d failed\n", b.downloaded, b.failed)
	return err
}

var readCmd = &cobra.Command{
	Use:   "read PAPER_ID",
	Short: "Download a paper and print its extracted text",
	Long: `Read downloads one paper like download does and converts the PDF to text
with pdftotext, or with markitdown in a container when pdftotext is not
installed. The text is cached next to the PDF.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat(cmd, report.FormatText, report.FormatJSON)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("provider")
		dir, _ := cmd.Flags().GetString("output")

		env := state.engine.Read(cmd.Context(), types.ReadRequest{PaperID: args[0], Provider: name, SavePath: dir})
		w := cmd.OutOrStdout()
		switch {
		case format == report.FormatJSON:
			err = report.JSON(w, env)
		case env.Success:
			_, err = fmt.Fprintln(w, env.Data.Content)
		default:
			_, err = fmt.Fprintf(w, "Error: %s\n", env.Error)
		}
		if err != nil {
			return err
		}
		return done(env)
	},
}

func init() {
	for _, cmd := range []*cobra.Command{downloadCmd, readCmd} {
		cmd.Flags().String("provider", "", "paper provider to fetch from (default: inferred from PAPER_ID)")
		cmd.Flags().StringP("output", "o", "", "directory for the PDF (default: download_dir from config)")
		addFormatFlag(cmd, report.FormatText, report.FormatJSON)
		rootCmd.AddCommand(cmd)
	}
}
