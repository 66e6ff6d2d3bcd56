// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/unified-search/internal/report"
	"github.com/pdiddy/unified-search/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "unified-search dev\n", out)
}

func TestShowCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "query.yaml")
	resp := types.SearchResponse{
		Query:         "attention",
		Results:       []types.SearchResult{{Title: "Attention Is All You Need", URL: "https://arxiv.org/abs/1706.03762", Source: "arxiv", Score: 1}},
		TotalResults:  1,
		ProvidersUsed: []string{"arxiv"},
	}
	require.NoError(t, report.WriteQueryFile(path, types.CategoryPaper,
		types.SearchRequest{Query: "attention", MaxResults: 5}, resp))

	out, err := execute(t, "show", path, "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "1 result(s)")

	out, err = execute(t, "show", path, "--format", "csl")
	require.NoError(t, err)
	assert.Contains(t, out, "title: Attention Is All You Need")

	_, err = execute(t, "show", path, "--format", "xml")
	assert.ErrorContains(t, err, `unknown format "xml"`)
}

func TestSearchCommandsDefaultMaxResults(t *testing.T) {
	for _, cmd := range []*cobra.Command{webCmd, papersCmd} {
		f := cmd.Flags().Lookup("max-results")
		require.NotNil(t, f, cmd.Name())
		assert.Equal(t, strconv.Itoa(types.DefaultMaxResults), f.DefValue, cmd.Name())
	}
}

func TestRenderSearchFailure(t *testing.T) {
	var buf bytes.Buffer
	env := types.Fail[types.SearchResponse](nil, errors.New("validation error: query must not be empty"))

	err := renderSearch(&buf, report.FormatJSON, env)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, buf.String(), `"success": false`)
}

func TestDownloadBatch(t *testing.T) {
	var b downloadBatch
	b.add("2301.07041", types.OK(types.DownloadResult{FilePath: "downloads/2301.07041.pdf"}))
	b.add("bogus", types.Fail[types.DownloadResult](nil, errors.New("provider must be given")))

	var buf bytes.Buffer
	require.NoError(t, b.print(&buf))
	assert.Equal(t, "downloaded: 2301.07041 -> downloads/2301.07041.pdf\n"+
		"failed: bogus: provider must be given\n"+
		"\n1 downloaded, 1 failed\n", buf.String())
}
