// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/unified-search/pkg/types"
)

func sampleResponse() types.SearchResponse {
	return types.SearchResponse{
		Query: "attention",
		Results: []types.SearchResult{
			{
				Title:         "Attention Is All You Need",
				URL:           "https://arxiv.org/abs/1706.03762",
				Source:        "arxiv",
				Score:         1,
				Authors:       []string{"Ashish Vaswani", "Plato"},
				DOI:           "10.48550/arXiv.1706.03762",
				PublishedDate: "2017-06-12T17:57:34Z",
				Metadata:      map[string]any{"sources": []string{"arxiv", "openalex"}},
			},
			{
				Title:  "A blog post about attention mechanisms in neural networks and beyond",
				URL:    "https://blog.example/attention",
				Source: "brave",
				Score:  0.9,
			},
		},
		TotalResults:  2,
		ProvidersUsed: []string{"arxiv", "openalex"},
		SearchTime:    types.Elapsed(1500 * time.Millisecond),
		Errors:        map[string]string{"pubmed": "timeout"},
	}
}

// --- text ---

func TestSearchTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SearchTable(&buf, types.OK(sampleResponse())))
	out := buf.String()

	assert.Contains(t, out, "Attention Is All You Need")
	assert.Contains(t, out, "arxiv,openalex")
	assert.Contains(t, out, "A blog post about attention mechanisms in neura...")
	assert.Contains(t, out, "2 result(s) in 1.50s from arxiv, openalex")
	assert.Contains(t, out, "pubmed: timeout")
	assert.NotContains(t, out, "Error:")
}

func TestSearchTableFailure(t *testing.T) {
	var buf bytes.Buffer
	env := types.Fail[types.SearchResponse](nil, errors.New("validation error: query must not be empty"))
	require.NoError(t, SearchTable(&buf, env))
	assert.Equal(t, "Error: validation error: query must not be empty\n", buf.String())

	buf.Reset()
	resp := types.SearchResponse{Results: []types.SearchResult{}, Errors: map[string]string{"brave": "configuration error: BRAVE_API_KEY is required for brave"}}
	require.NoError(t, SearchTable(&buf, types.Fail(&resp, errors.New("no providers available"))))
	assert.Contains(t, buf.String(), "No results found.")
	assert.Contains(t, buf.String(), "brave: configuration error")
	assert.Contains(t, buf.String(), "Error: no providers available")
}

func TestContentTable(t *testing.T) {
	var buf bytes.Buffer
	env := types.OK(types.ContentResult{
		Provider: "readability",
		Pages:    []types.Page{{URL: "https://a.example", Title: "A", RawContent: " body \n"}},
		Failed:   []types.FailedPage{{URL: "https://b.example", Error: "HTTP 404"}},
	})
	require.NoError(t, ContentTable(&buf, env))
	out := buf.String()
	assert.Contains(t, out, "== https://a.example\n   A\nbody\n")
	assert.Contains(t, out, "failed: https://b.example: HTTP 404")
	assert.Contains(t, out, "provider readability, 1 page(s), 0 url(s), 1 failure(s)")
}

func TestProviderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ProviderTable(&buf, []types.ProviderInfo{
		{Name: "brave", Category: types.CategoryWeb, Missing: []string{"BRAVE_API_KEY"}, Capabilities: []string{"search"}},
		{Name: "arxiv", Category: types.CategoryPaper, Valid: true, Capabilities: []string{"search", "download"}},
	}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[2], "no")
	assert.Contains(t, lines[2], "BRAVE_API_KEY")
	assert.Contains(t, lines[3], "search,download")
}

// --- CSL ---

func TestToCSLItem(t *testing.T) {
	resp := sampleResponse()

	paper := toCSLItem(resp.Results[0])
	assert.Equal(t, "10.48550/arXiv.1706.03762", paper.ID)
	assert.Equal(t, "article-journal", paper.Type)
	assert.Equal(t, CSLName{Given: "Ashish", Family: "Vaswani"}, paper.Author[0])
	assert.Equal(t, CSLName{Literal: "Plato"}, paper.Author[1])
	require.NotNil(t, paper.Issued)
	assert.Equal(t, [][]int{{2017, 6, 12}}, paper.Issued.DateParts)

	web := toCSLItem(resp.Results[1])
	assert.Equal(t, "webpage", web.Type)
	assert.Equal(t, "https://blog.example/attention", web.ID)
	assert.Nil(t, web.Issued)
}

func TestDateParts(t *testing.T) {
	tests := []struct {
		in   string
		want []int
	}{
		{"2017-06-12T17:57:34Z", []int{2017, 6, 12}},
		{"2026-01-02T00:00:00", []int{2026, 1, 2}},
		{"2015-05-27", []int{2015, 5, 27}},
		{"2020 Jan 15", []int{2020, 1, 15}},
		{"2020 Jan", []int{2020, 1}},
		{"2019", []int{2019}},
		{"", nil},
		{"2 days ago", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, dateParts(tt.in))
		})
	}
}

func TestCSLOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSL(&buf, sampleResponse().Results))

	var items []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &items))
	require.Len(t, items, 2)
	assert.Equal(t, "10.48550/arXiv.1706.03762", items[0]["DOI"])
	issued, ok := items[0]["issued"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, issued, "date-parts")
}

// --- query files ---

func TestQueryFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attention.yaml")
	req := types.SearchRequest{Query: "attention", Providers: []string{"arxiv", "openalex"}, MaxResults: 5}
	require.NoError(t, WriteQueryFile(path, types.CategoryPaper, req, sampleResponse()))

	qf, err := ReadQueryFile(path)
	require.NoError(t, err)
	assert.Equal(t, types.CategoryPaper, qf.Query.Category)
	assert.Equal(t, req, qf.Request())
	assert.Equal(t, 2, qf.Summary.Total)
	assert.Equal(t, map[string]string{"pubmed": "timeout"}, qf.Summary.ProviderErrors)
	assert.False(t, qf.Summary.Timestamp.IsZero())

	env := qf.Envelope()
	require.True(t, env.Success)
	assert.Equal(t, 2, env.Data.TotalResults)
	assert.Equal(t, "Attention Is All You Need", env.Data.Results[0].Title)
	assert.InDelta(t, 1.5, env.Data.SearchTime.Seconds(), 1e-9)

	var buf bytes.Buffer
	require.NoError(t, SearchTable(&buf, env))
	assert.Contains(t, buf.String(), "arxiv,openalex", "sources survive the YAML round trip")
}

func TestReadQueryFileErrors(t *testing.T) {
	_, err := ReadQueryFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading query file")
}
