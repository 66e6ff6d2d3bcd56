// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/unified-search/pkg/types"
)

// fakeEngine records the last request of each kind and returns canned envelopes.
type fakeEngine struct {
	lastSearch   types.SearchRequest
	lastCategory types.Category
	lastDownload types.DownloadRequest
	lastCrawl    types.CrawlRequest
	lastMap      types.MapRequest
	lastExtract  types.ExtractRequest
	fail         bool
}

func (f *fakeEngine) search(cat types.Category, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	f.lastSearch, f.lastCategory = req, cat
	if f.fail {
		return types.Fail[types.SearchResponse](nil, errors.New("validation error: query must not be empty"))
	}
	return types.OK(types.SearchResponse{
		Query:         req.Query,
		Results:       []types.SearchResult{{Title: "hit", URL: "https://a.example", Source: "brave", Score: 1}},
		TotalResults:  1,
		ProvidersUsed: []string{"brave"},
		Errors:        map[string]string{},
	})
}

func (f *fakeEngine) SearchWeb(_ context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	return f.search(types.CategoryWeb, req)
}

func (f *fakeEngine) SearchPapers(_ context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	return f.search(types.CategoryPaper, req)
}

func (f *fakeEngine) Download(_ context.Context, req types.DownloadRequest) types.Envelope[types.DownloadResult] {
	f.lastDownload = req
	return types.OK(types.DownloadResult{FilePath: "/tmp/x.pdf", Provider: req.Provider, PaperID: req.PaperID, Message: "paper downloaded successfully"})
}

func (f *fakeEngine) Read(_ context.Context, req types.ReadRequest) types.Envelope[types.ReadResult] {
	return types.OK(types.ReadResult{PaperID: req.PaperID, Provider: req.Provider, Content: "text"})
}

func (f *fakeEngine) Extract(_ context.Context, req types.ExtractRequest) types.Envelope[types.ContentResult] {
	f.lastExtract = req
	return types.OK(types.ContentResult{Provider: "tavily"})
}

func (f *fakeEngine) Crawl(_ context.Context, req types.CrawlRequest) types.Envelope[types.ContentResult] {
	f.lastCrawl = req
	return types.OK(types.ContentResult{Provider: "tavily"})
}

func (f *fakeEngine) Map(_ context.Context, req types.MapRequest) types.Envelope[types.ContentResult] {
	f.lastMap = req
	return types.OK(types.ContentResult{Provider: "tavily", URLs: []string{req.URL}})
}

func (f *fakeEngine) Providers() types.Envelope[[]types.ProviderInfo] {
	return types.OK([]types.ProviderInfo{{Name: "arxiv", Category: types.CategoryPaper, Valid: true}})
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestNew(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNoEngine)

	s, err := New(&fakeEngine{})
	require.NoError(t, err)
	assert.NotNil(t, s.MCP())
}

func TestSearchTools(t *testing.T) {
	eng := &fakeEngine{}
	s, err := New(eng)
	require.NoError(t, err)
	ctx := context.Background()

	res, _, err := s.handleWebSearch(ctx, nil, SearchInput{Query: "golang"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, types.CategoryWeb, eng.lastCategory)
	assert.Equal(t, types.DefaultMaxResults, eng.lastSearch.MaxResults, "omitted max_results gets the default")

	var env types.Envelope[types.SearchResponse]
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "hit", env.Data.Results[0].Title)

	_, _, err = s.handlePaperSearch(ctx, nil, SearchInput{Query: "q", MaxResults: -1, Providers: []string{"arxiv"}})
	require.NoError(t, err)
	assert.Equal(t, types.CategoryPaper, eng.lastCategory)
	assert.Equal(t, -1, eng.lastSearch.MaxResults, "explicit values pass through to validation")
	assert.Equal(t, []string{"arxiv"}, eng.lastSearch.Providers)
}

func TestFailedEnvelopeIsToolError(t *testing.T) {
	s, err := New(&fakeEngine{fail: true})
	require.NoError(t, err)

	res, _, err := s.handleWebSearch(context.Background(), nil, SearchInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), `"success": false`)
	assert.Contains(t, text(t, res), "query must not be empty")
}

func TestContentTools(t *testing.T) {
	eng := &fakeEngine{}
	s, err := New(eng)
	require.NoError(t, err)
	ctx := context.Background()

	_, _, err = s.handleCrawl(ctx, nil, CrawlInput{
		WalkInput: WalkInput{URL: "https://docs.example", MaxDepth: 2, SelectPaths: []string{"/api/.*"}},
		Format:    "text",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example", eng.lastCrawl.URL)
	assert.Equal(t, 2, eng.lastCrawl.MaxDepth)
	assert.Equal(t, []string{"/api/.*"}, eng.lastCrawl.SelectPaths)
	assert.Equal(t, "text", eng.lastCrawl.Format)

	res, _, err := s.handleMap(ctx, nil, WalkInput{URL: "https://docs.example", Provider: "readability"})
	require.NoError(t, err)
	assert.Equal(t, "readability", eng.lastMap.Provider)
	assert.Contains(t, text(t, res), "https://docs.example")

	_, _, err = s.handleExtract(ctx, nil, ExtractInput{URLs: []string{"https://a.example"}, IncludeImages: true})
	require.NoError(t, err)
	assert.True(t, eng.lastExtract.IncludeImages)

	_, _, err = s.handleDownload(ctx, nil, PaperInput{PaperID: "2301.07041", Provider: "arxiv"})
	require.NoError(t, err)
	assert.Equal(t, types.DownloadRequest{PaperID: "2301.07041", Provider: "arxiv"}, eng.lastDownload)
}

func TestInMemorySession(t *testing.T) {
	ctx := context.Background()
	s, err := New(&fakeEngine{})
	require.NoError(t, err)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.MCP().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"content_crawl", "content_extract", "content_map", "list_providers",
		"paper_download", "paper_read", "paper_search", "web_search",
	}, names)

	res, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "paper_read",
		Arguments: map[string]any{"paper_id": "2301.07041", "provider": "arxiv"},
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, text(t, res), `"content": "text"`)

	res, err = session.CallTool(ctx, &mcp.CallToolParams{Name: "list_providers", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"name": "arxiv"`)
}

func TestHTTPHandler(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("unified_search_operations_total 0"))
	})
	s, err := New(&fakeEngine{}, WithMetricsHandler(metrics), WithAllowedOrigins("https://app.example"))
	require.NoError(t, err)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.HasPrefix(string(body), "unified_search_operations_total"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/mcp", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://app.example", resp.Header.Get("Access-Control-Allow-Origin"))
}
