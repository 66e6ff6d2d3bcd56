// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"time"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// tavilyAPIBase is the Tavily API root. Declared as a var so tests can
// substitute an httptest server.
var tavilyAPIBase = "https://api.tavily.com"

// Per-endpoint time budgets. The engine's registration timeout still bounds
// the whole call.
const (
	tavilyExtractTimeout = 15 * time.Second
	tavilyCrawlTimeout   = 30 * time.Second
	tavilyMapTimeout     = 20 * time.Second
)

const tavilyMaxResults = 20

// Tavily is both a web search provider and a content provider.
type Tavily struct {
	BaseURL string
	client  *httputil.Client
	apiKey  string
}

// NewTavily returns a Tavily provider using apiKey.
func NewTavily(client *httputil.Client, apiKey string) *Tavily {
	return &Tavily{BaseURL: tavilyAPIBase, client: client, apiKey: apiKey}
}

func (t *Tavily) Name() string { return "tavily" }

func (t *Tavily) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeyTavily: {
			Required:    true,
			Description: "Tavily API key for AI-enhanced search",
			ObtainFrom:  "https://app.tavily.com/",
		},
	}
}

// Search runs an advanced-depth search.
func (t *Tavily) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	req := tavilySearchRequest{
		APIKey:         t.apiKey,
		Query:          query,
		MaxResults:     min(maxResults, tavilyMaxResults),
		SearchDepth:    "advanced",
		IncludeDomains: []string{},
		ExcludeDomains: []string{},
	}
	var resp tavilySearchResponse
	if err := t.client.PostJSON(ctx, t.BaseURL+"/search", nil, req, &resp); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(resp.Results))
	for _, item := range resp.Results {
		meta := map[string]any{"relevance_score": item.Score}
		if item.RawContent != "" {
			meta["raw_content"] = item.RawContent
		}
		results = append(results, types.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Snippet:       item.Content,
			Source:        t.Name(),
			Domain:        hostOf(item.URL),
			PublishedTime: item.PublishedDate,
			Metadata:      meta,
		})
	}
	return results, nil
}

// Extract pulls page content for a list of URLs.
func (t *Tavily) Extract(ctx context.Context, req types.ExtractRequest) (*types.ContentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, tavilyExtractTimeout)
	defer cancel()

	body := tavilyExtractRequest{
		APIKey:         t.apiKey,
		URLs:           req.URLs,
		ExtractDepth:   orDefault(req.ExtractDepth, types.DefaultExtractDepth),
		IncludeImages:  req.IncludeImages,
		Format:         orDefault(req.Format, types.DefaultContentFormat),
		IncludeFavicon: req.IncludeFavicon,
	}
	var resp tavilyContentResponse
	if err := t.client.PostJSON(ctx, t.BaseURL+"/extract", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(t.Name()), nil
}

// Crawl walks a site from req.URL and returns page content.
func (t *Tavily) Crawl(ctx context.Context, req types.CrawlRequest) (*types.ContentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, tavilyCrawlTimeout)
	defer cancel()

	body := tavilyCrawlRequest{
		tavilyWalk:     newTavilyWalk(t.apiKey, req.WalkOptions),
		ExtractDepth:   orDefault(req.ExtractDepth, types.DefaultExtractDepth),
		Format:         orDefault(req.Format, types.DefaultContentFormat),
		IncludeFavicon: req.IncludeFavicon,
	}
	var resp tavilyContentResponse
	if err := t.client.PostJSON(ctx, t.BaseURL+"/crawl", nil, body, &resp); err != nil {
		return nil, err
	}
	return resp.toResult(t.Name()), nil
}

// Map returns the URLs discovered from req.URL.
func (t *Tavily) Map(ctx context.Context, req types.MapRequest) (*types.ContentResult, error) {
	ctx, cancel := context.WithTimeout(ctx, tavilyMapTimeout)
	defer cancel()

	var resp tavilyMapResponse
	if err := t.client.PostJSON(ctx, t.BaseURL+"/map", nil, newTavilyWalk(t.apiKey, req.WalkOptions), &resp); err != nil {
		return nil, err
	}
	return &types.ContentResult{
		Provider:     t.Name(),
		BaseURL:      resp.BaseURL,
		URLs:         resp.Results,
		ResponseTime: resp.ResponseTime,
	}, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Tavily API JSON structures.
type tavilySearchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth"`
	IncludeDomains []string `json:"include_domains"`
	ExcludeDomains []string `json:"exclude_domains"`
}

type tavilySearchResponse struct {
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	Content       string  `json:"content"`
	RawContent    string  `json:"raw_content"`
	Score         float64 `json:"score"`
	PublishedDate string  `json:"published_date"`
}

type tavilyExtractRequest struct {
	APIKey         string   `json:"api_key"`
	URLs           []string `json:"urls"`
	ExtractDepth   string   `json:"extract_depth"`
	IncludeImages  bool     `json:"include_images"`
	Format         string   `json:"format"`
	IncludeFavicon bool     `json:"include_favicon"`
}

type tavilyWalk struct {
	APIKey        string   `json:"api_key"`
	URL           string   `json:"url"`
	MaxDepth      int      `json:"max_depth"`
	MaxBreadth    int      `json:"max_breadth"`
	Limit         int      `json:"limit"`
	AllowExternal bool     `json:"allow_external"`
	Instructions  string   `json:"instructions,omitempty"`
	SelectPaths   []string `json:"select_paths,omitempty"`
	SelectDomains []string `json:"select_domains,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

func newTavilyWalk(apiKey string, o types.WalkOptions) tavilyWalk {
	o = o.WithDefaults()
	return tavilyWalk{
		APIKey:        apiKey,
		URL:           o.URL,
		MaxDepth:      o.MaxDepth,
		MaxBreadth:    o.MaxBreadth,
		Limit:         o.Limit,
		AllowExternal: o.AllowExternal,
		Instructions:  o.Instructions,
		SelectPaths:   o.SelectPaths,
		SelectDomains: o.SelectDomains,
		Categories:    o.Categories,
	}
}

type tavilyCrawlRequest struct {
	tavilyWalk
	ExtractDepth   string `json:"extract_depth"`
	Format         string `json:"format"`
	IncludeFavicon bool   `json:"include_favicon"`
}

type tavilyContentResponse struct {
	BaseURL string `json:"base_url"`
	Results []struct {
		URL        string   `json:"url"`
		Title      string   `json:"title"`
		RawContent string   `json:"raw_content"`
		Images     []string `json:"images"`
		Favicon    string   `json:"favicon"`
	} `json:"results"`
	FailedResults []struct {
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"failed_results"`
	ResponseTime float64 `json:"response_time"`
}

func (r tavilyContentResponse) toResult(name string) *types.ContentResult {
	out := &types.ContentResult{
		Provider:     name,
		BaseURL:      r.BaseURL,
		ResponseTime: r.ResponseTime,
	}
	for _, p := range r.Results {
		out.Pages = append(out.Pages, types.Page{
			URL:        p.URL,
			Title:      p.Title,
			RawContent: p.RawContent,
			Images:     p.Images,
			Favicon:    p.Favicon,
		})
	}
	for _, f := range r.FailedResults {
		out.Failed = append(out.Failed, types.FailedPage{URL: f.URL, Error: f.Error})
	}
	return out
}

type tavilyMapResponse struct {
	BaseURL      string   `json:"base_url"`
	Results      []string `json:"results"`
	ResponseTime float64  `json:"response_time"`
}
