// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/pkg/types"
)

// SearchInput is the input schema of the search tools.
type SearchInput struct {
	Query      string   `json:"query" jsonschema:"the search query"`
	Providers  []string `json:"providers,omitempty" jsonschema:"provider names to query; all configured providers when omitted"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// PaperInput is the input schema of the paper download and read tools.
type PaperInput struct {
	PaperID  string `json:"paper_id" jsonschema:"provider-specific paper identifier"`
	Provider string `json:"provider,omitempty" jsonschema:"paper provider to fetch from; inferred from paper_id when omitted"`
	SavePath string `json:"save_path,omitempty" jsonschema:"directory for the PDF (default ./downloads)"`
}

// ExtractInput is the input schema of content_extract.
type ExtractInput struct {
	Provider       string   `json:"provider,omitempty" jsonschema:"content provider (default tavily)"`
	URLs           []string `json:"urls" jsonschema:"URLs to extract"`
	ExtractDepth   string   `json:"extract_depth,omitempty" jsonschema:"basic or advanced"`
	IncludeImages  bool     `json:"include_images,omitempty"`
	Format         string   `json:"format,omitempty" jsonschema:"markdown or text"`
	IncludeFavicon bool     `json:"include_favicon,omitempty"`
}

// WalkInput is the input schema of content_map, and of content_crawl
// together with the extraction fields.
type WalkInput struct {
	Provider      string   `json:"provider,omitempty" jsonschema:"content provider (default tavily)"`
	URL           string   `json:"url" jsonschema:"root URL to start from"`
	MaxDepth      int      `json:"max_depth,omitempty" jsonschema:"link depth to follow (default 1)"`
	MaxBreadth    int      `json:"max_breadth,omitempty" jsonschema:"links followed per page (default 20)"`
	Limit         int      `json:"limit,omitempty" jsonschema:"total pages to visit (default 50)"`
	Instructions  string   `json:"instructions,omitempty" jsonschema:"natural language guidance for the crawler"`
	SelectPaths   []string `json:"select_paths,omitempty" jsonschema:"regular expressions a path must match"`
	SelectDomains []string `json:"select_domains,omitempty" jsonschema:"regular expressions a domain must match"`
	AllowExternal bool     `json:"allow_external,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// CrawlInput is the input schema of content_crawl.
type CrawlInput struct {
	WalkInput
	ExtractDepth   string `json:"extract_depth,omitempty" jsonschema:"basic or advanced"`
	Format         string `json:"format,omitempty" jsonschema:"markdown or text"`
	IncludeFavicon bool   `json:"include_favicon,omitempty"`
}

// ProvidersInput is the empty input of list_providers.
type ProvidersInput struct{}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "web_search",
		Description: "Search the web across all configured web providers and return one deduplicated, ranked list",
	}, s.handleWebSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "paper_search",
		Description: "Search academic papers across arXiv, PubMed, Semantic Scholar and OpenAlex",
	}, s.handlePaperSearch)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "paper_download",
		Description: "Download a paper PDF from one paper provider",
	}, s.handleDownload)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "paper_read",
		Description: "Download a paper and return its extracted text",
	}, s.handleRead)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "content_extract",
		Description: "Extract the readable content of web pages",
	}, s.handleExtract)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "content_crawl",
		Description: "Crawl a site from a root URL and return page content",
	}, s.handleCrawl)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "content_map",
		Description: "Map the link structure of a site from a root URL",
	}, s.handleMap)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_providers",
		Description: "List providers with their capabilities and configuration state",
	}, s.handleProviders)
}

func (in SearchInput) request() types.SearchRequest {
	n := in.MaxResults
	if n == 0 {
		n = types.DefaultMaxResults
	}
	return types.SearchRequest{Query: in.Query, Providers: in.Providers, MaxResults: n}
}

func (in WalkInput) options() types.WalkOptions {
	return types.WalkOptions{
		URL:           in.URL,
		MaxDepth:      in.MaxDepth,
		MaxBreadth:    in.MaxBreadth,
		Limit:         in.Limit,
		Instructions:  in.Instructions,
		SelectPaths:   in.SelectPaths,
		SelectDomains: in.SelectDomains,
		AllowExternal: in.AllowExternal,
		Categories:    in.Categories,
	}
}

func (s *Server) handleWebSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
	return result(s, "web_search", s.engine.SearchWeb(ctx, in.request()))
}

func (s *Server) handlePaperSearch(ctx context.Context, _ *mcp.CallToolRequest, in SearchInput) (*mcp.CallToolResult, any, error) {
	return result(s, "paper_search", s.engine.SearchPapers(ctx, in.request()))
}

func (s *Server) handleDownload(ctx context.Context, _ *mcp.CallToolRequest, in PaperInput) (*mcp.CallToolResult, any, error) {
	return result(s, "paper_download", s.engine.Download(ctx, types.DownloadRequest{
		PaperID: in.PaperID, Provider: in.Provider, SavePath: in.SavePath,
	}))
}

func (s *Server) handleRead(ctx context.Context, _ *mcp.CallToolRequest, in PaperInput) (*mcp.CallToolResult, any, error) {
	return result(s, "paper_read", s.engine.Read(ctx, types.ReadRequest{
		PaperID: in.PaperID, Provider: in.Provider, SavePath: in.SavePath,
	}))
}

func (s *Server) handleExtract(ctx context.Context, _ *mcp.CallToolRequest, in ExtractInput) (*mcp.CallToolResult, any, error) {
	return result(s, "content_extract", s.engine.Extract(ctx, types.ExtractRequest{
		Provider:       in.Provider,
		URLs:           in.URLs,
		ExtractDepth:   in.ExtractDepth,
		IncludeImages:  in.IncludeImages,
		Format:         in.Format,
		IncludeFavicon: in.IncludeFavicon,
	}))
}

func (s *Server) handleCrawl(ctx context.Context, _ *mcp.CallToolRequest, in CrawlInput) (*mcp.CallToolResult, any, error) {
	return result(s, "content_crawl", s.engine.Crawl(ctx, types.CrawlRequest{
		Provider:       in.Provider,
		WalkOptions:    in.options(),
		ExtractDepth:   in.ExtractDepth,
		Format:         in.Format,
		IncludeFavicon: in.IncludeFavicon,
	}))
}

func (s *Server) handleMap(ctx context.Context, _ *mcp.CallToolRequest, in WalkInput) (*mcp.CallToolResult, any, error) {
	return result(s, "content_map", s.engine.Map(ctx, types.MapRequest{
		Provider:    in.Provider,
		WalkOptions: in.options(),
	}))
}

func (s *Server) handleProviders(_ context.Context, _ *mcp.CallToolRequest, _ ProvidersInput) (*mcp.CallToolResult, any, error) {
	return result(s, "list_providers", s.engine.Providers())
}

// result renders the envelope as JSON text content. Failed envelopes are
// marked as tool errors so clients surface them; the envelope still
// carries the message and any diagnostics.
func result[T any](s *Server, tool string, env types.Envelope[T]) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s result: %w", tool, err)
	}
	if env.Success {
		s.logger.Debug("tool call succeeded", zap.String("tool", tool))
	} else {
		s.logger.Debug("tool call failed", zap.String("tool", tool), zap.String("error", env.Error))
	}
	return &mcp.CallToolResult{
		IsError: !env.Success,
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
