// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Content operation defaults, matching the upstream Tavily API.
const (
	DefaultContentProvider = "tavily"
	DefaultExtractDepth    = "basic"
	DefaultContentFormat   = "markdown"
	DefaultMaxDepth        = 1
	DefaultMaxBreadth      = 20
	DefaultLimit           = 50
)

// ExtractRequest asks one content provider to extract page content from URLs.
type ExtractRequest struct {
	Provider       string   `json:"provider,omitempty"`
	URLs           []string `json:"urls"`
	ExtractDepth   string   `json:"extract_depth,omitempty"`
	IncludeImages  bool     `json:"include_images,omitempty"`
	Format         string   `json:"format,omitempty"`
	IncludeFavicon bool     `json:"include_favicon,omitempty"`
}

// WalkOptions bound a site traversal started from one URL. They are shared
// by crawl and map requests.
type WalkOptions struct {
	URL           string   `json:"url"`
	MaxDepth      int      `json:"max_depth,omitempty"`
	MaxBreadth    int      `json:"max_breadth,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Instructions  string   `json:"instructions,omitempty"`
	SelectPaths   []string `json:"select_paths,omitempty"`
	SelectDomains []string `json:"select_domains,omitempty"`
	AllowExternal bool     `json:"allow_external,omitempty"`
	Categories    []string `json:"categories,omitempty"`
}

// WithDefaults fills zero traversal bounds with the defaults.
func (o WalkOptions) WithDefaults() WalkOptions {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxBreadth <= 0 {
		o.MaxBreadth = DefaultMaxBreadth
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// CrawlRequest asks one content provider to crawl a site and return page content.
type CrawlRequest struct {
	Provider string `json:"provider,omitempty"`
	WalkOptions
	ExtractDepth   string `json:"extract_depth,omitempty"`
	Format         string `json:"format,omitempty"`
	IncludeFavicon bool   `json:"include_favicon,omitempty"`
}

// MapRequest asks one content provider for the link structure of a site.
type MapRequest struct {
	Provider string `json:"provider,omitempty"`
	WalkOptions
}

// Page is the extracted content of one URL.
type Page struct {
	URL        string   `json:"url"`
	Title      string   `json:"title,omitempty"`
	RawContent string   `json:"raw_content,omitempty"`
	Images     []string `json:"images,omitempty"`
	Favicon    string   `json:"favicon,omitempty"`
}

// FailedPage records a URL the provider could not extract.
type FailedPage struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ContentResult is the provider-native outcome of an extract, crawl or map call.
type ContentResult struct {
	Provider     string       `json:"provider"`
	BaseURL      string       `json:"base_url,omitempty"`
	Pages        []Page       `json:"pages,omitempty"`
	Failed       []FailedPage `json:"failed,omitempty"`
	URLs         []string     `json:"urls,omitempty"`
	ResponseTime float64      `json:"response_time"`
}
