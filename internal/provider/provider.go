// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package provider defines the capability contracts every search or content
// provider implements, the immutable registry that partitions providers by
// category, and the error taxonomy shared by the engine.
package provider

import (
	"context"
	"sort"

	"github.com/pdiddy/unified-search/pkg/types"
)

// Provider is the part of the contract every provider shares.
type Provider interface {
	// Name returns the provider identifier used in requests and responses.
	Name() string

	// Requirements describes the configuration keys the provider reads.
	Requirements() map[string]types.Requirement
}

// Searcher runs one query against an upstream search API. It returns an
// empty slice, not an error, when there are legitimately no matches.
type Searcher interface {
	Provider
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// Downloader fetches a paper PDF into dir and returns the written path.
type Downloader interface {
	Provider
	Download(ctx context.Context, paperID, dir string) (string, error)
}

// ContentProvider works against a single target URL or site.
type ContentProvider interface {
	Provider
	Extract(ctx context.Context, req types.ExtractRequest) (*types.ContentResult, error)
	Crawl(ctx context.Context, req types.CrawlRequest) (*types.ContentResult, error)
	Map(ctx context.Context, req types.MapRequest) (*types.ContentResult, error)
}

// Lookup resolves a configuration key to its value, or "" when unset.
type Lookup func(key string) string

// Missing returns the required keys that lookup cannot resolve, sorted.
func Missing(reqs map[string]types.Requirement, lookup Lookup) []string {
	var missing []string
	for key, req := range reqs {
		if req.Required && lookup(key) == "" {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}

// Capabilities lists the operations p supports.
func Capabilities(p Provider) []string {
	var caps []string
	if _, ok := p.(Searcher); ok {
		caps = append(caps, "search")
	}
	if _, ok := p.(Downloader); ok {
		caps = append(caps, "download")
	}
	if _, ok := p.(ContentProvider); ok {
		caps = append(caps, "extract", "crawl", "map")
	}
	return caps
}
