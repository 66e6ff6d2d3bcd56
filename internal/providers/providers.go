// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package providers implements the upstream search and content APIs behind
// the provider capability interfaces, and builds the registry the engine
// runs against.
//
// Web: brave, tavily, searxng. Paper: arxiv, pubmed, semantic_scholar,
// openalex. Content: tavily, readability.
package providers

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/internal/provider"
	"github.com/pdiddy/unified-search/pkg/types"
)

// Credential keys read through the configuration lookup.
const (
	KeyBrave           = "BRAVE_API_KEY"
	KeyTavily          = "TAVILY_API_KEY"
	KeySearXNG         = "SEARXNG_SERVER_URL"
	KeyPubMed          = "PUBMED_API_KEY"
	KeySemanticScholar = "SEMANTIC_SCHOLAR_API_KEY"
	KeyOpenAlex        = "OPENALEX_EMAIL"
)

// snippetLength bounds snippets derived from paper abstracts.
const snippetLength = 200

// Options configures the built-in providers.
type Options struct {
	// HTTP is the client used for every upstream call. Nil selects a
	// client without a global timeout; per-call contexts bound each call.
	HTTP *http.Client

	UserAgent string

	// Lookup resolves credential keys.
	Lookup provider.Lookup

	// Settings tunes providers by name. Settings apply to every category a
	// provider is registered in.
	Settings map[string]types.ProviderSettings

	Logger *zap.Logger
}

// defaults are the per-registration values used when Settings leaves a
// field zero.
type defaults struct {
	timeout   time.Duration
	weight    float64
	rateLimit float64
}

// Registrations builds every enabled built-in provider. Registration order
// within a category is the provider iteration order.
func Registrations(opts Options) []provider.Registration {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	client := httputil.New(opts.HTTP, opts.UserAgent)
	base := func(name, fallback string) string {
		if s := opts.Settings[name].BaseURL; s != "" {
			return strings.TrimRight(s, "/")
		}
		return fallback
	}

	tavily := NewTavily(client, lookup(KeyTavily))
	tavily.BaseURL = base("tavily", tavily.BaseURL)

	brave := NewBrave(client, lookup(KeyBrave))
	brave.BaseURL = base("brave", brave.BaseURL)

	searx := NewSearXNG(client, lookup(KeySearXNG))

	arxiv := NewArxiv(client)
	arxiv.BaseURL = base("arxiv", arxiv.BaseURL)

	pubmed := NewPubMed(client, lookup(KeyPubMed))
	pubmed.BaseURL = base("pubmed", pubmed.BaseURL)

	s2 := NewSemanticScholar(client, lookup(KeySemanticScholar))
	s2.BaseURL = base("semantic_scholar", s2.BaseURL)

	oa := NewOpenAlex(client, lookup(KeyOpenAlex))
	oa.BaseURL = base("openalex", oa.BaseURL)

	reader := NewReadability(client, logger)

	entries := []struct {
		cat types.Category
		p   provider.Provider
		def defaults
	}{
		{types.CategoryWeb, brave, defaults{timeout: 5 * time.Second}},
		{types.CategoryWeb, tavily, defaults{timeout: 8 * time.Second, weight: 1.2}},
		{types.CategoryWeb, searx, defaults{timeout: 10 * time.Second}},

		{types.CategoryPaper, arxiv, defaults{timeout: 5 * time.Second, rateLimit: 1}},
		{types.CategoryPaper, pubmed, defaults{timeout: 5 * time.Second, rateLimit: 3}},
		{types.CategoryPaper, s2, defaults{timeout: 5 * time.Second, weight: 1.1}},
		{types.CategoryPaper, oa, defaults{timeout: 5 * time.Second}},

		{types.CategoryContent, tavily, defaults{timeout: 30 * time.Second}},
		{types.CategoryContent, reader, defaults{timeout: 30 * time.Second}},
	}

	var regs []provider.Registration
	for _, e := range entries {
		s := opts.Settings[e.p.Name()]
		if s.Disabled {
			logger.Debug("provider disabled", zap.String("provider", e.p.Name()))
			continue
		}
		reg := provider.Registration{
			Category:  e.cat,
			Provider:  e.p,
			Timeout:   e.def.timeout,
			Weight:    e.def.weight,
			RateLimit: e.def.rateLimit,
		}
		if s.Timeout > 0 {
			reg.Timeout = s.Timeout
		}
		if s.Weight > 0 {
			reg.Weight = s.Weight
		}
		if s.RateLimit > 0 {
			reg.RateLimit = s.RateLimit
		}
		regs = append(regs, reg)
	}
	return regs
}

// NewRegistry builds the registry of built-in providers, computing each
// provider's validity once from opts.Lookup.
func NewRegistry(opts Options) (*provider.Registry, error) {
	return provider.NewRegistry(opts.Lookup, Registrations(opts)...)
}

// Names lists the built-in provider names.
func Names() []string {
	return []string{"brave", "tavily", "searxng", "arxiv", "pubmed", "semantic_scholar", "openalex", "readability"}
}

// hostOf returns the host of a URL, or "" when it has none.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// truncate shortens s to n runes and marks the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
