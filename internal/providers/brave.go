// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// braveAPIBase is the Brave web search endpoint. Declared as a var so tests
// can substitute an httptest server.
var braveAPIBase = "https://api.search.brave.com/res/v1/web/search"

// braveMaxCount is the largest page Brave serves.
const braveMaxCount = 20

// Brave queries the Brave Search API.
type Brave struct {
	BaseURL string
	client  *httputil.Client
	apiKey  string
}

// NewBrave returns a Brave provider using apiKey.
func NewBrave(client *httputil.Client, apiKey string) *Brave {
	return &Brave{BaseURL: braveAPIBase, client: client, apiKey: apiKey}
}

func (b *Brave) Name() string { return "brave" }

func (b *Brave) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeyBrave: {
			Required:    true,
			Description: "Brave Search API key",
			ObtainFrom:  "https://brave.com/search/api/",
		},
	}
}

// Search returns up to 20 web results.
func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{
		"q":                {query},
		"count":            {strconv.Itoa(min(maxResults, braveMaxCount))},
		"text_decorations": {"false"},
		"spellcheck":       {"false"},
	}
	header := http.Header{"X-Subscription-Token": {b.apiKey}}

	var br braveResponse
	if err := b.client.GetJSON(ctx, b.BaseURL+"?"+params.Encode(), header, &br); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(br.Web.Results))
	for _, item := range br.Web.Results {
		domain := item.MetaURL.Hostname
		if domain == "" {
			domain = hostOf(item.URL)
		}
		r := types.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Snippet:       item.Description,
			Source:        b.Name(),
			Domain:        domain,
			PublishedTime: item.PageAge,
			Metadata:      map[string]any{},
		}
		if item.Age != "" {
			r.Metadata["age"] = item.Age
		}
		if item.Language != "" {
			r.Metadata["language"] = item.Language
		}
		results = append(results, r)
	}
	return results, nil
}

// Brave API JSON structures.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Age         string `json:"age"`
	PageAge     string `json:"page_age"`
	Language    string `json:"language"`
	MetaURL     struct {
		Hostname string `json:"hostname"`
	} `json:"meta_url"`
}
