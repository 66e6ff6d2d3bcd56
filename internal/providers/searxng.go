// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"net/url"
	"strings"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// SearXNG queries a self-hosted or public SearXNG meta-search instance.
type SearXNG struct {
	serverURL string
	client    *httputil.Client
}

// NewSearXNG returns a SearXNG provider for the instance at serverURL.
func NewSearXNG(client *httputil.Client, serverURL string) *SearXNG {
	return &SearXNG{serverURL: strings.TrimRight(serverURL, "/"), client: client}
}

func (s *SearXNG) Name() string { return "searxng" }

func (s *SearXNG) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeySearXNG: {
			Required:    true,
			Description: "Base URL of your SearXNG instance",
			ObtainFrom:  "Self-hosted SearXNG instance or public instance",
			Example:     "https://searx.example.com",
		},
	}
}

// Search asks the instance for its first JSON result page.
func (s *SearXNG) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"pageno": {"1"},
	}

	var sr searxResponse
	if err := s.client.GetJSON(ctx, s.serverURL+"/search?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}

	items := sr.Results[:min(len(sr.Results), maxResults)]
	results := make([]types.SearchResult, 0, len(items))
	for _, item := range items {
		meta := map[string]any{"engines": item.Engines}
		if item.Engine != "" {
			meta["engine"] = item.Engine
		}
		if item.Score != 0 {
			meta["score"] = item.Score
		}
		if item.Category != "" {
			meta["category"] = item.Category
		}
		if item.PublishedDate != "" {
			meta["publishedDate"] = item.PublishedDate
		}
		results = append(results, types.SearchResult{
			Title:         item.Title,
			URL:           item.URL,
			Snippet:       item.Content,
			Source:        s.Name(),
			Domain:        hostOf(item.URL),
			PublishedTime: item.PublishedDate,
			Metadata:      meta,
		})
	}
	return results, nil
}

// SearXNG JSON structures.
type searxResponse struct {
	Results []searxResult `json:"results"`
}

type searxResult struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	Content       string   `json:"content"`
	Engine        string   `json:"engine"`
	Engines       []string `json:"engines"`
	Score         float64  `json:"score"`
	Category      string   `json:"category"`
	PublishedDate string   `json:"publishedDate"`
}
