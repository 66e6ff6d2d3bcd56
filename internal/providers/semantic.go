// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/unified-search/internal/download"
	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// semanticAPIBase is the Semantic Scholar Graph API root. Declared as a var
// so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

const (
	semanticFields     = "paperId,title,abstract,authors,year,url,publicationDate,externalIds,citationCount,openAccessPdf"
	semanticMaxResults = 100
	semanticMaxAuthors = 5
)

// SemanticScholar queries the Semantic Scholar Graph API.
type SemanticScholar struct {
	BaseURL string
	client  *httputil.Client
	apiKey  string
}

// NewSemanticScholar returns a Semantic Scholar provider. apiKey is optional.
func NewSemanticScholar(client *httputil.Client, apiKey string) *SemanticScholar {
	return &SemanticScholar{BaseURL: semanticAPIBase, client: client, apiKey: apiKey}
}

func (s *SemanticScholar) Name() string { return "semantic_scholar" }

func (s *SemanticScholar) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeySemanticScholar: {
			Required:    false,
			Description: "Semantic Scholar API key (optional, increases rate limit)",
			ObtainFrom:  "https://www.semanticscholar.org/product/api",
		},
	}
}

func (s *SemanticScholar) header() http.Header {
	if s.apiKey == "" {
		return nil
	}
	return http.Header{"x-api-key": {s.apiKey}}
}

// Search runs a relevance search over paper records.
func (s *SemanticScholar) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {strconv.Itoa(min(maxResults, semanticMaxResults))},
		"fields": {semanticFields},
	}

	var sr semanticResponse
	if err := s.client.GetJSON(ctx, s.BaseURL+"/paper/search?"+params.Encode(), s.header(), &sr); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(sr.Data))
	for _, paper := range sr.Data {
		r := types.SearchResult{
			Title:         paper.Title,
			URL:           paper.URL,
			Snippet:       truncate(paper.Abstract, snippetLength),
			Source:        s.Name(),
			PublishedDate: paper.PublicationDate,
			DOI:           paper.ExternalIDs.DOI,
			Abstract:      paper.Abstract,
			Metadata: map[string]any{
				"year":           paper.Year,
				"citation_count": paper.CitationCount,
				"paper_id":       paper.PaperID,
			},
		}
		if paper.ExternalIDs.ArXiv != "" {
			r.Metadata["arxiv_id"] = paper.ExternalIDs.ArXiv
		}
		if paper.OpenAccessPDF != nil {
			r.PDFURL = paper.OpenAccessPDF.URL
		}
		for _, a := range paper.Authors {
			if len(r.Authors) == semanticMaxAuthors {
				break
			}
			r.Authors = append(r.Authors, a.Name)
		}
		results = append(results, r)
	}
	return results, nil
}

// Download fetches the open-access PDF of a paper, when it has one.
func (s *SemanticScholar) Download(ctx context.Context, paperID, dir string) (string, error) {
	var paper semanticPaper
	u := s.BaseURL + "/paper/" + url.PathEscape(paperID) + "?fields=openAccessPdf"
	if err := s.client.GetJSON(ctx, u, s.header(), &paper); err != nil {
		return "", err
	}
	if paper.OpenAccessPDF == nil || paper.OpenAccessPDF.URL == "" {
		return "", fmt.Errorf("no open-access PDF available for %s", paperID)
	}
	return download.ToDir(ctx, s.client, paper.OpenAccessPDF.URL, dir, paperID)
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Abstract        string              `json:"abstract"`
	URL             string              `json:"url"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	CitationCount   int                 `json:"citationCount"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
	OpenAccessPDF   *struct {
		URL string `json:"url"`
	} `json:"openAccessPdf"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
