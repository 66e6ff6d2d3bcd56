// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/unified-search/internal/download"
	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// openAlexAPIBase is the OpenAlex API root. Declared as a var so tests can
// substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org"

const openAlexMaxPerPage = 200

// OpenAlex queries the OpenAlex works index.
type OpenAlex struct {
	BaseURL string
	client  *httputil.Client
	// email is sent as the mailto parameter for polite pool access.
	email string
}

// NewOpenAlex returns an OpenAlex provider. email is optional.
func NewOpenAlex(client *httputil.Client, email string) *OpenAlex {
	return &OpenAlex{BaseURL: openAlexAPIBase, client: client, email: email}
}

func (o *OpenAlex) Name() string { return "openalex" }

func (o *OpenAlex) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeyOpenAlex: {
			Required:    false,
			Description: "Contact email for the OpenAlex polite pool (optional, faster responses)",
			ObtainFrom:  "https://docs.openalex.org/how-to-use-the-api/rate-limits-and-authentication",
			Example:     "you@example.com",
		},
	}
}

func (o *OpenAlex) withMailto(v url.Values) string {
	if o.email != "" {
		v.Set("mailto", o.email)
	}
	return v.Encode()
}

// Search runs a full-text works search.
func (o *OpenAlex) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{
		"search":   {query},
		"per_page": {strconv.Itoa(min(maxResults, openAlexMaxPerPage))},
		"page":     {"1"},
	}

	var oar openAlexResponse
	if err := o.client.GetJSON(ctx, o.BaseURL+"/works?"+o.withMailto(params), nil, &oar); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(oar.Results))
	for _, work := range oar.Results {
		abstract := reconstructAbstract(work.AbstractInvertedIndex)
		r := types.SearchResult{
			Title:         work.Title,
			URL:           work.ID,
			Snippet:       truncate(abstract, snippetLength),
			Source:        o.Name(),
			PublishedDate: work.PublicationDate,
			DOI:           strings.TrimPrefix(work.DOI, "https://doi.org/"),
			Abstract:      abstract,
			Metadata: map[string]any{
				"openalex_id":    strings.TrimPrefix(work.ID, "https://openalex.org/"),
				"year":           work.PublicationYear,
				"citation_count": work.CitedByCount,
				"is_oa":          work.OpenAccess.IsOA,
			},
		}
		if work.DOI != "" {
			r.URL = work.DOI
		}
		if work.BestOALocation != nil {
			r.PDFURL = work.BestOALocation.PDFURL
		}
		for _, authorship := range work.Authorships {
			if authorship.Author.DisplayName != "" {
				r.Authors = append(r.Authors, authorship.Author.DisplayName)
			}
		}
		results = append(results, r)
	}
	return results, nil
}

// Download resolves the best open-access location of a work and fetches
// its PDF. paperID may be an OpenAlex ID (W...) or a DOI.
func (o *OpenAlex) Download(ctx context.Context, paperID, dir string) (string, error) {
	id := strings.TrimSpace(paperID)
	if strings.HasPrefix(id, "10.") {
		id = "doi:" + id
	}

	var work openAlexWork
	u := o.BaseURL + "/works/" + url.PathEscape(id) + "?" + o.withMailto(url.Values{})
	if err := o.client.GetJSON(ctx, strings.TrimSuffix(u, "?"), nil, &work); err != nil {
		return "", err
	}

	pdf := ""
	if work.BestOALocation != nil {
		pdf = work.BestOALocation.PDFURL
	}
	if pdf == "" {
		return "", fmt.Errorf("no open-access PDF available for %s", paperID)
	}
	return download.ToDir(ctx, o.client, pdf, dir, paperID)
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Results []openAlexWork `json:"results"`
}

type openAlexWork struct {
	ID                    string               `json:"id"`
	Title                 string               `json:"title"`
	DOI                   string               `json:"doi"`
	PublicationDate       string               `json:"publication_date"`
	PublicationYear       int                  `json:"publication_year"`
	CitedByCount          int                  `json:"cited_by_count"`
	Authorships           []openAlexAuthorship `json:"authorships"`
	AbstractInvertedIndex map[string][]int     `json:"abstract_inverted_index"`
	OpenAccess            struct {
		IsOA  bool   `json:"is_oa"`
		OAURL string `json:"oa_url"`
	} `json:"open_access"`
	BestOALocation *struct {
		PDFURL     string `json:"pdf_url"`
		LandingURL string `json:"landing_page_url"`
	} `json:"best_oa_location"`
}

type openAlexAuthorship struct {
	Author struct {
		DisplayName string `json:"display_name"`
	} `json:"author"`
}
