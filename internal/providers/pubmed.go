// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities root. Declared as a var so tests
// can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

const pubmedMaxAuthors = 5

// PubMed searches PubMed through E-utilities: esearch for matching IDs,
// then esummary for their records.
type PubMed struct {
	BaseURL string
	client  *httputil.Client
	apiKey  string
}

// NewPubMed returns a PubMed provider. apiKey is optional.
func NewPubMed(client *httputil.Client, apiKey string) *PubMed {
	return &PubMed{BaseURL: pubmedAPIBase, client: client, apiKey: apiKey}
}

func (p *PubMed) Name() string { return "pubmed" }

func (p *PubMed) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{
		KeyPubMed: {
			Required:    false,
			Description: "PubMed API key (optional, increases rate limit)",
			ObtainFrom:  "https://www.ncbi.nlm.nih.gov/account/",
		},
	}
}

// Search returns summaries in esearch relevance order.
func (p *PubMed) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := p.params(url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmax":  {strconv.Itoa(maxResults)},
		"retmode": {"json"},
	})
	var sr pubmedSearchResponse
	if err := p.client.GetJSON(ctx, p.BaseURL+"/esearch.fcgi?"+params.Encode(), nil, &sr); err != nil {
		return nil, err
	}
	ids := sr.Result.IDList
	if len(ids) == 0 {
		return []types.SearchResult{}, nil
	}

	params = p.params(url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	})
	var sum pubmedSummaryResponse
	if err := p.client.GetJSON(ctx, p.BaseURL+"/esummary.fcgi?"+params.Encode(), nil, &sum); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(ids))
	for _, pmid := range ids {
		raw, ok := sum.Result[pmid]
		if !ok {
			continue
		}
		var doc pubmedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing summary %s: %w", pmid, err)
		}
		results = append(results, doc.toResult(p.Name(), pmid))
	}
	return results, nil
}

func (p *PubMed) params(v url.Values) url.Values {
	if p.apiKey != "" {
		v.Set("api_key", p.apiKey)
	}
	return v
}

// E-utilities JSON structures.
type pubmedSearchResponse struct {
	Result struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

// pubmedSummaryResponse keeps records raw: "result" mixes a "uids" array
// with one object per PMID.
type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedDoc struct {
	Title           string   `json:"title"`
	PubDate         string   `json:"pubdate"`
	FullJournalName string   `json:"fulljournalname"`
	ELocationID     string   `json:"elocationid"`
	PubType         []string `json:"pubtype"`
	Authors         []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIDs []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

func (d pubmedDoc) doi() string {
	for _, id := range d.ArticleIDs {
		if id.IDType == "doi" {
			return id.Value
		}
	}
	if rest, ok := strings.CutPrefix(d.ELocationID, "doi:"); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

func (d pubmedDoc) toResult(source, pmid string) types.SearchResult {
	var authors []string
	for _, a := range d.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}
	if len(authors) > pubmedMaxAuthors {
		authors = authors[:pubmedMaxAuthors]
	}

	snippet := d.FullJournalName
	if d.PubDate != "" {
		snippet = strings.TrimSpace(snippet + " (" + d.PubDate + ")")
	}

	return types.SearchResult{
		Title:         d.Title,
		URL:           "https://pubmed.ncbi.nlm.nih.gov/" + pmid + "/",
		Snippet:       snippet,
		Source:        source,
		Authors:       authors,
		PublishedDate: d.PubDate,
		DOI:           d.doi(),
		Metadata: map[string]any{
			"pmid":    pmid,
			"journal": d.FullJournalName,
			"pubtype": d.PubType,
		},
	}
}
