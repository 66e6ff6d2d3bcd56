// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/unified-search/internal/download"
	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// arXiv endpoints. Declared as vars so tests can substitute httptest servers.
var (
	arxivAPIBase = "https://export.arxiv.org/api/query"
	arxivAbsBase = "https://arxiv.org/abs/"
	arxivPDFBase = "https://arxiv.org/pdf/"
)

// Arxiv queries the arXiv Atom API and downloads PDFs from arxiv.org.
type Arxiv struct {
	BaseURL string
	PDFBase string
	client  *httputil.Client
}

// NewArxiv returns an arXiv provider. arXiv needs no credentials.
func NewArxiv(client *httputil.Client) *Arxiv {
	return &Arxiv{BaseURL: arxivAPIBase, PDFBase: arxivPDFBase, client: client}
}

func (a *Arxiv) Name() string { return "arxiv" }

func (a *Arxiv) Requirements() map[string]types.Requirement {
	return map[string]types.Requirement{}
}

// Search runs an all-fields relevance query.
func (a *Arxiv) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	params := url.Values{
		"search_query": {"all:" + query},
		"start":        {"0"},
		"max_results":  {strconv.Itoa(maxResults)},
		"sortBy":       {"relevance"},
		"sortOrder":    {"descending"},
	}

	var feed arxivFeed
	if err := a.client.GetXML(ctx, a.BaseURL+"?"+params.Encode(), nil, &feed); err != nil {
		return nil, err
	}

	results := make([]types.SearchResult, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		arxivID := extractArxivID(entry.ID)
		title := collapse(entry.Title)
		if arxivID == "" || title == "" {
			continue
		}
		summary := collapse(entry.Summary)

		r := types.SearchResult{
			Title:         title,
			URL:           arxivAbsBase + arxivID,
			Snippet:       truncate(summary, snippetLength),
			Source:        a.Name(),
			PublishedDate: entry.Published,
			DOI:           strings.TrimSpace(entry.DOI),
			Abstract:      summary,
			PDFURL:        a.PDFBase + arxivID + ".pdf",
		}
		for _, au := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(au.Name))
		}
		var cats []string
		for _, c := range entry.Categories {
			cats = append(cats, c.Term)
		}
		r.Metadata = map[string]any{"arxiv_id": arxivID, "categories": cats}
		results = append(results, r)
	}
	return results, nil
}

// Download fetches the PDF for an arXiv identifier. Old-style identifiers
// such as hep-th/9901001 are saved as hep-th_9901001.pdf.
func (a *Arxiv) Download(ctx context.Context, paperID, dir string) (string, error) {
	id := strings.TrimSpace(paperID)
	if len(id) > 6 && strings.EqualFold(id[:6], "arxiv:") {
		id = id[6:]
	}
	if id == "" {
		return "", fmt.Errorf("empty arXiv identifier")
	}
	return download.ToDir(ctx, a.client, a.PDFBase+id+".pdf", dir, id)
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	DOI        string          `xml:"http://arxiv.org/schemas/atom doi"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

// extractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := strings.TrimSpace(idURL[idx+len(prefix):])

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
