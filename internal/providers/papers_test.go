// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakePDF = "%PDF-1.4\n%fake body\n"

// --- arXiv ---

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <title>Attention Is All
      You Need</title>
    <summary>  The dominant sequence transduction models are based on complex recurrent networks.  </summary>
    <published>2017-06-12T17:57:34Z</published>
    <arxiv:doi>10.48550/arXiv.1706.03762</arxiv:doi>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <category term="cs.CL"/>
    <category term="cs.LG"/>
  </entry>
  <entry>
    <id>http://arxiv.org/api/errors</id>
    <title>Error</title>
  </entry>
</feed>`

func TestArxivSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "all:transformers", r.URL.Query().Get("search_query"))
		assert.Equal(t, "3", r.URL.Query().Get("max_results"))
		assert.Equal(t, "relevance", r.URL.Query().Get("sortBy"))
		w.Header().Set("Content-Type", "application/atom+xml")
		_, _ = w.Write([]byte(arxivFeedXML))
	}))
	defer srv.Close()

	a := NewArxiv(testClient())
	a.BaseURL = srv.URL
	results, err := a.Search(context.Background(), "transformers", 3)
	require.NoError(t, err)
	require.Len(t, results, 1, "entries without an abs id are skipped")

	r := results[0]
	assert.Equal(t, "Attention Is All You Need", r.Title)
	assert.Equal(t, "https://arxiv.org/abs/1706.03762", r.URL)
	assert.Equal(t, "10.48550/arXiv.1706.03762", r.DOI)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, r.Authors)
	assert.Equal(t, "https://arxiv.org/pdf/1706.03762.pdf", r.PDFURL)
	assert.Equal(t, "The dominant sequence transduction models are based on complex recurrent networks.", r.Abstract)
	assert.Equal(t, "1706.03762", r.Metadata["arxiv_id"])
	assert.Equal(t, []string{"cs.CL", "cs.LG"}, r.Metadata["categories"])
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041v12", "2301.07041"},
		{"http://arxiv.org/abs/2301.07041", "2301.07041"},
		{"http://arxiv.org/abs/hep-th/9901001v2", "hep-th/9901001"},
		{"http://arxiv.org/api/errors", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extractArxivID(tt.in))
		})
	}
}

func TestArxivDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pdf/hep-th/9901001.pdf", r.URL.Path)
		_, _ = w.Write([]byte(fakePDF))
	}))
	defer srv.Close()

	a := NewArxiv(testClient())
	a.PDFBase = srv.URL + "/pdf/"
	dir := t.TempDir()

	path, err := a.Download(context.Background(), "arXiv:hep-th/9901001", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hep-th_9901001.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fakePDF, string(data))
}

// --- PubMed ---

func TestPubMedSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pm-key", r.URL.Query().Get("api_key"))
		switch r.URL.Path {
		case "/esearch.fcgi":
			assert.Equal(t, "crispr", r.URL.Query().Get("term"))
			_, _ = w.Write([]byte(`{"esearchresult":{"idlist":["222","111"]}}`))
		case "/esummary.fcgi":
			assert.Equal(t, "222,111", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`{"result":{
				"uids":["111","222"],
				"111":{"title":"First","pubdate":"2020 Jan","fulljournalname":"Nature","elocationid":"doi: 10.1000/abc",
				       "authors":[{"name":"A"},{"name":"B"},{"name":"C"},{"name":"D"},{"name":"E"},{"name":"F"}]},
				"222":{"title":"Second","pubdate":"2021","fulljournalname":"Cell","pubtype":["Review"],
				       "articleids":[{"idtype":"pubmed","value":"222"},{"idtype":"doi","value":"10.2000/xyz"}]}
			}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewPubMed(testClient(), "pm-key")
	p.BaseURL = srv.URL
	results, err := p.Search(context.Background(), "crispr", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Second", results[0].Title, "esearch order is kept")
	assert.Equal(t, "10.2000/xyz", results[0].DOI)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/222/", results[0].URL)
	assert.Equal(t, "Cell (2021)", results[0].Snippet)
	assert.Equal(t, []string{"Review"}, results[0].Metadata["pubtype"])

	assert.Equal(t, "10.1000/abc", results[1].DOI, "doi falls back to elocationid")
	assert.Len(t, results[1].Authors, 5)
	assert.Equal(t, "111", results[1].Metadata["pmid"])
}

func TestPubMedNoHits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"esearchresult":{"idlist":[]}}`))
	}))
	defer srv.Close()

	p := NewPubMed(testClient(), "")
	p.BaseURL = srv.URL
	results, err := p.Search(context.Background(), "nothing", 5)
	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Equal(t, 1, calls, "esummary is skipped without ids")
}

// --- Semantic Scholar ---

func TestSemanticScholarSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/paper/search", r.URL.Path)
		assert.Equal(t, "s2-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		assert.Contains(t, r.URL.Query().Get("fields"), "openAccessPdf")
		_, _ = w.Write([]byte(`{"total":1,"data":[{
			"paperId":"abc123","title":"Deep Learning","abstract":"` + strings.Repeat("x", 250) + `",
			"url":"https://www.semanticscholar.org/paper/abc123","year":2015,"publicationDate":"2015-05-27",
			"citationCount":50000,
			"authors":[{"name":"Y LeCun"},{"name":"Y Bengio"},{"name":"G Hinton"}],
			"externalIds":{"DOI":"10.1038/nature14539","ArXiv":"1234.5678"},
			"openAccessPdf":{"url":"https://example.org/dl.pdf"}
		}]}`))
	}))
	defer srv.Close()

	s := NewSemanticScholar(testClient(), "s2-key")
	s.BaseURL = srv.URL
	results, err := s.Search(context.Background(), "deep learning", 500)
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "10.1038/nature14539", r.DOI)
	assert.Equal(t, "https://example.org/dl.pdf", r.PDFURL)
	assert.Equal(t, []string{"Y LeCun", "Y Bengio", "G Hinton"}, r.Authors)
	assert.Equal(t, 203, len(r.Snippet), "snippet is truncated with an ellipsis")
	assert.Equal(t, 2015, r.Metadata["year"])
	assert.Equal(t, 50000, r.Metadata["citation_count"])
	assert.Equal(t, "1234.5678", r.Metadata["arxiv_id"])
}

func TestSemanticScholarDownload(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/paper/open":
			_, _ = w.Write([]byte(`{"paperId":"open","openAccessPdf":{"url":"` + srv.URL + `/files/open.pdf"}}`))
		case "/paper/closed":
			_, _ = w.Write([]byte(`{"paperId":"closed","openAccessPdf":null}`))
		case "/files/open.pdf":
			_, _ = w.Write([]byte(fakePDF))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s := NewSemanticScholar(testClient(), "")
	s.BaseURL = srv.URL
	dir := t.TempDir()

	path, err := s.Download(context.Background(), "open", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "open.pdf"), path)

	_, err = s.Download(context.Background(), "closed", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open-access PDF")
}

// --- OpenAlex ---

func TestOpenAlexSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/works", r.URL.Path)
		assert.Equal(t, "graph neural networks", r.URL.Query().Get("search"))
		assert.Equal(t, "200", r.URL.Query().Get("per_page"))
		assert.Equal(t, "me@example.com", r.URL.Query().Get("mailto"))
		_, _ = w.Write([]byte(`{"results":[{
			"id":"https://openalex.org/W123","title":"GNNs","doi":"https://doi.org/10.5555/gnn",
			"publication_date":"2019-01-01","publication_year":2019,"cited_by_count":7,
			"authorships":[{"author":{"display_name":"Ada"}},{"author":{"display_name":""}}],
			"abstract_inverted_index":{"Graphs":[0],"are":[1],"everywhere":[2]},
			"open_access":{"is_oa":true},
			"best_oa_location":{"pdf_url":"https://example.org/gnn.pdf"}
		},{
			"id":"https://openalex.org/W456","title":"No DOI"
		}]}`))
	}))
	defer srv.Close()

	o := NewOpenAlex(testClient(), "me@example.com")
	o.BaseURL = srv.URL
	results, err := o.Search(context.Background(), "graph neural networks", 1000)
	require.NoError(t, err)
	require.Len(t, results, 2)

	r := results[0]
	assert.Equal(t, "10.5555/gnn", r.DOI)
	assert.Equal(t, "https://doi.org/10.5555/gnn", r.URL)
	assert.Equal(t, "Graphs are everywhere", r.Abstract)
	assert.Equal(t, []string{"Ada"}, r.Authors)
	assert.Equal(t, "https://example.org/gnn.pdf", r.PDFURL)
	assert.Equal(t, "W123", r.Metadata["openalex_id"])
	assert.Equal(t, true, r.Metadata["is_oa"])

	assert.Equal(t, "https://openalex.org/W456", results[1].URL, "url falls back to the work id")
	assert.Empty(t, results[1].PDFURL)
}

func TestOpenAlexDownload(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/works/doi:10.5555/gnn":
			_, _ = w.Write([]byte(`{"id":"https://openalex.org/W123","best_oa_location":{"pdf_url":"` + srv.URL + `/gnn.pdf"}}`))
		case "/works/W999":
			_, _ = w.Write([]byte(`{"id":"https://openalex.org/W999","best_oa_location":null}`))
		case "/gnn.pdf":
			_, _ = w.Write([]byte(fakePDF))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	o := NewOpenAlex(testClient(), "")
	o.BaseURL = srv.URL
	dir := t.TempDir()

	path, err := o.Download(context.Background(), "10.5555/gnn", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "10.5555_gnn.pdf"), path)

	_, err = o.Download(context.Background(), "W999", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no open-access PDF")
}

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{"nil map", nil, ""},
		{"empty map", map[string][]int{}, ""},
		{"single word", map[string][]int{"hello": {0}}, "hello"},
		{
			"multi-word ordered",
			map[string][]int{"We": {0}, "propose": {1}, "a": {2}, "new": {3}, "method": {4}},
			"We propose a new method",
		},
		{
			"repeated word",
			map[string][]int{"the": {0, 3}, "cat": {1}, "saw": {2}, "dog": {4}},
			"the cat saw the dog",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reconstructAbstract(tt.index))
		})
	}
}
