// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/unified-search/pkg/types"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme host path", "HTTPS://Example.COM/Docs/Intro", "https://example.com/docs/intro"},
		{"strips trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"root path", "https://example.com/", "https://example.com"},
		{"drops fragment", "https://example.com/a#section", "https://example.com/a"},
		{"strips tracking params", "https://example.com/a?utm_source=x&UTM_Medium=y&fbclid=1&gclid=2&ref=hn", "https://example.com/a"},
		{"keeps and sorts other params", "https://example.com/a?z=1&utm_campaign=c&a=2", "https://example.com/a?a=2&z=1"},
		{"drops empty query marker", "https://go.dev/doc?", "https://go.dev/doc"},
		{"drops query left empty by tracking strip", "https://go.dev/doc?utm_source=x", "https://go.dev/doc"},
		{"unparseable falls back to lowercase", "Not A URL/", "not a url"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestNormalizeDOI(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"10.1000/XYZ", "10.1000/xyz"},
		{"https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"doi:10.1000/xyz", "10.1000/xyz"},
		{"  ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDOI(tt.in))
		})
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Attention Is All You Need", "attention is all you need"},
		{"  Deep   Learning:  A Review!  ", "deep learning a review"},
		{"GPT-4 Technical Report", "gpt4 technical report"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTitle(tt.in))
		})
	}
}

func TestJaccard(t *testing.T) {
	a := tokenSet("large language models for code generation")
	b := tokenSet("large language models for code")
	assert.InDelta(t, 5.0/6.0, jaccard(a, b), 1e-9)
	assert.Equal(t, 1.0, jaccard(a, a))
	assert.Equal(t, 0.0, jaccard(nil, nil))
}

func TestBaseScore(t *testing.T) {
	assert.Equal(t, 1.0, baseScore(0))
	prev := math.Inf(1)
	for r := 0; r < 200; r++ {
		s := baseScore(r)
		assert.Greater(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
		assert.Less(t, s, prev)
		prev = s
	}
}

func TestMatchPaper(t *testing.T) {
	groups := dedupe("paper", []candidate{
		{result: resultWith("A Survey of Graph Neural Networks for Drug Discovery", "")},
		{result: resultWith("Short Title", "10.1/abc")},
	})

	tests := []struct {
		name  string
		title string
		doi   string
		want  int // index of matched group, -1 for none
	}{
		{"fuzzy title match", "A Survey of Graph Neural Networks for Drug Discovery Applications", "", 0},
		{"same DOI, different title", "Completely Different", "DOI:10.1/ABC", 1},
		{"different DOI, same title", "Short Title", "10.1/xyz", -1},
		{"short titles need exact match", "Short Titles", "", -1},
		{"exact short title", "short title!", "", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := matchPaper(groups, resultWith(tt.title, tt.doi))
			if tt.want < 0 {
				assert.Nil(t, g)
				return
			}
			assert.Same(t, groups[tt.want], g)
		})
	}
}

func resultWith(title, doi string) types.SearchResult {
	return types.SearchResult{Title: title, DOI: doi}
}
