// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"maps"
	"math"
	"sort"

	"github.com/pdiddy/unified-search/pkg/types"
)

// RankDecay is the per-position decay of a provider's base score:
// the result at rank r scores RankDecay^r before weighting.
const RankDecay = 0.95

// batch is one provider's successful result list.
type batch struct {
	provider string
	weight   float64
	results  []types.SearchResult
}

// candidate is a ranked record awaiting deduplication.
type candidate struct {
	result   types.SearchResult
	adjusted float64
	order    int // provider iteration index
	rank     int // position in the provider's own list
}

// group collects the candidates that share one identity.
type group struct {
	merged types.SearchResult
	orders map[int]bool

	// paper identity
	doi    string
	title  string
	tokens map[string]bool
}

// baseScore maps a provider rank to a score in (0,1], strictly decreasing.
func baseScore(rank int) float64 {
	return math.Pow(RankDecay, float64(rank))
}

// consolidate ranks, deduplicates and truncates the batches. Batches must be
// in provider iteration order.
func consolidate(cat types.Category, batches []batch, maxResults int) []types.SearchResult {
	cands := rank(batches)
	groups := dedupe(cat, cands)

	names := make([]string, len(batches))
	for i, b := range batches {
		names[i] = b.provider
	}

	n := min(len(groups), maxResults)
	out := make([]types.SearchResult, 0, n)
	for _, g := range groups[:n] {
		out = append(out, g.finish(names))
	}
	return out
}

// rank scores every record and sorts by adjusted score, breaking ties by
// provider iteration order then original rank.
func rank(batches []batch) []candidate {
	var cands []candidate
	for order, b := range batches {
		for r, res := range b.results {
			adjusted := baseScore(r) * b.weight
			res.Score = math.Max(0, math.Min(1, adjusted))
			res.Source = b.provider
			cands = append(cands, candidate{result: res, adjusted: adjusted, order: order, rank: r})
		}
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.adjusted != b.adjusted {
			return a.adjusted > b.adjusted
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.rank < b.rank
	})
	return cands
}

// dedupe collapses candidates that share an identity key. Candidates arrive
// sorted, so the first of each group is its highest-ranked record and the
// group order is the output order.
func dedupe(cat types.Category, cands []candidate) []*group {
	var groups []*group
	byURL := make(map[string]*group)

	for _, c := range cands {
		var g *group
		key := ""
		if cat == types.CategoryPaper {
			g = matchPaper(groups, c.result)
		} else if key = NormalizeURL(c.result.URL); key != "" {
			g = byURL[key]
		}

		if g != nil {
			g.absorb(c)
			continue
		}

		g = newGroup(c)
		groups = append(groups, g)
		if key != "" {
			byURL[key] = g
		}
	}
	return groups
}

func newGroup(c candidate) *group {
	g := &group{merged: c.result, orders: map[int]bool{c.order: true}}
	g.merged.Metadata = maps.Clone(c.result.Metadata)
	g.index()
	return g
}

func (g *group) index() {
	g.doi = NormalizeDOI(g.merged.DOI)
	g.title = NormalizeTitle(g.merged.Title)
	g.tokens = tokenSet(g.title)
}

// matchPaper finds the group r belongs to. A DOI on both sides decides;
// otherwise titles must be equal or, when both have enough tokens, reach
// TitleSimilarity.
func matchPaper(groups []*group, r types.SearchResult) *group {
	doi := NormalizeDOI(r.DOI)
	title := NormalizeTitle(r.Title)
	tokens := tokenSet(title)

	for _, g := range groups {
		if doi != "" && g.doi != "" {
			if doi == g.doi {
				return g
			}
			continue
		}
		if title == "" || g.title == "" {
			continue
		}
		if title == g.title {
			return g
		}
		if len(tokens) >= minFuzzyTokens && len(g.tokens) >= minFuzzyTokens &&
			jaccard(tokens, g.tokens) >= TitleSimilarity {
			return g
		}
	}
	return nil
}

// absorb merges a lower-ranked duplicate into the group. The group keeps
// its own required fields and takes only what it is missing.
func (g *group) absorb(c candidate) {
	g.orders[c.order] = true
	mergeInto(&g.merged, c.result)
	g.index()
}

// mergeInto fills empty fields of dst from src.
func mergeInto(dst *types.SearchResult, src types.SearchResult) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.Snippet == "" {
		dst.Snippet = src.Snippet
	}
	if len(dst.Authors) == 0 && len(src.Authors) > 0 {
		dst.Authors = src.Authors
	}
	if dst.PublishedDate == "" {
		dst.PublishedDate = src.PublishedDate
	}
	if dst.DOI == "" {
		dst.DOI = src.DOI
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.PDFURL == "" {
		dst.PDFURL = src.PDFURL
	}
	if dst.Domain == "" {
		dst.Domain = src.Domain
	}
	if dst.PublishedTime == "" {
		dst.PublishedTime = src.PublishedTime
	}
	for k, v := range src.Metadata {
		if dst.Metadata == nil {
			dst.Metadata = make(map[string]any)
		}
		if _, ok := dst.Metadata[k]; !ok {
			dst.Metadata[k] = v
		}
	}
}

// finish records the contributing providers, in iteration order, under
// metadata["sources"].
func (g *group) finish(names []string) types.SearchResult {
	r := g.merged
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	sources := make([]string, 0, len(g.orders))
	for order, name := range names {
		if g.orders[order] {
			sources = append(sources, name)
		}
	}
	r.Metadata["sources"] = sources
	return r
}
