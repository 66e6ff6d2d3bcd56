// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/unified-search/pkg/types"
)

// QueryFile is the on-disk representation of a search and its results. A
// saved search can be reloaded and rendered later without re-querying
// providers.
type QueryFile struct {
	Query   QueryParams          `yaml:"query"`
	Results []types.SearchResult `yaml:"results"`
	Summary QuerySummary         `yaml:"summary"`
}

// QueryParams stores the request that produced the results.
type QueryParams struct {
	Category   types.Category `yaml:"category"`
	Text       string         `yaml:"text"`
	Providers  []string       `yaml:"providers,omitempty"`
	MaxResults int            `yaml:"max_results"`
}

// QuerySummary stores result statistics and a timestamp.
type QuerySummary struct {
	Total          int               `yaml:"total"`
	ProvidersUsed  []string          `yaml:"providers_used"`
	ProviderErrors map[string]string `yaml:"provider_errors,omitempty"`
	SearchSeconds  float64           `yaml:"search_seconds"`
	Timestamp      time.Time         `yaml:"timestamp"`
}

// WriteQueryFile saves a request and its response to a YAML file.
func WriteQueryFile(path string, cat types.Category, req types.SearchRequest, resp types.SearchResponse) error {
	qf := QueryFile{
		Query: QueryParams{
			Category:   cat,
			Text:       req.Query,
			Providers:  req.Providers,
			MaxResults: req.MaxResults,
		},
		Results: resp.Results,
		Summary: QuerySummary{
			Total:          resp.TotalResults,
			ProvidersUsed:  resp.ProvidersUsed,
			ProviderErrors: resp.Errors,
			SearchSeconds:  resp.SearchTime.Seconds(),
			Timestamp:      time.Now().UTC(),
		},
	}
	if len(qf.Summary.ProviderErrors) == 0 {
		qf.Summary.ProviderErrors = nil
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Request rebuilds the search request stored in the file.
func (qf *QueryFile) Request() types.SearchRequest {
	return types.SearchRequest{
		Query:      qf.Query.Text,
		Providers:  qf.Query.Providers,
		MaxResults: qf.Query.MaxResults,
	}
}

// Envelope rebuilds a successful search envelope from the saved results.
func (qf *QueryFile) Envelope() types.Envelope[types.SearchResponse] {
	resp := types.SearchResponse{
		Query:         qf.Query.Text,
		Results:       qf.Results,
		TotalResults:  len(qf.Results),
		ProvidersUsed: qf.Summary.ProvidersUsed,
		SearchTime:    types.Elapsed(time.Duration(qf.Summary.SearchSeconds * float64(time.Second))),
		Errors:        qf.Summary.ProviderErrors,
	}
	if resp.Results == nil {
		resp.Results = []types.SearchResult{}
	}
	if resp.Errors == nil {
		resp.Errors = map[string]string{}
	}
	return types.OK(resp)
}
