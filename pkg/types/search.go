// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data structures for unified-search: search
// results, fan-out requests and responses, delegating operation payloads, the
// response envelope, and engine configuration.
package types

import (
	"encoding/json"
	"math"
	"time"
)

// Category groups providers by result schema.
type Category string

const (
	CategoryWeb     Category = "web"
	CategoryPaper   Category = "paper"
	CategoryContent Category = "content"
)

// SearchResult is one record returned by a provider. Paper and web fields are
// optional: an empty value means the field does not apply to the provider
// that produced the record.
type SearchResult struct {
	// Title is the page or paper title.
	Title string `json:"title" yaml:"title"`

	// URL is the canonical link to the result.
	URL string `json:"url" yaml:"url"`

	// Snippet is a short excerpt suitable for display.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Source is the name of the provider that produced the record.
	Source string `json:"source" yaml:"source"`

	// Score is the relevance score in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Authors lists paper authors in source order.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// PublishedDate is the publication date as reported upstream.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// DOI is the digital object identifier, when the provider knows it.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Abstract is the full paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// PDFURL links directly to a PDF copy of the paper.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// Domain is the host of a web result.
	Domain string `json:"domain,omitempty" yaml:"domain,omitempty"`

	// PublishedTime is the publication time of a web page as reported upstream.
	PublishedTime string `json:"published_time,omitempty" yaml:"published_time,omitempty"`

	// Metadata carries provider-specific fields. After consolidation it
	// always holds "sources", the providers that returned this record.
	Metadata map[string]any `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// SearchRequest is a fan-out request.
type SearchRequest struct {
	// Query is the search text; it must not be blank.
	Query string `json:"query"`

	// Providers optionally restricts the request to the named providers.
	// When empty, every valid provider of the category is used.
	Providers []string `json:"providers,omitempty"`

	// MaxResults bounds the consolidated result list. It must be positive.
	MaxResults int `json:"max_results"`
}

// DefaultMaxResults is the result bound transports apply when the caller
// does not give one.
const DefaultMaxResults = 10

// SearchResponse is the consolidated outcome of a fan-out request.
type SearchResponse struct {
	Query         string            `json:"query"`
	Results       []SearchResult    `json:"results"`
	TotalResults  int               `json:"total_results"`
	ProvidersUsed []string          `json:"providers_used"`
	SearchTime    Elapsed           `json:"search_time"`
	Errors        map[string]string `json:"errors"`
}

// Elapsed is a duration that serializes as fractional seconds.
type Elapsed time.Duration

// Seconds returns the duration in seconds.
func (e Elapsed) Seconds() float64 { return time.Duration(e).Seconds() }

// MarshalJSON encodes the duration as seconds rounded to milliseconds.
func (e Elapsed) MarshalJSON() ([]byte, error) {
	return json.Marshal(math.Round(e.Seconds()*1000) / 1000)
}

// UnmarshalJSON decodes fractional seconds.
func (e *Elapsed) UnmarshalJSON(data []byte) error {
	var secs float64
	if err := json.Unmarshal(data, &secs); err != nil {
		return err
	}
	*e = Elapsed(time.Duration(secs * float64(time.Second)))
	return nil
}
