// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/unified-search/pkg/types"
)

// CSLItem represents a bibliographic entry in CSL (Citation Style Language)
// format. The field names and structure follow the CSL-JSON/CSL-YAML schema
// so that output is consumable by Pandoc and reference managers.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	Source   string    `yaml:"source,omitempty"`
}

// CSLName represents a person's name in CSL format.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate represents a date in CSL format using date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// CSL writes search results as a CSL-YAML list to w.
func CSL(w io.Writer, results []types.SearchResult) error {
	items := make([]CSLItem, len(results))
	for i, r := range results {
		items[i] = toCSLItem(r)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(items)
}

func toCSLItem(r types.SearchResult) CSLItem {
	item := CSLItem{
		ID:       r.URL,
		Type:     "webpage",
		Title:    r.Title,
		Abstract: r.Abstract,
		DOI:      r.DOI,
		URL:      r.URL,
		Source:   r.Source,
	}
	if r.DOI != "" {
		item.ID = r.DOI
		item.Type = "article-journal"
	} else if len(r.Authors) > 0 || r.PDFURL != "" {
		item.Type = "article"
	}

	for _, a := range r.Authors {
		item.Author = append(item.Author, parseAuthorName(a))
	}

	date := r.PublishedDate
	if date == "" {
		date = r.PublishedTime
	}
	if parts := dateParts(date); parts != nil {
		item.Issued = &CSLDate{DateParts: [][]int{parts}}
	}
	return item
}

// dateLayouts are the date shapes providers report, most precise first.
var dateLayouts = []struct {
	layout string
	parts  int
}{
	{time.RFC3339, 3},
	{"2006-01-02T15:04:05", 3},
	{"2006-01-02", 3},
	{"2006 Jan 2", 3},
	{"2006-01", 2},
	{"2006 Jan", 2},
	{"2006", 1},
}

// dateParts parses a provider date into CSL date-parts, keeping only the
// precision the source gave.
func dateParts(s string) []int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, l := range dateLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		return []int{t.Year(), int(t.Month()), t.Day()}[:l.parts]
	}
	return nil
}

// parseAuthorName splits a full name string into CSL family/given parts.
// It splits on the last space: everything before is given, the last token
// is family. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}
