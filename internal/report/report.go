// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders engine envelopes for people and tools: aligned
// text tables, indented JSON, CSL-YAML bibliographies, and saved query
// files that can be reloaded without re-querying providers.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/unified-search/pkg/types"
)

// Format names accepted by the CLI.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSL  = "csl"
)

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// SearchTable writes a ranked result table followed by the providers used
// and any per-provider errors.
func SearchTable(w io.Writer, env types.Envelope[types.SearchResponse]) error {
	if !env.Success && env.Data == nil {
		_, err := fmt.Fprintf(w, "Error: %s\n", env.Error)
		return err
	}
	resp := env.Data
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
	} else {
		fmt.Fprintf(w, "%-4s  %-6s  %-50s  %-18s  %s\n", "Rank", "Score", "Title", "Sources", "URL")
		fmt.Fprintln(w, strings.Repeat("-", 120))
		for i, r := range resp.Results {
			fmt.Fprintf(w, "%-4d  %-6.3f  %-50s  %-18s  %s\n",
				i+1, r.Score, clip(r.Title, 50), clip(sources(r), 18), r.URL)
		}
	}

	fmt.Fprintf(w, "\n%d result(s) in %.2fs", resp.TotalResults, resp.SearchTime.Seconds())
	if len(resp.ProvidersUsed) > 0 {
		fmt.Fprintf(w, " from %s", strings.Join(resp.ProvidersUsed, ", "))
	}
	fmt.Fprintln(w)
	for _, name := range sortedKeys(resp.Errors) {
		fmt.Fprintf(w, "  %s: %s\n", name, resp.Errors[name])
	}
	if !env.Success {
		_, err := fmt.Fprintf(w, "Error: %s\n", env.Error)
		return err
	}
	return nil
}

// ContentTable summarizes an extract, crawl or map result.
func ContentTable(w io.Writer, env types.Envelope[types.ContentResult]) error {
	if !env.Success {
		_, err := fmt.Fprintf(w, "Error: %s\n", env.Error)
		return err
	}
	res := env.Data
	for _, p := range res.Pages {
		fmt.Fprintf(w, "== %s\n", p.URL)
		if p.Title != "" {
			fmt.Fprintf(w, "   %s\n", p.Title)
		}
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(p.RawContent))
	}
	for _, u := range res.URLs {
		fmt.Fprintln(w, u)
	}
	for _, f := range res.Failed {
		fmt.Fprintf(w, "failed: %s: %s\n", f.URL, f.Error)
	}
	_, err := fmt.Fprintf(w, "provider %s, %d page(s), %d url(s), %d failure(s)\n",
		res.Provider, len(res.Pages), len(res.URLs), len(res.Failed))
	return err
}

// ProviderTable lists registered providers and their configuration state.
func ProviderTable(w io.Writer, infos []types.ProviderInfo) error {
	fmt.Fprintf(w, "%-8s  %-18s  %-6s  %-20s  %s\n", "Category", "Provider", "Valid", "Capabilities", "Missing")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, p := range infos {
		valid := "yes"
		if !p.Valid {
			valid = "no"
		}
		fmt.Fprintf(w, "%-8s  %-18s  %-6s  %-20s  %s\n",
			p.Category, p.Name, valid, strings.Join(p.Capabilities, ","), strings.Join(p.Missing, ", "))
	}
	return nil
}

func sources(r types.SearchResult) string {
	switch s := r.Metadata["sources"].(type) {
	case []string:
		return strings.Join(s, ",")
	case []any:
		names := make([]string, 0, len(s))
		for _, v := range s {
			names = append(names, fmt.Sprint(v))
		}
		return strings.Join(names, ",")
	}
	return r.Source
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
