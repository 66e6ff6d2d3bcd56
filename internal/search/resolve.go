// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"regexp"
	"strings"
)

// Paper identifier shapes.
var (
	// "2301.07041", "arXiv:2301.07041", "2301.07041v2", "hep-th/9901001".
	arxivPattern = regexp.MustCompile(`^(?i:arxiv:)?(\d{4}\.\d{4,5}(?:v\d+)?|[a-z\-]+(?:\.[A-Z]{2})?/\d{7}(?:v\d+)?)$`)

	// "10.1145/1234567.1234568", optionally with a doi.org prefix.
	doiPattern = regexp.MustCompile(`^10\.\d{4,9}/\S+$`)

	// PubMed IDs are plain integers.
	pmidPattern = regexp.MustCompile(`^\d{1,9}$`)

	// Semantic Scholar corpus hashes.
	s2Pattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

	// OpenAlex work IDs.
	openAlexPattern = regexp.MustCompile(`^W\d+$`)
)

// InferPaperProvider picks the paper provider that owns an identifier and
// returns the identifier in the form that provider expects. ok is false
// when the identifier has no recognizable shape.
func InferPaperProvider(id string) (name, normalized string, ok bool) {
	id = strings.TrimSpace(id)
	if u, err := url.Parse(id); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return inferFromURL(u)
	}
	switch {
	case arxivPattern.MatchString(id):
		return "arxiv", arxivPattern.FindStringSubmatch(id)[1], true
	case doiPattern.MatchString(id):
		return "openalex", id, true
	case strings.HasPrefix(strings.ToLower(id), "doi:") && doiPattern.MatchString(id[4:]):
		return "openalex", id[4:], true
	case pmidPattern.MatchString(id):
		return "pubmed", id, true
	case s2Pattern.MatchString(id):
		return "semantic_scholar", id, true
	case openAlexPattern.MatchString(id):
		return "openalex", id, true
	}
	return "", id, false
}

// inferFromURL handles landing-page URLs of the known hosts.
func inferFromURL(u *url.URL) (string, string, bool) {
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")
	switch host {
	case "arxiv.org", "export.arxiv.org":
		for _, prefix := range []string{"abs/", "pdf/"} {
			if rest, found := strings.CutPrefix(path, prefix); found {
				return InferPaperProvider(strings.TrimSuffix(rest, ".pdf"))
			}
		}
	case "doi.org", "dx.doi.org":
		if doiPattern.MatchString(path) {
			return "openalex", path, true
		}
	case "pubmed.ncbi.nlm.nih.gov":
		if pmidPattern.MatchString(path) {
			return "pubmed", path, true
		}
	case "openalex.org":
		if openAlexPattern.MatchString(path) {
			return "openalex", path, true
		}
	case "semanticscholar.org":
		if i := strings.LastIndex(path, "/"); i >= 0 && s2Pattern.MatchString(path[i+1:]) {
			return "semantic_scholar", path[i+1:], true
		}
	}
	return "", u.String(), false
}
