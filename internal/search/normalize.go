// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"net/url"
	"strings"
	"unicode"
)

// TitleSimilarity is the token-set Jaccard similarity at or above which two
// paper titles without a shared DOI are treated as the same paper.
const TitleSimilarity = 0.85

// minFuzzyTokens is the shortest title eligible for fuzzy matching. Shorter
// titles must match exactly.
const minFuzzyTokens = 4

// trackingParams are query parameters removed before URLs are compared.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"msclkid": true,
	"mc_cid":  true,
	"mc_eid":  true,
	"ref":     true,
	"ref_src": true,
	"igshid":  true,
	"yclid":   true,
	"_hsenc":  true,
	"_hsmi":   true,
}

func isTrackingParam(key string) bool {
	k := strings.ToLower(key)
	return strings.HasPrefix(k, "utm_") || trackingParams[k]
}

// NormalizeURL returns the identity key for a web result: scheme, host and
// path lower-cased, fragment and tracking parameters removed, remaining
// parameters sorted, trailing slash stripped.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.TrimRight(strings.ToLower(raw), "/")
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(strings.ToLower(u.Path), "/")
	u.RawPath = ""
	u.Fragment = ""
	u.RawFragment = ""

	q := u.Query()
	for k := range q {
		if isTrackingParam(k) {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()
	u.ForceQuery = false
	return u.String()
}

// NormalizeDOI lower-cases a DOI and strips resolver prefixes.
func NormalizeDOI(doi string) string {
	d := strings.ToLower(strings.TrimSpace(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "https://dx.doi.org/", "http://dx.doi.org/", "doi:"} {
		d = strings.TrimPrefix(d, prefix)
	}
	return strings.TrimSpace(d)
}

// NormalizeTitle returns a lowercased, punctuation-stripped version of the
// title with whitespace collapsed.
func NormalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(normalized) {
		set[tok] = true
	}
	return set
}

// jaccard returns |a∩b| / |a∪b|, or 0 when both are empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
