// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package providers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/httputil"
	"github.com/pdiddy/unified-search/pkg/types"
)

// maxPageBytes bounds the body read from any one page.
const maxPageBytes = 5 << 20

// Readability is a local content provider. It fetches pages itself,
// extracts the readable article with go-readability, and walks links with
// goquery. It needs no credentials.
type Readability struct {
	client *httputil.Client
	logger *zap.Logger
}

// NewReadability returns a local content provider.
func NewReadability(client *httputil.Client, logger *zap.Logger) *Readability {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Readability{client: client, logger: logger}
}

func (r *Readability) Name() string { return "readability" }

func (r *Readability) Requirements() map[string]types.Requirement { return nil }

// Extract fetches each URL and returns its readable content. URLs that
// cannot be fetched or parsed are reported in Failed.
func (r *Readability) Extract(ctx context.Context, req types.ExtractRequest) (*types.ContentResult, error) {
	start := time.Now()
	out := &types.ContentResult{Provider: r.Name()}
	format := orDefault(req.Format, types.DefaultContentFormat)
	for _, raw := range req.URLs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := r.fetch(ctx, raw)
		if err != nil {
			out.Failed = append(out.Failed, types.FailedPage{URL: raw, Error: err.Error()})
			continue
		}
		page, err := doc.page(format, req.IncludeImages, req.IncludeFavicon)
		if err != nil {
			out.Failed = append(out.Failed, types.FailedPage{URL: raw, Error: err.Error()})
			continue
		}
		out.Pages = append(out.Pages, page)
	}
	out.ResponseTime = time.Since(start).Seconds()
	return out, nil
}

// Crawl walks the site breadth-first and extracts every visited page.
func (r *Readability) Crawl(ctx context.Context, req types.CrawlRequest) (*types.ContentResult, error) {
	start := time.Now()
	format := orDefault(req.Format, types.DefaultContentFormat)
	out := &types.ContentResult{Provider: r.Name(), BaseURL: req.URL}
	err := r.walk(ctx, req.WalkOptions, func(u string, doc *fetched, err error) {
		if err != nil {
			out.Failed = append(out.Failed, types.FailedPage{URL: u, Error: err.Error()})
			return
		}
		page, err := doc.page(format, false, req.IncludeFavicon)
		if err != nil {
			out.Failed = append(out.Failed, types.FailedPage{URL: u, Error: err.Error()})
			return
		}
		out.Pages = append(out.Pages, page)
	})
	if err != nil {
		return nil, err
	}
	out.ResponseTime = time.Since(start).Seconds()
	return out, nil
}

// Map walks the site breadth-first and returns the visited URLs.
func (r *Readability) Map(ctx context.Context, req types.MapRequest) (*types.ContentResult, error) {
	start := time.Now()
	out := &types.ContentResult{Provider: r.Name(), BaseURL: req.URL, URLs: []string{}}
	err := r.walk(ctx, req.WalkOptions, func(u string, _ *fetched, err error) {
		if err == nil {
			out.URLs = append(out.URLs, u)
		}
	})
	if err != nil {
		return nil, err
	}
	out.ResponseTime = time.Since(start).Seconds()
	return out, nil
}

// walk visits pages breadth-first from o.URL. visit is called once per
// visited URL. A failure to fetch the root page aborts the walk.
func (r *Readability) walk(ctx context.Context, o types.WalkOptions, visit func(string, *fetched, error)) error {
	o = o.WithDefaults()
	root, err := url.Parse(o.URL)
	if err != nil || root.Host == "" {
		return fmt.Errorf("invalid url %q", o.URL)
	}
	f, err := newLinkFilter(root, o)
	if err != nil {
		return err
	}

	type node struct {
		url   string
		depth int
	}
	queue := []node{{url: root.String()}}
	seen := map[string]bool{root.String(): true}
	visited := 0

	for len(queue) > 0 && visited < o.Limit {
		if err := ctx.Err(); err != nil {
			return err
		}
		n := queue[0]
		queue = queue[1:]

		doc, err := r.fetch(ctx, n.url)
		if err != nil && visited == 0 && n.url == root.String() {
			return err
		}
		visited++
		visit(n.url, doc, err)
		if err != nil || n.depth >= o.MaxDepth {
			continue
		}

		followed := 0
		for _, link := range doc.links() {
			if followed >= o.MaxBreadth {
				break
			}
			if seen[link] || !f.allow(link) {
				continue
			}
			seen[link] = true
			followed++
			queue = append(queue, node{url: link, depth: n.depth + 1})
		}
	}
	r.logger.Debug("walk finished",
		zap.String("url", o.URL),
		zap.Int("visited", visited),
		zap.Int("pending", len(queue)),
	)
	return nil
}

// fetched is one downloaded HTML page.
type fetched struct {
	url  *url.URL
	body []byte
	doc  *goquery.Document
}

func (r *Readability) fetch(ctx context.Context, raw string) (*fetched, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid url %q", raw)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", raw, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", raw, err)
	}
	return &fetched{url: u, body: body, doc: doc}, nil
}

// page extracts the readable article. format "html" keeps the cleaned
// markup; any other format returns plain text.
func (f *fetched) page(format string, images, favicon bool) (types.Page, error) {
	article, err := readability.FromReader(bytes.NewReader(f.body), f.url)
	if err != nil {
		return types.Page{}, fmt.Errorf("extracting %s: %w", f.url, err)
	}
	p := types.Page{
		URL:        f.url.String(),
		Title:      article.Title,
		RawContent: strings.TrimSpace(article.TextContent),
	}
	if format == "html" {
		p.RawContent = article.Content
	}
	if p.Title == "" {
		p.Title = collapse(f.doc.Find("title").First().Text())
	}
	if images {
		f.doc.Find("img[src]").Each(func(_ int, s *goquery.Selection) {
			if src, ok := s.Attr("src"); ok {
				if abs := f.resolve(src); abs != "" {
					p.Images = append(p.Images, abs)
				}
			}
		})
	}
	if favicon {
		if href, ok := f.doc.Find(`link[rel~="icon"]`).First().Attr("href"); ok {
			p.Favicon = f.resolve(href)
		}
		if p.Favicon == "" {
			p.Favicon = article.Favicon
		}
	}
	return p, nil
}

// links returns the absolute http(s) links of the page in document order,
// without fragments or duplicates.
func (f *fetched) links() []string {
	var out []string
	seen := map[string]bool{}
	f.doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := f.resolve(href)
		if abs == "" || seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, abs)
	})
	return out
}

func (f *fetched) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := f.url.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""
	return abs.String()
}

// linkFilter decides which discovered links a walk may follow.
type linkFilter struct {
	host     string
	external bool
	paths    []*regexp.Regexp
	domains  []*regexp.Regexp
}

func newLinkFilter(root *url.URL, o types.WalkOptions) (*linkFilter, error) {
	f := &linkFilter{host: strings.ToLower(root.Hostname()), external: o.AllowExternal}
	for _, p := range o.SelectPaths {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid select_paths pattern %q: %w", p, err)
		}
		f.paths = append(f.paths, re)
	}
	for _, d := range o.SelectDomains {
		re, err := regexp.Compile(d)
		if err != nil {
			return nil, fmt.Errorf("invalid select_domains pattern %q: %w", d, err)
		}
		f.domains = append(f.domains, re)
	}
	return f, nil
}

func (f *linkFilter) allow(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case len(f.domains) > 0:
		if !anyMatch(f.domains, host) {
			return false
		}
	case host != f.host && !f.external:
		return false
	}
	if len(f.paths) > 0 && !anyMatch(f.paths, u.Path) {
		return false
	}
	return true
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
