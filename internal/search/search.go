// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search is the orchestration engine: it fans one query out to the
// providers of a category concurrently, isolates per-provider failures, and
// consolidates the combined results into one ranked, bounded response. It
// also delegates single-provider operations (download, read, extract, crawl,
// map) and wraps every outcome in the uniform envelope.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/provider"
	"github.com/pdiddy/unified-search/pkg/types"
)

// DefaultDownloadTimeout bounds a paper download when none is configured.
const DefaultDownloadTimeout = 60 * time.Second

// Recorder receives engine measurements.
type Recorder interface {
	ObserveProvider(category, provider, status string, d time.Duration)
	ObserveOperation(operation string, success bool, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveProvider(string, string, string, time.Duration) {}
func (nopRecorder) ObserveOperation(string, bool, time.Duration)          {}

// TextReader extracts plain text from a downloaded paper.
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

// Engine is the facade over the provider registry. It holds no per-request
// state and is safe for concurrent use.
type Engine struct {
	registry        *provider.Registry
	logger          *zap.Logger
	metrics         Recorder
	reader          TextReader
	downloadDir     string
	downloadTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics sets the measurement sink.
func WithMetrics(r Recorder) Option {
	return func(e *Engine) {
		if r != nil {
			e.metrics = r
		}
	}
}

// WithTextReader sets the converter used by Read.
func WithTextReader(r TextReader) Option {
	return func(e *Engine) { e.reader = r }
}

// WithDownloadDir sets the directory used when a download names none.
func WithDownloadDir(dir string) Option {
	return func(e *Engine) {
		if dir != "" {
			e.downloadDir = dir
		}
	}
}

// WithDownloadTimeout bounds downloads and reads.
func WithDownloadTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.downloadTimeout = d
		}
	}
}

// New returns an Engine over reg.
func New(reg *provider.Registry, opts ...Option) *Engine {
	e := &Engine{
		registry:        reg,
		logger:          zap.NewNop(),
		metrics:         nopRecorder{},
		downloadDir:     types.DefaultSavePath,
		downloadTimeout: DefaultDownloadTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SearchWeb fans req out to the web providers.
func (e *Engine) SearchWeb(ctx context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	return e.search(ctx, types.CategoryWeb, req)
}

// SearchPapers fans req out to the paper providers.
func (e *Engine) SearchPapers(ctx context.Context, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	return e.search(ctx, types.CategoryPaper, req)
}

func (e *Engine) search(ctx context.Context, cat types.Category, req types.SearchRequest) types.Envelope[types.SearchResponse] {
	start := time.Now()
	log := e.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("category", string(cat)),
	)

	env := e.fanOut(ctx, log, cat, req, start)

	elapsed := time.Since(start)
	e.metrics.ObserveOperation("search_"+string(cat), env.Success, elapsed)
	if env.Success {
		log.Info("search completed",
			zap.Int("results", env.Data.TotalResults),
			zap.Strings("providers_used", env.Data.ProvidersUsed),
			zap.Int("provider_errors", len(env.Data.Errors)),
			zap.Duration("duration", elapsed),
		)
	} else {
		log.Warn("search failed", zap.String("error", env.Error), zap.Duration("duration", elapsed))
	}
	return env
}

func (e *Engine) fanOut(ctx context.Context, log *zap.Logger, cat types.Category, req types.SearchRequest, start time.Time) types.Envelope[types.SearchResponse] {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return types.Fail[types.SearchResponse](nil, provider.Validationf("query must not be empty"))
	}
	if req.MaxResults <= 0 {
		return types.Fail[types.SearchResponse](nil, provider.Validationf("max_results must be positive, got %d", req.MaxResults))
	}

	resolved, err := e.registry.Resolve(cat, req.Providers)
	if err != nil {
		return types.Fail[types.SearchResponse](nil, err)
	}

	resp := types.SearchResponse{
		Query:         req.Query,
		Results:       []types.SearchResult{},
		ProvidersUsed: []string{},
		Errors:        map[string]string{},
	}

	// Explicitly requested providers without configuration fail here,
	// before any task is started.
	var attempt []provider.Descriptor
	for _, d := range resolved {
		if err := d.ConfigError(); err != nil {
			resp.Errors[d.Name] = err.Error()
			e.observe(log, d, outcome{err: err})
			continue
		}
		attempt = append(attempt, d)
	}
	if len(attempt) == 0 {
		resp.SearchTime = types.Elapsed(time.Since(start))
		return types.Fail(&resp, provider.ErrNoProviders)
	}

	outcomes := e.dispatch(ctx, log, attempt, query, req.MaxResults)

	batches := make([]batch, 0, len(attempt))
	for i, d := range attempt {
		o := outcomes[i]
		if o.err != nil {
			resp.Errors[d.Name] = o.err.Error()
			continue
		}
		resp.ProvidersUsed = append(resp.ProvidersUsed, d.Name)
		batches = append(batches, batch{provider: d.Name, weight: d.Weight, results: o.results})
	}

	resp.Results = consolidate(cat, batches, req.MaxResults)
	resp.TotalResults = len(resp.Results)
	resp.SearchTime = types.Elapsed(time.Since(start))
	return types.OK(resp)
}

// Providers reports every registered provider with its configuration
// contract and validity.
func (e *Engine) Providers() types.Envelope[[]types.ProviderInfo] {
	return types.OK(e.registry.Infos())
}
