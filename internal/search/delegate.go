// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/unified-search/internal/provider"
	"github.com/pdiddy/unified-search/pkg/types"
)

// ErrNoReader is returned by Read when the engine has no text reader.
var ErrNoReader = errors.New("no text reader configured")

// Download fetches one paper PDF through the named paper provider.
func (e *Engine) Download(ctx context.Context, req types.DownloadRequest) types.Envelope[types.DownloadResult] {
	start := time.Now()
	res, err := e.download(ctx, req.PaperID, req.Provider, req.SavePath)
	return finish(e, "download", res.Provider, start, res, err)
}

// Read downloads one paper and returns its extracted text.
func (e *Engine) Read(ctx context.Context, req types.ReadRequest) types.Envelope[types.ReadResult] {
	start := time.Now()
	res, err := e.read(ctx, req)
	return finish(e, "read", res.Provider, start, res, err)
}

func (e *Engine) download(ctx context.Context, paperID, name, dir string) (types.DownloadResult, error) {
	if strings.TrimSpace(paperID) == "" {
		return types.DownloadResult{}, provider.Validationf("paper_id must not be empty")
	}
	inferred := name == ""
	if inferred {
		owner, normalized, ok := InferPaperProvider(paperID)
		if !ok {
			return types.DownloadResult{}, provider.Validationf("provider must be given: cannot infer one from paper_id %q", paperID)
		}
		name, paperID = owner, normalized
	}
	dl, d, err := provider.Require[provider.Downloader](e.registry, types.CategoryPaper, name)
	if inferred && errors.Is(err, provider.ErrUnsupported) {
		return types.DownloadResult{}, provider.Validationf(
			"paper_id %q is a %s identifier and %s has no PDF download; name a provider that can download it", paperID, name, name)
	}
	if err != nil {
		return types.DownloadResult{}, err
	}
	if dir == "" {
		dir = e.downloadDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return types.DownloadResult{}, err
	}

	path, err := call(ctx, d, e.downloadTimeout, func(ctx context.Context) (string, error) {
		return dl.Download(ctx, paperID, dir)
	})
	if err != nil {
		return types.DownloadResult{}, err
	}
	return types.DownloadResult{
		FilePath: path,
		Provider: name,
		PaperID:  paperID,
		Message:  "paper downloaded successfully",
	}, nil
}

func (e *Engine) read(ctx context.Context, req types.ReadRequest) (types.ReadResult, error) {
	if e.reader == nil {
		return types.ReadResult{}, ErrNoReader
	}
	dl, err := e.download(ctx, req.PaperID, req.Provider, req.SavePath)
	if err != nil {
		return types.ReadResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.downloadTimeout)
	defer cancel()
	text, err := e.reader.ReadText(ctx, dl.FilePath)
	if err != nil {
		return types.ReadResult{}, err
	}
	return types.ReadResult{
		PaperID:  dl.PaperID,
		Provider: dl.Provider,
		FilePath: dl.FilePath,
		Content:  text,
		Message:  "paper read successfully",
	}, nil
}

// Extract pulls page content from a list of URLs with one content provider.
func (e *Engine) Extract(ctx context.Context, req types.ExtractRequest) types.Envelope[types.ContentResult] {
	start := time.Now()
	if req.Provider == "" {
		req.Provider = types.DefaultContentProvider
	}
	res, err := e.content(ctx, req.Provider, func() error {
		if len(req.URLs) == 0 {
			return provider.Validationf("urls must not be empty")
		}
		return nil
	}, func(ctx context.Context, cp provider.ContentProvider) (*types.ContentResult, error) {
		return cp.Extract(ctx, req)
	})
	return finish(e, "extract", req.Provider, start, res, err)
}

// Crawl walks a site from one URL and returns page content.
func (e *Engine) Crawl(ctx context.Context, req types.CrawlRequest) types.Envelope[types.ContentResult] {
	start := time.Now()
	if req.Provider == "" {
		req.Provider = types.DefaultContentProvider
	}
	req.WalkOptions = req.WalkOptions.WithDefaults()
	res, err := e.content(ctx, req.Provider, func() error { return validateURL(req.URL) },
		func(ctx context.Context, cp provider.ContentProvider) (*types.ContentResult, error) {
			return cp.Crawl(ctx, req)
		})
	return finish(e, "crawl", req.Provider, start, res, err)
}

// Map walks a site from one URL and returns the discovered URLs.
func (e *Engine) Map(ctx context.Context, req types.MapRequest) types.Envelope[types.ContentResult] {
	start := time.Now()
	if req.Provider == "" {
		req.Provider = types.DefaultContentProvider
	}
	req.WalkOptions = req.WalkOptions.WithDefaults()
	res, err := e.content(ctx, req.Provider, func() error { return validateURL(req.URL) },
		func(ctx context.Context, cp provider.ContentProvider) (*types.ContentResult, error) {
			return cp.Map(ctx, req)
		})
	return finish(e, "map", req.Provider, start, res, err)
}

func (e *Engine) content(ctx context.Context, name string, validate func() error,
	fn func(context.Context, provider.ContentProvider) (*types.ContentResult, error)) (types.ContentResult, error) {
	if err := validate(); err != nil {
		return types.ContentResult{}, err
	}
	cp, d, err := provider.Require[provider.ContentProvider](e.registry, types.CategoryContent, name)
	if err != nil {
		return types.ContentResult{}, err
	}
	res, err := call(ctx, d, d.Timeout, func(ctx context.Context) (*types.ContentResult, error) {
		return fn(ctx, cp)
	})
	if err != nil {
		return types.ContentResult{}, err
	}
	if res == nil {
		return types.ContentResult{Provider: name}, nil
	}
	return *res, nil
}

func validateURL(u string) error {
	if strings.TrimSpace(u) == "" {
		return provider.Validationf("url must not be empty")
	}
	return nil
}

// finish records the operation and wraps its outcome.
func finish[T any](e *Engine, op, name string, start time.Time, res T, err error) types.Envelope[T] {
	elapsed := time.Since(start)
	e.metrics.ObserveOperation(op, err == nil, elapsed)
	log := e.logger.With(
		zap.String("operation", op),
		zap.String("provider", name),
		zap.Duration("duration", elapsed),
	)
	if err != nil {
		log.Warn("operation failed", zap.Error(err))
		return types.Fail[T](nil, err)
	}
	log.Info("operation completed")
	return types.OK(res)
}
