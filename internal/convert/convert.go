// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns downloaded paper PDFs into text with pluggable
// backends. Converted text is cached next to the PDF as Markdown with a
// small frontmatter block, so a paper is converted once.
package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrNoConverter is returned when no backend is available.
var ErrNoConverter = errors.New("no PDF converter available")

// Converter transforms a PDF file into text. Different backends
// (pdftotext, markitdown) implement this interface.
type Converter interface {
	Name() string
	Convert(ctx context.Context, pdfPath string) (string, error)
}

// Reader extracts paper text by trying its converters in order. It
// satisfies the engine's text reader contract.
type Reader struct {
	converters []Converter
	logger     *zap.Logger
	// Cache enables the Markdown cache next to each PDF.
	Cache bool
}

// NewReader returns a Reader over converters, tried in order.
func NewReader(logger *zap.Logger, converters ...Converter) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{converters: converters, logger: logger, Cache: true}
}

// Default returns a Reader using pdftotext, then the markitdown container
// when a runtime is present. Backends are detected lazily on first use.
func Default(logger *zap.Logger) *Reader {
	return NewReader(logger, NewPdftotext(), NewMarkitdown(nil))
}

// ReadText returns the text of the PDF at path.
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	cached := cachePath(path)
	if r.Cache {
		if data, err := os.ReadFile(cached); err == nil {
			r.logger.Debug("using cached conversion", zap.String("path", cached))
			return stripFrontmatter(string(data)), nil
		}
	}
	if len(r.converters) == 0 {
		return "", ErrNoConverter
	}

	var errs []error
	for _, c := range r.converters {
		text, err := c.Convert(ctx, path)
		if err == nil && strings.TrimSpace(text) == "" {
			err = fmt.Errorf("%s produced empty output for %s", c.Name(), path)
		}
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			r.logger.Debug("converter failed", zap.String("converter", c.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		text = clean(text)
		if r.Cache {
			if err := os.WriteFile(cached, []byte(addFrontmatter(path, c.Name(), text)), 0o644); err != nil {
				r.logger.Warn("caching conversion failed", zap.String("path", cached), zap.Error(err))
			}
		}
		return text, nil
	}
	return "", fmt.Errorf("converting %s: %w", filepath.Base(path), errors.Join(errs...))
}

func cachePath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".md"
}

// clean normalizes converter output: page breaks become blank lines and
// trailing whitespace is dropped.
func clean(s string) string {
	s = strings.ReplaceAll(s, "\f", "\n\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// addFrontmatter prepends YAML frontmatter to the converted text.
func addFrontmatter(pdfPath, converter, body string) string {
	ts := time.Now().UTC().Format(time.RFC3339)
	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "source_pdf: %q\n", filepath.Base(pdfPath))
	fmt.Fprintf(&b, "converter: %q\n", converter)
	fmt.Fprintf(&b, "converted_at: %q\n", ts)
	b.WriteString("---\n\n")
	b.WriteString(body)
	return b.String()
}

func stripFrontmatter(s string) string {
	if !strings.HasPrefix(s, "---\n") {
		return s
	}
	end := strings.Index(s[4:], "\n---\n")
	if end < 0 {
		return s
	}
	return strings.TrimLeft(s[4+end+5:], "\n")
}
