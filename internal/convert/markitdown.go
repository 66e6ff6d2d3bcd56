// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/pdiddy/unified-search/internal/container"
)

const imageMarkitdown = "markitdown:latest"

// Markitdown converts PDFs by piping them through the markitdown container
// image. The runtime is detected on first use unless one was injected.
type Markitdown struct {
	mu      sync.Mutex
	runtime container.Runtime
	detect  func(context.Context) (container.Runtime, error)
}

// NewMarkitdown returns a markitdown converter. A nil runtime is detected
// lazily with container.Detect.
func NewMarkitdown(rt container.Runtime) *Markitdown {
	return &Markitdown{runtime: rt, detect: container.Detect}
}

func (m *Markitdown) Name() string { return "markitdown" }

func (m *Markitdown) rt(ctx context.Context) (container.Runtime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runtime != nil {
		return m.runtime, nil
	}
	rt, err := m.detect(ctx)
	if err != nil {
		return nil, err
	}
	if err := rt.ImageExists(ctx, imageMarkitdown); err != nil {
		return nil, fmt.Errorf("markitdown image not available in %s: %w", rt.Name(), err)
	}
	m.runtime = rt
	return rt, nil
}

// Convert reads the PDF at pdfPath, pipes it through the markitdown
// container, and returns the resulting Markdown text.
func (m *Markitdown) Convert(ctx context.Context, pdfPath string) (string, error) {
	rt, err := m.rt(ctx)
	if err != nil {
		return "", err
	}

	f, err := os.Open(pdfPath)
	if err != nil {
		return "", fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := rt.Run(ctx, imageMarkitdown, f, &out); err != nil {
		return "", fmt.Errorf("converting %s with markitdown: %w", pdfPath, err)
	}
	return out.String(), nil
}
