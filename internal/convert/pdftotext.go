// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// CommandRunner runs an external program and returns its stdout.
type CommandRunner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

type osRunner struct{}

func (osRunner) LookPath(file string) (string, error) { return exec.LookPath(file) }

func (osRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil && stderr.Len() > 0 {
		return out, fmt.Errorf("%w: %s", err, bytes.TrimSpace(stderr.Bytes()))
	}
	return out, err
}

// Pdftotext converts with poppler's pdftotext, keeping the page layout.
type Pdftotext struct {
	Bin    string
	runner CommandRunner
}

// NewPdftotext returns a converter using pdftotext from PATH.
func NewPdftotext() *Pdftotext {
	return &Pdftotext{Bin: "pdftotext", runner: osRunner{}}
}

func (p *Pdftotext) Name() string { return "pdftotext" }

func (p *Pdftotext) Convert(ctx context.Context, pdfPath string) (string, error) {
	if _, err := p.runner.LookPath(p.Bin); err != nil {
		return "", fmt.Errorf("%s not installed: %w", p.Bin, err)
	}
	out, err := p.runner.Output(ctx, p.Bin, "-layout", "-enc", "UTF-8", pdfPath, "-")
	if err != nil {
		return "", fmt.Errorf("running %s on %s: %w", p.Bin, pdfPath, err)
	}
	return string(out), nil
}
