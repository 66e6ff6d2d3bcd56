// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download fetches paper PDFs to disk. Files are written to a
// temporary name in the target directory and renamed on success, so a
// failed or cancelled download never leaves a partial PDF behind.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/unified-search/internal/httputil"
)

// ErrNotPDF is returned when the server answers with something other than a PDF.
var ErrNotPDF = errors.New("response is not a PDF")

var pdfMagic = []byte("%PDF")

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// FileName returns the filesystem-safe PDF name for a paper identifier.
func FileName(paperID string) string {
	return nameReplacer.Replace(strings.TrimSpace(paperID)) + ".pdf"
}

// ToDir downloads url into dir under the name derived from paperID and
// returns the written path.
func ToDir(ctx context.Context, client *httputil.Client, url, dir, paperID string) (string, error) {
	dest := filepath.Join(dir, FileName(paperID))
	if err := File(ctx, client, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// File downloads url to destPath.
func File(ctx context.Context, client *httputil.Client, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()

	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(resp.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading download: %w", err)
	}
	if !bytes.Equal(head[:n], pdfMagic) {
		return fmt.Errorf("%s: %w", url, ErrNotPDF)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".download-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, io.MultiReader(bytes.NewReader(head[:n]), resp.Body))
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
