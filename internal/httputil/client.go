// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP helpers shared by the upstream providers.
// Calls are made exactly once; non-2xx responses become a *StatusError.
package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// DefaultUserAgent identifies unified-search to upstream APIs.
const DefaultUserAgent = "unified-search/0.1"

// maxErrorBody bounds how much of an error response is kept for messages.
const maxErrorBody = 512

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	var msg string
	switch {
	case e.Unauthorized():
		msg = fmt.Sprintf("HTTP %d: authentication failed", e.Code)
	case e.RateLimited():
		msg = "HTTP 429: rate limited"
	default:
		msg = fmt.Sprintf("HTTP %d", e.Code)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unauthorized reports a rejected credential.
func (e *StatusError) Unauthorized() bool {
	return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
}

// RateLimited reports an upstream quota rejection.
func (e *StatusError) RateLimited() bool { return e.Code == http.StatusTooManyRequests }

// Client is a thin wrapper around http.Client that sets a User-Agent and
// turns non-2xx responses into errors.
type Client struct {
	HTTP      *http.Client
	UserAgent string
}

// New returns a Client using hc, or http.DefaultClient when hc is nil.
func New(hc *http.Client, userAgent string) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &Client{HTTP: hc, UserAgent: userAgent}
}

// Do sends req. On a non-2xx status the body is drained and closed and a
// *StatusError is returned; otherwise the caller owns resp.Body.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}

// GetJSON issues a GET and decodes the JSON response into v.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Accept", "application/json")
	return c.decode(req, func(r io.Reader) error { return json.NewDecoder(r).Decode(v) })
}

// PostJSON encodes body as JSON, POSTs it, and decodes the response into v.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, body, v any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	copyHeader(req.Header, header)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.decode(req, func(r io.Reader) error { return json.NewDecoder(r).Decode(v) })
}

// GetXML issues a GET and decodes the XML response into v.
func (c *Client) GetXML(ctx context.Context, url string, header http.Header, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	copyHeader(req.Header, header)
	return c.decode(req, func(r io.Reader) error { return xml.NewDecoder(r).Decode(v) })
}

func (c *Client) decode(req *http.Request, dec func(io.Reader) error) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := dec(resp.Body); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
