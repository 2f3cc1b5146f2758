// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package render

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxPDFBytes caps how much of a renderer response is read.
const maxPDFBytes = 64 << 20

// HTTPBackend posts markup to an external renderer service
// (POST {url}/render with {"html": "..."}) and returns the PDF body.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// NewHTTP creates an HTTP backend. A zero timeout means 30 seconds.
func NewHTTP(baseURL string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Name() string { return "http" }

type httpRenderRequest struct {
	HTML string `json:"html"`
}

// Render sends one request; it never retries.
func (b *HTTPBackend) Render(ctx context.Context, markup string) ([]byte, error) {
	payload, err := json.Marshal(httpRenderRequest{HTML: markup})
	if err != nil {
		return nil, fmt.Errorf("renderer marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/render", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("renderer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("renderer http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPDFBytes+1))
	if err != nil {
		return nil, fmt.Errorf("renderer read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer error (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}
	if len(body) > maxPDFBytes {
		return nil, fmt.Errorf("renderer response exceeds %d bytes", maxPDFBytes)
	}
	if !bytes.HasPrefix(body, pdfMagic) {
		return nil, fmt.Errorf("renderer returned %q, not a PDF", resp.Header.Get("Content-Type"))
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
