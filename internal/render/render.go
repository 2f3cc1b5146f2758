// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render turns assembled HTML markup into PDF bytes. Each backend
// implements the Backend interface; New selects one by name from config.
package render

import (
	"context"
	"fmt"
	"time"
)

// Backend defines the interface every rendering backend must implement.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Render converts a complete HTML document into a PDF.
	Render(ctx context.Context, markup string) ([]byte, error)

	// Name returns the backend identifier (e.g., "http", "chromium").
	Name() string
}

// Config holds the settings shared by the backends.
type Config struct {
	Backend string        // "http" or "chromium"
	URL     string        // renderer service base URL (http backend)
	Timeout time.Duration // per-render deadline
}

// New creates the backend named in cfg.
func New(cfg Config) (Backend, error) {
	switch cfg.Backend {
	case "", "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("render: http backend needs RENDERER_URL")
		}
		return NewHTTP(cfg.URL, cfg.Timeout), nil
	case "chromium":
		return NewChromium(cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("render: unknown backend %q", cfg.Backend)
	}
}

// pdfMagic is the prefix every PDF file starts with.
var pdfMagic = []byte("%PDF-")
