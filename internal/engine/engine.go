// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine compiles template versions into self-contained HTML
// documents and hands them to a render backend for PDF output. Document
// trees and layouts have separate, pure compilers; the Engine adds shape
// checking, caching and backend dispatch on top.
package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"papermill/internal/metrics"
	"papermill/internal/models"
	"papermill/internal/render"
)

// ArtifactCache stores rendered PDFs by key. Implementations must treat
// failures as misses; the engine never fails a render because of them.
type ArtifactCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, pdf []byte)
}

// Engine compiles and renders template versions. It maintains an in-memory
// cache (L1) of assembled markup keyed by template and version, and an
// optional artifact cache (L2) of PDFs keyed by a hash of the markup.
type Engine struct {
	backend   render.Backend
	cache     *markupCache
	artifacts ArtifactCache
}

// New creates an engine with an empty L1 cache and no artifact cache.
func New(backend render.Backend) *Engine {
	return &Engine{
		backend: backend,
		cache:   newMarkupCache(maxMarkupEntries),
	}
}

// SetArtifactCache configures the L2 PDF cache. Call after New() when
// Valkey is available.
func (e *Engine) SetArtifactCache(c ArtifactCache) {
	e.artifacts = c
}

// Compile checks that content matches the template type, runs the matching
// compiler and assembles the full HTML document. It uses no cache.
func Compile(t models.TemplateType, c models.Content) (string, error) {
	want := models.ShapeFor(t)
	if want == models.ShapeUnknown {
		return "", schemaMismatch("unknown template type %q", t)
	}
	if got := c.Shape(); got != want {
		return "", schemaMismatch("%s template has %s content", t, got)
	}
	if err := c.Err(); err != nil {
		return "", malformedCause("content could not be decoded", err)
	}

	var (
		fragment string
		err      error
	)
	switch t {
	case models.TemplateTypeDocument:
		fragment, err = CompileDocument(c.Document())
	case models.TemplateTypeLayout:
		fragment, err = CompileLayout(c.Layout())
	}
	if err != nil {
		return "", err
	}
	return Assemble(t, fragment), nil
}

// Markup returns the assembled HTML document for a version without
// calling the backend. Content that does not match the template type is
// rejected before the cache is consulted.
func (e *Engine) Markup(tmpl *models.Template, v *models.TemplateVersion) (string, error) {
	if want := models.ShapeFor(tmpl.Type); want == models.ShapeUnknown || v.Content.Shape() != want {
		return Compile(tmpl.Type, v.Content)
	}
	key := cacheKey{template: tmpl.ID.String(), typ: tmpl.Type, id: v.ID.String(), version: v.Version}
	if markup, ok := e.cache.get(key); ok {
		return markup, nil
	}

	start := time.Now()
	markup, err := Compile(tmpl.Type, v.Content)
	metrics.ObserveCompile(string(tmpl.Type), time.Since(start))
	if err != nil {
		return "", err
	}

	e.cache.put(key, markup)
	return markup, nil
}

// Render compiles a version and renders it to PDF. Content that does not
// match the template type fails with SchemaMismatch before any compiler or
// backend runs. The backend is called at most once; its failures are
// wrapped as RenderBackendError.
func (e *Engine) Render(ctx context.Context, tmpl *models.Template, v *models.TemplateVersion) ([]byte, error) {
	typ := string(tmpl.Type)

	markup, err := e.Markup(tmpl, v)
	if err != nil {
		metrics.RecordRender(typ, outcomeFor(err))
		return nil, err
	}

	key := e.artifactKey(markup)
	if e.artifacts != nil {
		if pdf, ok := e.artifacts.Get(ctx, key); ok {
			metrics.RecordRender(typ, metrics.OutcomeCacheHit)
			return pdf, nil
		}
	}

	start := time.Now()
	pdf, err := e.backend.Render(ctx, markup)
	metrics.ObserveBackend(e.backend.Name(), time.Since(start))
	if err != nil {
		slog.Error("render backend failed",
			"backend", e.backend.Name(),
			"template", tmpl.ID,
			"version", v.Version,
			"error", err,
		)
		metrics.RecordRender(typ, metrics.OutcomeBackendError)
		return nil, backendFailure(e.backend.Name(), err)
	}

	if e.artifacts != nil {
		e.artifacts.Set(ctx, key, pdf)
	}
	metrics.RecordRender(typ, metrics.OutcomeOK)
	return pdf, nil
}

// artifactKey identifies a PDF by backend and markup. The backend is
// deterministic for identical markup, so equal keys mean equal artifacts.
func (e *Engine) artifactKey(markup string) string {
	h := sha256.New()
	h.Write([]byte(e.backend.Name()))
	h.Write([]byte{0})
	h.Write([]byte(markup))
	return hex.EncodeToString(h.Sum(nil))
}

func outcomeFor(err error) string {
	switch CodeOf(err) {
	case CodeSchemaMismatch:
		return metrics.OutcomeSchemaMismatch
	case CodeMalformedContent:
		return metrics.OutcomeMalformedContent
	default:
		return metrics.OutcomeBackendError
	}
}
