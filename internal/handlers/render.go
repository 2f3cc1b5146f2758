// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"papermill/internal/slug"
)

// RenderTemplate handles POST /v1/templates/{id}/render?version=N. It
// compiles the version, renders it through the backend and returns the
// PDF as an attachment. No partial output is ever written on failure.
func (a *API) RenderTemplate(w http.ResponseWriter, r *http.Request) {
	t, v, ok := a.loadVersion(w, r)
	if !ok {
		return
	}

	pdf, err := a.engine.Render(r.Context(), t, v)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/pdf")
	h.Set("Content-Disposition", `attachment; filename="`+slug.Filename(t.Name, v.Version)+`"`)
	h.Set("Content-Length", strconv.Itoa(len(pdf)))
	h.Set("X-Template-Version", strconv.Itoa(v.Version))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// Markup handles GET /v1/templates/{id}/markup?version=N and returns the
// assembled HTML document without calling the render backend.
func (a *API) Markup(w http.ResponseWriter, r *http.Request) {
	t, v, ok := a.loadVersion(w, r)
	if !ok {
		return
	}

	markup, err := a.engine.Markup(t, v)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Template-Version", strconv.Itoa(v.Version))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(markup))
}
