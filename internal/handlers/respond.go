// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"papermill/internal/engine"
	"papermill/internal/middleware"
)

// API error codes outside the engine's set.
const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "VERSION_CONFLICT"
	CodeArchived         = "TEMPLATE_ARCHIVED"
	CodeTooLarge         = "PAYLOAD_TOO_LARGE"
	CodeUnsupportedMedia = "UNSUPPORTED_MEDIA_TYPE"
	CodeUnavailable      = "SERVICE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// maxJSONBody bounds request bodies carrying template content.
const maxJSONBody = 5 << 20

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]errorBody{"error": {Code: code, Message: message}})
}

// writeEngineError maps compile and render failures to their status.
// Anything that is not an engine error is logged and reported as 500.
func writeEngineError(w http.ResponseWriter, err error) {
	var e *engine.Error
	if errors.As(err, &e) {
		if e.Code == engine.CodeRenderBackendError {
			slog.Error("render backend failed", "error", err)
		}
		writeError(w, e.HTTPStatus(), string(e.Code), e.Error())
		return
	}
	internalError(w, "render", err)
}

func internalError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	writeError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}

func notFound(w http.ResponseWriter, what string) {
	writeError(w, http.StatusNotFound, CodeNotFound, what+" not found")
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, CodeValidation, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// orgID returns the org set by the API key middleware. Routes are always
// mounted behind it, so a missing org is a wiring bug.
func orgID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := middleware.OrgFromCtx(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing API key")
	}
	return id, ok
}

// pathID parses a UUID URL parameter. Malformed IDs are reported as 404,
// the same as IDs that do not exist.
func pathID(w http.ResponseWriter, r *http.Request, name, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		notFound(w, what)
		return uuid.Nil, false
	}
	return id, true
}

// versionParam reads a version number from the "version" query parameter
// or the given URL parameter. Absent or 0 means latest.
func versionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "version")
	if raw == "" {
		raw = r.URL.Query().Get("version")
	}
	if raw == "" || raw == "latest" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, CodeValidation, "version must be a non-negative integer")
		return 0, false
	}
	return n, true
}
