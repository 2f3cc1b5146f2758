// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"papermill/internal/engine"
	"papermill/internal/markdown"
	"papermill/internal/models"
	"papermill/internal/store"
)

type createVersionRequest struct {
	Content models.Content       `json:"content"`
	Schema  map[string]any       `json:"schema"`
	Status  models.VersionStatus `json:"status" validate:"omitempty,oneof=draft published"`
}

// ListVersions handles GET /v1/templates/{id}/versions.
func (a *API) ListVersions(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}
	list, err := a.versions.List(r.Context(), t.ID)
	if err != nil {
		internalError(w, "list versions", err)
		return
	}
	if list == nil {
		list = []models.VersionSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": list})
}

// GetVersion handles GET /v1/templates/{id}/versions/{version}.
func (a *API) GetVersion(w http.ResponseWriter, r *http.Request) {
	_, v, ok := a.loadVersion(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CreateVersion handles POST /v1/templates/{id}/versions. The content must
// have the shape of the template's type.
func (a *API) CreateVersion(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}
	var req createVersionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !a.check(w, req) {
		return
	}
	if req.Content.IsZero() {
		writeJSON(w, http.StatusBadRequest, map[string]errorBody{"error": {
			Code:    CodeValidation,
			Message: "validation failed",
			Details: map[string]string{"content": "is required"},
		}})
		return
	}
	a.appendVersion(w, r, t, req.Status, req.Content, req.Schema)
}

// maxMarkdownBody bounds Markdown imports.
const maxMarkdownBody = 1 << 20

// ImportMarkdown handles POST /v1/templates/{id}/versions/markdown. The
// body is Markdown text; the new version is stored as a document tree.
func (a *API) ImportMarkdown(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || (mt != "text/markdown" && mt != "text/plain") {
			writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMedia, "expected text/markdown")
			return
		}
	}
	if t.Type != models.TemplateTypeDocument {
		writeError(w, http.StatusUnprocessableEntity, string(engine.CodeSchemaMismatch),
			fmt.Sprintf("markdown can only be imported into document templates, not %q", t.Type))
		return
	}

	status := models.VersionStatus(r.URL.Query().Get("status"))
	if status != "" && status != models.VersionStatusDraft && status != models.VersionStatusPublished {
		writeError(w, http.StatusBadRequest, CodeValidation, "status must be one of: draft published")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMarkdownBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "markdown body too large")
		return
	}
	root, err := markdown.ToDocument(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(engine.CodeMalformedContent), err.Error())
		return
	}
	content, err := models.NewDocumentContent(root)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, string(engine.CodeMalformedContent), err.Error())
		return
	}
	a.appendVersion(w, r, t, status, content, nil)
}

// appendVersion checks that the content matches the template type and
// compiles, then stores it as the next version. An empty schema is derived from the content's bound keys.
func (a *API) appendVersion(w http.ResponseWriter, r *http.Request, t *models.Template, status models.VersionStatus, content models.Content, schema map[string]any) {
	if got, want := content.Shape(), models.ShapeFor(t.Type); got != want {
		writeError(w, http.StatusUnprocessableEntity, string(engine.CodeSchemaMismatch),
			fmt.Sprintf("%s template cannot store %s content", t.Type, got))
		return
	}
	// Versions are immutable, so content that cannot compile is refused here.
	if _, err := engine.Compile(t.Type, content); err != nil {
		writeEngineError(w, err)
		return
	}
	if len(schema) == 0 {
		schema = models.DeriveSchema(content)
	}

	v, err := a.versions.Append(r.Context(), t.ID, status, content, schema)
	switch {
	case errors.Is(err, store.ErrTemplateArchived):
		writeError(w, http.StatusConflict, CodeArchived, "template is archived")
	case errors.Is(err, store.ErrVersionConflict):
		writeError(w, http.StatusConflict, CodeConflict, "another version was appended concurrently; retry")
	case err != nil:
		internalError(w, "append version", err)
	default:
		writeJSON(w, http.StatusCreated, v)
	}
}
