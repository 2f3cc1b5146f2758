// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"papermill/internal/models"
	"papermill/internal/store"
)

type createTemplateRequest struct {
	Name string              `json:"name" validate:"required,max=200"`
	Type models.TemplateType `json:"type" validate:"required,oneof=layout document"`
}

// CreateTemplate handles POST /v1/templates.
func (a *API) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	var req createTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !a.check(w, req) {
		return
	}

	t, err := a.templates.Create(r.Context(), org, req.Name, req.Type)
	if err != nil {
		internalError(w, "create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// ListTemplates handles GET /v1/templates.
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	list, err := a.templates.ListByOrg(r.Context(), org)
	if err != nil {
		internalError(w, "list templates", err)
		return
	}
	if list == nil {
		list = []models.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": list})
}

// GetTemplate handles GET /v1/templates/{id}.
func (a *API) GetTemplate(w http.ResponseWriter, r *http.Request) {
	t, ok := a.loadTemplate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// ArchiveTemplate handles POST /v1/templates/{id}/archive. Archived
// templates keep rendering but accept no new versions.
func (a *API) ArchiveTemplate(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "template")
	if !ok {
		return
	}
	if err := a.templates.Archive(r.Context(), org, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, "template")
			return
		}
		internalError(w, "archive template", err)
		return
	}
	t, err := a.templates.FindByID(r.Context(), org, id)
	if err != nil {
		internalError(w, "find template", err)
		return
	}
	if t == nil {
		notFound(w, "template")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTemplate handles DELETE /v1/templates/{id}. Versions are removed
// with it.
func (a *API) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "template")
	if !ok {
		return
	}
	if err := a.templates.Delete(r.Context(), org, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			notFound(w, "template")
			return
		}
		internalError(w, "delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadTemplate resolves the {id} template of the caller's org. Templates
// of other orgs are reported as not found.
func (a *API) loadTemplate(w http.ResponseWriter, r *http.Request) (*models.Template, bool) {
	org, ok := orgID(w, r)
	if !ok {
		return nil, false
	}
	id, ok := pathID(w, r, "id", "template")
	if !ok {
		return nil, false
	}
	t, err := a.templates.FindByID(r.Context(), org, id)
	if err != nil {
		internalError(w, "find template", err)
		return nil, false
	}
	if t == nil {
		notFound(w, "template")
		return nil, false
	}
	return t, true
}

// loadVersion resolves the template plus the requested version (latest
// when none is given).
func (a *API) loadVersion(w http.ResponseWriter, r *http.Request) (*models.Template, *models.TemplateVersion, bool) {
	t, ok := a.loadTemplate(w, r)
	if !ok {
		return nil, nil, false
	}
	n, ok := versionParam(w, r)
	if !ok {
		return nil, nil, false
	}
	v, err := a.versions.Find(r.Context(), t.ID, n)
	if err != nil {
		internalError(w, "find version", err)
		return nil, nil, false
	}
	if v == nil {
		notFound(w, "version")
		return nil, nil, false
	}
	return t, v, true
}
