// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the papermill API.
// Handlers receive their dependencies through the API struct; every route
// is scoped to the org resolved by the API key middleware.
package handlers

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"papermill/internal/models"
	"papermill/internal/queue"
)

// TemplateStore persists templates.
type TemplateStore interface {
	Create(ctx context.Context, orgID uuid.UUID, name string, typ models.TemplateType) (*models.Template, error)
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Template, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Template, error)
	Archive(ctx context.Context, orgID, id uuid.UUID) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// VersionStore persists the append-only version history.
type VersionStore interface {
	Append(ctx context.Context, templateID uuid.UUID, status models.VersionStatus, content models.Content, schema map[string]any) (*models.TemplateVersion, error)
	Find(ctx context.Context, templateID uuid.UUID, version int) (*models.TemplateVersion, error)
	List(ctx context.Context, templateID uuid.UUID) ([]models.VersionSummary, error)
}

// JobStore persists generation jobs.
type JobStore interface {
	Create(ctx context.Context, orgID, templateID uuid.UUID, version int) (*models.GenerationJob, error)
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.GenerationJob, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, assetID *uuid.UUID, code, message string) error
}

// AssetStore persists uploaded and generated file metadata.
type AssetStore interface {
	Create(ctx context.Context, a *models.Asset) (*models.Asset, error)
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Asset, error)
}

// Renderer compiles and renders template versions.
type Renderer interface {
	Markup(tmpl *models.Template, v *models.TemplateVersion) (string, error)
	Render(ctx context.Context, tmpl *models.Template, v *models.TemplateVersion) ([]byte, error)
}

// Enqueuer hands generation jobs to the worker.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg queue.Message) error
}

// ObjectStore is the S3 surface the handlers need.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
	PresignedURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	PublicBucket() string
}

// Deps lists the API's collaborators. Queue and Storage may be nil when
// Valkey or object storage are not configured; the routes that need them
// then answer 503.
type Deps struct {
	Templates TemplateStore
	Versions  VersionStore
	Jobs      JobStore
	Assets    AssetStore
	Engine    Renderer
	Queue     Enqueuer
	Storage   ObjectStore
}

// API groups the papermill HTTP handlers.
type API struct {
	templates TemplateStore
	versions  VersionStore
	jobs      JobStore
	assets    AssetStore
	engine    Renderer
	queue     Enqueuer
	storage   ObjectStore
	validate  *Validator
}

// New creates the handler group.
func New(d Deps) *API {
	return &API{
		templates: d.Templates,
		versions:  d.Versions,
		jobs:      d.Jobs,
		assets:    d.Assets,
		engine:    d.Engine,
		queue:     d.Queue,
		storage:   d.Storage,
		validate:  NewValidator(),
	}
}
