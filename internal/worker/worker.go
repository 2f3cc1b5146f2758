// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package worker processes asynchronous generation jobs. Each queued job
// is rendered once, uploaded to the private bucket and recorded as an
// asset; failures are stored on the job with a machine-readable code.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"papermill/internal/engine"
	"papermill/internal/metrics"
	"papermill/internal/models"
	"papermill/internal/queue"
	"papermill/internal/slug"
	"papermill/internal/storage"
)

// Failure codes for jobs that did not reach the render backend or whose
// output could not be stored. Engine failures keep their engine code.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeStorageError = "STORAGE_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Templates loads an org's template.
type Templates interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Template, error)
}

// Versions loads a template version; 0 means latest.
type Versions interface {
	Find(ctx context.Context, templateID uuid.UUID, version int) (*models.TemplateVersion, error)
}

// Jobs records job state transitions.
type Jobs interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, assetID *uuid.UUID, code, message string) error
}

// Assets records uploaded outputs.
type Assets interface {
	Create(ctx context.Context, a *models.Asset) (*models.Asset, error)
}

// Renderer turns a template version into PDF bytes.
type Renderer interface {
	Render(ctx context.Context, tmpl *models.Template, v *models.TemplateVersion) ([]byte, error)
}

// Uploader stores PDFs in the private bucket.
type Uploader interface {
	UploadPDF(ctx context.Context, key string, pdf []byte) error
	PrivateBucket() string
}

// Worker wires the collaborators a job needs.
type Worker struct {
	templates Templates
	versions  Versions
	jobs      Jobs
	assets    Assets
	renderer  Renderer
	uploader  Uploader
}

// New creates a Worker. uploader may be nil when object storage is not
// configured; jobs then fail with STORAGE_ERROR after rendering.
func New(templates Templates, versions Versions, jobs Jobs, assets Assets, renderer Renderer, uploader Uploader) *Worker {
	return &Worker{
		templates: templates,
		versions:  versions,
		jobs:      jobs,
		assets:    assets,
		renderer:  renderer,
		uploader:  uploader,
	}
}

// Run consumes the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context, q *queue.Queue, consumer string) error {
	if err := q.EnsureGroup(ctx); err != nil {
		return err
	}
	slog.Info("worker started", "consumer", consumer)
	err := q.Consume(ctx, consumer, w.Handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Handle processes one job. Job failures are recorded on the job and are
// not returned; the error result only reports that the job's state could
// not be written.
func (w *Worker) Handle(ctx context.Context, msg queue.Message) error {
	log := slog.With("job", msg.JobID, "template", msg.TemplateID, "version", msg.Version)

	if err := w.jobs.UpdateStatus(ctx, msg.JobID, models.JobStatusProcessing, nil, "", ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	metrics.RecordJob(string(models.JobStatusProcessing))

	assetID, code, err := w.generate(ctx, msg)
	if err != nil {
		log.Warn("job failed", "code", code, "error", err)
		metrics.RecordJob(string(models.JobStatusFailed))
		return w.jobs.UpdateStatus(ctx, msg.JobID, models.JobStatusFailed, nil, code, err.Error())
	}

	log.Info("job completed", "asset", assetID)
	metrics.RecordJob(string(models.JobStatusCompleted))
	return w.jobs.UpdateStatus(ctx, msg.JobID, models.JobStatusCompleted, &assetID, "", "")
}

// generate returns the stored asset's ID, or a failure code and error.
func (w *Worker) generate(ctx context.Context, msg queue.Message) (uuid.UUID, string, error) {
	tmpl, err := w.templates.FindByID(ctx, msg.OrgID, msg.TemplateID)
	if err != nil {
		return uuid.Nil, CodeInternal, err
	}
	if tmpl == nil {
		return uuid.Nil, CodeNotFound, errors.New("template not found")
	}

	v, err := w.versions.Find(ctx, tmpl.ID, msg.Version)
	if err != nil {
		return uuid.Nil, CodeInternal, err
	}
	if v == nil {
		return uuid.Nil, CodeNotFound, fmt.Errorf("template has no version %d", msg.Version)
	}

	pdf, err := w.renderer.Render(ctx, tmpl, v)
	if err != nil {
		code := string(engine.CodeOf(err))
		if code == "" {
			code = CodeInternal
		}
		return uuid.Nil, code, err
	}

	if w.uploader == nil {
		return uuid.Nil, CodeStorageError, errors.New("object storage is not configured")
	}
	filename := slug.Filename(tmpl.Name, v.Version)
	key := storage.PDFKey(msg.OrgID, msg.JobID, filename)
	if err := w.uploader.UploadPDF(ctx, key, pdf); err != nil {
		return uuid.Nil, CodeStorageError, err
	}

	a, err := w.assets.Create(ctx, &models.Asset{
		OrgID:       msg.OrgID,
		Kind:        models.AssetKindPDF,
		Filename:    filename,
		ContentType: "application/pdf",
		SizeBytes:   int64(len(pdf)),
		Bucket:      w.uploader.PrivateBucket(),
		S3Key:       key,
	})
	if err != nil {
		return uuid.Nil, CodeInternal, err
	}
	return a.ID, "", nil
}
