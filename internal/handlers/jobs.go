// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"papermill/internal/models"
	"papermill/internal/queue"
)

// downloadExpiry is how long a job's presigned download URL stays valid.
const downloadExpiry = 15 * time.Minute

// Generate handles POST /v1/templates/{id}/generate?version=N. It records
// a pending job for the resolved version and queues it for the worker.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	if a.queue == nil {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "job queue is not configured")
		return
	}
	t, v, ok := a.loadVersion(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	job, err := a.jobs.Create(ctx, t.OrgID, t.ID, v.Version)
	if err != nil {
		internalError(w, "create job", err)
		return
	}

	msg := queue.Message{JobID: job.ID, OrgID: t.OrgID, TemplateID: t.ID, Version: v.Version}
	if err := a.queue.Enqueue(ctx, msg); err != nil {
		slog.Error("enqueue job failed", "job", job.ID, "error", err)
		if err := a.jobs.UpdateStatus(ctx, job.ID, models.JobStatusFailed, nil, CodeUnavailable, "job could not be queued"); err != nil {
			slog.Error("mark job failed", "job", job.ID, "error", err)
		}
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "job could not be queued")
		return
	}

	w.Header().Set("Location", "/v1/jobs/"+job.ID.String())
	writeJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /v1/jobs/{id}. Completed jobs carry a short-lived
// download URL for the generated PDF.
func (a *API) GetJob(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "job")
	if !ok {
		return
	}

	ctx := r.Context()
	job, err := a.jobs.FindByID(ctx, org, id)
	if err != nil {
		internalError(w, "find job", err)
		return
	}
	if job == nil {
		notFound(w, "job")
		return
	}

	if job.Status == models.JobStatusCompleted && job.OutputAssetID != nil && a.storage != nil {
		asset, err := a.assets.FindByID(ctx, org, *job.OutputAssetID)
		if err != nil {
			internalError(w, "find job asset", err)
			return
		}
		if asset != nil {
			url, err := a.storage.PresignedURL(ctx, asset.Bucket, asset.S3Key, downloadExpiry)
			if err != nil {
				slog.Warn("presign download failed", "job", job.ID, "error", err)
			} else {
				job.DownloadURL = url
			}
		}
	}
	writeJSON(w, http.StatusOK, job)
}
