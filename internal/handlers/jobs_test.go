// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"papermill/internal/models"
)

func TestGenerate(t *testing.T) {
	e := newEnv(t)
	tmpl := e.seed(t, models.TemplateTypeDocument, "Letter", docJSON)

	rr := e.do(t, http.MethodPost, path("/v1/templates/%s/generate", tmpl.ID), nil)
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	var job models.GenerationJob
	decodeInto(t, rr, &job)
	assert.Equal(t, models.JobStatusPending, job.Status)
	assert.Equal(t, 1, job.Version, "latest is resolved before queueing")
	assert.Equal(t, "/v1/jobs/"+job.ID.String(), rr.Header().Get("Location"))

	require.Len(t, e.queue.msgs, 1)
	msg := e.queue.msgs[0]
	assert.Equal(t, job.ID, msg.JobID)
	assert.Equal(t, e.org, msg.OrgID)
	assert.Equal(t, tmpl.ID, msg.TemplateID)
	assert.Equal(t, 1, msg.Version)
}

func TestGenerateQueueFailure(t *testing.T) {
	e := newEnv(t)
	e.queue.err = errBoom
	tmpl := e.seed(t, models.TemplateTypeDocument, "Letter", docJSON)

	rr := e.do(t, http.MethodPost, path("/v1/templates/%s/generate", tmpl.ID), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	require.Len(t, e.jobs.byID, 1)
	for _, j := range e.jobs.byID {
		assert.Equal(t, models.JobStatusFailed, j.Status)
	}
}

func TestGenerateWithoutQueue(t *testing.T) {
	e := newEnv(t)
	e.api.queue = nil
	tmpl := e.seed(t, models.TemplateTypeDocument, "Letter", docJSON)

	rr := e.do(t, http.MethodPost, path("/v1/templates/%s/generate", tmpl.ID), nil)
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, e.jobs.byID)
}

func TestGetJob(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tmpl := e.seed(t, models.TemplateTypeDocument, "Letter", docJSON)
	job, err := e.jobs.Create(ctx, e.org, tmpl.ID, 1)
	require.NoError(t, err)

	rr := e.do(t, http.MethodGet, "/v1/jobs/"+job.ID.String(), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got models.GenerationJob
	decodeInto(t, rr, &got)
	assert.Equal(t, models.JobStatusPending, got.Status)
	assert.Empty(t, got.DownloadURL)

	asset, err := e.assets.Create(ctx, &models.Asset{OrgID: e.org, Kind: models.AssetKindPDF, Bucket: "private", S3Key: "orgs/x/letter-v1.pdf"})
	require.NoError(t, err)
	require.NoError(t, e.jobs.UpdateStatus(ctx, job.ID, models.JobStatusCompleted, &asset.ID, "", ""))

	decodeInto(t, e.do(t, http.MethodGet, "/v1/jobs/"+job.ID.String(), nil), &got)
	assert.Equal(t, models.JobStatusCompleted, got.Status)
	assert.Equal(t, "https://signed.test/private/orgs/x/letter-v1.pdf", got.DownloadURL)

	e.org = uuid.New()
	rr = e.do(t, http.MethodGet, "/v1/jobs/"+job.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
