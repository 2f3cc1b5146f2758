// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"papermill/internal/models"
)

const jobColumns = `id, org_id, template_id, version, status, output_asset_id, error_code, error_message, created_at, updated_at`

// JobStore handles generation job persistence.
type JobStore struct {
	db *sql.DB
}

// NewJobStore creates a new JobStore with the given database connection.
func NewJobStore(db *sql.DB) *JobStore {
	return &JobStore{db: db}
}

func scanJob(row scanner) (*models.GenerationJob, error) {
	var j models.GenerationJob
	err := row.Scan(&j.ID, &j.OrgID, &j.TemplateID, &j.Version, &j.Status,
		&j.OutputAssetID, &j.ErrorCode, &j.ErrorMessage, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Create inserts a pending job for a resolved template version.
func (s *JobStore) Create(ctx context.Context, orgID, templateID uuid.UUID, version int) (*models.GenerationJob, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx, `
		INSERT INTO generation_jobs (org_id, template_id, version, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+jobColumns,
		orgID, templateID, version,
	))
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

// FindByID retrieves an org's job. Returns nil if not found.
func (s *JobStore) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.GenerationJob, error) {
	j, err := scanJob(s.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1 AND org_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job: %w", err)
	}
	return j, nil
}

// UpdateStatus moves a job to status. assetID is set for completed jobs;
// code and message describe failures.
func (s *JobStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.JobStatus, assetID *uuid.UUID, code, message string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE generation_jobs SET
			status = $2, output_asset_id = $3, error_code = $4, error_message = $5, updated_at = NOW()
		WHERE id = $1
	`, id, status, assetID, code, message)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
