// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"papermill/internal/models"
)

// ErrTemplateArchived is returned by Append when the template is archived
// or no longer exists.
var ErrTemplateArchived = errors.New("template is archived")

const versionColumns = `id, template_id, version, status, content, schema, created_at`

// VersionStore handles template version persistence. Versions are
// append-only: there is no update statement.
type VersionStore struct {
	db *sql.DB
}

// NewVersionStore creates a new VersionStore with the given database connection.
func NewVersionStore(db *sql.DB) *VersionStore {
	return &VersionStore{db: db}
}

func scanVersion(row scanner) (*models.TemplateVersion, error) {
	var (
		v                     models.TemplateVersion
		rawContent, rawSchema []byte
	)
	if err := row.Scan(&v.ID, &v.TemplateID, &v.Version, &v.Status, &rawContent, &rawSchema, &v.CreatedAt); err != nil {
		return nil, err
	}
	c, err := models.ParseContent(rawContent)
	if err != nil {
		return nil, fmt.Errorf("version %d content: %w", v.Version, err)
	}
	v.Content = c
	if len(rawSchema) > 0 {
		if err := json.Unmarshal(rawSchema, &v.Schema); err != nil {
			return nil, fmt.Errorf("version %d schema: %w", v.Version, err)
		}
	}
	return &v, nil
}

// Append stores content as the next version of a template. The version
// number is computed in the same statement as the insert; if a concurrent
// append wins the race, ErrVersionConflict is returned. Archived templates
// get ErrTemplateArchived.
func (s *VersionStore) Append(ctx context.Context, templateID uuid.UUID, status models.VersionStatus, content models.Content, schema map[string]any) (*models.TemplateVersion, error) {
	schemaJSON, err := models.SchemaJSON(schema)
	if err != nil {
		return nil, fmt.Errorf("append version: encode schema: %w", err)
	}
	if status == "" {
		status = models.VersionStatusDraft
	}

	v, err := scanVersion(s.db.QueryRowContext(ctx, `
		INSERT INTO template_versions (template_id, version, status, content, schema)
		SELECT $1, COALESCE(MAX(v.version), 0) + 1, $2, $3::jsonb, $4::jsonb
		FROM template_versions v
		WHERE v.template_id = $1
		HAVING EXISTS (SELECT 1 FROM templates t WHERE t.id = $1 AND t.status = 'active')
		RETURNING `+versionColumns,
		templateID, status, string(content.Raw()), string(schemaJSON),
	))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrTemplateArchived
	case isUniqueViolation(err):
		return nil, ErrVersionConflict
	case err != nil:
		return nil, fmt.Errorf("append version: %w", err)
	}
	return v, nil
}

// Find returns a template's version by number, or the latest when number
// is 0. Returns nil if not found.
func (s *VersionStore) Find(ctx context.Context, templateID uuid.UUID, number int) (*models.TemplateVersion, error) {
	var row *sql.Row
	if number == 0 {
		row = s.db.QueryRowContext(ctx, `
			SELECT `+versionColumns+` FROM template_versions
			WHERE template_id = $1
			ORDER BY version DESC LIMIT 1
		`, templateID)
	} else {
		row = s.db.QueryRowContext(ctx, `
			SELECT `+versionColumns+` FROM template_versions
			WHERE template_id = $1 AND version = $2
		`, templateID, number)
	}
	v, err := scanVersion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find version: %w", err)
	}
	return v, nil
}

// Latest returns the newest version of a template, or nil if it has none.
func (s *VersionStore) Latest(ctx context.Context, templateID uuid.UUID) (*models.TemplateVersion, error) {
	return s.Find(ctx, templateID, 0)
}

// List returns summaries of all versions, newest first, without content.
func (s *VersionStore) List(ctx context.Context, templateID uuid.UUID) ([]models.VersionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, template_id, version, status, created_at
		FROM template_versions
		WHERE template_id = $1
		ORDER BY version DESC
	`, templateID)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	out := []models.VersionSummary{}
	for rows.Next() {
		var v models.VersionSummary
		if err := rows.Scan(&v.ID, &v.TemplateID, &v.Version, &v.Status, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
