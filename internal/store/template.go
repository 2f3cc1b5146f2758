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

const templateColumns = `id, org_id, name, type, status, created_at`

// TemplateStore handles all template-related database operations. Every
// lookup is scoped to an org; templates of other orgs are "not found".
// There is deliberately no statement that changes a template's type.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func scanTemplate(row scanner) (*models.Template, error) {
	var t models.Template
	if err := row.Scan(&t.ID, &t.OrgID, &t.Name, &t.Type, &t.Status, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a new active template.
func (s *TemplateStore) Create(ctx context.Context, orgID uuid.UUID, name string, typ models.TemplateType) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx, `
		INSERT INTO templates (org_id, name, type, status)
		VALUES ($1, $2, $3, 'active')
		RETURNING `+templateColumns,
		orgID, name, typ,
	))
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return t, nil
}

// FindByID retrieves an org's template by its UUID. Returns nil if not found.
func (s *TemplateStore) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Template, error) {
	t, err := scanTemplate(s.db.QueryRowContext(ctx,
		`SELECT `+templateColumns+` FROM templates WHERE id = $1 AND org_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// ListByOrg returns an org's templates, newest first.
func (s *TemplateStore) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM templates
		WHERE org_id = $1
		ORDER BY created_at DESC, id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	templates := []models.Template{}
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Archive marks a template archived. Archiving twice is a no-op.
func (s *TemplateStore) Archive(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE templates SET status = 'archived' WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("archive template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a template; its versions and jobs cascade.
func (s *TemplateStore) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
