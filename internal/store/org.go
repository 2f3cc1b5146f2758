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

// OrgStore handles org persistence.
type OrgStore struct {
	db *sql.DB
}

// NewOrgStore creates a new OrgStore with the given database connection.
func NewOrgStore(db *sql.DB) *OrgStore {
	return &OrgStore{db: db}
}

// Create inserts an org.
func (s *OrgStore) Create(ctx context.Context, name string) (*models.Org, error) {
	o := &models.Org{}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO orgs (name) VALUES ($1) RETURNING id, name, created_at`, name,
	).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create org: %w", err)
	}
	return o, nil
}

// FindByID retrieves an org by its UUID. Returns nil if not found.
func (s *OrgStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Org, error) {
	return s.findOne(ctx, `SELECT id, name, created_at FROM orgs WHERE id = $1`, id)
}

// FindByName retrieves an org by its unique name. Returns nil if not found.
func (s *OrgStore) FindByName(ctx context.Context, name string) (*models.Org, error) {
	return s.findOne(ctx, `SELECT id, name, created_at FROM orgs WHERE name = $1`, name)
}

// FindOrCreate returns the named org, creating it when missing.
func (s *OrgStore) FindOrCreate(ctx context.Context, name string) (*models.Org, error) {
	o := &models.Org{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orgs (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("find or create org: %w", err)
	}
	return o, nil
}

func (s *OrgStore) findOne(ctx context.Context, query string, arg any) (*models.Org, error) {
	o := &models.Org{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find org: %w", err)
	}
	return o, nil
}
