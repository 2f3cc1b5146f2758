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

const apiKeyColumns = `id, org_id, name, prefix, secret_hash, last_used_at, revoked_at, created_at`

// APIKeyStore handles API key persistence.
type APIKeyStore struct {
	db *sql.DB
}

// NewAPIKeyStore creates a new APIKeyStore with the given database connection.
func NewAPIKeyStore(db *sql.DB) *APIKeyStore {
	return &APIKeyStore{db: db}
}

func scanAPIKey(row scanner) (*models.APIKey, error) {
	var k models.APIKey
	err := row.Scan(&k.ID, &k.OrgID, &k.Name, &k.Prefix, &k.SecretHash,
		&k.LastUsedAt, &k.RevokedAt, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// Create stores a key. SecretHash must already be a bcrypt hash.
func (s *APIKeyStore) Create(ctx context.Context, orgID uuid.UUID, name, prefix, secretHash string) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRowContext(ctx, `
		INSERT INTO api_keys (org_id, name, prefix, secret_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING `+apiKeyColumns,
		orgID, name, prefix, secretHash,
	))
	if err != nil {
		return nil, fmt.Errorf("create api key: %w", err)
	}
	return k, nil
}

// FindByPrefix retrieves a key by its public prefix. Returns nil if not
// found. Revoked keys are returned; the caller decides.
func (s *APIKeyStore) FindByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	k, err := scanAPIKey(s.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE prefix = $1`, prefix))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find api key: %w", err)
	}
	return k, nil
}

// TouchLastUsed records that a key was just used.
func (s *APIKeyStore) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE api_keys SET last_used_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	return nil
}

// Revoke disables a key.
func (s *APIKeyStore) Revoke(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
