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

const assetColumns = `id, org_id, kind, filename, content_type, size_bytes, width, height, bucket, s3_key, created_at`

// AssetStore handles asset metadata persistence.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

func scanAsset(row scanner) (*models.Asset, error) {
	var a models.Asset
	err := row.Scan(&a.ID, &a.OrgID, &a.Kind, &a.Filename, &a.ContentType, &a.SizeBytes,
		&a.Width, &a.Height, &a.Bucket, &a.S3Key, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts asset metadata. A zero ID is replaced with a fresh one.
func (s *AssetStore) Create(ctx context.Context, a *models.Asset) (*models.Asset, error) {
	id := a.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	created, err := scanAsset(s.db.QueryRowContext(ctx, `
		INSERT INTO assets (id, org_id, kind, filename, content_type, size_bytes, width, height, bucket, s3_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+assetColumns,
		id, a.OrgID, a.Kind, a.Filename, a.ContentType, a.SizeBytes, a.Width, a.Height, a.Bucket, a.S3Key,
	))
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return created, nil
}

// FindByID retrieves an org's asset. Returns nil if not found.
func (s *AssetStore) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Asset, error) {
	a, err := scanAsset(s.db.QueryRowContext(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE id = $1 AND org_id = $2`, id, orgID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset: %w", err)
	}
	return a, nil
}
