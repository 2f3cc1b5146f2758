// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"papermill/internal/apikey"
)

// DevOrgName is the org created by Seed.
const DevOrgName = "dev"

// Seed populates the database with initial development data: a "dev" org
// and one API key for it, if no org exists yet. The key is logged once;
// only its hash is stored.
func Seed(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orgs").Scan(&count); err != nil {
		return fmt.Errorf("seed check orgs: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	key, err := apikey.Generate()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	hash, err := key.Hash()
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	var orgID string
	if err := tx.QueryRowContext(ctx,
		`INSERT INTO orgs (name) VALUES ($1) RETURNING id`, DevOrgName,
	).Scan(&orgID); err != nil {
		return fmt.Errorf("seed insert org: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO api_keys (org_id, name, prefix, secret_hash)
		VALUES ($1, $2, $3, $4)
	`, orgID, "development", key.Prefix, hash); err != nil {
		return fmt.Errorf("seed insert api key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with development org",
		"org", DevOrgName,
		"api_key", key.String(),
	)
	return nil
}
