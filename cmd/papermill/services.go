// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"papermill/internal/cache"
	"papermill/internal/config"
	"papermill/internal/database"
	"papermill/internal/engine"
	"papermill/internal/metrics"
	"papermill/internal/render"
	"papermill/internal/storage"
)

// loadConfig reads the environment and logs the settings that matter when
// diagnosing a deployment.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
		"renderer", cfg.RendererBackend,
	)
	return cfg, nil
}

// openDB connects to PostgreSQL and exports pool statistics.
func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(ctx, cfg.DSN())
	if err != nil {
		return nil, err
	}
	metrics.RegisterDB(db, cfg.DBName)
	return db, nil
}

func openValkey(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	return cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
}

// openStorage returns nil when object storage is not configured.
func openStorage(cfg *config.Config) (*storage.Client, error) {
	sc, err := storage.New(storage.Config{
		Endpoint:      cfg.S3Endpoint,
		Region:        cfg.S3Region,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		PublicBucket:  cfg.S3BucketPublic,
		PrivateBucket: cfg.S3BucketPrivate,
		PublicURL:     cfg.S3PublicURL,
	})
	if err != nil {
		return nil, err
	}
	if sc == nil {
		slog.Warn("s3 storage not configured, asset uploads and job output disabled")
		return nil, nil
	}
	slog.Info("s3 storage connected",
		"endpoint", cfg.S3Endpoint,
		"public_bucket", cfg.S3BucketPublic,
		"private_bucket", cfg.S3BucketPrivate,
	)
	return sc, nil
}

// newEngine builds the render backend and the engine on top of it. The
// artifact cache is attached when a Valkey client is given.
func newEngine(cfg *config.Config, valkey *redis.Client) (*engine.Engine, error) {
	backend, err := render.New(render.Config{
		Backend: cfg.RendererBackend,
		URL:     cfg.RendererURL,
		Timeout: cfg.RendererTimeout,
	})
	if err != nil {
		return nil, err
	}
	eng := engine.New(backend)
	if valkey != nil {
		eng.SetArtifactCache(cache.NewArtifactCache(valkey, cfg.ArtifactCacheTTL))
	}
	return eng, nil
}
