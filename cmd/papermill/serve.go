// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"papermill/internal/config"
	"papermill/internal/database"
	"papermill/internal/handlers"
	"papermill/internal/middleware"
	"papermill/internal/queue"
	"papermill/internal/router"
	"papermill/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the papermill API. Pending migrations are applied on startup and,
in development, a "dev" org with one API key is seeded.

Valkey and S3 are optional: without Valkey the artifact cache and
generation jobs are disabled, without S3 asset uploads are.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}

	deps := handlers.Deps{
		Templates: store.NewTemplateStore(db),
		Versions:  store.NewVersionStore(db),
		Jobs:      store.NewJobStore(db),
		Assets:    store.NewAssetStore(db),
	}

	valkey, err := openValkey(ctx, cfg)
	if err != nil {
		slog.Warn("valkey unavailable, artifact cache and generation jobs disabled", "error", err)
	} else {
		defer valkey.Close()
		deps.Queue = queue.New(valkey, cfg.QueueStream, cfg.QueueGroup)
	}

	eng, err := newEngine(cfg, valkey)
	if err != nil {
		return err
	}
	deps.Engine = eng

	sc, err := openStorage(cfg)
	if err != nil {
		return err
	}
	if sc != nil {
		deps.Storage = sc
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	defer limiter.Stop()

	r := router.New(router.Options{
		API:         handlers.New(deps),
		Auth:        middleware.NewAuthenticator(store.NewAPIKeyStore(db)),
		Limiter:     limiter,
		CORSOrigins: cfg.CORSOrigins,
		Ping:        db.PingContext,
	})

	// WriteTimeout must outlast a synchronous render.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RendererTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
