// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"papermill/internal/config"
	"papermill/internal/queue"
	"papermill/internal/store"
	"papermill/internal/worker"
)

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume generation jobs from the queue",
		Long: `Run a generation worker. Each job is rendered, uploaded to the private
bucket and recorded as a PDF asset. Workers sharing QUEUE_GROUP split the
stream between them; WORKER_NAME must be unique per process.

A job interrupted by shutdown is marked failed and not retried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, cfg)
		},
	}
}

func runWorker(ctx context.Context, cfg *config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	valkey, err := openValkey(ctx, cfg)
	if err != nil {
		return err
	}
	defer valkey.Close()

	eng, err := newEngine(cfg, valkey)
	if err != nil {
		return err
	}

	sc, err := openStorage(cfg)
	if err != nil {
		return err
	}
	var uploader worker.Uploader
	if sc != nil {
		uploader = sc
	}

	w := worker.New(
		store.NewTemplateStore(db),
		store.NewVersionStore(db),
		store.NewJobStore(db),
		store.NewAssetStore(db),
		eng,
		uploader,
	)
	return w.Run(ctx, queue.New(valkey, cfg.QueueStream, cfg.QueueGroup), cfg.WorkerName)
}
