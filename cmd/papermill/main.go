// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for papermill. A single binary runs the
// HTTP API, the generation worker and the operational commands.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Tests build their own tree so flag
// state never leaks between runs.
func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "papermill",
		Short: "Template compilation and PDF rendering service",
		Long: `papermill stores versioned print templates (flowing documents and
fixed-position layouts), compiles them to HTML and renders PDFs through a
pluggable backend, either synchronously or through a job queue.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogger(os.Getenv("APP_ENV"), debug)
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(),
		newWorkerCmd(),
		newMigrateCmd(),
		newCompileCmd(),
		newAPIKeyCmd(),
		newCacheCmd(),
	)
	return root
}

// setupLogger installs the default slog logger: JSON in production, text
// everywhere else.
func setupLogger(env string, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if env == "production" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}
