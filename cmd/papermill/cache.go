// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"papermill/internal/cache"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the artifact cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Delete every cached PDF artifact",
		Long: `Delete every cached PDF. Useful after changing the render backend's
fonts or print settings, which the cache key does not cover.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			client, err := openValkey(ctx, cfg)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := cache.NewArtifactCache(client, cfg.ArtifactCacheTTL).Purge(ctx)
			if err != nil {
				return fmt.Errorf("purge artifacts: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %d cached artifacts\n", n)
			return nil
		},
	})
	return cmd
}
