// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"papermill/internal/apikey"
	"papermill/internal/store"
)

func newAPIKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage API keys",
	}
	cmd.AddCommand(newAPIKeyCreateCmd())
	return cmd
}

func newAPIKeyCreateCmd() *cobra.Command {
	var org, name string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Issue an API key for an org, creating the org if needed",
		Long: `Issue a new API key. The org is created when it does not exist yet.
The key is printed once; only its hash is stored.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			org = strings.TrimSpace(org)
			if org == "" {
				return fmt.Errorf("--org is required")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			o, err := store.NewOrgStore(db).FindOrCreate(ctx, org)
			if err != nil {
				return err
			}

			key, err := apikey.Generate()
			if err != nil {
				return err
			}
			hash, err := key.Hash()
			if err != nil {
				return err
			}
			if _, err := store.NewAPIKeyStore(db).Create(ctx, o.ID, name, key.Prefix, hash); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "org:     %s (%s)\nkey:     %s\n", o.Name, o.ID, key)
			return nil
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "org name")
	cmd.Flags().StringVar(&name, "name", "cli", "label stored with the key")
	return cmd
}
