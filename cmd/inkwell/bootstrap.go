// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	contentpg "github.com/inkwellcms/inkwell/internal/content/postgres"
	labelpg "github.com/inkwellcms/inkwell/internal/label/postgres"
	rolepg "github.com/inkwellcms/inkwell/internal/role/postgres"
	"github.com/inkwellcms/inkwell/internal/seed"
	settingspg "github.com/inkwellcms/inkwell/internal/settings/postgres"
	"github.com/inkwellcms/inkwell/internal/store"
)

// Default timeout for the bootstrap command.
const defaultBootstrapTimeout = 30 * time.Second

// bootstrapConfig holds configuration for the bootstrap command.
type bootstrapConfig struct {
	timeout time.Duration
}

// NewBootstrapCmd creates the bootstrap subcommand.
func NewBootstrapCmd() *cobra.Command {
	cfg := &bootstrapConfig{}

	cmd := &cobra.Command{
		Use:   "bootstrap",
		Short: "Install the default roles, pages, and settings",
		Long: `Runs pending migrations and installs the embedded seed bundle:
reserved roles, starter pages, and site settings. Idempotent - rows
that already exist are left untouched, so operator edits survive
repeated runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBootstrap(cmd, args, cfg)
		},
	}

	cmd.Flags().DurationVar(&cfg.timeout, "timeout", defaultBootstrapTimeout, "timeout for database operations (e.g., 30s, 1m)")

	return cmd
}

func runBootstrap(cmd *cobra.Command, _ []string, bcfg *bootstrapConfig) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	// Use cmd.Context() to respect SIGINT/SIGTERM signals.
	ctx, cancel := context.WithTimeout(cmd.Context(), bcfg.timeout)
	defer cancel()

	cmd.Println("Running migrations...")
	migrator, err := store.NewMigrator(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}
	if err := migrator.Close(); err != nil {
		return err
	}

	cmd.Println("Connecting to database...")
	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	pool := db.Pool()
	bootstrapper := seed.NewBootstrapper(
		rolepg.NewRoleRepository(pool),
		contentpg.NewPageRepository(pool),
		labelpg.NewLabelRepository(pool),
		settingspg.NewSettingsRepository(pool),
		store.NewTransactor(pool),
		slog.Default(),
	)

	cmd.Println("Installing seed bundle...")
	if err := bootstrapper.Bootstrap(ctx); err != nil {
		return oops.Code("BOOTSTRAP_FAILED").Wrap(err)
	}

	cmd.Println("Bootstrap complete")
	return nil
}
