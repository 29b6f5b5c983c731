// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/inkwellcms/inkwell/internal/seed"
)

// NewValidateSeedsCmd creates the validate-seeds subcommand.
func NewValidateSeedsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-seeds",
		Short: "Validate the embedded seed bundle without touching a database",
		Long: `Validates the embedded seed documents against their JSON Schemas and
checks the bundle's manifest version. Does NOT require a database
connection. Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch seed errors early:
  inkwell validate-seeds`,
		RunE: runValidateSeeds,
	}
}

func runValidateSeeds(cmd *cobra.Command, _ []string) error {
	bundle, err := seed.Load()
	if err != nil {
		return err
	}

	cmd.Printf("Seed bundle %s valid: %d roles, %d pages, %d settings documents\n",
		bundle.Manifest.Version, len(bundle.Roles), len(bundle.Pages), len(bundle.Settings))
	return nil
}
