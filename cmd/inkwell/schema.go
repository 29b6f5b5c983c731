// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkwellcms/inkwell/internal/seed"
)

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [document]",
		Short: "Print the JSON Schema for a seed document",
		Long: `Prints the JSON Schema a seed document is validated against.
With no argument, prints the schemas for all documents.

Documents: ` + strings.Join(seed.SchemaNames(), ", "),
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: seed.SchemaNames(),
		RunE:      runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	names := seed.SchemaNames()
	if len(args) == 1 {
		names = args
	}

	for _, name := range names {
		data, err := seed.SchemaFor(name)
		if err != nil {
			return err
		}
		cmd.Println(string(data))
	}
	return nil
}
