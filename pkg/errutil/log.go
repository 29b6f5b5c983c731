// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package errutil bridges oops errors and structured logging, and carries
// test assertions over error codes and context.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// Attrs flattens an error into slog key/value pairs. Oops errors contribute
// their code and attached context alongside the message; plain errors are
// logged verbatim under "error".
func Attrs(err error) []any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return []any{"error", err}
	}

	attrs := make([]any, 0, 6)
	attrs = append(attrs, "error", oopsErr.Error())
	if code := oopsErr.Code(); code != "" {
		attrs = append(attrs, "code", code)
	}
	if ctx := oopsErr.Context(); len(ctx) > 0 {
		attrs = append(attrs, "context", ctx)
	}
	return attrs
}

// LogError records err at error level with its structured attributes.
func LogError(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, Attrs(err)...)
}
