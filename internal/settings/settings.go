// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package settings stores keyed JSON documents for site-wide configuration
// (navigation, site metadata, theme options). Documents are opaque to the
// core; bootstrap seeds the defaults and leaves existing keys alone.
package settings

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no document exists under a key.
var ErrNotFound = errors.New("setting not found")

// Store persists settings documents.
type Store interface {
	// Get returns the document stored under key.
	Get(ctx context.Context, key string) (map[string]any, error)
	// Put stores the document under key, replacing any existing value.
	Put(ctx context.Context, key string, value map[string]any) error
	// All returns every stored document keyed by name.
	All(ctx context.Context) (map[string]map[string]any, error)
}
