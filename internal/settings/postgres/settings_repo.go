// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements settings persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/settings"
	"github.com/inkwellcms/inkwell/internal/store"
)

// SettingsRepository implements settings.Store using PostgreSQL.
type SettingsRepository struct {
	pool store.Pool
}

// NewSettingsRepository creates a new PostgreSQL settings repository.
func NewSettingsRepository(pool store.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// Get returns the document stored under key.
func (r *SettingsRepository) Get(ctx context.Context, key string) (map[string]any, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var value map[string]any
	err := q.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SETTING_NOT_FOUND").With("key", key).Wrap(settings.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SETTING_GET_FAILED").With("key", key).Wrap(err)
	}
	return value, nil
}

// Put stores the document under key, replacing any existing value.
func (r *SettingsRepository) Put(ctx context.Context, key string, value map[string]any) error {
	q := store.QuerierFrom(ctx, r.pool)

	_, err := q.Exec(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	if err != nil {
		return oops.Code("SETTING_PUT_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

// All returns every stored document keyed by name.
func (r *SettingsRepository) All(ctx context.Context) (map[string]map[string]any, error) {
	q := store.QuerierFrom(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, oops.Code("SETTINGS_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := make(map[string]map[string]any)
	for rows.Next() {
		var (
			key   string
			value map[string]any
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, oops.Code("SETTINGS_SCAN_FAILED").Wrap(err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SETTINGS_ITERATE_FAILED").Wrap(err)
	}
	return out, nil
}

// Compile-time interface check.
var _ settings.Store = (*SettingsRepository)(nil)
