// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements label persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/label"
	"github.com/inkwellcms/inkwell/internal/store"
)

// LabelRepository implements label.Store using PostgreSQL. It accepts the
// store.Pool interface so tests can substitute pgxmock.
type LabelRepository struct {
	pool store.Pool
}

// NewLabelRepository creates a new PostgreSQL label repository.
func NewLabelRepository(pool store.Pool) *LabelRepository {
	return &LabelRepository{pool: pool}
}

// GetOrCreate resolves raw label strings into label rows, inserting any
// canonical names not yet present.
//
// Each insert runs in its own nested transaction (savepoint) so that a
// unique-constraint violation from a concurrent writer rolls back only the
// failed insert, never the enclosing write; the row that won the race is
// then re-selected. Any error other than a unique violation aborts the
// whole operation.
func (r *LabelRepository) GetOrCreate(ctx context.Context, raw []string) ([]label.Label, error) {
	names := label.CanonicalSet(raw)
	if len(names) == 0 {
		return nil, nil
	}

	q := store.QuerierFrom(ctx, r.pool)

	existing, err := selectByNames(ctx, q, names)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]label.Label, len(names))
	for _, l := range existing {
		byName[l.Name] = l
	}

	for _, name := range names {
		if _, ok := byName[name]; ok {
			continue
		}
		l, err := r.insertOne(ctx, q, name)
		if err != nil {
			return nil, err
		}
		byName[name] = l
	}

	result := make([]label.Label, 0, len(names))
	for _, name := range names {
		result = append(result, byName[name])
	}
	return result, nil
}

// insertOne inserts a single label inside a savepoint, falling back to a
// re-select when a concurrent caller created the row first.
func (r *LabelRepository) insertOne(ctx context.Context, q store.Querier, name string) (label.Label, error) {
	tx, err := store.BeginFrom(ctx, r.pool)
	if err != nil {
		return label.Label{}, err
	}

	var id int64
	err = tx.QueryRow(ctx, `
		INSERT INTO labels (name) VALUES ($1) RETURNING id
	`, name).Scan(&id)
	if err == nil {
		if commitErr := tx.Commit(ctx); commitErr != nil {
			return label.Label{}, oops.Code("LABEL_CREATE_FAILED").With("name", name).Wrap(commitErr)
		}
		return label.Label{ID: id, Name: name}, nil
	}

	// Release the savepoint before deciding how to proceed.
	_ = tx.Rollback(ctx) //nolint:errcheck // savepoint rollback; original error decides

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return selectByName(ctx, q, name)
	}
	return label.Label{}, oops.Code("LABEL_CREATE_FAILED").With("name", name).Wrap(err)
}

func selectByName(ctx context.Context, q store.Querier, name string) (label.Label, error) {
	var l label.Label
	err := q.QueryRow(ctx, `SELECT id, name FROM labels WHERE name = $1`, name).Scan(&l.ID, &l.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return label.Label{}, oops.Code("LABEL_NOT_FOUND").With("name", name).Wrap(err)
	}
	if err != nil {
		return label.Label{}, oops.Code("LABEL_GET_FAILED").With("name", name).Wrap(err)
	}
	return l, nil
}

func selectByNames(ctx context.Context, q store.Querier, names []string) ([]label.Label, error) {
	rows, err := q.Query(ctx, `SELECT id, name FROM labels WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, oops.Code("LABEL_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var labels []label.Label
	for rows.Next() {
		var l label.Label
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, oops.Code("LABEL_SCAN_FAILED").Wrap(err)
		}
		labels = append(labels, l)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LABEL_ITERATE_FAILED").Wrap(err)
	}
	return labels, nil
}

// Compile-time interface check.
var _ label.Store = (*LabelRepository)(nil)
