// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/label"
	"github.com/inkwellcms/inkwell/internal/store"
)

const collectionColumns = `e.slug, e.name, e.schema, e.author, e.created_at, e.updated_at`

// CollectionRepository implements content.CollectionStore using
// PostgreSQL.
type CollectionRepository struct {
	pool store.Pool
}

// NewCollectionRepository creates a new PostgreSQL collection repository.
func NewCollectionRepository(pool store.Pool) *CollectionRepository {
	return &CollectionRepository{pool: pool}
}

// Create inserts a collection and attaches its labels.
func (r *CollectionRepository) Create(ctx context.Context, c *content.Collection, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO collections (slug, name, schema, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, c.Slug, c.Name, c.Schema, c.Author, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("COLLECTION_EXISTS").With("slug", c.Slug).Wrap(content.ErrConflict)
		}
		return oops.Code("COLLECTION_CREATE_FAILED").With("slug", c.Slug).Wrap(err)
	}

	return attachLabels(ctx, q, collectionsTable, c.Slug, labels)
}

// Get returns a collection with its labels.
func (r *CollectionRepository) Get(ctx context.Context, slug string) (*content.Collection, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var c content.Collection
	err := q.QueryRow(ctx, `SELECT `+collectionColumns+` FROM collections e WHERE e.slug = $1`, slug).
		Scan(&c.Slug, &c.Name, &c.Schema, &c.Author, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("COLLECTION_NOT_FOUND").With("slug", slug).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("COLLECTION_GET_FAILED").With("slug", slug).Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, collectionsTable, []string{c.Slug})
	if err != nil {
		return nil, err
	}
	c.Labels = byKey[c.Slug]
	return &c, nil
}

// List returns collections matching the filter, newest first.
func (r *CollectionRepository) List(ctx context.Context, f content.Filter) ([]*content.Collection, error) {
	q := store.QuerierFrom(ctx, r.pool)

	sql, args := listQuery(collectionsTable, collectionColumns, f)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("COLLECTION_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var (
		collections []*content.Collection
		keys        []string
	)
	for rows.Next() {
		var c content.Collection
		if err := rows.Scan(&c.Slug, &c.Name, &c.Schema, &c.Author, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, oops.Code("COLLECTION_SCAN_FAILED").Wrap(err)
		}
		collections = append(collections, &c)
		keys = append(keys, c.Slug)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("COLLECTION_ITERATE_FAILED").Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, collectionsTable, keys)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		c.Labels = byKey[c.Slug]
	}
	return collections, nil
}

// Update rewrites a collection's mutable fields. A nil labels slice
// leaves the associations untouched; a non-nil slice replaces them.
func (r *CollectionRepository) Update(ctx context.Context, c *content.Collection, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	c.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `
		UPDATE collections SET name = $2, schema = $3, updated_at = $4
		WHERE slug = $1
	`, c.Slug, c.Name, c.Schema, c.UpdatedAt)
	if err != nil {
		return oops.Code("COLLECTION_UPDATE_FAILED").With("slug", c.Slug).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("COLLECTION_NOT_FOUND").With("slug", c.Slug).Wrap(content.ErrNotFound)
	}

	if labels != nil {
		return replaceLabels(ctx, q, collectionsTable, c.Slug, labels)
	}
	return nil
}

// Delete removes a collection; its submissions cascade away with it.
func (r *CollectionRepository) Delete(ctx context.Context, slug string) (bool, error) {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM collections WHERE slug = $1`, slug)
	if err != nil {
		return false, oops.Code("COLLECTION_DELETE_FAILED").With("slug", slug).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Compile-time interface check.
var _ content.CollectionStore = (*CollectionRepository)(nil)
