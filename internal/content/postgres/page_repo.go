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

const pageColumns = `e.slug, e.title, e.kind, e.body, e.author, e.custom, e.created_at, e.updated_at`

// PageRepository implements content.PageStore using PostgreSQL.
type PageRepository struct {
	pool store.Pool
}

// NewPageRepository creates a new PostgreSQL page repository.
func NewPageRepository(pool store.Pool) *PageRepository {
	return &PageRepository{pool: pool}
}

// Create inserts a page and attaches its labels.
func (r *PageRepository) Create(ctx context.Context, p *content.Page, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO pages (slug, title, kind, body, author, custom, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, p.Slug, p.Title, p.Kind, p.Body, p.Author, p.Custom, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("PAGE_EXISTS").With("slug", p.Slug).Wrap(content.ErrConflict)
		}
		return oops.Code("PAGE_CREATE_FAILED").With("slug", p.Slug).Wrap(err)
	}

	return attachLabels(ctx, q, pagesTable, p.Slug, labels)
}

// Get returns a page with its labels.
func (r *PageRepository) Get(ctx context.Context, slug string) (*content.Page, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var p content.Page
	err := q.QueryRow(ctx, `SELECT `+pageColumns+` FROM pages e WHERE e.slug = $1`, slug).
		Scan(&p.Slug, &p.Title, &p.Kind, &p.Body, &p.Author, &p.Custom, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("PAGE_NOT_FOUND").With("slug", slug).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("PAGE_GET_FAILED").With("slug", slug).Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, pagesTable, []string{p.Slug})
	if err != nil {
		return nil, err
	}
	p.Labels = byKey[p.Slug]
	return &p, nil
}

// List returns pages matching the filter, newest first.
func (r *PageRepository) List(ctx context.Context, f content.Filter) ([]*content.Page, error) {
	q := store.QuerierFrom(ctx, r.pool)

	sql, args := listQuery(pagesTable, pageColumns, f)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("PAGE_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var (
		pages []*content.Page
		keys  []string
	)
	for rows.Next() {
		var p content.Page
		if err := rows.Scan(&p.Slug, &p.Title, &p.Kind, &p.Body, &p.Author, &p.Custom, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, oops.Code("PAGE_SCAN_FAILED").Wrap(err)
		}
		pages = append(pages, &p)
		keys = append(keys, p.Slug)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("PAGE_ITERATE_FAILED").Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, pagesTable, keys)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		p.Labels = byKey[p.Slug]
	}
	return pages, nil
}

// Update rewrites a page's mutable fields. The slug is the lookup key and
// is never written. A nil labels slice leaves the associations untouched;
// a non-nil slice replaces them.
func (r *PageRepository) Update(ctx context.Context, p *content.Page, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	p.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `
		UPDATE pages SET title = $2, kind = $3, body = $4, custom = $5, updated_at = $6
		WHERE slug = $1
	`, p.Slug, p.Title, p.Kind, p.Body, p.Custom, p.UpdatedAt)
	if err != nil {
		return oops.Code("PAGE_UPDATE_FAILED").With("slug", p.Slug).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("PAGE_NOT_FOUND").With("slug", p.Slug).Wrap(content.ErrNotFound)
	}

	if labels != nil {
		return replaceLabels(ctx, q, pagesTable, p.Slug, labels)
	}
	return nil
}

// Delete removes a page. Label rows survive; only associations cascade.
func (r *PageRepository) Delete(ctx context.Context, slug string) (bool, error) {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM pages WHERE slug = $1`, slug)
	if err != nil {
		return false, oops.Code("PAGE_DELETE_FAILED").With("slug", slug).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Compile-time interface check.
var _ content.PageStore = (*PageRepository)(nil)
