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

const mediaColumns = `e.id, e.filename, e.mime_type, e.size_bytes, e.author, e.created_at, e.updated_at`

// MediaRepository implements content.MediaStore using PostgreSQL.
type MediaRepository struct {
	pool store.Pool
}

// NewMediaRepository creates a new PostgreSQL media repository.
func NewMediaRepository(pool store.Pool) *MediaRepository {
	return &MediaRepository{pool: pool}
}

// Create inserts a media record and attaches its labels.
func (r *MediaRepository) Create(ctx context.Context, m *content.Media, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO media (id, filename, mime_type, size_bytes, author, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, m.ID, m.Filename, m.MimeType, m.SizeBytes, m.Author, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("MEDIA_EXISTS").With("id", m.ID).Wrap(content.ErrConflict)
		}
		return oops.Code("MEDIA_CREATE_FAILED").With("id", m.ID).Wrap(err)
	}

	return attachLabels(ctx, q, mediaTable, m.ID, labels)
}

// Get returns a media record with its labels.
func (r *MediaRepository) Get(ctx context.Context, id string) (*content.Media, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var m content.Media
	err := q.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media e WHERE e.id = $1`, id).
		Scan(&m.ID, &m.Filename, &m.MimeType, &m.SizeBytes, &m.Author, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("MEDIA_NOT_FOUND").With("id", id).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("MEDIA_GET_FAILED").With("id", id).Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, mediaTable, []string{m.ID})
	if err != nil {
		return nil, err
	}
	m.Labels = byKey[m.ID]
	return &m, nil
}

// List returns media records matching the filter, newest first.
func (r *MediaRepository) List(ctx context.Context, f content.Filter) ([]*content.Media, error) {
	q := store.QuerierFrom(ctx, r.pool)

	sql, args := listQuery(mediaTable, mediaColumns, f)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("MEDIA_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var (
		items []*content.Media
		keys  []string
	)
	for rows.Next() {
		var m content.Media
		if err := rows.Scan(&m.ID, &m.Filename, &m.MimeType, &m.SizeBytes, &m.Author, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, oops.Code("MEDIA_SCAN_FAILED").Wrap(err)
		}
		items = append(items, &m)
		keys = append(keys, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("MEDIA_ITERATE_FAILED").Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, mediaTable, keys)
	if err != nil {
		return nil, err
	}
	for _, m := range items {
		m.Labels = byKey[m.ID]
	}
	return items, nil
}

// Update rewrites a media record's metadata. A nil labels slice leaves
// the associations untouched; a non-nil slice replaces them.
func (r *MediaRepository) Update(ctx context.Context, m *content.Media, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	m.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `
		UPDATE media SET filename = $2, mime_type = $3, size_bytes = $4, updated_at = $5
		WHERE id = $1
	`, m.ID, m.Filename, m.MimeType, m.SizeBytes, m.UpdatedAt)
	if err != nil {
		return oops.Code("MEDIA_UPDATE_FAILED").With("id", m.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("MEDIA_NOT_FOUND").With("id", m.ID).Wrap(content.ErrNotFound)
	}

	if labels != nil {
		return replaceLabels(ctx, q, mediaTable, m.ID, labels)
	}
	return nil
}

// Delete removes a media record.
func (r *MediaRepository) Delete(ctx context.Context, id string) (bool, error) {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return false, oops.Code("MEDIA_DELETE_FAILED").With("id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Compile-time interface check.
var _ content.MediaStore = (*MediaRepository)(nil)
