// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package postgres

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/label"
	"github.com/inkwellcms/inkwell/internal/store"
)

const submissionColumns = `e.id, e.collection_slug, e.author, e.data, e.created_at, e.updated_at`

// SubmissionRepository implements content.SubmissionStore using
// PostgreSQL.
type SubmissionRepository struct {
	pool store.Pool
}

// NewSubmissionRepository creates a new PostgreSQL submission repository.
func NewSubmissionRepository(pool store.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts a submission and attaches its labels. The row id is
// assigned by the database and written back.
func (r *SubmissionRepository) Create(ctx context.Context, s *content.Submission, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now

	err := q.QueryRow(ctx, `
		INSERT INTO submissions (collection_slug, author, data, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, s.CollectionSlug, s.Author, s.Data, s.CreatedAt, s.UpdatedAt).Scan(&s.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return oops.Code("SUBMISSION_COLLECTION_MISSING").
				With("collection", s.CollectionSlug).Wrap(content.ErrNotFound)
		}
		return oops.Code("SUBMISSION_CREATE_FAILED").
			With("collection", s.CollectionSlug).Wrap(err)
	}

	return attachLabels(ctx, q, submissionsTable, s.ID, labels)
}

// Get returns a submission with its labels.
func (r *SubmissionRepository) Get(ctx context.Context, id int64) (*content.Submission, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var s content.Submission
	err := q.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions e WHERE e.id = $1`, id).
		Scan(&s.ID, &s.CollectionSlug, &s.Author, &s.Data, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SUBMISSION_NOT_FOUND").With("id", id).Wrap(content.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SUBMISSION_GET_FAILED").With("id", id).Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, submissionsTable, []int64{s.ID})
	if err != nil {
		return nil, err
	}
	s.Labels = byKey[strconv.FormatInt(s.ID, 10)]
	return &s, nil
}

// List returns submissions matching the filter, newest first.
func (r *SubmissionRepository) List(ctx context.Context, f content.Filter) ([]*content.Submission, error) {
	q := store.QuerierFrom(ctx, r.pool)

	sql, args := listQuery(submissionsTable, submissionColumns, f)
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("SUBMISSION_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var (
		subs []*content.Submission
		keys []int64
	)
	for rows.Next() {
		var s content.Submission
		if err := rows.Scan(&s.ID, &s.CollectionSlug, &s.Author, &s.Data, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, oops.Code("SUBMISSION_SCAN_FAILED").Wrap(err)
		}
		subs = append(subs, &s)
		keys = append(keys, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("SUBMISSION_ITERATE_FAILED").Wrap(err)
	}

	byKey, err := labelsFor(ctx, q, submissionsTable, keys)
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		s.Labels = byKey[strconv.FormatInt(s.ID, 10)]
	}
	return subs, nil
}

// Update rewrites a submission's data. The id and collection slug are
// never written. A nil labels slice leaves the associations untouched; a
// non-nil slice replaces them.
func (r *SubmissionRepository) Update(ctx context.Context, s *content.Submission, labels []label.Label) error {
	q := store.QuerierFrom(ctx, r.pool)

	s.UpdatedAt = time.Now().UTC()
	tag, err := q.Exec(ctx, `
		UPDATE submissions SET data = $2, updated_at = $3 WHERE id = $1
	`, s.ID, s.Data, s.UpdatedAt)
	if err != nil {
		return oops.Code("SUBMISSION_UPDATE_FAILED").With("id", s.ID).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("SUBMISSION_NOT_FOUND").With("id", s.ID).Wrap(content.ErrNotFound)
	}

	if labels != nil {
		return replaceLabels(ctx, q, submissionsTable, s.ID, labels)
	}
	return nil
}

// Delete removes a submission.
func (r *SubmissionRepository) Delete(ctx context.Context, id int64) (bool, error) {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return false, oops.Code("SUBMISSION_DELETE_FAILED").With("id", id).Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

// Compile-time interface check.
var _ content.SubmissionStore = (*SubmissionRepository)(nil)
