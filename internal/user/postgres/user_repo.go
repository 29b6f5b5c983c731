// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements user persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/store"
	"github.com/inkwellcms/inkwell/internal/user"
)

const userColumns = `id, username, password_hash, role_name, display_name, pfp_url, disabled, settings, created_at, updated_at`

// UserRepository implements user.Store using PostgreSQL.
type UserRepository struct {
	pool store.Pool
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(pool store.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	q := store.QuerierFrom(ctx, r.pool)

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := q.Exec(ctx, `
		INSERT INTO users (id, username, password_hash, role_name, display_name, pfp_url, disabled, settings, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, u.ID.String(), u.Username, u.PasswordHash, u.RoleName, u.DisplayName, u.PfpURL, u.Disabled, u.Settings, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_EXISTS").With("username", u.Username).Wrap(user.ErrExists)
		}
		return oops.Code("USER_CREATE_FAILED").With("username", u.Username).Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*user.User, error) {
	q := store.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id.String())
	return scanUser(row, id.String())
}

// GetByUsername retrieves a user by username, case-insensitively.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	q := store.QuerierFrom(ctx, r.pool)
	row := q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = LOWER($1)`, username)
	return scanUser(row, username)
}

// List returns all users ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]*user.User, error) {
	q := store.QuerierFrom(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, oops.Code("USER_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("USER_ITERATE_FAILED").Wrap(err)
	}
	return users, nil
}

// Update updates an existing user. The username and ID are immutable.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	q := store.QuerierFrom(ctx, r.pool)

	u.UpdatedAt = time.Now()
	tag, err := q.Exec(ctx, `
		UPDATE users
		SET role_name = $2, display_name = $3, pfp_url = $4, disabled = $5, settings = $6, updated_at = $7
		WHERE id = $1
	`, u.ID.String(), u.RoleName, u.DisplayName, u.PfpURL, u.Disabled, u.Settings, u.UpdatedAt)
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("id", u.ID.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", u.ID.String()).Wrap(user.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `
		UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_FAILED").With("id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(user.ErrNotFound)
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	q := store.QuerierFrom(ctx, r.pool)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").With("id", id.String()).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").With("id", id.String()).Wrap(user.ErrNotFound)
	}
	return nil
}

// scanUser scans a user row. key is included in error context only.
func scanUser(row pgx.Row, key string) (*user.User, error) {
	var (
		u     user.User
		rawID string
	)
	err := row.Scan(&rawID, &u.Username, &u.PasswordHash, &u.RoleName, &u.DisplayName,
		&u.PfpURL, &u.Disabled, &u.Settings, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").With("key", key).Wrap(user.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_SCAN_FAILED").With("key", key).Wrap(err)
	}

	u.ID, err = ulid.Parse(rawID)
	if err != nil {
		return nil, oops.Code("USER_ID_INVALID").With("id", rawID).Wrap(err)
	}
	return &u, nil
}

// Compile-time interface check.
var _ user.Store = (*UserRepository)(nil)
