// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements role persistence using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/role"
	"github.com/inkwellcms/inkwell/internal/store"
)

// RoleRepository implements role.Store using PostgreSQL. Permissions are
// stored as a jsonb array on the roles row.
type RoleRepository struct {
	pool store.Pool
}

// NewRoleRepository creates a new PostgreSQL role repository.
func NewRoleRepository(pool store.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

// Get returns the role by name.
func (r *RoleRepository) Get(ctx context.Context, name string) (role.Role, error) {
	q := store.QuerierFrom(ctx, r.pool)

	var out role.Role
	err := q.QueryRow(ctx, `
		SELECT name, permissions FROM roles WHERE name = $1
	`, name).Scan(&out.Name, &out.Permissions)
	if errors.Is(err, pgx.ErrNoRows) {
		return role.Role{}, oops.Code("ROLE_NOT_FOUND").With("name", name).Wrap(role.ErrNotFound)
	}
	if err != nil {
		return role.Role{}, oops.Code("ROLE_GET_FAILED").With("name", name).Wrap(err)
	}
	return out, nil
}

// List returns all roles ordered by name.
func (r *RoleRepository) List(ctx context.Context) ([]role.Role, error) {
	q := store.QuerierFrom(ctx, r.pool)

	rows, err := q.Query(ctx, `SELECT name, permissions FROM roles ORDER BY name`)
	if err != nil {
		return nil, oops.Code("ROLE_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	var roles []role.Role
	for rows.Next() {
		var rr role.Role
		if err := rows.Scan(&rr.Name, &rr.Permissions); err != nil {
			return nil, oops.Code("ROLE_SCAN_FAILED").Wrap(err)
		}
		roles = append(roles, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ROLE_ITERATE_FAILED").Wrap(err)
	}
	return roles, nil
}

// Upsert validates and saves the role, replacing its permission list.
func (r *RoleRepository) Upsert(ctx context.Context, rr role.Role) error {
	if err := rr.Validate(); err != nil {
		return err
	}

	q := store.QuerierFrom(ctx, r.pool)
	_, err := q.Exec(ctx, `
		INSERT INTO roles (name, permissions) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET permissions = EXCLUDED.permissions
	`, rr.Name, rr.Permissions)
	if err != nil {
		return oops.Code("ROLE_UPSERT_FAILED").With("name", rr.Name).Wrap(err)
	}
	return nil
}

// Delete removes the role. Reserved roles are refused outright. A role
// still assigned to users may be deleted; those users resolve to the empty
// permission set until reassigned.
func (r *RoleRepository) Delete(ctx context.Context, name string) error {
	if role.Reserved(name) {
		return oops.Code("ROLE_RESERVED").With("name", name).Wrap(role.ErrReserved)
	}

	q := store.QuerierFrom(ctx, r.pool)
	tag, err := q.Exec(ctx, `DELETE FROM roles WHERE name = $1`, name)
	if err != nil {
		return oops.Code("ROLE_DELETE_FAILED").With("name", name).Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("ROLE_NOT_FOUND").With("name", name).Wrap(role.ErrNotFound)
	}
	return nil
}

// Compile-time interface check.
var _ role.Store = (*RoleRepository)(nil)
