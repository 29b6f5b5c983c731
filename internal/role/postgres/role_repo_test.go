// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellcms/inkwell/internal/role"
)

func TestRoleRepository_Get(t *testing.T) {
	tests := []struct {
		name      string
		roleName  string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      role.Role
		wantErr   error
	}{
		{
			name:     "existing role",
			roleName: "editor",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"name", "permissions"}).
					AddRow("editor", []string{"page:read", "page:update"})
				mock.ExpectQuery(`SELECT name, permissions FROM roles WHERE name = \$1`).
					WithArgs("editor").
					WillReturnRows(rows)
			},
			want: role.Role{Name: "editor", Permissions: []string{"page:read", "page:update"}},
		},
		{
			name:     "missing role",
			roleName: "ghost",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT name, permissions FROM roles WHERE name = \$1`).
					WithArgs("ghost").
					WillReturnError(errors.New("no rows in result set"))
			},
			wantErr: errors.New("no rows in result set"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewRoleRepository(mock)
			got, err := repo.Get(context.Background(), tt.roleName)

			if tt.wantErr != nil {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestRoleRepository_GetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	defer mock.Close()

	mock.ExpectQuery(`SELECT name, permissions FROM roles WHERE name = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{"name", "permissions"}))

	repo := NewRoleRepository(mock)
	_, err = repo.Get(context.Background(), "ghost")

	require.Error(t, err)
	assert.ErrorIs(t, err, role.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestRoleRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"name", "permissions"}).
		AddRow("admin", []string{"*"}).
		AddRow("viewer", []string{"page:read"})
	mock.ExpectQuery(`SELECT name, permissions FROM roles ORDER BY name`).
		WillReturnRows(rows)

	repo := NewRoleRepository(mock)
	got, err := repo.List(context.Background())

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "admin", got[0].Name)
	assert.Equal(t, []string{"*"}, got[0].Permissions)
	assert.Equal(t, "viewer", got[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
}

func TestRoleRepository_Upsert(t *testing.T) {
	tests := []struct {
		name      string
		role      role.Role
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "insert custom role",
			role: role.Role{Name: "moderator", Permissions: []string{"page:read", "submission:read"}},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO roles`).
					WithArgs("moderator", []string{"page:read", "submission:read"}).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "update existing role",
			role: role.Role{Name: "viewer", Permissions: []string{"page:read"}},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO roles`).
					WithArgs("viewer", []string{"page:read"}).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name:      "invalid role is rejected before SQL",
			role:      role.Role{Name: "moderator", Permissions: []string{"*"}},
			setupMock: func(_ pgxmock.PgxPoolIface) {},
			wantErr:   true,
		},
		{
			name: "database error",
			role: role.Role{Name: "moderator", Permissions: []string{"page:read"}},
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO roles`).
					WithArgs("moderator", []string{"page:read"}).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewRoleRepository(mock)
			err = repo.Upsert(context.Background(), tt.role)

			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestRoleRepository_Delete(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM roles WHERE name = \$1`).
			WithArgs("moderator").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewRoleRepository(mock)
		require.NoError(t, repo.Delete(context.Background(), "moderator"))
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("reserved role is refused without SQL", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		repo := NewRoleRepository(mock)
		err = repo.Delete(context.Background(), "admin")

		require.Error(t, err)
		assert.ErrorIs(t, err, role.ErrReserved)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("role assigned to users still deletes", func(t *testing.T) {
		// Nothing blocks the delete on the database side; users carrying
		// the name degrade to the empty permission set.
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM roles WHERE name = \$1`).
			WithArgs("moderator").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewRoleRepository(mock)
		require.NoError(t, repo.Delete(context.Background(), "moderator"))
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("missing role", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM roles WHERE name = \$1`).
			WithArgs("ghost").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewRoleRepository(mock)
		err = repo.Delete(context.Background(), "ghost")

		require.Error(t, err)
		assert.ErrorIs(t, err, role.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
