// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package role defines named permission bundles assigned to users.
package role

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/access"
)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound = errors.New("role not found")
	ErrReserved = errors.New("role is reserved")
)

// Reserved role names. These are seeded at bootstrap and cannot be
// deleted; admin additionally cannot change its permissions.
const (
	Admin  = "admin"
	Editor = "editor"
	Viewer = "viewer"
)

// Role is a named permission bundle. Permissions are "{resource}:{action}"
// strings, or the operator wildcard "*" which only admin may carry.
type Role struct {
	Name        string
	Permissions []string
}

// Reserved reports whether the role name is one of the built-in roles.
func Reserved(name string) bool {
	switch name {
	case Admin, Editor, Viewer:
		return true
	}
	return false
}

// Validate checks the role's name and permission list. The admin role is
// pinned to exactly ["*"], and no other role may carry the wildcard.
func (r Role) Validate() error {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return oops.Code("ROLE_INVALID").Errorf("role name must not be empty")
	}
	if name != r.Name || strings.ContainsAny(name, " \t\n:") {
		return oops.Code("ROLE_INVALID").With("name", r.Name).
			Errorf("role name must not contain whitespace or ':'")
	}

	if r.Name == Admin {
		if len(r.Permissions) != 1 || r.Permissions[0] != access.Wildcard {
			return oops.Code("ROLE_INVALID").With("name", r.Name).
				Errorf("admin permissions must be exactly [%q]", access.Wildcard)
		}
		return nil
	}

	for _, p := range r.Permissions {
		if p == access.Wildcard {
			return oops.Code("ROLE_INVALID").With("name", r.Name).
				Errorf("only admin may carry the wildcard permission")
		}
	}
	// Compile eagerly so a bad pattern is caught at definition time, not
	// at decision time.
	if _, err := access.NewPermissionSet(r.Permissions); err != nil {
		return oops.Code("ROLE_INVALID").With("name", r.Name).Wrap(err)
	}
	return nil
}

// PermissionSet compiles the role's permissions.
func (r Role) PermissionSet() (access.PermissionSet, error) {
	return access.NewPermissionSet(r.Permissions)
}

// Store persists roles.
type Store interface {
	// Get returns the role by name, or content-style not-found error.
	Get(ctx context.Context, name string) (Role, error)
	// List returns all roles ordered by name.
	List(ctx context.Context) ([]Role, error)
	// Upsert validates and saves the role, replacing its permissions.
	Upsert(ctx context.Context, r Role) error
	// Delete removes the role. Reserved roles cannot be deleted. Deleting
	// a role still assigned to users is permitted; those users resolve to
	// the empty permission set.
	Delete(ctx context.Context, name string) error
}
