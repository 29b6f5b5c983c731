// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package user

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/access"
	"github.com/inkwellcms/inkwell/internal/role"
)

// ErrInvalidCredentials is returned for a bad username/password pair. The
// same error covers unknown usernames so login probes cannot distinguish
// the two.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service resolves caller identities and their permissions. It implements
// access.PermissionSource.
type Service struct {
	users  Store
	roles  role.Store
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a user service.
func NewService(users Store, roles role.Store, hasher PasswordHasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, roles: roles, hasher: hasher, logger: logger}
}

// PermissionsFor resolves the caller's permission set from their role.
//
// Minimum privilege on every unknown: an anonymous caller, an unknown
// username, a disabled account, and an unknown role all yield the empty
// set rather than an error, so a stale session or a deleted role degrades
// to no access instead of failing requests.
func (s *Service) PermissionsFor(ctx context.Context, caller access.Caller) (access.PermissionSet, error) {
	if caller.Anonymous() {
		return access.PermissionSet{}, nil
	}

	u, err := s.users.GetByUsername(ctx, caller.Username)
	if errors.Is(err, ErrNotFound) {
		return access.PermissionSet{}, nil
	}
	if err != nil {
		return access.PermissionSet{}, oops.Code("USER_RESOLVE_FAILED").
			With("username", caller.Username).Wrap(err)
	}
	if u.Disabled {
		return access.PermissionSet{}, nil
	}

	r, err := s.roles.Get(ctx, u.RoleName)
	if errors.Is(err, role.ErrNotFound) {
		s.logger.WarnContext(ctx, "user has unknown role",
			slog.String("username", u.Username),
			slog.String("role", u.RoleName))
		return access.PermissionSet{}, nil
	}
	if err != nil {
		return access.PermissionSet{}, oops.Code("ROLE_RESOLVE_FAILED").
			With("role", u.RoleName).Wrap(err)
	}

	return r.PermissionSet()
}

// CallerFor builds the access caller for a username. Unknown or disabled
// accounts resolve to the anonymous caller.
func (s *Service) CallerFor(ctx context.Context, username string) (access.Caller, error) {
	if username == "" {
		return access.Caller{}, nil
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return access.Caller{}, nil
	}
	if err != nil {
		return access.Caller{}, oops.Code("USER_RESOLVE_FAILED").
			With("username", username).Wrap(err)
	}
	if u.Disabled {
		return access.Caller{}, nil
	}
	return access.Caller{Username: u.Username, Role: u.RoleName}, nil
}

// Authenticate verifies a username/password pair and returns the caller
// identity. Unknown usernames, wrong passwords, and disabled accounts all
// fail with ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (access.Caller, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		// Burn a hash verification anyway to keep timing uniform.
		_, _ = s.hasher.Verify(password, dummyHash) //nolint:errcheck // timing equalization only
		return access.Caller{}, ErrInvalidCredentials
	}
	if err != nil {
		return access.Caller{}, oops.Code("USER_RESOLVE_FAILED").
			With("username", username).Wrap(err)
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return access.Caller{}, oops.Code("USER_VERIFY_FAILED").
			With("username", username).Wrap(err)
	}
	if !ok || u.Disabled {
		s.logger.InfoContext(ctx, "authentication rejected",
			slog.String("username", username),
			slog.Bool("disabled", u.Disabled))
		return access.Caller{}, ErrInvalidCredentials
	}

	return access.Caller{Username: u.Username, Role: u.RoleName}, nil
}

// Register validates and creates a new account with a hashed password.
func (s *Service) Register(ctx context.Context, username, password, roleName string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	if _, err := s.roles.Get(ctx, roleName); err != nil {
		return nil, oops.Code("USER_ROLE_INVALID").With("role", roleName).Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           NewID(),
		Username:     username,
		PasswordHash: hash,
		RoleName:     roleName,
		Settings:     map[string]any{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		slog.String("username", username),
		slog.String("role", roleName))
	return u, nil
}

// dummyHash is a valid argon2id hash of an unguessable throwaway value,
// used to equalize timing when the username does not exist.
const dummyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$L9tOwOVdDKEqhsbvrNtpOsUPAmJG+yCWMoLAFRYmZtI"

// Compile-time interface check.
var _ access.PermissionSource = (*Service)(nil)
