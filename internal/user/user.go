// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package user provides account records, credential hashing, and the
// caller identity used by access decisions.
package user

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain
// only letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Sentinel errors returned by Store implementations.
var (
	ErrNotFound = errors.New("user not found")
	ErrExists   = errors.New("username already taken")
)

// User is an account record. Usernames are unique case-insensitively; the
// stored spelling is preserved for display.
type User struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	RoleName     string
	DisplayName  string
	PfpURL       string
	Disabled     bool
	Settings     map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewID generates a new user identifier.
func NewID() ulid.ULID {
	return ulid.Make()
}

// ValidateUsername validates a username: MinUsernameLength to
// MaxUsernameLength characters, starting with a letter, containing only
// letters, numbers, and underscores.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("USER_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("USER_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// Store manages user persistence.
type Store interface {
	// Create stores a new user. Returns ErrExists when the username is
	// already taken (case-insensitively).
	Create(ctx context.Context, u *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)

	// List returns all users ordered by username.
	List(ctx context.Context) ([]*User, error)

	// Update updates an existing user.
	Update(ctx context.Context, u *User) error

	// UpdatePassword updates only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error
}
