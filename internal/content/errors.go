// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package content

import "errors"

// Sentinel errors the transport maps onto HTTP statuses. ErrNotFound
// covers both genuinely missing entities and entities the caller is not
// permitted to learn of; the two are indistinguishable on purpose.
var (
	ErrNotFound   = errors.New("entity not found")
	ErrForbidden  = errors.New("operation forbidden")
	ErrConflict   = errors.New("entity already exists")
	ErrValidation = errors.New("validation failed")
)
