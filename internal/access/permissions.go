// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Wildcard is the permission string granting every operation. Only the
// admin role may carry it.
const Wildcard = "*"

// compiledPermission holds a permission pattern and its compiled glob.
type compiledPermission struct {
	pattern string
	glob    glob.Glob
}

// PermissionSet is a role's compiled permission list.
//
// Permission strings are either the wildcard "*" or "{resource}:{action}".
// Patterns are matched with ':' as the segment separator, so "page:*"
// grants every page action while a lone "*" stays the operator wildcard
// and never matches a two-segment permission. The zero value is the empty
// permission set (minimum privilege).
type PermissionSet struct {
	wildcard bool
	grants   []compiledPermission
}

// NewPermissionSet compiles a permission list. Invalid glob patterns are
// rejected so a malformed role definition fails loudly instead of granting
// nothing silently.
func NewPermissionSet(permissions []string) (PermissionSet, error) {
	var ps PermissionSet
	for i, pattern := range permissions {
		if pattern == "" {
			return PermissionSet{}, oops.Code("PERMISSION_INVALID").
				With("index", i).Errorf("empty permission pattern")
		}
		if pattern == Wildcard {
			ps.wildcard = true
			continue
		}
		g, err := glob.Compile(pattern, ':')
		if err != nil {
			return PermissionSet{}, oops.Code("PERMISSION_INVALID").
				With("index", i).With("pattern", pattern).Wrap(err)
		}
		ps.grants = append(ps.grants, compiledPermission{pattern: pattern, glob: g})
	}
	return ps, nil
}

// Wildcard reports whether the set carries the operator wildcard "*".
func (ps PermissionSet) Wildcard() bool {
	return ps.wildcard
}

// Has reports whether the set grants the given "{resource}:{action}"
// permission. The operator wildcard is not consulted here; rule order in
// the engine gives it precedence explicitly.
func (ps PermissionSet) Has(permission string) bool {
	for _, grant := range ps.grants {
		if grant.glob.Match(permission) {
			return true
		}
	}
	return false
}

// Empty reports whether the set grants nothing at all.
func (ps PermissionSet) Empty() bool {
	return !ps.wildcard && len(ps.grants) == 0
}
