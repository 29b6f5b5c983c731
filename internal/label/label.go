// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package label provides label canonicalization, the search query grammar,
// and the label persistence contract.
//
// Labels are the currency of Inkwell's access control: ACL labels
// ("any:read", "editor:update") and system labels ("sys:public") share a
// single canonical namespace with free-form metadata labels. Only canonical
// names ever reach storage.
package label

import (
	"context"
	"strings"
	"unicode"
)

// ACL label prefix for rules that apply to every caller, including anonymous.
const AnyRolePrefix = "any"

// Canonical normalizes a raw label string to its canonical form:
// trim, lowercase, collapse each whitespace run into a single underscore,
// then drop the characters '<' and '>'. An empty result means the input
// carried no usable content and must be ignored by callers.
//
// Canonical is idempotent: Canonical(Canonical(s)) == Canonical(s).
func Canonical(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	flush := func() {
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
	}
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSep = true
		case r == '<' || r == '>':
			// The collapse happens before the drop, so a bracket still
			// terminates the whitespace run on each side of it.
			flush()
		default:
			flush()
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalSet canonicalizes every input and returns the distinct non-empty
// canonical names. Order of the result is unspecified.
func CanonicalSet(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	names := make([]string, 0, len(raw))
	for _, s := range raw {
		name := Canonical(s)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Label is a persisted canonical label row.
type Label struct {
	ID   int64
	Name string
}

// Store provides get-or-create access to label rows.
//
// GetOrCreate must be safe under concurrent calls attempting the same new
// name: at most one row per canonical name may ever exist.
type Store interface {
	// GetOrCreate resolves the distinct non-empty canonical names of raw
	// into label rows, inserting any that are missing. The result carries
	// exactly one Label per distinct canonical name; iteration order is
	// unspecified.
	GetOrCreate(ctx context.Context, raw []string) ([]Label, error)
}
