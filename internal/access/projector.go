// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package access

import (
	"context"

	"github.com/samber/oops"
)

// Subject is implemented by any entity the projector can filter. The
// returned snapshot must describe the entity's type, author, and labels.
type Subject interface {
	AccessResource() *Resource
}

// ReadFilter is the read predicate in a form list queries can push into
// SQL: the caller may read an entity iff All is set, or the entity carries
// one of OpenLabels, or its author equals Author (when non-empty).
type ReadFilter struct {
	All        bool
	OpenLabels []string
	Author     string
}

// ReadFilterFor derives the caller's read filter for one resource type.
// It must stay observationally identical to per-record Decide calls with
// ActionRead; the projector tests hold the two paths to the same answers.
func (e *Engine) ReadFilterFor(ctx context.Context, caller Caller, typ ResourceType) (ReadFilter, error) {
	f := ReadFilter{OpenLabels: []string{"any:read"}}
	if caller.Anonymous() {
		return f, nil
	}

	perms, err := e.perms.PermissionsFor(ctx, caller)
	if err != nil {
		return ReadFilter{}, oops.Code("ACCESS_RESOLVE_FAILED").
			With("username", caller.Username).Wrap(err)
	}

	f.All = perms.Wildcard() || perms.Has(string(typ)+":"+string(ActionRead))
	if caller.Role != "" {
		f.OpenLabels = append(f.OpenLabels, caller.Role+":"+string(ActionRead))
	}
	f.Author = caller.Username
	return f, nil
}

// Project filters items down to those the caller may read: exactly the
// items for which Decide(caller, read, ...) returns Allow. List endpoints
// may instead push an equivalent predicate into SQL; both paths must be
// observationally identical for any fixed caller.
func Project[T Subject](ctx context.Context, e *Engine, caller Caller, items []T) ([]T, error) {
	visible := make([]T, 0, len(items))
	for _, item := range items {
		res := item.AccessResource()
		verdict, err := e.Decide(ctx, caller, ActionRead, res.Type, res)
		if err != nil {
			return nil, err
		}
		if verdict.Allowed() {
			visible = append(visible, item)
		}
	}
	return visible, nil
}
