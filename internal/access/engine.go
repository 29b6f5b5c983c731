// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package access

import (
	"context"
	"time"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// PermissionSource resolves a caller's permission set. An unknown user or
// unknown role must yield the empty set, not an error.
type PermissionSource interface {
	PermissionsFor(ctx context.Context, caller Caller) (PermissionSet, error)
}

// Engine renders access verdicts. It holds no mutable state; every
// decision is derived from the permission source and the entity snapshot
// passed in, so concurrent use needs no synchronization.
type Engine struct {
	perms  PermissionSource
	tracer trace.Tracer
}

// NewEngine creates a decision engine over the given permission source.
func NewEngine(perms PermissionSource) *Engine {
	return &Engine{
		perms:  perms,
		tracer: otel.Tracer("inkwell/access"),
	}
}

// Decide renders the verdict for caller performing action on the resource
// snapshot res of type typ. res may be nil for create and list decisions.
//
// Evaluation order, first match wins:
//
//  1. admin wildcard "*" in the caller's permissions
//  2. "{type}:{action}" in the caller's permissions
//  3. "any:{action}" in the entity's labels (applies to anonymous callers)
//  4. "{caller.role}:{action}" in the entity's labels
//  5. ownership (read/update/delete only)
//  6. page sub-capability "{page.kind}:{action}", required for any page
//     mutation allowed by rules 2-5 (rule 1 bypasses it)
//
// Otherwise: reads return NotFound so private identifiers stay
// unenumerable; anonymous mutations return NotFound; authenticated
// mutations return Deny; creates return Deny. Unauthorized access to
// submissions returns NotFound regardless of authentication, preventing
// id probing.
func (e *Engine) Decide(ctx context.Context, caller Caller, action Action, typ ResourceType, res *Resource) (Verdict, error) {
	ctx, span := e.tracer.Start(ctx, "access.Decide", trace.WithAttributes(
		attribute.String("access.action", string(action)),
		attribute.String("access.resource_type", string(typ)),
		attribute.Bool("access.anonymous", caller.Anonymous()),
	))
	defer span.End()

	start := time.Now()
	verdict, err := e.decide(ctx, caller, action, typ, res)
	if err != nil {
		span.RecordError(err)
		return verdict, err
	}

	span.SetAttributes(attribute.String("access.verdict", verdict.String()))
	recordDecision(time.Since(start), typ, action, verdict)
	return verdict, nil
}

func (e *Engine) decide(ctx context.Context, caller Caller, action Action, typ ResourceType, res *Resource) (Verdict, error) {
	perms := PermissionSet{}
	if !caller.Anonymous() {
		var err error
		perms, err = e.perms.PermissionsFor(ctx, caller)
		if err != nil {
			// Fail closed: an unresolvable caller learns nothing.
			return VerdictNotFound, oops.Code("ACCESS_RESOLVE_FAILED").
				With("username", caller.Username).Wrap(err)
		}
	}

	// Rule 1: operator wildcard bypasses everything, including the page
	// sub-capability check.
	if !caller.Anonymous() && perms.Wildcard() {
		return VerdictAllow, nil
	}

	allowed := false

	// Rule 2: resource permission.
	if !caller.Anonymous() && perms.Has(string(typ)+":"+string(action)) {
		allowed = true
	}

	// Rule 3: open label, anonymous callers included.
	if !allowed && res.HasLabel("any:"+string(action)) {
		allowed = true
	}

	// Rule 4: role label.
	if !allowed && !caller.Anonymous() && caller.Role != "" &&
		res.HasLabel(caller.Role+":"+string(action)) {
		allowed = true
	}

	// Rule 5: ownership, for existing entities only.
	if !allowed && action != ActionCreate && !caller.Anonymous() &&
		res != nil && res.Author != "" && res.Author == caller.Username {
		allowed = true
	}

	if allowed {
		// Rule 6: page sub-capability. A caller may be allowed to edit a
		// page yet lack permission to author its representation (raw HTML
		// vs Markdown).
		if typ == ResourcePage && action != ActionRead && res != nil && res.PageKind != "" {
			if !perms.Has(res.PageKind + ":" + string(action)) {
				return VerdictDeny, nil
			}
		}
		return VerdictAllow, nil
	}

	// Rule 7: nothing matched.
	if typ == ResourceSubmission && action != ActionCreate {
		return VerdictNotFound, nil
	}
	switch action {
	case ActionRead:
		return VerdictNotFound, nil
	case ActionUpdate, ActionDelete:
		if caller.Anonymous() {
			return VerdictNotFound, nil
		}
		return VerdictDeny, nil
	case ActionCreate:
		return VerdictDeny, nil
	default:
		return VerdictNotFound, nil
	}
}
