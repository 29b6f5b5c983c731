// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package access implements the Content Authorization & Access Core: the
// uniform decision mechanism every Inkwell operation consults before
// touching a content entity.
//
// A decision combines four inputs: the caller's role, that role's
// permission list, per-entity ACL labels ("any:read", "{role}:update"),
// and entity ownership. The engine returns one of three verdicts; the
// NotFound-vs-Deny split is deliberate so that private slugs and ids stay
// unenumerable for callers not permitted to learn of them.
package access

import "fmt"

// Action is the verb a decision is rendered on.
type Action string

// Actions the engine decides on.
const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ResourceType identifies the kind of entity under decision.
type ResourceType string

// ResourceType constants cover every entity kind Inkwell authorizes.
const (
	ResourcePage       ResourceType = "page"
	ResourceCollection ResourceType = "collection"
	ResourceSubmission ResourceType = "submission"
	ResourceForm       ResourceType = "form"
	ResourceMedia      ResourceType = "media"
	ResourceRole       ResourceType = "role"
	ResourceUser       ResourceType = "user"
)

// Verdict is the decision engine's return value.
type Verdict int

// Verdict constants define the three possible outcomes.
const (
	// VerdictNotFound hides the entity's existence from the caller.
	VerdictNotFound Verdict = iota // not_found
	// VerdictDeny tells a recognised caller the operation is forbidden.
	VerdictDeny // deny
	// VerdictAllow lets the operation proceed.
	VerdictAllow // allow
)

var verdictStrings = [...]string{
	"not_found",
	"deny",
	"allow",
}

func (v Verdict) String() string {
	if v >= 0 && int(v) < len(verdictStrings) {
		return verdictStrings[v]
	}
	return fmt.Sprintf("unknown(%d)", int(v))
}

// Allowed returns whether the verdict grants access.
func (v Verdict) Allowed() bool {
	return v == VerdictAllow
}

// Caller is the identity a decision is rendered for. The zero value is the
// anonymous caller. Disabled users must be mapped to anonymous before they
// reach the engine; authentication owns that mapping.
type Caller struct {
	Username string
	Role     string
}

// Anonymous reports whether the caller carries no authenticated identity.
func (c Caller) Anonymous() bool {
	return c.Username == ""
}

// Resource is the entity snapshot a decision is rendered on. For create
// decisions the snapshot carries only Type (and PageKind for pages); there
// is no entity yet.
type Resource struct {
	Type ResourceType

	// Author is the username that owns the entity; empty when unowned.
	Author string

	// Labels is the entity's canonical label set.
	Labels map[string]struct{}

	// PageKind is the page representation ("markdown" or "html") and is
	// set only for page resources. It drives the sub-capability check.
	PageKind string
}

// HasLabel reports whether the resource carries the given canonical label.
func (r *Resource) HasLabel(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.Labels[name]
	return ok
}

// NewResource builds a Resource snapshot with the given labels.
func NewResource(typ ResourceType, author string, labels []string) *Resource {
	set := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		set[l] = struct{}{}
	}
	return &Resource{Type: typ, Author: author, Labels: set}
}
