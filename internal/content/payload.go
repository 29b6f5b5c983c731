// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package content

// Update payloads use pointer fields so a request can supply any subset:
// nil means untouched. Labels follow the replace-wholesale rule: a nil
// slice leaves the label set alone, a non-nil slice (empty included)
// replaces it entirely.
//
// Identifier fields (Slug, CollectionSlug) are accepted in every payload
// and silently dropped: identifiers are immutable after creation and the
// drop is deliberate, not an error.

// PageUpdate is a partial page mutation.
type PageUpdate struct {
	Slug   *string `json:"slug,omitempty"`
	Title  *string `json:"title,omitempty"`
	Kind   *string `json:"type,omitempty"`
	Body   *string `json:"body,omitempty"`
	Custom map[string]any `json:"custom,omitempty"`
	Labels []string       `json:"labels"`
}

// CollectionUpdate is a partial collection mutation.
type CollectionUpdate struct {
	Slug   *string        `json:"slug,omitempty"`
	Name   *string        `json:"name,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
	Labels []string       `json:"labels"`
}

// SubmissionUpdate is a partial submission mutation.
type SubmissionUpdate struct {
	CollectionSlug *string        `json:"collection_slug,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
	Labels         []string       `json:"labels"`
}

// MediaUpdate is a partial media metadata mutation.
type MediaUpdate struct {
	Filename *string  `json:"filename,omitempty"`
	Labels   []string `json:"labels"`
}

func (u PageUpdate) apply(p *Page) {
	// u.Slug intentionally ignored.
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Kind != nil {
		p.Kind = *u.Kind
	}
	if u.Body != nil {
		p.Body = *u.Body
	}
	if u.Custom != nil {
		p.Custom = u.Custom
	}
	if u.Labels != nil {
		p.Labels = u.Labels
	}
}

func (u CollectionUpdate) apply(c *Collection) {
	// u.Slug intentionally ignored.
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Schema != nil {
		c.Schema = u.Schema
	}
	if u.Labels != nil {
		c.Labels = u.Labels
	}
}

func (u SubmissionUpdate) apply(s *Submission) {
	// u.CollectionSlug intentionally ignored.
	if u.Data != nil {
		s.Data = u.Data
	}
	if u.Labels != nil {
		s.Labels = u.Labels
	}
}

func (u MediaUpdate) apply(m *Media) {
	if u.Filename != nil {
		m.Filename = *u.Filename
	}
	if u.Labels != nil {
		m.Labels = u.Labels
	}
}
