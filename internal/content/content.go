// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package content defines the content entities (pages, collections,
// submissions, media) and the authorized service operating on them.
// Entity identifiers are immutable after creation; label sets are replaced
// wholesale on update, never merged.
package content

import (
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/access"
)

// Page representations. The representation gates editing through the
// markdown/html capability sub-permissions.
const (
	KindMarkdown = "markdown"
	KindHTML     = "html"
)

// AnonymousAuthor is recorded as the author of submissions created
// without an authenticated caller.
const AnonymousAuthor = "Anon"

// forbiddenSlugs are reserved for routing and can never name a page.
var forbiddenSlugs = map[string]struct{}{
	"admin":  {},
	"api":    {},
	"login":  {},
	"static": {},
	"blog":   {},
}

// slugRegex matches lowercase slugs of letters, digits, hyphens, and
// underscores.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateSlug checks slug shape. When page is true the reserved routing
// slugs are also rejected.
func ValidateSlug(slug string, page bool) error {
	if slug == "" {
		return oops.Code("SLUG_INVALID").Errorf("slug cannot be empty")
	}
	if !slugRegex.MatchString(slug) {
		return oops.Code("SLUG_INVALID").With("slug", slug).
			Errorf("slug must be lowercase letters, digits, hyphens, or underscores")
	}
	if page {
		if _, ok := forbiddenSlugs[slug]; ok {
			return oops.Code("SLUG_FORBIDDEN").With("slug", slug).
				Errorf("slug %q is reserved", slug)
		}
	}
	return nil
}

// Page is a standalone content page in Markdown or raw HTML.
type Page struct {
	Slug      string
	Title     string
	Kind      string
	Body      string
	Author    string
	Custom    map[string]any
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccessResource returns the page's access snapshot.
func (p *Page) AccessResource() *access.Resource {
	res := access.NewResource(access.ResourcePage, p.Author, p.Labels)
	res.PageKind = p.Kind
	return res
}

// Collection is a user-defined structured record type. Its schema is a
// JSON Schema document governing submissions.
type Collection struct {
	Slug      string
	Name      string
	Schema    map[string]any
	Author    string
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccessResource returns the collection's access snapshot.
func (c *Collection) AccessResource() *access.Resource {
	return access.NewResource(access.ResourceCollection, c.Author, c.Labels)
}

// Submission is a record posted into a collection.
type Submission struct {
	ID             int64
	CollectionSlug string
	Author         string
	Data           map[string]any
	Labels         []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AccessResource returns the submission's access snapshot.
func (s *Submission) AccessResource() *access.Resource {
	return access.NewResource(access.ResourceSubmission, s.Author, s.Labels)
}

// Media is an uploaded file's metadata record. Byte storage lives
// elsewhere; this record carries identity, ownership, and labels.
type Media struct {
	ID        string
	Filename  string
	MimeType  string
	SizeBytes int64
	Author    string
	Labels    []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccessResource returns the media record's access snapshot.
func (m *Media) AccessResource() *access.Resource {
	return access.NewResource(access.ResourceMedia, m.Author, m.Labels)
}

// NewMediaID generates a new media identifier.
func NewMediaID() string {
	return ulid.Make().String()
}
