// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package content

import (
	"context"

	"github.com/inkwellcms/inkwell/internal/access"
	"github.com/inkwellcms/inkwell/internal/label"
)

// Pagination defaults and cap for list and search queries.
const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Filter narrows list queries. Include labels match conjunctively (the
// entity must carry all of them); Exclude labels reject an entity on any
// match. Visibility, when set, pushes the caller's read predicate into
// the query instead of filtering rows after the fact.
type Filter struct {
	Include []string
	Exclude []string

	// CollectionSlug restricts submissions to one collection.
	CollectionSlug string

	Visibility *access.ReadFilter

	Skip  int
	Limit int
}

// Clamp normalizes pagination to sane bounds.
func (f *Filter) Clamp() {
	if f.Skip < 0 {
		f.Skip = 0
	}
	if f.Limit <= 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
}

// PageStore persists pages. Create and Update receive the reconciled
// label rows so the association table can be written in the same
// transaction as the entity.
type PageStore interface {
	Create(ctx context.Context, p *Page, labels []label.Label) error
	Get(ctx context.Context, slug string) (*Page, error)
	List(ctx context.Context, f Filter) ([]*Page, error)
	Update(ctx context.Context, p *Page, labels []label.Label) error
	Delete(ctx context.Context, slug string) (bool, error)
}

// CollectionStore persists collections. Deleting a collection cascades to
// its submissions.
type CollectionStore interface {
	Create(ctx context.Context, c *Collection, labels []label.Label) error
	Get(ctx context.Context, slug string) (*Collection, error)
	List(ctx context.Context, f Filter) ([]*Collection, error)
	Update(ctx context.Context, c *Collection, labels []label.Label) error
	Delete(ctx context.Context, slug string) (bool, error)
}

// SubmissionStore persists submissions.
type SubmissionStore interface {
	Create(ctx context.Context, s *Submission, labels []label.Label) error
	Get(ctx context.Context, id int64) (*Submission, error)
	List(ctx context.Context, f Filter) ([]*Submission, error)
	Update(ctx context.Context, s *Submission, labels []label.Label) error
	Delete(ctx context.Context, id int64) (bool, error)
}

// MediaStore persists media metadata.
type MediaStore interface {
	Create(ctx context.Context, m *Media, labels []label.Label) error
	Get(ctx context.Context, id string) (*Media, error)
	List(ctx context.Context, f Filter) ([]*Media, error)
	Update(ctx context.Context, m *Media, labels []label.Label) error
	Delete(ctx context.Context, id string) (bool, error)
}
