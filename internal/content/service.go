// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package content

import (
	"context"
	"log/slog"

	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/access"
	"github.com/inkwellcms/inkwell/internal/label"
)

// Transactor runs a function inside a storage transaction.
// *store.Transactor is the production implementation.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service is the authorized entry point for every content operation. Each
// method resolves the target entity, asks the decision engine for a
// verdict, and only then touches storage. Mutations run inside a single
// transaction so a failed label reconciliation leaves no partial write.
type Service struct {
	pages       PageStore
	collections CollectionStore
	submissions SubmissionStore
	media       MediaStore
	labels      label.Store
	engine      *access.Engine
	tx          Transactor
	logger      *slog.Logger
}

// NewService wires the content service.
func NewService(
	pages PageStore,
	collections CollectionStore,
	submissions SubmissionStore,
	media MediaStore,
	labels label.Store,
	engine *access.Engine,
	tx Transactor,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		pages:       pages,
		collections: collections,
		submissions: submissions,
		media:       media,
		labels:      labels,
		engine:      engine,
		tx:          tx,
		logger:      logger,
	}
}

// verdictErr maps a non-allowing verdict onto the service's sentinel
// errors.
func verdictErr(v access.Verdict) error {
	switch v {
	case access.VerdictAllow:
		return nil
	case access.VerdictDeny:
		return ErrForbidden
	default:
		return ErrNotFound
	}
}

func (s *Service) decide(ctx context.Context, caller access.Caller, action access.Action, typ access.ResourceType, res *access.Resource) error {
	verdict, err := s.engine.Decide(ctx, caller, action, typ, res)
	if err != nil {
		return err
	}
	return verdictErr(verdict)
}

// reconcile resolves raw label strings into rows and canonical names.
func (s *Service) reconcile(ctx context.Context, raw []string) ([]label.Label, []string, error) {
	rows, err := s.labels.GetOrCreate(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	names := make([]string, len(rows))
	for i, l := range rows {
		names[i] = l.Name
	}
	return rows, names, nil
}

func validateKind(kind string) error {
	if kind != KindMarkdown && kind != KindHTML {
		return oops.Code("PAGE_KIND_INVALID").With("kind", kind).
			Wrapf(ErrValidation, "page type must be %q or %q", KindMarkdown, KindHTML)
	}
	return nil
}

// --- Pages ---

// CreatePage creates a page authored by the caller.
func (s *Service) CreatePage(ctx context.Context, caller access.Caller, p *Page) (*Page, error) {
	if err := ValidateSlug(p.Slug, true); err != nil {
		return nil, err
	}
	if p.Kind == "" {
		p.Kind = KindMarkdown
	}
	if err := validateKind(p.Kind); err != nil {
		return nil, err
	}

	res := &access.Resource{Type: access.ResourcePage, PageKind: p.Kind}
	if err := s.decide(ctx, caller, access.ActionCreate, access.ResourcePage, res); err != nil {
		return nil, err
	}

	p.Author = caller.Username
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		rows, names, err := s.reconcile(ctx, p.Labels)
		if err != nil {
			return err
		}
		p.Labels = names
		return s.pages.Create(ctx, p, rows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "page created",
		slog.String("slug", p.Slug),
		slog.String("author", p.Author))
	return p, nil
}

// GetPage returns the page if the caller may read it.
func (s *Service) GetPage(ctx context.Context, caller access.Caller, slug string) (*Page, error) {
	p, err := s.pages.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, caller, access.ActionRead, access.ResourcePage, p.AccessResource()); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPages lists the pages visible to the caller, filtered by f.
func (s *Service) ListPages(ctx context.Context, caller access.Caller, f Filter) ([]*Page, error) {
	f.Clamp()
	pages, err := s.pages.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return access.Project(ctx, s.engine, caller, pages)
}

// UpdatePage applies a partial update to a page. The slug in the payload,
// if any, is dropped. Changing the representation requires the capability
// for the new representation as well as the current one.
func (s *Service) UpdatePage(ctx context.Context, caller access.Caller, slug string, upd PageUpdate) (*Page, error) {
	var updated *Page
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		p, err := s.pages.Get(ctx, slug)
		if err != nil {
			return err
		}
		if err := s.decide(ctx, caller, access.ActionUpdate, access.ResourcePage, p.AccessResource()); err != nil {
			return err
		}

		if upd.Kind != nil && *upd.Kind != p.Kind {
			if err := validateKind(*upd.Kind); err != nil {
				return err
			}
			next := p.AccessResource()
			next.PageKind = *upd.Kind
			if err := s.decide(ctx, caller, access.ActionUpdate, access.ResourcePage, next); err != nil {
				return err
			}
		}

		upd.apply(p)

		var rows []label.Label
		if upd.Labels != nil {
			var names []string
			if rows, names, err = s.reconcile(ctx, upd.Labels); err != nil {
				return err
			}
			if rows == nil {
				rows = []label.Label{}
			}
			p.Labels = names
		}
		if err := s.pages.Update(ctx, p, rows); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "page updated", slog.String("slug", slug))
	return updated, nil
}

// DeletePage deletes a page if the caller may.
func (s *Service) DeletePage(ctx context.Context, caller access.Caller, slug string) error {
	p, err := s.pages.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, caller, access.ActionDelete, access.ResourcePage, p.AccessResource()); err != nil {
		return err
	}
	deleted, err := s.pages.Delete(ctx, slug)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "page deleted", slog.String("slug", slug))
	return nil
}

// --- Collections ---

// CreateCollection creates a collection authored by the caller.
func (s *Service) CreateCollection(ctx context.Context, caller access.Caller, c *Collection) (*Collection, error) {
	if err := ValidateSlug(c.Slug, false); err != nil {
		return nil, err
	}
	if err := ValidateCollectionSchema(c.Schema); err != nil {
		return nil, err
	}

	res := &access.Resource{Type: access.ResourceCollection}
	if err := s.decide(ctx, caller, access.ActionCreate, access.ResourceCollection, res); err != nil {
		return nil, err
	}

	c.Author = caller.Username
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		rows, names, err := s.reconcile(ctx, c.Labels)
		if err != nil {
			return err
		}
		c.Labels = names
		return s.collections.Create(ctx, c, rows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collection created",
		slog.String("slug", c.Slug),
		slog.String("author", c.Author))
	return c, nil
}

// GetCollection returns the collection if the caller may read it.
func (s *Service) GetCollection(ctx context.Context, caller access.Caller, slug string) (*Collection, error) {
	c, err := s.collections.Get(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, caller, access.ActionRead, access.ResourceCollection, c.AccessResource()); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCollections lists the collections visible to the caller.
func (s *Service) ListCollections(ctx context.Context, caller access.Caller, f Filter) ([]*Collection, error) {
	f.Clamp()
	collections, err := s.collections.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return access.Project(ctx, s.engine, caller, collections)
}

// UpdateCollection applies a partial update to a collection. The slug in
// the payload, if any, is dropped.
func (s *Service) UpdateCollection(ctx context.Context, caller access.Caller, slug string, upd CollectionUpdate) (*Collection, error) {
	if upd.Schema != nil {
		if err := ValidateCollectionSchema(upd.Schema); err != nil {
			return nil, err
		}
	}

	var updated *Collection
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		c, err := s.collections.Get(ctx, slug)
		if err != nil {
			return err
		}
		if err := s.decide(ctx, caller, access.ActionUpdate, access.ResourceCollection, c.AccessResource()); err != nil {
			return err
		}

		upd.apply(c)

		var rows []label.Label
		if upd.Labels != nil {
			var names []string
			if rows, names, err = s.reconcile(ctx, upd.Labels); err != nil {
				return err
			}
			if rows == nil {
				rows = []label.Label{}
			}
			c.Labels = names
		}
		if err := s.collections.Update(ctx, c, rows); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "collection updated", slog.String("slug", slug))
	return updated, nil
}

// DeleteCollection deletes a collection and, by cascade, its submissions.
func (s *Service) DeleteCollection(ctx context.Context, caller access.Caller, slug string) error {
	c, err := s.collections.Get(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, caller, access.ActionDelete, access.ResourceCollection, c.AccessResource()); err != nil {
		return err
	}
	deleted, err := s.collections.Delete(ctx, slug)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "collection deleted", slog.String("slug", slug))
	return nil
}

// --- Submissions ---

// CreateSubmission posts a record into a collection. The create decision
// is rendered against the collection's labels, so a collection labelled
// any:create accepts anonymous submissions; those are stored with the
// anonymous author name.
func (s *Service) CreateSubmission(ctx context.Context, caller access.Caller, collectionSlug string, data map[string]any, labels []string) (*Submission, error) {
	c, err := s.collections.Get(ctx, collectionSlug)
	if err != nil {
		return nil, err
	}

	res := access.NewResource(access.ResourceSubmission, "", c.Labels)
	if err := s.decide(ctx, caller, access.ActionCreate, access.ResourceSubmission, res); err != nil {
		return nil, err
	}

	if err := ValidateSubmissionData(c.Schema, data); err != nil {
		return nil, err
	}

	author := caller.Username
	if caller.Anonymous() {
		author = AnonymousAuthor
	}

	sub := &Submission{
		CollectionSlug: c.Slug,
		Author:         author,
		Data:           data,
	}
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		rows, names, err := s.reconcile(ctx, labels)
		if err != nil {
			return err
		}
		sub.Labels = names
		return s.submissions.Create(ctx, sub, rows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "submission created",
		slog.String("collection", c.Slug),
		slog.Int64("id", sub.ID))
	return sub, nil
}

// GetSubmission returns the submission if the caller may read it.
// Unauthorized access reads as not-found regardless of authentication.
func (s *Service) GetSubmission(ctx context.Context, caller access.Caller, id int64) (*Submission, error) {
	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, caller, access.ActionRead, access.ResourceSubmission, sub.AccessResource()); err != nil {
		return nil, err
	}
	return sub, nil
}

// ListSubmissions lists the submissions visible to the caller.
func (s *Service) ListSubmissions(ctx context.Context, caller access.Caller, f Filter) ([]*Submission, error) {
	f.Clamp()
	subs, err := s.submissions.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return access.Project(ctx, s.engine, caller, subs)
}

// UpdateSubmission applies a partial update to a submission. The full
// post-update record is re-validated against the owning collection's
// schema. The collection slug in the payload, if any, is dropped.
func (s *Service) UpdateSubmission(ctx context.Context, caller access.Caller, id int64, upd SubmissionUpdate) (*Submission, error) {
	var updated *Submission
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		sub, err := s.submissions.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.decide(ctx, caller, access.ActionUpdate, access.ResourceSubmission, sub.AccessResource()); err != nil {
			return err
		}

		upd.apply(sub)

		c, err := s.collections.Get(ctx, sub.CollectionSlug)
		if err != nil {
			return err
		}
		if err := ValidateSubmissionData(c.Schema, sub.Data); err != nil {
			return err
		}

		var rows []label.Label
		if upd.Labels != nil {
			var names []string
			if rows, names, err = s.reconcile(ctx, upd.Labels); err != nil {
				return err
			}
			if rows == nil {
				rows = []label.Label{}
			}
			sub.Labels = names
		}
		if err := s.submissions.Update(ctx, sub, rows); err != nil {
			return err
		}
		updated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "submission updated", slog.Int64("id", id))
	return updated, nil
}

// DeleteSubmission deletes a submission if the caller may.
func (s *Service) DeleteSubmission(ctx context.Context, caller access.Caller, id int64) error {
	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, caller, access.ActionDelete, access.ResourceSubmission, sub.AccessResource()); err != nil {
		return err
	}
	deleted, err := s.submissions.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "submission deleted", slog.Int64("id", id))
	return nil
}

// --- Media ---

// CreateMedia records uploaded media metadata authored by the caller.
func (s *Service) CreateMedia(ctx context.Context, caller access.Caller, m *Media) (*Media, error) {
	if m.Filename == "" {
		return nil, oops.Code("MEDIA_FILENAME_EMPTY").
			Wrapf(ErrValidation, "media filename cannot be empty")
	}

	res := &access.Resource{Type: access.ResourceMedia}
	if err := s.decide(ctx, caller, access.ActionCreate, access.ResourceMedia, res); err != nil {
		return nil, err
	}

	if m.ID == "" {
		m.ID = NewMediaID()
	}
	m.Author = caller.Username
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		rows, names, err := s.reconcile(ctx, m.Labels)
		if err != nil {
			return err
		}
		m.Labels = names
		return s.media.Create(ctx, m, rows)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "media created",
		slog.String("id", m.ID),
		slog.String("filename", m.Filename))
	return m, nil
}

// GetMedia returns the media record if the caller may read it.
func (s *Service) GetMedia(ctx context.Context, caller access.Caller, id string) (*Media, error) {
	m, err := s.media.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.decide(ctx, caller, access.ActionRead, access.ResourceMedia, m.AccessResource()); err != nil {
		return nil, err
	}
	return m, nil
}

// ListMedia lists the media records visible to the caller.
func (s *Service) ListMedia(ctx context.Context, caller access.Caller, f Filter) ([]*Media, error) {
	f.Clamp()
	items, err := s.media.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return access.Project(ctx, s.engine, caller, items)
}

// UpdateMedia applies a partial metadata update to a media record.
func (s *Service) UpdateMedia(ctx context.Context, caller access.Caller, id string, upd MediaUpdate) (*Media, error) {
	var updated *Media
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		m, err := s.media.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := s.decide(ctx, caller, access.ActionUpdate, access.ResourceMedia, m.AccessResource()); err != nil {
			return err
		}

		upd.apply(m)

		var rows []label.Label
		if upd.Labels != nil {
			var names []string
			if rows, names, err = s.reconcile(ctx, upd.Labels); err != nil {
				return err
			}
			if rows == nil {
				rows = []label.Label{}
			}
			m.Labels = names
		}
		if err := s.media.Update(ctx, m, rows); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "media updated", slog.String("id", id))
	return updated, nil
}

// DeleteMedia deletes a media record if the caller may.
func (s *Service) DeleteMedia(ctx context.Context, caller access.Caller, id string) error {
	m, err := s.media.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.decide(ctx, caller, access.ActionDelete, access.ResourceMedia, m.AccessResource()); err != nil {
		return err
	}
	deleted, err := s.media.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.logger.InfoContext(ctx, "media deleted", slog.String("id", id))
	return nil
}
