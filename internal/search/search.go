// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package search resolves label queries into visible entity lists. A query
// is parsed into include/exclude sets, combined with the caller's read
// predicate, and pushed down into a single storage query; results come back
// newest first.
package search

import (
	"context"
	"log/slog"

	"github.com/inkwellcms/inkwell/internal/access"
	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/label"
)

// Request is one search invocation. Query is the raw label expression
// ("featured -draft"); Collection scopes submission searches to one
// collection. Skip and Limit paginate; Limit is clamped to the store's
// maximum and defaulted when zero.
type Request struct {
	Query      string
	Collection string
	Skip       int
	Limit      int
}

// Engine answers label searches over every entity type.
type Engine struct {
	pages       content.PageStore
	collections content.CollectionStore
	submissions content.SubmissionStore
	media       content.MediaStore
	access      *access.Engine
	logger      *slog.Logger
}

// New wires a search engine over the entity stores and the decision engine.
func New(
	pages content.PageStore,
	collections content.CollectionStore,
	submissions content.SubmissionStore,
	media content.MediaStore,
	engine *access.Engine,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		pages:       pages,
		collections: collections,
		submissions: submissions,
		media:       media,
		access:      engine,
		logger:      logger,
	}
}

// filter combines the parsed query with the caller's read predicate. The
// pushed-down visibility filter mirrors the decision engine's read rules,
// so the result set matches what per-record decisions would keep.
func (e *Engine) filter(ctx context.Context, caller access.Caller, typ access.ResourceType, req Request) (content.Filter, error) {
	q, err := label.ParseQuery(req.Query)
	if err != nil {
		return content.Filter{}, err
	}
	vis, err := e.access.ReadFilterFor(ctx, caller, typ)
	if err != nil {
		return content.Filter{}, err
	}

	f := content.Filter{
		Include:        q.IncludeNames(),
		Exclude:        q.ExcludeNames(),
		CollectionSlug: req.Collection,
		Visibility:     &vis,
		Skip:           req.Skip,
		Limit:          req.Limit,
	}
	f.Clamp()
	e.logger.DebugContext(ctx, "search filter built",
		slog.String("type", string(typ)),
		slog.Int("include", len(f.Include)),
		slog.Int("exclude", len(f.Exclude)),
		slog.Bool("unrestricted", vis.All))
	return f, nil
}

// Pages searches pages visible to the caller.
func (e *Engine) Pages(ctx context.Context, caller access.Caller, req Request) ([]*content.Page, error) {
	f, err := e.filter(ctx, caller, access.ResourcePage, req)
	if err != nil {
		return nil, err
	}
	return e.pages.List(ctx, f)
}

// Collections searches collections visible to the caller.
func (e *Engine) Collections(ctx context.Context, caller access.Caller, req Request) ([]*content.Collection, error) {
	f, err := e.filter(ctx, caller, access.ResourceCollection, req)
	if err != nil {
		return nil, err
	}
	return e.collections.List(ctx, f)
}

// Submissions searches submissions visible to the caller, optionally
// scoped to one collection via Request.Collection.
func (e *Engine) Submissions(ctx context.Context, caller access.Caller, req Request) ([]*content.Submission, error) {
	f, err := e.filter(ctx, caller, access.ResourceSubmission, req)
	if err != nil {
		return nil, err
	}
	return e.submissions.List(ctx, f)
}

// Media searches media records visible to the caller.
func (e *Engine) Media(ctx context.Context, caller access.Caller, req Request) ([]*content.Media, error) {
	f, err := e.filter(ctx, caller, access.ResourceMedia, req)
	if err != nil {
		return nil, err
	}
	return e.media.List(ctx, f)
}
