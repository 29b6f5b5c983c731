// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package seed

import (
	"context"
	"errors"
	"log/slog"

	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/label"
	"github.com/inkwellcms/inkwell/internal/role"
	"github.com/inkwellcms/inkwell/internal/settings"
)

// seedAuthor is recorded as the author of seeded pages.
const seedAuthor = "admin"

// Bootstrapper installs the seed bundle into an installation. Seeding is
// idempotent: a role, page, or settings key that already exists is left
// alone, so operator edits survive repeated runs.
type Bootstrapper struct {
	roles    role.Store
	pages    content.PageStore
	labels   label.Store
	settings settings.Store
	tx       content.Transactor
	logger   *slog.Logger
}

// NewBootstrapper wires a bootstrapper over the stores it seeds.
func NewBootstrapper(
	roles role.Store,
	pages content.PageStore,
	labels label.Store,
	set settings.Store,
	tx content.Transactor,
	logger *slog.Logger,
) *Bootstrapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bootstrapper{
		roles:    roles,
		pages:    pages,
		labels:   labels,
		settings: set,
		tx:       tx,
		logger:   logger,
	}
}

// Bootstrap loads the embedded bundle and installs whatever is missing.
// The whole run executes in one transaction; a partially seeded database
// is never observable.
func (b *Bootstrapper) Bootstrap(ctx context.Context) error {
	bundle, err := Load()
	if err != nil {
		return err
	}

	var seededRoles, seededPages, seededSettings int
	err = b.tx.InTransaction(ctx, func(ctx context.Context) error {
		for _, rs := range bundle.Roles {
			created, err := b.seedRole(ctx, rs)
			if err != nil {
				return err
			}
			if created {
				seededRoles++
			}
		}
		for _, ps := range bundle.Pages {
			created, err := b.seedPage(ctx, ps)
			if err != nil {
				return err
			}
			if created {
				seededPages++
			}
		}
		for key, doc := range bundle.Settings {
			created, err := b.seedSetting(ctx, key, doc)
			if err != nil {
				return err
			}
			if created {
				seededSettings++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.logger.InfoContext(ctx, "bootstrap complete",
		slog.String("bundle_version", bundle.Manifest.Version),
		slog.Int("roles", seededRoles),
		slog.Int("pages", seededPages),
		slog.Int("settings", seededSettings))
	return nil
}

func (b *Bootstrapper) seedRole(ctx context.Context, rs RoleSeed) (bool, error) {
	_, err := b.roles.Get(ctx, rs.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, role.ErrNotFound) {
		return false, err
	}
	if err := b.roles.Upsert(ctx, role.Role{Name: rs.Name, Permissions: rs.Permissions}); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bootstrapper) seedPage(ctx context.Context, ps PageSeed) (bool, error) {
	_, err := b.pages.Get(ctx, ps.Slug)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, content.ErrNotFound) {
		return false, err
	}

	rows, err := b.labels.GetOrCreate(ctx, ps.Labels)
	if err != nil {
		return false, err
	}
	names := make([]string, len(rows))
	for i, l := range rows {
		names[i] = l.Name
	}

	kind := ps.Kind
	if kind == "" {
		kind = content.KindMarkdown
	}
	p := &content.Page{
		Slug:   ps.Slug,
		Title:  ps.Title,
		Kind:   kind,
		Body:   ps.Body,
		Author: seedAuthor,
		Labels: names,
	}
	if err := b.pages.Create(ctx, p, rows); err != nil {
		return false, err
	}
	return true, nil
}

func (b *Bootstrapper) seedSetting(ctx context.Context, key string, doc map[string]any) (bool, error) {
	_, err := b.settings.Get(ctx, key)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, settings.ErrNotFound) {
		return false, err
	}
	if err := b.settings.Put(ctx, key, doc); err != nil {
		return false, err
	}
	return true, nil
}
