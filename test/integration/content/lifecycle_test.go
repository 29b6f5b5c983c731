// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

//go:build integration

package content_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/inkwellcms/inkwell/internal/access"
	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/role"
	"github.com/inkwellcms/inkwell/internal/search"
)

const testPassword = "s3cret-passphrase"

var (
	anon   = access.Caller{}
	editor = access.Caller{Username: "alice", Role: "editor"}
	viewer = access.Caller{Username: "bob", Role: "viewer"}
)

func strPtr(s string) *string { return &s }

var _ = Describe("Authorized content lifecycle", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
		resetDatabase(ctx, env.pool)
		Expect(env.bootstrap()).To(Succeed())

		_, err := env.UserSvc.Register(ctx, "alice", testPassword, "editor")
		Expect(err).NotTo(HaveOccurred())
		_, err = env.UserSvc.Register(ctx, "bob", testPassword, "viewer")
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Bootstrap", func() {
		It("installs the reserved roles and starter pages", func() {
			admin, err := env.Roles.Get(ctx, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(admin.Permissions).To(Equal([]string{"*"}))

			home, err := env.Content.GetPage(ctx, anon, "home")
			Expect(err).NotTo(HaveOccurred())
			Expect(home.Labels).To(ContainElement("any:read"))

			site, err := env.Settings.Get(ctx, "site")
			Expect(err).NotTo(HaveOccurred())
			Expect(site["title"]).To(Equal("Inkwell"))
		})

		It("preserves operator edits on a second run", func() {
			Expect(env.Settings.Put(ctx, "site", map[string]any{"title": "Edited"})).To(Succeed())

			Expect(env.bootstrap()).To(Succeed())

			site, err := env.Settings.Get(ctx, "site")
			Expect(err).NotTo(HaveOccurred())
			Expect(site["title"]).To(Equal("Edited"))
		})
	})

	Describe("Roles", func() {
		It("deletes a role still assigned to users and degrades them to no permissions", func() {
			Expect(env.Roles.Upsert(ctx, role.Role{
				Name: "moderator", Permissions: []string{"page:read", "submission:read"},
			})).To(Succeed())
			_, err := env.UserSvc.Register(ctx, "carol", testPassword, "moderator")
			Expect(err).NotTo(HaveOccurred())

			Expect(env.Roles.Delete(ctx, "moderator")).To(Succeed())

			perms, err := env.UserSvc.PermissionsFor(ctx, access.Caller{Username: "carol", Role: "moderator"})
			Expect(err).NotTo(HaveOccurred())
			Expect(perms.Empty()).To(BeTrue())
		})
	})

	Describe("Pages", func() {
		It("lets the author read an open page anonymously after publishing", func() {
			_, err := env.Content.CreatePage(ctx, editor, &content.Page{
				Slug:   "launch",
				Title:  "Launch",
				Kind:   content.KindMarkdown,
				Body:   "# Hello",
				Labels: []string{"Any:Read", "Featured"},
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := env.Content.GetPage(ctx, anon, "launch")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Labels).To(ConsistOf("any:read", "featured"))
			Expect(got.Author).To(Equal("alice"))
		})

		It("hides unlabeled pages from anonymous callers but not from readers", func() {
			_, err := env.Content.CreatePage(ctx, editor, &content.Page{
				Slug: "draft-notes", Title: "Notes", Kind: content.KindMarkdown,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Content.GetPage(ctx, anon, "draft-notes")
			Expect(err).To(MatchError(content.ErrNotFound))

			got, err := env.Content.GetPage(ctx, viewer, "draft-notes")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Slug).To(Equal("draft-notes"))
		})

		It("keeps the slug immutable across updates", func() {
			_, err := env.Content.CreatePage(ctx, editor, &content.Page{
				Slug: "stable", Title: "Before", Kind: content.KindMarkdown,
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := env.Content.UpdatePage(ctx, editor, "stable", content.PageUpdate{
				Slug:  strPtr("renamed"),
				Title: strPtr("After"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Slug).To(Equal("stable"))
			Expect(updated.Title).To(Equal("After"))

			_, err = env.Content.GetPage(ctx, editor, "renamed")
			Expect(err).To(MatchError(content.ErrNotFound))
		})

		It("replaces the label set wholesale on update", func() {
			_, err := env.Content.CreatePage(ctx, editor, &content.Page{
				Slug: "relabel", Title: "R", Kind: content.KindMarkdown,
				Labels: []string{"any:read", "old"},
			})
			Expect(err).NotTo(HaveOccurred())

			updated, err := env.Content.UpdatePage(ctx, editor, "relabel", content.PageUpdate{
				Labels: []string{"new"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Labels).To(ConsistOf("new"))

			// Now unlabeled for reads: invisible to anonymous callers.
			_, err = env.Content.GetPage(ctx, anon, "relabel")
			Expect(err).To(MatchError(content.ErrNotFound))
		})

		It("rejects reserved routing slugs", func() {
			_, err := env.Content.CreatePage(ctx, editor, &content.Page{
				Slug: "admin", Title: "Nope", Kind: content.KindMarkdown,
			})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Submissions", func() {
		schema := map[string]any{
			"type": "object",
			"properties": map[string]any{
				"name":  map[string]any{"type": "string"},
				"email": map[string]any{"type": "string"},
			},
			"required": []any{"name"},
		}

		BeforeEach(func() {
			_, err := env.Content.CreateCollection(ctx, editor, &content.Collection{
				Slug:   "contact",
				Name:   "Contact form",
				Schema: schema,
				Labels: []string{"any:create", "any:read"},
			})
			Expect(err).NotTo(HaveOccurred())
		})

		It("accepts anonymous submissions on open collections", func() {
			sub, err := env.Content.CreateSubmission(ctx, anon, "contact",
				map[string]any{"name": "Visitor"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(sub.Author).To(Equal(content.AnonymousAuthor))
			Expect(sub.ID).To(BeNumerically(">", 0))
		})

		It("rejects undeclared fields", func() {
			_, err := env.Content.CreateSubmission(ctx, anon, "contact",
				map[string]any{"name": "V", "phone": "555"}, nil)
			Expect(err).To(MatchError(content.ErrValidation))
		})

		It("rejects documents missing required fields", func() {
			_, err := env.Content.CreateSubmission(ctx, anon, "contact",
				map[string]any{"email": "v@example.com"}, nil)
			Expect(err).To(MatchError(content.ErrValidation))
		})

		It("reads unauthorized access by id as not found", func() {
			sub, err := env.Content.CreateSubmission(ctx, anon, "contact",
				map[string]any{"name": "Visitor"}, nil)
			Expect(err).NotTo(HaveOccurred())

			// The record carries no labels, so even its id is invisible
			// to anonymous callers.
			_, err = env.Content.GetSubmission(ctx, anon, sub.ID)
			Expect(err).To(MatchError(content.ErrNotFound))
			_, err = env.Content.UpdateSubmission(ctx, anon, sub.ID, content.SubmissionUpdate{})
			Expect(err).To(MatchError(content.ErrNotFound))
			Expect(env.Content.DeleteSubmission(ctx, anon, sub.ID)).To(MatchError(content.ErrNotFound))

			// A caller with submission:read sees it.
			got, err := env.Content.GetSubmission(ctx, viewer, sub.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Data["name"]).To(Equal("Visitor"))
		})

		It("re-validates the full record on update", func() {
			sub, err := env.Content.CreateSubmission(ctx, editor, "contact",
				map[string]any{"name": "Alice"}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = env.Content.UpdateSubmission(ctx, editor, sub.ID, content.SubmissionUpdate{
				Data: map[string]any{"phone": "555"},
			})
			Expect(err).To(MatchError(content.ErrValidation))
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			for _, p := range []*content.Page{
				{Slug: "news-open", Title: "N1", Kind: content.KindMarkdown, Labels: []string{"any:read", "news"}},
				{Slug: "news-private", Title: "N2", Kind: content.KindMarkdown, Labels: []string{"news"}},
				{Slug: "promo", Title: "P", Kind: content.KindMarkdown, Labels: []string{"any:read", "featured"}},
			} {
				_, err := env.Content.CreatePage(ctx, editor, p)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("restricts anonymous results to open records", func() {
			pages, err := env.Search.Pages(ctx, anon, search.Request{Query: "news"})
			Expect(err).NotTo(HaveOccurred())
			Expect(slugsOf(pages)).To(ConsistOf("news-open"))
		})

		It("lifts the visibility restriction for readers", func() {
			pages, err := env.Search.Pages(ctx, viewer, search.Request{Query: "news"})
			Expect(err).NotTo(HaveOccurred())
			Expect(slugsOf(pages)).To(ConsistOf("news-open", "news-private"))
		})

		It("excludes labels prefixed with a minus", func() {
			pages, err := env.Search.Pages(ctx, anon, search.Request{Query: "-news"})
			Expect(err).NotTo(HaveOccurred())
			Expect(slugsOf(pages)).To(ConsistOf("promo", "home", "about"))
		})

		It("matches per-record decisions exactly", func() {
			all, err := env.Pages.List(ctx, content.Filter{Limit: 100})
			Expect(err).NotTo(HaveOccurred())

			searched, err := env.Search.Pages(ctx, anon, search.Request{})
			Expect(err).NotTo(HaveOccurred())

			var visible []string
			for _, p := range all {
				verdict, err := env.Engine.Decide(ctx, anon, access.ActionRead, access.ResourcePage, p.AccessResource())
				Expect(err).NotTo(HaveOccurred())
				if verdict == access.VerdictAllow {
					visible = append(visible, p.Slug)
				}
			}
			Expect(slugsOf(searched)).To(ConsistOf(visible))
		})
	})
})

func slugsOf(pages []*content.Page) []string {
	slugs := make([]string, len(pages))
	for i, p := range pages {
		slugs[i] = p.Slug
	}
	return slugs
}
