// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwellcms/inkwell/internal/access"
)

type testEntity struct {
	slug string
	res  *access.Resource
}

func (e testEntity) AccessResource() *access.Resource { return e.res }

func TestProject(t *testing.T) {
	engine := newEngine(t, map[string][]string{
		"viewer1": {"page:read"},
	})

	items := []testEntity{
		{slug: "public", res: access.NewResource(access.ResourcePage, "", []string{"any:read"})},
		{slug: "private", res: access.NewResource(access.ResourcePage, "", []string{"admin:read"})},
		{slug: "owned", res: access.NewResource(access.ResourceMedia, "viewer1", nil)},
		{slug: "other-media", res: access.NewResource(access.ResourceMedia, "someone", nil)},
	}

	t.Run("anonymous sees only open entities", func(t *testing.T) {
		visible, err := access.Project(context.Background(), engine, access.Caller{}, items)
		require.NoError(t, err)
		require.Len(t, visible, 1)
		assert.Equal(t, "public", visible[0].slug)
	})

	t.Run("permission and ownership both project", func(t *testing.T) {
		caller := access.Caller{Username: "viewer1", Role: "viewer"}
		visible, err := access.Project(context.Background(), engine, caller, items)
		require.NoError(t, err)
		slugs := make([]string, 0, len(visible))
		for _, e := range visible {
			slugs = append(slugs, e.slug)
		}
		assert.Equal(t, []string{"public", "private", "owned"}, slugs)
	})

	t.Run("empty input stays empty", func(t *testing.T) {
		visible, err := access.Project(context.Background(), engine, access.Caller{}, []testEntity{})
		require.NoError(t, err)
		assert.Empty(t, visible)
	})
}

// matchesFilter evaluates a ReadFilter in memory the way a repository
// evaluates it in SQL.
func matchesFilter(f access.ReadFilter, res *access.Resource) bool {
	if f.All {
		return true
	}
	for _, l := range f.OpenLabels {
		if res.HasLabel(l) {
			return true
		}
	}
	return f.Author != "" && res.Author == f.Author
}

func TestReadFilterForMatchesDecide(t *testing.T) {
	engine := newEngine(t, map[string][]string{
		"admin1":  {"*"},
		"reader1": {"page:read"},
		"plain1":  {"media:create"},
	})
	ctx := context.Background()

	resources := []*access.Resource{
		access.NewResource(access.ResourcePage, "", []string{"any:read"}),
		access.NewResource(access.ResourcePage, "", []string{"viewer:read"}),
		access.NewResource(access.ResourcePage, "plain1", nil),
		access.NewResource(access.ResourcePage, "someone", []string{"sys:public"}),
		access.NewResource(access.ResourcePage, "", nil),
	}
	callers := []access.Caller{
		{},
		{Username: "admin1", Role: "admin"},
		{Username: "reader1", Role: "editor"},
		{Username: "plain1", Role: "viewer"},
	}

	for _, caller := range callers {
		filter, err := engine.ReadFilterFor(ctx, caller, access.ResourcePage)
		require.NoError(t, err)

		for i, res := range resources {
			verdict, err := engine.Decide(ctx, caller, access.ActionRead, access.ResourcePage, res)
			require.NoError(t, err)
			assert.Equal(t, verdict.Allowed(), matchesFilter(filter, res),
				"caller=%q resource=%d", caller.Username, i)
		}
	}
}
