// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements content persistence using PostgreSQL. Each
// entity table pairs with an association table linking it to labels; the
// shared helpers here build label-filter SQL and maintain associations.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/oops"

	"github.com/inkwellcms/inkwell/internal/content"
	"github.com/inkwellcms/inkwell/internal/label"
	"github.com/inkwellcms/inkwell/internal/store"
)

// entityTable describes one entity table and its label association.
type entityTable struct {
	table    string // entity table, aliased "e" in list queries
	key      string // entity key column on the entity table
	assoc    string // association table
	assocKey string // entity key column on the association table
}

var (
	pagesTable       = entityTable{table: "pages", key: "slug", assoc: "page_labels", assocKey: "page_slug"}
	collectionsTable = entityTable{table: "collections", key: "slug", assoc: "collection_labels", assocKey: "collection_slug"}
	submissionsTable = entityTable{table: "submissions", key: "id", assoc: "submission_labels", assocKey: "submission_id"}
	mediaTable       = entityTable{table: "media", key: "id", assoc: "media_labels", assocKey: "media_id"}
)

// listQuery builds the filtered list query for an entity table. Exclude
// labels reject on any match; include labels match conjunctively via a
// grouped count over the association table; the visibility filter pushes
// the caller's read predicate into SQL.
func listQuery(t entityTable, columns string, f content.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Exclude) > 0 {
		conds = append(conds, fmt.Sprintf(
			`NOT EXISTS (SELECT 1 FROM %s a JOIN labels l ON l.id = a.label_id WHERE a.%s = e.%s AND l.name = ANY(%s))`,
			t.assoc, t.assocKey, t.key, arg(f.Exclude)))
	}
	if len(f.Include) > 0 {
		conds = append(conds, fmt.Sprintf(
			`e.%s IN (SELECT a.%s FROM %s a JOIN labels l ON l.id = a.label_id WHERE l.name = ANY(%s) GROUP BY a.%s HAVING COUNT(DISTINCT l.name) = %s)`,
			t.key, t.assocKey, t.assoc, arg(f.Include), t.assocKey, arg(len(f.Include))))
	}
	if f.CollectionSlug != "" {
		conds = append(conds, fmt.Sprintf(`e.collection_slug = %s`, arg(f.CollectionSlug)))
	}
	if v := f.Visibility; v != nil && !v.All {
		vis := fmt.Sprintf(
			`EXISTS (SELECT 1 FROM %s a JOIN labels l ON l.id = a.label_id WHERE a.%s = e.%s AND l.name = ANY(%s))`,
			t.assoc, t.assocKey, t.key, arg(v.OpenLabels))
		if v.Author != "" {
			vis = fmt.Sprintf(`(%s OR e.author = %s)`, vis, arg(v.Author))
		}
		conds = append(conds, vis)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s e", columns, t.table)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY e.created_at DESC LIMIT %s OFFSET %s", arg(f.Limit), arg(f.Skip))
	return b.String(), args
}

// labelsFor loads label names for a set of entity keys, keyed by the
// key's text representation. keys must be a typed slice pgx can encode as
// an array ([]string for slug-keyed tables, []int64 for submissions).
func labelsFor(ctx context.Context, q store.Querier, t entityTable, keys any) (map[string][]string, error) {
	sql := fmt.Sprintf(
		`SELECT a.%s::text, l.name FROM %s a JOIN labels l ON l.id = a.label_id WHERE a.%s = ANY($1) ORDER BY l.name`,
		t.assocKey, t.assoc, t.assocKey)
	rows, err := q.Query(ctx, sql, keys)
	if err != nil {
		return nil, oops.Code("LABELS_LOAD_FAILED").With("table", t.assoc).Wrap(err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var key, name string
		if err := rows.Scan(&key, &name); err != nil {
			return nil, oops.Code("LABELS_SCAN_FAILED").With("table", t.assoc).Wrap(err)
		}
		out[key] = append(out[key], name)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("LABELS_ITERATE_FAILED").With("table", t.assoc).Wrap(err)
	}
	return out, nil
}

// replaceLabels rewrites an entity's label associations. Deleting an
// association never deletes the label row; labels outlive the entities
// referencing them.
func replaceLabels(ctx context.Context, q store.Querier, t entityTable, key any, labels []label.Label) error {
	sql := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, t.assoc, t.assocKey)
	if _, err := q.Exec(ctx, sql, key); err != nil {
		return oops.Code("LABELS_CLEAR_FAILED").With("table", t.assoc).Wrap(err)
	}
	return attachLabels(ctx, q, t, key, labels)
}

// attachLabels inserts label associations for an entity.
func attachLabels(ctx context.Context, q store.Querier, t entityTable, key any, labels []label.Label) error {
	sql := fmt.Sprintf(
		`INSERT INTO %s (%s, label_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		t.assoc, t.assocKey)
	for _, l := range labels {
		if _, err := q.Exec(ctx, sql, key, l.ID); err != nil {
			return oops.Code("LABELS_ATTACH_FAILED").
				With("table", t.assoc).With("label", l.Name).Wrap(err)
		}
	}
	return nil
}
