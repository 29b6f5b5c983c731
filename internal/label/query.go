// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package label

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

// queryLexer tokenizes a search query into whitespace-separated terms.
// Terms are opaque at the lexer level; exclusion markers and
// canonicalization are applied after parsing.
var queryLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Term", Pattern: `\S+`},
	{Name: "whitespace", Pattern: `\s+`},
})

// queryAST is the raw parse of a search query.
type queryAST struct {
	Terms []string `parser:"@Term*"`
}

// queryParser is the singleton participle parser instance.
var queryParser *participle.Parser[queryAST]

func init() {
	var err error
	queryParser, err = participle.Build[queryAST](participle.Lexer(queryLexer))
	if err != nil {
		panic(fmt.Sprintf("failed to build label query parser: %v", err))
	}
}

// Query is a parsed search expression: entities must carry every Include
// label and none of the Exclude labels. All names are canonical.
type Query struct {
	Include map[string]struct{}
	Exclude map[string]struct{}
}

// Empty returns true when the query constrains nothing.
func (q Query) Empty() bool {
	return len(q.Include) == 0 && len(q.Exclude) == 0
}

// IncludeNames returns the include set as a slice. Order is unspecified.
func (q Query) IncludeNames() []string {
	return setToSlice(q.Include)
}

// ExcludeNames returns the exclude set as a slice. Order is unspecified.
func (q Query) ExcludeNames() []string {
	return setToSlice(q.Exclude)
}

func setToSlice(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	return names
}

// ParseQuery splits a search query into include and exclude label sets.
// A term with a leading '-' followed by at least one character is an
// exclusion; every other term is an inclusion. Terms are canonicalized
// after stripping the marker, and terms that canonicalize to the empty
// string are dropped.
func ParseQuery(q string) (Query, error) {
	parsed := Query{
		Include: make(map[string]struct{}),
		Exclude: make(map[string]struct{}),
	}
	if strings.TrimSpace(q) == "" {
		return parsed, nil
	}

	ast, err := queryParser.ParseString("", q)
	if err != nil {
		return Query{}, oops.Code("LABEL_QUERY_INVALID").With("query", q).Wrap(err)
	}

	for _, term := range ast.Terms {
		if rest, ok := strings.CutPrefix(term, "-"); ok && rest != "" {
			if name := Canonical(rest); name != "" {
				parsed.Exclude[name] = struct{}{}
			}
			continue
		}
		if name := Canonical(term); name != "" {
			parsed.Include[name] = struct{}{}
		}
	}
	return parsed, nil
}
