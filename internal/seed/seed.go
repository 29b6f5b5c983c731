// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package seed holds the embedded default documents an empty installation
// starts from: the reserved roles, a pair of starter pages, and the site
// settings. Documents are validated against JSON Schemas reflected from
// the seed types, and a semver-gated manifest keeps old binaries from
// loading seed formats they do not understand.
package seed

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"
)

//go:embed seeds/*.json
var seedFS embed.FS

// compatSeeds is the seed format range this binary accepts.
const compatSeeds = "^1.0"

// Manifest declares the seed bundle's format version.
type Manifest struct {
	Version string `json:"version" jsonschema:"required"`
}

// RoleSeed is one default role definition.
type RoleSeed struct {
	Name        string   `json:"name" jsonschema:"required,minLength=1"`
	Permissions []string `json:"permissions" jsonschema:"required"`
}

// rolesDoc is the shape of seeds/roles.json.
type rolesDoc struct {
	Roles []RoleSeed `json:"roles" jsonschema:"required"`
}

// PageSeed is one default page.
type PageSeed struct {
	Slug   string   `json:"slug" jsonschema:"required,minLength=1"`
	Title  string   `json:"title" jsonschema:"required"`
	Kind   string   `json:"kind,omitempty" jsonschema:"enum=markdown,enum=html"`
	Body   string   `json:"body,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// pagesDoc is the shape of seeds/pages.json.
type pagesDoc struct {
	Pages []PageSeed `json:"pages" jsonschema:"required"`
}

// Bundle is the full set of validated seed documents.
type Bundle struct {
	Manifest Manifest
	Roles    []RoleSeed
	Pages    []PageSeed
	Settings map[string]map[string]any
}

// Load reads, validates, and version-gates the embedded seed bundle.
func Load() (*Bundle, error) {
	var b Bundle

	manifest, err := loadDoc(&Manifest{}, "seeds/manifest.json")
	if err != nil {
		return nil, err
	}
	b.Manifest = *manifest
	if err := checkVersion(b.Manifest.Version); err != nil {
		return nil, err
	}

	roles, err := loadDoc(&rolesDoc{}, "seeds/roles.json")
	if err != nil {
		return nil, err
	}
	b.Roles = roles.Roles

	pages, err := loadDoc(&pagesDoc{}, "seeds/pages.json")
	if err != nil {
		return nil, err
	}
	b.Pages = pages.Pages

	if err := loadSettings(&b); err != nil {
		return nil, err
	}
	return &b, nil
}

// loadDoc reads one embedded document, validates it against the schema
// reflected from model, and unmarshals it into a fresh model value.
func loadDoc[T any](model *T, path string) (*T, error) {
	data, err := seedFS.ReadFile(path)
	if err != nil {
		return nil, oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}
	if err := validateDoc(model, data); err != nil {
		return nil, oops.Code("SEED_INVALID").With("path", path).Wrap(err)
	}

	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, oops.Code("SEED_PARSE_FAILED").With("path", path).Wrap(err)
	}
	return out, nil
}

// loadSettings reads seeds/settings.json: a JSON object whose values are
// themselves objects, one stored document per key.
func loadSettings(b *Bundle) error {
	const path = "seeds/settings.json"
	data, err := seedFS.ReadFile(path)
	if err != nil {
		return oops.Code("SEED_READ_FAILED").With("path", path).Wrap(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return oops.Code("SEED_PARSE_FAILED").With("path", path).Wrap(err)
	}

	b.Settings = make(map[string]map[string]any, len(raw))
	for key, msg := range raw {
		var doc map[string]any
		if err := json.Unmarshal(msg, &doc); err != nil {
			return oops.Code("SEED_INVALID").With("path", path).With("key", key).
				Wrap(fmt.Errorf("settings value must be an object: %w", err))
		}
		b.Settings[key] = doc
	}
	return nil
}

// SchemaNames lists the seed document schemas that can be exported,
// in a stable order.
func SchemaNames() []string {
	return []string{"manifest", "pages", "roles"}
}

// SchemaFor returns the JSON Schema for the named seed document.
func SchemaFor(name string) ([]byte, error) {
	switch name {
	case "manifest":
		return GenerateSchema(&Manifest{})
	case "pages":
		return GenerateSchema(&pagesDoc{})
	case "roles":
		return GenerateSchema(&rolesDoc{})
	}
	return nil, oops.Code("SEED_SCHEMA_UNKNOWN").With("name", name).
		Errorf("unknown seed document %q", name)
}

// checkVersion gates the bundle on the accepted seed format range.
func checkVersion(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code("SEED_VERSION_INVALID").With("version", version).Wrap(err)
	}
	c, err := semver.NewConstraint(compatSeeds)
	if err != nil {
		return oops.Code("SEED_CONSTRAINT_INVALID").With("constraint", compatSeeds).Wrap(err)
	}
	if !c.Check(v) {
		return oops.Code("SEED_VERSION_UNSUPPORTED").
			With("version", version).With("supported", compatSeeds).
			Errorf("seed bundle version %s is outside the supported range %s", version, compatSeeds)
	}
	return nil
}
