// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package seed

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache holds compiled schemas keyed by document type name.
var schemaCache sync.Map

// GenerateSchema reflects a JSON Schema from a seed document type.
// Undeclared properties are rejected, so typos in seed files fail loudly
// instead of being silently ignored.
func GenerateSchema(model any) ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(model)
	schema.ID = jsonschema.ID(schemaID(model))
	schema.Title = fmt.Sprintf("Inkwell seed document %T", model)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_MARSHAL_FAILED").Wrap(err)
	}
	return data, nil
}

// validateDoc validates raw JSON against the schema reflected from model.
func validateDoc(model any, data []byte) error {
	sch, err := compiledSchema(model)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return oops.Code("SEED_PARSE_FAILED").Wrap(err)
	}
	if err := sch.Validate(doc); err != nil {
		return oops.Code("SEED_SCHEMA_VIOLATION").Wrap(err)
	}
	return nil
}

// compiledSchema returns the cached compiled schema for model's type.
func compiledSchema(model any) (*jschema.Schema, error) {
	key := fmt.Sprintf("%T", model)
	if cached, ok := schemaCache.Load(key); ok {
		return cached.(*jschema.Schema), nil
	}

	schemaBytes, err := GenerateSchema(model)
	if err != nil {
		return nil, err
	}

	var schemaData any
	if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
		return nil, oops.Code("SEED_SCHEMA_PARSE_FAILED").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaData); err != nil {
		return nil, oops.Code("SEED_SCHEMA_RESOURCE_FAILED").Wrap(err)
	}
	sch, err := c.Compile("schema.json")
	if err != nil {
		return nil, oops.Code("SEED_SCHEMA_COMPILE_FAILED").Wrap(err)
	}

	schemaCache.Store(key, sch)
	return sch, nil
}

// schemaID returns the $id embedded in generated schemas.
func schemaID(model any) string {
	name := strings.ToLower(reflect.Indirect(reflect.ValueOf(model)).Type().Name())
	return fmt.Sprintf("https://inkwellcms.dev/schemas/seed-%s.schema.json", name)
}
