// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package content

import (
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateCollectionSchema checks a collection's schema document: it must
// be non-empty and compile as JSON Schema.
func ValidateCollectionSchema(schema map[string]any) error {
	if len(schema) == 0 {
		return oops.Code("SCHEMA_EMPTY").Wrapf(ErrValidation, "collection schema cannot be empty")
	}
	if _, err := compileSchema(schema); err != nil {
		return err
	}
	return nil
}

// ValidateSubmissionData validates submission data against the owning
// collection's schema. Every data field must be declared by the schema's
// properties, and the document must pass JSON Schema validation.
func ValidateSubmissionData(schema, data map[string]any) error {
	if props, ok := schema["properties"].(map[string]any); ok {
		for field := range data {
			if _, declared := props[field]; !declared {
				return oops.Code("SUBMISSION_FIELD_UNDECLARED").With("field", field).
					Wrapf(ErrValidation, "field %q is not declared by the collection schema", field)
			}
		}
	}

	compiled, err := compileSchema(schema)
	if err != nil {
		return err
	}
	if err := compiled.Validate(toJSONValue(data)); err != nil {
		return oops.Code("SUBMISSION_INVALID").Wrapf(ErrValidation, "submission does not match schema: %v", err)
	}
	return nil
}

func compileSchema(schema map[string]any) (*jschema.Schema, error) {
	c := jschema.NewCompiler()
	if err := c.AddResource("collection.schema.json", toJSONValue(schema)); err != nil {
		return nil, oops.Code("SCHEMA_INVALID").Wrapf(ErrValidation, "invalid collection schema: %v", err)
	}
	compiled, err := c.Compile("collection.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").Wrapf(ErrValidation, "invalid collection schema: %v", err)
	}
	return compiled, nil
}

// toJSONValue normalizes Go values into the types the schema validator
// expects from encoding/json (map[string]any, []any, float64, ...).
func toJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = toJSONValue(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = toJSONValue(item)
		}
		return result
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float32:
		return float64(val)
	default:
		return val
	}
}
