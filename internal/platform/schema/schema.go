// Copyright (c) 2026 Openshelf. All rights reserved.

/*
Package schema implements declarative request-shape validation.

Every inbound write payload and list query is checked against a named
[Schema] — a set of per-field rules (type, trim, length, range, pattern,
enumeration, default) for one entity and operation (e.g. book-create,
category-update). A schema application:

  - applies every field rule and collects ALL failures, not just the first;
  - injects configured defaults for absent optional fields;
  - strips any key not declared in the schema, so extraneous input can never
    reach business logic or the store;
  - returns a sanitized, type-coerced [Payload] on success.

# Architecture

This package sits between the HTTP boundary and the services: handlers decode
raw JSON (or query strings) into a map, the schema sanitizes it, and services
only ever see validated payloads. Cross-field and cross-entity rules (ISBN
uniqueness, category references, stock coherence) stay in the services — a
schema looks at one field at a time.
*/
package schema

import (
	"encoding/json"
	"io"
	"net/url"
	"sort"

	"github.com/openshelf/openshelf/internal/platform/apperr"
)

// Schema is a named set of field rules for one entity-and-operation.
type Schema struct {
	name   string
	fields map[string]Field
}

// New constructs a [Schema]. The name appears in validation error messages
// for log correlation, not in client-facing output.
func New(name string, fields map[string]Field) *Schema {
	return &Schema{name: name, fields: fields}
}

// Name returns the schema's identifier (e.g. "book-create").
func (s *Schema) Name() string { return s.name }

// Optional returns a copy of the schema with every field optional and no
// defaults. Update schemas are derived from their create schema this way so
// the two can never drift apart.
func (s *Schema) Optional(name string) *Schema {
	fields := make(map[string]Field, len(s.fields))
	for key, field := range s.fields {
		field.Required = false
		field.Default = nil
		fields[key] = field
	}
	return New(name, fields)
}

// Apply validates raw input against the schema.
//
// On success it returns the sanitized payload: coerced values for every
// declared key that was present, plus injected defaults. On failure it
// returns a VALIDATION_ERROR [apperr.AppError] carrying one entry per
// failing field.
func (s *Schema) Apply(raw map[string]any) (Payload, error) {
	payload := make(Payload, len(s.fields))
	var failures []apperr.FieldError

	// Deterministic field order keeps error lists stable across requests.
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field := s.fields[name]
		value, present := raw[name]

		// Presence handling: JSON null counts as absent.
		if !present || value == nil {
			if field.Required {
				failures = append(failures, apperr.FieldError{Field: name, Message: "This field is required"})
				continue
			}
			if field.Default != nil {
				payload[name] = field.Default
			}
			continue
		}

		coerced, failure := field.apply(name, value)
		if failure != nil {
			failures = append(failures, *failure)
			continue
		}
		payload[name] = coerced
	}

	// Keys absent from s.fields are dropped here: payload only ever holds
	// declared fields, so unknown input is stripped rather than passed through.

	if len(failures) > 0 {
		return nil, apperr.ValidationError("Validation failed", failures...)
	}
	return payload, nil
}

// ApplyJSON decodes a JSON object from r and validates it against the schema.
//
// Numbers are decoded with [json.Decoder.UseNumber] so integer fields can
// distinguish 3 from 3.5.
func (s *Schema) ApplyJSON(r io.Reader) (Payload, error) {
	decoder := json.NewDecoder(r)
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return nil, apperr.ValidationError("Invalid JSON payload")
	}
	return s.Apply(raw)
}

// ApplyValues validates URL query parameters against the schema. Only the
// first value of each key is considered; empty values count as absent.
func (s *Schema) ApplyValues(values url.Values) (Payload, error) {
	raw := make(map[string]any, len(values))
	for key := range values {
		if v := values.Get(key); v != "" {
			raw[key] = v
		}
	}
	return s.Apply(raw)
}
