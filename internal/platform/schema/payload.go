// Copyright (c) 2026 Openshelf. All rights reserved.

package schema

import "time"

// Payload is a sanitized key-value payload produced by a [Schema].
//
// Keys are present only when the client supplied them (or a default was
// injected), so update paths can distinguish "not provided" from "set to the
// zero value" without pointer-typed structs. The typed accessors assume the
// schema already coerced the value; a missing key yields the zero value.
type Payload map[string]any

// Has reports whether the client supplied key (or a default was injected).
func (p Payload) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// String returns the string value for key, or "" when absent.
func (p Payload) String(key string) string {
	v, _ := p[key].(string)
	return v
}

// Int returns the int value for key, or 0 when absent.
func (p Payload) Int(key string) int {
	v, _ := p[key].(int)
	return v
}

// Float returns the float64 value for key, or 0 when absent.
func (p Payload) Float(key string) float64 {
	v, _ := p[key].(float64)
	return v
}

// Bool returns the bool value for key, or false when absent.
func (p Payload) Bool(key string) bool {
	v, _ := p[key].(bool)
	return v
}

// Time returns the time value for key, or the zero time when absent.
func (p Payload) Time(key string) time.Time {
	v, _ := p[key].(time.Time)
	return v
}

// StringOr returns the string value for key, or fallback when absent.
func (p Payload) StringOr(key, fallback string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return fallback
}

// IntOr returns the int value for key, or fallback when absent.
func (p Payload) IntOr(key string, fallback int) int {
	if v, ok := p[key].(int); ok {
		return v
	}
	return fallback
}
