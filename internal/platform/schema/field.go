// Copyright (c) 2026 Openshelf. All rights reserved.

package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openshelf/openshelf/internal/platform/apperr"
)

// FieldType enumerates the value types a field rule can produce.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeDate
	TypeID
)

// dateLayouts are the accepted wire formats for TypeDate fields.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// idRegex matches a 24-character lowercase hexadecimal entity id. Declared
// locally so the rule table stays a leaf (pkg/entityid imports apperr too,
// but the two must not depend on each other).
var idRegex = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Field is a declarative validation rule for a single payload key.
//
// Rules are applied in a fixed order: presence → type coercion → trim →
// length/range → pattern → enumeration. The first failing rule produces the
// field's error; the schema aggregates errors across fields.
type Field struct {
	// Type selects the coercion and which bound checks apply.
	Type FieldType

	// Required fields fail when absent. Absent optional fields receive
	// Default when one is configured, otherwise they stay absent.
	Required bool

	// Default is injected for absent optional fields (create schemas only).
	Default any

	// Trim removes leading/trailing whitespace before length checks.
	Trim bool

	// MinLen/MaxLen bound the Unicode character count of strings (0 = unset).
	MinLen int
	MaxLen int

	// Min/Max bound numeric values (inclusive, nil = unset).
	Min *float64
	Max *float64

	// Pattern must match the full string value; Hint is the client-facing
	// description of the expected format.
	Pattern *regexp.Regexp
	Hint    string

	// Enum is the closed set of allowed string values.
	Enum []string

	// Coerce allows string inputs for numeric/bool fields (query parameters
	// arrive as strings; JSON bodies must use native types).
	Coerce bool

	// NotFuture rejects TypeDate values after the current time.
	NotFuture bool

	// Round, when >0, rounds TypeFloat values to that many fractional digits.
	Round int
}

// apply validates and coerces a single raw value. It returns the coerced
// value, or a [apperr.FieldError] describing the first failing rule.
func (f Field) apply(name string, raw any) (any, *apperr.FieldError) {
	switch f.Type {
	case TypeString:
		return f.applyString(name, raw)
	case TypeID:
		return f.applyID(name, raw)
	case TypeInt:
		return f.applyInt(name, raw)
	case TypeFloat:
		return f.applyFloat(name, raw)
	case TypeBool:
		return f.applyBool(name, raw)
	case TypeDate:
		return f.applyDate(name, raw)
	}
	return nil, fail(name, "Unsupported field type", raw)
}

func (f Field) applyString(name string, raw any) (any, *apperr.FieldError) {
	value, ok := raw.(string)
	if !ok {
		return nil, fail(name, "Must be a string", raw)
	}

	if f.Trim {
		value = strings.TrimSpace(value)
	}

	length := utf8.RuneCountInString(value)
	if f.MinLen > 0 && length < f.MinLen {
		return nil, fail(name, fmt.Sprintf("Minimum %d characters", f.MinLen), value)
	}
	if f.MaxLen > 0 && length > f.MaxLen {
		return nil, fail(name, fmt.Sprintf("Maximum %d characters", f.MaxLen), value)
	}

	if f.Pattern != nil && !f.Pattern.MatchString(value) {
		hint := f.Hint
		if hint == "" {
			hint = "Has an invalid format"
		}
		return nil, fail(name, hint, value)
	}

	if len(f.Enum) > 0 && !contains(f.Enum, value) {
		return nil, fail(name, "Must be one of: "+strings.Join(f.Enum, ", "), value)
	}

	return value, nil
}

func (f Field) applyID(name string, raw any) (any, *apperr.FieldError) {
	value, ok := raw.(string)
	if !ok || !idRegex.MatchString(value) {
		return nil, fail(name, "Must be a 24-character hexadecimal id", raw)
	}
	return value, nil
}

func (f Field) applyInt(name string, raw any) (any, *apperr.FieldError) {
	var (
		value int
		err   error
	)

	switch v := raw.(type) {
	case json.Number:
		value, err = strconv.Atoi(v.String())
	case int:
		value = v
	case float64:
		// Plain json.Unmarshal (without UseNumber) delivers float64.
		if v != math.Trunc(v) {
			return nil, fail(name, "Must be an integer", raw)
		}
		value = int(v)
	case string:
		if !f.Coerce {
			return nil, fail(name, "Must be an integer", raw)
		}
		value, err = strconv.Atoi(strings.TrimSpace(v))
	default:
		return nil, fail(name, "Must be an integer", raw)
	}

	if err != nil {
		return nil, fail(name, "Must be an integer", raw)
	}

	if msg := f.checkBounds(float64(value)); msg != "" {
		return nil, fail(name, msg, value)
	}
	return value, nil
}

func (f Field) applyFloat(name string, raw any) (any, *apperr.FieldError) {
	var (
		value float64
		err   error
	)

	switch v := raw.(type) {
	case json.Number:
		value, err = v.Float64()
	case float64:
		value = v
	case int:
		value = float64(v)
	case string:
		if !f.Coerce {
			return nil, fail(name, "Must be a number", raw)
		}
		value, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return nil, fail(name, "Must be a number", raw)
	}

	if err != nil {
		return nil, fail(name, "Must be a number", raw)
	}

	if msg := f.checkBounds(value); msg != "" {
		return nil, fail(name, msg, value)
	}

	if f.Round > 0 {
		factor := math.Pow10(f.Round)
		value = math.Round(value*factor) / factor
	}
	return value, nil
}

func (f Field) applyBool(name string, raw any) (any, *apperr.FieldError) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		if f.Coerce {
			if parsed, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return parsed, nil
			}
		}
	}
	return nil, fail(name, "Must be a boolean", raw)
}

func (f Field) applyDate(name string, raw any) (any, *apperr.FieldError) {
	value, ok := raw.(string)
	if !ok {
		return nil, fail(name, "Must be a date string (YYYY-MM-DD or RFC 3339)", raw)
	}

	var (
		parsed time.Time
		err    error
	)
	for _, layout := range dateLayouts {
		parsed, err = time.Parse(layout, value)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fail(name, "Must be a date string (YYYY-MM-DD or RFC 3339)", value)
	}

	if f.NotFuture && parsed.After(time.Now()) {
		return nil, fail(name, "Must not be in the future", value)
	}
	return parsed, nil
}

// checkBounds validates a numeric value against Min/Max. It returns an empty
// string when the value is in range.
func (f Field) checkBounds(value float64) string {
	switch {
	case f.Min != nil && f.Max != nil && (value < *f.Min || value > *f.Max):
		return fmt.Sprintf("Must be between %s and %s", formatBound(*f.Min), formatBound(*f.Max))
	case f.Min != nil && value < *f.Min:
		return fmt.Sprintf("Must be at least %s", formatBound(*f.Min))
	case f.Max != nil && value > *f.Max:
		return fmt.Sprintf("Must be at most %s", formatBound(*f.Max))
	}
	return ""
}

// Bound returns a pointer to v for use as a [Field] Min/Max.
func Bound(v float64) *float64 { return &v }

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func contains(set []string, value string) bool {
	for _, item := range set {
		if item == value {
			return true
		}
	}
	return false
}

func fail(field, message string, value any) *apperr.FieldError {
	return &apperr.FieldError{Field: field, Message: message, Value: value}
}
