package category

import (
	"regexp"

	"github.com/openshelf/openshelf/internal/platform/schema"
	"github.com/openshelf/openshelf/pkg/pagination"
)

// hexColorRegex matches a 3- or 6-digit hexadecimal color token.
var hexColorRegex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CreateSchema validates category creation payloads.
var CreateSchema = schema.New("category-create", map[string]schema.Field{
	FieldName: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   2,
		MaxLen:   50,
	},
	FieldDescription: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   10,
		MaxLen:   200,
	},
	FieldColor: {
		Type:    schema.TypeString,
		Pattern: hexColorRegex,
		Hint:    "Must be a hex color token like #1a2b3c or #fff",
		Default: DefaultColor,
	},
	FieldIsActive: {
		Type:    schema.TypeBool,
		Default: true,
	},
})

// UpdateSchema is the create schema with every field optional; partial
// updates only touch the keys the client supplied.
var UpdateSchema = CreateSchema.Optional("category-update")

// ListQuerySchema validates the category list query string. Out-of-range
// page/limit values are rejected, not clamped.
var ListQuerySchema = schema.New("category-list-query", map[string]schema.Field{
	"page": {
		Type:    schema.TypeInt,
		Coerce:  true,
		Min:     schema.Bound(1),
		Default: pagination.DefaultPage,
	},
	"limit": {
		Type:    schema.TypeInt,
		Coerce:  true,
		Min:     schema.Bound(1),
		Max:     schema.Bound(pagination.MaxLimit),
		Default: pagination.DefaultLimit,
	},
	"search": {
		Type:   schema.TypeString,
		Trim:   true,
		MaxLen: 100,
	},
	FieldIsActive: {
		Type:   schema.TypeBool,
		Coerce: true,
	},
	"sort": {
		Type: schema.TypeString,
		Enum: []string{"name", "-name", "createdAt", "-createdAt"},
	},
})
