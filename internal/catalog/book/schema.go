package book

import (
	"regexp"

	"github.com/openshelf/openshelf/internal/platform/schema"
	"github.com/openshelf/openshelf/pkg/pagination"
)

var (
	// isbnRegex matches an ISBN-10 (nine digits plus a digit or X check
	// character) or a bare 13-digit ISBN-13. Hyphenated forms are not
	// accepted; clients normalize before submitting.
	isbnRegex = regexp.MustCompile(`^(?:\d{9}[\dXx]|\d{13})$`)

	// coverImageRegex matches an http(s) URL ending in a known image extension.
	coverImageRegex = regexp.MustCompile(`(?i)^https?://\S+\.(?:jpg|jpeg|png|gif|webp)$`)
)

// CreateSchema validates book creation payloads. Stock and status carry no
// defaults here: the service needs to distinguish "client said available"
// from "nothing said", so it injects their defaults itself.
var CreateSchema = schema.New("book-create", map[string]schema.Field{
	FieldTitle: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   1,
		MaxLen:   200,
	},
	FieldAuthor: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   1,
		MaxLen:   100,
	},
	FieldISBN: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		Pattern:  isbnRegex,
		Hint:     "Must be a valid ISBN-10 or ISBN-13",
	},
	FieldDescription: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   10,
		MaxLen:   2000,
	},
	FieldPublisher: {
		Type:     schema.TypeString,
		Required: true,
		Trim:     true,
		MinLen:   1,
		MaxLen:   100,
	},
	FieldCategory: {
		Type:     schema.TypeID,
		Required: true,
	},
	FieldPublishedDate: {
		Type:      schema.TypeDate,
		Required:  true,
		NotFuture: true,
	},
	FieldPages: {
		Type:     schema.TypeInt,
		Required: true,
		Min:      schema.Bound(1),
		Max:      schema.Bound(10000),
	},
	FieldLanguage: {
		Type:     schema.TypeString,
		Required: true,
		Enum:     Languages,
	},
	FieldPrice: {
		Type:     schema.TypeFloat,
		Required: true,
		Min:      schema.Bound(0.01),
		Round:    2,
	},
	FieldStock: {
		Type: schema.TypeInt,
		Min:  schema.Bound(0),
	},
	FieldStatus: {
		Type: schema.TypeString,
		Enum: Statuses,
	},
	FieldCoverImage: {
		Type:    schema.TypeString,
		Trim:    true,
		Pattern: coverImageRegex,
		Hint:    "Must be an http(s) URL ending in .jpg, .jpeg, .png, .gif, or .webp",
	},
	FieldAverageRating: {
		Type:    schema.TypeFloat,
		Min:     schema.Bound(0),
		Max:     schema.Bound(5),
		Round:   1,
		Default: float64(0),
	},
	FieldReviewCount: {
		Type:    schema.TypeInt,
		Min:     schema.Bound(0),
		Default: 0,
	},
	FieldIsFeatured: {
		Type:    schema.TypeBool,
		Default: false,
	},
})

// UpdateSchema is the create schema with every field optional; partial
// updates only touch the keys the client supplied.
var UpdateSchema = CreateSchema.Optional("book-update")

// StockSchema validates the body of a stock mutation.
var StockSchema = schema.New("book-stock", map[string]schema.Field{
	FieldQuantity: {
		Type:     schema.TypeInt,
		Required: true,
		Min:      schema.Bound(0),
	},
	FieldOperation: {
		Type:     schema.TypeString,
		Required: true,
		Enum:     []string{string(OpAdd), string(OpReduce), string(OpSet)},
	},
})

// ListQuerySchema validates the book list query string. Out-of-range
// page/limit values are rejected, not clamped.
var ListQuerySchema = schema.New("book-list-query", map[string]schema.Field{
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
	FieldCategory: {
		Type: schema.TypeID,
	},
	FieldStatus: {
		Type: schema.TypeString,
		Enum: Statuses,
	},
	"minPrice": {
		Type:   schema.TypeFloat,
		Coerce: true,
		Min:    schema.Bound(0),
	},
	"maxPrice": {
		Type:   schema.TypeFloat,
		Coerce: true,
		Min:    schema.Bound(0),
	},
	FieldLanguage: {
		Type: schema.TypeString,
		Enum: Languages,
	},
	FieldIsFeatured: {
		Type:   schema.TypeBool,
		Coerce: true,
	},
	"sort": {
		Type: schema.TypeString,
		Enum: []string{
			"title", "-title",
			"price", "-price",
			"publishedDate", "-publishedDate",
			"createdAt", "-createdAt",
			"rating", "-rating",
		},
	},
})
