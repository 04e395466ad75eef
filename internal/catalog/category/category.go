// Package category implements the category side of the library catalog:
// the domain entity, its request schemas, the write-path consistency rules,
// and the HTTP surface.
package category

import "time"

// Category groups books for browsing. It does not own its books: a book
// holds a non-owning reference to a category, and deleting a category never
// cascades.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// DefaultColor is assigned when a category is created without a color.
const DefaultColor = "#6c757d"

// Filter holds the parameters for a paginated category search.
type Filter struct {
	// Search is matched case-insensitively against the name.
	Search string
	// IsActive filters by active state when non-nil.
	IsActive *bool
	// Sort is a whitelisted sort key, optionally prefixed with '-'.
	Sort string
}

// DeleteResult reports which delete branch was taken.
//
// Categories with dependent books are never destroyed: they are deactivated
// (soft delete) so existing books keep a resolvable reference. Only a
// category with zero dependents is removed permanently.
type DeleteResult struct {
	SoftDeleted    bool `json:"softDeleted"`
	DependentBooks int  `json:"dependentBooks"`
}

// BookCount is one row of the per-category aggregate in [Stats].
type BookCount struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Books      int    `json:"books"`
}

// Stats is the aggregate view served by the admin stats endpoint.
type Stats struct {
	Total            int         `json:"total"`
	Active           int         `json:"active"`
	Inactive         int         `json:"inactive"`
	BooksPerCategory []BookCount `json:"booksPerCategory"`
}

// Global field names for validation
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldColor       = "color"
	FieldIsActive    = "isActive"
)
