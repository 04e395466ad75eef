package category

import "context"

// Repository is the persistence contract for categories.
//
// FindByNameFold performs the case-insensitive uniqueness lookup; excludeID,
// when non-empty, skips that row so updates don't collide with themselves.
// CountBooks returns the number of books referencing a category, which
// drives the soft-vs-hard delete branch.
type Repository interface {
	List(ctx context.Context, f Filter, limit, offset int) ([]*Category, int, error)
	ListActive(ctx context.Context) ([]*Category, error)
	FindByID(ctx context.Context, id string) (*Category, error)
	FindByNameFold(ctx context.Context, name, excludeID string) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (*Category, error)
	CountBooks(ctx context.Context, categoryID string) (int, error)
	Stats(ctx context.Context) (*Stats, error)
}
