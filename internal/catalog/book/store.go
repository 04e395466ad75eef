package book

import "context"

// Repository is the persistence contract for books. Read methods return
// books with their category reference populated.
type Repository interface {
	// List returns one page of books matching the filter plus the total
	// match count.
	List(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error)

	// FindByID returns a single book, or dberr.ErrNotFound.
	FindByID(ctx context.Context, id string) (*Book, error)

	// FindByISBN returns the book holding the given ISBN, ignoring
	// excludeID when non-empty, or dberr.ErrNotFound.
	FindByISBN(ctx context.Context, isbn, excludeID string) (*Book, error)

	Create(ctx context.Context, b *Book) error
	Update(ctx context.Context, b *Book) error

	// Delete removes a book outright, or returns dberr.ErrNotFound.
	Delete(ctx context.Context, id string) error

	// AdjustStock atomically shifts the stock level by delta (which may be
	// negative) and reconciles the listing status in the same statement.
	// A negative delta never takes stock below zero; when it would, the
	// adjustment fails with dberr.ErrNotFound and the row is untouched.
	AdjustStock(ctx context.Context, id string, delta int) (*Book, error)

	// SetStock atomically replaces the stock level and reconciles the
	// listing status in the same statement.
	SetStock(ctx context.Context, id string, quantity int) (*Book, error)

	Stats(ctx context.Context) (*Stats, error)
}
