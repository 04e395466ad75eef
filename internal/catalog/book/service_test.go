package book_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/catalog/book"
	"github.com/openshelf/openshelf/internal/catalog/category"
	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/schema"
	"github.com/openshelf/openshelf/pkg/entityid"
)

// fakeCategories is an in-memory book.CategoryReader.
type fakeCategories struct {
	categories map[string]*category.Category
}

func (f *fakeCategories) FindByID(_ context.Context, id string) (*category.Category, error) {
	c, ok := f.categories[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

// fakeRepository is an in-memory book.Repository mirroring the store's
// semantics, including the stock floor and in-statement status
// reconciliation of the stock mutations.
type fakeRepository struct {
	books map[string]*book.Book
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{books: make(map[string]*book.Book)}
}

func (f *fakeRepository) List(_ context.Context, filter book.Filter, _, _ int) ([]*book.Book, int, error) {
	var out []*book.Book
	for _, b := range f.books {
		if filter.CategoryID != "" && b.CategoryID != filter.CategoryID {
			continue
		}
		if filter.Status != "" && string(b.Status) != filter.Status {
			continue
		}
		clone := *b
		out = append(out, &clone)
	}
	return out, len(out), nil
}

func (f *fakeRepository) FindByID(_ context.Context, id string) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	clone := *b
	return &clone, nil
}

func (f *fakeRepository) FindByISBN(_ context.Context, isbn, excludeID string) (*book.Book, error) {
	for _, b := range f.books {
		if b.ISBN == isbn && b.ID != excludeID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (f *fakeRepository) Create(_ context.Context, b *book.Book) error {
	clone := *b
	f.books[b.ID] = &clone
	return nil
}

func (f *fakeRepository) Update(_ context.Context, b *book.Book) error {
	if _, ok := f.books[b.ID]; !ok {
		return dberr.ErrNotFound
	}
	clone := *b
	f.books[b.ID] = &clone
	return nil
}

func (f *fakeRepository) Delete(_ context.Context, id string) error {
	if _, ok := f.books[id]; !ok {
		return dberr.ErrNotFound
	}
	delete(f.books, id)
	return nil
}

func (f *fakeRepository) AdjustStock(_ context.Context, id string, delta int) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok || b.Stock+delta < 0 {
		return nil, dberr.ErrNotFound
	}
	b.Stock += delta
	b.Status = settleStatus(b.Stock, b.Status)
	clone := *b
	return &clone, nil
}

func (f *fakeRepository) SetStock(_ context.Context, id string, quantity int) (*book.Book, error) {
	b, ok := f.books[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	b.Stock = quantity
	b.Status = settleStatus(b.Stock, b.Status)
	clone := *b
	return &clone, nil
}

func (f *fakeRepository) Stats(_ context.Context) (*book.Stats, error) {
	return &book.Stats{Total: len(f.books)}, nil
}

// settleStatus mirrors the store's in-statement reconciliation.
func settleStatus(stock int, status book.Status) book.Status {
	switch status {
	case book.StatusDiscontinued, book.StatusUpcoming:
		return status
	}
	if stock == 0 {
		return book.StatusOutOfStock
	}
	if status == book.StatusOutOfStock {
		return book.StatusAvailable
	}
	return status
}

type fixture struct {
	service    *book.Service
	repo       *fakeRepository
	activeID   string
	inactiveID string
}

func newFixture() *fixture {
	activeID, inactiveID := entityid.New(), entityid.New()
	categories := &fakeCategories{categories: map[string]*category.Category{
		activeID:   {ID: activeID, Name: "Fiction", Color: "#112233", IsActive: true},
		inactiveID: {ID: inactiveID, Name: "Retired", Color: "#445566", IsActive: false},
	}}

	repo := newFakeRepository()
	return &fixture{
		service:    book.NewService(repo, categories, slog.New(slog.DiscardHandler)),
		repo:       repo,
		activeID:   activeID,
		inactiveID: inactiveID,
	}
}

// validBody returns a minimal valid create body, with overrides applied.
func validBody(categoryID string, overrides map[string]any) map[string]any {
	body := map[string]any{
		"title":         "The Dispossessed",
		"author":        "Ursula K. Le Guin",
		"isbn":          "9780060512750",
		"description":   "An ambiguous utopia across two worlds",
		"publisher":     "Harper & Row",
		"category":      categoryID,
		"publishedDate": "1974-05-01",
		"pages":         341,
		"language":      "English",
		"price":         15.99,
	}
	for key, value := range overrides {
		body[key] = value
	}
	return body
}

func applyCreate(t *testing.T, raw map[string]any) schema.Payload {
	t.Helper()
	payload, err := book.CreateSchema.Apply(raw)
	require.NoError(t, err)
	return payload
}

/*
TestService_Create covers the write-path rule ordering and the derived
status on the happy path.
*/
func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("derives_out_of_stock_when_stock_absent", func(t *testing.T) {
		f := newFixture()

		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)

		assert.Equal(t, 0, created.Stock)
		assert.Equal(t, book.StatusOutOfStock, created.Status)
		assert.Equal(t, 15.99, created.Price)
		assert.False(t, created.IsFeatured)
	})

	t.Run("positive_stock_stays_available", func(t *testing.T) {
		f := newFixture()

		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"stock": 5,
		})))
		require.NoError(t, err)

		assert.Equal(t, 5, created.Stock)
		assert.Equal(t, book.StatusAvailable, created.Status)
	})

	t.Run("explicit_out_of_stock_with_positive_stock_kept", func(t *testing.T) {
		f := newFixture()

		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"stock":  5,
			"status": "out-of-stock",
		})))
		require.NoError(t, err)

		assert.Equal(t, 5, created.Stock)
		assert.Equal(t, book.StatusOutOfStock, created.Status)
	})

	t.Run("manual_state_survives_zero_stock", func(t *testing.T) {
		f := newFixture()

		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"status": "upcoming",
		})))
		require.NoError(t, err)

		assert.Equal(t, book.StatusUpcoming, created.Status)
	})

	t.Run("explicit_available_with_zero_stock_rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"status": "available",
		})))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
		require.Len(t, ae.Details, 1)
		assert.Equal(t, "status", ae.Details[0].Field)
	})

	t.Run("unknown_category_rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Create(ctx, applyCreate(t, validBody(entityid.New(), nil)))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INVALID_REFERENCE", ae.Code)
		assert.Equal(t, 400, ae.HTTPStatus)
	})

	t.Run("inactive_category_rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Create(ctx, applyCreate(t, validBody(f.inactiveID, nil)))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INACTIVE_REFERENCE", ae.Code)
	})

	t.Run("duplicate_isbn_rejected", func(t *testing.T) {
		f := newFixture()

		_, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)

		_, err = f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"title": "A different listing, same ISBN",
		})))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "DUPLICATE_ISBN", ae.Code)
		assert.Equal(t, 409, ae.HTTPStatus)
	})
}

/*
TestService_Update verifies the merged-state coherence rules on partial
updates.
*/
func TestService_Update(t *testing.T) {
	ctx := context.Background()

	update := func(t *testing.T, raw map[string]any) schema.Payload {
		t.Helper()
		payload, err := book.UpdateSchema.Apply(raw)
		require.NoError(t, err)
		return payload
	}

	t.Run("stock_to_zero_flips_status", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 5})))
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, created.ID, update(t, map[string]any{"stock": 0}))
		require.NoError(t, err)
		assert.Equal(t, book.StatusOutOfStock, updated.Status)
	})

	t.Run("discontinued_survives_restock", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"stock":  3,
			"status": "discontinued",
		})))
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, created.ID, update(t, map[string]any{"stock": 10}))
		require.NoError(t, err)
		assert.Equal(t, book.StatusDiscontinued, updated.Status)
	})

	t.Run("explicit_out_of_stock_with_positive_stock_kept", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 5})))
		require.NoError(t, err)
		require.Equal(t, book.StatusAvailable, created.Status)

		updated, err := f.service.Update(ctx, created.ID, update(t, map[string]any{"status": "out-of-stock"}))
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Stock)
		assert.Equal(t, book.StatusOutOfStock, updated.Status)
	})

	t.Run("unrelated_update_keeps_manual_out_of_stock", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"stock":  5,
			"status": "out-of-stock",
		})))
		require.NoError(t, err)

		updated, err := f.service.Update(ctx, created.ID, update(t, map[string]any{"title": "Renamed edition"}))
		require.NoError(t, err)
		assert.Equal(t, book.StatusOutOfStock, updated.Status)
	})

	t.Run("available_against_merged_zero_stock_rejected", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)
		require.Equal(t, 0, created.Stock)

		_, err = f.service.Update(ctx, created.ID, update(t, map[string]any{"status": "available"}))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "VALIDATION_ERROR", ae.Code)
	})

	t.Run("category_change_rechecks_reference", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)

		_, err = f.service.Update(ctx, created.ID, update(t, map[string]any{"category": f.inactiveID}))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INACTIVE_REFERENCE", ae.Code)
	})

	t.Run("isbn_change_rechecks_uniqueness", func(t *testing.T) {
		f := newFixture()
		first, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)

		second, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{
			"isbn": "9780140449136",
		})))
		require.NoError(t, err)

		_, err = f.service.Update(ctx, second.ID, update(t, map[string]any{"isbn": first.ISBN}))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "DUPLICATE_ISBN", ae.Code)

		// Re-submitting the book's own ISBN is not a collision.
		_, err = f.service.Update(ctx, second.ID, update(t, map[string]any{"isbn": second.ISBN}))
		require.NoError(t, err)
	})
}

/*
TestService_AdjustStock covers the add/reduce/set verbs, the stock floor,
and the status transitions they trigger.
*/
func TestService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	stockBody := func(t *testing.T, operation string, quantity int) schema.Payload {
		t.Helper()
		payload, err := book.StockSchema.Apply(map[string]any{
			"operation": operation,
			"quantity":  quantity,
		})
		require.NoError(t, err)
		return payload
	}

	t.Run("add_increases_stock", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 5})))
		require.NoError(t, err)

		updated, result, err := f.service.AdjustStock(ctx, created.ID, stockBody(t, "add", 10))
		require.NoError(t, err)

		assert.Equal(t, 15, updated.Stock)
		assert.Equal(t, book.OpAdd, result.Operation)
		assert.Equal(t, 10, result.Quantity)
		assert.Equal(t, 15, result.Stock)
	})

	t.Run("reduce_to_zero_flips_status", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 5})))
		require.NoError(t, err)

		updated, _, err := f.service.AdjustStock(ctx, created.ID, stockBody(t, "reduce", 5))
		require.NoError(t, err)

		assert.Equal(t, 0, updated.Stock)
		assert.Equal(t, book.StatusOutOfStock, updated.Status)
	})

	t.Run("overdraw_rejected_with_available_quantity", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 3})))
		require.NoError(t, err)

		_, _, err = f.service.AdjustStock(ctx, created.ID, stockBody(t, "reduce", 4))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "INSUFFICIENT_STOCK", ae.Code)
		assert.Equal(t, 400, ae.HTTPStatus)

		// The failed reduction must not touch the level.
		kept, err := f.service.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, kept.Stock)
	})

	t.Run("restock_reactivates_out_of_stock", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
		require.NoError(t, err)
		require.Equal(t, book.StatusOutOfStock, created.Status)

		updated, _, err := f.service.AdjustStock(ctx, created.ID, stockBody(t, "set", 7))
		require.NoError(t, err)

		assert.Equal(t, 7, updated.Stock)
		assert.Equal(t, book.StatusAvailable, updated.Status)
	})

	t.Run("unknown_book_is_not_found", func(t *testing.T) {
		f := newFixture()

		_, _, err := f.service.AdjustStock(ctx, entityid.New(), stockBody(t, "add", 1))
		require.Error(t, err)

		ae := apperr.As(err)
		require.NotNil(t, ae)
		assert.Equal(t, "NOT_FOUND", ae.Code)
	})
}

/*
TestService_ListByCategory verifies that a bad category id reads as a
reference error rather than an empty page.
*/
func TestService_ListByCategory(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, map[string]any{"stock": 1})))
	require.NoError(t, err)

	books, total, err := f.service.ListByCategory(ctx, f.activeID, book.Filter{}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, books, 1)
	assert.Equal(t, created.ID, books[0].ID)

	_, _, err = f.service.ListByCategory(ctx, entityid.New(), book.Filter{}, 10, 0)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_REFERENCE", ae.Code)
}

/*
TestService_Delete verifies books delete unconditionally.
*/
func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	created, err := f.service.Create(ctx, applyCreate(t, validBody(f.activeID, nil)))
	require.NoError(t, err)

	deleted, err := f.service.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, err = f.service.Get(ctx, created.ID)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)
}
