package book

import (
	"context"
	"errors"
	"log/slog"

	"github.com/openshelf/openshelf/internal/catalog/category"
	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/schema"
	"github.com/openshelf/openshelf/internal/platform/validate"
	"github.com/openshelf/openshelf/pkg/entityid"
	"github.com/openshelf/openshelf/pkg/pointer"
)

// CategoryReader is the read slice of the category store the book rules
// need; the full category service stays out of this package.
type CategoryReader interface {
	FindByID(ctx context.Context, id string) (*category.Category, error)
}

// Service orchestrates the book write-path consistency rules. Checks run
// strictly in order and short-circuit on the first failure: category
// existence, category active state, ISBN uniqueness, then stock/status
// coherence. They are not transactional across requests — the unique index
// on isbn and the category foreign key are the backstop for races.
type Service struct {
	repo       Repository
	categories CategoryReader
	logger     *slog.Logger
}

func NewService(repo Repository, categories CategoryReader, logger *slog.Logger) *Service {
	return &Service{
		repo:       repo,
		categories: categories,
		logger:     logger,
	}
}

// # Reads

func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Book, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

func (service *Service) Get(ctx context.Context, id string) (*Book, error) {
	book, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return book, nil
}

// ListByCategory returns one page of a category's books. The category must
// exist (active or not) so a bad id reads as INVALID_REFERENCE, not an
// empty page.
func (service *Service) ListByCategory(ctx context.Context, categoryID string, filter Filter, limit, offset int) ([]*Book, int, error) {
	if _, err := service.categories.FindByID(ctx, categoryID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, 0, apperr.InvalidReference("Category", categoryID)
		}
		return nil, 0, err
	}

	filter.CategoryID = categoryID
	return service.repo.List(ctx, filter, limit, offset)
}

func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	return service.repo.Stats(ctx)
}

// # Writes

// Create persists a new book from a validated payload.
//
// Rule order: (1) shape already validated by the caller's schema, (2) the
// referenced category exists, (3) it is active, (4) the ISBN is unused,
// (5) stock and status cohere, (6) persist.
func (service *Service) Create(ctx context.Context, payload schema.Payload) (*Book, error) {
	if err := service.checkCategory(ctx, payload.String(FieldCategory)); err != nil {
		return nil, err
	}
	if err := service.checkISBNUnique(ctx, payload.String(FieldISBN), ""); err != nil {
		return nil, err
	}

	stock := payload.IntOr(FieldStock, 0)
	status := Status(payload.StringOr(FieldStatus, string(StatusAvailable)))

	// An explicitly chosen status is kept as supplied: a contradictory one
	// ("available" with zero stock) is rejected, never rewritten. Only the
	// absent, defaulted status is derived from the stock level.
	if payload.Has(FieldStatus) {
		if err := checkCoherence(stock, status); err != nil {
			return nil, err
		}
	} else {
		status = reconcileStatus(stock, status)
	}

	book := &Book{
		ID:            entityid.New(),
		Title:         payload.String(FieldTitle),
		Author:        payload.String(FieldAuthor),
		ISBN:          payload.String(FieldISBN),
		Description:   payload.String(FieldDescription),
		Publisher:     payload.String(FieldPublisher),
		CategoryID:    payload.String(FieldCategory),
		PublishedDate: payload.Time(FieldPublishedDate),
		Pages:         payload.Int(FieldPages),
		Language:      payload.String(FieldLanguage),
		Price:         payload.Float(FieldPrice),
		Stock:         stock,
		Status:        status,
		AverageRating: payload.Float(FieldAverageRating),
		ReviewCount:   payload.Int(FieldReviewCount),
		IsFeatured:    payload.Bool(FieldIsFeatured),
	}
	if payload.Has(FieldCoverImage) {
		book.CoverImage = pointer.To(payload.String(FieldCoverImage))
	}

	if err := service.repo.Create(ctx, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
		slog.String("isbn", book.ISBN),
	)
	return service.Get(ctx, book.ID)
}

// Update applies a partial update. Reference and uniqueness checks re-run
// only for the fields that actually change; stock/status coherence is
// re-evaluated against the merged result.
func (service *Service) Update(ctx context.Context, id string, payload schema.Payload) (*Book, error) {
	book, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if payload.Has(FieldCategory) && payload.String(FieldCategory) != book.CategoryID {
		if err := service.checkCategory(ctx, payload.String(FieldCategory)); err != nil {
			return nil, err
		}
		book.CategoryID = payload.String(FieldCategory)
	}
	if payload.Has(FieldISBN) && payload.String(FieldISBN) != book.ISBN {
		if err := service.checkISBNUnique(ctx, payload.String(FieldISBN), id); err != nil {
			return nil, err
		}
		book.ISBN = payload.String(FieldISBN)
	}

	if payload.Has(FieldTitle) {
		book.Title = payload.String(FieldTitle)
	}
	if payload.Has(FieldAuthor) {
		book.Author = payload.String(FieldAuthor)
	}
	if payload.Has(FieldDescription) {
		book.Description = payload.String(FieldDescription)
	}
	if payload.Has(FieldPublisher) {
		book.Publisher = payload.String(FieldPublisher)
	}
	if payload.Has(FieldPublishedDate) {
		book.PublishedDate = payload.Time(FieldPublishedDate)
	}
	if payload.Has(FieldPages) {
		book.Pages = payload.Int(FieldPages)
	}
	if payload.Has(FieldLanguage) {
		book.Language = payload.String(FieldLanguage)
	}
	if payload.Has(FieldPrice) {
		book.Price = payload.Float(FieldPrice)
	}
	if payload.Has(FieldCoverImage) {
		book.CoverImage = pointer.To(payload.String(FieldCoverImage))
	}
	if payload.Has(FieldAverageRating) {
		book.AverageRating = payload.Float(FieldAverageRating)
	}
	if payload.Has(FieldReviewCount) {
		book.ReviewCount = payload.Int(FieldReviewCount)
	}
	if payload.Has(FieldIsFeatured) {
		book.IsFeatured = payload.Bool(FieldIsFeatured)
	}

	if payload.Has(FieldStock) {
		book.Stock = payload.Int(FieldStock)
	}
	if payload.Has(FieldStatus) {
		requested := Status(payload.String(FieldStatus))
		if err := checkCoherence(book.Stock, requested); err != nil {
			return nil, err
		}
		book.Status = requested
	} else if payload.Has(FieldStock) {
		// No explicit status: the stock change alone drives the
		// available/out-of-stock transition.
		book.Status = reconcileStatus(book.Stock, book.Status)
	}

	if err := service.repo.Update(ctx, book); err != nil {
		return nil, err
	}

	service.logger.Info("book_updated", slog.String("book_id", id))
	return service.Get(ctx, id)
}

// Delete removes a book unconditionally; nothing references books.
func (service *Service) Delete(ctx context.Context, id string) (*Book, error) {
	book, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return nil, notFound(err)
	}

	service.logger.Warn("book_deleted",
		slog.String("book_id", id),
		slog.String("isbn", book.ISBN),
	)
	return book, nil
}

// AdjustStock applies a stock mutation and returns the settled result. The
// add and reduce arithmetic runs inside the store as a single conditional
// statement, so concurrent reductions cannot jointly overdraw a level that
// only covers one of them.
func (service *Service) AdjustStock(ctx context.Context, id string, payload schema.Payload) (*Book, *StockResult, error) {
	quantity := payload.Int(FieldQuantity)
	operation := StockOperation(payload.String(FieldOperation))

	current, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err)
	}

	var book *Book
	switch operation {
	case OpAdd:
		book, err = service.repo.AdjustStock(ctx, id, quantity)
	case OpReduce:
		book, err = service.repo.AdjustStock(ctx, id, -quantity)
		if errors.Is(err, dberr.ErrNotFound) {
			// The row existed a moment ago; the guard that failed is the
			// stock floor.
			return nil, nil, apperr.InsufficientStock(quantity, current.Stock)
		}
	case OpSet:
		book, err = service.repo.SetStock(ctx, id, quantity)
	default:
		return nil, nil, apperr.InvalidOperation(string(operation))
	}
	if err != nil {
		return nil, nil, notFound(err)
	}

	service.logger.Info("book_stock_adjusted",
		slog.String("book_id", id),
		slog.String("operation", string(operation)),
		slog.Int("quantity", quantity),
		slog.Int("stock", book.Stock),
	)

	result := &StockResult{
		Operation: operation,
		Quantity:  quantity,
		Stock:     book.Stock,
		Status:    book.Status,
	}
	return book, result, nil
}

// checkCategory fails with INVALID_REFERENCE when the category does not
// exist, and INACTIVE_REFERENCE when it exists but is deactivated.
func (service *Service) checkCategory(ctx context.Context, categoryID string) error {
	ref, err := service.categories.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.InvalidReference("Category", categoryID)
		}
		return err
	}
	if !ref.IsActive {
		return apperr.InactiveReference("Category", categoryID)
	}
	return nil
}

// checkISBNUnique fails with DUPLICATE_ISBN when another book already holds
// the ISBN.
func (service *Service) checkISBNUnique(ctx context.Context, isbn, excludeID string) error {
	existing, err := service.repo.FindByISBN(ctx, isbn, excludeID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil {
		return apperr.DuplicateISBN(isbn)
	}
	return nil
}

// checkCoherence rejects an explicitly requested status that the stock level
// contradicts.
func checkCoherence(stock int, status Status) error {
	v := &validate.Validator{}
	v.CustomValue(FieldStatus, statusContradicts(stock, status),
		"Cannot be 'available' while stock is zero", string(status))
	return v.Err()
}

// notFound converts the store's generic not-found into the entity-specific
// 404; other errors pass through untouched.
func notFound(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Book")
	}
	return err
}
