package category

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/dberr"
	"github.com/openshelf/openshelf/internal/platform/schema"
	"github.com/openshelf/openshelf/pkg/entityid"
)

// titleCaser normalizes category names to title case on every write.
// cases.Caser is not safe for concurrent use, so a fresh one is taken per call.
func titleCase(name string) string {
	return cases.Title(language.English).String(name)
}

// Service orchestrates the category write-path consistency rules: name
// uniqueness, title-case normalization, and the soft-vs-hard delete policy.
// Checks run strictly in order and short-circuit on the first failure; they
// are not transactional across requests — the unique index on lower(name)
// is the backstop for concurrent creates.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// # Reads

func (service *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]*Category, int, error) {
	return service.repo.List(ctx, filter, limit, offset)
}

func (service *Service) ListActive(ctx context.Context) ([]*Category, error) {
	return service.repo.ListActive(ctx)
}

func (service *Service) Get(ctx context.Context, id string) (*Category, error) {
	category, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return category, nil
}

func (service *Service) Stats(ctx context.Context) (*Stats, error) {
	return service.repo.Stats(ctx)
}

// # Writes

// Create persists a new category from a validated payload.
//
// Rule order: (1) shape already validated by the caller's schema,
// (2) case-insensitive name uniqueness, (3) title-case normalization,
// (4) persist.
func (service *Service) Create(ctx context.Context, payload schema.Payload) (*Category, error) {
	name := payload.String(FieldName)

	if err := service.checkNameUnique(ctx, name, ""); err != nil {
		return nil, err
	}

	category := &Category{
		ID:          entityid.New(),
		Name:        titleCase(name),
		Description: payload.String(FieldDescription),
		Color:       payload.String(FieldColor),
		IsActive:    payload.Bool(FieldIsActive),
	}

	if err := service.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_created",
		slog.String("category_id", category.ID),
		slog.String("name", category.Name),
	)
	return category, nil
}

// Update applies a partial update. The uniqueness check re-runs only when
// the name actually changes, excluding the category's own row.
func (service *Service) Update(ctx context.Context, id string, payload schema.Payload) (*Category, error) {
	category, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	if payload.Has(FieldName) {
		name := payload.String(FieldName)
		normalized := titleCase(name)
		if normalized != category.Name {
			if err := service.checkNameUnique(ctx, name, id); err != nil {
				return nil, err
			}
		}
		category.Name = normalized
	}
	if payload.Has(FieldDescription) {
		category.Description = payload.String(FieldDescription)
	}
	if payload.Has(FieldColor) {
		category.Color = payload.String(FieldColor)
	}
	if payload.Has(FieldIsActive) {
		category.IsActive = payload.Bool(FieldIsActive)
	}

	if err := service.repo.Update(ctx, category); err != nil {
		return nil, err
	}

	service.logger.Info("category_updated", slog.String("category_id", id))
	return category, nil
}

// Delete removes a category — but only when no book references it. With
// dependents it downgrades to a soft delete (isActive=false) and reports the
// dependent count, preserving referential integrity without cascades.
func (service *Service) Delete(ctx context.Context, id string) (*Category, *DeleteResult, error) {
	category, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err)
	}

	dependents, err := service.repo.CountBooks(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if dependents > 0 {
		category, err = service.repo.SetActive(ctx, id, false)
		if err != nil {
			return nil, nil, err
		}

		service.logger.Warn("category_soft_deleted",
			slog.String("category_id", id),
			slog.Int("dependent_books", dependents),
		)
		return category, &DeleteResult{SoftDeleted: true, DependentBooks: dependents}, nil
	}

	if err := service.repo.Delete(ctx, id); err != nil {
		return nil, nil, err
	}

	service.logger.Warn("category_deleted", slog.String("category_id", id))
	return category, &DeleteResult{SoftDeleted: false}, nil
}

// ToggleStatus flips isActive. Calling it twice returns the category to its
// original state.
func (service *Service) ToggleStatus(ctx context.Context, id string) (*Category, error) {
	category, err := service.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}

	updated, err := service.repo.SetActive(ctx, id, !category.IsActive)
	if err != nil {
		return nil, err
	}

	service.logger.Info("category_status_toggled",
		slog.String("category_id", id),
		slog.Bool("is_active", updated.IsActive),
	)
	return updated, nil
}

// checkNameUnique fails with DUPLICATE_NAME when another category already
// uses the name, ignoring case. The raw (pre-normalization) name is checked
// so "sci-fi" and "Sci-Fi" collide.
func (service *Service) checkNameUnique(ctx context.Context, name, excludeID string) error {
	existing, err := service.repo.FindByNameFold(ctx, name, excludeID)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing != nil {
		return apperr.DuplicateName(name)
	}
	return nil
}

// notFound converts the store's generic not-found into the entity-specific
// 404; other errors pass through untouched.
func notFound(err error) error {
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.NotFound("Category")
	}
	return err
}
