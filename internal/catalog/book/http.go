package book

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/internal/platform/middleware"
	requestutil "github.com/openshelf/openshelf/internal/platform/request"
	"github.com/openshelf/openshelf/internal/platform/respond"
	"github.com/openshelf/openshelf/internal/platform/sec"
	"github.com/openshelf/openshelf/pkg/pagination"
	"github.com/openshelf/openshelf/pkg/pointer"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the book endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public browsing
	router.Get("/", handler.list)
	router.Get("/available", handler.listAvailable)
	router.Get("/featured", handler.listFeatured)
	router.Get("/search/{term}", handler.search)
	router.Get("/category/{categoryID}", handler.listByCategory)
	router.Get("/{id}", handler.get)

	// Inventory management (admin only)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/stats", handler.stats)
		admin.Post("/", handler.create)
		admin.Put("/{id}", handler.update)
		admin.Delete("/{id}", handler.delete)
		admin.Patch("/{id}/stock", handler.adjustStock)
	})

	return router
}

// queryFilter builds the common Filter/Params pair from a validated list
// query payload.
func queryFilter(request *http.Request) (Filter, pagination.Params, error) {
	query, err := ListQuerySchema.ApplyValues(request.URL.Query())
	if err != nil {
		return Filter{}, pagination.Params{}, err
	}

	filter := Filter{
		Search:     query.String("search"),
		CategoryID: query.String(FieldCategory),
		Status:     query.String(FieldStatus),
		Language:   query.String(FieldLanguage),
		Sort:       query.String("sort"),
	}
	if query.Has("minPrice") {
		filter.MinPrice = pointer.To(query.Float("minPrice"))
	}
	if query.Has("maxPrice") {
		filter.MaxPrice = pointer.To(query.Float("maxPrice"))
	}
	if query.Has(FieldIsFeatured) {
		filter.IsFeatured = pointer.To(query.Bool(FieldIsFeatured))
	}

	params := pagination.Params{Page: query.Int("page"), Limit: query.Int("limit")}
	return filter, params, nil
}

func (handler *Handler) respondPage(writer http.ResponseWriter, request *http.Request, filter Filter, params pagination.Params, message string) {
	books, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, message, books, pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/books
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	filter, params, err := queryFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.respondPage(writer, request, filter, params, "Books retrieved successfully")
}

// GET /api/books/available
func (handler *Handler) listAvailable(writer http.ResponseWriter, request *http.Request) {
	filter, params, err := queryFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter.Status = string(StatusAvailable)
	handler.respondPage(writer, request, filter, params, "Available books retrieved successfully")
}

// GET /api/books/featured
func (handler *Handler) listFeatured(writer http.ResponseWriter, request *http.Request) {
	filter, params, err := queryFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter.IsFeatured = pointer.To(true)
	handler.respondPage(writer, request, filter, params, "Featured books retrieved successfully")
}

// GET /api/books/search/{term}
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	filter, params, err := queryFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter.Search = strings.TrimSpace(requestutil.Param(request, "term"))
	handler.respondPage(writer, request, filter, params, "Search results retrieved successfully")
}

// GET /api/books/category/{categoryID}
func (handler *Handler) listByCategory(writer http.ResponseWriter, request *http.Request) {
	categoryID, err := requestutil.EntityID(request, "categoryID")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter, params, err := queryFilter(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	books, total, err := handler.service.ListByCategory(request.Context(), categoryID, filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, "Category books retrieved successfully", books,
		pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/books/stats
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Book statistics retrieved successfully", stats)
}

// GET /api/books/{id}
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Book retrieved successfully", book)
}

// POST /api/books
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	payload, err := CreateSchema.ApplyJSON(request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Create(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Book created successfully", book)
}

// PUT /api/books/{id}
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := UpdateSchema.ApplyJSON(request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Update(request.Context(), id, payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Book updated successfully", book)
}

// DELETE /api/books/{id}
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Delete(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Book deleted successfully", map[string]any{
		"id":    book.ID,
		"title": book.Title,
	})
}

// PATCH /api/books/{id}/stock
func (handler *Handler) adjustStock(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// Lookup precedes body validation: a bad payload against a missing
	// book reads as 404, not 400.
	if _, err := handler.service.Get(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	payload, err := StockSchema.ApplyJSON(request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, result, err := handler.service.AdjustStock(request.Context(), id, payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Book stock updated successfully", map[string]any{
		"operation": result.Operation,
		"quantity":  result.Quantity,
		"stock":     result.Stock,
		"status":    result.Status,
		"book":      book,
	})
}
