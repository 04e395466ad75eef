package category

import (
	"net/http"

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

// Routes returns a [chi.Router] configured with the category endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public browsing
	router.Get("/", handler.list)
	router.Get("/active", handler.listActive)
	router.Get("/{id}", handler.get)

	// Inventory management (admin only)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))

		admin.Get("/stats", handler.stats)
		admin.Post("/", handler.create)
		admin.Put("/{id}", handler.update)
		admin.Delete("/{id}", handler.delete)
		admin.Patch("/{id}/toggle-status", handler.toggleStatus)
	})

	return router
}

// GET /api/categories
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	query, err := ListQuerySchema.ApplyValues(request.URL.Query())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	filter := Filter{
		Search: query.String("search"),
		Sort:   query.String("sort"),
	}
	if query.Has(FieldIsActive) {
		filter.IsActive = pointer.To(query.Bool(FieldIsActive))
	}

	params := pagination.Params{Page: query.Int("page"), Limit: query.Int("limit")}

	categories, total, err := handler.service.List(request.Context(), filter, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, "Categories retrieved successfully", categories,
		pagination.NewMeta(params.Page, params.Limit, total))
}

// GET /api/categories/active
func (handler *Handler) listActive(writer http.ResponseWriter, request *http.Request) {
	categories, err := handler.service.ListActive(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Counted(writer, "Active categories retrieved successfully", categories, len(categories))
}

// GET /api/categories/stats
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.service.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Category statistics retrieved successfully", stats)
}

// GET /api/categories/{id}
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Category retrieved successfully", category)
}

// POST /api/categories
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	payload, err := CreateSchema.ApplyJSON(request.Body)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.Create(request.Context(), payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Category created successfully", category)
}

// PUT /api/categories/{id}
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

	category, err := handler.service.Update(request.Context(), id, payload)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Category updated successfully", category)
}

// DELETE /api/categories/{id}
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, result, err := handler.service.Delete(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if result.SoftDeleted {
		respond.OK(writer, "Category has dependent books and was deactivated instead of deleted",
			map[string]any{
				"category":       category,
				"softDeleted":    true,
				"dependentBooks": result.DependentBooks,
			})
		return
	}

	respond.OK(writer, "Category deleted successfully", map[string]any{
		"id":          category.ID,
		"name":        category.Name,
		"softDeleted": false,
	})
}

// PATCH /api/categories/{id}/toggle-status
func (handler *Handler) toggleStatus(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.EntityID(request, "id")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	category, err := handler.service.ToggleStatus(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Category status toggled successfully", category)
}
