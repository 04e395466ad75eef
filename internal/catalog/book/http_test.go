package book_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/catalog/book"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/internal/platform/respond"
	"github.com/openshelf/openshelf/internal/platform/sec"
	"github.com/openshelf/openshelf/pkg/entityid"
)

// asAdmin stamps admin session claims onto a request, standing in for the
// session middleware.
func asAdmin(request *http.Request) *http.Request {
	claims := &sec.SessionClaims{
		UserID: entityid.New(),
		Email:  "admin@openshelf.app",
		Role:   string(sec.RoleAdmin),
	}
	return request.WithContext(ctxutil.WithAuthUser(request.Context(), claims))
}

/*
TestHandler_AdjustStock verifies the stock endpoint resolves the book before
validating the body, so a bad payload against a missing book reads as 404
rather than 400.
*/
func TestHandler_AdjustStock(t *testing.T) {
	invalidBody := `{"operation":"teleport"}`

	t.Run("missing_book_wins_over_invalid_body", func(t *testing.T) {
		f := newFixture()
		router := book.NewHandler(f.service).Routes()

		target := "/" + entityid.New() + "/stock"
		request := asAdmin(httptest.NewRequest(http.MethodPatch, target, strings.NewReader(invalidBody)))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusNotFound, recorder.Code)

		var envelope respond.ErrorEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		assert.Equal(t, "NOT_FOUND", envelope.Code)
	})

	t.Run("invalid_body_on_existing_book_is_rejected", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(context.Background(), applyCreate(t, validBody(f.activeID, map[string]any{"stock": 2})))
		require.NoError(t, err)

		router := book.NewHandler(f.service).Routes()
		request := asAdmin(httptest.NewRequest(http.MethodPatch, "/"+created.ID+"/stock", strings.NewReader(invalidBody)))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusBadRequest, recorder.Code)

		var envelope respond.ErrorEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		assert.Equal(t, "VALIDATION_ERROR", envelope.Code)
	})

	t.Run("valid_mutation_reports_settled_stock", func(t *testing.T) {
		f := newFixture()
		created, err := f.service.Create(context.Background(), applyCreate(t, validBody(f.activeID, map[string]any{"stock": 2})))
		require.NoError(t, err)

		router := book.NewHandler(f.service).Routes()
		request := asAdmin(httptest.NewRequest(http.MethodPatch, "/"+created.ID+"/stock",
			strings.NewReader(`{"operation":"add","quantity":3}`)))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var envelope respond.SuccessEnvelope
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
		data, ok := envelope.Data.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "add", data["operation"])
		assert.Equal(t, float64(5), data["stock"])
	})
}
