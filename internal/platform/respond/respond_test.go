// Copyright (c) 2026 Openshelf. All rights reserved.

package respond_test

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/internal/platform/respond"
)

func quietRequest(t *testing.T) *http.Request {
	t.Helper()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := ctxutil.WithLogger(request.Context(), slog.New(slog.DiscardHandler))
	return request.WithContext(ctx)
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&envelope))
	return envelope
}

/*
TestError_DiagnosticDetail verifies that the underlying cause of a 5xx is
echoed to the client only when diagnostic exposure is enabled, and that 4xx
responses never carry it.
*/
func TestError_DiagnosticDetail(t *testing.T) {
	t.Cleanup(func() { respond.ExposeCauses(false) })

	t.Run("exposed_on_5xx_when_enabled", func(t *testing.T) {
		respond.ExposeCauses(true)

		recorder := httptest.NewRecorder()
		respond.Error(recorder, quietRequest(t), errors.New("connection pool exhausted"))

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		envelope := decodeError(t, recorder)
		assert.False(t, envelope.Success)
		assert.Equal(t, "INTERNAL_ERROR", envelope.Code)
		assert.Equal(t, "connection pool exhausted", envelope.Detail)
	})

	t.Run("hidden_when_disabled", func(t *testing.T) {
		respond.ExposeCauses(false)

		recorder := httptest.NewRecorder()
		respond.Error(recorder, quietRequest(t), errors.New("connection pool exhausted"))

		require.Equal(t, http.StatusInternalServerError, recorder.Code)
		envelope := decodeError(t, recorder)
		assert.Empty(t, envelope.Detail)
	})

	t.Run("never_on_4xx", func(t *testing.T) {
		respond.ExposeCauses(true)

		recorder := httptest.NewRecorder()
		respond.Error(recorder, quietRequest(t), apperr.NotFound("Book"))

		require.Equal(t, http.StatusNotFound, recorder.Code)
		envelope := decodeError(t, recorder)
		assert.Equal(t, "NOT_FOUND", envelope.Code)
		assert.Empty(t, envelope.Detail)
	})
}
