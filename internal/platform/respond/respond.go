// Copyright (c) 2026 Openshelf. All rights reserved.

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// This package centralizes the presentation logic for HTTP responses.
// It ensures that every response (success or error) across the entire
// application follows one predictable JSON envelope: clients branch on
// `success` and read `message`/`errors` uniformly regardless of whether a
// failure originated in shape validation, a consistency rule, or the store.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/pkg/pagination"
)

// SuccessEnvelope is the JSON envelope for successful responses.
//
// Pagination and Count are operation-specific context blocks: list endpoints
// carry Pagination, collection endpoints carry Count, single-resource
// endpoints carry neither.
type SuccessEnvelope struct {
	Success    bool             `json:"success"`
	Message    string           `json:"message"`
	Data       any              `json:"data,omitempty"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
	Count      *int             `json:"count,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
//
// Detail carries the underlying cause of a 5xx and is only populated when
// diagnostic exposure is enabled (see [ExposeCauses]); production clients
// never see it.
type ErrorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Detail  string              `json:"detail,omitempty"`
}

// exposeCauses controls whether 5xx envelopes echo their underlying cause.
var exposeCauses bool

// ExposeCauses enables diagnostic detail on 5xx envelopes. Call once at
// startup, before the server accepts traffic; it is meant for
// non-production environments where operators debug against the API
// directly.
func ExposeCauses(enabled bool) { exposeCauses = enabled }

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, message string, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, message string, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Success: true, Message: message, Data: data})
}

// Paginated writes a 200 OK response with paginated data and a metadata block.
func Paginated(writer http.ResponseWriter, message string, data any, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, SuccessEnvelope{
		Success:    true,
		Message:    message,
		Data:       data,
		Pagination: &metadata,
	})
}

// Counted writes a 200 OK response for unpaginated collections, carrying the
// item count alongside the data.
func Counted(writer http.ResponseWriter, message string, data any, count int) {
	JSON(writer, http.StatusOK, SuccessEnvelope{
		Success: true,
		Message: message,
		Data:    data,
		Count:   &count,
	})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		// Unexpected internal error: log full details but hide them from the client for security.
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger := ctxutil.GetLogger(request.Context())
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(request.Context())),
			slog.Any("cause", appError.Cause),
		)
	}

	envelope := ErrorEnvelope{
		Success: false,
		Message: appError.Message,
		Code:    appError.Code,
		Errors:  appError.Details,
	}
	if exposeCauses && appError.HTTPStatus >= 500 && appError.Cause != nil {
		envelope.Detail = appError.Cause.Error()
	}

	JSON(writer, appError.HTTPStatus, envelope)
}
