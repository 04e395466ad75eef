// Copyright (c) 2026 Openshelf. All rights reserved.

/*
Package apperr defines the centralized error handling framework for Openshelf.

It provides a rich error type that bridges the gap between low-level Domain/Storage
errors and high-level HTTP responses.

Architecture:

  - AppError: A struct containing machine-readable ErrorCode and user-friendly messages.
  - Taxonomy: Dedicated constructors for every failure kind the catalog produces
    (validation, identity, uniqueness, referential, stock).
  - Mapping: Explicit mapping from AppError to standard HTTP Status Codes.

Every error that leaves the service layer should be wrapped as an [AppError] to ensure
consistent API responses.
*/
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is the canonical error type for the Openshelf API.
//
// It carries an HTTP status code, a machine-readable code, a client-safe
// message, and an optional slice of field-level validation errors.
//
// # Security
//
// The Cause field is for server-side logging and is never sent to production
// clients, to avoid leaking internal implementation details (e.g., SQL
// queries). Non-production deployments may opt in to echoing it on 5xx
// responses via the respond package.
type AppError struct {
	// Code is a machine-readable error identifier (e.g. "NOT_FOUND", "DUPLICATE_ISBN").
	Code string `json:"code"`
	// Message is a human-readable description safe to return to the client.
	Message string `json:"message"`
	// HTTPStatus is the HTTP response status code.
	HTTPStatus int `json:"-"`
	// Cause is the underlying error, used for server-side logging only.
	Cause error `json:"-"`
	// Details holds per-field validation errors for VALIDATION_ERROR responses.
	Details []FieldError `json:"errors,omitempty"`
}

// FieldError represents a single field-level validation failure.
type FieldError struct {
	// Field is the JSON field name (or path) that failed validation.
	Field string `json:"field"`
	// Message is the human-readable description of the failure.
	Message string `json:"message"`
	// Value is the offending input value, echoed back for client debugging.
	Value any `json:"value,omitempty"`
}

// Error implements the error interface. It returns the client-safe message.
func (e *AppError) Error() string { return e.Message }

// Unwrap allows [errors.Is] and [errors.As] to traverse the cause chain.
func (e *AppError) Unwrap() error { return e.Cause }

// # Client Errors (4xx)

// NotFound creates a 404 [AppError] for a named resource.
//
// Example:
//
//	apperr.NotFound("Book") // Returns "Book not found"
func NotFound(resource string) *AppError {
	return &AppError{
		Code:       "NOT_FOUND",
		Message:    resource + " not found",
		HTTPStatus: http.StatusNotFound,
	}
}

// RouteNotFound creates a 404 [AppError] for an undefined route.
//
// It is deliberately distinct from [NotFound] so clients can tell a missing
// entity apart from a mistyped URL.
func RouteNotFound(method, path string) *AppError {
	return &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    fmt.Sprintf("Route %s %s not found", method, path),
		HTTPStatus: http.StatusNotFound,
	}
}

// Unauthorized creates a 401 [AppError].
func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:       "UNAUTHORIZED",
		Message:    msg,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// Forbidden creates a 403 [AppError].
func Forbidden(msg string) *AppError {
	return &AppError{
		Code:       "FORBIDDEN",
		Message:    msg,
		HTTPStatus: http.StatusForbidden,
	}
}

// ValidationError creates a 400 [AppError] with optional per-field details.
func ValidationError(msg string, details ...FieldError) *AppError {
	return &AppError{
		Code:       "VALIDATION_ERROR",
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
		Details:    details,
	}
}

// InvalidIdentifier creates a 400 [AppError] for a malformed entity id in a
// path or query parameter. The parameter name is carried in the details so
// clients know which id was rejected.
func InvalidIdentifier(param string, value any) *AppError {
	return &AppError{
		Code:       "INVALID_IDENTIFIER",
		Message:    fmt.Sprintf("Parameter %q is not a valid identifier", param),
		HTTPStatus: http.StatusBadRequest,
		Details:    []FieldError{{Field: param, Message: "Must be a 24-character hexadecimal id", Value: value}},
	}
}

// DuplicateName creates a 409 [AppError] for a case-insensitive category
// name collision.
func DuplicateName(name string) *AppError {
	return &AppError{
		Code:       "DUPLICATE_NAME",
		Message:    fmt.Sprintf("A category named %q already exists", name),
		HTTPStatus: http.StatusConflict,
	}
}

// DuplicateISBN creates a 409 [AppError] for an ISBN collision.
func DuplicateISBN(isbn string) *AppError {
	return &AppError{
		Code:       "DUPLICATE_ISBN",
		Message:    fmt.Sprintf("A book with ISBN %s already exists", isbn),
		HTTPStatus: http.StatusConflict,
	}
}

// InvalidReference creates a 400 [AppError] for a reference to a nonexistent
// entity (e.g. a book pointing at an unknown category id).
func InvalidReference(resource, id string) *AppError {
	return &AppError{
		Code:       "INVALID_REFERENCE",
		Message:    fmt.Sprintf("%s %s does not exist", resource, id),
		HTTPStatus: http.StatusBadRequest,
	}
}

// InactiveReference creates a 400 [AppError] for a reference to an entity
// that exists but has been deactivated.
func InactiveReference(resource, id string) *AppError {
	return &AppError{
		Code:       "INACTIVE_REFERENCE",
		Message:    fmt.Sprintf("%s %s is inactive", resource, id),
		HTTPStatus: http.StatusBadRequest,
	}
}

// InsufficientStock creates a 400 [AppError] for a stock reduction that
// exceeds the quantity on hand.
func InsufficientStock(requested, available int) *AppError {
	return &AppError{
		Code:       "INSUFFICIENT_STOCK",
		Message:    fmt.Sprintf("Cannot reduce stock by %d, only %d available", requested, available),
		HTTPStatus: http.StatusBadRequest,
	}
}

// InvalidOperation creates a 400 [AppError] for an unrecognized operation verb.
func InvalidOperation(op string) *AppError {
	return &AppError{
		Code:       "INVALID_OPERATION",
		Message:    fmt.Sprintf("Operation %q is not supported", op),
		HTTPStatus: http.StatusBadRequest,
	}
}

// RateLimited creates a 429 [AppError].
func RateLimited(retryAfterSeconds int) *AppError {
	return &AppError{
		Code:       "RATE_LIMITED",
		Message:    fmt.Sprintf("Too many requests. Try again in %ds.", retryAfterSeconds),
		HTTPStatus: http.StatusTooManyRequests,
	}
}

// # Server Errors (5xx)

// Internal creates a 500 [AppError] wrapping an unexpected server-side error.
// The cause is stored for logging and is hidden from production clients.
func Internal(cause error) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// ServiceUnavailable creates a 503 [AppError] for maintenance mode.
func ServiceUnavailable(msg string) *AppError {
	return &AppError{
		Code:       "SERVICE_UNAVAILABLE",
		Message:    msg,
		HTTPStatus: http.StatusServiceUnavailable,
	}
}

// # Helpers

// IsAppError reports whether err (or any error in its chain) is an [*AppError].
func IsAppError(err error) bool {
	var ae *AppError
	return errors.As(err, &ae)
}

// As extracts the [*AppError] from err's chain. It returns nil if not found.
func As(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
