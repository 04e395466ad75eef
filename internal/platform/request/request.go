// Copyright (c) 2026 Openshelf. All rights reserved.

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction, ensuring
consistent error handling and type safety.
*/
package requestutil

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/internal/platform/ctxutil"
	"github.com/openshelf/openshelf/internal/platform/sec"
	"github.com/openshelf/openshelf/pkg/entityid"
)

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

// EntityID retrieves a named URL parameter and validates that it is a
// well-formed entity identifier. This gate runs before any store lookup so
// malformed ids never reach the driver.
func EntityID(request *http.Request, name string) (string, error) {
	value := chi.URLParam(request, name)
	if err := entityid.Validate(name, value); err != nil {
		return "", err
	}
	return value, nil
}

// Claims extracts the authenticated session claims from the request context.
//
// Returns nil if the request is not authenticated.
func Claims(request *http.Request) *sec.SessionClaims {
	return ctxutil.GetAuthUser(request.Context())
}

// RequiredClaims ensures the request is authenticated and returns the claims.
func RequiredClaims(request *http.Request) (*sec.SessionClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}
