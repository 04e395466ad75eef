// Copyright (c) 2026 Openshelf. All rights reserved.

// Package sec provides the security primitives for the Openshelf API:
// roles, opaque session tokens, and signed OAuth state tokens.
//
// # Architecture
//
// This package isolates security-sensitive code from the domain logic. It is
// injected into the application layer via small interfaces so services never
// touch raw cryptography.
package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SessionTokenLength is the byte length of the random session token handed
// to the browser. 32 bytes gives 256 bits of entropy.
const SessionTokenLength = 32

// SessionClaims is the identity attached to an authenticated request.
//
// It is reconstructed from the session store on every request, so a revoked
// session takes effect immediately (unlike a self-contained bearer token).
type SessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   string `json:"rol"`
}

// NewSessionToken generates a cryptographically random opaque token.
func NewSessionToken() (string, error) {
	buf := make([]byte, SessionTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("sec: failed to generate session token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashToken returns the hex SHA-256 digest of a token.
//
// Only the digest is stored server-side, so a leaked session store cannot be
// replayed against the API.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
