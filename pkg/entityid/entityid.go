// Copyright (c) 2026 Openshelf. All rights reserved.

// Package entityid generates and validates the opaque identifiers used to
// address catalog entities.
//
// # Format
//
// An entity id is exactly 24 lowercase hexadecimal characters: a 4-byte
// big-endian unix timestamp followed by 8 random bytes. The timestamp prefix
// keeps ids roughly insertion-ordered; the random suffix makes them
// unguessable.
//
// # Fast-reject gate
//
// Validate runs before any persistence lookup so malformed ids are rejected
// as a clean 400 instead of surfacing as driver-level errors.
package entityid

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/openshelf/openshelf/internal/platform/apperr"
)

// Length is the exact character length of an entity id.
const Length = 24

// idRegex matches exactly 24 lowercase hexadecimal characters.
var idRegex = regexp.MustCompile(`^[0-9a-f]{24}$`)

// New generates a fresh entity id.
func New() string {
	raw := make([]byte, Length/2)
	binary.BigEndian.PutUint32(raw[:4], uint32(time.Now().Unix()))

	// rand.Read never returns an error on supported platforms.
	_, _ = rand.Read(raw[4:])

	return hex.EncodeToString(raw)
}

// IsValid reports whether value is a well-formed entity id.
func IsValid(value string) bool {
	return idRegex.MatchString(value)
}

// Validate checks a path or query parameter and returns an
// INVALID_IDENTIFIER error naming the parameter on failure.
func Validate(param, value string) error {
	if !IsValid(value) {
		return apperr.InvalidIdentifier(param, value)
	}
	return nil
}
