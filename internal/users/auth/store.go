package auth

import (
	"context"
	"time"

	"github.com/openshelf/openshelf/internal/platform/sec"
)

// Repository is the persistence contract for accounts.
type Repository interface {
	// FindByID returns a single account, or dberr.ErrNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// Upsert inserts the account keyed by its Google subject, or refreshes
	// the mutable profile fields of an existing one. The stored row's id,
	// role, and timestamps are written back into u.
	Upsert(ctx context.Context, u *User) error

	// SetRole updates an existing account's role.
	SetRole(ctx context.Context, id string, role sec.UserRole) error
}

// SessionRepository stores active sessions keyed by hashed token.
type SessionRepository interface {
	// Save records a session under the token for the given lifetime.
	Save(ctx context.Context, token string, claims *sec.SessionClaims, ttl time.Duration) error

	// Find resolves a token, or returns dberr.ErrNotFound for unknown and
	// expired tokens.
	Find(ctx context.Context, token string) (*sec.SessionClaims, error)

	// Revoke removes a session; revoking an unknown token is not an error.
	Revoke(ctx context.Context, token string) error
}
