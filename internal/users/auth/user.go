// Package auth implements sign-in with the Google identity provider,
// account provisioning, and opaque-token session management.
package auth

import (
	"time"

	"github.com/openshelf/openshelf/internal/platform/sec"
)

// User is a provisioned account. Accounts are created on first sign-in from
// the identity provider's profile; there are no passwords.
type User struct {
	ID          string       `json:"id"`
	GoogleID    string       `json:"-"`
	Email       string       `json:"email"`
	DisplayName string       `json:"displayName"`
	AvatarURL   string       `json:"avatarUrl,omitempty"`
	Role        sec.UserRole `json:"role"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Status is the shape of the public session-status probe.
type Status struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}
