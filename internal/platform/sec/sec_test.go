// Copyright (c) 2026 Openshelf. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/platform/sec"
)

/*
TestStateSigner_RoundTrip verifies that a signed state carries the redirect
target through verification.
*/
func TestStateSigner_RoundTrip(t *testing.T) {
	signer := sec.NewStateSigner("test-secret-at-least-32-bytes-long", "openshelf.app", 10*time.Minute)

	state, err := signer.Sign("/books/507f1f77bcf86cd799439011")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	redirect, err := signer.Verify(state)
	require.NoError(t, err)
	assert.Equal(t, "/books/507f1f77bcf86cd799439011", redirect)
}

/*
TestStateSigner_Rejections covers tampered, expired, and cross-issuer states.
*/
func TestStateSigner_Rejections(t *testing.T) {
	secret := "test-secret-at-least-32-bytes-long"

	t.Run("tampered_token", func(t *testing.T) {
		signer := sec.NewStateSigner(secret, "openshelf.app", 10*time.Minute)
		state, err := signer.Sign("/")
		require.NoError(t, err)

		_, err = signer.Verify(state + "x")
		assert.Error(t, err)
	})

	t.Run("expired_token", func(t *testing.T) {
		signer := sec.NewStateSigner(secret, "openshelf.app", -1*time.Minute)
		state, err := signer.Sign("/")
		require.NoError(t, err)

		_, err = signer.Verify(state)
		assert.Error(t, err)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		signer := sec.NewStateSigner(secret, "openshelf.app", 10*time.Minute)
		state, err := signer.Sign("/")
		require.NoError(t, err)

		other := sec.NewStateSigner("a-different-secret-entirely-here", "openshelf.app", 10*time.Minute)
		_, err = other.Verify(state)
		assert.Error(t, err)
	})

	t.Run("wrong_issuer", func(t *testing.T) {
		signer := sec.NewStateSigner(secret, "not-openshelf", 10*time.Minute)
		state, err := signer.Sign("/")
		require.NoError(t, err)

		verifier := sec.NewStateSigner(secret, "openshelf.app", 10*time.Minute)
		_, err = verifier.Verify(state)
		assert.Error(t, err)
	})
}

/*
TestNewSessionToken verifies token length, uniqueness, and digest stability.
*/
func TestNewSessionToken(t *testing.T) {
	first, err := sec.NewSessionToken()
	require.NoError(t, err)
	second, err := sec.NewSessionToken()
	require.NoError(t, err)

	// 32 random bytes, hex encoded.
	assert.Len(t, first, sec.SessionTokenLength*2)
	assert.NotEqual(t, first, second)

	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))
	assert.NotEqual(t, first, sec.HashToken(first))
}

/*
TestUserRole_AtLeast covers the role hierarchy comparisons.
*/
func TestUserRole_AtLeast(t *testing.T) {
	tests := []struct {
		name   string
		role   sec.UserRole
		target sec.UserRole
		want   bool
	}{
		{"admin_meets_admin", sec.RoleAdmin, sec.RoleAdmin, true},
		{"admin_meets_member", sec.RoleAdmin, sec.RoleMember, true},
		{"member_meets_member", sec.RoleMember, sec.RoleMember, true},
		{"member_below_admin", sec.RoleMember, sec.RoleAdmin, false},
		{"unknown_below_member", sec.UserRole("ghost"), sec.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.AtLeast(tt.target))
		})
	}
}
