// Copyright (c) 2026 Openshelf. All rights reserved.

package entityid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openshelf/openshelf/internal/platform/apperr"
	"github.com/openshelf/openshelf/pkg/entityid"
)

/*
TestNew verifies the format of freshly generated ids and that consecutive
generations never collide.
*/
func TestNew(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := entityid.New()

		assert.Len(t, id, entityid.Length)
		assert.True(t, entityid.IsValid(id))
		assert.False(t, seen[id], "generated a duplicate id: %s", id)
		seen[id] = true
	}
}

/*
TestIsValid covers the format gate's accept and reject sets.
*/
func TestIsValid(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"well_formed", "507f1f77bcf86cd799439011", true},
		{"all_zero", "000000000000000000000000", true},
		{"too_short", "507f1f77bcf86cd79943901", false},
		{"too_long", "507f1f77bcf86cd7994390111", false},
		{"uppercase", "507F1F77BCF86CD799439011", false},
		{"non_hex", "507f1f77bcf86cd79943901g", false},
		{"empty", "", false},
		{"whitespace_padded", " 507f1f77bcf86cd799439011", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, entityid.IsValid(tt.value))
		})
	}
}

/*
TestValidate verifies the INVALID_IDENTIFIER error names the offending
parameter.
*/
func TestValidate(t *testing.T) {
	assert.NoError(t, entityid.Validate("id", "507f1f77bcf86cd799439011"))

	err := entityid.Validate("categoryID", "not-an-id")
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "INVALID_IDENTIFIER", ae.Code)
	require.Len(t, ae.Details, 1)
	assert.Equal(t, "categoryID", ae.Details[0].Field)
}
