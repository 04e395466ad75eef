// Copyright (c) 2026 Openshelf. All rights reserved.

package pagination_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openshelf/openshelf/pkg/pagination"
)

/*
TestParams_Offset checks the page-to-offset arithmetic.
*/
func TestParams_Offset(t *testing.T) {
	tests := []struct {
		name   string
		page   int
		limit  int
		offset int
	}{
		{"first_page", 1, 10, 0},
		{"second_page", 2, 10, 10},
		{"large_page", 5, 25, 100},
		{"zero_page_clamps", 0, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := pagination.Params{Page: tt.page, Limit: tt.limit}
			assert.Equal(t, tt.offset, params.Offset())
		})
	}
}

/*
TestNewMeta checks total-page rounding across boundaries.
*/
func TestNewMeta(t *testing.T) {
	tests := []struct {
		name       string
		page       int
		limit      int
		total      int
		totalPages int
	}{
		{"exact_fit", 1, 10, 100, 10},
		{"partial_last_page", 1, 10, 101, 11},
		{"single_item", 1, 10, 1, 1},
		{"empty_result", 1, 10, 0, 0},
		{"zero_limit_guard", 1, 0, 50, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := pagination.NewMeta(tt.page, tt.limit, tt.total)

			assert.Equal(t, tt.page, meta.Page)
			assert.Equal(t, tt.limit, meta.Limit)
			assert.Equal(t, tt.total, meta.Total)
			assert.Equal(t, tt.totalPages, meta.TotalPages)
		})
	}
}
