// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pagination_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/codetrack/pkg/pagination"
)

/*
TestFromRequest_Clamping parses query strings into bounded params.
*/
func TestFromRequest_Clamping(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  pagination.Params
	}{
		{"defaults", "", pagination.Params{Page: 1, Limit: 20}},
		{"explicit", "?page=3&limit=10", pagination.Params{Page: 3, Limit: 10}},
		{"negative_page", "?page=-2", pagination.Params{Page: 1, Limit: 20}},
		{"zero_limit", "?limit=0", pagination.Params{Page: 1, Limit: 20}},
		{"oversized_limit", "?limit=5000", pagination.Params{Page: 1, Limit: 100}},
		{"garbage", "?page=abc&limit=xyz", pagination.Params{Page: 1, Limit: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest("GET", "/sessions"+tt.query, nil)
			assert.Equal(t, tt.want, pagination.FromRequest(request))
		})
	}
}

/*
TestParams_OffsetAndMeta checks the SQL offset and the page count rounding.
*/
func TestParams_OffsetAndMeta(t *testing.T) {
	assert.Equal(t, 0, pagination.New(1, 10).Offset())
	assert.Equal(t, 20, pagination.New(3, 10).Offset())

	meta := pagination.NewMeta(2, 10, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 0, pagination.NewMeta(1, 10, 0).TotalPages)
}
