// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package uuid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/codetrack/pkg/uuid"
)

/*
TestNew_TimeOrdered checks that consecutive IDs are valid and sort by creation.
*/
func TestNew_TimeOrdered(t *testing.T) {
	first := uuid.New()
	second := uuid.New()

	assert.True(t, uuid.IsValid(first))
	assert.Less(t, first, second)
}

/*
TestNormalize lowercases valid input and rejects garbage.
*/
func TestNormalize(t *testing.T) {
	got, ok := uuid.Normalize("0192F0C4-6A2B-7C3D-8E4F-123456789ABC")
	assert.True(t, ok)
	assert.Equal(t, "0192f0c4-6a2b-7c3d-8e4f-123456789abc", got)

	_, ok = uuid.Normalize("not-a-uuid")
	assert.False(t, ok)
	assert.False(t, uuid.IsValid(""))
}
