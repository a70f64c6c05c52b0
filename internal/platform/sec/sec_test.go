// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/platform/sec"
)

func newTestTokenService(t *testing.T, issuer string) *sec.TokenService {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return sec.NewTokenServiceFromKeys(key, &key.PublicKey, issuer)
}

/*
TestTokenService_RoundTrip signs an access token and reads the claims back.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTestTokenService(t, "codetrack.dev")

	token, err := service.GenerateAccessToken("u-1", "ada", []string{"USER", "ADMIN"}, time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.True(t, claims.HasRole(sec.RoleAdmin))
	assert.True(t, claims.HasRole(sec.RoleUser))
}

/*
TestTokenService_Rejects covers expired tokens, foreign keys and wrong issuers.
*/
func TestTokenService_Rejects(t *testing.T) {
	service := newTestTokenService(t, "codetrack.dev")

	t.Run("expired", func(t *testing.T) {
		token, err := service.GenerateAccessToken("u-1", "ada", nil, -time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("foreign_key", func(t *testing.T) {
		other := newTestTokenService(t, "codetrack.dev")
		token, err := other.GenerateAccessToken("u-1", "ada", nil, time.Minute)
		require.NoError(t, err)
		_, err = service.VerifyToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.VerifyToken("not.a.jwt")
		assert.Error(t, err)
	})
}

/*
TestPasswordHash checks bcrypt hashing and the empty hash guard.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, sec.CheckPasswordHash("correct horse", hash))
	assert.False(t, sec.CheckPasswordHash("battery staple", hash))
	assert.False(t, sec.CheckPasswordHash("anything", ""))

	_, err = sec.HashPassword(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, sec.ErrPasswordTooLong)
}

/*
TestSecureToken ensures tokens are random and hashes are stable.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken()
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.Len(t, sec.HashToken(first), 64)
}

/*
TestParseRole accepts bare and prefixed names.
*/
func TestParseRole(t *testing.T) {
	tests := []struct {
		raw   string
		want  sec.UserRole
		valid bool
	}{
		{"USER", sec.RoleUser, true},
		{"ROLE_ADMIN", sec.RoleAdmin, true},
		{"admin", sec.RoleAdmin, true},
		{"moderator", "MODERATOR", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			role, ok := sec.ParseRole(tt.raw)
			assert.Equal(t, tt.want, role)
			assert.Equal(t, tt.valid, ok)
		})
	}

	assert.Equal(t, "ROLE_USER", sec.RoleUser.FullName())
}
