// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the user directory and the authentication flow.

It owns the account entity, its role set and the stores behind it, plus the
register, login, refresh and logout use cases.

# Architecture

  - User: identity with a unique username and email and a set of roles.
  - UserRepository: PostgreSQL and SQLite implementations.
  - RefreshTokenRepository: rotating refresh tokens kept in Redis.
*/
package auth

import (
	"slices"
	"time"

	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/validate"
)

// # Domain Entities

// User is a registered CodeTrack account.
type User struct {
	ID           string         `json:"id"`
	Username     string         `json:"username"`
	Email        string         `json:"email"`
	PasswordHash string         `json:"-"`
	IsOAuth2User bool           `json:"is_oauth2_user"`
	IsActive     bool           `json:"is_active"`
	Roles        []sec.UserRole `json:"roles"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// HasRole reports whether the user holds role.
func (u *User) HasRole(role sec.UserRole) bool {
	return slices.Contains(u.Roles, role)
}

// AddRole grants role. Granting a held role is a no-op.
func (u *User) AddRole(role sec.UserRole) {
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}
}

// RemoveRole revokes role if held.
func (u *User) RemoveRole(role sec.UserRole) {
	u.Roles = slices.DeleteFunc(u.Roles, func(held sec.UserRole) bool { return held == role })
}

// RoleNames returns the roles as plain strings, sorted, for token claims.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		names = append(names, string(role))
	}
	slices.Sort(names)
	return names
}

// Validate checks the invariants every stored account must satisfy.
//
// A password hash is mandatory unless the identity comes from an OAuth2
// provider.
func (u *User) Validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldUsername, u.Username)
	validator.Required(FieldEmail, u.Email)
	validator.Custom(FieldPassword, !u.IsOAuth2User && u.PasswordHash == "", "Password is required")

	for _, role := range u.Roles {
		validator.Custom(FieldRoles, !role.IsValid(), "Unknown role "+string(role))
	}
	return validator.Err()
}

// touch stamps the audit timestamps before a write.
func (u *User) touch(now time.Time) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}

// # Field Identifiers

const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldLogin        = "login"
	FieldRoles        = "roles"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldExpiresIn    = "expires_in"
	FieldUser         = "user"
	FieldRefreshToken = "refresh_token"
)
