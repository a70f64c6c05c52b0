// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"slices"
	"strings"
)

// # User Roles

// UserRole represents an authorization grant held by an account.
// An account holds a set of roles rather than a single level.
type UserRole string

const (
	// Default role for every registered developer
	RoleUser UserRole = "USER"

	// Access to user administration endpoints
	RoleAdmin UserRole = "ADMIN"
)

// FullName returns the prefixed authority name (e.g. "ROLE_USER").
func (r UserRole) FullName() string {
	return "ROLE_" + string(r)
}

// IsValid reports whether r is one of the known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// ParseRole converts a raw role name into a [UserRole].
// Both "ADMIN" and "ROLE_ADMIN" are accepted.
func ParseRole(raw string) (UserRole, bool) {
	role := UserRole(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "ROLE_"))
	return role, role.IsValid()
}

// # Claims Helpers

// HasRole reports whether the claims grant the given role.
func (c *AuthClaims) HasRole(role UserRole) bool {
	if c == nil {
		return false
	}
	return slices.Contains(c.Roles, string(role))
}
