// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management for signed-in users.

It lets users view and update their own identity data, check whether a
username or email is still free, and delete their account together with
everything they own. Administrators can list all accounts.

# Architecture

  - Domain: This package depends on the auth package for the User entity.
  - Cascade: Account deletion removes coding sessions and revokes refresh tokens.
*/
package account

import (
	"context"
)

// # Collaborator Contracts

// SessionCleaner removes the coding sessions of an account.
type SessionCleaner interface {
	DeleteUserSessions(context context.Context, userID string) (int64, error)
}

// TokenRevoker revokes every refresh token of an account.
type TokenRevoker interface {
	LogoutAll(context context.Context, userID string) error
}

// # Views

// Availability reports which of the requested identifiers are still free.
// A nil field means that identifier was not asked about.
type Availability struct {
	Username *bool `json:"username_available,omitempty"`
	Email    *bool `json:"email_available,omitempty"`
}

// # Field Identifiers

const (
	FieldEmail           = "email"
	FieldUsername        = "username"
	FieldPassword        = "password"
	FieldCurrentPassword = "current_password"
)
