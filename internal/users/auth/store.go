// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/codetrack/pkg/pagination"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Username and email lookups are case-insensitive. Missing rows are reported
// as [dberr.ErrNotFound]; duplicate usernames or emails as [dberr.ErrConflict].
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity with roles
		  - error: dberr.ErrNotFound
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - context: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity with roles
		  - error: dberr.ErrNotFound
	*/
	FindByUsername(context context.Context, username string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity with roles
		  - error: dberr.ErrNotFound
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	// ExistsByUsername reports whether the username is taken.
	ExistsByUsername(context context.Context, username string) (bool, error)

	// ExistsByEmail reports whether the email is registered.
	ExistsByEmail(context context.Context, email string) (bool, error)

	/*
		Create persists a new account together with its roles.

		Parameters:
		  - context: context.Context
		  - user: *User (validated, timestamps stamped by the store)

		Returns:
		  - error: dberr.ErrConflict on a duplicate username or email
	*/
	Create(context context.Context, user *User) error

	/*
		Update saves the mutable fields of an account and replaces its roles.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: dberr.ErrNotFound, dberr.ErrConflict
	*/
	Update(context context.Context, user *User) error

	/*
		Delete removes an account and its roles.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: dberr.ErrNotFound
	*/
	Delete(context context.Context, id string) error

	/*
		List returns one page of accounts ordered by creation time.

		Returns:
		  - []*User: the page
		  - int: total number of accounts
		  - error: Database retrieval failures
	*/
	List(context context.Context, params pagination.Params) ([]*User, int, error)
}

// # Volatile Data Access

// RefreshTokenRepository stores refresh tokens by hash. Tokens are single-use.
type RefreshTokenRepository interface {

	/*
		Save stores tokenHash for userID until ttl elapses.

		Parameters:
		  - context: context.Context
		  - tokenHash: string (see sec.HashToken)
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Save(context context.Context, tokenHash, userID string, ttl time.Duration) error

	/*
		Consume atomically reads and deletes a token.

		Returns:
		  - string: the owning userID
		  - error: dberr.ErrNotFound if the token is unknown, expired or used
	*/
	Consume(context context.Context, tokenHash string) (string, error)

	// Revoke deletes one token. Unknown tokens are ignored.
	Revoke(context context.Context, tokenHash string) error

	// RevokeAll deletes every token issued to userID.
	RevokeAll(context context.Context, userID string) error
}
