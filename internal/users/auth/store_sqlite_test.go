// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/sqlite"
	"github.com/taibuivan/codetrack/internal/users/auth"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/uuid"
)

func newUserRepository(t *testing.T) *auth.SQLiteUserRepository {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	repo := auth.NewSQLiteUserRepository(db)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func newUser(username string) *auth.User {
	return &auth.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		Roles:        []sec.UserRole{sec.RoleUser},
	}
}

/*
TestSQLiteUserRepository_CreateAndFind covers every lookup, including the
case-insensitive ones.
*/
func TestSQLiteUserRepository_CreateAndFind(t *testing.T) {
	repo := newUserRepository(t)
	ctx := context.Background()

	user := newUser("Alice")
	require.NoError(t, repo.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", byID.Username)
	assert.Equal(t, []sec.UserRole{sec.RoleUser}, byID.Roles)
	assert.Equal(t, user.PasswordHash, byID.PasswordHash)
	assert.True(t, byID.IsActive)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "ALICE@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	exists, err := repo.ExistsByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestSQLiteUserRepository_Conflicts rejects usernames and emails that differ
only in case.
*/
func TestSQLiteUserRepository_Conflicts(t *testing.T) {
	repo := newUserRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newUser("alice")))

	sameName := newUser("ALICE")
	sameName.Email = "other@example.com"
	assert.ErrorIs(t, repo.Create(ctx, sameName), dberr.ErrConflict)

	sameEmail := newUser("bob")
	sameEmail.Email = "Alice@Example.com"
	assert.ErrorIs(t, repo.Create(ctx, sameEmail), dberr.ErrConflict)
}

/*
TestSQLiteUserRepository_PasswordRequired refuses a local account without a
password hash but accepts an OAuth2 identity.
*/
func TestSQLiteUserRepository_PasswordRequired(t *testing.T) {
	repo := newUserRepository(t)
	ctx := context.Background()

	local := newUser("local")
	local.PasswordHash = ""
	assert.True(t, apperr.HasCode(repo.Create(ctx, local), apperr.CodeValidation))

	oauth := newUser("oauth")
	oauth.PasswordHash = ""
	oauth.IsOAuth2User = true
	require.NoError(t, repo.Create(ctx, oauth))

	loaded, err := repo.FindByID(ctx, oauth.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.PasswordHash)
	assert.True(t, loaded.IsOAuth2User)
}

/*
TestSQLiteUserRepository_UpdateRoles replaces the role set and the mutable
fields.
*/
func TestSQLiteUserRepository_UpdateRoles(t *testing.T) {
	repo := newUserRepository(t)
	ctx := context.Background()

	user := newUser("carol")
	require.NoError(t, repo.Create(ctx, user))

	user.AddRole(sec.RoleAdmin)
	user.AddRole(sec.RoleAdmin)
	user.Email = "carol@codetrack.dev"
	user.IsActive = false
	require.NoError(t, repo.Update(ctx, user))

	loaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []sec.UserRole{sec.RoleUser, sec.RoleAdmin}, loaded.Roles)
	assert.Equal(t, "carol@codetrack.dev", loaded.Email)
	assert.False(t, loaded.IsActive)

	loaded.RemoveRole(sec.RoleUser)
	require.NoError(t, repo.Update(ctx, loaded))

	loaded, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []sec.UserRole{sec.RoleAdmin}, loaded.Roles)

	missing := newUser("ghost")
	assert.ErrorIs(t, repo.Update(ctx, missing), dberr.ErrNotFound)
}

/*
TestSQLiteUserRepository_DeleteAndList removes an account with its roles and
pages through the rest.
*/
func TestSQLiteUserRepository_DeleteAndList(t *testing.T) {
	repo := newUserRepository(t)
	ctx := context.Background()

	names := []string{"dave", "erin", "frank"}
	for _, name := range names {
		require.NoError(t, repo.Create(ctx, newUser(name)))
	}

	page, total, err := repo.List(ctx, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, page, 2)

	require.NoError(t, repo.Delete(ctx, page[0].ID))
	assert.ErrorIs(t, repo.Delete(ctx, page[0].ID), dberr.ErrNotFound)

	_, total, err = repo.List(ctx, pagination.New(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
