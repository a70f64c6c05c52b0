// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/sqlite"
	"github.com/taibuivan/codetrack/internal/users/auth"
	"github.com/taibuivan/codetrack/pkg/daterange"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/pointer"
	"github.com/taibuivan/codetrack/pkg/uuid"
)

type sqliteFixture struct {
	repo  *session.SQLiteRepository
	users *auth.SQLiteUserRepository
}

func newSQLiteFixture(t *testing.T) *sqliteFixture {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.Open(ctx, sqlite.MemoryPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close(db) })

	users := auth.NewSQLiteUserRepository(db)
	require.NoError(t, users.Migrate(ctx))

	repo := session.NewSQLiteRepository(db)
	require.NoError(t, repo.Migrate(ctx))

	return &sqliteFixture{repo: repo, users: users}
}

func (fixture *sqliteFixture) account(t *testing.T, username string) string {
	t.Helper()

	user := &auth.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "$2a$10$hash",
		IsActive:     true,
		Roles:        []sec.UserRole{sec.RoleUser},
	}
	require.NoError(t, fixture.users.Create(context.Background(), user))
	return user.ID
}

func completedAt(userID string, start time.Time, minutes int64, project string) *session.CodingSession {
	end := start.Add(time.Duration(minutes) * time.Minute)
	return &session.CodingSession{
		ID:              uuid.New(),
		UserID:          userID,
		StartTime:       start,
		EndTime:         &end,
		ProjectName:     pointer.NonEmpty(project),
		Status:          session.StatusCompleted,
		DurationMinutes: &minutes,
	}
}

/*
TestSQLiteRepository_CreateAndFind round-trips a session and resolves the
owner's username through the join.
*/
func TestSQLiteRepository_CreateAndFind(t *testing.T) {
	fixture := newSQLiteFixture(t)
	ctx := context.Background()
	userID := fixture.account(t, "alice")

	start := time.Date(2024, 1, 1, 9, 0, 0, 123456000, time.UTC)
	created := &session.CodingSession{
		ID:          uuid.New(),
		UserID:      userID,
		StartTime:   start,
		Description: pointer.To("parser work"),
		Status:      session.StatusInProgress,
	}
	require.NoError(t, fixture.repo.Create(ctx, created))

	loaded, err := fixture.repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", loaded.Username)
	assert.Equal(t, userID, loaded.UserID)
	assert.True(t, loaded.StartTime.Equal(start))
	assert.Equal(t, session.StatusInProgress, loaded.Status)
	assert.Nil(t, loaded.EndTime)
	assert.Nil(t, loaded.ProjectName)
	assert.Equal(t, "parser work", pointer.Val(loaded.Description))

	_, err = fixture.repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, dberr.ErrNotFound)
}

/*
TestSQLiteRepository_OneActivePerAccount relies on the partial unique index.
*/
func TestSQLiteRepository_OneActivePerAccount(t *testing.T) {
	fixture := newSQLiteFixture(t)
	ctx := context.Background()
	alice := fixture.account(t, "alice")
	bob := fixture.account(t, "bob")

	active := func(userID string) *session.CodingSession {
		return &session.CodingSession{ID: uuid.New(), UserID: userID, StartTime: time.Now().UTC(), Status: session.StatusInProgress}
	}

	require.NoError(t, fixture.repo.Create(ctx, active(alice)))
	assert.ErrorIs(t, fixture.repo.Create(ctx, active(alice)), dberr.ErrConflict)
	require.NoError(t, fixture.repo.Create(ctx, active(bob)))

	require.NoError(t, fixture.repo.Create(ctx, completedAt(alice, time.Now().UTC().Add(-time.Hour), 30, "")))
}

/*
TestSQLiteRepository_Transition is a compare-and-set on the status.
*/
func TestSQLiteRepository_Transition(t *testing.T) {
	fixture := newSQLiteFixture(t)
	ctx := context.Background()
	userID := fixture.account(t, "alice")

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	running := &session.CodingSession{ID: uuid.New(), UserID: userID, StartTime: start, Status: session.StatusInProgress}
	require.NoError(t, fixture.repo.Create(ctx, running))

	end := start.Add(90 * time.Minute)
	minutes := int64(90)
	running.EndTime = &end
	running.Status = session.StatusCompleted
	running.DurationMinutes = &minutes
	require.NoError(t, fixture.repo.Transition(ctx, running, session.StatusInProgress))

	loaded, err := fixture.repo.FindByID(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCompleted, loaded.Status)
	assert.Equal(t, int64(90), loaded.Minutes())
	require.NotNil(t, loaded.EndTime)
	assert.True(t, loaded.EndTime.Equal(end))

	running.Status = session.StatusCancelled
	assert.ErrorIs(t, fixture.repo.Transition(ctx, running, session.StatusInProgress), session.ErrStateChanged)
}

/*
TestSQLiteRepository_Queries covers ordering, range bounds, sums and paging.
*/
func TestSQLiteRepository_Queries(t *testing.T) {
	fixture := newSQLiteFixture(t)
	ctx := context.Background()
	alice := fixture.account(t, "alice")
	bob := fixture.account(t, "bob")

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	first := completedAt(alice, day.Add(9*time.Hour), 30, "codetrack")
	second := completedAt(alice, day.Add(13*time.Hour), 45, "codetrack")
	previous := completedAt(alice, day.Add(-2*time.Hour), 60, "other")
	cancelled := &session.CodingSession{
		ID: uuid.New(), UserID: alice, StartTime: day.Add(15 * time.Hour),
		EndTime: pointer.To(day.Add(16 * time.Hour)), Status: session.StatusCancelled,
	}
	foreign := completedAt(bob, day.Add(10*time.Hour), 120, "codetrack")

	for _, s := range []*session.CodingSession{first, second, previous, cancelled, foreign} {
		require.NoError(t, fixture.repo.Create(ctx, s))
	}

	all, err := fixture.repo.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, cancelled.ID, all[0].ID)
	assert.Equal(t, previous.ID, all[3].ID)

	dayEnd := day.Add(24*time.Hour - time.Microsecond)
	between, err := fixture.repo.ListByUserAndStartBetween(ctx, alice, day, dayEnd)
	require.NoError(t, err)
	require.Len(t, between, 3)
	assert.Equal(t, first.ID, between[0].ID)
	assert.Equal(t, cancelled.ID, between[2].ID)

	inclusive, err := fixture.repo.ListByUserAndStartBetween(ctx, alice, first.StartTime, first.StartTime)
	require.NoError(t, err)
	assert.Len(t, inclusive, 1)

	total, err := fixture.repo.SumDurationByUserAndRange(ctx, alice, day, dayEnd)
	require.NoError(t, err)
	assert.Equal(t, int64(75), total)

	empty, err := fixture.repo.SumDurationByUserAndRange(ctx, alice, day.AddDate(1, 0, 0), day.AddDate(1, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, empty)

	completed, err := fixture.repo.ListByUserAndStatus(ctx, alice, session.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, completed, 3)

	recent, err := fixture.repo.FindMostRecentByUserAndStatus(ctx, alice, session.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, second.ID, recent.ID)

	_, err = fixture.repo.FindMostRecentByUserAndStatus(ctx, alice, session.StatusInProgress)
	assert.ErrorIs(t, err, dberr.ErrNotFound)

	page, count, err := fixture.repo.ListByUserPaged(ctx, alice, pagination.New(2, 3))
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.Len(t, page, 1)
	assert.Equal(t, previous.ID, page[0].ID)

	deleted, err := fixture.repo.DeleteByUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(4), deleted)

	remaining, err := fixture.repo.ListByUser(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}

/*
TestSQLiteRepository_DayBoundsKeepLastInstant finds a session started in the
final millisecond of a day through that day's bounds.
*/
func TestSQLiteRepository_DayBoundsKeepLastInstant(t *testing.T) {
	fixture := newSQLiteFixture(t)
	ctx := context.Background()
	alice := fixture.account(t, "alice")

	day := civil.Date{Year: 2024, Month: 3, Day: 10}
	late := completedAt(alice, time.Date(2024, 3, 10, 23, 59, 59, 999_500_000, time.UTC), 10, "codetrack")
	next := completedAt(alice, daterange.StartOfDay(day.AddDays(1), time.UTC), 20, "codetrack")
	require.NoError(t, fixture.repo.Create(ctx, late))
	require.NoError(t, fixture.repo.Create(ctx, next))

	start, end := daterange.Range{From: day, To: day}.Bounds(time.UTC)

	between, err := fixture.repo.ListByUserAndStartBetween(ctx, alice, start, end)
	require.NoError(t, err)
	require.Len(t, between, 1)
	assert.Equal(t, late.ID, between[0].ID)
	assert.True(t, late.StartTime.Equal(between[0].StartTime))

	total, err := fixture.repo.SumDurationByUserAndRange(ctx, alice, start, end)
	require.NoError(t, err)
	assert.Equal(t, int64(10), total)
}
