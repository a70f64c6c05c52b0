// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

// # Fakes

// memoryRepository is an in-memory [session.Repository] with the same
// one-active-session guard as the real stores.
type memoryRepository struct {
	mu       sync.Mutex
	sessions map[string]session.CodingSession
	failWith error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{sessions: make(map[string]session.CodingSession)}
}

func (repo *memoryRepository) Create(_ context.Context, s *session.CodingSession) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	if repo.failWith != nil {
		return repo.failWith
	}
	for _, existing := range repo.sessions {
		if existing.UserID == s.UserID && existing.IsActive() && s.IsActive() {
			return dberr.ErrConflict
		}
	}
	repo.sessions[s.ID] = *s
	return nil
}

func (repo *memoryRepository) Transition(_ context.Context, s *session.CodingSession, from session.Status) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.sessions[s.ID]
	if !ok || stored.Status != from {
		return session.ErrStateChanged
	}
	repo.sessions[s.ID] = *s
	return nil
}

func (repo *memoryRepository) FindByID(_ context.Context, id string) (*session.CodingSession, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	stored, ok := repo.sessions[id]
	if !ok {
		return nil, dberr.ErrNotFound
	}
	return &stored, nil
}

func (repo *memoryRepository) filter(keep func(session.CodingSession) bool) []*session.CodingSession {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	out := make([]*session.CodingSession, 0)
	for _, stored := range repo.sessions {
		if keep(stored) {
			copied := stored
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartTime.After(out[j].StartTime)
	})
	return out
}

func (repo *memoryRepository) ListByUser(_ context.Context, userID string) ([]*session.CodingSession, error) {
	return repo.filter(func(s session.CodingSession) bool { return s.UserID == userID }), nil
}

func (repo *memoryRepository) ListByUserPaged(ctx context.Context, userID string, params pagination.Params) ([]*session.CodingSession, int, error) {
	all, _ := repo.ListByUser(ctx, userID)
	start := min(params.Offset(), len(all))
	end := min(start+params.Limit, len(all))
	return all[start:end], len(all), nil
}

func (repo *memoryRepository) ListByUserAndStatus(_ context.Context, userID string, status session.Status) ([]*session.CodingSession, error) {
	return repo.filter(func(s session.CodingSession) bool { return s.UserID == userID && s.Status == status }), nil
}

func (repo *memoryRepository) ListByUserAndStartBetween(_ context.Context, userID string, start, end time.Time) ([]*session.CodingSession, error) {
	out := repo.filter(func(s session.CodingSession) bool {
		return s.UserID == userID && !s.StartTime.Before(start) && !s.StartTime.After(end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (repo *memoryRepository) SumDurationByUserAndRange(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	inRange, _ := repo.ListByUserAndStartBetween(ctx, userID, start, end)
	var total int64
	for _, s := range inRange {
		if s.IsCompleted() {
			total += s.Minutes()
		}
	}
	return total, nil
}

func (repo *memoryRepository) FindMostRecentByUserAndStatus(ctx context.Context, userID string, status session.Status) (*session.CodingSession, error) {
	matches, _ := repo.ListByUserAndStatus(ctx, userID, status)
	if len(matches) == 0 {
		return nil, dberr.ErrNotFound
	}
	return matches[0], nil
}

func (repo *memoryRepository) DeleteByUser(_ context.Context, userID string) (int64, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var deleted int64
	for id, stored := range repo.sessions {
		if stored.UserID == userID {
			delete(repo.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}

// fakeClock returns a settable instant.
type fakeClock struct {
	now time.Time
}

func (clock *fakeClock) Now() time.Time { return clock.now }

func (clock *fakeClock) Advance(d time.Duration) { clock.now = clock.now.Add(d) }

var alice = session.Owner{ID: "0190a1b2-0000-7000-8000-000000000001", Username: "alice"}

func newTestService(t *testing.T, start time.Time) (*session.Service, *memoryRepository, *fakeClock) {
	t.Helper()

	repo := newMemoryRepository()
	clock := &fakeClock{now: start}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return session.NewService(repo, logger, session.WithClock(clock.Now)), repo, clock
}

// # Tests

/*
TestStartSession_CreatesInProgress checks the fields of a new session and
that blank labels are stored as null.
*/
func TestStartSession_CreatesInProgress(t *testing.T) {
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	service, _, _ := newTestService(t, start)

	created, err := service.StartSession(context.Background(), alice, session.StartInput{
		Description: "  refactor parser  ",
		ProjectName: "   ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, session.StatusInProgress, created.Status)
	assert.True(t, created.StartTime.Equal(start))
	assert.Nil(t, created.EndTime)
	assert.Nil(t, created.DurationMinutes)
	assert.Nil(t, created.ProjectName)
	require.NotNil(t, created.Description)
	assert.Equal(t, "refactor parser", *created.Description)
	assert.Equal(t, "alice", created.Username)
}

/*
TestStartSession_NormalizesLabels composes decomposed characters.
*/
func TestStartSession_NormalizesLabels(t *testing.T) {
	service, _, _ := newTestService(t, time.Now())

	created, err := service.StartSession(context.Background(), alice, session.StartInput{ProjectName: "cafe\u0301"})
	require.NoError(t, err)

	require.NotNil(t, created.ProjectName)
	assert.Equal(t, "caf\u00e9", *created.ProjectName)
}

/*
TestStartSession_Validation rejects over-long labels measured in characters.
*/
func TestStartSession_Validation(t *testing.T) {
	tests := []struct {
		name    string
		input   session.StartInput
		wantErr bool
	}{
		{"description_at_limit", session.StartInput{Description: strings.Repeat("é", session.MaxDescriptionLength)}, false},
		{"description_too_long", session.StartInput{Description: strings.Repeat("a", session.MaxDescriptionLength+1)}, true},
		{"project_at_limit", session.StartInput{ProjectName: strings.Repeat("ß", session.MaxProjectNameLength)}, false},
		{"project_too_long", session.StartInput{ProjectName: strings.Repeat("p", session.MaxProjectNameLength+1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, _, _ := newTestService(t, time.Now())

			_, err := service.StartSession(context.Background(), alice, tt.input)
			if tt.wantErr {
				assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestStartSession_ConflictWhenActive starts twice without ending the first
session; the store must still hold exactly one IN_PROGRESS session.
*/
func TestStartSession_ConflictWhenActive(t *testing.T) {
	service, repo, _ := newTestService(t, time.Now())
	ctx := context.Background()

	_, err := service.StartSession(ctx, alice, session.StartInput{ProjectName: "codetrack"})
	require.NoError(t, err)

	_, err = service.StartSession(ctx, alice, session.StartInput{ProjectName: "other"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	active, err := repo.ListByUserAndStatus(ctx, alice.ID, session.StatusInProgress)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

/*
TestStartSession_StoreConflict maps a unique-index violation to Conflict.
*/
func TestStartSession_StoreConflict(t *testing.T) {
	service, repo, _ := newTestService(t, time.Now())
	repo.failWith = dberr.ErrConflict

	_, err := service.StartSession(context.Background(), alice, session.StartInput{})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

/*
TestEndSession_ComputesDuration covers the 09:00 to 10:30 example.
*/
func TestEndSession_ComputesDuration(t *testing.T) {
	service, _, clock := newTestService(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	started, err := service.StartSession(ctx, alice, session.StartInput{ProjectName: "codetrack"})
	require.NoError(t, err)

	clock.Advance(90*time.Minute + 59*time.Second)

	ended, err := service.EndSession(ctx, started.ID)
	require.NoError(t, err)

	assert.Equal(t, session.StatusCompleted, ended.Status)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, int64(90), *ended.DurationMinutes)
	require.NotNil(t, ended.EndTime)
	assert.False(t, ended.EndTime.Before(ended.StartTime))
	assert.Equal(t, session.WholeMinutes(ended.StartTime, *ended.EndTime), *ended.DurationMinutes)
}

/*
TestEndSession_ClockBehindStart never produces a negative duration.
*/
func TestEndSession_ClockBehindStart(t *testing.T) {
	service, _, clock := newTestService(t, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	started, err := service.StartSession(ctx, alice, session.StartInput{})
	require.NoError(t, err)

	clock.Advance(-time.Hour)

	ended, err := service.EndSession(ctx, started.ID)
	require.NoError(t, err)
	assert.True(t, ended.EndTime.Equal(ended.StartTime))
	assert.Equal(t, int64(0), *ended.DurationMinutes)
}

/*
TestEndSession_Errors covers missing and already-finished sessions.
*/
func TestEndSession_Errors(t *testing.T) {
	service, _, _ := newTestService(t, time.Now())
	ctx := context.Background()

	_, err := service.EndSession(ctx, "0190a1b2-0000-7000-8000-00000000dead")
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	started, err := service.StartSession(ctx, alice, session.StartInput{})
	require.NoError(t, err)
	_, err = service.EndSession(ctx, started.ID)
	require.NoError(t, err)

	_, err = service.EndSession(ctx, started.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))

	_, err = service.CancelSession(ctx, started.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))
}

/*
TestCancelSession_NoDuration leaves the duration unset and frees the slot
for a new session.
*/
func TestCancelSession_NoDuration(t *testing.T) {
	service, _, clock := newTestService(t, time.Now())
	ctx := context.Background()

	started, err := service.StartSession(ctx, alice, session.StartInput{})
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	cancelled, err := service.CancelSession(ctx, started.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.DurationMinutes)
	assert.NotNil(t, cancelled.EndTime)

	_, err = service.EndSession(ctx, started.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidState))

	_, err = service.StartSession(ctx, alice, session.StartInput{})
	assert.NoError(t, err)
}

/*
TestGetCurrentSession_RoundTrip returns the just-started session and nil
once it has ended.
*/
func TestGetCurrentSession_RoundTrip(t *testing.T) {
	service, _, _ := newTestService(t, time.Now())
	ctx := context.Background()

	none, err := service.GetCurrentSession(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	started, err := service.StartSession(ctx, alice, session.StartInput{})
	require.NoError(t, err)

	current, err := service.GetCurrentSession(ctx, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, current)
	assert.Equal(t, started.ID, current.ID)

	_, err = service.EndSession(ctx, started.ID)
	require.NoError(t, err)

	current, err = service.GetCurrentSession(ctx, alice.ID)
	require.NoError(t, err)
	assert.Nil(t, current)
}

/*
TestGetSession_Idempotent returns equal snapshots without mutation.
*/
func TestGetSession_Idempotent(t *testing.T) {
	service, _, _ := newTestService(t, time.Now())
	ctx := context.Background()

	started, err := service.StartSession(ctx, alice, session.StartInput{Description: "docs"})
	require.NoError(t, err)

	first, err := service.GetSession(ctx, started.ID)
	require.NoError(t, err)
	second, err := service.GetSession(ctx, started.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

/*
TestCalculateTotalCodingTime sums only COMPLETED sessions inside the range.
*/
func TestCalculateTotalCodingTime(t *testing.T) {
	day := time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC)
	service, _, clock := newTestService(t, day)
	ctx := context.Background()

	run := func(minutes int, cancel bool) {
		started, err := service.StartSession(ctx, alice, session.StartInput{})
		require.NoError(t, err)
		clock.Advance(time.Duration(minutes) * time.Minute)
		if cancel {
			_, err = service.CancelSession(ctx, started.ID)
		} else {
			_, err = service.EndSession(ctx, started.ID)
		}
		require.NoError(t, err)
		clock.Advance(time.Hour)
	}

	run(30, false)
	run(45, false)
	run(60, true)

	total, err := service.CalculateTotalCodingTime(ctx, alice.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(75), total)

	total, err = service.CalculateTotalCodingTime(ctx, alice.ID, day.Add(-48*time.Hour), day.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, total)

	_, err = service.CalculateTotalCodingTime(ctx, alice.ID, day, day.Add(-time.Second))
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	inRange, err := service.GetSessionsByDateRange(ctx, alice.ID, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, inRange, 3)
	assert.True(t, inRange[0].StartTime.Before(inRange[2].StartTime))
}

/*
TestGetUserSessions_Paged orders newest first and reports the total.
*/
func TestGetUserSessions_Paged(t *testing.T) {
	service, _, clock := newTestService(t, time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	var ids []string
	for range 5 {
		started, err := service.StartSession(ctx, alice, session.StartInput{})
		require.NoError(t, err)
		_, err = service.EndSession(ctx, started.ID)
		require.NoError(t, err)
		ids = append(ids, started.ID)
		clock.Advance(time.Hour)
	}

	page, total, err := service.GetUserSessions(ctx, alice.ID, pagination.New(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, ids[4], page[0].ID)
	assert.Equal(t, ids[3], page[1].ID)

	page, _, err = service.GetUserSessions(ctx, alice.ID, pagination.New(3, 2))
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, ids[0], page[0].ID)

	deleted, err := service.DeleteUserSessions(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}

/*
TestFormatDuration renders hours and minutes.
*/
func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0h 0m", session.FormatDuration(0))
	assert.Equal(t, "1h 30m", session.FormatDuration(90))
	assert.Equal(t, "25h 5m", session.FormatDuration(1505))

	view := session.NewView(&session.CodingSession{Status: session.StatusInProgress})
	assert.Nil(t, view.FormattedDuration)
}
