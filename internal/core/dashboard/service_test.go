// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/core/dashboard"
	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/constants"
	"github.com/taibuivan/codetrack/pkg/daterange"
)

// # Fakes

// stubReader serves a fixed slice of sessions with the store's ordering.
type stubReader struct {
	sessions []*session.CodingSession
	failWith error
}

func (reader *stubReader) matching(keep func(*session.CodingSession) bool) ([]*session.CodingSession, error) {
	if reader.failWith != nil {
		return nil, reader.failWith
	}

	out := make([]*session.CodingSession, 0)
	for _, s := range reader.sessions {
		if keep(s) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (reader *stubReader) ListByUser(_ context.Context, userID string) ([]*session.CodingSession, error) {
	return reader.matching(func(s *session.CodingSession) bool { return s.UserID == userID })
}

func (reader *stubReader) ListByUserAndStatus(_ context.Context, userID string, status session.Status) ([]*session.CodingSession, error) {
	return reader.matching(func(s *session.CodingSession) bool { return s.UserID == userID && s.Status == status })
}

func (reader *stubReader) ListByUserAndStartBetween(_ context.Context, userID string, start, end time.Time) ([]*session.CodingSession, error) {
	out, err := reader.matching(func(s *session.CodingSession) bool {
		return s.UserID == userID && !s.StartTime.Before(start) && !s.StartTime.After(end)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, err
}

// history is a week of activity ending on Sunday 2024-03-10.
func history() []*session.CodingSession {
	return []*session.CodingSession{
		done("s1", "api", at(10, 9, 0), 60),
		done("s2", "api", at(9, 9, 30), 30),
		done("s3", "", at(8, 14, 0), 45),
		cancelled("s4", "web", at(7, 10, 0)),
		done("s5", "web", time.Date(2024, 2, 28, 14, 10, 0, 0, time.UTC), 15),
		running("s6", "web", at(10, 14, 30)),
	}
}

func newDashboard(reader dashboard.SessionReader, now time.Time, location *time.Location) *dashboard.Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return dashboard.NewService(reader, logger, location, dashboard.WithClock(func() time.Time { return now }))
}

// # Composer

/*
TestGetDashboardStats_NoSessions returns a zero snapshot for a new user.
*/
func TestGetDashboardStats_NoSessions(t *testing.T) {
	service := newDashboard(&stubReader{}, at(10, 15, 0), time.UTC)

	stats, err := service.GetDashboardStats(context.Background(), owner)
	require.NoError(t, err)

	assert.Zero(t, stats.TotalSessions)
	assert.Zero(t, stats.TotalCodingTime)
	assert.Zero(t, stats.AverageSessionDuration)
	assert.Zero(t, stats.CurrentStreak)
	assert.Zero(t, stats.LongestStreak)
	assert.Zero(t, stats.CurrentMonthTotal)
	assert.Zero(t, stats.CurrentMonthDailyAverage)
	assert.Empty(t, stats.ProjectTimeDistribution)
	assert.Nil(t, stats.MostProductiveHour)
	assert.Len(t, stats.LastSevenDaysActivity, dashboard.RecentDays)

	current, err := service.CurrentStreak(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, current)

	longest, err := service.LongestStreak(context.Background(), owner)
	require.NoError(t, err)
	assert.Zero(t, longest)
}

/*
TestGetDashboardStats_History checks every figure of the snapshot.
*/
func TestGetDashboardStats_History(t *testing.T) {
	service := newDashboard(&stubReader{sessions: history()}, at(10, 15, 0), time.UTC)

	stats, err := service.GetDashboardStats(context.Background(), owner)
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalSessions)
	assert.Equal(t, int64(150), stats.TotalCodingTime)
	assert.Equal(t, int64(37), stats.AverageSessionDuration)

	// Completed days 8..10; the cancelled session on the 7th extends only the longest run.
	assert.Equal(t, int64(3), stats.CurrentStreak)
	assert.Equal(t, int64(4), stats.LongestStreak)

	assert.Equal(t, int64(135), stats.CurrentMonthTotal)
	assert.Equal(t, int64(13), stats.CurrentMonthDailyAverage)

	assert.Equal(t, map[string]int64{"api": 90, "web": 15, constants.UnspecifiedProject: 45}, stats.ProjectTimeDistribution)
	require.NotNil(t, stats.MostProductiveHour)
	assert.Equal(t, 9, *stats.MostProductiveHour)

	assert.Equal(t, []dashboard.DailyTotal{
		{Date: date(3, 4), Minutes: 0},
		{Date: date(3, 5), Minutes: 0},
		{Date: date(3, 6), Minutes: 0},
		{Date: date(3, 7), Minutes: 0},
		{Date: date(3, 8), Minutes: 45},
		{Date: date(3, 9), Minutes: 30},
		{Date: date(3, 10), Minutes: 60},
	}, stats.LastSevenDaysActivity)
}

/*
TestGetDashboardStats_StorageFailure propagates the store error.
*/
func TestGetDashboardStats_StorageFailure(t *testing.T) {
	boom := errors.New("connection reset")
	service := newDashboard(&stubReader{failWith: boom}, at(10, 15, 0), time.UTC)

	_, err := service.GetDashboardStats(context.Background(), owner)
	assert.ErrorIs(t, err, boom)
}

/*
TestOverview_CurrentSessionAndRecent assembles the landing payload.
*/
func TestOverview_CurrentSessionAndRecent(t *testing.T) {
	service := newDashboard(&stubReader{sessions: history()}, at(10, 15, 0), time.UTC)

	overview, err := service.Overview(context.Background(), owner)
	require.NoError(t, err)

	require.NotNil(t, overview.CurrentSession)
	assert.Equal(t, "s6", overview.CurrentSession.ID)
	assert.Equal(t, int64(4), overview.Stats.TotalSessions)

	require.Len(t, overview.RecentActivity, 4)
	assert.Equal(t, date(3, 10), overview.RecentActivity[0].Date)
	assert.Equal(t, date(3, 7), overview.RecentActivity[3].Date)
}

// # Aggregator

/*
TestRecentActivity_OmitsEmptyDays lists only dates with sessions, newest first.
*/
func TestRecentActivity_OmitsEmptyDays(t *testing.T) {
	service := newDashboard(&stubReader{sessions: history()}, at(10, 15, 0), time.UTC)

	recent, err := service.RecentActivity(context.Background(), owner)
	require.NoError(t, err)

	require.Len(t, recent, 4)
	assert.Equal(t, dashboard.DailyActivity{
		Date: date(3, 10), TotalMinutes: 60, SessionCount: 2, HasActivity: true, MainProject: "api",
	}, recent[0])
	assert.Equal(t, dashboard.DailyActivity{
		Date: date(3, 8), TotalMinutes: 45, SessionCount: 1, HasActivity: true, MainProject: constants.NoProject,
	}, recent[2])
	assert.Equal(t, dashboard.DailyActivity{
		Date: date(3, 7), TotalMinutes: 0, SessionCount: 1, HasActivity: false, MainProject: "web",
	}, recent[3])
}

/*
TestDetailedStats_Window keys activity by date and rejects inverted windows.
*/
func TestDetailedStats_Window(t *testing.T) {
	service := newDashboard(&stubReader{sessions: history()}, at(10, 15, 0), time.UTC)

	daily, err := service.DetailedStats(context.Background(), owner, daterange.Range{From: date(2, 28), To: date(3, 8)})
	require.NoError(t, err)
	assert.Len(t, daily, 3)
	assert.Equal(t, int64(15), daily[date(2, 28)].TotalMinutes)
	assert.NotContains(t, daily, date(3, 9))

	_, err = service.DetailedStats(context.Background(), owner, daterange.Range{From: date(3, 9), To: date(3, 1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = service.DetailedStats(context.Background(), owner, daterange.Range{From: civil.Date{}, To: date(3, 1)})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestDetailedStats_LastInstantOfDay keeps a session started in the final
millisecond of a day in that day's window.
*/
func TestDetailedStats_LastInstantOfDay(t *testing.T) {
	late := done("late", "api", time.Date(2024, 3, 10, 23, 59, 59, 999_500_000, time.UTC), 10)
	service := newDashboard(&stubReader{sessions: []*session.CodingSession{late}}, at(10, 23, 0), time.UTC)

	daily, err := service.DetailedStats(context.Background(), owner, daterange.Range{From: date(3, 10), To: date(3, 10)})
	require.NoError(t, err)
	assert.Equal(t, int64(10), daily[date(3, 10)].TotalMinutes)

	recent, err := service.RecentActivity(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, date(3, 10), recent[0].Date)
}

/*
TestProjectStats_OnlyNamedCompleted excludes unnamed and unfinished sessions.
*/
func TestProjectStats_OnlyNamedCompleted(t *testing.T) {
	reader := &stubReader{sessions: []*session.CodingSession{
		done("a", "codetrack", time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 90),
		done("b", "", at(1, 9, 0), 45),
		cancelled("c", "codetrack", at(2, 9, 0)),
	}}
	service := newDashboard(reader, at(10, 15, 0), time.UTC)

	projects, err := service.ProjectStats(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"codetrack": 90}, projects)
}

/*
TestStreaks_TimeZone shifts late evening UTC work onto the next local day.
*/
func TestStreaks_TimeZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	reader := &stubReader{sessions: []*session.CodingSession{
		done("a", "", at(9, 20, 0), 30), // 2024-03-10 05:00 in Tokyo
		done("b", "", at(9, 2, 0), 30),  // 2024-03-09 11:00 in Tokyo
	}}

	utc := newDashboard(reader, at(10, 1, 0), time.UTC)
	streak, err := utc.CurrentStreak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(0), streak)

	local := newDashboard(reader, at(10, 1, 0), tokyo)
	streak, err = local.CurrentStreak(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), streak)
}
