// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/daterange"
	"github.com/taibuivan/codetrack/pkg/slice"
)

// # Definitions & Constructors

// SessionReader is the read side of the session store used by the dashboard.
//
// [session.Repository] satisfies it.
type SessionReader interface {
	ListByUser(context context.Context, userID string) ([]*session.CodingSession, error)
	ListByUserAndStatus(context context.Context, userID string, status session.Status) ([]*session.CodingSession, error)
	ListByUserAndStartBetween(context context.Context, userID string, start, end time.Time) ([]*session.CodingSession, error)
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used to determine "today".
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// Service computes activity statistics from stored sessions.
type Service struct {
	sessions SessionReader
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
}

// NewService constructs a new [Service]. Calendar dates are cut in location.
func NewService(sessions SessionReader, logger *slog.Logger, location *time.Location, opts ...Option) *Service {
	service := &Service{
		sessions: sessions,
		logger:   logger,
		location: location,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Today returns the current calendar date in the configured zone.
func (service *Service) Today() civil.Date {
	return daterange.Today(service.now(), service.location)
}

// # Activity Aggregation

/*
RecentActivity summarizes the last seven days, today included.

Description: Only dates with at least one session appear, most recent first.

Returns:
  - []DailyActivity: at most seven entries
  - error: Storage failures
*/
func (service *Service) RecentActivity(context context.Context, userID string) ([]DailyActivity, error) {
	span := daterange.LastDays(service.Today(), RecentDays)

	daily, err := service.DetailedStats(context, userID, span)
	if err != nil {
		return nil, err
	}
	return Newest(daily), nil
}

/*
DetailedStats buckets the sessions started within span by date.

Parameters:
  - context: context.Context
  - userID: string
  - span: daterange.Range (inclusive)

Returns:
  - map[civil.Date]DailyActivity: one entry per date with sessions
  - error: Validation or storage errors
*/
func (service *Service) DetailedStats(context context.Context, userID string, span daterange.Range) (map[civil.Date]DailyActivity, error) {
	if err := validateRange(span); err != nil {
		return nil, err
	}

	start, end := span.Bounds(service.location)
	sessions, err := service.sessions.ListByUserAndStartBetween(context, userID, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("dashboard_service_detailed_stats_failed: %w", err)
	}

	return GroupByDate(sessions, service.location), nil
}

// ProjectStats returns COMPLETED minutes per named project.
func (service *Service) ProjectStats(context context.Context, userID string) (map[string]int64, error) {
	sessions, err := service.sessions.ListByUserAndStatus(context, userID, session.StatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("dashboard_service_project_stats_failed: %w", err)
	}
	return ProjectTotals(sessions), nil
}

// # Streaks

// CurrentStreak counts consecutive days, ending today, with a COMPLETED session.
func (service *Service) CurrentStreak(context context.Context, userID string) (int64, error) {
	sessions, err := service.sessions.ListByUserAndStatus(context, userID, session.StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("dashboard_service_current_streak_failed: %w", err)
	}
	return CurrentStreak(Days(sessions, service.location), service.Today()), nil
}

// LongestStreak returns the longest run of consecutive days with any session.
func (service *Service) LongestStreak(context context.Context, userID string) (int64, error) {
	sessions, err := service.sessions.ListByUser(context, userID)
	if err != nil {
		return 0, fmt.Errorf("dashboard_service_longest_streak_failed: %w", err)
	}
	return LongestStreak(Days(sessions, service.location), service.Today()), nil
}

// # Composition

/*
GetDashboardStats builds the full statistics snapshot of a user.

Description: The snapshot is computed from a single read of the user's
sessions, so all figures describe the same state.

Returns:
  - Stats: zero values when the user has no sessions
  - error: Storage failures
*/
func (service *Service) GetDashboardStats(context context.Context, userID string) (Stats, error) {
	sessions, err := service.sessions.ListByUser(context, userID)
	if err != nil {
		return Stats{}, fmt.Errorf("dashboard_service_stats_failed: %w", err)
	}

	stats := service.compose(sessions, service.now())

	service.logger.DebugContext(context, "dashboard_stats_composed",
		slog.String("user_id", userID),
		slog.Int("sessions", len(sessions)),
		slog.Int64("total_sessions", stats.TotalSessions),
	)
	return stats, nil
}

/*
Overview returns the dashboard landing payload: the stats snapshot, the
running session, and the recent activity list.
*/
func (service *Service) Overview(context context.Context, userID string) (Overview, error) {
	sessions, err := service.sessions.ListByUser(context, userID)
	if err != nil {
		return Overview{}, fmt.Errorf("dashboard_service_overview_failed: %w", err)
	}

	now := service.now()
	recent := daterange.LastDays(daterange.Today(now, service.location), RecentDays)

	overview := Overview{
		Stats: service.compose(sessions, now),
		RecentActivity: Newest(GroupByDate(
			slice.Filter(sessions, func(s *session.CodingSession) bool {
				return recent.Contains(daterange.DateOf(s.StartTime, service.location))
			}),
			service.location,
		)),
	}

	// ListByUser is newest first, so the first active session is the current one.
	for _, s := range sessions {
		if s.IsActive() {
			view := session.NewView(s)
			overview.CurrentSession = &view
			break
		}
	}
	return overview, nil
}

// compose derives every [Stats] figure from the full session history.
func (service *Service) compose(sessions []*session.CodingSession, now time.Time) Stats {

	// ── 1. Totals ───────────────────────────────────────────────────────
	done := completed(sessions)
	totalSessions := int64(len(done))
	totalMinutes := CompletedMinutes(done)

	var average int64
	if totalSessions > 0 {
		average = totalMinutes / totalSessions
	}

	// ── 2. Streaks ──────────────────────────────────────────────────────
	today := daterange.Today(now, service.location)
	current := CurrentStreak(Days(done, service.location), today)
	longest := LongestStreak(Days(sessions, service.location), today)

	// ── 3. Current month ────────────────────────────────────────────────
	monthStart := daterange.StartOfDay(daterange.StartOfMonth(today), service.location)
	monthMinutes := CompletedMinutes(slice.Filter(done, func(s *session.CodingSession) bool {
		return !s.StartTime.Before(monthStart) && !s.StartTime.After(now)
	}))

	return Stats{
		TotalSessions:            totalSessions,
		TotalCodingTime:          totalMinutes,
		AverageSessionDuration:   average,
		CurrentStreak:            current,
		LongestStreak:            longest,
		LastSevenDaysActivity:    DailySeries(daterange.LastDays(today, RecentDays), done, service.location),
		ProjectTimeDistribution:  ProjectDistribution(done),
		MostProductiveHour:       MostProductiveHour(done, service.location),
		CurrentMonthTotal:        monthMinutes,
		CurrentMonthDailyAverage: monthMinutes / int64(today.Day),
	}
}

// # Helpers

func validateRange(span daterange.Range) error {
	return (&validate.Validator{}).DateSpan(FieldStart, span.From, FieldEnd, span.To).Err()
}
