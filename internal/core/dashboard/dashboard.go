// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package dashboard turns a user's coding sessions into activity statistics.

Sessions are bucketed by the calendar date of their start time in one
configured time zone. The package has three layers:

  - aggregate.go: pure per-day and per-project folds over sessions.
  - streak.go: consecutive-day counting over sets of dates.
  - service.go: reads sessions and composes the [Stats] snapshot.

Only COMPLETED sessions contribute minutes. Sessions in other statuses still
count toward a day's session count and toward the longest streak.
*/
package dashboard

import (
	"cloud.google.com/go/civil"

	"github.com/taibuivan/codetrack/internal/core/session"
)

// # Derived Records

// DailyActivity summarizes one calendar date.
type DailyActivity struct {
	Date         civil.Date `json:"date"`
	TotalMinutes int64      `json:"total_minutes"`
	SessionCount int64      `json:"session_count"`
	HasActivity  bool       `json:"has_activity"`
	MainProject  string     `json:"main_project"`
}

// DailyTotal is one point of a zero-filled minutes-per-day series.
type DailyTotal struct {
	Date    civil.Date `json:"date"`
	Minutes int64      `json:"minutes"`
}

// Stats is the dashboard snapshot of one user.
//
// It is built once by [Service.GetDashboardStats] and never mutated.
// LastSevenDaysActivity lists all seven dates, oldest first.
type Stats struct {
	TotalSessions            int64            `json:"total_sessions"`
	TotalCodingTime          int64            `json:"total_coding_time"`
	AverageSessionDuration   int64            `json:"average_session_duration"`
	CurrentStreak            int64            `json:"current_streak"`
	LongestStreak            int64            `json:"longest_streak"`
	LastSevenDaysActivity    []DailyTotal     `json:"last_seven_days_activity"`
	ProjectTimeDistribution  map[string]int64 `json:"project_time_distribution"`
	MostProductiveHour       *int             `json:"most_productive_hour"`
	CurrentMonthTotal        int64            `json:"current_month_total"`
	CurrentMonthDailyAverage int64            `json:"current_month_daily_average"`
}

// Overview is the payload of the dashboard landing page.
type Overview struct {
	Stats          Stats           `json:"stats"`
	CurrentSession *session.View   `json:"current_session"`
	RecentActivity []DailyActivity `json:"recent_activity"`
}

// # Constants

const (
	// RecentDays is the window of [Service.RecentActivity] and the seven day series.
	RecentDays = 7

	// DefaultStatsLookback is how many days before today the detailed stats
	// endpoint starts without a start date. The window spans
	// DefaultStatsLookback+1 dates, today included.
	DefaultStatsLookback = 30

	FieldStart = "start"
	FieldEnd   = "end"
)
