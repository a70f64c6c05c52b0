// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/constants"
	"github.com/taibuivan/codetrack/pkg/daterange"
	"github.com/taibuivan/codetrack/pkg/slice"
)

// # Session Folds

func completed(sessions []*session.CodingSession) []*session.CodingSession {
	return slice.Filter(sessions, (*session.CodingSession).IsCompleted)
}

// CompletedMinutes sums the durations of the COMPLETED sessions.
func CompletedMinutes(sessions []*session.CodingSession) int64 {
	return slice.SumBy(completed(sessions), (*session.CodingSession).Minutes)
}

/*
Summarize folds the sessions of one date into a [DailyActivity].

Every session counts toward SessionCount. Only COMPLETED sessions add
minutes. MainProject is the project named by the most sessions; equal counts
go to the lexicographically smallest name. Without any named project it is
[constants.NoProject].
*/
func Summarize(date civil.Date, sessions []*session.CodingSession) DailyActivity {
	total := CompletedMinutes(sessions)

	return DailyActivity{
		Date:         date,
		TotalMinutes: total,
		SessionCount: int64(len(sessions)),
		HasActivity:  total > 0,
		MainProject:  mainProject(sessions),
	}
}

func mainProject(sessions []*session.CodingSession) string {
	counts := make(map[string]int)
	for _, s := range sessions {
		if name := s.Project(); name != "" {
			counts[name]++
		}
	}

	best, bestCount := constants.NoProject, 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	return best
}

// GroupByDate buckets sessions by the date of their start time in loc.
func GroupByDate(sessions []*session.CodingSession, loc *time.Location) map[civil.Date]DailyActivity {
	buckets := slice.GroupBy(sessions, func(s *session.CodingSession) civil.Date {
		return daterange.DateOf(s.StartTime, loc)
	})

	daily := make(map[civil.Date]DailyActivity, len(buckets))
	for date, bucket := range buckets {
		daily[date] = Summarize(date, bucket)
	}
	return daily
}

// Newest orders daily activity with the most recent date first.
func Newest(daily map[civil.Date]DailyActivity) []DailyActivity {
	result := make([]DailyActivity, 0, len(daily))
	for _, day := range daily {
		result = append(result, day)
	}
	slices.SortFunc(result, func(a, b DailyActivity) int {
		switch {
		case a.Date.After(b.Date):
			return -1
		case a.Date.Before(b.Date):
			return 1
		}
		return 0
	})
	return result
}

// # Projects

// ProjectTotals sums COMPLETED minutes per named project. Unnamed sessions are skipped.
func ProjectTotals(sessions []*session.CodingSession) map[string]int64 {
	totals := make(map[string]int64)
	for _, s := range completed(sessions) {
		if name := s.Project(); name != "" {
			totals[name] += s.Minutes()
		}
	}
	return totals
}

/*
ProjectDistribution sums COMPLETED minutes per project, filing unnamed
sessions under [constants.UnspecifiedProject].

The result is empty only when there are no COMPLETED sessions.
*/
func ProjectDistribution(sessions []*session.CodingSession) map[string]int64 {
	done := completed(sessions)

	distribution := make(map[string]int64)
	for _, s := range done {
		name := s.Project()
		if name == "" {
			name = constants.UnspecifiedProject
		}
		distribution[name] += s.Minutes()
	}

	if len(distribution) == 0 && len(done) > 0 {
		distribution[constants.UnspecifiedProject] = 0
	}
	return distribution
}

// # Time of Day

/*
MostProductiveHour returns the hour of day (0-23, in loc) whose COMPLETED
sessions add up to the most minutes, keyed by each session's start time.

Equal totals go to the lowest hour. It returns nil without COMPLETED sessions.
*/
func MostProductiveHour(sessions []*session.CodingSession, loc *time.Location) *int {
	done := completed(sessions)
	if len(done) == 0 {
		return nil
	}

	var perHour [24]int64
	var seen [24]bool
	for _, s := range done {
		hour := s.StartTime.In(loc).Hour()
		perHour[hour] += s.Minutes()
		seen[hour] = true
	}

	best := -1
	for hour := range perHour {
		if seen[hour] && (best < 0 || perHour[hour] > perHour[best]) {
			best = hour
		}
	}
	return &best
}

// # Series

// DailySeries lists COMPLETED minutes for every date of span, oldest first.
// Dates without sessions carry 0 and sessions outside span are ignored.
func DailySeries(span daterange.Range, sessions []*session.CodingSession, loc *time.Location) []DailyTotal {
	minutes := make(map[civil.Date]int64)
	for _, s := range completed(sessions) {
		minutes[daterange.DateOf(s.StartTime, loc)] += s.Minutes()
	}

	return slice.Map(span.Days(), func(date civil.Date) DailyTotal {
		return DailyTotal{Date: date, Minutes: minutes[date]}
	})
}
