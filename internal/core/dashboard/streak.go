// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/pkg/daterange"
)

// DaySet is a set of calendar dates.
type DaySet map[civil.Date]struct{}

// Days collects the start dates of sessions in loc.
func Days(sessions []*session.CodingSession, loc *time.Location) DaySet {
	days := make(DaySet, len(sessions))
	for _, s := range sessions {
		days[daterange.DateOf(s.StartTime, loc)] = struct{}{}
	}
	return days
}

// Has reports whether d is in the set.
func (days DaySet) Has(d civil.Date) bool {
	_, ok := days[d]
	return ok
}

// earliest returns the oldest date of the set.
func (days DaySet) earliest() (civil.Date, bool) {
	var first civil.Date
	found := false
	for day := range days {
		if !found || day.Before(first) {
			first, found = day, true
		}
	}
	return first, found
}

/*
CurrentStreak counts consecutive active days walking back from today.

Today itself must be active; otherwise the streak is 0.
*/
func CurrentStreak(days DaySet, today civil.Date) int64 {
	var streak int64
	for day := today; days.Has(day); day = day.AddDays(-1) {
		streak++
	}
	return streak
}

/*
LongestStreak returns the longest run of consecutive active days between the
earliest active day and today, both inclusive.

Days after today are ignored. An empty set yields 0.
*/
func LongestStreak(days DaySet, today civil.Date) int64 {
	first, ok := days.earliest()
	if !ok {
		return 0
	}

	var longest, run int64
	for day := first; !day.After(today); day = day.AddDays(1) {
		if !days.Has(day) {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return longest
}
