// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package daterange converts between calendar dates and time instants.

All CodeTrack statistics bucket sessions by the calendar date of their start
time in one configured time zone. Dates are [civil.Date] values, so they carry
no zone of their own and marshal to JSON as "YYYY-MM-DD".

Key Functions:
  - DateOf / Today: instant to calendar date.
  - StartOfDay / EndOfDay: calendar date to inclusive instant bounds.
  - Range: an inclusive span of dates with its instant bounds.
*/
package daterange

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateOf returns the calendar date of t in loc.
func DateOf(t time.Time, loc *time.Location) civil.Date {
	return civil.DateOf(t.In(loc))
}

// Today returns the calendar date of now in loc.
func Today(now time.Time, loc *time.Location) civil.Date {
	return DateOf(now, loc)
}

// StartOfDay returns 00:00:00.000 of d in loc.
func StartOfDay(d civil.Date, loc *time.Location) time.Time {
	return d.In(loc)
}

// EndOfDay returns 23:59:59.999999 of d in loc, the last instant a stored
// timestamp can hold at microsecond precision.
func EndOfDay(d civil.Date, loc *time.Location) time.Time {
	return d.AddDays(1).In(loc).Add(-time.Microsecond)
}

// StartOfMonth returns the first day of d's month.
func StartOfMonth(d civil.Date) civil.Date {
	return civil.Date{Year: d.Year, Month: d.Month, Day: 1}
}

// Parse reads a "YYYY-MM-DD" date.
func Parse(raw string) (civil.Date, error) {
	date, err := civil.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return civil.Date{}, fmt.Errorf("daterange: invalid date %q: %w", raw, err)
	}
	return date, nil
}

// # Ranges

// Range is an inclusive span of calendar dates.
type Range struct {
	From civil.Date
	To   civil.Date
}

// LastDays returns the n-day range ending on (and including) today.
func LastDays(today civil.Date, n int) Range {
	return Range{From: today.AddDays(-(n - 1)), To: today}
}

// IsValid reports whether both ends are real dates and From is not after To.
func (r Range) IsValid() bool {
	return r.From.IsValid() && r.To.IsValid() && !r.From.After(r.To)
}

// Bounds returns the first and last instant of the range in loc.
func (r Range) Bounds(loc *time.Location) (time.Time, time.Time) {
	return StartOfDay(r.From, loc), EndOfDay(r.To, loc)
}

// Days lists every date of the range, oldest first.
func (r Range) Days() []civil.Date {
	if r.From.After(r.To) {
		return nil
	}
	days := make([]civil.Date, 0, r.To.DaysSince(r.From)+1)
	for day := r.From; !day.After(r.To); day = day.AddDays(1) {
		days = append(days, day)
	}
	return days
}

// Contains reports whether d falls inside the range.
func (r Range) Contains(d civil.Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}
