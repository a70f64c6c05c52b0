// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package daterange_test

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/pkg/daterange"
)

/*
TestDateOf_TimeZone shows the same instant landing on different dates.
*/
func TestDateOf_TimeZone(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 9}, daterange.DateOf(instant, time.UTC))
	assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 10}, daterange.DateOf(instant, tokyo))
}

/*
TestDayBounds checks the inclusive instant bounds of a day.
*/
func TestDayBounds(t *testing.T) {
	day := civil.Date{Year: 2024, Month: 2, Day: 29}

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), daterange.StartOfDay(day, time.UTC))
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999_999_000, time.UTC), daterange.EndOfDay(day, time.UTC))
	assert.Equal(t, daterange.StartOfDay(day.AddDays(1), time.UTC), daterange.EndOfDay(day, time.UTC).Add(time.Microsecond))
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 1}, daterange.StartOfMonth(day))
}

/*
TestBounds_LastMillisecond keeps sub-millisecond instants of the final second
inside the range.
*/
func TestBounds_LastMillisecond(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	day := civil.Date{Year: 2024, Month: 3, Day: 10}
	late := time.Date(2024, 3, 10, 23, 59, 59, 999_500_000, tokyo)

	start, end := daterange.Range{From: day, To: day}.Bounds(tokyo)
	assert.False(t, late.Before(start))
	assert.False(t, late.After(end))
	assert.Equal(t, day, daterange.DateOf(late.UTC(), tokyo))
}

/*
TestRange_Days enumerates an inclusive range across a month boundary.
*/
func TestRange_Days(t *testing.T) {
	today := civil.Date{Year: 2024, Month: 3, Day: 2}
	week := daterange.LastDays(today, 7)

	days := week.Days()
	require.Len(t, days, 7)
	assert.Equal(t, civil.Date{Year: 2024, Month: 2, Day: 25}, days[0])
	assert.Equal(t, today, days[6])

	assert.True(t, week.IsValid())
	assert.True(t, week.Contains(civil.Date{Year: 2024, Month: 2, Day: 29}))
	assert.False(t, week.Contains(civil.Date{Year: 2024, Month: 3, Day: 3}))

	inverted := daterange.Range{From: today, To: today.AddDays(-1)}
	assert.False(t, inverted.IsValid())
	assert.Empty(t, inverted.Days())
}

/*
TestParse accepts ISO dates and rejects everything else.
*/
func TestParse(t *testing.T) {
	date, err := daterange.Parse(" 2024-01-15 ")
	require.NoError(t, err)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 15}, date)

	_, err = daterange.Parse("15/01/2024")
	assert.Error(t, err)
}
