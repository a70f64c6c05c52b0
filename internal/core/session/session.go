// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package session implements the coding-session lifecycle.

A coding session is a timed block of work owned by one account. It is created
IN_PROGRESS, and leaves that state exactly once: to COMPLETED through
[Service.EndSession], or to CANCELLED through [Service.CancelSession].

Invariants:

  - An account has at most one IN_PROGRESS session (enforced by the store).
  - DurationMinutes is set if and only if the session is COMPLETED.
  - EndTime is never before StartTime.
*/
package session

import (
	"fmt"
	"strings"
	"time"
)

// # Status

// Status is the lifecycle state of a coding session.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// # Domain Entities

// CodingSession is one timed block of coding activity.
type CodingSession struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	Username        string     `json:"username"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Description     *string    `json:"description"`
	ProjectName     *string    `json:"project_name"`
	Status          Status     `json:"status"`
	DurationMinutes *int64     `json:"duration_minutes"`
}

// IsActive reports whether the session is still running.
func (s *CodingSession) IsActive() bool {
	return s.Status == StatusInProgress
}

// IsCompleted reports whether the session ended normally.
func (s *CodingSession) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// Minutes returns the recorded duration, or 0 when none is recorded.
func (s *CodingSession) Minutes() int64 {
	if s.DurationMinutes == nil {
		return 0
	}
	return *s.DurationMinutes
}

// Project returns the trimmed project name, or "" when none is set.
func (s *CodingSession) Project() string {
	if s.ProjectName == nil {
		return ""
	}
	return strings.TrimSpace(*s.ProjectName)
}

// complete moves the session to COMPLETED at the given instant.
func (s *CodingSession) complete(at time.Time) {
	end := clampEnd(s.StartTime, at)
	minutes := WholeMinutes(s.StartTime, end)

	s.EndTime = &end
	s.Status = StatusCompleted
	s.DurationMinutes = &minutes
}

// cancel moves the session to CANCELLED at the given instant.
func (s *CodingSession) cancel(at time.Time) {
	end := clampEnd(s.StartTime, at)

	s.EndTime = &end
	s.Status = StatusCancelled
	s.DurationMinutes = nil
}

// clampEnd keeps EndTime >= StartTime when the clock steps backwards.
func clampEnd(start, at time.Time) time.Time {
	if at.Before(start) {
		return start
	}
	return at
}

// WholeMinutes returns the number of complete minutes between start and end.
func WholeMinutes(start, end time.Time) int64 {
	if end.Before(start) {
		return 0
	}
	return int64(end.Sub(start) / time.Minute)
}

// FormatDuration renders minutes as "1h 30m".
func FormatDuration(minutes int64) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// # Views

// View is the JSON representation of a session returned by the API.
type View struct {
	*CodingSession
	FormattedDuration *string `json:"formatted_duration"`
}

// NewView wraps a session with its human readable duration.
func NewView(session *CodingSession) View {
	view := View{CodingSession: session}
	if session.DurationMinutes != nil {
		formatted := FormatDuration(*session.DurationMinutes)
		view.FormattedDuration = &formatted
	}
	return view
}

// # Field Identifiers

const (
	FieldDescription = "description"
	FieldProjectName = "project_name"
	FieldFrom        = "from"
	FieldTo          = "to"

	// MaxDescriptionLength and MaxProjectNameLength are measured in characters.
	MaxDescriptionLength = 500
	MaxProjectNameLength = 100
)
