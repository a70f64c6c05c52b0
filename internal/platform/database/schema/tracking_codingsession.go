// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package schema

// TrackingCodingSessionTable represents the 'tracking.codingsession' table
type TrackingCodingSessionTable struct {
	Table           string
	SQLiteTable     string
	ID              string
	AccountID       string
	StartTime       string
	EndTime         string
	Description     string
	ProjectName     string
	Status          string
	DurationMinutes string
	CreatedAt       string
	UpdatedAt       string
}

// TrackingCodingSession is the schema definition for tracking.codingsession
var TrackingCodingSession = TrackingCodingSessionTable{
	Table:           "tracking.codingsession",
	SQLiteTable:     "tracking_codingsession",
	ID:              "id",
	AccountID:       "accountid",
	StartTime:       "starttime",
	EndTime:         "endtime",
	Description:     "description",
	ProjectName:     "projectname",
	Status:          "status",
	DurationMinutes: "durationminutes",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

// Columns returns all standard column names
func (t TrackingCodingSessionTable) Columns() []string {
	return []string{
		t.ID, t.AccountID, t.StartTime, t.EndTime, t.Description,
		t.ProjectName, t.Status, t.DurationMinutes, t.CreatedAt, t.UpdatedAt,
	}
}
