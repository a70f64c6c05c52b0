// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/taibuivan/codetrack/internal/platform/database/schema"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

// # SQLite Models

// sessionRecord is the gorm mapping of tracking_codingsession.
type sessionRecord struct {
	ID              string     `gorm:"column:id;primaryKey"`
	AccountID       string     `gorm:"column:accountid;not null;index:codingsession_account_start,priority:1"`
	StartTime       time.Time  `gorm:"column:starttime;not null;index:codingsession_account_start,priority:2"`
	EndTime         *time.Time `gorm:"column:endtime"`
	Description     *string    `gorm:"column:description;size:500"`
	ProjectName     *string    `gorm:"column:projectname;size:100"`
	Status          string     `gorm:"column:status;not null"`
	DurationMinutes *int64     `gorm:"column:durationminutes"`
	CreatedAt       time.Time  `gorm:"column:createdat;autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"column:updatedat;autoUpdateTime"`
}

func (sessionRecord) TableName() string { return schema.TrackingCodingSession.SQLiteTable }

// sessionRow is a session joined with its owner's username.
type sessionRow struct {
	ID              string
	AccountID       string
	Username        string
	StartTime       time.Time
	EndTime         *time.Time
	Description     *string
	ProjectName     *string
	Status          string
	DurationMinutes *int64
}

func (row sessionRow) toDomain() *CodingSession {
	session := &CodingSession{
		ID:              row.ID,
		UserID:          row.AccountID,
		Username:        row.Username,
		StartTime:       row.StartTime.UTC(),
		Description:     row.Description,
		ProjectName:     row.ProjectName,
		Status:          Status(row.Status),
		DurationMinutes: row.DurationMinutes,
	}
	if row.EndTime != nil {
		end := row.EndTime.UTC()
		session.EndTime = &end
	}
	return session
}

// # Repository

// SQLiteRepository implements [Repository] with gorm on an embedded database.
type SQLiteRepository struct {
	db *gorm.DB
}

// NewSQLiteRepository creates a new SQLite implementation of [Repository].
func NewSQLiteRepository(db *gorm.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Migrate creates the session table, its indexes and the one-active-session
// guard. The account table must already exist.
func (repository *SQLiteRepository) Migrate(context context.Context) error {
	db := repository.db.WithContext(context)

	if err := db.AutoMigrate(&sessionRecord{}); err != nil {
		return fmt.Errorf("sqlite_session_migrate_failed: %w", err)
	}

	guard := fmt.Sprintf(
		`CREATE UNIQUE INDEX IF NOT EXISTS codingsession_one_active ON %s (%s) WHERE %s = '%s'`,
		cs.SQLiteTable, cs.AccountID, cs.Status, StatusInProgress,
	)
	if err := db.Exec(guard).Error; err != nil {
		return fmt.Errorf("sqlite_session_migrate_failed: %w", err)
	}
	return nil
}

// joined starts a query over sessions with the owner's username resolved.
func (repository *SQLiteRepository) joined(context context.Context) *gorm.DB {
	return repository.db.WithContext(context).
		Table(cs.SQLiteTable+" s").
		Select(fmt.Sprintf(
			"s.%s AS id, s.%s AS account_id, a.%s AS username, s.%s AS start_time, s.%s AS end_time, "+
				"s.%s AS description, s.%s AS project_name, s.%s AS status, s.%s AS duration_minutes",
			cs.ID, cs.AccountID, ua.Username, cs.StartTime, cs.EndTime,
			cs.Description, cs.ProjectName, cs.Status, cs.DurationMinutes,
		)).
		Joins(fmt.Sprintf("JOIN %s a ON a.%s = s.%s", ua.SQLiteTable, ua.ID, cs.AccountID))
}

func (repository *SQLiteRepository) scan(query *gorm.DB, action string) ([]*CodingSession, error) {
	var rows []sessionRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, dberr.Wrap(err, action)
	}

	sessions := make([]*CodingSession, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toDomain())
	}
	return sessions, nil
}

func (repository *SQLiteRepository) first(query *gorm.DB, action string) (*CodingSession, error) {
	sessions, err := repository.scan(query.Limit(1), action)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, dberr.Wrap(gorm.ErrRecordNotFound, action)
	}
	return sessions[0], nil
}

var (
	sqliteNewestFirst = fmt.Sprintf("s.%s DESC, s.%s DESC", cs.StartTime, cs.ID)
	sqliteOldestFirst = fmt.Sprintf("s.%s ASC, s.%s ASC", cs.StartTime, cs.ID)
)

// Create inserts a new session row.
func (repository *SQLiteRepository) Create(context context.Context, session *CodingSession) error {
	record := &sessionRecord{
		ID:              session.ID,
		AccountID:       session.UserID,
		StartTime:       session.StartTime.UTC(),
		EndTime:         session.EndTime,
		Description:     session.Description,
		ProjectName:     session.ProjectName,
		Status:          string(session.Status),
		DurationMinutes: session.DurationMinutes,
	}
	return dberr.Wrap(repository.db.WithContext(context).Create(record).Error, "create_coding_session")
}

// Transition performs a compare-and-set on the status column.
func (repository *SQLiteRepository) Transition(context context.Context, session *CodingSession, from Status) error {
	var endTime *time.Time
	if session.EndTime != nil {
		end := session.EndTime.UTC()
		endTime = &end
	}

	result := repository.db.WithContext(context).
		Model(&sessionRecord{}).
		Where(fmt.Sprintf("%s = ? AND %s = ?", cs.ID, cs.Status), session.ID, string(from)).
		Updates(map[string]any{
			cs.EndTime:         endTime,
			cs.Status:          string(session.Status),
			cs.DurationMinutes: session.DurationMinutes,
		})
	if result.Error != nil {
		return dberr.Wrap(result.Error, "transition_coding_session")
	}

	if result.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

// FindByID loads one session with its owner's username.
func (repository *SQLiteRepository) FindByID(context context.Context, id string) (*CodingSession, error) {
	query := repository.joined(context).Where("s."+cs.ID+" = ?", id)
	return repository.first(query, "find_coding_session")
}

// ListByUser returns all sessions of an account, newest first.
func (repository *SQLiteRepository) ListByUser(context context.Context, userID string) ([]*CodingSession, error) {
	query := repository.joined(context).
		Where("s."+cs.AccountID+" = ?", userID).
		Order(sqliteNewestFirst)
	return repository.scan(query, "list_coding_sessions")
}

// ListByUserPaged returns one page plus the total count.
func (repository *SQLiteRepository) ListByUserPaged(context context.Context, userID string, params pagination.Params) ([]*CodingSession, int, error) {
	var total int64
	err := repository.db.WithContext(context).
		Model(&sessionRecord{}).
		Where(cs.AccountID+" = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, dberr.Wrap(err, "count_coding_sessions")
	}

	query := repository.joined(context).
		Where("s."+cs.AccountID+" = ?", userID).
		Order(sqliteNewestFirst).
		Limit(params.Limit).
		Offset(params.Offset())

	sessions, err := repository.scan(query, "list_coding_sessions_paged")
	if err != nil {
		return nil, 0, err
	}
	return sessions, int(total), nil
}

// ListByUserAndStatus returns the account's sessions in one status.
func (repository *SQLiteRepository) ListByUserAndStatus(context context.Context, userID string, status Status) ([]*CodingSession, error) {
	query := repository.joined(context).
		Where(fmt.Sprintf("s.%s = ? AND s.%s = ?", cs.AccountID, cs.Status), userID, string(status)).
		Order(sqliteNewestFirst)
	return repository.scan(query, "list_coding_sessions_by_status")
}

// ListByUserAndStartBetween returns sessions started inside [start, end].
func (repository *SQLiteRepository) ListByUserAndStartBetween(context context.Context, userID string, start, end time.Time) ([]*CodingSession, error) {
	query := repository.joined(context).
		Where(fmt.Sprintf("s.%s = ? AND s.%s BETWEEN ? AND ?", cs.AccountID, cs.StartTime), userID, start.UTC(), end.UTC()).
		Order(sqliteOldestFirst)
	return repository.scan(query, "list_coding_sessions_between")
}

// SumDurationByUserAndRange sums COMPLETED durations inside [start, end].
func (repository *SQLiteRepository) SumDurationByUserAndRange(context context.Context, userID string, start, end time.Time) (int64, error) {
	var total int64
	err := repository.db.WithContext(context).
		Model(&sessionRecord{}).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0)", cs.DurationMinutes)).
		Where(fmt.Sprintf("%s = ? AND %s = ? AND %s BETWEEN ? AND ?", cs.AccountID, cs.Status, cs.StartTime),
			userID, string(StatusCompleted), start.UTC(), end.UTC()).
		Scan(&total).Error
	if err != nil {
		return 0, dberr.Wrap(err, "sum_coding_session_duration")
	}
	return total, nil
}

// FindMostRecentByUserAndStatus returns the latest-started session in status.
func (repository *SQLiteRepository) FindMostRecentByUserAndStatus(context context.Context, userID string, status Status) (*CodingSession, error) {
	query := repository.joined(context).
		Where(fmt.Sprintf("s.%s = ? AND s.%s = ?", cs.AccountID, cs.Status), userID, string(status)).
		Order(sqliteNewestFirst)
	return repository.first(query, "find_recent_coding_session")
}

// DeleteByUser removes every session owned by userID.
func (repository *SQLiteRepository) DeleteByUser(context context.Context, userID string) (int64, error) {
	result := repository.db.WithContext(context).
		Where(cs.AccountID+" = ?", userID).
		Delete(&sessionRecord{})
	if result.Error != nil {
		return 0, dberr.Wrap(result.Error, "delete_coding_sessions")
	}
	return result.RowsAffected, nil
}
