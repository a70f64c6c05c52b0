// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/taibuivan/codetrack/internal/platform/database/schema"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/postgres"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

var (
	cs = schema.TrackingCodingSession
	ua = schema.UserAccount

	// selectSessions joins the owner so every read resolves the username.
	selectSessions = fmt.Sprintf(`
		SELECT s.%s, s.%s, a.%s, s.%s, s.%s, s.%s, s.%s, s.%s, s.%s
		FROM %s s
		JOIN %s a ON a.%s = s.%s`,
		cs.ID, cs.AccountID, ua.Username, cs.StartTime, cs.EndTime,
		cs.Description, cs.ProjectName, cs.Status, cs.DurationMinutes,
		cs.Table, ua.Table, ua.ID, cs.AccountID,
	)

	newestFirst = fmt.Sprintf(`ORDER BY s.%s DESC, s.%s DESC`, cs.StartTime, cs.ID)
	oldestFirst = fmt.Sprintf(`ORDER BY s.%s ASC, s.%s ASC`, cs.StartTime, cs.ID)
)

// PostgresRepository implements [Repository] on top of pgx.
type PostgresRepository struct {
	db postgres.Querier
}

// NewPostgresRepository creates a new PostgreSQL implementation of [Repository].
func NewPostgresRepository(db postgres.Querier) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*CodingSession, error) {
	session := &CodingSession{}
	var status string

	err := row.Scan(
		&session.ID, &session.UserID, &session.Username, &session.StartTime, &session.EndTime,
		&session.Description, &session.ProjectName, &status, &session.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}

	session.Status = Status(status)
	session.StartTime = session.StartTime.UTC()
	if session.EndTime != nil {
		end := session.EndTime.UTC()
		session.EndTime = &end
	}
	return session, nil
}

func (repository *PostgresRepository) list(context context.Context, action, query string, args ...any) ([]*CodingSession, error) {
	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	sessions := make([]*CodingSession, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}
	return sessions, nil
}

// Create inserts a new session row.
func (repository *PostgresRepository) Create(context context.Context, session *CodingSession) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		cs.Table,
		cs.ID, cs.AccountID, cs.StartTime, cs.EndTime,
		cs.Description, cs.ProjectName, cs.Status, cs.DurationMinutes,
	)

	_, err := repository.db.Exec(context, query,
		session.ID,
		session.UserID,
		session.StartTime,
		session.EndTime,
		session.Description,
		session.ProjectName,
		string(session.Status),
		session.DurationMinutes,
	)
	return dberr.Wrap(err, "create_coding_session")
}

// Transition performs a compare-and-set on the status column.
func (repository *PostgresRepository) Transition(context context.Context, session *CodingSession, from Status) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1 AND %s = $5`,
		cs.Table,
		cs.EndTime, cs.Status, cs.DurationMinutes, cs.UpdatedAt,
		cs.ID, cs.Status,
	)

	tag, err := repository.db.Exec(context, query,
		session.ID,
		session.EndTime,
		string(session.Status),
		session.DurationMinutes,
		string(from),
	)
	if err != nil {
		return dberr.Wrap(err, "transition_coding_session")
	}

	if tag.RowsAffected() == 0 {
		return ErrStateChanged
	}
	return nil
}

// FindByID loads one session with its owner's username.
func (repository *PostgresRepository) FindByID(context context.Context, id string) (*CodingSession, error) {
	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1`, cs.ID)

	session, err := scanSession(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "find_coding_session")
	}
	return session, nil
}

// ListByUser returns all sessions of an account, newest first.
func (repository *PostgresRepository) ListByUser(context context.Context, userID string) ([]*CodingSession, error) {
	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1 `, cs.AccountID) + newestFirst
	return repository.list(context, "list_coding_sessions", query, userID)
}

// ListByUserPaged returns one page plus the total count.
func (repository *PostgresRepository) ListByUserPaged(context context.Context, userID string, params pagination.Params) ([]*CodingSession, int, error) {
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = $1`, cs.Table, cs.AccountID)

	var total int
	if err := repository.db.QueryRow(context, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "count_coding_sessions")
	}

	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1 `, cs.AccountID) + newestFirst + ` LIMIT $2 OFFSET $3`
	sessions, err := repository.list(context, "list_coding_sessions_paged", query, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, err
	}
	return sessions, total, nil
}

// ListByUserAndStatus returns the account's sessions in one status.
func (repository *PostgresRepository) ListByUserAndStatus(context context.Context, userID string, status Status) ([]*CodingSession, error) {
	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1 AND s.%s = $2 `, cs.AccountID, cs.Status) + newestFirst
	return repository.list(context, "list_coding_sessions_by_status", query, userID, string(status))
}

// ListByUserAndStartBetween returns sessions started inside [start, end].
func (repository *PostgresRepository) ListByUserAndStartBetween(context context.Context, userID string, start, end time.Time) ([]*CodingSession, error) {
	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1 AND s.%s BETWEEN $2 AND $3 `, cs.AccountID, cs.StartTime) + oldestFirst
	return repository.list(context, "list_coding_sessions_between", query, userID, start, end)
}

// SumDurationByUserAndRange sums COMPLETED durations inside [start, end].
func (repository *PostgresRepository) SumDurationByUserAndRange(context context.Context, userID string, start, end time.Time) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(%s), 0)
		FROM %s
		WHERE %s = $1 AND %s = $2 AND %s BETWEEN $3 AND $4`,
		cs.DurationMinutes, cs.Table, cs.AccountID, cs.Status, cs.StartTime,
	)

	var total int64
	err := repository.db.QueryRow(context, query, userID, string(StatusCompleted), start, end).Scan(&total)
	if err != nil {
		return 0, dberr.Wrap(err, "sum_coding_session_duration")
	}
	return total, nil
}

// FindMostRecentByUserAndStatus returns the latest-started session in status.
func (repository *PostgresRepository) FindMostRecentByUserAndStatus(context context.Context, userID string, status Status) (*CodingSession, error) {
	query := selectSessions + fmt.Sprintf(` WHERE s.%s = $1 AND s.%s = $2 `, cs.AccountID, cs.Status) + newestFirst + ` LIMIT 1`

	session, err := scanSession(repository.db.QueryRow(context, query, userID, string(status)))
	if err != nil {
		return nil, dberr.Wrap(err, "find_recent_coding_session")
	}
	return session, nil
}

// DeleteByUser removes every session owned by userID.
func (repository *PostgresRepository) DeleteByUser(context context.Context, userID string) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, cs.Table, cs.AccountID)

	tag, err := repository.db.Exec(context, query, userID)
	if err != nil {
		return 0, dberr.Wrap(err, "delete_coding_sessions")
	}
	return tag.RowsAffected(), nil
}
