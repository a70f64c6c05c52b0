// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/pointer"
	"github.com/taibuivan/codetrack/pkg/uuid"
)

// # Service Layer

// Owner identifies the account a session is started for.
type Owner struct {
	ID       string
	Username string
}

// StartInput carries the optional labels of a new session.
type StartInput struct {
	Description string
	ProjectName string
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces the wall clock used to stamp start and end times.
func WithClock(now func() time.Time) Option {
	return func(service *Service) {
		service.now = now
	}
}

// Service enforces the coding-session state machine.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a new [Service] with its repository.
func NewService(repo Repository, logger *slog.Logger, opts ...Option) *Service {
	service := &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// timestamp returns the current instant in the precision both stores keep.
func (service *Service) timestamp() time.Time {
	return service.now().UTC().Truncate(time.Microsecond)
}

// # Lifecycle

/*
StartSession opens a new IN_PROGRESS session for the owner.

Description: Labels are trimmed and NFC-normalized; blank labels are stored
as null. The store's partial unique index backs up the active-session check
when two requests race.

Parameters:
  - context: context.Context
  - owner: Owner
  - input: StartInput

Returns:
  - *CodingSession: The persisted session
  - error: Validation, Conflict or storage errors
*/
func (service *Service) StartSession(context context.Context, owner Owner, input StartInput) (*CodingSession, error) {

	// ── 1. Normalize and validate labels ────────────────────────────────
	description := normalizeLabel(input.Description)
	project := normalizeLabel(input.ProjectName)

	validator := &validate.Validator{}
	validator.Required("user_id", owner.ID)
	validator.MaxLen(FieldDescription, description, MaxDescriptionLength)
	validator.MaxLen(FieldProjectName, project, MaxProjectNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. One active session per account ───────────────────────────────
	active, err := service.repo.ListByUserAndStatus(context, owner.ID, StatusInProgress)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, errActiveSession()
	}

	// ── 3. Persist ──────────────────────────────────────────────────────
	session := &CodingSession{
		ID:          uuid.New(),
		UserID:      owner.ID,
		Username:    owner.Username,
		StartTime:   service.timestamp(),
		Description: pointer.NonEmpty(description),
		ProjectName: pointer.NonEmpty(project),
		Status:      StatusInProgress,
	}

	if err := service.repo.Create(context, session); err != nil {
		if errors.Is(err, dberr.ErrConflict) {
			return nil, errActiveSession()
		}
		return nil, fmt.Errorf("session_service_start_failed: %w", err)
	}

	service.logger.InfoContext(context, "coding_session_started",
		slog.String("session_id", session.ID),
		slog.String("user_id", session.UserID),
		slog.String("project", session.Project()),
	)

	return session, nil
}

/*
EndSession completes an IN_PROGRESS session and records its duration.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *CodingSession: The completed session
  - error: NotFound, InvalidState or storage errors
*/
func (service *Service) EndSession(context context.Context, id string) (*CodingSession, error) {
	session, err := service.GetSession(context, id)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() {
		return nil, apperr.InvalidState(fmt.Sprintf("Coding session is already %s", session.Status))
	}

	session.complete(service.timestamp())

	if err := service.transition(context, session); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "coding_session_completed",
		slog.String("session_id", session.ID),
		slog.String("user_id", session.UserID),
		slog.Int64("duration_minutes", session.Minutes()),
	)

	return session, nil
}

/*
CancelSession abandons an IN_PROGRESS session. No duration is recorded.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *CodingSession: The cancelled session
  - error: NotFound, InvalidState or storage errors
*/
func (service *Service) CancelSession(context context.Context, id string) (*CodingSession, error) {
	session, err := service.GetSession(context, id)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() {
		return nil, apperr.InvalidState(fmt.Sprintf("Coding session is already %s", session.Status))
	}

	session.cancel(service.timestamp())

	if err := service.transition(context, session); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "coding_session_cancelled",
		slog.String("session_id", session.ID),
		slog.String("user_id", session.UserID),
	)

	return session, nil
}

func (service *Service) transition(context context.Context, session *CodingSession) error {
	err := service.repo.Transition(context, session, StatusInProgress)
	if errors.Is(err, ErrStateChanged) {
		return apperr.InvalidState("Coding session is no longer in progress")
	}
	if err != nil {
		return fmt.Errorf("session_service_transition_failed: %w", err)
	}
	return nil
}

// # Lookups

// GetSession returns one session or a NotFound error.
func (service *Service) GetSession(context context.Context, id string) (*CodingSession, error) {
	session, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("Coding session")
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetUserSessions returns one page of the account's sessions, newest first,
// and the total number of sessions.
func (service *Service) GetUserSessions(context context.Context, userID string, params pagination.Params) ([]*CodingSession, int, error) {
	return service.repo.ListByUserPaged(context, userID, params)
}

// GetCurrentSession returns the running session, or nil when there is none.
func (service *Service) GetCurrentSession(context context.Context, userID string) (*CodingSession, error) {
	session, err := service.repo.FindMostRecentByUserAndStatus(context, userID, StatusInProgress)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

/*
CalculateTotalCodingTime sums the minutes of COMPLETED sessions started
within [start, end], inclusive.

Parameters:
  - context: context.Context
  - userID: string
  - start, end: time.Time

Returns:
  - int64: minutes, 0 when nothing matches
  - error: Validation or storage errors
*/
func (service *Service) CalculateTotalCodingTime(context context.Context, userID string, start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, errInvertedRange()
	}
	return service.repo.SumDurationByUserAndRange(context, userID, start.UTC(), end.UTC())
}

// GetSessionsByDateRange lists sessions of any status started within
// [start, end], oldest first.
func (service *Service) GetSessionsByDateRange(context context.Context, userID string, start, end time.Time) ([]*CodingSession, error) {
	if end.Before(start) {
		return nil, errInvertedRange()
	}
	return service.repo.ListByUserAndStartBetween(context, userID, start.UTC(), end.UTC())
}

// ListAllSessions returns every session of the account, newest first.
func (service *Service) ListAllSessions(context context.Context, userID string) ([]*CodingSession, error) {
	return service.repo.ListByUser(context, userID)
}

// DeleteUserSessions removes all sessions of an account.
func (service *Service) DeleteUserSessions(context context.Context, userID string) (int64, error) {
	deleted, err := service.repo.DeleteByUser(context, userID)
	if err != nil {
		return 0, fmt.Errorf("session_service_delete_failed: %w", err)
	}

	service.logger.InfoContext(context, "coding_sessions_deleted",
		slog.String("user_id", userID),
		slog.Int64("count", deleted),
	)
	return deleted, nil
}

// # Helpers

func normalizeLabel(raw string) string {
	return norm.NFC.String(strings.TrimSpace(raw))
}

func errActiveSession() *apperr.AppError {
	return apperr.Conflict("An active coding session already exists")
}

func errInvertedRange() *apperr.AppError {
	return apperr.ValidationError("Invalid date range",
		apperr.FieldError{Field: FieldTo, Message: "Must not be before from"},
	)
}
