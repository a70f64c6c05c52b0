// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"time"

	"github.com/taibuivan/codetrack/pkg/pagination"
)

// ErrStateChanged is returned by [Repository.Transition] when the stored
// session no longer has the expected status.
var ErrStateChanged = errors.New("session: status changed concurrently")

// # Session Data Access

// Repository defines the data access contract for coding sessions.
//
// Implementations report missing rows as [dberr.ErrNotFound] and a second
// active session for the same account as [dberr.ErrConflict].
type Repository interface {

	/*
		Create persists a new session.

		Parameters:
		  - context: context.Context
		  - session: *CodingSession

		Returns:
		  - error: dberr.ErrConflict if the account already has an IN_PROGRESS session
	*/
	Create(context context.Context, session *CodingSession) error

	/*
		Transition saves the end time, status and duration of a session,
		provided it is still in the from status.

		Parameters:
		  - context: context.Context
		  - session: *CodingSession (already mutated)
		  - from: Status expected in storage

		Returns:
		  - error: ErrStateChanged if the stored status differs from from
	*/
	Transition(context context.Context, session *CodingSession, from Status) error

	/*
		FindByID returns the session with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *CodingSession: Hydrated entity (username resolved)
		  - error: dberr.ErrNotFound
	*/
	FindByID(context context.Context, id string) (*CodingSession, error)

	/*
		ListByUser returns every session of an account, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []*CodingSession: possibly empty
		  - error: Database retrieval failures
	*/
	ListByUser(context context.Context, userID string) ([]*CodingSession, error)

	/*
		ListByUserPaged returns one page of an account's sessions ordered by
		start time descending, then ID descending.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - params: pagination.Params

		Returns:
		  - []*CodingSession: the page
		  - int: total number of sessions of the account
		  - error: Database retrieval failures
	*/
	ListByUserPaged(context context.Context, userID string, params pagination.Params) ([]*CodingSession, int, error)

	/*
		ListByUserAndStatus returns the account's sessions in one status.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - status: Status

		Returns:
		  - []*CodingSession: newest first
		  - error: Database retrieval failures
	*/
	ListByUserAndStatus(context context.Context, userID string, status Status) ([]*CodingSession, error)

	/*
		ListByUserAndStartBetween returns sessions of any status whose start
		time lies in [start, end], inclusive.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - start, end: time.Time

		Returns:
		  - []*CodingSession: oldest first
		  - error: Database retrieval failures
	*/
	ListByUserAndStartBetween(context context.Context, userID string, start, end time.Time) ([]*CodingSession, error)

	/*
		SumDurationByUserAndRange adds up the duration of COMPLETED sessions
		whose start time lies in [start, end], inclusive.

		Returns:
		  - int64: total minutes, 0 when nothing matches
		  - error: Database retrieval failures
	*/
	SumDurationByUserAndRange(context context.Context, userID string, start, end time.Time) (int64, error)

	/*
		FindMostRecentByUserAndStatus returns the session with the latest start
		time in the given status.

		Returns:
		  - *CodingSession: Hydrated entity
		  - error: dberr.ErrNotFound when the account has none
	*/
	FindMostRecentByUserAndStatus(context context.Context, userID string, status Status) (*CodingSession, error)

	/*
		DeleteByUser removes every session of an account.

		Returns:
		  - int64: number of deleted sessions
		  - error: Persistence failures
	*/
	DeleteByUser(context context.Context, userID string) (int64, error)
}
