// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"net/http"
	"time"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/codetrack/internal/platform/request"
	"github.com/taibuivan/codetrack/internal/platform/respond"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/daterange"
	"github.com/taibuivan/codetrack/pkg/pagination"
	"github.com/taibuivan/codetrack/pkg/slice"
)

// defaultRangeDates is how many dates, today included, the range and total
// routes cover when from or to is missing.
const defaultRangeDates = 30

// # Definitions & Constructors

// Handler exposes the coding-session lifecycle over HTTP.
//
// Every route requires authentication and only ever reveals sessions owned
// by the caller; foreign sessions answer 404.
type Handler struct {
	service  *Service
	location *time.Location
}

// NewHandler constructs a new [Handler]. Date parameters are read in location.
func NewHandler(service *Service, location *time.Location) *Handler {
	return &Handler{service: service, location: location}
}

// Routes returns a [chi.Router] with the session endpoints.
//
// # Endpoints
//   - GET  /             : Paged history, newest first.
//   - POST /             : Start a session.
//   - GET  /current      : The running session or null.
//   - GET  /range        : Sessions started between two dates.
//   - GET  /total        : Completed minutes between two dates.
//   - GET  /{id}         : One session.
//   - POST /{id}/end     : Complete a session.
//   - POST /{id}/cancel  : Abandon a session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.listSessions)
	router.Post("/", handler.startSession)
	router.Get("/current", handler.currentSession)
	router.Get("/range", handler.sessionsInRange)
	router.Get("/total", handler.totalCodingTime)
	router.Get("/{id}", handler.getSession)
	router.Post("/{id}/end", handler.endSession)
	router.Post("/{id}/cancel", handler.cancelSession)

	return router
}

// # Request Payloads

type startRequest struct {
	Description string `json:"description"`
	ProjectName string `json:"project_name"`
}

type totalResponse struct {
	From              civil.Date `json:"from"`
	To                civil.Date `json:"to"`
	TotalMinutes      int64      `json:"total_minutes"`
	FormattedDuration string     `json:"formatted_duration"`
}

// # Handlers

/*
listSessions returns the caller's sessions one page at a time.

GET /api/v1/sessions?page=&limit=

Response:
  - 200: []View with pagination meta
*/
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	params := pagination.FromRequest(request)
	sessions, total, err := handler.service.GetUserSessions(request.Context(), userID, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, slice.Map(sessions, NewView), pagination.NewMeta(params.Page, params.Limit, total))
}

/*
startSession opens a new session for the caller.

POST /api/v1/sessions

Request:
  - Body: startRequest (optional description and project_name)

Response:
  - 201: View
  - 400: label too long
  - 409: an active session already exists
*/
func (handler *Handler) startSession(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input startRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	owner := Owner{ID: claims.UserID, Username: claims.Username}
	session, err := handler.service.StartSession(request.Context(), owner, StartInput{
		Description: input.Description,
		ProjectName: input.ProjectName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, NewView(session))
}

func (handler *Handler) currentSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.GetCurrentSession(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if session == nil {
		respond.OK(writer, nil)
		return
	}
	respond.OK(writer, NewView(session))
}

/*
sessionsInRange lists sessions of any status started between two dates.

GET /api/v1/sessions/range?from=YYYY-MM-DD&to=YYYY-MM-DD

Both dates are inclusive and default to the last 30 days.
*/
func (handler *Handler) sessionsInRange(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	span, err := handler.dateRange(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	start, end := span.Bounds(handler.location)
	sessions, err := handler.service.GetSessionsByDateRange(request.Context(), userID, start, end)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, slice.Map(sessions, NewView))
}

/*
totalCodingTime sums completed minutes between two dates.

GET /api/v1/sessions/total?from=YYYY-MM-DD&to=YYYY-MM-DD
*/
func (handler *Handler) totalCodingTime(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	span, err := handler.dateRange(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	start, end := span.Bounds(handler.location)
	total, err := handler.service.CalculateTotalCodingTime(request.Context(), userID, start, end)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, totalResponse{
		From:              span.From,
		To:                span.To,
		TotalMinutes:      total,
		FormattedDuration: FormatDuration(total),
	})
}

func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.ownedSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, NewView(session))
}

func (handler *Handler) endSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.ownedSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	completed, err := handler.service.EndSession(request.Context(), session.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, NewView(completed))
}

func (handler *Handler) cancelSession(writer http.ResponseWriter, request *http.Request) {
	session, err := handler.ownedSession(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cancelled, err := handler.service.CancelSession(request.Context(), session.ID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, NewView(cancelled))
}

// # Helpers

// ownedSession resolves {id} and hides sessions of other accounts.
func (handler *Handler) ownedSession(request *http.Request) (*CodingSession, error) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		return nil, err
	}

	id, err := requestutil.ID(request, "id")
	if err != nil {
		return nil, err
	}

	session, err := handler.service.GetSession(request.Context(), id)
	if err != nil {
		return nil, err
	}

	if session.UserID != userID {
		return nil, apperr.NotFound("Coding session")
	}
	return session, nil
}

func (handler *Handler) dateRange(request *http.Request) (daterange.Range, error) {
	today := daterange.Today(handler.service.now(), handler.location)
	fallback := daterange.LastDays(today, defaultRangeDates)

	from, err := requestutil.QueryDate(request, FieldFrom, fallback.From)
	if err != nil {
		return daterange.Range{}, err
	}

	to, err := requestutil.QueryDate(request, FieldTo, fallback.To)
	if err != nil {
		return daterange.Range{}, err
	}

	span := daterange.Range{From: from, To: to}
	if !span.IsValid() {
		return daterange.Range{}, errInvertedRange()
	}
	return span, nil
}
