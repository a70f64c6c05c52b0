// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/codetrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/codetrack/internal/platform/request"
	"github.com/taibuivan/codetrack/internal/platform/respond"
	"github.com/taibuivan/codetrack/pkg/daterange"
)

// # Definitions & Constructors

// Handler exposes the dashboard statistics of the caller.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] with the dashboard endpoints.
//
// # Endpoints
//   - GET /          : Stats snapshot, running session and recent activity.
//   - GET /stats     : Per-day activity between two dates.
//   - GET /projects  : Completed minutes per named project.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.overview)
	router.Get("/stats", handler.detailedStats)
	router.Get("/projects", handler.projectStats)

	return router
}

// # Handlers

func (handler *Handler) overview(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	overview, err := handler.service.Overview(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, overview)
}

/*
detailedStats returns activity keyed by date.

GET /api/v1/dashboard/stats?start=YYYY-MM-DD&end=YYYY-MM-DD

Without dates the window runs from 30 days ago through today.

Response:
  - 200: map[date]DailyActivity
  - 400: malformed or inverted dates
*/
func (handler *Handler) detailedStats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	today := handler.service.Today()

	start, err := requestutil.QueryDate(request, FieldStart, today.AddDays(-DefaultStatsLookback))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	end, err := requestutil.QueryDate(request, FieldEnd, today)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	daily, err := handler.service.DetailedStats(request.Context(), userID, daterange.Range{From: start, To: end})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, daily)
}

func (handler *Handler) projectStats(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	projects, err := handler.service.ProjectStats(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, projects)
}
