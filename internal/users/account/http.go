// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/codetrack/internal/platform/middleware"
	requestutil "github.com/taibuivan/codetrack/internal/platform/request"
	"github.com/taibuivan/codetrack/internal/platform/respond"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

// Handler implements the HTTP layer for user account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
//
// # Endpoints
//   - GET    /availability : Username and email availability (public).
//   - GET    /me           : Own profile.
//   - PATCH  /me           : Change email and/or password.
//   - DELETE /me           : Delete own account and sessions.
//   - GET    /users        : Paged account directory (ADMIN).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public discovery
	router.Get("/availability", handler.availability)

	// Account Management
	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireAuth)

		router.Get("/me", handler.getMe)
		router.Patch("/me", handler.updateMe)
		router.Delete("/me", handler.deleteMe)
	})

	// Administration
	router.With(middleware.RequireRole(sec.RoleAdmin)).Get("/users", handler.listUsers)

	return router
}

// # User Profile Endpoints

/*
GET /api/v1/account/me.

Description: Retrieves the full private profile of the authenticated user.

Response:
  - 200: User: Fully hydrated user profile
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// updateMeRequest defines the expected JSON payload for profile updates.
type updateMeRequest struct {
	Email           *string `json:"email"`
	Password        *string `json:"password"`
	CurrentPassword string  `json:"current_password"`
}

/*
PATCH /api/v1/account/me.

Description: Applies partial updates to the authenticated user's account.

Request:
  - body: updateMeRequest (Partial JSON)

Response:
  - 200: User: The updated profile
  - 400: ErrInvalidJSON/Validation: Invalid input data
  - 401: Authentication required or wrong current password
  - 409: Email already registered
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.accountService.UpdateProfile(request.Context(), userID, UpdateProfileInput{
		Email:           input.Email,
		Password:        input.Password,
		CurrentPassword: input.CurrentPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/account/me.

Description: Permanently deletes the authenticated user's account.

Response:
  - 204: No Content: Account deleted successfully
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Directory Endpoints

/*
GET /api/v1/account/availability?username=&email=.

Response:
  - 200: Availability
  - 400: neither parameter given
*/
func (handler *Handler) availability(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()

	result, err := handler.accountService.CheckAvailability(request.Context(), query.Get(FieldUsername), query.Get(FieldEmail))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
GET /api/v1/account/users?page=&limit=.

Response:
  - 200: []User with pagination meta
  - 403: caller is not an administrator
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}
