// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/ctxutil"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/daterange"
	"github.com/taibuivan/codetrack/pkg/uuid"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

An empty body leaves target untouched, so endpoints with all-optional fields
(e.g. starting a session) accept a bare POST.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if request.Body == nil {
		return nil
	}

	decoder := json.NewDecoder(io.LimitReader(request.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
ID retrieves a named URL parameter and checks that it is a UUID.

Returns:
  - string: the canonical lowercase UUID
  - error: apperr.ValidationError if the parameter is not a UUID
*/
func ID(request *http.Request, name string) (string, error) {
	id, ok := uuid.Normalize(chi.URLParam(request, name))
	if !ok {
		return "", validate.Field(name, "Must be a valid UUID")
	}
	return id, nil
}

/*
QueryDate parses an optional "YYYY-MM-DD" query parameter.

Returns:
  - civil.Date: the parsed date, or fallback when the parameter is absent
  - error: apperr.ValidationError if the parameter is present but malformed
*/
func QueryDate(request *http.Request, name string, fallback civil.Date) (civil.Date, error) {
	raw := request.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	date, err := daterange.Parse(raw)
	if err != nil {
		return civil.Date{}, validate.Field(name, "Must be a date in YYYY-MM-DD format")
	}
	return date, nil
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.AuthClaims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.AuthClaims, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.
*/
func RequiredUserID(request *http.Request) (string, error) {
	userID := ctxutil.GetUserID(request.Context())
	if userID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}
	return userID, nil
}
