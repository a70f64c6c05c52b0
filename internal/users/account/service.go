// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/internal/users/auth"
	"github.com/taibuivan/codetrack/pkg/pagination"
)

// # Service Layer

// Service orchestrates business logic for user accounts.
type Service struct {
	userRepository auth.UserRepository
	sessions       SessionCleaner
	tokens         TokenRevoker
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo auth.UserRepository,
	sessions SessionCleaner,
	tokens TokenRevoker,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		sessions:       sessions,
		tokens:         tokens,
		logger:         logger,
	}
}

// # Profile Management

/*
GetProfile retrieves the private identity of a user.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *auth.User: The hydrated user profile
  - error: apperr.NotFound or storage failures
*/
func (service *Service) GetProfile(context context.Context, userID string) (*auth.User, error) {
	user, err := service.userRepository.FindByID(context, userID)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.NotFound("User")
	}
	if err != nil {
		return nil, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return user, nil
}

// UpdateProfileInput defines the mutable subset of account fields.
// Nil fields are left unchanged.
type UpdateProfileInput struct {
	Email           *string
	Password        *string
	CurrentPassword string
}

/*
UpdateProfile applies a partial set of changes to an account.

Description: A new email must be free. A new password requires the current
one and revokes every refresh token of the account.

Parameters:
  - context: context.Context
  - userID: string
  - input: UpdateProfileInput

Returns:
  - *auth.User: The updated user profile
  - error: Validation, Conflict, Unauthorized or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := service.GetProfile(context, userID)
	if err != nil {
		return nil, err
	}

	// ── 1. Email ────────────────────────────────────────────────────────
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))

		validator := &validate.Validator{}
		validator.Required(FieldEmail, email).Email(FieldEmail, email)
		if err := validator.Err(); err != nil {
			return nil, err
		}

		if email != user.Email {
			taken, err := service.userRepository.ExistsByEmail(context, email)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperr.Conflict("Email is already registered")
			}
			user.Email = email
		}
	}

	// ── 2. Password ─────────────────────────────────────────────────────
	passwordChanged := false
	if input.Password != nil {
		validator := &validate.Validator{}
		validator.Required(FieldPassword, *input.Password).
			MinLen(FieldPassword, *input.Password, auth.MinPasswordLength).
			MaxBytes(FieldPassword, *input.Password, auth.MaxPasswordLength)
		if err := validator.Err(); err != nil {
			return nil, err
		}

		if !user.IsOAuth2User && !sec.CheckPasswordHash(input.CurrentPassword, user.PasswordHash) {
			return nil, apperr.Unauthorized("Current password is incorrect")
		}

		hashedPassword, err := sec.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("account_service_hash_failed: %w", err)
		}
		user.PasswordHash = hashedPassword
		passwordChanged = true
	}

	// ── 3. Persist ──────────────────────────────────────────────────────
	if err := service.userRepository.Update(context, user); err != nil {
		if errors.Is(err, dberr.ErrConflict) {
			return nil, apperr.Conflict("Email is already registered")
		}
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if passwordChanged {
		if err := service.tokens.LogoutAll(context, userID); err != nil {
			return nil, err
		}
	}

	service.logger.InfoContext(context, "user_profile_updated",
		slog.String("user_id", userID),
		slog.Bool("password_changed", passwordChanged),
	)
	return user, nil
}

/*
DeleteAccount permanently removes an account and its coding sessions.

Description: Sessions go first so a failure never leaves orphans. Refresh
tokens are revoked last; a revocation failure is logged but does not undo
the deletion, the tokens expire on their own.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: apperr.NotFound or storage failures
*/
func (service *Service) DeleteAccount(context context.Context, userID string) error {
	deleted, err := service.sessions.DeleteUserSessions(context, userID)
	if err != nil {
		return fmt.Errorf("account_service_delete_sessions_failed: %w", err)
	}

	if err := service.userRepository.Delete(context, userID); err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return apperr.NotFound("User")
		}
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if err := service.tokens.LogoutAll(context, userID); err != nil {
		service.logger.WarnContext(context, "user_token_revocation_failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	service.logger.WarnContext(context, "user_account_deleted",
		slog.String("user_id", userID),
		slog.Int64("sessions_deleted", deleted),
	)
	return nil
}

// # Directory

/*
CheckAvailability reports whether a username and/or an email are still free.

Parameters:
  - context: context.Context
  - username, email: string (blank values are not checked)

Returns:
  - Availability: one flag per non-blank identifier
  - error: Validation or storage failures
*/
func (service *Service) CheckAvailability(context context.Context, username, email string) (Availability, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))

	if username == "" && email == "" {
		return Availability{}, apperr.ValidationError("Provide a username or an email",
			apperr.FieldError{Field: FieldUsername, Message: "Username or email is required"},
		)
	}

	var result Availability

	if username != "" {
		taken, err := service.userRepository.ExistsByUsername(context, username)
		if err != nil {
			return Availability{}, err
		}
		free := !taken
		result.Username = &free
	}

	if email != "" {
		taken, err := service.userRepository.ExistsByEmail(context, email)
		if err != nil {
			return Availability{}, err
		}
		free := !taken
		result.Email = &free
	}

	return result, nil
}

// ListUsers returns one page of all accounts, oldest first, and the total count.
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]*auth.User, int, error) {
	users, total, err := service.userRepository.List(context, params)
	if err != nil {
		return nil, 0, fmt.Errorf("account_service_list_users_failed: %w", err)
	}
	return users, total, nil
}
