// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/codetrack/internal/platform/apperr"
	"github.com/taibuivan/codetrack/internal/platform/dberr"
	"github.com/taibuivan/codetrack/internal/platform/sec"
	"github.com/taibuivan/codetrack/internal/platform/validate"
	"github.com/taibuivan/codetrack/pkg/uuid"
)

// # Contracts & Types

// TokenProvider signs access tokens.
type TokenProvider interface {
	// GenerateAccessToken creates a signed JWT for the given account.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - username: The username of the account.
	//   - roles: The role names held by the account.
	//   - timeToLive: The duration before the token expires.
	GenerateAccessToken(userID, username string, roles []string, timeToLive time.Duration) (string, error)
}

// Service implements registration and the token lifecycle.
type Service struct {
	userRepository  UserRepository
	tokenRepository RefreshTokenRepository
	tokenProvider   TokenProvider
	logger          *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	tokenRepo RefreshTokenRepository,
	tokenProv TokenProvider,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository:  userRepo,
		tokenRepository: tokenRepo,
		tokenProvider:   tokenProv,
		logger:          logger,
	}
}

// # Registration Flow

// RegisterInput holds the data required to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

/*
Register validates, hashes and persists a new account with the USER role.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Validation, Conflict or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// ── 1. Shape checks ─────────────────────────────────────────────────
	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, username, MinUsernameLength).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		Username(FieldUsername, username).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		MaxBytes(FieldPassword, input.Password, MaxPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// ── 2. Uniqueness ───────────────────────────────────────────────────
	taken, err := service.userRepository.ExistsByUsername(context, username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.Conflict("Username is already taken")
	}

	registered, err := service.userRepository.ExistsByEmail(context, email)
	if err != nil {
		return nil, err
	}
	if registered {
		return nil, apperr.Conflict("Email is already registered")
	}

	// ── 3. Persist ──────────────────────────────────────────────────────
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		IsActive:     true,
		Roles:        []sec.UserRole{sec.RoleUser},
	}

	if err := service.userRepository.Create(context, user); err != nil {
		if errors.Is(err, dberr.ErrConflict) {
			return nil, apperr.Conflict("Username or email is already registered")
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	service.logger.InfoContext(context, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Login    string // Username or email
	Password string
}

// LoginSession is the result of a successful login or refresh.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	User                  *User
}

/*
Login verifies credentials and issues an access and refresh token pair.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Tokens and the account
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {
	login := strings.TrimSpace(input.Login)

	var user *User
	var err error
	if strings.Contains(login, "@") {
		user, err = service.userRepository.FindByEmail(context, login)
	} else {
		user, err = service.userRepository.FindByUsername(context, login)
	}

	// Same message and cost for unknown accounts and wrong passwords.
	if errors.Is(err, dberr.ErrNotFound) {
		sec.CheckPasswordHash(input.Password, "")
		return nil, apperr.Unauthorized("Invalid login credentials")
	}
	if err != nil {
		return nil, err
	}

	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if !user.IsActive {
		return nil, apperr.Forbidden("Account is disabled")
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	if err := service.userRepository.Update(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_login_touch_failed: %w", err)
	}

	session, err := service.issue(context, user)
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "user_logged_in", slog.String("user_id", user.ID))
	return session, nil
}

/*
Refresh rotates a refresh token: the presented token is consumed and a new
pair is issued.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*LoginSession, error) {
	userID, err := service.tokenRepository.Consume(context, sec.HashToken(refreshToken))
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}
	if err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil || !user.IsActive {
		return nil, apperr.Unauthorized("User not found or disabled")
	}

	return service.issue(context, user)
}

// Logout revokes a refresh token. Unknown tokens are ignored.
func (service *Service) Logout(context context.Context, refreshToken string) error {
	if err := service.tokenRepository.Revoke(context, sec.HashToken(refreshToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

// LogoutAll revokes every refresh token of an account.
func (service *Service) LogoutAll(context context.Context, userID string) error {
	if err := service.tokenRepository.RevokeAll(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}
	return nil
}

// issue signs an access token and stores a fresh refresh token.
func (service *Service) issue(context context.Context, user *User) (*LoginSession, error) {
	accessToken, err := service.tokenProvider.GenerateAccessToken(user.ID, user.Username, user.RoleNames(), AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	refreshToken, err := sec.GenerateSecureToken()
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.tokenRepository.Save(context, sec.HashToken(refreshToken), user.ID, RefreshTokenTTL); err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_save_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: time.Now().Add(RefreshTokenTTL),
		User:                  user,
	}, nil
}
