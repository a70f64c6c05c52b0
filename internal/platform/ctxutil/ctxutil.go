// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package ctxutil stores and reads the per-request values that middleware puts
on a [context.Context]: the correlation id, the request logger and the
authenticated caller.

Keys are unexported, so only this package can read or overwrite them.
*/
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/codetrack/internal/platform/sec"
)

type key uint8

const (
	keyRequestID key = iota
	keyLogger
	keyCaller
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID returns the correlation value, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches the request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(keyLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// # Caller Identity

// WithAuthUser attaches the verified caller and tags the request logger
// with its user id, so every later log line of the request carries it.
func WithAuthUser(ctx context.Context, claims *sec.AuthClaims) context.Context {
	ctx = context.WithValue(ctx, keyCaller, claims)
	if claims == nil {
		return ctx
	}
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("user_id", claims.UserID)))
}

// GetAuthUser returns the verified caller, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(keyCaller).(*sec.AuthClaims)
	return claims
}

// GetUserID returns the caller's user id, or "" for anonymous requests.
func GetUserID(ctx context.Context) string {
	if claims := GetAuthUser(ctx); claims != nil {
		return claims.UserID
	}
	return ""
}
