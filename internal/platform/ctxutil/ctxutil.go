// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package ctxutil stores and reads the per-request values shared by middleware,
// handlers and the response writer.
//
// Keys are an unexported type, so only this package can set or read them.
package ctxutil

import (
	"context"
	"log/slog"

	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

type key int

const (
	keyRequestID key = iota
	keyLogger
	keyUser
	keySessionID
)

// # Request Tracing

// WithRequestID attaches the X-Request-ID correlation value.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

// GetRequestID returns the request ID, or "" outside a request.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(keyRequestID).(string)
	return id
}

// # Structured Logging

// WithLogger attaches a request-scoped logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, keyLogger, logger)
}

// GetLogger returns the request logger, falling back to [slog.Default].
func GetLogger(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(keyLogger).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}

// # Identity

// WithAuthUser attaches the verified token claims.
func WithAuthUser(ctx context.Context, user *sec.AuthClaims) context.Context {
	return context.WithValue(ctx, keyUser, user)
}

// GetAuthUser returns the caller's claims, or nil for anonymous requests.
func GetAuthUser(ctx context.Context) *sec.AuthClaims {
	claims, _ := ctx.Value(keyUser).(*sec.AuthClaims)
	return claims
}

// # Avatar Sessions

/*
WithSessionID attaches the avatar session addressed by the request and tags
the request logger with it, so every later log line carries session_id.
*/
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	ctx = context.WithValue(ctx, keySessionID, sessionID)
	return WithLogger(ctx, GetLogger(ctx).With(slog.String("session_id", sessionID)))
}

// GetSessionID returns the avatar session ID, or "" when none was attached.
func GetSessionID(ctx context.Context) string {
	id, _ := ctx.Value(keySessionID).(string)
	return id
}
