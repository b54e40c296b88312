// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: HTTP server timeouts and request limits.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Headers: Well-known request and response header names.
  - Redis Prefixes: Key taxonomy for draft sessions.
*/
package constants

import "time"

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// HealthCheckTimeout bounds each dependency probe behind /ready.
	HealthCheckTimeout = 2 * time.Second

	// MaxRequestBodyBytes caps JSON bodies. Avatar payloads are five short tokens.
	MaxRequestBodyBytes = 16 << 10
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # JSON Field Identifiers

const (
	FieldError  = "error"
	FieldCode   = "code"
	FieldStatus = "status"
	FieldChecks = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixAvatarSession = "avatar:session:"
)
