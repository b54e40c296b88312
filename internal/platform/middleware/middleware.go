// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package middleware provides the cross-cutting HTTP processing chain.

It acts as a series of decorators around the standard http.Handler, injecting
traceability, safety, and security into every request lifecycle.

Standard Stack:

  - Trace: RequestID generation for log correlation.
  - Log: Structured Activity logging (slog).
  - Guard: Rate limiting and CORS validation.
  - Safe: Panic recovery to prevent server crashes.
  - Measure: Prometheus request histograms (metrics.go).

Authentication lives in authz.go.
*/
package middleware

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/respond"
)

// # Request Tracing

// RequestID attaches a correlation ID to every request for log tracing.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check if the client already provided an ID
			requestID := request.Header.Get(constants.HeaderXRequestID)

			// 2. Generate a new one if missing (using UUID v7 for time-sortable properties)
			if requestID == "" {
				uuidV7, err := uuid.NewV7()
				if err != nil {
					requestID = uuid.New().String()
				} else {
					requestID = uuidV7.String()
				}
			}

			// 3. Inject into context and response headers
			ctx := ctxutil.WithRequestID(request.Context(), requestID)
			writer.Header().Set(constants.HeaderXRequestID, requestID)

			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// # Activity Logging

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (recorder *statusRecorder) WriteHeader(code int) {
	recorder.status = code
	recorder.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades pass through the logger.
func (recorder *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := recorder.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("middleware: %T does not support hijacking", recorder.ResponseWriter)
	}
	recorder.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// Unwrap exposes the underlying writer to [http.ResponseController].
func (recorder *statusRecorder) Unwrap() http.ResponseWriter {
	return recorder.ResponseWriter
}

// StructuredLogger logs every request status and performance metrics.
// It also injects a request-specific logger into the context.
func StructuredLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			startTime := time.Now()
			rid := ctxutil.GetRequestID(request.Context())
			ip := RealIP(request)

			// 1. Create a sub-logger for this specific request
			requestLogger := logger.With(
				slog.String("request_id", rid),
				slog.String("method", request.Method),
				slog.String("path", request.URL.Path),
				slog.String("ip", ip),
			)

			// 2. Inject this logger into the context for downstream use
			ctx := ctxutil.WithLogger(request.Context(), requestLogger)
			wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}

			// 3. Proceed to downstream handlers with the enriched context
			next.ServeHTTP(wrappedWriter, request.WithContext(ctx))

			// 4. Final log entry after the request is finished
			latency := time.Since(startTime).Milliseconds()
			logLevel := slog.LevelInfo

			if wrappedWriter.status >= 500 {
				logLevel = slog.LevelError
			} else if wrappedWriter.status >= 400 {
				logLevel = slog.LevelWarn
			}

			// Enlist final response metrics
			logAtters := []any{
				slog.Int("status", wrappedWriter.status),
				slog.Int64("latency_ms", latency),
				slog.String("user_agent", request.UserAgent()),
			}

			// Add user_id if the request is authenticated
			if claims := ctxutil.GetAuthUser(ctx); claims != nil {
				logAtters = append(logAtters, slog.String("user_id", claims.UserID))
			}

			requestLogger.Log(ctx, logLevel, "http_request_finished", logAtters...)
		})
	}
}

// # Rate Limiting

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// NewRateLimiter allows rps requests per second per IP with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   rate.Limit(rps),
		burst:   burst,
		now:     time.Now,
	}
}

// Allow takes one token from the bucket of clientIP.
func (limiter *RateLimiter) Allow(clientIP string) bool {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[clientIP]
	if !found {
		client = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[clientIP] = client
	}
	client.lastSeen = limiter.now()
	return client.limiter.AllowN(client.lastSeen, 1)
}

// Prune forgets clients idle for longer than ttl and returns how many were dropped.
func (limiter *RateLimiter) Prune(ttl time.Duration) int {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	dropped := 0
	cutoff := limiter.now().Add(-ttl)
	for ip, client := range limiter.clients {
		if client.lastSeen.Before(cutoff) {
			delete(limiter.clients, ip)
			dropped++
		}
	}
	return dropped
}

// Run prunes idle clients every [constants.RateLimitCleanupInterval] until context ends.
func (limiter *RateLimiter) Run(context context.Context) {
	ticker := time.NewTicker(constants.RateLimitCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			limiter.Prune(constants.RateLimitClientTTL)
		case <-context.Done():
			return
		}
	}
}

// Middleware rejects requests over the per-IP budget with 429.
func (limiter *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !limiter.Allow(RealIP(request)) {
			rateLimitedTotal.Inc()
			respond.Error(writer, request, apperr.RateLimited(1))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RateLimit builds a limiter with the default budget and prunes it until context ends.
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(constants.DefaultRateLimitRPS, constants.DefaultRateLimitBurst)
	go limiter.Run(context)
	return limiter.Middleware
}

// # Reliability & Safety

// PanicRecovery recovers from panics, logs stack trace, and returns 500.
func PanicRecovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Defer a recovery function to catch any runtime exceptions
			defer func() {
				if err := recover(); err != nil {

					// Capture the runtime stack trace for diagnostics
					stackTrace := make([]byte, 2048)
					length := runtime.Stack(stackTrace, false)

					// Retrieve the request-specific logger from context if available
					reqLogger := ctxutil.GetLogger(request.Context())

					// Log the incident to our structured logging system
					reqLogger.ErrorContext(request.Context(), "panic_recovered",
						slog.Any("error", err),
						slog.String("stack", string(stackTrace[:length])),
					)

					// Return a safe, generic error to the client
					writeError(writer, http.StatusInternalServerError, apperr.CodeInternal, "An unexpected error occurred")
				}
			}()

			next.ServeHTTP(writer, request)
		})
	}
}

// # Cross-Origin Resource Sharing

// AppConfig defines the behavior needed by the CORS middleware.
type AppConfig interface {
	IsDevelopment() bool
	OriginSuffix() string
}

/*
OriginAllowed reports whether the host of origin is domain itself or one of its
subdomains. "https://app.yomira.app" matches "yomira.app" while
"https://evilyomira.app" does not.
*/
func OriginAllowed(origin, domain string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if origin == "" || domain == "" {
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil || parsed.Host == "" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	return host == domain || strings.HasSuffix(host, "."+domain)
}

/*
WebSocketOrigin returns the origin check for websocket upgrades. It applies
the CORS policy, except that a missing Origin is refused. Development accepts
any origin and gets a nil check.
*/
func WebSocketOrigin(cfg AppConfig) func(*http.Request) bool {
	if cfg.IsDevelopment() {
		return nil
	}
	domain := cfg.OriginSuffix()
	return func(request *http.Request) bool {
		return OriginAllowed(request.Header.Get(constants.HeaderOrigin), domain)
	}
}

// CORS handles Cross-Origin Resource Sharing based on application environment.
func CORS(cfg AppConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// 1. Check the Origin header
			origin := request.Header.Get(constants.HeaderOrigin)
			if origin == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// 2. Check if the origin is allowed (strict in PROD, open in DEV)
			isAllowed := false
			if cfg.IsDevelopment() {
				isAllowed = true
			} else {
				isAllowed = OriginAllowed(origin, cfg.OriginSuffix())
			}

			// 3. Inject standard CORS headers if authorized
			if isAllowed {
				header := writer.Header()
				header.Set("Access-Control-Allow-Origin", origin)
				header.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				header.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, X-Request-ID")
				header.Set("Access-Control-Expose-Headers", "Content-Length, X-Request-ID")
				header.Set("Access-Control-Allow-Credentials", "true")
				header.Set("Access-Control-Max-Age", "300")
			}

			// 4. Handle pre-flight requests (OPTIONS)
			if request.Method == http.MethodOptions {
				writer.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// # Middleware Helpers

// RealIP extracts client IP, respecting common proxy headers.
func RealIP(request *http.Request) string {

	// Check standard proxy headers first
	if ip := request.Header.Get(constants.HeaderXRealIP); ip != "" {
		return ip
	}

	if forwarded := request.Header.Get(constants.HeaderXForwardedFor); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}

	// Fallback to the direct connection's address
	host, _, _ := net.SplitHostPort(request.RemoteAddr)
	return host
}

// writeError outputs a simple JSON error payload.
func writeError(writer http.ResponseWriter, status int, code, message string) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(map[string]string{
		constants.FieldCode:  code,
		constants.FieldError: message,
	})
}
