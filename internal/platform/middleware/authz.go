// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/respond"
	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify tokens in middleware.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, fall back to the 'access_token' query parameter (browsers
//     cannot set headers on websocket upgrades).
//  3. If neither is present, the request proceeds as anonymous.
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			tokenStr := request.URL.Query().Get("access_token")

			if authHeader := request.Header.Get(constants.HeaderAuthorization); authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
					respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
					return
				}
				tokenStr = parts[1]
			}

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if tokenStr == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(tokenStr)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired token"))
				return
			}

			// ── 3. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
