// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/middleware"
	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &sec.AuthClaims{UserID: "user-1"}, nil
}

// whoami echoes the authenticated user id, or "anonymous".
var whoami = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	if claims := ctxutil.GetAuthUser(request.Context()); claims != nil {
		_, _ = writer.Write([]byte(claims.UserID))
		return
	}
	_, _ = writer.Write([]byte("anonymous"))
})

/*
TestAuthenticate covers header, query-parameter and anonymous flows.
*/
func TestAuthenticate(t *testing.T) {
	handler := middleware.Authenticate(stubVerifier{})(whoami)

	tests := []struct {
		name   string
		target string
		header string
		status int
		body   string
	}{
		{"anonymous", "/", "", http.StatusOK, "anonymous"},
		{"bearer_header", "/", "Bearer good", http.StatusOK, "user-1"},
		{"query_token", "/?access_token=good", "", http.StatusOK, "user-1"},
		{"bad_format", "/", "Token good", http.StatusUnauthorized, ""},
		{"bad_token", "/", "Bearer nope", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.status, recorder.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, recorder.Body.String())
			}
		})
	}
}

/*
TestRequireAuth verifies anonymous requests are rejected.
*/
func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(whoami)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1"}))
	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

/*
TestRequestID verifies that a client ID is preserved and a missing one generated.
*/
func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID()(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set(constants.HeaderXRequestID, "client-id")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	assert.Equal(t, "client-id", seen)
	assert.Equal(t, "client-id", recorder.Header().Get(constants.HeaderXRequestID))

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.NotEqual(t, "client-id", seen)
}

/*
TestRealIP checks proxy header precedence.
*/
func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXForwardedFor, "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", middleware.RealIP(request))

	request.Header.Set(constants.HeaderXRealIP, "198.51.100.2")
	assert.Equal(t, "198.51.100.2", middleware.RealIP(request))
}

type originConfig struct{ development bool }

func (c originConfig) IsDevelopment() bool  { return c.development }
func (c originConfig) OriginSuffix() string { return "yomira.app" }

/*
TestOriginAllowed covers exact host and subdomain matching.
*/
func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"apex", "https://yomira.app", true},
		{"subdomain", "https://app.yomira.app", true},
		{"port", "https://app.yomira.app:8443", true},
		{"uppercase", "https://APP.Yomira.App", true},
		{"lookalike", "https://evilyomira.app", false},
		{"suffix_in_path", "https://evil.example/yomira.app", false},
		{"other_tld", "https://yomira.app.evil.example", false},
		{"empty", "", false},
		{"opaque", "null", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, middleware.OriginAllowed(tt.origin, "yomira.app"))
		})
	}

	t.Run("leading_dot_domain", func(t *testing.T) {
		assert.True(t, middleware.OriginAllowed("https://app.yomira.app", ".yomira.app"))
		assert.False(t, middleware.OriginAllowed("https://evilyomira.app", ".yomira.app"))
	})
}

/*
TestWebSocketOrigin checks upgrades follow the CORS policy and refuse a missing Origin.
*/
func TestWebSocketOrigin(t *testing.T) {
	assert.Nil(t, middleware.WebSocketOrigin(originConfig{development: true}))

	check := middleware.WebSocketOrigin(originConfig{})
	upgrade := func(origin string) bool {
		request := httptest.NewRequest(http.MethodGet, "/preview", nil)
		if origin != "" {
			request.Header.Set(constants.HeaderOrigin, origin)
		}
		return check(request)
	}

	assert.True(t, upgrade("https://app.yomira.app"))
	assert.False(t, upgrade("https://evilyomira.app"))
	assert.False(t, upgrade(""))
}

/*
TestCORS checks allow headers are only sent to matching origins.
*/
func TestCORS(t *testing.T) {
	handler := middleware.CORS(originConfig{})(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"subdomain", "https://app.yomira.app", "https://app.yomira.app"},
		{"lookalike", "https://evilyomira.app", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodOptions, "/", nil)
			request.Header.Set(constants.HeaderOrigin, tt.origin)
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			assert.Equal(t, tt.want, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
