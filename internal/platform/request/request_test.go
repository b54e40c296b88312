// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/avatarstudio/internal/platform/request"
	"github.com/taibuivan/avatarstudio/internal/platform/sec"
	"github.com/taibuivan/avatarstudio/internal/platform/validate"
)

type payload struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

/*
TestDecodeJSON covers the accepted and rejected body shapes.
*/
func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		required bool
		wantErr  bool
	}{
		{"valid", `{"field":"hairColor","value":"red"}`, true, false},
		{"unknown_key", `{"field":"hairColor","colour":"red"}`, true, true},
		{"trailing_data", `{"field":"hairColor"}{"field":"skinTone"}`, true, true},
		{"oversized", `{"value":"` + strings.Repeat("x", 20<<10) + `"}`, true, true},
		{"empty_required", ``, true, true},
		{"empty_optional", ``, false, false},
		{"malformed_optional", `{"field":`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var target payload
			var err error
			if tt.required {
				err = requestutil.DecodeJSON(request, &target)
			} else {
				err = requestutil.DecodeOptionalJSON(request, &target)
			}

			if tt.wantErr {
				assert.ErrorIs(t, err, validate.ErrInvalidJSON)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRequiredUserID(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := requestutil.RequiredUserID(request)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)

	request = request.WithContext(ctxutil.WithAuthUser(request.Context(), &sec.AuthClaims{UserID: "user-1"}))
	userID, err := requestutil.RequiredUserID(request)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}
