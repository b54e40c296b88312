// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package ctxutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

func TestContext_Values(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, ctxutil.GetRequestID(ctx))
	assert.Nil(t, ctxutil.GetAuthUser(ctx))
	assert.Empty(t, ctxutil.GetSessionID(ctx))
	assert.Equal(t, slog.Default(), ctxutil.GetLogger(ctx))

	ctx = ctxutil.WithRequestID(ctx, "req-1")
	ctx = ctxutil.WithAuthUser(ctx, &sec.AuthClaims{UserID: "user-1"})

	assert.Equal(t, "req-1", ctxutil.GetRequestID(ctx))
	require.NotNil(t, ctxutil.GetAuthUser(ctx))
	assert.Equal(t, "user-1", ctxutil.GetAuthUser(ctx).UserID)
}

/*
TestContext_SessionID checks the session tag reaches the request logger.
*/
func TestContext_SessionID(t *testing.T) {
	var buffer bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buffer, nil))

	ctx := ctxutil.WithLogger(context.Background(), logger.With(slog.String("request_id", "req-1")))
	ctx = ctxutil.WithSessionID(ctx, "session-1")

	assert.Equal(t, "session-1", ctxutil.GetSessionID(ctx))

	ctxutil.GetLogger(ctx).Info("avatar_field_updated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buffer.Bytes(), &line))
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "session-1", line["session_id"])
}
