// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Parameters
//   - err: The raw pgx error (nil passes through).
//   - resource: Client-facing resource name used for NOT_FOUND messages.
//   - action: Snake_case label recorded in the server-side cause.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 2. Unknown query errors become Internal Server Errors
	return apperr.Internal(fmt.Errorf("%s: %w", action, err))
}
