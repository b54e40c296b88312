// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond writes the JSON envelopes every avatar endpoint returns.
//
// # Envelopes
//
// Success bodies are {"data": ...}. Failures are {"error", "code", "details"}
// built from an [apperr.AppError]; any other error becomes INTERNAL_ERROR and
// its text never reaches the client.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
)

// SuccessEnvelope wraps a successful payload.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the body of every failed request.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes payload with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes 200 with data in the success envelope.
func OK(writer http.ResponseWriter, data any) {
	Status(writer, http.StatusOK, data)
}

// Created writes 201 with data in the success envelope.
func Created(writer http.ResponseWriter, data any) {
	Status(writer, http.StatusCreated, data)
}

// Status writes data in the success envelope with an explicit status code.
func Status(writer http.ResponseWriter, statusCode int, data any) {
	JSON(writer, statusCode, SuccessEnvelope{Data: data})
}

/*
Error renders err as an error envelope.

Server-side failures are logged on the request logger, which already carries
request_id and, inside a session route, session_id.
*/
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	logger := ctxutil.GetLogger(request.Context())

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(request.Context(), "unhandled_error_swallowed", slog.String("error", err.Error()))
		appError = apperr.Internal(err)
	}

	if appError.HTTPStatus >= http.StatusInternalServerError {
		logger.ErrorContext(request.Context(), "api_server_error",
			slog.String("code", appError.Code),
			slog.Any("cause", appError.Cause),
		)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}
