// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request reads caller identity, URL parameters and JSON bodies from
incoming HTTP requests, returning [apperr.AppError] values that respond.Error
can render directly.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/constants"
	"github.com/taibuivan/avatarstudio/internal/platform/ctxutil"
	"github.com/taibuivan/avatarstudio/internal/platform/validate"
)

/*
DecodeJSON decodes a required JSON body into target.

Bodies larger than [constants.MaxRequestBodyBytes], unknown keys, and
trailing data are all rejected.

Returns:
  - error: validate.ErrInvalidJSON on any decoding failure
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := decode(request, target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodeOptionalJSON is [DecodeJSON] for endpoints whose body may be omitted.
An empty body leaves target untouched.
*/
func DecodeOptionalJSON(request *http.Request, target any) error {
	if err := decode(request, target); err != nil && !errors.Is(err, io.EOF) {
		return validate.ErrInvalidJSON
	}
	return nil
}

func decode(request *http.Request, target any) error {
	if request.Body == nil {
		return io.EOF
	}

	decoder := json.NewDecoder(http.MaxBytesReader(nil, request.Body, constants.MaxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return err
	}
	if decoder.More() {
		return errors.New("request: trailing data after JSON body")
	}
	return nil
}

// Param retrieves a named URL parameter from the request.
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
RequiredUserID returns the ID of the authenticated caller.

Returns:
  - error: apperr.Unauthorized if no verified token was attached
*/
func RequiredUserID(request *http.Request) (string, error) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil || claims.UserID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}
	return claims.UserID, nil
}
