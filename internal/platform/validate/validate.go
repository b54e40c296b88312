// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package validate collects field-level failures from request payloads and
// avatar configurations, then reports them as one VALIDATION_ERROR.
package validate

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
)

// ErrInvalidJSON is returned when a request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("Invalid JSON payload")

// Validator accumulates [apperr.FieldError] values through chained rules.
// Use a fresh Validator per payload; it is not safe for concurrent use.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails on an empty or whitespace-only value.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "This field is required")
	}
	return v
}

// MaxLen fails when value is longer than max runes.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, fmt.Sprintf("Maximum %d characters", max))
	}
	return v
}

// Token applies Required and MaxLen, reporting at most one failure for field.
func (v *Validator) Token(field, value string, max int) *Validator {
	before := len(v.errs)
	if v.Required(field, value); len(v.errs) > before {
		return v
	}
	return v.MaxLen(field, value, max)
}

// OneOf fails when value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	if !slices.Contains(allowed, value) {
		v.add(field, "Must be one of: "+strings.Join(allowed, ", "))
	}
	return v
}

// Err is [Validator.ErrWithMessage] with a generic message.
func (v *Validator) Err() error {
	return v.ErrWithMessage("Validation failed")
}

// ErrWithMessage returns nil when every rule passed, otherwise a
// VALIDATION_ERROR carrying message and one detail per failure.
func (v *Validator) ErrWithMessage(message string) error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError(message, v.errs...)
}

// HasErrors reports whether any rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

func (v *Validator) add(field, message string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Message: message})
}
