// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package avatar implements avatar customization: the configuration value object,
the draft controller state machine, and the service that persists drafts
between HTTP calls.

# Architecture

  - Entities: Configuration, Session, SavedAvatar.
  - Core: Controller owns one draft per session and talks to the outside world
    only through sinks (preview, result, acknowledgment, host close).
  - Service: restores a Controller from a stored Session, applies one
    operation, and persists the outcome.
  - Catalog: token to display metadata. The controller never consults it.
*/
package avatar

import (
	"errors"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/validate"
)

// # Fields

// Field names one of the five avatar attributes.
type Field string

const (
	FieldHairstyle     Field = "hairstyle"
	FieldHairColor     Field = "hairColor"
	FieldSkinTone      Field = "skinTone"
	FieldClothing      Field = "clothing"
	FieldClothingColor Field = "clothingColor"
)

// Fields returns every field in presentation order.
func Fields() []Field {
	return []Field{FieldHairstyle, FieldHairColor, FieldSkinTone, FieldClothing, FieldClothingColor}
}

// ParseField resolves a field name as sent by clients.
func ParseField(name string) (Field, error) {
	allowed := make([]string, 0, len(Fields()))
	for _, field := range Fields() {
		allowed = append(allowed, string(field))
	}

	v := &validate.Validator{}
	if err := v.OneOf("field", name, allowed...).ErrWithMessage("Unknown avatar field"); err != nil {
		return "", wrap(apperr.As(err), ErrUnknownField)
	}
	return Field(name), nil
}

// Label is the human-facing name of the field.
func (f Field) Label() string {
	switch f {
	case FieldHairstyle:
		return "Hairstyle"
	case FieldHairColor:
		return "Hair Color"
	case FieldSkinTone:
		return "Skin Tone"
	case FieldClothing:
		return "Clothing"
	case FieldClothingColor:
		return "Clothing Color"
	}
	return string(f)
}

// # Sentinels

var (
	ErrIncompleteConfiguration = errors.New("avatar: configuration is incomplete")
	ErrUnknownField            = errors.New("avatar: unknown field")
	ErrEmptyToken              = errors.New("avatar: empty token")
	ErrUnknownMode             = errors.New("avatar: unknown mode")
	ErrSessionClosed           = errors.New("avatar: session is closed")
	ErrSessionOpen             = errors.New("avatar: session is already open")
	ErrOperationNotExposed     = errors.New("avatar: operation not available in this mode")
	ErrReentrantCall           = errors.New("avatar: controller re-entered from a sink")
	ErrRevisionConflict        = errors.New("avatar: session was modified concurrently")
)

// wrap attaches a domain sentinel as the cause of a client-facing error so that
// both errors.Is and respond.Error work on the result.
func wrap(appError *apperr.AppError, cause error) *apperr.AppError {
	appError.Cause = cause
	return appError
}

// # Configuration

// Configuration is a complete avatar description. Every field holds a
// non-empty token; tokens are opaque and never checked against a catalog.
type Configuration struct {
	Hairstyle     string `json:"hairstyle"`
	HairColor     string `json:"hairColor"`
	SkinTone      string `json:"skinTone"`
	Clothing      string `json:"clothing"`
	ClothingColor string `json:"clothingColor"`
}

// DefaultConfiguration is the seed for new sessions and the reset target.
func DefaultConfiguration() Configuration {
	return Configuration{
		Hairstyle:     "short",
		HairColor:     "black",
		SkinTone:      "fair",
		Clothing:      "casual",
		ClothingColor: "blue",
	}
}

// Get returns the token held by field, or "" for an unknown field.
func (c Configuration) Get(field Field) string {
	switch field {
	case FieldHairstyle:
		return c.Hairstyle
	case FieldHairColor:
		return c.HairColor
	case FieldSkinTone:
		return c.SkinTone
	case FieldClothing:
		return c.Clothing
	case FieldClothingColor:
		return c.ClothingColor
	}
	return ""
}

// With returns a copy of c with only field replaced. The receiver is untouched.
func (c Configuration) With(field Field, value string) (Configuration, error) {
	if _, err := ParseField(string(field)); err != nil {
		return c, err
	}
	if value == "" {
		return c, wrap(apperr.ValidationError("Avatar token must not be empty",
			apperr.FieldError{Field: string(field), Message: "This field is required"},
		), ErrEmptyToken)
	}

	switch field {
	case FieldHairstyle:
		c.Hairstyle = value
	case FieldHairColor:
		c.HairColor = value
	case FieldSkinTone:
		c.SkinTone = value
	case FieldClothing:
		c.Clothing = value
	case FieldClothingColor:
		c.ClothingColor = value
	}
	return c, nil
}

// Validate rejects a configuration with any empty field. There is no per-field
// fallback: a partial configuration is refused as a whole.
func (c Configuration) Validate() error {
	v := &validate.Validator{}
	for _, field := range Fields() {
		v.Required(string(field), c.Get(field))
	}

	if err := v.ErrWithMessage("Avatar configuration is incomplete"); err != nil {
		return wrap(apperr.As(err), ErrIncompleteConfiguration)
	}
	return nil
}
