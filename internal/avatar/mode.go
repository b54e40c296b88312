// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/validate"
)

// # Session State

// State is the controller lifecycle position.
type State string

const (
	StateClosed State = "closed"
	StateOpen   State = "open"
)

// # Terminal Operations

// Operation names an action the customization surface may offer.
type Operation string

const (
	OpReset  Operation = "reset"
	OpCancel Operation = "cancel"
	OpCommit Operation = "commit"
)

// # Modes

// Mode selects which operations the surface exposes. It never changes how an
// operation behaves once reached.
type Mode string

const (
	// ModeNewUser is the first-run flow: the user must leave with an avatar.
	ModeNewUser Mode = "new-user"
	// ModeSettings is the edit flow from account settings.
	ModeSettings Mode = "settings"
)

// ParseMode resolves a client-supplied mode. An empty string selects [ModeNewUser].
func ParseMode(raw string) (Mode, error) {
	if raw == "" {
		return ModeNewUser, nil
	}

	v := &validate.Validator{}
	if err := v.OneOf("mode", raw, string(ModeNewUser), string(ModeSettings)).ErrWithMessage("Unknown customization mode"); err != nil {
		return "", wrap(apperr.As(err), ErrUnknownMode)
	}
	return Mode(raw), nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeNewUser || m == ModeSettings
}

// Operations lists the operations exposed in m, in button order.
func (m Mode) Operations() []Operation {
	if m == ModeSettings {
		return []Operation{OpCancel, OpReset, OpCommit}
	}
	return []Operation{OpReset, OpCommit}
}

// Exposes reports whether op is reachable in m.
func (m Mode) Exposes(op Operation) bool {
	for _, exposed := range m.Operations() {
		if exposed == op {
			return true
		}
	}
	return false
}

// Title is the heading shown on the customization surface.
func (m Mode) Title() string {
	if m == ModeSettings {
		return "Avatar Customization"
	}
	return "Customize Your Avatar"
}
