// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"time"
)

// # Domain Entities

// Session is a customization session persisted between HTTP calls.
type Session struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`

	Mode    Mode          `json:"mode"`
	State   State         `json:"state"`
	Initial Configuration `json:"initial"`
	Draft   Configuration `json:"draft"`

	// Revision increases by one on every successful save.
	Revision  int64     `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// snapshot extracts the controller state.
func (s *Session) snapshot() Snapshot {
	return Snapshot{State: s.State, Mode: s.Mode, Initial: s.Initial, Draft: s.Draft}
}

// apply copies controller state into the session.
func (s *Session) apply(snapshot Snapshot) {
	s.State = snapshot.State
	s.Mode = snapshot.Mode
	s.Initial = snapshot.Initial
	s.Draft = snapshot.Draft
}

// IsExpired reports whether the session outlived its TTL at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SavedAvatar is the finalized configuration of one user.
type SavedAvatar struct {
	OwnerID       string        `json:"owner_id"`
	Configuration Configuration `json:"configuration"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// # Repository Contracts

// SessionStore persists open customization sessions.
type SessionStore interface {
	/*
		Create stores a new session.

		Returns:
		  - error: apperr.Conflict if the id is taken, or storage failures
	*/
	Create(context context.Context, session *Session) error

	/*
		Find loads a session by id.

		Returns:
		  - *Session: The stored session
		  - error: apperr.NotFound if absent or expired
	*/
	Find(context context.Context, id string) (*Session, error)

	/*
		Save overwrites a session if its stored revision still equals
		session.Revision, then advances session.Revision.

		Returns:
		  - error: ErrRevisionConflict (as apperr.Conflict), apperr.NotFound, or storage failures
	*/
	Save(context context.Context, session *Session) error

	/*
		Close removes a session if its stored revision still equals
		session.Revision. A session that is already gone counts as a concurrent
		change, so at most one terminal operation wins.

		Returns:
		  - error: ErrRevisionConflict (as apperr.Conflict), or storage failures
	*/
	Close(context context.Context, session *Session) error
}

// AvatarRepository persists finalized avatars.
type AvatarRepository interface {
	/*
		FindByOwnerID retrieves the saved avatar of a user.

		Returns:
		  - *SavedAvatar: The saved avatar
		  - error: apperr.NotFound if the user never saved one
	*/
	FindByOwnerID(context context.Context, ownerID string) (*SavedAvatar, error)

	/*
		Upsert creates or replaces the saved avatar of a user.
	*/
	Upsert(context context.Context, avatar *SavedAvatar) error
}
