// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
)

// MemorySessionStore implements [SessionStore] in process memory.
//
// It is used when no Redis URL is configured and in tests. Sessions are not
// shared between replicas.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	now      func() time.Time
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]Session), now: time.Now}
}

func (store *MemorySessionStore) Create(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if existing, ok := store.sessions[session.ID]; ok && !existing.IsExpired(store.now()) {
		return apperr.Conflict("Avatar session already exists")
	}

	store.sessions[session.ID] = *session
	return nil
}

func (store *MemorySessionStore) Find(_ context.Context, id string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.sessions[id]
	if !ok {
		return nil, apperr.NotFound("Avatar session")
	}
	if session.IsExpired(store.now()) {
		delete(store.sessions, id)
		return nil, apperr.NotFound("Avatar session")
	}
	return &session, nil
}

func (store *MemorySessionStore) Save(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	current, ok := store.sessions[session.ID]
	if !ok || current.IsExpired(store.now()) {
		return apperr.NotFound("Avatar session")
	}
	if current.Revision != session.Revision {
		return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
	}

	session.Revision++
	store.sessions[session.ID] = *session
	return nil
}

func (store *MemorySessionStore) Close(_ context.Context, session *Session) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	current, ok := store.sessions[session.ID]
	if !ok || current.IsExpired(store.now()) || current.Revision != session.Revision {
		return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
	}

	delete(store.sessions, session.ID)
	return nil
}

// MemoryAvatarRepository implements [AvatarRepository] in process memory.
type MemoryAvatarRepository struct {
	mu      sync.RWMutex
	avatars map[string]SavedAvatar
}

// NewMemoryAvatarRepository creates an empty in-memory repository.
func NewMemoryAvatarRepository() *MemoryAvatarRepository {
	return &MemoryAvatarRepository{avatars: make(map[string]SavedAvatar)}
}

func (repository *MemoryAvatarRepository) FindByOwnerID(_ context.Context, ownerID string) (*SavedAvatar, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	saved, ok := repository.avatars[ownerID]
	if !ok {
		return nil, apperr.NotFound("Saved avatar")
	}
	return &saved, nil
}

func (repository *MemoryAvatarRepository) Upsert(_ context.Context, avatar *SavedAvatar) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if existing, ok := repository.avatars[avatar.OwnerID]; ok {
		avatar.CreatedAt = existing.CreatedAt
	}
	repository.avatars[avatar.OwnerID] = *avatar
	return nil
}
