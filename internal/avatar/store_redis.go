// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package avatar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/avatarstudio/internal/platform/apperr"
	"github.com/taibuivan/avatarstudio/internal/platform/constants"
)

// minSessionTTL keeps Redis from receiving a zero or negative expiry.
const minSessionTTL = time.Second

// RedisSessionStore implements [SessionStore] using Redis.
//
// Each session is one JSON string under avatar:session:{id} whose TTL tracks
// Session.ExpiresAt. Save and Close use WATCH/MULTI for optimistic concurrency.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(id string) string {
	return constants.RedisPrefixAvatarSession + id
}

func sessionTTL(session *Session) time.Duration {
	ttl := time.Until(session.ExpiresAt)
	if ttl < minSessionTTL {
		return minSessionTTL
	}
	return ttl
}

/*
Create stores a new session with SETNX semantics.

Returns:
  - error: apperr.Conflict when the key already exists, or connectivity errors
*/
func (repository *RedisSessionStore) Create(context context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_avatar_session_encode_failed: %w", err)
	}

	created, err := repository.client.SetNX(context, sessionKey(session.ID), payload, sessionTTL(session)).Result()
	if err != nil {
		return fmt.Errorf("redis_avatar_session_create_failed: %w", err)
	}
	if !created {
		return apperr.Conflict("Avatar session already exists")
	}

	return nil
}

/*
Find loads and decodes a session.

Returns:
  - *Session: The stored session
  - error: apperr.NotFound if absent or expired, or connectivity errors
*/
func (repository *RedisSessionStore) Find(context context.Context, id string) (*Session, error) {
	payload, err := repository.client.Get(context, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Avatar session")
		}
		return nil, fmt.Errorf("redis_avatar_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_avatar_session_decode_failed: %w", err)
	}

	return session, nil
}

/*
Save overwrites a session if nobody else saved it since it was loaded.

Description: The key is WATCHed, the stored revision is compared with
session.Revision, and the new value is written inside MULTI/EXEC. A concurrent
write aborts the transaction and is reported as a conflict.

Returns:
  - error: apperr.Conflict, apperr.NotFound, or connectivity errors
*/
func (repository *RedisSessionStore) Save(context context.Context, session *Session) error {
	key := sessionKey(session.ID)
	next := *session
	next.Revision = session.Revision + 1

	payload, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("redis_avatar_session_encode_failed: %w", err)
	}

	err = repository.client.Watch(context, func(tx *redis.Tx) error {
		raw, err := tx.Get(context, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return apperr.NotFound("Avatar session")
			}
			return fmt.Errorf("redis_avatar_session_get_failed: %w", err)
		}

		var current Session
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("redis_avatar_session_decode_failed: %w", err)
		}
		if current.Revision != session.Revision {
			return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.Set(context, key, payload, sessionTTL(session))
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
	}
	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("redis_avatar_session_save_failed: %w", err)
	}

	session.Revision = next.Revision
	return nil
}

/*
Close deletes the session key if nobody changed it since it was loaded.

Description: Same WATCH/MULTI pattern as Save, with DEL inside the
transaction. A missing key means another terminal operation already won.

Returns:
  - error: apperr.Conflict, or connectivity errors
*/
func (repository *RedisSessionStore) Close(context context.Context, session *Session) error {
	key := sessionKey(session.ID)

	err := repository.client.Watch(context, func(tx *redis.Tx) error {
		raw, err := tx.Get(context, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
			}
			return fmt.Errorf("redis_avatar_session_get_failed: %w", err)
		}

		var current Session
		if err := json.Unmarshal(raw, &current); err != nil {
			return fmt.Errorf("redis_avatar_session_decode_failed: %w", err)
		}
		if current.Revision != session.Revision {
			return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
		}

		_, err = tx.TxPipelined(context, func(pipe redis.Pipeliner) error {
			pipe.Del(context, key)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return wrap(apperr.Conflict("Avatar session was modified concurrently"), ErrRevisionConflict)
	}
	if err != nil {
		if apperr.IsAppError(err) {
			return err
		}
		return fmt.Errorf("redis_avatar_session_close_failed: %w", err)
	}
	return nil
}
