// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rolegate/rolegate/internal/platform/apperr"
	"github.com/rolegate/rolegate/internal/platform/constants"
)

// RedisSessionStore implements SessionStore on Redis, letting multiple
// instances share flow sessions. Expiry is delegated to Redis TTLs.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return constants.RedisPrefixOAuthSession + sessionID
}

/*
Create stores the session as JSON under its ID with the given TTL.

Parameters:
  - ctx: context.Context
  - session: the flow session to persist
  - timeToLive: Redis key TTL

Returns:
  - error: marshalling or connectivity errors
*/
func (store *RedisSessionStore) Create(ctx context.Context, session *Session, timeToLive time.Duration) error {
	stored := *session
	stored.ExpiresAt = time.Now().Add(timeToLive)

	payload, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("redis_oauth_session_marshal_failed: %w", err)
	}

	if err := store.client.Set(ctx, sessionKey(session.ID), payload, timeToLive).Err(); err != nil {
		return fmt.Errorf("redis_oauth_session_set_failed: %w", err)
	}
	return nil
}

/*
Get retrieves a session by ID.

Description: Returns apperr.NotFound when the key is absent, which covers
both never-created and TTL-expired sessions.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - *Session: the stored session
  - error: apperr.NotFound or connectivity errors
*/
func (store *RedisSessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	payload, err := store.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("OAuth session")
		}
		return nil, fmt.Errorf("redis_oauth_session_get_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis_oauth_session_unmarshal_failed: %w", err)
	}
	return &session, nil
}

// Destroy removes the session key. Missing keys are not an error.
func (store *RedisSessionStore) Destroy(ctx context.Context, sessionID string) error {
	if err := store.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis_oauth_session_delete_failed: %w", err)
	}
	return nil
}
