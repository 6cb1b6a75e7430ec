// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"sync"
	"time"

	"github.com/rolegate/rolegate/internal/platform/apperr"
)

// MemorySessionStore implements SessionStore with an in-process map.
// Suitable for single-instance deployments; sessions do not survive a
// restart, which only forces the user to restart the flow.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
		now:      time.Now,
	}
}

// Create stores the session until its TTL elapses.
func (store *MemorySessionStore) Create(ctx context.Context, session *Session, timeToLive time.Duration) error {
	stored := *session
	stored.ExpiresAt = store.now().Add(timeToLive)

	store.mu.Lock()
	defer store.mu.Unlock()
	store.sessions[stored.ID] = &stored
	return nil
}

// Get returns the session, or apperr.NotFound when absent or expired.
// Expired entries are removed on access.
func (store *MemorySessionStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	session, ok := store.sessions[sessionID]
	if !ok {
		return nil, apperr.NotFound("OAuth session")
	}
	if session.Expired(store.now()) {
		delete(store.sessions, sessionID)
		return nil, apperr.NotFound("OAuth session")
	}

	copied := *session
	return &copied, nil
}

// Destroy removes the session. Destroying a missing session is a no-op.
func (store *MemorySessionStore) Destroy(ctx context.Context, sessionID string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.sessions, sessionID)
	return nil
}

// StartCleanup launches a background janitor that evicts expired sessions
// until ctx is cancelled.
func (store *MemorySessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				store.evictExpired()
			}
		}
	}()
}

func (store *MemorySessionStore) evictExpired() {
	currentTime := store.now()

	store.mu.Lock()
	defer store.mu.Unlock()
	for id, session := range store.sessions {
		if session.Expired(currentTime) {
			delete(store.sessions, id)
		}
	}
}
