// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"time"
)

// Session is the per-flow state created when a browser begins the OAuth
// round trip. It exists solely to carry the validated return URL and the
// CSRF state across the redirect to Discord and back.
type Session struct {
	ID        string    `json:"id"`
	ReturnURL string    `json:"returnUrl"`
	State     string    `json:"csrfState"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the session has outlived its window.
func (session *Session) Expired(now time.Time) bool {
	return now.After(session.ExpiresAt)
}

// SessionStore persists flow sessions for the duration of one round trip.
//
// Implementations: memory (single instance) and Redis (shared). Get on a
// missing or expired session returns apperr.NotFound; Destroy on a missing
// session is a no-op.
type SessionStore interface {
	Create(ctx context.Context, session *Session, timeToLive time.Duration) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Destroy(ctx context.Context, sessionID string) error
}
