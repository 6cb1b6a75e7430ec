// Copyright (c) 2026 Rolegate. All rights reserved.

package sec

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload embedded inside a signed session cookie.
//
// # Why a signed token?
//
// The cookie only needs to reference the server-side session record, but the
// reference must be tamper-proof: a forged or truncated session ID must fail
// verification instead of probing the store. HMAC with the shared session
// secret covers that for a single-process deployment.
type SessionClaims struct {
	jwt.RegisteredClaims

	// SessionID references the server-side OAuth session record.
	SessionID string `json:"sid"`
}

// SessionTokenService signs and verifies session cookie tokens using HS256.
type SessionTokenService struct {
	secret []byte
	issuer string
}

// NewSessionTokenService creates a SessionTokenService from the configured
// session secret.
func NewSessionTokenService(secret, issuer string) (*SessionTokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: session secret must not be empty")
	}
	return &SessionTokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Generate creates a signed session token referencing the given session ID.
func (service *SessionTokenService) Generate(sessionID string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// Verify checks signature and expiry of a session token and returns the
// referenced session ID.
func (service *SessionTokenService) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("sec: invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", fmt.Errorf("sec: invalid session token claims")
	}

	return claims.SessionID, nil
}
