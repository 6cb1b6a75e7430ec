// Copyright (c) 2026 Rolegate. All rights reserved.

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/platform/sec"
)

/*
TestGenerateSecureToken verifies length, alphabet, and uniqueness of the
CSRF state generator.
*/
func TestGenerateSecureToken(t *testing.T) {
	token, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 32)
	assert.Regexp(t, `^[A-Za-z0-9]+$`, token)

	other, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	_, err = sec.GenerateSecureToken(0)
	assert.Error(t, err)
}

/*
TestSessionTokenService_RoundTrip verifies sign-then-verify recovers the
session ID.
*/
func TestSessionTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewSessionTokenService("test-secret", "rolegate.test")
	require.NoError(t, err)

	token, err := service.Generate("session-123", time.Minute)
	require.NoError(t, err)

	sessionID, err := service.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "session-123", sessionID)
}

/*
TestSessionTokenService_Tampering verifies that forged or cross-signed
tokens fail verification.
*/
func TestSessionTokenService_Tampering(t *testing.T) {
	service, err := sec.NewSessionTokenService("test-secret", "rolegate.test")
	require.NoError(t, err)

	otherService, err := sec.NewSessionTokenService("other-secret", "rolegate.test")
	require.NoError(t, err)

	token, err := otherService.Generate("session-123", time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token)
	assert.Error(t, err)

	_, err = service.Verify("not-a-token")
	assert.Error(t, err)
}

/*
TestSessionTokenService_Expiry verifies that expired tokens are rejected.
*/
func TestSessionTokenService_Expiry(t *testing.T) {
	service, err := sec.NewSessionTokenService("test-secret", "rolegate.test")
	require.NoError(t, err)

	token, err := service.Generate("session-123", -time.Minute)
	require.NoError(t, err)

	_, err = service.Verify(token)
	assert.Error(t, err)
}

/*
TestNewSessionTokenService_EmptySecret verifies the constructor guard.
*/
func TestNewSessionTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewSessionTokenService("", "rolegate.test")
	assert.Error(t, err)
}
