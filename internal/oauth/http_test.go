// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/sec"
)

func newTestHandler(t *testing.T, provider *fakeProvider, assigner *fakeAssigner) (*Handler, *MemorySessionStore) {
	t.Helper()
	service, store := newTestFlow(provider, assigner)
	tokens, err := sec.NewSessionTokenService("test-session-secret", constants.AppName)
	require.NoError(t, err)
	return NewHandler(service, tokens, false), store
}

func get(handler *Handler, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodGet, target, nil)
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

func sessionCookieFrom(t *testing.T, recorder *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name == constants.SessionCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestInitiate_RejectsBadReturnURL(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeProvider{}, &fakeAssigner{})

	tests := []string{
		"/discord",
		"/discord?return_url=" + url.QueryEscape("https://evil.example/phish"),
		"/discord?return_url=" + url.QueryEscape("javascript:alert(1)"),
	}

	for _, target := range tests {
		recorder := get(handler, target)

		assert.Equal(t, http.StatusBadRequest, recorder.Code, target)
		assert.Empty(t, recorder.Header().Get("Location"), "no redirect on a rejected return URL")
		assert.Empty(t, recorder.Result().Cookies(), "no session cookie on a rejected return URL")
	}
}

func TestInitiate_RedirectsToProvider(t *testing.T) {
	handler, store := newTestHandler(t, &fakeProvider{}, &fakeAssigner{})

	recorder := get(handler, "/discord?return_url="+url.QueryEscape("https://app.example.com/done"))

	require.Equal(t, http.StatusFound, recorder.Code)
	location := recorder.Header().Get("Location")
	assert.Contains(t, location, "https://discord.test/authorize")

	cookie := sessionCookieFrom(t, recorder)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, constants.SessionCookiePath, cookie.Path)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// The cookie is a signed reference to a real stored session.
	sessionID, err := handler.tokens.Verify(cookie.Value)
	require.NoError(t, err)
	_, err = store.Get(context.Background(), sessionID)
	require.NoError(t, err)
}

func TestCallback_WithoutSession(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeProvider{identity: memberIdentity()}, &fakeAssigner{})

	t.Run("no cookie", func(t *testing.T) {
		recorder := get(handler, "/discord/callback?code=c&state=s")
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Empty(t, recorder.Header().Get("Location"))
	})

	t.Run("tampered cookie", func(t *testing.T) {
		recorder := get(handler, "/discord/callback?code=c&state=s", &http.Cookie{
			Name:  constants.SessionCookieName,
			Value: "not.a.token",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Empty(t, recorder.Header().Get("Location"))
	})
}

func TestCallback_FullRoundTrip(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeProvider{identity: memberIdentity()}, &fakeAssigner{})

	started := get(handler, "/discord?return_url="+url.QueryEscape("https://app.example.com/done"))
	require.Equal(t, http.StatusFound, started.Code)
	cookie := sessionCookieFrom(t, started)

	authURL, err := url.Parse(started.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)

	finished := get(handler, "/discord/callback?code=auth-code&state="+url.QueryEscape(state), cookie)

	require.Equal(t, http.StatusFound, finished.Code)
	redirect, err := url.Parse(finished.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", redirect.Host)
	assert.Equal(t, "success", redirect.Query().Get("status"))
	assert.Equal(t, "300000000000000003", redirect.Query().Get("discord_id"))
	assert.Equal(t, "ann#1234", redirect.Query().Get("username"))

	cleared := sessionCookieFrom(t, finished)
	assert.Less(t, cleared.MaxAge, 0, "callback clears the session cookie")

	// Replaying the callback with the same cookie finds no session.
	replayed := get(handler, "/discord/callback?code=auth-code&state="+url.QueryEscape(state), cookie)
	assert.Equal(t, http.StatusBadRequest, replayed.Code)
}

func TestCallback_FailedAttemptCannotBeRetried(t *testing.T) {
	provider := &fakeProvider{identity: memberIdentity()}
	handler, _ := newTestHandler(t, provider, &fakeAssigner{})

	started := get(handler, "/discord?return_url="+url.QueryEscape("https://app.example.com/done"))
	cookie := sessionCookieFrom(t, started)

	authURL, err := url.Parse(started.Header().Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")

	// First attempt arrives with a forged state and fails.
	failed := get(handler, "/discord/callback?code=auth-code&state=forged", cookie)
	require.Equal(t, http.StatusFound, failed.Code)
	redirect, err := url.Parse(failed.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, CodeInvalidState, redirect.Query().Get("error"))

	// The same cookie with the correct state must not complete the flow.
	retried := get(handler, "/discord/callback?code=auth-code&state="+url.QueryEscape(state), cookie)
	assert.Equal(t, http.StatusBadRequest, retried.Code)
	assert.Empty(t, retried.Header().Get("Location"))
	assert.Zero(t, provider.calls, "no exchange may run on a consumed flow")
}

func TestCallback_CSRFMismatchRedirectsWithError(t *testing.T) {
	handler, _ := newTestHandler(t, &fakeProvider{identity: memberIdentity()}, &fakeAssigner{})

	started := get(handler, "/discord?return_url="+url.QueryEscape("https://app.example.com/done"))
	cookie := sessionCookieFrom(t, started)

	finished := get(handler, "/discord/callback?code=auth-code&state=forged", cookie)

	require.Equal(t, http.StatusFound, finished.Code)
	redirect, err := url.Parse(finished.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "error", redirect.Query().Get("status"))
	assert.Equal(t, CodeInvalidState, redirect.Query().Get("error"))
}
