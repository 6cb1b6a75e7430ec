// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rolegate/rolegate/internal/platform/apperr"
	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/ctxutil"
	"github.com/rolegate/rolegate/internal/platform/sec"
)

// Handler exposes the browser-facing OAuth endpoints. Responses here are
// redirects or plain text, not the JSON envelope: the client is a browser
// mid-flow, not an API consumer.
type Handler struct {
	service       *Service
	tokens        *sec.SessionTokenService
	secureCookies bool
}

// NewHandler constructs the OAuth handler. secureCookies should be true
// whenever the service terminates TLS (production).
func NewHandler(service *Service, tokens *sec.SessionTokenService, secureCookies bool) *Handler {
	return &Handler{service: service, tokens: tokens, secureCookies: secureCookies}
}

// Routes returns the OAuth route tree, mounted under /auth.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/discord", handler.initiate)
	router.Get("/discord/callback", handler.callback)
	return router
}

/*
initiate starts the OAuth flow.

GET /auth/discord?return_url=...

Description: Validates the return URL, creates a flow session, binds it to
the browser with a signed cookie, and redirects to the Discord consent
screen. Validation failures answer locally with 400; nothing is stored and
no redirect is issued.
*/
func (handler *Handler) initiate(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	session, authURL, err := handler.service.Begin(ctx, request.URL.Query().Get("return_url"))
	if err != nil {
		if appErr := apperr.As(err); appErr != nil && appErr.HTTPStatus < 500 {
			http.Error(writer, "Invalid return URL", http.StatusBadRequest)
			return
		}
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "oauth_begin_failed", "error", err)
		http.Error(writer, "Unable to start authentication", http.StatusInternalServerError)
		return
	}

	token, err := handler.tokens.Generate(session.ID, handler.service.SessionTTL())
	if err != nil {
		ctxutil.GetLogger(ctx).ErrorContext(ctx, "session_token_sign_failed", "error", err)
		http.Error(writer, "Unable to start authentication", http.StatusInternalServerError)
		return
	}

	http.SetCookie(writer, handler.sessionCookie(token, int(handler.service.SessionTTL().Seconds())))
	http.Redirect(writer, request, authURL, http.StatusFound)
}

/*
callback finishes the OAuth flow.

GET /auth/discord/callback?code=...&state=...[&error=...]

Description: Recovers the flow session from the signed cookie, clears the
cookie, and hands off to the service; its verdict travels back to the
stored return URL as query parameters. When no valid session can be
recovered there is no vetted destination to redirect to, so the response
is a local 400 rather than a redirect anywhere.
*/
func (handler *Handler) callback(writer http.ResponseWriter, request *http.Request) {
	ctx := request.Context()

	session := handler.loadSession(request)

	// The cookie is single-use either way.
	http.SetCookie(writer, handler.sessionCookie("", -1))

	if session == nil {
		http.Error(writer, "Authentication session is invalid or has expired. Please try again.",
			http.StatusBadRequest)
		return
	}

	query := request.URL.Query()
	redirectURL := handler.service.Complete(ctx, session, CallbackInput{
		Code:       query.Get("code"),
		State:      query.Get("state"),
		ErrorParam: query.Get("error"),
	})

	http.Redirect(writer, request, redirectURL, http.StatusFound)
}

// loadSession recovers the flow session referenced by the request's signed
// cookie. Any failure (missing cookie, bad signature, expired or unknown
// session) yields nil.
func (handler *Handler) loadSession(request *http.Request) *Session {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}

	sessionID, err := handler.tokens.Verify(cookie.Value)
	if err != nil {
		return nil
	}

	session, err := handler.service.store.Get(request.Context(), sessionID)
	if err != nil {
		return nil
	}
	return session
}

func (handler *Handler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    value,
		Path:     constants.SessionCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
}
