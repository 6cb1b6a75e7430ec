// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/rolegate/rolegate/internal/assign"
	"github.com/rolegate/rolegate/internal/platform/apperr"
	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/ctxutil"
	"github.com/rolegate/rolegate/internal/platform/sec"
	"github.com/rolegate/rolegate/pkg/uuid"
)

// RoleAssigner is the slice of the assignment engine the flow needs.
// *assign.Service satisfies it.
type RoleAssigner interface {
	AssignRole(ctx context.Context, rawHandle string) (*assign.Assignment, error)
}

// CallbackInput is the relevant query surface of the provider callback.
type CallbackInput struct {
	Code       string
	State      string
	ErrorParam string
}

// Service orchestrates the OAuth2 flow end to end.
type Service struct {
	provider IdentityProvider
	store    SessionStore
	assigner RoleAssigner

	guildID        string
	allowedDomains []string
	sessionTTL     time.Duration
	stateLength    int
	log            *slog.Logger
}

// NewService wires the flow service. Each allowedDomains entry admits the
// named host and all of its subdomains; a leading dot on an entry is
// accepted and equivalent. Entries are normalized to lowercase here.
func NewService(
	provider IdentityProvider,
	store SessionStore,
	assigner RoleAssigner,
	guildID string,
	allowedDomains []string,
	sessionTTL time.Duration,
	stateLength int,
	log *slog.Logger,
) *Service {
	normalized := make([]string, 0, len(allowedDomains))
	for _, domain := range allowedDomains {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			normalized = append(normalized, domain)
		}
	}

	return &Service{
		provider:       provider,
		store:          store,
		assigner:       assigner,
		guildID:        guildID,
		allowedDomains: normalized,
		sessionTTL:     sessionTTL,
		stateLength:    stateLength,
		log:            log,
	}
}

// SessionTTL returns the per-flow session lifetime.
func (service *Service) SessionTTL() time.Duration {
	return service.sessionTTL
}

/*
Begin starts a flow for the given return URL.

Description: The return URL is validated against the domain allowlist
before anything is stored; a URL that fails validation terminates the flow
immediately so the service never redirects a browser to an unvetted
destination. On success a session carrying the return URL and a freshly
generated CSRF state is persisted for one round trip.

Parameters:
  - ctx: context.Context
  - returnURL: the caller-supplied destination for the final redirect

Returns:
  - *Session: the created flow session (its ID goes into the cookie)
  - string: the provider consent URL to redirect the browser to
  - error: apperr with code INVALID_RETURN_URL, or state generation failure
*/
func (service *Service) Begin(ctx context.Context, returnURL string) (*Session, string, error) {
	if !service.returnURLAllowed(returnURL) {
		return nil, "", apperr.BadRequest("INVALID_RETURN_URL", "Invalid return URL")
	}

	state, err := sec.GenerateSecureToken(service.stateLength)
	if err != nil {
		return nil, "", apperr.Internal(err)
	}

	session := &Session{
		ID:        uuid.New(),
		ReturnURL: returnURL,
		State:     state,
	}
	if err := service.store.Create(ctx, session, service.sessionTTL); err != nil {
		return nil, "", apperr.Internal(err)
	}

	service.log.InfoContext(ctx, "oauth_flow_started", slog.String("session_id", session.ID))
	return session, service.provider.AuthURL(state), nil
}

/*
Complete finishes a flow at the provider callback.

Description: Every terminal condition maps onto the stored return URL with
either `status=success&discord_id=...&username=...` or
`status=error&error=<code>` appended, so the caller always gets a verdict
it can parse. Branches are checked in this order:

 1. provider error parameter present: oauth_denied
 2. state missing or not matching the session: invalid_state
 3. authorization code missing: oauth_failed
 4. code exchange and identity fetch failure: api_error
 5. user not in the guild: not_in_server
 6. assignment outcomes: USER_NOT_FOUND reads as not_in_server (the
    roster disagrees with the OAuth guild list), ROLE_ALREADY_ASSIGNED as
    already_has_role, anything else as role_assignment_failed

The session is destroyed up front, before any branch is evaluated and
before any network call: one callback consumes the flow, so a failed
attempt cannot be followed up with a corrected replay of the same cookie.

Parameters:
  - ctx: context.Context
  - session: the flow session loaded from the caller's cookie
  - input: callback query parameters

Returns:
  - string: the absolute redirect URL carrying the verdict
*/
func (service *Service) Complete(ctx context.Context, session *Session, input CallbackInput) string {
	log := ctxutil.GetLogger(ctx)

	// One flow, one callback. The session (and with it the CSRF state)
	// is consumed whatever the verdict, so neither a failed attempt nor
	// a replay can ride the same flow twice.
	if err := service.store.Destroy(ctx, session.ID); err != nil {
		log.WarnContext(ctx, "oauth_session_destroy_failed",
			slog.String("session_id", session.ID), slog.Any("error", err))
	}

	if input.ErrorParam != "" {
		log.InfoContext(ctx, "oauth_flow_denied", slog.String("session_id", session.ID))
		return errorRedirect(session.ReturnURL, CodeOAuthDenied)
	}

	if input.State == "" || input.State != session.State {
		log.WarnContext(ctx, "oauth_state_mismatch", slog.String("session_id", session.ID))
		return errorRedirect(session.ReturnURL, CodeInvalidState)
	}

	if input.Code == "" {
		return errorRedirect(session.ReturnURL, CodeOAuthFailed)
	}

	identity, err := service.provider.ResolveIdentity(ctx, input.Code)
	if err != nil {
		log.ErrorContext(ctx, "oauth_identity_fetch_failed", slog.Any("error", err))
		return errorRedirect(session.ReturnURL, CodeAPIError)
	}

	if !identity.InGuild(service.guildID) {
		log.InfoContext(ctx, "oauth_user_not_in_guild", slog.String("user_id", identity.ID))
		return errorRedirect(session.ReturnURL, CodeNotInServer)
	}

	if _, err := service.assigner.AssignRole(ctx, identity.ID); err != nil {
		code := flowCodeForAssignError(err)
		log.WarnContext(ctx, "oauth_role_assignment_failed",
			slog.String("user_id", identity.ID), slog.String("flow_code", code))
		return errorRedirect(session.ReturnURL, code)
	}

	log.InfoContext(ctx, "oauth_flow_completed", slog.String("user_id", identity.ID))
	return successRedirect(session.ReturnURL, identity)
}

// returnURLAllowed checks scheme and host against the allowlist.
func (service *Service) returnURLAllowed(returnURL string) bool {
	parsed, err := url.Parse(returnURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return false
	}

	for _, domain := range service.allowedDomains {
		// Every entry admits the host itself and any subdomain of it; a
		// leading dot is accepted and means the same thing. Matching on
		// the "." boundary keeps "eviltrusted.org" out of "trusted.org".
		base := strings.TrimPrefix(domain, ".")
		if host == base || strings.HasSuffix(host, "."+base) {
			return true
		}
	}
	return false
}

// flowCodeForAssignError maps engine outcome codes onto flow codes.
func flowCodeForAssignError(err error) string {
	switch apperr.Code(err) {
	case assign.CodeUserNotFound:
		return CodeNotInServer
	case assign.CodeRoleAlreadyAssigned:
		return CodeAlreadyHasRole
	default:
		return CodeRoleAssignmentFailed
	}
}

func successRedirect(returnURL string, identity *Identity) string {
	return appendQuery(returnURL, url.Values{
		constants.FieldStatus: {"success"},
		"discord_id":          {identity.ID},
		"username":            {identity.Tag()},
	})
}

func errorRedirect(returnURL, code string) string {
	return appendQuery(returnURL, url.Values{
		constants.FieldStatus: {"error"},
		constants.FieldError:  {code},
	})
}

// appendQuery merges params into returnURL's query string, preserving any
// query the destination already carries.
func appendQuery(returnURL string, params url.Values) string {
	parsed, err := url.Parse(returnURL)
	if err != nil {
		// The URL was validated at Begin; a parse failure here means the
		// store was tampered with. Fall back to the raw string.
		return returnURL
	}

	query := parsed.Query()
	for key, values := range params {
		for _, value := range values {
			query.Set(key, value)
		}
	}
	parsed.RawQuery = query.Encode()
	return parsed.String()
}
