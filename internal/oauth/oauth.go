// Copyright (c) 2026 Rolegate. All rights reserved.

// Package oauth implements the browser-facing Discord OAuth2 flow.
//
// # Architecture
//
// The flow is split across four collaborators:
//
//   - Service: flow orchestration (begin, callback, outcome mapping)
//   - IdentityProvider: the OAuth2 code exchange and identity fetch
//   - SessionStore: short-lived per-flow state (return URL + CSRF state)
//   - RoleAssigner: the assignment engine invoked after authentication
//
// A flow session lives for one round trip to Discord and is destroyed on
// first callback, successful or not. The session ID travels in a signed
// cookie; the CSRF state travels through Discord's `state` parameter and
// must match what the session recorded.
package oauth

// # Flow Outcome Codes
//
// Stable machine-readable codes appended to the return URL as
// `error=<code>` when a flow ends unsuccessfully. Ordered by the stage
// that produces them.

const (
	// CodeOAuthDenied means the user rejected the consent screen.
	CodeOAuthDenied = "oauth_denied"

	// CodeInvalidState means the CSRF state was missing or did not match.
	CodeInvalidState = "invalid_state"

	// CodeOAuthFailed means Discord returned no authorization code.
	CodeOAuthFailed = "oauth_failed"

	// CodeAPIError means the code exchange or identity fetch failed.
	CodeAPIError = "api_error"

	// CodeNotInServer means the authenticated user is not a guild member.
	CodeNotInServer = "not_in_server"

	// CodeAlreadyHasRole means the member already held the role.
	CodeAlreadyHasRole = "already_has_role"

	// CodeRoleAssignmentFailed covers every other assignment failure.
	CodeRoleAssignmentFailed = "role_assignment_failed"
)

// GuildRef is one entry of the authenticated user's guild list.
type GuildRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Identity is the authenticated Discord user as reported by the OAuth2
// identity endpoint, together with their guild memberships.
type Identity struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	Avatar        string `json:"avatar"`

	// Guilds may be empty when the guild listing was unavailable; the
	// membership check then fails closed.
	Guilds []GuildRef `json:"-"`
}

// Tag renders the user's display tag. Accounts migrated off the legacy
// discriminator system render as the bare username.
func (identity *Identity) Tag() string {
	if identity.Discriminator == "" || identity.Discriminator == "0" {
		return identity.Username
	}
	return identity.Username + "#" + identity.Discriminator
}

// InGuild reports whether the user's guild list contains guildID.
func (identity *Identity) InGuild(guildID string) bool {
	for _, guild := range identity.Guilds {
		if guild.ID == guildID {
			return true
		}
	}
	return false
}
