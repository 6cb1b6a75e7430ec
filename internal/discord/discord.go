// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package discord defines the minimal Discord surface the service depends on.

It holds the domain types (members, roles, the bot's own capability set) and
the [GuildClient] capability interface behind which the live platform client
is hidden.

Architecture:

  - Types: Plain value structs decoupled from any SDK representation.
  - Contract: [GuildClient] is the only thing the assignment engine sees.
  - Isolation: The discordgo-backed implementation lives in session.go and
    is swapped for an in-memory fake in every test.

No business logic lives here.
*/
package discord

import "context"

// # Domain Types

// Member is one member of the target guild.
type Member struct {
	// ID is the member's snowflake, serialized as a decimal string.
	ID string `json:"id"`

	// Username is the account-level (not per-guild) name.
	Username string `json:"username"`

	// DisplayName is the name shown in the guild: the nickname when set,
	// otherwise the account's global display name, otherwise the username.
	DisplayName string `json:"display_name"`

	// Discriminator is the legacy 4-digit suffix. Migrated accounts carry
	// the sentinel "0" (or an empty string) instead of a real value.
	Discriminator string `json:"discriminator"`

	// Roles holds the IDs of the roles the member currently has.
	Roles []string `json:"roles"`
}

// HasRole reports whether the member currently holds the given role.
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}
	return false
}

// Tag returns the member's classic "username#discriminator" handle, or the
// bare username for accounts migrated off the discriminator system.
func (m *Member) Tag() string {
	if m.Discriminator == "" || m.Discriminator == "0" {
		return m.Username
	}
	return m.Username + "#" + m.Discriminator
}

// Role is a single guild role.
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Position is the role's rank in the guild hierarchy; higher is more
	// senior. An actor can only grant roles strictly below its own highest.
	Position int `json:"position"`
}

// Guild describes the fixed target guild.
type Guild struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// BotCapability is the calling bot's own effective standing in the guild,
// resolved fresh per assignment attempt.
type BotCapability struct {
	// CanManageRoles reports whether the bot holds the Manage Roles
	// permission (directly or via Administrator).
	CanManageRoles bool

	// HighestRolePosition is the hierarchy position of the bot's most
	// senior role.
	HighestRolePosition int
}

// # Platform Contract

// GuildClient is the capability interface over the live Discord client for
// a single fixed guild.
//
// # Failure Semantics
//
// Every method performs a network call and is independently failable.
// Callers must not assume atomicity across calls: permissions and rosters
// can change between any two of them.
type GuildClient interface {
	// FetchGuild resolves the target guild.
	FetchGuild(ctx context.Context) (*Guild, error)

	// FetchRole resolves a single role by ID. A missing role is an error,
	// not a nil result.
	FetchRole(ctx context.Context, roleID string) (*Role, error)

	// FetchMemberByID point-fetches one member by snowflake.
	FetchMemberByID(ctx context.Context, userID string) (*Member, error)

	// FetchAllMembers materializes the full guild roster in one bulk fetch.
	FetchAllMembers(ctx context.Context) ([]*Member, error)

	// BotCapability resolves the bot's own permissions and highest role
	// position at call time.
	BotCapability(ctx context.Context) (*BotCapability, error)

	// AddRoleToMember grants the role to the member.
	AddRoleToMember(ctx context.Context, userID, roleID string) error
}
