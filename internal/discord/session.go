// Copyright (c) 2026 Rolegate. All rights reserved.

package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// memberPageSize is the maximum page size the guild members endpoint allows.
const memberPageSize = 1000

// Session implements [GuildClient] on top of a live discordgo session,
// pinned to the single configured guild.
type Session struct {
	session *discordgo.Session
	guildID string
}

// NewSession wraps an authenticated discordgo session for the target guild.
func NewSession(session *discordgo.Session, guildID string) *Session {
	return &Session{session: session, guildID: guildID}
}

// FetchGuild resolves the target guild.
func (c *Session) FetchGuild(ctx context.Context) (*Guild, error) {
	guild, err := c.session.Guild(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: fetch guild %s: %w", c.guildID, err)
	}
	return &Guild{
		ID:          guild.ID,
		Name:        guild.Name,
		MemberCount: guild.MemberCount,
	}, nil
}

// FetchRole resolves a single role by ID.
func (c *Session) FetchRole(ctx context.Context, roleID string) (*Role, error) {
	roles, err := c.session.GuildRoles(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: fetch roles: %w", err)
	}
	for _, role := range roles {
		if role.ID == roleID {
			return &Role{ID: role.ID, Name: role.Name, Position: role.Position}, nil
		}
	}
	return nil, fmt.Errorf("discord: role %s not found in guild %s", roleID, c.guildID)
}

// FetchMemberByID point-fetches one member.
func (c *Session) FetchMemberByID(ctx context.Context, userID string) (*Member, error) {
	member, err := c.session.GuildMember(c.guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: fetch member %s: %w", userID, err)
	}
	return convertMember(member), nil
}

// FetchAllMembers materializes the full roster, paging through the guild
// members endpoint until a short page signals the end.
func (c *Session) FetchAllMembers(ctx context.Context) ([]*Member, error) {
	var (
		members []*Member
		after   string
	)
	for {
		page, err := c.session.GuildMembers(c.guildID, after, memberPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("discord: fetch members after %q: %w", after, err)
		}
		for _, member := range page {
			members = append(members, convertMember(member))
		}
		if len(page) < memberPageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// BotCapability resolves the bot's own permission bits and highest role
// position from its current member record and the guild's role list.
func (c *Session) BotCapability(ctx context.Context) (*BotCapability, error) {
	botUser := c.session.State.User
	if botUser == nil {
		return nil, fmt.Errorf("discord: bot user not available on session state")
	}

	botMember, err := c.session.GuildMember(c.guildID, botUser.ID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: fetch bot member: %w", err)
	}

	roles, err := c.session.GuildRoles(c.guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: fetch roles: %w", err)
	}

	held := make(map[string]bool, len(botMember.Roles))
	for _, id := range botMember.Roles {
		held[id] = true
	}

	var (
		permissions int64
		highest     int
	)
	for _, role := range roles {
		// The @everyone role (ID == guild ID) applies to every member.
		if role.ID != c.guildID && !held[role.ID] {
			continue
		}
		permissions |= role.Permissions
		if held[role.ID] && role.Position > highest {
			highest = role.Position
		}
	}

	canManage := permissions&discordgo.PermissionAdministrator != 0 ||
		permissions&discordgo.PermissionManageRoles != 0

	return &BotCapability{CanManageRoles: canManage, HighestRolePosition: highest}, nil
}

// AddRoleToMember grants the role to the member.
func (c *Session) AddRoleToMember(ctx context.Context, userID, roleID string) error {
	if err := c.session.GuildMemberRoleAdd(c.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord: add role %s to member %s: %w", roleID, userID, err)
	}
	return nil
}

// convertMember maps the SDK member record onto the domain [Member].
func convertMember(member *discordgo.Member) *Member {
	displayName := member.Nick
	if displayName == "" {
		displayName = member.User.GlobalName
	}
	if displayName == "" {
		displayName = member.User.Username
	}
	return &Member{
		ID:            member.User.ID,
		Username:      member.User.Username,
		DisplayName:   displayName,
		Discriminator: member.User.Discriminator,
		Roles:         member.Roles,
	}
}
