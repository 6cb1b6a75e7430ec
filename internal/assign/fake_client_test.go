// Copyright (c) 2026 Rolegate. All rights reserved.

package assign_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/rolegate/rolegate/internal/discord"
)

// fakeGuildClient is an in-memory [discord.GuildClient] for tests.
//
// Failure injection is per-method via the err* fields; mutations are
// recorded so tests can assert the role set changed at most once.
type fakeGuildClient struct {
	guild      *discord.Guild
	roles      map[string]*discord.Role
	members    []*discord.Member
	capability *discord.BotCapability

	errFetchGuild   error
	errFetchRole    error
	errFetchMember  error
	errFetchAll     error
	errCapability   error
	errAddRole      error
	addRoleCalls    int
	lastAddedMember string
	lastAddedRole   string
}

func newFakeGuildClient() *fakeGuildClient {
	return &fakeGuildClient{
		guild: &discord.Guild{ID: "100000000000000001", Name: "Test Guild", MemberCount: 3},
		roles: map[string]*discord.Role{
			"200000000000000002": {ID: "200000000000000002", Name: "Verified", Position: 3},
		},
		capability: &discord.BotCapability{CanManageRoles: true, HighestRolePosition: 10},
	}
}

func (f *fakeGuildClient) FetchGuild(ctx context.Context) (*discord.Guild, error) {
	if f.errFetchGuild != nil {
		return nil, f.errFetchGuild
	}
	return f.guild, nil
}

func (f *fakeGuildClient) FetchRole(ctx context.Context, roleID string) (*discord.Role, error) {
	if f.errFetchRole != nil {
		return nil, f.errFetchRole
	}
	role, ok := f.roles[roleID]
	if !ok {
		return nil, fmt.Errorf("role %s not found", roleID)
	}
	return role, nil
}

func (f *fakeGuildClient) FetchMemberByID(ctx context.Context, userID string) (*discord.Member, error) {
	if f.errFetchMember != nil {
		return nil, f.errFetchMember
	}
	for _, member := range f.members {
		if member.ID == userID {
			return member, nil
		}
	}
	return nil, errors.New("member not found")
}

func (f *fakeGuildClient) FetchAllMembers(ctx context.Context) ([]*discord.Member, error) {
	if f.errFetchAll != nil {
		return nil, f.errFetchAll
	}
	return f.members, nil
}

func (f *fakeGuildClient) BotCapability(ctx context.Context) (*discord.BotCapability, error) {
	if f.errCapability != nil {
		return nil, f.errCapability
	}
	return f.capability, nil
}

func (f *fakeGuildClient) AddRoleToMember(ctx context.Context, userID, roleID string) error {
	f.addRoleCalls++
	if f.errAddRole != nil {
		return f.errAddRole
	}
	f.lastAddedMember = userID
	f.lastAddedRole = roleID
	for _, member := range f.members {
		if member.ID == userID {
			member.Roles = append(member.Roles, roleID)
		}
	}
	return nil
}
