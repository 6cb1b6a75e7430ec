// Copyright (c) 2026 Rolegate. All rights reserved.

package assign

import (
	"context"
	"strings"

	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/platform/ctxutil"
)

/*
Resolve maps a parsed handle to at most one guild member.

Description: ID references use a point fetch; a fetch failure (network or
unknown ID) is treated identically to "no match", never escalated. Username
and tag references materialize the full roster with one bulk fetch and scan
it:

  - username: case-insensitive exact match on username first, then on
    display name. The first roster hit wins; when several members share a
    display name the result depends on roster iteration order, which is
    accepted as non-deterministic.
  - username#discriminator: case-insensitive username match AND exact
    discriminator match, both required. Best-effort legacy support —
    migrated accounts carry a sentinel discriminator and will not match.

Parameters:
  - ctx: context.Context
  - client: roster source for the fixed guild
  - handle: a parsed [discord.Handle]

Returns:
  - *discord.Member: the single match, or nil when nothing matched
*/
func Resolve(ctx context.Context, client discord.GuildClient, handle discord.Handle) *discord.Member {
	log := ctxutil.GetLogger(ctx)

	if handle.Kind == discord.HandleID {
		member, err := client.FetchMemberByID(ctx, handle.UserID)
		if err != nil {
			// Unknown ID and transport failure look the same to callers.
			log.DebugContext(ctx, "member_point_fetch_miss", "user_id", handle.UserID, "error", err)
			return nil
		}
		return member
	}

	roster, err := client.FetchAllMembers(ctx)
	if err != nil {
		log.WarnContext(ctx, "roster_fetch_failed", "error", err)
		return nil
	}

	wantUsername := strings.ToLower(handle.Username)

	switch handle.Kind {
	case discord.HandleUsername:
		for _, member := range roster {
			if strings.ToLower(member.Username) == wantUsername {
				return member
			}
		}
		for _, member := range roster {
			if strings.ToLower(member.DisplayName) == wantUsername {
				return member
			}
		}

	case discord.HandleTag:
		for _, member := range roster {
			if strings.ToLower(member.Username) == wantUsername &&
				member.Discriminator == handle.Discriminator {
				return member
			}
		}
	}

	return nil
}
