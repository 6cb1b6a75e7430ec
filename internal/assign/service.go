// Copyright (c) 2026 Rolegate. All rights reserved.

package assign

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/platform/ctxutil"
)

// Service is the role assignment engine for one fixed guild and role.
//
// # Lifecycle
//
// [Service.Initialize] must complete once, before the HTTP listener starts
// accepting assignment or OAuth calls. Until then every [Service.AssignRole]
// reports HANDLER_NOT_INITIALIZED instead of touching the platform.
type Service struct {
	client discord.GuildClient
	roleID string
	log    *slog.Logger

	// Startup barrier state. The mutex only orders Initialize against the
	// cheap initialized read; after startup the fields are read-only.
	mu          sync.RWMutex
	guild       *discord.Guild
	role        *discord.Role
	initialized bool
}

// NewService constructs the engine around a guild client and the configured
// target role ID.
func NewService(client discord.GuildClient, roleID string, log *slog.Logger) *Service {
	return &Service{client: client, roleID: roleID, log: log}
}

/*
Initialize resolves and caches the target guild and role for the process
lifetime.

Description: This is the one-time startup barrier. It fails when the guild
cannot be fetched or the configured role does not exist in it; callers must
treat a failure as fatal and not start serving.

Parameters:
  - ctx: context.Context (bounded by the startup deadline)

Returns:
  - error: resolution failures
*/
func (service *Service) Initialize(ctx context.Context) error {
	guild, err := service.client.FetchGuild(ctx)
	if err != nil {
		return fmt.Errorf("assign: initialize guild: %w", err)
	}

	role, err := service.client.FetchRole(ctx, service.roleID)
	if err != nil {
		return fmt.Errorf("assign: initialize role: %w", err)
	}

	service.mu.Lock()
	service.guild = guild
	service.role = role
	service.initialized = true
	service.mu.Unlock()

	service.log.Info("role_handler_initialized",
		slog.String("guild", guild.Name),
		slog.String("role", role.Name),
		slog.Int("role_position", role.Position),
	)
	return nil
}

// Initialized reports whether the startup barrier has completed.
func (service *Service) Initialized() bool {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.initialized
}

// RoleName returns the cached target role name, or "" before initialization.
func (service *Service) RoleName() string {
	service.mu.RLock()
	defer service.mu.RUnlock()
	if service.role == nil {
		return ""
	}
	return service.role.Name
}

// GuildName returns the cached target guild name, or "" before initialization.
func (service *Service) GuildName() string {
	service.mu.RLock()
	defer service.mu.RUnlock()
	if service.guild == nil {
		return ""
	}
	return service.guild.Name
}

/*
AssignRole grants the target role to the member identified by rawHandle.

Description: A sequence of short-circuiting gates, in this exact precedence:

 1. HANDLER_NOT_INITIALIZED — the startup barrier has not completed.
 2. USER_NOT_FOUND — the handle does not parse or resolves to no member.
 3. ROLE_ALREADY_ASSIGNED — idempotent short-circuit, reported as a
    non-success outcome carrying the member's current info.
 4. INSUFFICIENT_PERMISSIONS — the bot cannot manage roles at all.
 5. ROLE_HIERARCHY_ERROR — the target role sits at or above the bot's own
    highest role; the platform would reject the grant.
 6. INTERNAL_ERROR — the mutation (or the capability fetch backing gates
    4-5) failed; provider detail is logged, never surfaced. No retry.

Parameters:
  - ctx: context.Context
  - rawHandle: free-form handle (snowflake, username, or username#dddd)

Returns:
  - *Assignment: the granted member/role on success
  - error: an [apperr.AppError] with one of the stable outcome codes
*/
func (service *Service) AssignRole(ctx context.Context, rawHandle string) (*Assignment, error) {
	service.mu.RLock()
	initialized, role := service.initialized, service.role
	service.mu.RUnlock()

	log := ctxutil.GetLogger(ctx)

	// Gate 1: startup barrier.
	if !initialized {
		return nil, errNotInitialized()
	}

	// Gate 2: parse + resolve. An unparseable handle degrades to a miss;
	// the webhook surface already rejected malformed input with 400.
	handle, err := discord.ParseHandle(rawHandle)
	if err != nil {
		return nil, errUserNotFound()
	}
	member := Resolve(ctx, service.client, handle)
	if member == nil {
		return nil, errUserNotFound()
	}

	// Gate 3: idempotent short-circuit.
	if member.HasRole(role.ID) {
		return nil, errRoleAlreadyAssigned(&Assignment{
			UserID:   member.ID,
			Username: member.Username,
			RoleName: role.Name,
		})
	}

	// Gates 4-5: the bot's own standing, resolved fresh per attempt.
	capability, err := service.client.BotCapability(ctx)
	if err != nil {
		return nil, errInternal(fmt.Errorf("bot capability: %w", err))
	}
	if !capability.CanManageRoles {
		return nil, errInsufficientPermissions()
	}
	if role.Position >= capability.HighestRolePosition {
		return nil, errRoleHierarchy()
	}

	// Gate 6: the single mutation. Failures here include permission races
	// between the gates above and the grant; all downgrade to INTERNAL_ERROR.
	if err := service.client.AddRoleToMember(ctx, member.ID, role.ID); err != nil {
		return nil, errInternal(fmt.Errorf("add role: %w", err))
	}

	log.InfoContext(ctx, "role_assigned",
		slog.String("user_id", member.ID),
		slog.String("username", member.Username),
		slog.String("role", role.Name),
	)

	return &Assignment{
		UserID:   member.ID,
		Username: member.Username,
		RoleName: role.Name,
	}, nil
}
