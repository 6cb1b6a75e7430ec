// Copyright (c) 2026 Rolegate. All rights reserved.

package assign_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/assign"
	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/platform/apperr"
)

const testRoleID = "200000000000000002"

func newTestService(t *testing.T, client *fakeGuildClient) *assign.Service {
	t.Helper()
	service := assign.NewService(client, testRoleID, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, service.Initialize(context.Background()))
	return service
}

func TestService_Initialize(t *testing.T) {
	t.Run("caches guild and role", func(t *testing.T) {
		client := newFakeGuildClient()
		service := assign.NewService(client, testRoleID, slog.New(slog.NewTextHandler(io.Discard, nil)))

		require.False(t, service.Initialized())
		require.NoError(t, service.Initialize(context.Background()))

		assert.True(t, service.Initialized())
		assert.Equal(t, "Verified", service.RoleName())
		assert.Equal(t, "Test Guild", service.GuildName())
	})

	t.Run("guild fetch failure", func(t *testing.T) {
		client := newFakeGuildClient()
		client.errFetchGuild = errors.New("unauthorized")
		service := assign.NewService(client, testRoleID, slog.New(slog.NewTextHandler(io.Discard, nil)))

		require.Error(t, service.Initialize(context.Background()))
		assert.False(t, service.Initialized())
	})

	t.Run("unknown role id", func(t *testing.T) {
		client := newFakeGuildClient()
		service := assign.NewService(client, "299999999999999999", slog.New(slog.NewTextHandler(io.Discard, nil)))

		require.Error(t, service.Initialize(context.Background()))
		assert.False(t, service.Initialized())
	})
}

func TestService_AssignRole_GateOrder(t *testing.T) {
	member := func() *discord.Member {
		return &discord.Member{ID: "300000000000000003", Username: "ann", Discriminator: "1234"}
	}

	tests := []struct {
		name       string
		handle     string
		setup      func(client *fakeGuildClient)
		wantCode   string
		wantStatus int
	}{
		{
			name:   "missing user reported before missing permission",
			handle: "nobody",
			setup: func(client *fakeGuildClient) {
				client.capability.CanManageRoles = false
			},
			wantCode:   assign.CodeUserNotFound,
			wantStatus: 404,
		},
		{
			name:   "unparseable handle reads as unknown user",
			handle: "a",
			setup: func(client *fakeGuildClient) {
				client.members = []*discord.Member{member()}
			},
			wantCode:   assign.CodeUserNotFound,
			wantStatus: 404,
		},
		{
			name:   "already assigned reported before missing permission",
			handle: "ann",
			setup: func(client *fakeGuildClient) {
				holder := member()
				holder.Roles = []string{testRoleID}
				client.members = []*discord.Member{holder}
				client.capability.CanManageRoles = false
			},
			wantCode:   assign.CodeRoleAlreadyAssigned,
			wantStatus: 409,
		},
		{
			name:   "missing permission reported before hierarchy",
			handle: "ann",
			setup: func(client *fakeGuildClient) {
				client.members = []*discord.Member{member()}
				client.capability.CanManageRoles = false
				client.capability.HighestRolePosition = 1
			},
			wantCode:   assign.CodeInsufficientPermissions,
			wantStatus: 403,
		},
		{
			name:   "target role at bot's highest position",
			handle: "ann",
			setup: func(client *fakeGuildClient) {
				client.members = []*discord.Member{member()}
				client.capability.HighestRolePosition = 3
			},
			wantCode:   assign.CodeRoleHierarchyError,
			wantStatus: 403,
		},
		{
			name:   "capability fetch failure",
			handle: "ann",
			setup: func(client *fakeGuildClient) {
				client.members = []*discord.Member{member()}
				client.errCapability = errors.New("gateway error")
			},
			wantCode:   assign.CodeInternalError,
			wantStatus: 500,
		},
		{
			name:   "mutation failure",
			handle: "ann",
			setup: func(client *fakeGuildClient) {
				client.members = []*discord.Member{member()}
				client.errAddRole = errors.New("missing access")
			},
			wantCode:   assign.CodeInternalError,
			wantStatus: 500,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newFakeGuildClient()
			tc.setup(client)
			service := newTestService(t, client)

			assignment, err := service.AssignRole(context.Background(), tc.handle)

			require.Error(t, err)
			assert.Nil(t, assignment)
			assert.Equal(t, tc.wantCode, apperr.Code(err))

			var appErr *apperr.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, tc.wantStatus, appErr.HTTPStatus)

			if tc.wantCode == assign.CodeInternalError && tc.name == "mutation failure" {
				// A failed mutation is still at most one attempt.
				assert.Equal(t, 1, client.addRoleCalls)
			} else if tc.wantCode != assign.CodeInternalError {
				assert.Zero(t, client.addRoleCalls, "no mutation may happen on a refused gate")
			}
		})
	}
}

func TestService_AssignRole_Success(t *testing.T) {
	client := newFakeGuildClient()
	client.members = []*discord.Member{
		{ID: "300000000000000003", Username: "ann", Discriminator: "1234"},
	}
	service := newTestService(t, client)

	assignment, err := service.AssignRole(context.Background(), "ann#1234")

	require.NoError(t, err)
	require.NotNil(t, assignment)
	assert.Equal(t, "300000000000000003", assignment.UserID)
	assert.Equal(t, "ann", assignment.Username)
	assert.Equal(t, "Verified", assignment.RoleName)
	assert.Equal(t, 1, client.addRoleCalls)
	assert.Equal(t, "300000000000000003", client.lastAddedMember)
	assert.Equal(t, testRoleID, client.lastAddedRole)
}

func TestService_AssignRole_Idempotence(t *testing.T) {
	client := newFakeGuildClient()
	client.members = []*discord.Member{
		{ID: "300000000000000003", Username: "ann", Discriminator: "1234"},
	}
	service := newTestService(t, client)

	_, err := service.AssignRole(context.Background(), "ann")
	require.NoError(t, err)

	assignment, err := service.AssignRole(context.Background(), "ann")

	require.Error(t, err)
	assert.Nil(t, assignment)
	assert.Equal(t, assign.CodeRoleAlreadyAssigned, apperr.Code(err))

	var appErr *apperr.AppError
	require.True(t, errors.As(err, &appErr))
	data, ok := appErr.Data.(*assign.Assignment)
	require.True(t, ok, "conflict carries the existing assignment")
	assert.Equal(t, "300000000000000003", data.UserID)
	assert.Equal(t, "Verified", data.RoleName)

	assert.Equal(t, 1, client.addRoleCalls, "a repeated request must not mutate again")
}

func TestService_AssignRole_NotInitialized(t *testing.T) {
	client := newFakeGuildClient()
	client.members = []*discord.Member{
		{ID: "300000000000000003", Username: "ann"},
	}
	service := assign.NewService(client, testRoleID, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assignment, err := service.AssignRole(context.Background(), "ann")

	require.Error(t, err)
	assert.Nil(t, assignment)
	assert.Equal(t, assign.CodeHandlerNotInitialized, apperr.Code(err))
	assert.Zero(t, client.addRoleCalls)
}
