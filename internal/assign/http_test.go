// Copyright (c) 2026 Rolegate. All rights reserved.

package assign_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/assign"
	"github.com/rolegate/rolegate/internal/discord"
)

func postAssignRole(t *testing.T, handler *assign.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, "/assign-role", strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler.Routes().ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func TestAssignRoleEndpoint_Success(t *testing.T) {
	client := newFakeGuildClient()
	client.members = []*discord.Member{
		{ID: "300000000000000003", Username: "ann", Discriminator: "1234"},
	}
	handler := assign.NewHandler(newTestService(t, client))

	recorder := postAssignRole(t, handler, `{"discordHandle":"ann#1234"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, true, payload["success"])

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "300000000000000003", data["userId"])
	assert.Equal(t, "ann", data["username"])
	assert.Equal(t, "Verified", data["roleName"])
}

func TestAssignRoleEndpoint_UnknownID(t *testing.T) {
	// A syntactically valid snowflake that resolves to nobody is an engine
	// outcome, not a validation failure.
	client := newFakeGuildClient()
	handler := assign.NewHandler(newTestService(t, client))

	recorder := postAssignRole(t, handler, `{"discordHandle":"12345678901234567"}`)

	require.Equal(t, http.StatusNotFound, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, assign.CodeUserNotFound, payload["error"])
	assert.Zero(t, client.addRoleCalls)
}

func TestAssignRoleEndpoint_AlreadyAssigned(t *testing.T) {
	client := newFakeGuildClient()
	client.members = []*discord.Member{
		{
			ID:            "300000000000000003",
			Username:      "ann",
			Discriminator: "1234",
			Roles:         []string{testRoleID},
		},
	}
	handler := assign.NewHandler(newTestService(t, client))

	recorder := postAssignRole(t, handler, `{"discordHandle":"Ann#1234"}`)

	require.Equal(t, http.StatusConflict, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, assign.CodeRoleAlreadyAssigned, payload["error"])

	data, ok := payload["data"].(map[string]any)
	require.True(t, ok, "conflict responses carry the existing assignment")
	assert.Equal(t, "ann", data["username"])
	assert.Equal(t, "Verified", data["roleName"])
	assert.Zero(t, client.addRoleCalls)
}

func TestAssignRoleEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing handle", body: `{}`},
		{name: "empty handle", body: `{"discordHandle":""}`},
		{name: "wrong type", body: `{"discordHandle":123}`},
		{name: "malformed json", body: `{"discordHandle":`},
		{name: "unparseable tag", body: `{"discordHandle":"ann#12"}`},
		{name: "username too short", body: `{"discordHandle":"a"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newFakeGuildClient()
			handler := assign.NewHandler(newTestService(t, client))

			recorder := postAssignRole(t, handler, tc.body)

			require.Equal(t, http.StatusBadRequest, recorder.Code)
			payload := decodeBody(t, recorder)
			assert.Equal(t, false, payload["success"])
			assert.NotEmpty(t, payload["error"])
			assert.Zero(t, client.addRoleCalls)
		})
	}
}

func TestAssignRoleEndpoint_NotInitialized(t *testing.T) {
	client := newFakeGuildClient()
	service := assign.NewService(client, testRoleID, slog.New(slog.NewTextHandler(io.Discard, nil)))
	handler := assign.NewHandler(service)

	recorder := postAssignRole(t, handler, `{"discordHandle":"ann"}`)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	payload := decodeBody(t, recorder)
	assert.Equal(t, assign.CodeHandlerNotInitialized, payload["error"])
}
