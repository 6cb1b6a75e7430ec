// Copyright (c) 2026 Rolegate. All rights reserved.

package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolegate/rolegate/internal/platform/config"
)

// setRequiredEnv populates a complete, valid environment for Load.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_GUILD_ID", "123456789012345678")
	t.Setenv("DISCORD_ROLE_ID", "876543210987654321")
	t.Setenv("API_SECRET_KEY", "webhook-secret")
	t.Setenv("DISCORD_CLIENT_ID", "client-id")
	t.Setenv("DISCORD_CLIENT_SECRET", "client-secret")
	t.Setenv("DISCORD_REDIRECT_URI", "https://bot.example.com/auth/discord/callback")
	t.Setenv("SESSION_SECRET", "session-secret")
	t.Setenv("ALLOWED_RETURN_DOMAINS", "example.com,partner.org")
}

/*
TestLoad_Defaults verifies a fully-populated environment loads with the
documented defaults applied.
*/
func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"example.com", "partner.org"}, cfg.AllowedReturnDomains)
	assert.Equal(t, 32, cfg.CSRFStateLength)
	assert.Equal(t, "5m0s", cfg.SessionMaxAge.String())
	assert.Equal(t, "15m0s", cfg.RateLimitWindow.String())
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Empty(t, cfg.RedisURL)
}

/*
TestLoad_MissingRequired verifies the process refuses to start when a
required credential is unset or set to an empty string.
*/
func TestLoad_MissingRequired(t *testing.T) {
	keys := []string{
		"DISCORD_BOT_TOKEN",
		"DISCORD_GUILD_ID",
		"DISCORD_ROLE_ID",
		"API_SECRET_KEY",
		"DISCORD_CLIENT_ID",
		"DISCORD_CLIENT_SECRET",
		"DISCORD_REDIRECT_URI",
		"SESSION_SECRET",
		"ALLOWED_RETURN_DOMAINS",
	}

	for _, key := range keys {
		t.Run(key+"_blank", func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(key, "")

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}

/*
TestLoad_InvalidSnowflakes verifies guild and role IDs are format-checked
at startup.
*/
func TestLoad_InvalidSnowflakes(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"guild_too_short", "DISCORD_GUILD_ID", "12345"},
		{"guild_not_numeric", "DISCORD_GUILD_ID", "not-a-snowflake-00"},
		{"role_too_long", "DISCORD_ROLE_ID", "12345678901234567890"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.Error(t, err)
		})
	}
}
