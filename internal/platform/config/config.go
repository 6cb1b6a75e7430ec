// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a
strongly-typed Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components via constructors.
  - Fail-Fast: The process refuses to start on missing credentials or
    malformed guild/role identifiers.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/platform/constants"
)

// # Configuration Schema

// Config holds all runtime configuration for the Rolegate API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Discord bot credential and the fixed assignment target.
	// notEmpty rejects variables that are set but blank, which `required`
	// alone accepts.
	BotToken string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	GuildID  string `env:"DISCORD_GUILD_ID,required,notEmpty"`
	RoleID   string `env:"DISCORD_ROLE_ID,required,notEmpty"`

	// Static server-to-server webhook credential
	APISecretKey string `env:"API_SECRET_KEY,required,notEmpty"`

	// OAuth2 application credentials
	OAuthClientID     string `env:"DISCORD_CLIENT_ID,required,notEmpty"`
	OAuthClientSecret string `env:"DISCORD_CLIENT_SECRET,required,notEmpty"`
	OAuthRedirectURI  string `env:"DISCORD_REDIRECT_URI,required,notEmpty"`

	// Session signing and return-URL allow-listing. Zero-valued durations
	// and lengths fall back to the constants package defaults in Load.
	SessionSecret        string        `env:"SESSION_SECRET,required,notEmpty"`
	AllowedReturnDomains []string      `env:"ALLOWED_RETURN_DOMAINS,required,notEmpty" envSeparator:","`
	SessionMaxAge        time.Duration `env:"SESSION_MAX_AGE"`
	CSRFStateLength      int           `env:"CSRF_STATE_LENGTH"`

	// Webhook surface rate limiting (fixed window per client IP)
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX"`

	// Optional Redis session store; in-memory when unset
	RedisURL string `env:"REDIS_URL"`

	// Cross-Origin Resource Sharing
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates
// the Discord identifiers.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	// Apply the documented defaults for everything left unset.
	if cfg.SessionMaxAge == 0 {
		cfg.SessionMaxAge = constants.DefaultSessionMaxAge
	}
	if cfg.CSRFStateLength == 0 {
		cfg.CSRFStateLength = constants.DefaultCSRFStateLength
	}
	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = constants.DefaultRateLimitWindow
	}
	if cfg.RateLimitMax == 0 {
		cfg.RateLimitMax = constants.DefaultRateLimitMax
	}

	// Guild and role identifiers must be snowflakes; anything else would
	// only surface as a confusing provider error at first use.
	if !discord.IsValidSnowflake(cfg.GuildID) {
		return nil, fmt.Errorf("config: DISCORD_GUILD_ID %q is not a valid snowflake", cfg.GuildID)
	}
	if !discord.IsValidSnowflake(cfg.RoleID) {
		return nil, fmt.Errorf("config: DISCORD_ROLE_ID %q is not a valid snowflake", cfg.RoleID)
	}

	if cfg.CSRFStateLength <= 0 {
		return nil, fmt.Errorf("config: CSRF_STATE_LENGTH must be positive, got %d", cfg.CSRFStateLength)
	}

	return cfg, nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
