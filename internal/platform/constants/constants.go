// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire service.

It defines default timeouts, rate limits, and cross-cutting keys that are
shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Window defaults and client tracking TTLs.
  - Security: Headers and cookie configuration for both inbound surfaces.

Using this package ensures magic strings and magic numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "rolegate-api"
	AppVersion = "1.0.0"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	// Bulk roster fetches against large guilds dominate the upper bound.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitWindow is the fixed counting window per client IP.
	DefaultRateLimitWindow = 15 * time.Minute

	// DefaultRateLimitMax is the request ceiling within one window.
	DefaultRateLimitMax = 100

	// RateLimitCleanupInterval is how often stale IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute
)

// # Security

const (
	// HeaderAPIKey carries the static webhook credential.
	HeaderAPIKey = "X-API-Key"

	// SessionCookieName is the cookie holding the signed OAuth session token.
	SessionCookieName = "rolegate_session"

	// SessionCookiePath scopes the session cookie to the OAuth surface.
	SessionCookiePath = "/auth"

	// DefaultSessionMaxAge bounds one OAuth round trip.
	DefaultSessionMaxAge = 5 * time.Minute

	// DefaultCSRFStateLength is the CSRF state token length in characters.
	DefaultCSRFStateLength = 32
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
)

// # Redirect Verdict Parameters
//
// Query parameter names appended to the OAuth return URL.

const (
	FieldStatus = "status"
	FieldError  = "error"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixOAuthSession = "oauth:session:"
)
