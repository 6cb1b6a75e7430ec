// Copyright (c) 2026 Rolegate. All rights reserved.

package api

import (
	"net/http"
	"time"

	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/ctxutil"
	"github.com/rolegate/rolegate/internal/platform/respond"
)

// BotStatus is the slice of the assignment engine the status endpoints
// report on. *assign.Service satisfies it.
type BotStatus interface {
	Initialized() bool
	GuildName() string
	RoleName() string
}

type statusHandler struct {
	bot         BotStatus
	environment string
	checkCache  func() error
	startedAt   time.Time
}

// NewStatusHandlers creates the /, /api/health, and /api/info
// http.HandlerFuncs. All three are unauthenticated so orchestration
// probes and integrating developers can reach them without credentials.
// checkCache pings the Redis session store and may be nil when the
// in-memory store is configured.
func NewStatusHandlers(bot BotStatus, environment string, checkCache func() error) (root, health, info http.HandlerFunc) {
	handler := &statusHandler{
		bot:         bot,
		environment: environment,
		checkCache:  checkCache,
		startedAt:   time.Now(),
	}
	return handler.root, handler.health, handler.info
}

// root handles GET / (service identity).
func (handler *statusHandler) root(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, "Rolegate API is running", map[string]string{
		"name":    constants.AppName,
		"version": constants.AppVersion,
	})
}

// health handles GET /api/health (liveness probe).
//
// Always 200 while the process is alive; the Discord readiness flag is
// informational, not a failure signal, since a lost gateway session does
// not make restarting the process useful.
func (handler *statusHandler) health(writer http.ResponseWriter, request *http.Request) {
	data := map[string]any{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(handler.startedAt).Seconds()),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"discord": map[string]any{
			"initialized": handler.bot.Initialized(),
			"guild":       handler.bot.GuildName(),
			"role":        handler.bot.RoleName(),
		},
	}

	if handler.checkCache != nil {
		redisStatus := "ok"
		if err := handler.checkCache(); err != nil {
			redisStatus = "unavailable"
			ctxutil.GetLogger(request.Context()).WarnContext(request.Context(),
				"health_cache_check_failed", "error", err)
		}
		data["redis"] = redisStatus
	}

	respond.OK(writer, "Server is healthy", data)
}

// info handles GET /api/info (endpoint catalogue for integrators).
func (handler *statusHandler) info(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, "Service information", map[string]any{
		"name":        constants.AppName,
		"version":     constants.AppVersion,
		"environment": handler.environment,
		"endpoints": map[string]string{
			"assignRole":    "POST /api/assign-role",
			"health":        "GET /api/health",
			"info":          "GET /api/info",
			"oauthStart":    "GET /auth/discord",
			"oauthCallback": "GET /auth/discord/callback",
		},
	})
}
