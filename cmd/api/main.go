// Copyright (c) 2026 Rolegate. All rights reserved.

// Command api is the entry point for the Rolegate HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the Discord gateway session.
//  4. Initialize the assignment engine (guild + role fetch barrier).
//  5. Wire the OAuth flow (provider, session store, cookie signing).
//  6. Wire HTTP handlers and the rate limiter.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rolegate/rolegate/internal/api"
	"github.com/rolegate/rolegate/internal/assign"
	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/oauth"
	"github.com/rolegate/rolegate/internal/platform/config"
	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/middleware"
	redisstore "github.com/rolegate/rolegate/internal/platform/redis"
	"github.com/rolegate/rolegate/internal/platform/sec"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[Rolegate] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Lifetime context for background janitors.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. Discord Gateway ────────────────────────────────────────────────
	gateway, err := discordgo.New("Bot " + cfg.BotToken)
	must(log, err, "create discord session")
	gateway.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	must(log, gateway.Open(), "open discord gateway")
	defer func() {
		log.Info("closing discord gateway")
		if cerr := gateway.Close(); cerr != nil {
			log.Error("discord gateway close error", slog.Any("error", cerr))
		}
	}()

	guildClient := discord.NewSession(gateway, cfg.GuildID)

	// ── 4. Assignment Engine ──────────────────────────────────────────────
	// Initialize is the startup barrier: the server does not accept traffic
	// with an unverified guild or role.
	assignService := assign.NewService(guildClient, cfg.RoleID, log)
	must(log, assignService.Initialize(startupCtx), "initialize assignment engine")

	log.Info("assignment_engine_ready",
		slog.String("guild", assignService.GuildName()),
		slog.String("role", assignService.RoleName()),
	)

	// ── 5. OAuth Flow ─────────────────────────────────────────────────────
	provider := oauth.NewDiscordProvider(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURI)

	var sessionStore oauth.SessionStore
	var checkCache func() error
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		sessionStore = oauth.NewRedisSessionStore(rdb)
		checkCache = func() error {
			return redisstore.Ping(context.Background(), rdb)
		}
	} else {
		memoryStore := oauth.NewMemorySessionStore()
		memoryStore.StartCleanup(appCtx, time.Minute)
		sessionStore = memoryStore
	}

	tokens, err := sec.NewSessionTokenService(cfg.SessionSecret, constants.AppName)
	must(log, err, "initialize session token service")

	oauthService := oauth.NewService(
		provider, sessionStore, assignService,
		cfg.GuildID, cfg.AllowedReturnDomains,
		cfg.SessionMaxAge, cfg.CSRFStateLength,
		log,
	)
	oauthHandler := oauth.NewHandler(oauthService, tokens, cfg.IsProduction())

	// ── 6. HTTP Wiring ────────────────────────────────────────────────────
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	rateLimiter.StartCleanup(appCtx)

	root, health, info := api.NewStatusHandlers(assignService, cfg.Environment, checkCache)

	handlers := api.Handlers{
		Root:   root,
		Health: health,
		Info:   info,
		Assign: assign.NewHandler(assignService),
		OAuth:  oauthHandler,
	}

	server := api.NewServer(cfg, log, rateLimiter, handlers)

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
