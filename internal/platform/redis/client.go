// Copyright (c) 2026 Rolegate. All rights reserved.

/*
Package redis provides a managed client for volatile data storage.

It is used for the one piece of transient state this service keeps between
requests: OAuth sessions with a short TTL. Running a second replica behind a
load balancer only works when those sessions live here instead of in process
memory.

Core Responsibilities:

  - Volatility: Handles data with TTL (Time-To-Live).
  - Safety: Manages connection pooling and retry logic automatically.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Opinionated default timeouts for Redis operations.
const (
	dialTimeout = 5 * time.Second
	pingTimeout = 3 * time.Second
)

// NewClient parses the URL, connects, and verifies the connection with a ping.
func NewClient(ctx stdctx.Context, url string, log *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid REDIS_URL: %w", err)
	}
	options.DialTimeout = dialTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := stdctx.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	log.Info("redis_connected", slog.String("addr", options.Addr))
	return client, nil
}

// Ping verifies the connection is still healthy.
func Ping(ctx stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return client.Ping(pingCtx).Err()
}
