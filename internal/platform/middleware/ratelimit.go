// Copyright (c) 2026 Rolegate. All rights reserved.

package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/rolegate/rolegate/internal/platform/apperr"
	"github.com/rolegate/rolegate/internal/platform/constants"
	"github.com/rolegate/rolegate/internal/platform/respond"
)

// rateLimitClient tracks one caller's count within the current fixed window.
type rateLimitClient struct {
	count       int
	windowReset time.Time
}

// RateLimiter is a process-local, best-effort fixed-window rate limiter
// keyed by client IP: one counter and one window-reset timestamp per key,
// reset when the window has elapsed, rejecting once the per-window ceiling
// is reached.
//
// # Design
//
// State is held on the instance rather than in package globals so tests
// (and multiple surfaces, if ever needed) construct isolated limiters.
// The zero value is not usable; construct via [NewRateLimiter].
type RateLimiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	clients map[string]*rateLimitClient
}

// NewRateLimiter constructs a limiter allowing max requests per window per
// client IP.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window:  window,
		max:     max,
		now:     time.Now,
		clients: make(map[string]*rateLimitClient),
	}
}

// StartCleanup launches a background janitor that drops expired windows
// until the context is cancelled.
func (limiter *RateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.mu.Lock()
				currentTime := limiter.now()
				for ip, client := range limiter.clients {
					if currentTime.After(client.windowReset) {
						delete(limiter.clients, ip)
					}
				}
				limiter.mu.Unlock()
			case <-ctx.Done():
				// Stop the goroutine when the application shuts down
				return
			}
		}
	}()
}

// Allow records one request for the key and reports whether it fits in the
// current window, along with the seconds until the window resets.
func (limiter *RateLimiter) Allow(key string) (allowed bool, retryAfterSeconds int) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	currentTime := limiter.now()
	client, found := limiter.clients[key]

	// New caller, or the previous window has elapsed: start a fresh one.
	if !found || currentTime.After(client.windowReset) {
		limiter.clients[key] = &rateLimitClient{
			count:       1,
			windowReset: currentTime.Add(limiter.window),
		}
		return true, 0
	}

	if client.count >= limiter.max {
		remaining := client.windowReset.Sub(currentTime)
		return false, int(remaining.Seconds() + 0.5)
	}

	client.count++
	return true, 0
}

// Middleware wraps a handler with the per-IP fixed-window check, answering
// 429 with a retryAfter hint once the ceiling is reached.
func (limiter *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			allowed, retryAfter := limiter.Allow(RealIP(request))
			if !allowed {
				writer.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				respond.Error(writer, request, apperr.RateLimited(retryAfter))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
