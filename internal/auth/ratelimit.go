package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"botlint/internal/config"
)

const (
	cleanupInterval = 5 * time.Minute
	bucketIdleTTL   = 10 * time.Minute
)

// RateLimiter implements token bucket rate limiting per client key
type RateLimiter struct {
	config  config.RateLimitConfig
	buckets map[string]*tokenBucket
	mu      sync.Mutex
	logger  *slog.Logger
	now     func() time.Time
}

type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg config.RateLimitConfig, logger *slog.Logger) *RateLimiter {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 60
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 10
	}

	return &RateLimiter{
		config:  cfg,
		buckets: make(map[string]*tokenBucket),
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled reports whether requests are throttled.
func (r *RateLimiter) Enabled() bool {
	return r != nil && r.config.Enabled
}

// Allow checks if a request is allowed and consumes a token.
// Returns: allowed, retryAfter (seconds until next token available)
func (r *RateLimiter) Allow(key string) (bool, int) {
	if !r.Enabled() {
		return true, 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.refill(key)
	if b.tokens >= 1.0 {
		b.tokens -= 1.0
		return true, 0
	}

	perSecond := float64(r.config.PerMinute) / 60.0
	retryAfter := int((1.0-b.tokens)/perSecond) + 1
	return false, retryAfter
}

// refill returns key's bucket topped up for the elapsed time. Caller holds mu.
func (r *RateLimiter) refill(key string) *tokenBucket {
	now := r.now()
	b, ok := r.buckets[key]
	if !ok {
		b = &tokenBucket{tokens: float64(r.config.Burst), lastRefill: now}
		r.buckets[key] = b
		return b
	}

	elapsed := now.Sub(b.lastRefill)
	b.lastRefill = now
	b.tokens += elapsed.Seconds() * float64(r.config.PerMinute) / 60.0
	if b.tokens > float64(r.config.Burst) {
		b.tokens = float64(r.config.Burst)
	}
	return b
}

// Remaining returns the number of whole tokens left for key, or -1 when
// rate limiting is disabled.
func (r *RateLimiter) Remaining(key string) int {
	if !r.Enabled() {
		return -1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return int(r.refill(key).tokens)
}

// Reset forgets key's bucket
func (r *RateLimiter) Reset(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.buckets, key)
}

// StartCleanup drops idle buckets in the background until ctx is done
func (r *RateLimiter) StartCleanup(ctx context.Context) {
	if !r.Enabled() {
		return
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.cleanup()
			}
		}
	}()
}

func (r *RateLimiter) cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-bucketIdleTTL)
	removed := 0
	for key, b := range r.buckets {
		if b.lastRefill.Before(cutoff) {
			delete(r.buckets, key)
			removed++
		}
	}

	if removed > 0 && r.logger != nil {
		r.logger.Debug("Rate limit cleanup",
			"removed_buckets", removed,
			"remaining", len(r.buckets))
	}
	return removed
}
