// Package ratelimiter implements per-user cooldowns on top of Redis SETNX.
package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/dev-lov-oper/Clarix-AI/pkg/apperror"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimitError carries how long the caller has to wait.
type RateLimitError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s is rate limited, retry in %s", e.Action, e.RetryAfter.Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}

// Limiter allows one action per user per window. A nil Limiter, or one
// without a Redis client, allows everything.
type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID uuid.UUID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID.String(), action)
}

// Allow claims the window for (user, action). It returns a *RateLimitError
// when the window is still held.
func (l *Limiter) Allow(ctx context.Context, userID uuid.UUID, action string, window time.Duration) error {
	if l == nil || l.rdb == nil || window <= 0 {
		return nil
	}

	k := key(userID, action)
	wasSet, err := l.rdb.SetNX(ctx, k, "locked", window).Result()
	if err != nil {
		return fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	if wasSet {
		return nil
	}

	ttl, err := l.rdb.TTL(ctx, k).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	return &RateLimitError{Action: action, RetryAfter: ttl}
}

// Clear releases the window, e.g. when the limited action failed.
func (l *Limiter) Clear(ctx context.Context, userID uuid.UUID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}
