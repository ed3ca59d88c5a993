// Package redis implements a sliding-window rate limiter shared between
// processes, using one Redis sorted set per source.
package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
	"github.com/davidbz/imgresolve/internal/ratelimit"
)

// takeScript prunes, checks and records atomically on the server.
//
//nolint:gochecknoglobals // compiled once, shared by all limiters
var takeScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local cutoff = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])
redis.call('ZREMRANGEBYSCORE', key, '-inf', cutoff)
if redis.call('ZCARD', key) >= max then
  return 0
end
redis.call('ZADD', key, now, ARGV[5])
redis.call('PEXPIRE', key, ttl)
return 1
`)

// Limiter implements domain.RateLimiter on Redis. Redis errors deny the call.
type Limiter struct {
	client            redis.UniversalClient
	prefix            string
	limits            map[string]ratelimit.Limit
	allowUnconfigured bool
	clock             clock.Clock
}

// NewLimiter creates a Redis-backed limiter.
func NewLimiter(
	client redis.UniversalClient,
	prefix string,
	limits map[string]ratelimit.Limit,
	allowUnconfigured bool,
	clk clock.Clock,
) *Limiter {
	if clk == nil {
		clk = clock.Real()
	}
	return &Limiter{
		client:            client,
		prefix:            prefix,
		limits:            limits,
		allowUnconfigured: allowUnconfigured,
		clock:             clk,
	}
}

func (l *Limiter) key(source string) string {
	return l.prefix + source
}

func millis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

// Allow reports whether another call fits in the window.
func (l *Limiter) Allow(ctx context.Context, source string) bool {
	limit, ok := l.limits[source]
	if !ok {
		return l.allowUnconfigured
	}
	if limit.AlwaysAllow {
		return true
	}

	count, err := l.count(ctx, source, limit)
	if err != nil {
		observability.FromContext(ctx).Warn("rate limit check failed, denying",
			observability.String("limiter_source", source),
			observability.Error(err))
		return false
	}

	return count < int64(limit.Max)
}

// Record appends a call at the current time.
func (l *Limiter) Record(ctx context.Context, source string) {
	limit, ok := l.limits[source]
	if !ok {
		return
	}

	now := l.clock.Now()
	pipe := l.client.Pipeline()
	pipe.ZAdd(ctx, l.key(source), redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	pipe.PExpire(ctx, l.key(source), limit.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		observability.FromContext(ctx).Warn("rate limit record failed",
			observability.String("limiter_source", source),
			observability.Error(err))
	}
}

// Take checks and records in a single server-side script.
func (l *Limiter) Take(ctx context.Context, source string) bool {
	limit, ok := l.limits[source]
	if !ok {
		return l.allowUnconfigured
	}
	if limit.AlwaysAllow {
		return true
	}

	now := l.clock.Now()
	granted, err := takeScript.Run(ctx, l.client, []string{l.key(source)},
		now.UnixMilli(),
		now.Add(-limit.Window).UnixMilli(),
		limit.Max,
		limit.Window.Milliseconds(),
		uuid.NewString(),
	).Int()
	if err != nil {
		observability.FromContext(ctx).Warn("rate limit take failed, denying",
			observability.String("limiter_source", source),
			observability.Error(err))
		return false
	}

	return granted == 1
}

// Status returns a snapshot of every configured source.
func (l *Limiter) Status(ctx context.Context) map[string]domain.RateStatus {
	names := make([]string, 0, len(l.limits))
	for name := range l.limits {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]domain.RateStatus, len(names))
	for _, name := range names {
		limit := l.limits[name]
		used, err := l.count(ctx, name, limit)
		if err != nil {
			observability.FromContext(ctx).Warn("rate limit status failed",
				observability.String("limiter_source", name),
				observability.Error(err))
			continue
		}

		remaining := int64(limit.Max) - used
		if remaining < 0 {
			remaining = 0
		}
		status[name] = domain.RateStatus{
			Used:      int(used),
			Max:       limit.Max,
			Remaining: int(remaining),
			Window:    limit.Window,
		}
	}
	return status
}

func (l *Limiter) count(ctx context.Context, source string, limit ratelimit.Limit) (int64, error) {
	cutoff := l.clock.Now().Add(-limit.Window)

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, l.key(source), "-inf", millis(cutoff))
	card := pipe.ZCard(ctx, l.key(source))

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to count window: %w", err)
	}
	return card.Val(), nil
}
