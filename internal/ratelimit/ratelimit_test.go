package ratelimit_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/ratelimit"
)

func TestSlidingWindow(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	window := 500 * time.Millisecond

	t.Run("should deny after max records and allow again once the window passes", func(t *testing.T) {
		fake := clock.Fake(start)
		limiter := ratelimit.NewSlidingWindow(
			map[string]ratelimit.Limit{"unsplash": {Max: 3, Window: window}},
			ratelimit.WithClock(fake),
		)

		for i := 0; i < 3; i++ {
			require.True(t, limiter.Allow(ctx, "unsplash"))
			limiter.Record(ctx, "unsplash")
		}
		require.False(t, limiter.Allow(ctx, "unsplash"))

		fake.Advance(window + time.Millisecond)
		require.True(t, limiter.Allow(ctx, "unsplash"))
	})

	t.Run("should not record on allow", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindow(
			map[string]ratelimit.Limit{"pexels": {Max: 1, Window: window}},
			ratelimit.WithClock(clock.Fake(start)),
		)

		for i := 0; i < 5; i++ {
			require.True(t, limiter.Allow(ctx, "pexels"))
		}
		require.Equal(t, 1, limiter.Remaining(ctx, "pexels"))
	})

	t.Run("should slide instead of resetting", func(t *testing.T) {
		fake := clock.Fake(start)
		limiter := ratelimit.NewSlidingWindow(
			map[string]ratelimit.Limit{"unsplash": {Max: 2, Window: window}},
			ratelimit.WithClock(fake),
		)

		limiter.Record(ctx, "unsplash")
		fake.Advance(300 * time.Millisecond)
		limiter.Record(ctx, "unsplash")
		require.False(t, limiter.Allow(ctx, "unsplash"))

		// first stamp leaves the window, second is still inside
		fake.Advance(250 * time.Millisecond)
		require.True(t, limiter.Allow(ctx, "unsplash"))
		require.Equal(t, 1, limiter.Remaining(ctx, "unsplash"))
	})

	t.Run("should deny unconfigured sources by default", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindow(nil)
		require.False(t, limiter.Allow(ctx, "unknown"))
		require.False(t, limiter.Take(ctx, "unknown"))
	})

	t.Run("should allow unconfigured sources when enabled", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindow(nil, ratelimit.AllowUnconfigured(true))
		require.True(t, limiter.Allow(ctx, "unknown"))
		require.True(t, limiter.Take(ctx, "unknown"))
	})

	t.Run("should always allow sources configured that way", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindow(map[string]ratelimit.Limit{
			"direct": {AlwaysAllow: true, Window: window},
		})
		for i := 0; i < 10; i++ {
			require.True(t, limiter.Take(ctx, "direct"))
		}
	})

	t.Run("should never exceed max under concurrent takes", func(t *testing.T) {
		limiter := ratelimit.NewSlidingWindow(
			map[string]ratelimit.Limit{
				"a": {Max: 10, Window: time.Hour},
				"b": {Max: 10, Window: time.Hour},
			},
			ratelimit.WithClock(clock.Fake(start)),
		)

		var mu sync.Mutex
		granted := map[string]int{}
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			source := "a"
			if i%2 == 0 {
				source = "b"
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if limiter.Take(ctx, source) {
					mu.Lock()
					granted[source]++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		require.Equal(t, 10, granted["a"])
		require.Equal(t, 10, granted["b"])
	})

	t.Run("should report status per source", func(t *testing.T) {
		fake := clock.Fake(start)
		limiter := ratelimit.NewSlidingWindow(
			map[string]ratelimit.Limit{"unsplash": {Max: 50, Window: time.Hour}},
			ratelimit.WithClock(fake),
		)
		limiter.Record(ctx, "unsplash")

		status := limiter.Status(ctx)
		require.Contains(t, status, "unsplash")
		require.Equal(t, 1, status["unsplash"].Used)
		require.Equal(t, 49, status["unsplash"].Remaining)
		require.Equal(t, start.Add(time.Hour), status["unsplash"].ResetAt)
	})
}
