// Package ratelimit counts calls per named source inside a trailing time window.
package ratelimit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

// Limit configures one source.
type Limit struct {
	Max    int
	Window time.Duration
	// AlwaysAllow disables counting for the source.
	AlwaysAllow bool
}

// Option configures a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *SlidingWindow) { s.clock = c }
}

// AllowUnconfigured lets calls to sources without a Limit through.
// Without it unknown sources are denied.
func AllowUnconfigured(allow bool) Option {
	return func(s *SlidingWindow) { s.allowUnconfigured = allow }
}

// SlidingWindow is an in-process RateLimiter. Each source has its own lock so
// sources never contend with each other.
type SlidingWindow struct {
	clock             clock.Clock
	allowUnconfigured bool

	mu      sync.RWMutex
	windows map[string]*window
}

type window struct {
	mu     sync.Mutex
	limit  Limit
	stamps []time.Time
}

// NewSlidingWindow creates a limiter for the given sources.
func NewSlidingWindow(limits map[string]Limit, opts ...Option) *SlidingWindow {
	s := &SlidingWindow{
		clock:   clock.Real(),
		windows: make(map[string]*window, len(limits)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for source, limit := range limits {
		s.windows[source] = &window{limit: limit}
	}
	return s
}

// Configure adds or replaces a source limit. Recorded calls are kept.
func (s *SlidingWindow) Configure(source string, limit Limit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[source]; ok {
		w.mu.Lock()
		w.limit = limit
		w.mu.Unlock()
		return
	}
	s.windows[source] = &window{limit: limit}
}

func (s *SlidingWindow) lookup(source string) (*window, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.windows[source]
	return w, ok
}

// Allow reports whether another call fits in the window.
func (s *SlidingWindow) Allow(ctx context.Context, source string) bool {
	w, ok := s.lookup(source)
	if !ok {
		if !s.allowUnconfigured {
			observability.FromContext(ctx).Debug("rate limit denied for unconfigured source",
				observability.String("limiter_source", source))
		}
		return s.allowUnconfigured
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(s.clock.Now())
	return w.allowed()
}

// Record appends a call at the current time. Unconfigured sources are not tracked.
func (s *SlidingWindow) Record(_ context.Context, source string) {
	w, ok := s.lookup(source)
	if !ok {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.clock.Now()
	w.prune(now)
	w.stamps = append(w.stamps, now)
}

// Take checks and records in one step.
func (s *SlidingWindow) Take(ctx context.Context, source string) bool {
	w, ok := s.lookup(source)
	if !ok {
		return s.Allow(ctx, source)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := s.clock.Now()
	w.prune(now)
	if !w.allowed() {
		return false
	}
	w.stamps = append(w.stamps, now)
	return true
}

// Remaining returns how many calls the source may still make in the current window.
func (s *SlidingWindow) Remaining(_ context.Context, source string) int {
	w, ok := s.lookup(source)
	if !ok {
		return 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.prune(s.clock.Now())
	return w.remaining()
}

// Status returns a snapshot of every configured source.
func (s *SlidingWindow) Status(_ context.Context) map[string]domain.RateStatus {
	s.mu.RLock()
	names := make([]string, 0, len(s.windows))
	for name := range s.windows {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	now := s.clock.Now()
	status := make(map[string]domain.RateStatus, len(names))
	for _, name := range names {
		w, ok := s.lookup(name)
		if !ok {
			continue
		}

		w.mu.Lock()
		w.prune(now)
		st := domain.RateStatus{
			Used:      len(w.stamps),
			Max:       w.limit.Max,
			Remaining: w.remaining(),
			Window:    w.limit.Window,
		}
		if len(w.stamps) > 0 {
			st.ResetAt = w.stamps[0].Add(w.limit.Window)
		}
		w.mu.Unlock()

		status[name] = st
	}
	return status
}

// prune drops stamps that are no longer strictly inside the window.
// Stamps are appended in order so the survivors are a suffix.
func (w *window) prune(now time.Time) {
	cutoff := now.Add(-w.limit.Window)
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

func (w *window) allowed() bool {
	return w.limit.AlwaysAllow || len(w.stamps) < w.limit.Max
}

func (w *window) remaining() int {
	if w.limit.AlwaysAllow {
		return w.limit.Max
	}
	if r := w.limit.Max - len(w.stamps); r > 0 {
		return r
	}
	return 0
}
