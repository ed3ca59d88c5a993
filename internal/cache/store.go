// Package cache implements the two-tier image cache: an in-process LRU in
// front of a durable directory of payloads and JSON sidecars.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	defaultMemoryItems   = 100
	defaultMaxAge        = 7 * 24 * time.Hour
	defaultMaxSize       = 500 * 1024 * 1024
	defaultSweepInterval = time.Hour
)

// Store implements domain.Cache.
type Store struct {
	memory   *MemoryLRU
	disk     *DiskStore
	clock    clock.Clock
	events   domain.EventPublisher
	maxAge   time.Duration
	maxSize  int64
	interval time.Duration

	memoryHits atomic.Int64
	diskHits   atomic.Int64
	misses     atomic.Int64

	sweepMu   sync.Mutex
	lastSweep atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithEvents publishes sweep results.
func WithEvents(events domain.EventPublisher) Option {
	return func(s *Store) { s.events = events }
}

// NewStore opens the cache described by cfg.
func NewStore(cfg *config.CacheConfig, opts ...Option) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("cache config cannot be nil")
	}

	disk, err := NewDiskStore(cfg.Dir, cfg.LockStripes)
	if err != nil {
		return nil, err
	}

	s := &Store{
		memory:   NewMemoryLRU(valueOr(cfg.MemoryItems, defaultMemoryItems)),
		disk:     disk,
		clock:    clock.Real(),
		maxAge:   valueOr(cfg.MaxAge, defaultMaxAge),
		maxSize:  valueOr(cfg.MaxSizeBytes, defaultMaxSize),
		interval: valueOr(cfg.SweepInterval, defaultSweepInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func valueOr[T int | int64 | time.Duration](v, fallback T) T {
	if v > 0 {
		return v
	}
	return fallback
}

func (s *Store) expired(entry *domain.CacheEntry, now time.Time) bool {
	return s.maxAge > 0 && now.Sub(entry.CachedAt) > s.maxAge
}

// Get checks memory, then disk. A disk hit is promoted into memory.
func (s *Store) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	now := s.clock.Now()
	logger := observability.FromContext(ctx)

	if entry, ok := s.memory.Get(key, now); ok {
		if !s.expired(entry, now) {
			s.memoryHits.Add(1)
			return entry, nil
		}
		s.memory.Delete(key)
	}

	entry, err := s.disk.Read(key)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCacheMiss):
		s.misses.Add(1)
		return nil, domain.ErrCacheMiss
	case errors.Is(err, domain.ErrCacheCorrupt):
		logger.Warn("corrupt cache entry removed", observability.String("cache_key", key))
		s.misses.Add(1)
		return nil, domain.ErrCacheMiss
	default:
		logger.Warn("cache disk read failed, treating as miss",
			observability.String("cache_key", key),
			observability.Error(err))
		s.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}

	if s.expired(entry, now) {
		s.misses.Add(1)
		return nil, domain.ErrCacheMiss
	}

	entry.LastAccessedAt = now
	s.memory.Put(entry, now)
	s.diskHits.Add(1)
	return entry, nil
}

// Put writes disk first. Memory is only populated once the disk write succeeded.
func (s *Store) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}
	if entry.Key == "" {
		return errors.New("entry key cannot be empty")
	}
	if len(entry.Payload) == 0 && entry.DelegatedURL == "" {
		return errors.New("entry must carry a payload or a delegated url")
	}

	now := s.clock.Now()
	stored := entry.Clone()
	if stored.CachedAt.IsZero() {
		stored.CachedAt = now
	}
	stored.LastAccessedAt = now
	stored.Meta.SizeBytes = int64(len(stored.Payload))

	if err := s.disk.Write(stored); err != nil {
		return fmt.Errorf("cache write failed: %w", err)
	}

	if evicted, ok := s.memory.Put(stored, now); ok {
		observability.FromContext(ctx).Debug("memory tier evicted entry",
			observability.String("cache_key", evicted))
	}
	return nil
}

// Sweep deletes expired and corrupt entries, orphaned files, and then the
// oldest entries until the store fits its size budget. Individual failures are
// logged and counted; the sweep always runs to the end.
func (s *Store) Sweep(ctx context.Context) (domain.SweepReport, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	logger := observability.FromContext(ctx)
	now := s.clock.Now()

	state, err := s.disk.scan()
	if err != nil {
		return domain.SweepReport{}, fmt.Errorf("sweep scan failed: %w", err)
	}

	var report domain.SweepReport
	knownKeys := make(map[string]bool, len(state.live)+len(state.corrupt))
	for _, item := range state.live {
		knownKeys[item.key] = true
		report.BytesBefore += item.size
	}
	for _, key := range state.corrupt {
		knownKeys[key] = true
	}

	for _, key := range state.corrupt {
		if removeErr := s.disk.Remove(key); removeErr != nil {
			report.Failures++
			logger.Warn("failed to delete corrupt entry",
				observability.String("cache_key", key), observability.Error(removeErr))
			continue
		}
		s.memory.Delete(key)
		report.Corrupt++
	}

	expired, evicted, _ := sweepPlan(state.live, now, s.maxAge, s.maxSize)
	for _, item := range expired {
		if s.sweepItem(ctx, item) {
			report.Expired++
		} else {
			report.Failures++
		}
	}
	for _, item := range evicted {
		if s.sweepItem(ctx, item) {
			report.Evicted++
		} else {
			report.Failures++
		}
	}

	for key, modTime := range state.payloads {
		if knownKeys[key] || now.Sub(modTime) < orphanGrace {
			continue
		}
		if removeErr := s.removeOrphan(key); removeErr != nil {
			report.Failures++
			continue
		}
		report.Orphans++
	}
	for path, modTime := range state.temps {
		if now.Sub(modTime) < orphanGrace {
			continue
		}
		if removeErr := removeFile(path); removeErr != nil {
			report.Failures++
			continue
		}
		report.Orphans++
	}

	report.BytesAfter = s.diskBytes()
	s.lastSweep.Store(now.UnixMilli())

	logger.Info("cache sweep completed",
		observability.Int("expired", report.Expired),
		observability.Int("corrupt", report.Corrupt),
		observability.Int("evicted", report.Evicted),
		observability.Int("orphans", report.Orphans),
		observability.Int("failures", report.Failures),
		observability.String("size_before", humanize.Bytes(uint64(report.BytesBefore))),
		observability.String("size_after", humanize.Bytes(uint64(report.BytesAfter))))

	if s.events != nil {
		s.events.Publish(ctx, observability.EventCacheSwept, map[string]any{
			"expired":     report.Expired,
			"corrupt":     report.Corrupt,
			"evicted":     report.Evicted,
			"orphans":     report.Orphans,
			"failures":    report.Failures,
			"bytes_after": report.BytesAfter,
		})
	}

	return report, nil
}

func (s *Store) sweepItem(ctx context.Context, item diskItem) bool {
	removed, err := s.disk.removeIfUnchanged(item.key, item.cachedAt)
	if err != nil {
		observability.FromContext(ctx).Warn("failed to delete cache entry",
			observability.String("cache_key", item.key), observability.Error(err))
		return false
	}
	if removed {
		s.memory.Delete(item.key)
	}
	return true
}

func (s *Store) removeOrphan(key string) error {
	unlock := s.disk.lock(key)
	defer unlock()

	if _, err := statFile(s.disk.sidecarPath(key)); err == nil {
		// Written since the scan.
		return nil
	}
	return removeFile(s.disk.payloadPath(key))
}

func (s *Store) diskBytes() int64 {
	state, err := s.disk.scan()
	if err != nil {
		return 0
	}
	var total int64
	for _, item := range state.live {
		total += item.size
	}
	return total
}

// Run sweeps on the configured interval until ctx is done.
func (s *Store) Run(ctx context.Context) {
	logger := observability.FromContext(ctx)
	logger.Info("cache sweeper started", observability.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("cache sweeper stopped")
			return
		case <-s.clock.After(s.interval):
			if _, err := s.Sweep(ctx); err != nil {
				logger.Error("cache sweep failed", observability.Error(err))
			}
		}
	}
}

// Stats returns tier sizes and hit counters.
func (s *Store) Stats(_ context.Context) domain.CacheStats {
	stats := domain.CacheStats{
		MemoryEntries: s.memory.Len(),
		MemoryHits:    s.memoryHits.Load(),
		DiskHits:      s.diskHits.Load(),
		Misses:        s.misses.Load(),
	}

	if state, err := s.disk.scan(); err == nil {
		stats.DiskEntries = len(state.live)
		for _, item := range state.live {
			stats.DiskBytes += item.size
		}
	}

	if ms := s.lastSweep.Load(); ms > 0 {
		stats.LastSweep = time.UnixMilli(ms)
	}
	return stats
}

// Clear drops both tiers.
func (s *Store) Clear(ctx context.Context) error {
	s.memory.Clear()
	if err := s.disk.Clear(); err != nil {
		return fmt.Errorf("failed to clear disk cache: %w", err)
	}
	observability.FromContext(ctx).Info("cache cleared")
	return nil
}
