package domain

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	defaultConcurrency = 8
	localSource        = "local"
	pathMapSource      = "pathmap"
	maxFillRejoins     = 3
)

// ImageService is the single entry point of the pipeline: cache, then
// candidate walk, then download, then cache write.
type ImageService struct {
	cache    Cache
	resolver SourceResolver
	acquirer Acquirer
	prober   Prober
	mapper   PathMapper
	limiter  RateLimiter
	ledger   UsageLedger
	events   EventPublisher
	clock    clock.Clock

	download    DownloadOptions
	defaults    ResolveOptions
	concurrency int
	sem         *semaphore.Weighted
	flight      singleflight.Group
	fills       fillFlights

	requests  atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
	downloads atomic.Int64
	failures  atomic.Int64
}

// ServiceOption configures an ImageService.
type ServiceOption func(*ImageService)

// WithLedger enables usage recording and duplicate avoidance.
func WithLedger(l UsageLedger) ServiceOption {
	return func(s *ImageService) { s.ledger = l }
}

func WithEvents(p EventPublisher) ServiceOption {
	return func(s *ImageService) { s.events = p }
}

func WithClock(c clock.Clock) ServiceOption {
	return func(s *ImageService) { s.clock = c }
}

// WithConcurrency caps the resolutions doing network work at once.
func WithConcurrency(n int) ServiceOption {
	return func(s *ImageService) { s.concurrency = n }
}

func WithDownloadOptions(o DownloadOptions) ServiceOption {
	return func(s *ImageService) { s.download = o }
}

// WithDefaults sets the options applied when a caller passes none.
func WithDefaults(o ResolveOptions) ServiceOption {
	return func(s *ImageService) { s.defaults = o }
}

// NewImageService creates the orchestrator (DI constructor). mapper may be nil,
// in which case broken local references fail with ErrSourceUnavailable.
func NewImageService(
	cache Cache,
	resolver SourceResolver,
	acquirer Acquirer,
	prober Prober,
	mapper PathMapper,
	limiter RateLimiter,
	opts ...ServiceOption,
) *ImageService {
	s := &ImageService{
		cache:       cache,
		resolver:    resolver,
		acquirer:    acquirer,
		prober:      prober,
		mapper:      mapper,
		limiter:     limiter,
		clock:       clock.Real(),
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultConcurrency
	}
	s.sem = semaphore.NewWeighted(int64(s.concurrency))
	return s
}

// Defaults returns the service-level resolve options.
func (s *ImageService) Defaults() ResolveOptions {
	return s.defaults
}

// Resolve returns an image for ref. When nothing can be found the error wraps
// ErrNoImage. A broken local reference that could only be mapped to a
// generated path returns the result together with ErrMappingLowConfidence.
func (s *ImageService) Resolve(ctx context.Context, ref ImageReference, opts ResolveOptions) (*ResolvedImage, error) {
	s.requests.Add(1)
	ctx = observability.WithReference(ctx, ref.Raw())

	img, err := s.resolve(ctx, ref, opts)
	if err != nil && img == nil {
		s.failures.Add(1)
		s.publish(ctx, observability.EventImageFailed, map[string]any{
			"reference": ref.Raw(),
			"error":     err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observability.EventImageResolved, map[string]any{
		"reference":    ref.Raw(),
		"source":       img.Source,
		"cache_status": string(img.CacheStatus),
		"url":          img.URL,
		"local_path":   img.LocalPath,
	})
	return img, err
}

func (s *ImageService) resolve(ctx context.Context, ref ImageReference, opts ResolveOptions) (*ResolvedImage, error) {
	if ref.Kind() == KindLocal {
		return s.resolveLocal(ctx, ref)
	}

	key := CacheKey(ref)

	if img, ok := s.lookup(ctx, key, opts); ok {
		s.hits.Add(1)
		s.recordUsage(ctx, ref, img)
		return img, nil
	}
	s.misses.Add(1)

	// Concurrent callers for the same key and mode share one fill.
	flightKey := key
	if opts.DelegateURL {
		flightKey += "|delegate"
	}
	for attempt := 0; ; attempt++ {
		fl := s.fills.join(ctx, flightKey)
		ch := s.flight.DoChan(flightKey, func() (any, error) {
			defer s.fills.finish(flightKey, fl)
			return s.fill(fl.ctx, ref, key, opts)
		})

		var res singleflight.Result
		select {
		case <-ctx.Done():
			s.fills.leave(flightKey, fl)
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, ctx.Err())
		case res = <-ch:
			s.fills.leave(flightKey, fl)
		}

		if res.Err != nil {
			// Joined a fill every earlier waiter had already abandoned.
			if errors.Is(res.Err, context.Canceled) && ctx.Err() == nil && attempt < maxFillRejoins {
				continue
			}
			return nil, res.Err
		}
		img := cloneResolved(res.Val.(*ResolvedImage))
		s.recordUsage(ctx, ref, img)
		return img, nil
	}
}

// lookup serves a cache entry when it can satisfy the requested mode. A
// delegated entry cannot serve a caller that wants bytes.
func (s *ImageService) lookup(ctx context.Context, key string, opts ResolveOptions) (*ResolvedImage, bool) {
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			observability.FromContext(ctx).Warn("cache get failed, continuing without cache",
				observability.Error(err))
		}
		return nil, false
	}
	if entry.Delegated() && !opts.DelegateURL {
		return nil, false
	}
	return fromEntry(entry, CacheHit), true
}

// fill walks candidates and stores the first one that can be delivered.
func (s *ImageService) fill(ctx context.Context, ref ImageReference, key string, opts ResolveOptions) (*ResolvedImage, error) {
	if img, ok := s.lookup(ctx, key, opts); ok {
		return img, nil
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}
	defer s.sem.Release(1)

	logger := observability.FromContext(ctx)

	var (
		chosen    *Candidate
		payload   *Download
		skipped   *Candidate
		lastDLErr error
	)
	deliver := func(c Candidate) bool {
		if opts.DelegateURL {
			chosen = &c
			return true
		}
		dl, err := s.acquirer.Download(ctx, c.URL, s.download)
		if err != nil {
			lastDLErr = err
			logger.Warn("candidate download failed, trying next",
				observability.String("candidate_source", c.Source),
				observability.String("url", c.URL),
				observability.Error(err))
			return false
		}
		s.downloads.Add(1)
		chosen, payload = &c, dl
		return true
	}

	walkErr := s.resolver.Walk(ctx, ref, func(c Candidate) bool {
		if opts.AvoidDuplicates && s.usedElsewhere(ctx, c.URL, ref.Article()) {
			if skipped == nil {
				skipped = &c
			}
			logger.Debug("candidate already used by another article",
				observability.String("url", c.URL))
			return false
		}
		return deliver(c)
	})

	// Every fresh candidate is in use elsewhere: the first skipped one is better than nothing.
	if chosen == nil && skipped != nil && ctx.Err() == nil {
		logger.Info("reusing an image already used by another article",
			observability.String("url", skipped.URL))
		deliver(*skipped)
	}

	if chosen == nil {
		switch {
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, ctx.Err())
		case lastDLErr != nil:
			return nil, fmt.Errorf("%w: %w", ErrSourceUnavailable, lastDLErr)
		case walkErr != nil:
			return nil, walkErr
		default:
			return nil, ErrSourceUnavailable
		}
	}

	entry := &CacheEntry{
		Key: key,
		Meta: SourceMeta{
			Origin:      chosen.Source,
			OriginalURL: chosen.URL,
			FetchedAt:   s.clock.Now().UTC(),
		},
	}
	if payload != nil {
		entry.Payload = payload.Bytes
		entry.Meta.ContentType = payload.ContentType
		entry.Meta.SizeBytes = int64(len(payload.Bytes))
	} else {
		entry.DelegatedURL = chosen.URL
	}

	if err := s.cache.Put(ctx, entry); err != nil {
		logger.Warn("cache write failed, serving uncached result", observability.Error(err))
	}

	logger.Info("image resolved",
		observability.String("candidate_source", chosen.Source),
		observability.String("tier", chosen.Tier.String()),
		observability.Int("priority", chosen.Priority),
		observability.Bool("delegated", payload == nil))

	return fromEntry(entry, CacheMiss), nil
}

func (s *ImageService) resolveLocal(ctx context.Context, ref ImageReference) (*ResolvedImage, error) {
	raw := ref.Raw()

	if result := s.prober.Probe(ctx, raw); result.OK {
		return &ResolvedImage{
			LocalPath:   raw,
			Source:      localSource,
			CacheStatus: CacheBypass,
			Meta: SourceMeta{
				Origin:       localSource,
				OriginalPath: raw,
				ContentType:  result.ContentType,
				SizeBytes:    result.Size,
			},
		}, nil
	}

	if s.mapper == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceUnavailable, raw)
	}

	mapping, err := s.mapper.MapPath(ctx, raw)
	if mapping == nil {
		if err == nil {
			err = ErrSourceUnavailable
		}
		return nil, err
	}

	return &ResolvedImage{
		LocalPath:   mapping.MappedPath,
		Source:      pathMapSource,
		CacheStatus: CacheBypass,
		Meta: SourceMeta{
			Origin:       pathMapSource,
			OriginalPath: raw,
		},
		Mapping: mapping,
	}, err
}

// ResolveAll resolves refs concurrently and returns one outcome per
// reference, in input order. A failing reference never fails the batch.
func (s *ImageService) ResolveAll(ctx context.Context, refs []ImageReference, opts ResolveOptions) []Outcome {
	batchID := observability.GenerateRequestID()
	ctx = observability.WithBatchID(ctx, batchID)
	logger := observability.FromContext(ctx)
	logger.Info("batch started", observability.Int("references", len(refs)))

	outcomes := make([]Outcome, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			img, err := s.Resolve(gctx, ref, opts)
			outcomes[i] = Outcome{Reference: ref.Raw(), Image: img, Err: err}
			if err != nil {
				outcomes[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, o := range outcomes {
		if o.Image == nil {
			failed++
		}
	}
	logger.Info("batch finished",
		observability.Int("references", len(refs)),
		observability.Int("failed", failed))

	return outcomes
}

// Preload warms the cache and reports how many references resolved.
func (s *ImageService) Preload(ctx context.Context, refs []ImageReference) (int, int) {
	var ok, failed int
	for _, o := range s.ResolveAll(ctx, refs, s.defaults) {
		if o.Image != nil {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// Stats returns pipeline counters with cache and rate limiter snapshots.
func (s *ImageService) Stats(ctx context.Context) Stats {
	st := Stats{
		Requests:  s.requests.Load(),
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Downloads: s.downloads.Load(),
		Failures:  s.failures.Load(),
		Cache:     s.cache.Stats(ctx),
	}
	if lookups := st.Hits + st.Misses; lookups > 0 {
		st.HitRate = float64(st.Hits) / float64(lookups)
	}
	st.CacheSizeBytes = st.Cache.DiskBytes
	if s.limiter != nil {
		st.RateLimitStatus = s.limiter.Status(ctx)
	}
	return st
}

// Sweep runs one cache maintenance pass.
func (s *ImageService) Sweep(ctx context.Context) (SweepReport, error) {
	return s.cache.Sweep(ctx)
}

// ClearCache empties both cache tiers.
func (s *ImageService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// Duplicates lists URLs used by more than one article.
func (s *ImageService) Duplicates(ctx context.Context) ([]DuplicateGroup, error) {
	if s.ledger == nil {
		return nil, errors.New("usage ledger is disabled")
	}
	return s.ledger.Duplicates(ctx)
}

func (s *ImageService) usedElsewhere(ctx context.Context, url, article string) bool {
	if s.ledger == nil || article == "" {
		return false
	}
	used, err := s.ledger.UsedElsewhere(ctx, url, article)
	if err != nil {
		observability.FromContext(ctx).Warn("usage lookup failed", observability.Error(err))
		return false
	}
	return used
}

func (s *ImageService) recordUsage(ctx context.Context, ref ImageReference, img *ResolvedImage) {
	if s.ledger == nil || ref.Article() == "" || img.URL == "" {
		return
	}
	err := s.ledger.Record(ctx, Usage{
		Reference: ref.Raw(),
		Article:   ref.Article(),
		URL:       img.URL,
		Source:    img.Source,
		UsedAt:    s.clock.Now(),
	})
	if err != nil {
		observability.FromContext(ctx).Warn("usage record failed", observability.Error(err))
	}
}

func (s *ImageService) publish(ctx context.Context, eventType string, data map[string]any) {
	if s.events != nil {
		s.events.Publish(ctx, eventType, data)
	}
}

func fromEntry(entry *CacheEntry, status CacheStatus) *ResolvedImage {
	img := &ResolvedImage{
		Key:         entry.Key,
		Source:      entry.Meta.Origin,
		CacheStatus: status,
		Meta:        entry.Meta,
		URL:         entry.Meta.OriginalURL,
	}
	if entry.Delegated() {
		img.URL = entry.DelegatedURL
	} else {
		img.Bytes = append([]byte(nil), entry.Payload...)
	}
	return img
}

func cloneResolved(img *ResolvedImage) *ResolvedImage {
	c := *img
	c.Bytes = append([]byte(nil), img.Bytes...)
	return &c
}
