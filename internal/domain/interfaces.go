package domain

import "context"

// RateLimiter counts calls per named source inside a trailing window.
type RateLimiter interface {
	// Allow reports whether another call to source fits in its window. It records nothing.
	Allow(ctx context.Context, source string) bool

	// Record appends a call at the current time.
	Record(ctx context.Context, source string)

	// Take records a call only if Allow would have returned true.
	Take(ctx context.Context, source string) bool

	// Status returns a snapshot of every configured source.
	Status(ctx context.Context) map[string]RateStatus
}

// Prober checks that a URL or local path is a usable image without fetching all of it.
type Prober interface {
	Probe(ctx context.Context, target string) ValidationResult
}

// Acquirer downloads image payloads.
type Acquirer interface {
	Download(ctx context.Context, url string, opts DownloadOptions) (*Download, error)
}

// Cache is the two-tier image cache.
type Cache interface {
	// Get returns a copy of the entry or ErrCacheMiss.
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Put stores the entry. Nothing is visible to readers unless the whole write succeeds.
	Put(ctx context.Context, entry *CacheEntry) error

	// Sweep expires old entries and trims the store to its size budget.
	Sweep(ctx context.Context) (SweepReport, error)

	Stats(ctx context.Context) CacheStats

	Clear(ctx context.Context) error
}

// SourceResolver produces ordered candidates for a reference.
type SourceResolver interface {
	// ResolveCandidates returns the full ordered plan. Remote tiers are listed as
	// deferred candidates and are not queried.
	ResolveCandidates(ctx context.Context, ref ImageReference) ([]Candidate, error)

	// Walk yields validated, rate-permitted candidates in priority order until visit
	// returns true. It returns ErrSourceUnavailable when every tier is exhausted.
	Walk(ctx context.Context, ref ImageReference, visit func(Candidate) bool) error

	// Resolve returns the first candidate Walk yields.
	Resolve(ctx context.Context, ref ImageReference) (Candidate, error)
}

// ImageProvider is a remote source consulted by the search and alternate tiers.
type ImageProvider interface {
	// Name is also the rate limiter source name.
	Name() string

	Tier() Tier

	// Configured reports whether credentials are present.
	Configured() bool

	// Accepts is a cheap local check that Find could answer for ref. It is
	// consulted before any rate limit budget is spent.
	Accepts(ref ImageReference) bool

	// Find returns ranked candidates for the reference. An empty result is not an error.
	Find(ctx context.Context, ref ImageReference) ([]Candidate, error)
}

// ProviderRegistry manages the remote image providers.
type ProviderRegistry interface {
	Register(ctx context.Context, provider ImageProvider) error

	Get(ctx context.Context, name string) (ImageProvider, error)

	List(ctx context.Context) ([]string, error)

	// ByTier returns the providers of a tier in registration order.
	ByTier(ctx context.Context, tier Tier) []ImageProvider
}

// PathMapper resolves local references that do not exist on disk.
type PathMapper interface {
	MapPath(ctx context.Context, originalPath string) (*PathMapping, error)
}

// UsageLedger tracks which articles use which image URLs.
type UsageLedger interface {
	Record(ctx context.Context, usage Usage) error

	// UsedElsewhere reports whether url is used by an article other than article.
	UsedElsewhere(ctx context.Context, url, article string) (bool, error)

	Duplicates(ctx context.Context) ([]DuplicateGroup, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]any)
}
