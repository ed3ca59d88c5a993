package domain

import (
	"errors"
	"strings"
	"time"
)

// QualityTier selects the compression budget requested from a source.
type QualityTier string

const (
	QualityStandard QualityTier = "standard"
	QualityPremium  QualityTier = "premium"
)

// Variant holds the rendering parameters requested for an image.
type Variant struct {
	Width   int         `json:"width,omitempty"`
	Height  int         `json:"height,omitempty"`
	Quality QualityTier `json:"qualityTier,omitempty"`
	Format  string      `json:"format,omitempty"`
}

// Normalize returns the variant with defaults applied and unknown values cleared.
func (v Variant) Normalize() Variant {
	if v.Width < 0 {
		v.Width = 0
	}
	if v.Height < 0 {
		v.Height = 0
	}

	switch QualityTier(strings.ToLower(string(v.Quality))) {
	case QualityPremium:
		v.Quality = QualityPremium
	default:
		v.Quality = QualityStandard
	}

	v.Format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(v.Format)), ".")
	return v
}

// HasSize reports whether explicit dimensions were requested.
func (v Variant) HasSize() bool {
	return v.Width > 0 || v.Height > 0
}

// ReferenceKind classifies an ImageReference.
type ReferenceKind int

const (
	KindKey ReferenceKind = iota
	KindURL
	KindLocal
)

func (k ReferenceKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindLocal:
		return "local"
	default:
		return "key"
	}
}

// ImageReference is an immutable resolution request.
type ImageReference struct {
	raw      string
	variant  Variant
	query    string
	category string
	article  string
}

// ReferenceOption customizes a reference at construction time.
type ReferenceOption func(*ImageReference)

// WithSearchQuery sets the free-text query used by search providers.
func WithSearchQuery(query string) ReferenceOption {
	return func(r *ImageReference) { r.query = strings.TrimSpace(query) }
}

// WithCategory pins the fallback category instead of inferring it.
func WithCategory(category string) ReferenceOption {
	return func(r *ImageReference) { r.category = strings.ToLower(strings.TrimSpace(category)) }
}

// WithArticle names the article that uses the image, for the usage ledger.
func WithArticle(article string) ReferenceOption {
	return func(r *ImageReference) { r.article = strings.TrimSpace(article) }
}

// NewReference builds a reference from a raw key, URL or local path.
func NewReference(raw string, variant Variant, opts ...ReferenceOption) (ImageReference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ImageReference{}, errors.New("reference cannot be empty")
	}

	ref := ImageReference{
		raw:     raw,
		variant: variant.Normalize(),
	}
	for _, opt := range opts {
		opt(&ref)
	}

	return ref, nil
}

func (r ImageReference) Raw() string      { return r.raw }
func (r ImageReference) Variant() Variant { return r.variant }
func (r ImageReference) Query() string    { return r.query }
func (r ImageReference) Category() string { return r.category }
func (r ImageReference) Article() string  { return r.article }

// Kind classifies the reference: http(s) URLs, rooted or relative paths, or logical keys.
func (r ImageReference) Kind() ReferenceKind {
	lower := strings.ToLower(r.raw)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindURL
	case strings.HasPrefix(r.raw, "/"), strings.HasPrefix(r.raw, "./"), strings.HasPrefix(r.raw, "../"):
		return KindLocal
	default:
		return KindKey
	}
}

// Name returns the last path element of the reference, without any query string.
func (r ImageReference) Name() string {
	name := r.raw
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// Tier orders candidate sources. Lower tiers are tried first.
type Tier int

const (
	TierDirect Tier = iota
	TierCurated
	TierSearch
	TierAlternate
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierCurated:
		return "curated"
	case TierSearch:
		return "search"
	case TierAlternate:
		return "alternate"
	case TierFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// Candidate is a single source attempt.
type Candidate struct {
	Source   string  `json:"source"`
	URL      string  `json:"url"`
	Tier     Tier    `json:"tier"`
	Priority int     `json:"priority"`
	Score    float64 `json:"score,omitempty"`
	// Deferred is set by planning when the tier needs a remote call to produce a URL.
	Deferred bool `json:"deferred,omitempty"`
}

// SourceMeta describes where a cached payload came from.
type SourceMeta struct {
	Origin       string    `json:"source"`
	OriginalURL  string    `json:"originalUrl,omitempty"`
	OriginalPath string    `json:"originalPath,omitempty"`
	ContentType  string    `json:"contentType,omitempty"`
	FetchedAt    time.Time `json:"fetchedAt"`
	SizeBytes    int64     `json:"size"`
}

// CacheEntry is owned by the cache. Callers only ever see clones.
type CacheEntry struct {
	Key            string
	Payload        []byte
	DelegatedURL   string
	Meta           SourceMeta
	CachedAt       time.Time
	LastAccessedAt time.Time
}

// Delegated reports whether the entry stores a URL instead of bytes.
func (e *CacheEntry) Delegated() bool {
	return e.DelegatedURL != "" && len(e.Payload) == 0
}

// Clone returns a deep copy.
func (e *CacheEntry) Clone() *CacheEntry {
	if e == nil {
		return nil
	}

	c := *e
	if e.Payload != nil {
		c.Payload = make([]byte, len(e.Payload))
		copy(c.Payload, e.Payload)
	}
	return &c
}

// CacheStatus tells the caller how a result was served.
type CacheStatus string

const (
	CacheHit    CacheStatus = "hit"
	CacheMiss   CacheStatus = "miss"
	CacheBypass CacheStatus = "bypass"
)

// ResolvedImage is the result of a resolution.
type ResolvedImage struct {
	Key         string       `json:"key,omitempty"`
	Bytes       []byte       `json:"-"`
	URL         string       `json:"url,omitempty"`
	LocalPath   string       `json:"localPath,omitempty"`
	Source      string       `json:"source"`
	CacheStatus CacheStatus  `json:"cacheStatus"`
	Meta        SourceMeta   `json:"meta"`
	Mapping     *PathMapping `json:"mapping,omitempty"`
}

// ResolveOptions tunes a single resolution.
type ResolveOptions struct {
	// DelegateURL returns the winning URL without downloading the payload.
	DelegateURL bool
	// AvoidDuplicates prefers a candidate no other article already uses.
	AvoidDuplicates bool
}

// Outcome is one entry of a batch resolution.
type Outcome struct {
	Reference string         `json:"reference"`
	Image     *ResolvedImage `json:"image,omitempty"`
	Err       error          `json:"-"`
	Error     string         `json:"error,omitempty"`
}

// MappingStatus classifies how a path mapping was derived.
type MappingStatus string

const (
	MappingExists        MappingStatus = "exists"
	MappingPatternMapped MappingStatus = "pattern_mapped"
	MappingSimilar       MappingStatus = "similar"
	MappingGenerated     MappingStatus = "generated"
	MappingCustom        MappingStatus = "custom"
)

// PathMapping records where a broken local reference should point.
type PathMapping struct {
	OriginalPath      string        `json:"originalPath"`
	MappedPath        string        `json:"mappedPath"`
	Status            MappingStatus `json:"status"`
	Type              string        `json:"type"`
	Confidence        float64       `json:"confidence,omitempty"`
	Reasons           []string      `json:"reasons,omitempty"`
	Pattern           string        `json:"pattern,omitempty"`
	Directory         string        `json:"directory,omitempty"`
	Priority          int           `json:"priority,omitempty"`
	AssetsFingerprint string        `json:"assetsFingerprint,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// ValidationReason explains a failed probe.
type ValidationReason string

const (
	ReasonNone            ValidationReason = ""
	ReasonMissing         ValidationReason = "missing"
	ReasonTooSmall        ValidationReason = "too_small"
	ReasonWrongType       ValidationReason = "wrong_type"
	ReasonTextPlaceholder ValidationReason = "text_placeholder"
	ReasonUnreachable     ValidationReason = "unreachable"
	ReasonHTTPStatus      ValidationReason = "http_status"
)

// ValidationResult is the outcome of a probe. Width and Height are informational.
type ValidationResult struct {
	OK          bool             `json:"ok"`
	Reason      ValidationReason `json:"reason,omitempty"`
	Detail      string           `json:"detail,omitempty"`
	StatusCode  int              `json:"statusCode,omitempty"`
	ContentType string           `json:"contentType,omitempty"`
	Size        int64            `json:"size,omitempty"`
	Width       int              `json:"width,omitempty"`
	Height      int              `json:"height,omitempty"`
}

// DownloadOptions overrides acquirer defaults. Zero values keep the defaults.
type DownloadOptions struct {
	Timeout    time.Duration
	MaxRetries int
}

// Download is a successfully fetched payload.
type Download struct {
	Bytes       []byte
	ContentType string
	FinalURL    string
	Attempts    int
}

// SearchHit is a raw result returned by a search provider.
type SearchHit struct {
	URL         string `json:"url"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Likes       int    `json:"likes"`
	Downloads   int    `json:"downloads"`
	Description string `json:"description,omitempty"`
}

// RateStatus is a snapshot of one source's window.
type RateStatus struct {
	Used      int           `json:"used"`
	Max       int           `json:"max"`
	Remaining int           `json:"remaining"`
	Window    time.Duration `json:"window"`
	ResetAt   time.Time     `json:"resetAt,omitzero"`
}

// CacheStats describes the cache tiers.
type CacheStats struct {
	MemoryEntries int       `json:"memoryEntries"`
	MemoryHits    int64     `json:"memoryHits"`
	DiskEntries   int       `json:"diskEntries"`
	DiskHits      int64     `json:"diskHits"`
	Misses        int64     `json:"misses"`
	DiskBytes     int64     `json:"diskBytes"`
	LastSweep     time.Time `json:"lastSweep,omitzero"`
}

// SweepReport summarizes one sweep run.
type SweepReport struct {
	Expired     int   `json:"expired"`
	Corrupt     int   `json:"corrupt"`
	Evicted     int   `json:"evicted"`
	Orphans     int   `json:"orphans"`
	Failures    int   `json:"failures"`
	BytesBefore int64 `json:"bytesBefore"`
	BytesAfter  int64 `json:"bytesAfter"`
}

// Stats is the operational snapshot exposed to dashboards.
type Stats struct {
	Requests        int64                 `json:"requests"`
	Hits            int64                 `json:"hits"`
	Misses          int64                 `json:"misses"`
	Downloads       int64                 `json:"downloads"`
	Failures        int64                 `json:"failures"`
	HitRate         float64               `json:"hitRate"`
	CacheSizeBytes  int64                 `json:"cacheSizeBytes"`
	Cache           CacheStats            `json:"cache"`
	RateLimitStatus map[string]RateStatus `json:"rateLimitStatus"`
}

// Usage records that an article uses an image URL.
type Usage struct {
	Reference string    `json:"reference"`
	Article   string    `json:"article"`
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	UsedAt    time.Time `json:"usedAt"`
}

// DuplicateGroup lists articles that share the same image URL.
type DuplicateGroup struct {
	URL      string   `json:"url"`
	Articles []string `json:"articles"`
}
