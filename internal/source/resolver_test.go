package source_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/mocks"
	"github.com/davidbz/imgresolve/internal/source"
	"github.com/davidbz/imgresolve/internal/source/registry"
)

var cameraURLs = []string{
	"https://cdn.example.com/camera-0.jpg",
	"https://cdn.example.com/camera-1.jpg",
	"https://cdn.example.com/camera-2.jpg",
	"https://cdn.example.com/camera-3.jpg",
}

func newCatalog(t *testing.T, curated ...catalog.CuratedEntry) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(catalog.Document{
		Curated: curated,
		Fallback: catalog.FallbackTable{
			Default: "camera",
			Categories: []catalog.FallbackCategory{
				{Name: "camera", URLs: cameraURLs},
			},
		},
		SizeHintHosts: []string{"images.unsplash.com"},
	})
	require.NoError(t, err)
	return cat
}

// newProber accepts every URL except those listed.
func newProber(t *testing.T, rejected ...string) *mocks.MockProber {
	t.Helper()
	bad := make(map[string]bool, len(rejected))
	for _, u := range rejected {
		bad[u] = true
	}

	prober := mocks.NewMockProber(t)
	prober.EXPECT().Probe(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, target string) domain.ValidationResult {
			if bad[target] {
				return domain.ValidationResult{Reason: domain.ReasonHTTPStatus, StatusCode: 404}
			}
			return domain.ValidationResult{OK: true}
		}).Maybe()
	return prober
}

func newRef(t *testing.T, raw string, opts ...domain.ReferenceOption) domain.ImageReference {
	t.Helper()
	ref, err := domain.NewReference(raw, domain.Variant{}, opts...)
	require.NoError(t, err)
	return ref
}

func newSearchProvider(t *testing.T, name string, configured bool) *mocks.MockImageProvider {
	t.Helper()
	p := mocks.NewMockImageProvider(t)
	p.EXPECT().Name().Return(name).Maybe()
	p.EXPECT().Tier().Return(domain.TierSearch).Maybe()
	p.EXPECT().Configured().Return(configured).Maybe()
	p.EXPECT().Accepts(mock.Anything).RunAndReturn(func(ref domain.ImageReference) bool {
		return ref.Query() != ""
	}).Maybe()
	return p
}

func TestResolver_FallbackSelection(t *testing.T) {
	ctx := context.Background()

	t.Run("should pick the hashed fallback index when nothing else matches", func(t *testing.T) {
		name := "iphone-16-pro-max-camera-system.jpg"
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))

		got, err := r.Resolve(ctx, newRef(t, name))
		require.NoError(t, err)
		require.Equal(t, "https://cdn.example.com/camera-1.jpg", got.URL)
		require.Equal(t, domain.TierFallback, got.Tier)
	})

	t.Run("should return the same fallback on repeated calls", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))
		ref := newRef(t, "galaxy-s24-ultra-review.jpg")

		first, err := r.Resolve(ctx, ref)
		require.NoError(t, err)
		for range 5 {
			again, err := r.Resolve(ctx, ref)
			require.NoError(t, err)
			require.Equal(t, first.URL, again.URL)
		}
	})

	t.Run("should rotate past a rejected fallback", func(t *testing.T) {
		// pixel-9-hero.jpg hashes to index 0.
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t),
			newProber(t, cameraURLs[0]))

		got, err := r.Resolve(ctx, newRef(t, "pixel-9-hero.jpg"))
		require.NoError(t, err)
		require.Equal(t, cameraURLs[1], got.URL)
	})

	t.Run("should report source unavailable when every candidate fails", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t),
			newProber(t, cameraURLs...))

		_, err := r.Resolve(ctx, newRef(t, "anything.jpg"))
		require.ErrorIs(t, err, domain.ErrSourceUnavailable)
		require.ErrorIs(t, err, domain.ErrNoImage)
	})
}

func TestResolver_CuratedAndDirect(t *testing.T) {
	ctx := context.Background()
	curated := catalog.CuratedEntry{
		Key:       "iphone-16-pro-hero.jpg",
		Primary:   "https://images.unsplash.com/photo-primary",
		Fallbacks: []string{"https://images.unsplash.com/photo-alt"},
	}

	t.Run("should prefer the curated primary", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t, curated), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "iphone-16-pro-hero.jpg"))
		require.NoError(t, err)
		require.Equal(t, curated.Primary, got.URL)
		require.Equal(t, domain.TierCurated, got.Tier)
		require.Equal(t, 0, got.Priority)
	})

	t.Run("should fall through curated alternates in order", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t, curated), registry.NewRegistry(), mocks.NewMockRateLimiter(t),
			newProber(t, curated.Primary))

		got, err := r.Resolve(ctx, newRef(t, "iphone-16-pro-hero.jpg"))
		require.NoError(t, err)
		require.Equal(t, "https://images.unsplash.com/photo-alt", got.URL)
		require.Equal(t, 1, got.Priority)
	})

	t.Run("should add size hints for supported hosts", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t, curated), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))
		ref, err := domain.NewReference("iphone-16-pro-hero.jpg", domain.Variant{Width: 1200, Height: 800, Format: "webp"})
		require.NoError(t, err)

		got, err := r.Resolve(ctx, ref)
		require.NoError(t, err)
		require.Equal(t, "https://images.unsplash.com/photo-primary?fit=crop&fm=webp&h=800&q=85&w=1200", got.URL)
	})

	t.Run("should try a URL reference directly first", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "https://example.com/photo.png"))
		require.NoError(t, err)
		require.Equal(t, "https://example.com/photo.png", got.URL)
		require.Equal(t, domain.TierDirect, got.Tier)
	})
}

func TestResolver_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("should not query search providers without a query", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, newSearchProvider(t, "unsplash", true)))

		r := source.NewResolver(newCatalog(t), reg, mocks.NewMockRateLimiter(t), newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg"))
		require.NoError(t, err)
		require.Equal(t, domain.TierFallback, got.Tier)
	})

	t.Run("should skip unconfigured providers without spending budget", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, newSearchProvider(t, "unsplash", false)))

		r := source.NewResolver(newCatalog(t), reg, mocks.NewMockRateLimiter(t), newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg", domain.WithSearchQuery("camera")))
		require.NoError(t, err)
		require.Equal(t, domain.TierFallback, got.Tier)
	})

	t.Run("should use the top hit when the limiter allows", func(t *testing.T) {
		p := newSearchProvider(t, "unsplash", true)
		p.EXPECT().Find(mock.Anything, mock.Anything).Return([]domain.Candidate{
			{Source: "unsplash", URL: "https://images.unsplash.com/top"},
			{Source: "unsplash", URL: "https://images.unsplash.com/second"},
		}, nil).Once()

		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, p))

		limiter := mocks.NewMockRateLimiter(t)
		limiter.EXPECT().Take(mock.Anything, "unsplash").Return(true).Once()

		r := source.NewResolver(newCatalog(t), reg, limiter, newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg", domain.WithSearchQuery("mirrorless camera")))
		require.NoError(t, err)
		require.Equal(t, "https://images.unsplash.com/top", got.URL)
		require.Equal(t, domain.TierSearch, got.Tier)
	})

	t.Run("should not fall to the second search hit", func(t *testing.T) {
		p := newSearchProvider(t, "unsplash", true)
		p.EXPECT().Find(mock.Anything, mock.Anything).Return([]domain.Candidate{
			{Source: "unsplash", URL: "https://images.unsplash.com/top"},
			{Source: "unsplash", URL: "https://images.unsplash.com/second"},
		}, nil).Once()

		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, p))

		limiter := mocks.NewMockRateLimiter(t)
		limiter.EXPECT().Take(mock.Anything, "unsplash").Return(true).Once()

		r := source.NewResolver(newCatalog(t), reg, limiter, newProber(t, "https://images.unsplash.com/top"))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg", domain.WithSearchQuery("camera")))
		require.NoError(t, err)
		require.Equal(t, domain.TierFallback, got.Tier)
	})

	t.Run("should skip a rate limited provider", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, newSearchProvider(t, "unsplash", true)))

		limiter := mocks.NewMockRateLimiter(t)
		limiter.EXPECT().Take(mock.Anything, "unsplash").Return(false).Once()

		r := source.NewResolver(newCatalog(t), reg, limiter, newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg", domain.WithSearchQuery("camera")))
		require.NoError(t, err)
		require.Equal(t, domain.TierFallback, got.Tier)
	})

	t.Run("should continue after a provider error", func(t *testing.T) {
		p := newSearchProvider(t, "pexels", true)
		p.EXPECT().Find(mock.Anything, mock.Anything).Return(nil, errors.New("boom")).Once()

		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, p))

		limiter := mocks.NewMockRateLimiter(t)
		limiter.EXPECT().Take(mock.Anything, "pexels").Return(true).Once()

		r := source.NewResolver(newCatalog(t), reg, limiter, newProber(t))

		got, err := r.Resolve(ctx, newRef(t, "camera.jpg", domain.WithSearchQuery("camera")))
		require.NoError(t, err)
		require.Equal(t, domain.TierFallback, got.Tier)
	})
}

func TestResolver_Walk(t *testing.T) {
	ctx := context.Background()

	t.Run("should hand later candidates to visit when earlier ones are declined", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))

		var seen []string
		err := r.Walk(ctx, newRef(t, "lens.jpg"), func(c domain.Candidate) bool {
			seen = append(seen, c.URL)
			return len(seen) == 2
		})
		require.NoError(t, err)
		require.Len(t, seen, 2)
		require.NotEqual(t, seen[0], seen[1])
	})

	t.Run("should stop on a cancelled context", func(t *testing.T) {
		r := source.NewResolver(newCatalog(t), registry.NewRegistry(), mocks.NewMockRateLimiter(t), newProber(t))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := r.Walk(cctx, newRef(t, "lens.jpg"), func(domain.Candidate) bool { return true })
		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, err, domain.ErrSourceUnavailable)
	})
}

func TestResolver_ResolveCandidates(t *testing.T) {
	ctx := context.Background()

	t.Run("should list the plan without probing", func(t *testing.T) {
		reg := registry.NewRegistry()
		require.NoError(t, reg.Register(ctx, newSearchProvider(t, "unsplash", true)))

		curated := catalog.CuratedEntry{Key: "lens", Primary: "https://cdn.example.com/lens.jpg"}
		r := source.NewResolver(newCatalog(t, curated), reg, mocks.NewMockRateLimiter(t), mocks.NewMockProber(t))

		plan, err := r.ResolveCandidates(ctx, newRef(t, "https://shop.example.com/lens.jpg", domain.WithSearchQuery("lens")))
		require.NoError(t, err)
		require.Len(t, plan, 1+1+1+len(cameraURLs))

		require.Equal(t, domain.TierDirect, plan[0].Tier)
		require.Equal(t, domain.TierCurated, plan[1].Tier)
		require.True(t, plan[2].Deferred)
		require.Equal(t, "unsplash", plan[2].Source)
		for i, c := range plan {
			require.Equal(t, i, c.Priority)
		}
	})
}
