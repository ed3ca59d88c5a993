package pathmap_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/mocks"
	"github.com/davidbz/imgresolve/internal/pathmap"
)

type fixture struct {
	public string
	cfg    *config.PathsConfig
	cat    *catalog.Catalog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cat, err := catalog.Default()
	require.NoError(t, err)

	return &fixture{
		public: filepath.Join(root, "public"),
		cfg: &config.PathsConfig{
			PublicDir:           filepath.Join(root, "public"),
			ImagePrefix:         "/images",
			MappingTable:        filepath.Join(root, ".cache", "image-mappings.json"),
			SimilarityThreshold: 0.6,
		},
		cat: cat,
	}
}

func (f *fixture) addAsset(t *testing.T, webPath string) {
	t.Helper()
	full := filepath.Join(f.public, filepath.FromSlash(webPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte("binary image payload"), 0o644))
}

// existenceProber reports files under the public dir as valid.
func (f *fixture) existenceProber(t *testing.T) *mocks.MockProber {
	t.Helper()
	prober := mocks.NewMockProber(t)
	prober.EXPECT().Probe(mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, target string) domain.ValidationResult {
			if _, err := os.Stat(filepath.Join(f.public, filepath.FromSlash(target))); err != nil {
				return domain.ValidationResult{Reason: domain.ReasonMissing}
			}
			return domain.ValidationResult{OK: true}
		}).Maybe()
	return prober
}

func (f *fixture) mapper(t *testing.T, opts ...pathmap.Option) *pathmap.Mapper {
	t.Helper()
	opts = append([]pathmap.Option{pathmap.WithClock(clock.Fake(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))}, opts...)
	return pathmap.NewMapper(f.cfg, f.cat, f.existenceProber(t), opts...)
}

func TestMapper_MapPath(t *testing.T) {
	ctx := context.Background()

	t.Run("should map a missing hero image by pattern", func(t *testing.T) {
		f := newFixture(t)

		got, err := f.mapper(t).MapPath(ctx, "/images/products/foo-hero.jpg")
		require.NoError(t, err)
		require.Equal(t, "/images/products/foo-hero.jpg", got.MappedPath)
		require.Equal(t, domain.MappingPatternMapped, got.Status)
		require.Equal(t, "hero", got.Pattern)
		require.Equal(t, 10, got.Priority)
	})

	t.Run("should rebuild feature filenames from capture groups", func(t *testing.T) {
		f := newFixture(t)

		got, err := f.mapper(t).MapPath(ctx, "/images/products/pixel-9-battery.jpg")
		require.NoError(t, err)
		require.Equal(t, domain.MappingPatternMapped, got.Status)
		require.Equal(t, "product-features", got.Pattern)
		require.Equal(t, "/images/products/pixel-9-battery.jpg", got.MappedPath)
	})

	t.Run("should keep existing assets as identity mappings", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/products/pixel-9-hero.jpg")

		got, err := f.mapper(t).MapPath(ctx, "/images/products/pixel-9-hero.jpg")
		require.NoError(t, err)
		require.Equal(t, domain.MappingExists, got.Status)
		require.Equal(t, "identity", got.Type)
		require.Equal(t, got.OriginalPath, got.MappedPath)
	})

	t.Run("should map to the most similar existing asset", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/products/iphone-15-pro-max-camera.jpg")
		f.addAsset(t, "/images/products/galaxy-s24-display.jpg")

		got, err := f.mapper(t).MapPath(ctx, "/images/gallery/iphone-15-pro-camera-shot.png")
		require.NoError(t, err)
		require.Equal(t, domain.MappingSimilar, got.Status)
		require.Equal(t, "/images/products/iphone-15-pro-max-camera.jpg", got.MappedPath)
		require.Greater(t, got.Confidence, 0.6)
		require.Contains(t, got.Reasons, "product_match_iphone")
		require.NotEmpty(t, got.AssetsFingerprint)
	})

	t.Run("should generate a path with low confidence when nothing matches", func(t *testing.T) {
		f := newFixture(t)

		got, err := f.mapper(t).MapPath(ctx, "/images/IMG_Sony A7 Review.JPG")
		require.ErrorIs(t, err, domain.ErrMappingLowConfidence)
		require.ErrorIs(t, err, domain.ErrNoImage)
		require.NotNil(t, got)
		require.Equal(t, domain.MappingGenerated, got.Status)
		require.Equal(t, "reviews", got.Directory)
		require.Equal(t, "/images/reviews/sony-a7-review.jpg", got.MappedPath)
	})

	t.Run("should reject empty paths", func(t *testing.T) {
		_, err := newFixture(t).mapper(t).MapPath(ctx, "  ")
		require.Error(t, err)
	})
}

func TestMapper_Threshold(t *testing.T) {
	ctx := context.Background()
	fixed := func(score float64) pathmap.Scorer {
		return func(_, _ string) pathmap.Similarity { return pathmap.Similarity{Score: score} }
	}

	t.Run("should not accept a score equal to the threshold", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/products/anything.jpg")

		got, err := f.mapper(t, pathmap.WithScorer(fixed(0.6))).MapPath(ctx, "/images/misc/thing.png")
		require.ErrorIs(t, err, domain.ErrMappingLowConfidence)
		require.Equal(t, domain.MappingGenerated, got.Status)
	})

	t.Run("should accept a score just above the threshold", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/products/anything.jpg")

		got, err := f.mapper(t, pathmap.WithScorer(fixed(0.6001))).MapPath(ctx, "/images/misc/thing.png")
		require.NoError(t, err)
		require.Equal(t, domain.MappingSimilar, got.Status)
		require.Equal(t, "/images/products/anything.jpg", got.MappedPath)
	})
}

func TestMapper_Memoization(t *testing.T) {
	ctx := context.Background()

	t.Run("should return the stored mapping across mapper instances", func(t *testing.T) {
		f := newFixture(t)

		first, err := f.mapper(t).MapPath(ctx, "/images/products/foo-hero.jpg")
		require.NoError(t, err)

		// The bare mock fails on any call, so a memoized lookup must not re-derive.
		again := pathmap.NewMapper(f.cfg, f.cat, mocks.NewMockProber(t))
		second, err := again.MapPath(ctx, "/images/products/foo-hero.jpg")
		require.NoError(t, err)
		require.Equal(t, first, second)

		data, err := os.ReadFile(f.cfg.MappingTable)
		require.NoError(t, err)
		require.Contains(t, string(data), `"version": "1.0"`)
		require.Contains(t, string(data), `"/images/products/foo-hero.jpg"`)
	})

	t.Run("should re-derive a similarity mapping when the asset set changes", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/products/iphone-15-pro-max-camera.jpg")
		m := f.mapper(t)

		first, err := m.MapPath(ctx, "/images/gallery/iphone-15-pro-camera.png")
		require.NoError(t, err)
		require.Equal(t, "/images/products/iphone-15-pro-max-camera.jpg", first.MappedPath)

		second, err := m.MapPath(ctx, "/images/gallery/iphone-15-pro-camera.png")
		require.NoError(t, err)
		require.Equal(t, first, second)

		f.addAsset(t, "/images/products/iphone-15-pro-camera.jpg")

		third, err := m.MapPath(ctx, "/images/gallery/iphone-15-pro-camera.png")
		require.NoError(t, err)
		require.Equal(t, "/images/products/iphone-15-pro-camera.jpg", third.MappedPath)
	})

	t.Run("should drop an identity mapping once its asset is removed", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/gallery/sunset-beach.jpg")

		first, err := f.mapper(t).MapPath(ctx, "/images/gallery/sunset-beach.jpg")
		require.NoError(t, err)
		require.Equal(t, domain.MappingExists, first.Status)

		require.NoError(t, os.Remove(filepath.Join(f.public, "images", "gallery", "sunset-beach.jpg")))

		got, err := f.mapper(t).MapPath(ctx, "/images/gallery/sunset-beach.jpg")
		require.ErrorIs(t, err, domain.ErrMappingLowConfidence)
		require.Equal(t, domain.MappingGenerated, got.Status)

		stored, ok, err := f.mapper(t).Lookup("/images/gallery/sunset-beach.jpg")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, domain.MappingGenerated, stored.Status)
	})

	t.Run("should let custom mappings override derived ones", func(t *testing.T) {
		f := newFixture(t)
		m := f.mapper(t)

		_, err := m.MapPath(ctx, "/images/products/foo-hero.jpg")
		require.NoError(t, err)

		custom, err := m.AddMapping(ctx, "/images/products/foo-hero.jpg", "/images/products/bar-hero.jpg")
		require.NoError(t, err)
		require.Equal(t, domain.MappingCustom, custom.Status)

		got, err := m.MapPath(ctx, "/images/products/foo-hero.jpg")
		require.NoError(t, err)
		require.Equal(t, "/images/products/bar-hero.jpg", got.MappedPath)

		stored, ok, err := m.Lookup("/images/products/foo-hero.jpg")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, domain.MappingCustom, stored.Status)
	})
}

func TestMapper_Session(t *testing.T) {
	ctx := context.Background()

	t.Run("should map all references and report by status", func(t *testing.T) {
		f := newFixture(t)
		f.addAsset(t, "/images/news/launch.jpg")
		m := f.mapper(t)

		report, err := m.MapAll(ctx, []string{
			"/images/news/launch.jpg",
			"/images/products/foo-hero.jpg",
			"/images/products/foo-hero.jpg",
			"https://cdn.example.com/remote.jpg",
			"/images/Photo_Leak.webp",
		})
		require.NoError(t, err)
		require.Equal(t, 3, report.Summary.PathsAnalyzed)
		require.Equal(t, 2, report.Summary.PathsMapped)
		require.Equal(t, 1, report.ByStatus["exists"])
		require.Equal(t, 1, report.ByStatus["pattern_mapped"])
		require.Equal(t, 1, report.ByStatus["generated"])
		require.Len(t, report.Mappings, 3)

		mappings, err := m.Mappings()
		require.NoError(t, err)
		require.Equal(t, "/images/Photo_Leak.webp", mappings[0].OriginalPath)
		require.Equal(t, "/images/news/leak.webp", mappings[0].MappedPath)
	})

	t.Run("should only report fixes on dry run and rewrite otherwise", func(t *testing.T) {
		f := newFixture(t)
		m := f.mapper(t)

		_, err := m.AddMapping(ctx, "/images/old/a.jpg", "/images/products/a.jpg")
		require.NoError(t, err)
		_, err = m.AddMapping(ctx, "/images/old/a.jpg.bak", "/images/products/b.jpg")
		require.NoError(t, err)

		file := filepath.Join(t.TempDir(), "post.md")
		body := "![a](/images/old/a.jpg)\n![b](/images/old/a.jpg.bak)\n"
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))

		fixes, err := m.Apply(ctx, []string{file}, true)
		require.NoError(t, err)
		require.Len(t, fixes, 2)
		data, err := os.ReadFile(file)
		require.NoError(t, err)
		require.Equal(t, body, string(data))

		fixes, err = m.Apply(ctx, []string{file}, false)
		require.NoError(t, err)
		require.Len(t, fixes, 2)
		data, err = os.ReadFile(file)
		require.NoError(t, err)
		require.Equal(t, "![a](/images/products/a.jpg)\n![b](/images/products/b.jpg)\n", string(data))

		report, err := m.Report()
		require.NoError(t, err)
		require.Equal(t, 2, report.Summary.PathsFixed)
	})
}

func TestStandardizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IMG_Hero Shot.JPG", "hero-shot.jpg"},
		{"photo-galaxy__s24--ultra.png", "galaxy-s24-ultra.png"},
		{"pixel-9-pic.webp", "pixel-9.webp"},
		{"diagram.gif", "diagram.jpg"},
		{"-_-.jpeg", "image.jpeg"},
	}
	for _, tt := range tests {
		t.Run("should standardize "+tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, pathmap.StandardizeFilename(tt.in))
		})
	}
}
