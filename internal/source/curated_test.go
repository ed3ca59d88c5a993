package source_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/source"
)

func TestValidateCurated(t *testing.T) {
	t.Run("should split keys by whether any URL passes", func(t *testing.T) {
		cat := newCatalog(t,
			catalog.CuratedEntry{
				Key:       "sony-a7-iv",
				Primary:   "https://cdn.example.com/a7-broken.jpg",
				Fallbacks: []string{"https://cdn.example.com/a7.jpg"},
			},
			catalog.CuratedEntry{
				Key:     "pixel-9",
				Primary: "https://cdn.example.com/pixel-broken.jpg",
			},
			catalog.CuratedEntry{
				Key:     "galaxy-s25",
				Primary: "https://cdn.example.com/galaxy.jpg",
			},
		)
		prober := newProber(t,
			"https://cdn.example.com/a7-broken.jpg",
			"https://cdn.example.com/pixel-broken.jpg",
		)

		report, err := source.ValidateCurated(context.Background(), cat, prober, 2)
		require.NoError(t, err)
		require.Equal(t, []string{"galaxy-s25", "sony-a7-iv"}, report.Valid)
		require.Equal(t, []string{"pixel-9"}, report.Invalid)

		require.Len(t, report.Checks, 3)
		a7 := report.Checks[2]
		require.Equal(t, "sony-a7-iv", a7.Key)
		require.Equal(t, "https://cdn.example.com/a7.jpg", a7.ValidURL)
		require.Equal(t, []string{"https://cdn.example.com/a7-broken.jpg"}, a7.Rejected)
	})

	t.Run("should stop on cancellation", func(t *testing.T) {
		cat := newCatalog(t, catalog.CuratedEntry{Key: "k", Primary: "https://cdn.example.com/k.jpg"})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := source.ValidateCurated(ctx, cat, newProber(t), 1)
		require.ErrorIs(t, err, context.Canceled)
	})
}
