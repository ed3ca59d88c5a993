package pexels_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/source/pexels"
)

func TestProvider_Find(t *testing.T) {
	ref, err := domain.NewReference("galaxy-s24", domain.Variant{}, domain.WithSearchQuery("galaxy s24 ultra"))
	require.NoError(t, err)

	t.Run("should use the large rendition and fall back to original", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/search", r.URL.Path)
			assert.Equal(t, "galaxy s24 ultra", r.URL.Query().Get("query"))
			assert.Equal(t, "large", r.URL.Query().Get("size"))
			assert.Equal(t, "pex-key", r.Header.Get("Authorization"))

			_, _ = w.Write([]byte(`{"total_results":2,"photos":[
				{"id":1,"src":{"large":"https://images.pexels.com/1-large.jpeg","original":"https://images.pexels.com/1.jpeg"}},
				{"id":2,"src":{"original":"https://images.pexels.com/2.jpeg"}}
			]}`))
		}))
		defer server.Close()

		p := pexels.NewProvider(pexels.Config{APIKey: "pex-key", BaseURL: server.URL, Timeout: 5})

		got, err := p.Find(context.Background(), ref)
		require.NoError(t, err)
		require.Len(t, got, 2)
		require.Equal(t, "https://images.pexels.com/1-large.jpeg", got[0].URL)
		require.Equal(t, "https://images.pexels.com/2.jpeg", got[1].URL)
	})

	t.Run("should return empty result without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"total_results":0,"photos":[]}`))
		}))
		defer server.Close()

		p := pexels.NewProvider(pexels.Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})

		got, err := p.Find(context.Background(), ref)
		require.NoError(t, err)
		require.Empty(t, got)
	})

	t.Run("should fail on malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"photos":`))
		}))
		defer server.Close()

		p := pexels.NewProvider(pexels.Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})

		_, err := p.Find(context.Background(), ref)
		require.ErrorContains(t, err, "decode")
	})
}

func TestProvider_Accepts(t *testing.T) {
	p := pexels.NewProvider(pexels.Config{APIKey: "k"})
	require.Equal(t, domain.TierAlternate, p.Tier())

	t.Run("should search by name words without a query", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "pixel 9 pro hero", r.URL.Query().Get("query"))
			_, _ = w.Write([]byte(`{"photos":[]}`))
		}))
		defer server.Close()

		ref, err := domain.NewReference("pixel_9-pro-hero.jpg", domain.Variant{})
		require.NoError(t, err)
		require.True(t, p.Accepts(ref))

		withServer := pexels.NewProvider(pexels.Config{APIKey: "k", BaseURL: server.URL, Timeout: 5})
		_, err = withServer.Find(context.Background(), ref)
		require.NoError(t, err)
	})
}
