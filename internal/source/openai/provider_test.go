package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/source/openai"
)

func TestProvider_Configured(t *testing.T) {
	t.Run("should be unconfigured without an API key", func(t *testing.T) {
		p := openai.NewProvider(openai.Config{})
		require.False(t, p.Configured())
		require.Equal(t, "openai", p.Name())
		require.Equal(t, domain.TierAlternate, p.Tier())
	})

	t.Run("should be configured with an API key", func(t *testing.T) {
		p := openai.NewProvider(openai.Config{APIKey: "sk-test"})
		require.True(t, p.Configured())
	})
}

func TestProvider_Find(t *testing.T) {
	t.Run("should request one image and return its URL", func(t *testing.T) {
		var body map[string]any
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.True(t, strings.HasSuffix(r.URL.Path, "images/generations"))
			assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"created":1700000000,"data":[{"url":"https://oaidalle.example.com/img.png"}]}`))
		}))
		defer server.Close()

		p := openai.NewProvider(openai.Config{APIKey: "sk-test", BaseURL: server.URL, Timeout: 5, MaxRetries: 1})

		ref, err := domain.NewReference("pixel-9-pro-hero.jpg", domain.Variant{Quality: domain.QualityPremium},
			domain.WithCategory("google"))
		require.NoError(t, err)

		got, err := p.Find(context.Background(), ref)
		require.NoError(t, err)
		require.Len(t, got, 1)
		require.Equal(t, "https://oaidalle.example.com/img.png", got[0].URL)

		require.Equal(t, "dall-e-3", body["model"])
		require.Equal(t, "1792x1024", body["size"])
		require.Equal(t, "hd", body["quality"])
		require.Contains(t, body["prompt"], "pixel 9 pro hero")
		require.Contains(t, body["prompt"], "google category")
	})

	t.Run("should fail when the response has no data", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"created":1700000000,"data":[]}`))
		}))
		defer server.Close()

		p := openai.NewProvider(openai.Config{APIKey: "sk-test", BaseURL: server.URL, Timeout: 5, MaxRetries: 1})

		ref, err := domain.NewReference("camera", domain.Variant{}, domain.WithSearchQuery("mirrorless camera"))
		require.NoError(t, err)

		_, err = p.Find(context.Background(), ref)
		require.ErrorContains(t, err, "no image returned")
	})
}
