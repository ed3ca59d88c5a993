package acquire_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/acquire"
	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
)

func newFakeClock() *clock.FakeClock {
	return clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)).AutoAdvance(true)
}

func TestDownload(t *testing.T) {
	ctx := context.Background()

	t.Run("should return bytes on success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		fake := newFakeClock()
		result, err := acquire.NewAcquirer(nil, acquire.WithClock(fake)).Download(ctx, server.URL, domain.DownloadOptions{})
		require.NoError(t, err)
		require.Equal(t, []byte("jpeg-bytes"), result.Bytes)
		require.Equal(t, 1, result.Attempts)
		require.Empty(t, fake.Waits())
	})

	t.Run("should fail after exactly three attempts with 2s and 4s waits", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		fake := newFakeClock()
		_, err := acquire.NewAcquirer(nil, acquire.WithClock(fake)).Download(ctx, server.URL, domain.DownloadOptions{})

		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		var dlErr *domain.DownloadError
		require.True(t, errors.As(err, &dlErr))
		require.Equal(t, 3, dlErr.Attempts)
		require.Equal(t, http.StatusInternalServerError, dlErr.StatusCode)
		require.Equal(t, int32(3), hits.Load())
		require.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, fake.Waits())
	})

	t.Run("should recover when a later attempt succeeds", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			if hits.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png"))
		}))
		defer server.Close()

		result, err := acquire.NewAcquirer(nil, acquire.WithClock(newFakeClock())).Download(ctx, server.URL, domain.DownloadOptions{})
		require.NoError(t, err)
		require.Equal(t, 2, result.Attempts)
	})

	t.Run("should reject 2xx statuses other than 200", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write([]byte("png"))
		}))
		defer server.Close()

		_, err := acquire.NewAcquirer(nil, acquire.WithClock(newFakeClock())).Download(ctx, server.URL, domain.DownloadOptions{MaxRetries: 1})
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		require.Contains(t, err.Error(), "206")
	})

	t.Run("should reject non-image content", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		_, err := acquire.NewAcquirer(nil, acquire.WithClock(newFakeClock())).Download(ctx, server.URL, domain.DownloadOptions{})
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		require.Contains(t, err.Error(), "content type")
	})

	t.Run("should reject empty and oversized payloads", func(t *testing.T) {
		body := []byte{}
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		}))
		defer server.Close()

		a := acquire.NewAcquirer(&config.AcquireConfig{MaxBytes: 16}, acquire.WithClock(newFakeClock()))

		_, err := a.Download(ctx, server.URL, domain.DownloadOptions{MaxRetries: 1})
		require.ErrorContains(t, err, "empty payload")

		body = bytes.Repeat([]byte("x"), 17)
		_, err = a.Download(ctx, server.URL, domain.DownloadOptions{MaxRetries: 1})
		require.ErrorContains(t, err, "exceeds")
	})

	t.Run("should follow redirects up to the limit", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/image", http.StatusFound)
		})
		mux.HandleFunc("/image", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "image/webp")
			_, _ = w.Write([]byte("webp"))
		})
		mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		a := acquire.NewAcquirer(nil, acquire.WithClock(newFakeClock()))

		result, err := a.Download(ctx, server.URL+"/start", domain.DownloadOptions{})
		require.NoError(t, err)
		require.Equal(t, server.URL+"/image", result.FinalURL)

		_, err = a.Download(ctx, server.URL+"/loop", domain.DownloadOptions{MaxRetries: 1})
		require.ErrorContains(t, err, "too many redirects")
	})

	t.Run("should stop retrying when the context is cancelled", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := acquire.NewAcquirer(nil, acquire.WithClock(newFakeClock())).Download(cancelled, server.URL, domain.DownloadOptions{})
		require.ErrorIs(t, err, domain.ErrDownloadFailed)
		require.ErrorIs(t, err, context.Canceled)
	})
}
