package validate_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/validate"
)

// noisyPNG encodes a PNG large enough to pass the minimum-size check.
func noisyPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(rng.IntN(256)), G: uint8(rng.IntN(256)), B: uint8(rng.IntN(256)), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidatorRemote(t *testing.T) {
	ctx := context.Background()

	t.Run("should accept 2xx image responses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodHead, r.Method)
			w.Header().Set("Content-Type", "image/jpeg")
		}))
		defer server.Close()

		result := validate.NewValidator(nil).Probe(ctx, server.URL+"/a.jpg")
		require.True(t, result.OK)
		require.Equal(t, http.StatusOK, result.StatusCode)
	})

	t.Run("should fall back to GET when HEAD is unsupported", func(t *testing.T) {
		var methods []string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			methods = append(methods, r.Method)
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89})
		}))
		defer server.Close()

		result := validate.NewValidator(nil).Probe(ctx, server.URL)
		require.True(t, result.OK)
		require.Equal(t, []string{http.MethodHead, http.MethodGet}, methods)
	})

	t.Run("should reject non-image content types", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
		}))
		defer server.Close()

		result := validate.NewValidator(nil).Probe(ctx, server.URL)
		require.False(t, result.OK)
		require.Equal(t, domain.ReasonWrongType, result.Reason)
	})

	t.Run("should reject error statuses", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		result := validate.NewValidator(nil).Probe(ctx, server.URL)
		require.False(t, result.OK)
		require.Equal(t, domain.ReasonHTTPStatus, result.Reason)
		require.Equal(t, http.StatusNotFound, result.StatusCode)
	})

	t.Run("should report timeouts instead of failing", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
		}))
		defer server.Close()

		v := validate.NewValidator(&config.ValidateConfig{Timeout: 20 * time.Millisecond})
		result := v.Probe(ctx, server.URL)
		require.False(t, result.OK)
		require.Equal(t, domain.ReasonUnreachable, result.Reason)
	})
}

func TestValidatorLocal(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	write := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
		return path
	}

	v := validate.NewValidator(nil, validate.WithLocalRoot(dir))

	t.Run("should accept real images and read their dimensions", func(t *testing.T) {
		write("images/ok.png", noisyPNG(t, 64, 48))

		result := v.Probe(ctx, "/images/ok.png")
		require.True(t, result.OK, result.Detail)
		require.Equal(t, 64, result.Width)
		require.Equal(t, 48, result.Height)
		require.Equal(t, "image/png", result.ContentType)
	})

	t.Run("should report missing files", func(t *testing.T) {
		result := v.Probe(ctx, "/images/none.jpg")
		require.Equal(t, domain.ReasonMissing, result.Reason)
	})

	t.Run("should reject near-empty files", func(t *testing.T) {
		write("images/tiny.jpg", []byte{0xff, 0xd8, 0xff})
		result := v.Probe(ctx, "/images/tiny.jpg")
		require.Equal(t, domain.ReasonTooSmall, result.Reason)
	})

	t.Run("should reject html masquerading as an image", func(t *testing.T) {
		body := append([]byte("<!DOCTYPE html><html><body>404</body></html>"), bytes.Repeat([]byte(" "), 6000)...)
		write("images/fake.jpg", body)

		result := v.Probe(ctx, "/images/fake.jpg")
		require.Equal(t, domain.ReasonTextPlaceholder, result.Reason)
	})

	t.Run("should reject placeholder markdown", func(t *testing.T) {
		body := append([]byte("# Placeholder image\n"), bytes.Repeat([]byte("x"), 6000)...)
		write("images/placeholder.jpg", body)

		result := v.Probe(ctx, "/images/placeholder.jpg")
		require.Equal(t, domain.ReasonTextPlaceholder, result.Reason)
	})

	t.Run("should reject other text files", func(t *testing.T) {
		write("images/notes.jpg", bytes.Repeat([]byte("plain text "), 600))

		result := v.Probe(ctx, "/images/notes.jpg")
		require.Equal(t, domain.ReasonWrongType, result.Reason)
	})
}

func TestValidatorLocalRoot(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	root := filepath.Join(base, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "secret.png"), noisyPNG(t, 64, 48), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "images", "ok.png"), noisyPNG(t, 64, 48), 0o644))

	v := validate.NewValidator(nil, validate.WithLocalRoot(root))

	t.Run("should refuse references that climb out of the root", func(t *testing.T) {
		for _, target := range []string{"/../secret.png", "/images/../../secret.png", "/../../../etc/passwd"} {
			result := v.Probe(ctx, target)
			require.False(t, result.OK, target)
			require.Equal(t, domain.ReasonMissing, result.Reason, target)
			require.Zero(t, result.Size, target)

			_, ok := v.LocalPath(target)
			require.False(t, ok, target)
		}
	})

	t.Run("should accept references that stay inside the root", func(t *testing.T) {
		result := v.Probe(ctx, "/images/../images/ok.png")
		require.True(t, result.OK, result.Detail)

		local, ok := v.LocalPath("/images/ok.png")
		require.True(t, ok)
		require.Equal(t, filepath.Join(root, "images", "ok.png"), local)
	})
}
