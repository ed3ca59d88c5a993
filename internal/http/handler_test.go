package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	apihttp "github.com/davidbz/imgresolve/internal/http"
	"github.com/davidbz/imgresolve/internal/http/middleware"
	"github.com/davidbz/imgresolve/internal/mocks"
	"github.com/davidbz/imgresolve/internal/pathmap"
)

type fakePaths struct {
	mapped   []string
	mappings []domain.PathMapping
}

func (f *fakePaths) MapAll(_ context.Context, refs []string) (*pathmap.Report, error) {
	f.mapped = append(f.mapped, refs...)
	return &pathmap.Report{
		Summary:  pathmap.SessionStats{PathsAnalyzed: len(refs), PathsMapped: len(refs)},
		Mappings: f.mappings,
	}, nil
}

func (f *fakePaths) Mappings() ([]domain.PathMapping, error) {
	return f.mappings, nil
}

type fixture struct {
	cache    *mocks.MockCache
	resolver *mocks.MockSourceResolver
	acquirer *mocks.MockAcquirer
	prober   *mocks.MockProber
	paths    *fakePaths
	router   http.Handler
}

func newFixture(t *testing.T, opts ...domain.ServiceOption) *fixture {
	t.Helper()
	f := &fixture{
		cache:    mocks.NewMockCache(t),
		resolver: mocks.NewMockSourceResolver(t),
		acquirer: mocks.NewMockAcquirer(t),
		prober:   mocks.NewMockProber(t),
		paths:    &fakePaths{},
	}
	svc := domain.NewImageService(f.cache, f.resolver, f.acquirer, f.prober, nil, nil, opts...)
	server := apihttp.NewServer(&config.ServerConfig{Port: 0}, apihttp.NewHandler(svc, f.paths),
		middleware.BuildMiddlewareChain(nil))
	f.router = server.Routes()
	return f
}

func (f *fixture) do(method, target string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHandleResolve(t *testing.T) {
	t.Run("should stream the image with cache headers on a hit", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(&domain.CacheEntry{
			Key:     "abc",
			Payload: []byte("jpeg-bytes"),
			Meta:    domain.SourceMeta{Origin: "curated", ContentType: "image/jpeg", OriginalURL: "https://cdn.example.com/a.jpg"},
		}, nil)

		w := f.do(http.MethodGet, "/v1/images/resolve?ref=sony-a7-iv&w=1200&h=800", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
		require.Equal(t, "hit", w.Header().Get("X-Imgresolve-Cache"))
		require.Equal(t, "curated", w.Header().Get("X-Imgresolve-Source"))
		require.NotEmpty(t, w.Header().Get("X-Request-Id"))
		require.Equal(t, "jpeg-bytes", w.Body.String())
	})

	t.Run("should describe the result as JSON when meta is requested", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(&domain.CacheEntry{
			Key:     "abc",
			Payload: []byte("jpeg-bytes"),
			Meta:    domain.SourceMeta{Origin: "curated", OriginalURL: "https://cdn.example.com/a.jpg"},
		}, nil)

		w := f.do(http.MethodGet, "/v1/images/resolve?ref=sony-a7-iv&meta=true", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var img domain.ResolvedImage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&img))
		require.Equal(t, "https://cdn.example.com/a.jpg", img.URL)
		require.Equal(t, domain.CacheHit, img.CacheStatus)
	})

	t.Run("should return the URL in delegated mode", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		f.cache.EXPECT().Put(mock.Anything, mock.Anything).Return(nil)
		f.resolver.EXPECT().Walk(mock.Anything, mock.Anything, mock.Anything).RunAndReturn(
			func(_ context.Context, _ domain.ImageReference, visit func(domain.Candidate) bool) error {
				visit(domain.Candidate{Source: "fallback", URL: "https://cdn.example.com/camera-2.jpg"})
				return nil
			})

		w := f.do(http.MethodGet, "/v1/images/resolve?ref=camera.jpg&delegate=true", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "miss", w.Header().Get("X-Imgresolve-Cache"))
		var img domain.ResolvedImage
		require.NoError(t, json.NewDecoder(w.Body).Decode(&img))
		require.Equal(t, "https://cdn.example.com/camera-2.jpg", img.URL)
	})

	t.Run("should return 404 when no image exists", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		f.resolver.EXPECT().Walk(mock.Anything, mock.Anything, mock.Anything).Return(domain.ErrSourceUnavailable)

		w := f.do(http.MethodGet, "/v1/images/resolve?ref=nothing", nil)

		require.Equal(t, http.StatusNotFound, w.Code)
		var body map[string]string
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Contains(t, body["error"], "no source available")
	})

	t.Run("should reject a missing reference", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/v1/images/resolve", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject a non numeric width", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/v1/images/resolve?ref=a&w=wide", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleResolveBatch(t *testing.T) {
	t.Run("should return one outcome per reference", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Get(mock.Anything, mock.Anything).Return(nil, domain.ErrCacheMiss)
		f.cache.EXPECT().Put(mock.Anything, mock.Anything).Return(nil)
		f.resolver.EXPECT().Walk(mock.Anything, mock.Anything, mock.Anything).RunAndReturn(
			func(_ context.Context, ref domain.ImageReference, visit func(domain.Candidate) bool) error {
				if ref.Raw() == "missing" {
					return domain.ErrSourceUnavailable
				}
				visit(domain.Candidate{Source: "curated", URL: "https://cdn.example.com/" + ref.Raw()})
				return nil
			})

		delegate := true
		w := f.do(http.MethodPost, "/v1/images/resolve-batch", apihttp.BatchRequest{
			References: []apihttp.ReferenceRequest{
				{Ref: "one.jpg", Article: "post-1"},
				{Ref: "missing"},
			},
			Delegate: &delegate,
		})

		require.Equal(t, http.StatusOK, w.Code)
		var body struct {
			Outcomes []domain.Outcome `json:"outcomes"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Len(t, body.Outcomes, 2)
		require.Equal(t, "https://cdn.example.com/one.jpg", body.Outcomes[0].Image.URL)
		require.Nil(t, body.Outcomes[1].Image)
		require.Contains(t, body.Outcomes[1].Error, "no image")
	})

	t.Run("should reject an empty batch", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodPost, "/v1/images/resolve-batch", apihttp.BatchRequest{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandlePaths(t *testing.T) {
	t.Run("should map references and return the report", func(t *testing.T) {
		f := newFixture(t)
		f.paths.mappings = []domain.PathMapping{{
			OriginalPath: "/images/old.jpg",
			MappedPath:   "/images/products/old.jpg",
			Status:       domain.MappingPatternMapped,
		}}

		w := f.do(http.MethodPost, "/v1/paths/map", apihttp.MapRequest{References: []string{"/images/old.jpg"}})

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, []string{"/images/old.jpg"}, f.paths.mapped)
		var report pathmap.Report
		require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
		require.Equal(t, 1, report.Summary.PathsMapped)
	})

	t.Run("should list persisted mappings", func(t *testing.T) {
		f := newFixture(t)
		f.paths.mappings = []domain.PathMapping{{OriginalPath: "/images/a.jpg", MappedPath: "/images/b.jpg"}}

		w := f.do(http.MethodGet, "/v1/paths/mappings", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.Contains(t, w.Body.String(), "/images/b.jpg")
	})
}

func TestHandleOperations(t *testing.T) {
	t.Run("should report stats with a human readable size", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Stats(mock.Anything).Return(domain.CacheStats{DiskBytes: 2 * 1024 * 1024})

		w := f.do(http.MethodGet, "/v1/stats", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]any
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		require.Equal(t, "2.0 MiB", body["cacheSize"])
	})

	t.Run("should run a sweep", func(t *testing.T) {
		f := newFixture(t)
		f.cache.EXPECT().Sweep(mock.Anything).Return(domain.SweepReport{Expired: 2, Evicted: 1}, nil)

		w := f.do(http.MethodPost, "/v1/cache/sweep", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var report domain.SweepReport
		require.NoError(t, json.NewDecoder(w.Body).Decode(&report))
		require.Equal(t, 2, report.Expired)
	})

	t.Run("should list duplicates", func(t *testing.T) {
		ledger := mocks.NewMockUsageLedger(t)
		ledger.EXPECT().Duplicates(mock.Anything).Return(nil, nil)
		f := newFixture(t, domain.WithLedger(ledger))

		w := f.do(http.MethodGet, "/v1/duplicates", nil)

		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"duplicates":[]}`, w.Body.String())
	})

	t.Run("should report duplicates as unavailable without a ledger", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/v1/duplicates", nil)
		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("should answer health checks", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/health", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
	})
}
