package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
	"github.com/davidbz/imgresolve/internal/pathmap"
)

const maxBatchSize = 500

// PathMappings is the mapping session surface the API exposes.
type PathMappings interface {
	MapAll(ctx context.Context, refs []string) (*pathmap.Report, error)
	Mappings() ([]domain.PathMapping, error)
}

// Handler handles HTTP requests.
type Handler struct {
	images *domain.ImageService
	paths  PathMappings
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(images *domain.ImageService, paths PathMappings) *Handler {
	return &Handler{
		images: images,
		paths:  paths,
	}
}

// ReferenceRequest describes one image in a batch request.
type ReferenceRequest struct {
	Ref      string `json:"ref"`
	Query    string `json:"query,omitempty"`
	Category string `json:"category,omitempty"`
	Article  string `json:"article,omitempty"`
	domain.Variant
}

// BatchRequest is the body of POST /v1/images/resolve-batch.
type BatchRequest struct {
	References      []ReferenceRequest `json:"references"`
	Delegate        *bool              `json:"delegate,omitempty"`
	AvoidDuplicates *bool              `json:"avoidDuplicates,omitempty"`
}

// MapRequest is the body of POST /v1/paths/map.
type MapRequest struct {
	References []string `json:"references"`
}

// HandleResolve resolves a single reference. Payloads are streamed as the
// image itself; delegated and local results are described as JSON.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	variant, err := parseVariant(q.Get("w"), q.Get("h"))
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}
	variant.Quality = domain.QualityTier(q.Get("quality"))
	variant.Format = q.Get("format")

	ref, err := domain.NewReference(q.Get("ref"), variant,
		domain.WithSearchQuery(q.Get("query")),
		domain.WithCategory(q.Get("category")),
		domain.WithArticle(q.Get("article")),
	)
	if err != nil {
		writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	opts := h.images.Defaults()
	if v := q.Get("delegate"); v != "" {
		opts.DelegateURL, _ = strconv.ParseBool(v)
	}
	if v := q.Get("avoidDuplicates"); v != "" {
		opts.AvoidDuplicates, _ = strconv.ParseBool(v)
	}

	img, err := h.images.Resolve(ctx, ref, opts)
	if img == nil {
		writeError(ctx, w, statusFor(err), err)
		return
	}

	setResultHeaders(w, img)
	if err != nil {
		// Generated mapping: usable but unverified.
		w.Header().Set("X-Imgresolve-Mapping", "low-confidence")
	}

	if len(img.Bytes) > 0 && q.Get("meta") != "true" {
		contentType := img.Meta.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(img.Bytes)
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(img.Bytes)))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(img.Bytes); err != nil {
			observability.FromContext(ctx).Warn("failed to write image", observability.Error(err))
		}
		return
	}

	writeJSON(ctx, w, http.StatusOK, img)
}

// HandleResolveBatch resolves many references. Individual failures are
// reported per outcome and never fail the request.
func (h *Handler) HandleResolveBatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.References) == 0 {
		writeError(ctx, w, http.StatusBadRequest, errors.New("references cannot be empty"))
		return
	}
	if len(req.References) > maxBatchSize {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("at most %d references per batch", maxBatchSize))
		return
	}

	refs := make([]domain.ImageReference, 0, len(req.References))
	for i, rr := range req.References {
		ref, err := domain.NewReference(rr.Ref, rr.Variant,
			domain.WithSearchQuery(rr.Query),
			domain.WithCategory(rr.Category),
			domain.WithArticle(rr.Article),
		)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("reference %d: %w", i, err))
			return
		}
		refs = append(refs, ref)
	}

	opts := h.images.Defaults()
	if req.Delegate != nil {
		opts.DelegateURL = *req.Delegate
	}
	if req.AvoidDuplicates != nil {
		opts.AvoidDuplicates = *req.AvoidDuplicates
	}

	outcomes := h.images.ResolveAll(ctx, refs, opts)
	writeJSON(ctx, w, http.StatusOK, map[string]any{"outcomes": outcomes})
}

// HandleMapPaths maps a list of local references and returns the session report.
func (h *Handler) HandleMapPaths(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req MapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if len(req.References) == 0 {
		writeError(ctx, w, http.StatusBadRequest, errors.New("references cannot be empty"))
		return
	}

	report, err := h.paths.MapAll(ctx, req.References)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// HandleMappings lists the persisted mapping table.
func (h *Handler) HandleMappings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	mappings, err := h.paths.Mappings()
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"mappings": mappings})
}

// HandleStats returns pipeline counters with a human-readable cache size.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := h.images.Stats(ctx)

	writeJSON(ctx, w, http.StatusOK, struct {
		domain.Stats
		CacheSize string `json:"cacheSize"`
	}{
		Stats:     stats,
		CacheSize: humanize.IBytes(uint64(max(stats.CacheSizeBytes, 0))),
	})
}

// HandleDuplicates lists URLs shared by more than one article.
func (h *Handler) HandleDuplicates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.images.Duplicates(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusServiceUnavailable, err)
		return
	}
	if groups == nil {
		groups = []domain.DuplicateGroup{}
	}
	writeJSON(ctx, w, http.StatusOK, map[string]any{"duplicates": groups})
}

// HandleSweep runs one cache maintenance pass.
func (h *Handler) HandleSweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	report, err := h.images.Sweep(ctx)
	if err != nil {
		writeError(ctx, w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, report)
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func setResultHeaders(w http.ResponseWriter, img *domain.ResolvedImage) {
	w.Header().Set("X-Imgresolve-Cache", string(img.CacheStatus))
	w.Header().Set("X-Imgresolve-Source", img.Source)
	if img.Key != "" {
		w.Header().Set("ETag", strconv.Quote(img.Key))
	}
}

func parseVariant(width, height string) (domain.Variant, error) {
	var v domain.Variant
	var err error
	if width != "" {
		if v.Width, err = strconv.Atoi(width); err != nil {
			return v, fmt.Errorf("invalid width %q", width)
		}
	}
	if height != "" {
		if v.Height, err = strconv.Atoi(height); err != nil {
			return v, fmt.Errorf("invalid height %q", height)
		}
	}
	return v, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, domain.ErrNoImage):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Status is already written.
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	logger := observability.FromContext(ctx)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", observability.Error(err))
	} else {
		logger.Info("request rejected", observability.Int("status", status), observability.Error(err))
	}
	writeJSON(ctx, w, status, map[string]string{"error": err.Error()})
}
