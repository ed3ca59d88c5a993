// Package validate probes remote URLs and local files to decide whether they
// hold a usable image, without downloading whole payloads.
package validate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder for DecodeConfig
	_ "image/jpeg" // register decoder for DecodeConfig
	_ "image/png"  // register decoder for DecodeConfig
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "golang.org/x/image/bmp"  // register decoder for DecodeConfig
	_ "golang.org/x/image/tiff" // register decoder for DecodeConfig
	_ "golang.org/x/image/webp" // register decoder for DecodeConfig

	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	defaultTimeout       = 5 * time.Second
	defaultMinLocalBytes = 5 * 1024
	defaultSniffBytes    = 200
)

//nolint:gochecknoglobals // read-only marker list
var placeholderMarkers = [][]byte{
	[]byte("<!doctype"),
	[]byte("<html"),
	[]byte("# placeholder"),
}

// Validator implements domain.Prober.
type Validator struct {
	client        *http.Client
	timeout       time.Duration
	minLocalBytes int64
	sniffBytes    int
	localRoot     string
}

// Option configures a Validator.
type Option func(*Validator)

// WithHTTPClient replaces the HTTP client used for remote probes.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Validator) { v.client = client }
}

// WithLocalRoot resolves rooted references such as /images/a.jpg under dir.
func WithLocalRoot(dir string) Option {
	return func(v *Validator) { v.localRoot = dir }
}

// NewValidator creates a validator from configuration.
func NewValidator(cfg *config.ValidateConfig, opts ...Option) *Validator {
	v := &Validator{
		client:        &http.Client{},
		timeout:       defaultTimeout,
		minLocalBytes: defaultMinLocalBytes,
		sniffBytes:    defaultSniffBytes,
	}
	if cfg != nil {
		if cfg.Timeout > 0 {
			v.timeout = cfg.Timeout
		}
		if cfg.MinLocalBytes > 0 {
			v.minLocalBytes = cfg.MinLocalBytes
		}
		if cfg.SniffBytes > 0 {
			v.sniffBytes = cfg.SniffBytes
		}
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Probe checks a URL or local path. Failures are reported in the result, never returned.
func (v *Validator) Probe(ctx context.Context, target string) domain.ValidationResult {
	lower := strings.ToLower(target)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return v.probeRemote(ctx, target)
	}
	local, ok := v.LocalPath(target)
	if !ok {
		return domain.ValidationResult{Reason: domain.ReasonMissing, Detail: "outside the local root"}
	}
	return v.probeLocal(ctx, local)
}

// LocalPath maps a reference to the filesystem path the validator reads.
// Rooted references that climb out of the local root are refused.
func (v *Validator) LocalPath(target string) (string, bool) {
	if v.localRoot == "" || !strings.HasPrefix(target, "/") {
		return filepath.FromSlash(target), true
	}
	root := filepath.Clean(v.localRoot)
	joined := filepath.Join(root, filepath.FromSlash(target))
	rel, err := filepath.Rel(root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return joined, true
}

func (v *Validator) probeRemote(ctx context.Context, target string) domain.ValidationResult {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	resp, err := v.do(ctx, http.MethodHead, target)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = v.do(ctx, http.MethodGet, target)
	}
	if err != nil {
		observability.FromContext(ctx).Debug("probe unreachable",
			observability.String("url", target),
			observability.Error(err))
		return domain.ValidationResult{Reason: domain.ReasonUnreachable, Detail: err.Error()}
	}
	defer resp.Body.Close()

	result := domain.ValidationResult{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		result.Reason = domain.ReasonHTTPStatus
		result.Detail = resp.Status
		return result
	}

	if !strings.HasPrefix(strings.ToLower(result.ContentType), "image/") {
		result.Reason = domain.ReasonWrongType
		result.Detail = fmt.Sprintf("content type %q", result.ContentType)
		return result
	}

	result.OK = true
	return result
}

func (v *Validator) do(ctx context.Context, method, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func (v *Validator) probeLocal(ctx context.Context, path string) domain.ValidationResult {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ValidationResult{Reason: domain.ReasonMissing}
		}
		return domain.ValidationResult{Reason: domain.ReasonMissing, Detail: err.Error()}
	}
	if info.IsDir() {
		return domain.ValidationResult{Reason: domain.ReasonWrongType, Detail: "is a directory"}
	}

	result := domain.ValidationResult{Size: info.Size()}
	if info.Size() < v.minLocalBytes {
		result.Reason = domain.ReasonTooSmall
		result.Detail = fmt.Sprintf("%d bytes", info.Size())
		return result
	}

	f, err := os.Open(path)
	if err != nil {
		result.Reason = domain.ReasonMissing
		result.Detail = err.Error()
		return result
	}
	defer f.Close()

	head := make([]byte, v.sniffBytes)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		result.Reason = domain.ReasonMissing
		result.Detail = err.Error()
		return result
	}
	head = head[:n]

	lowered := bytes.ToLower(head)
	for _, marker := range placeholderMarkers {
		if bytes.Contains(lowered, marker) {
			result.Reason = domain.ReasonTextPlaceholder
			result.Detail = string(marker)
			return result
		}
	}

	result.ContentType = http.DetectContentType(head)
	if strings.HasPrefix(result.ContentType, "text/") {
		result.Reason = domain.ReasonWrongType
		result.Detail = result.ContentType
		return result
	}

	if _, err := f.Seek(0, io.SeekStart); err == nil {
		if cfg, format, decodeErr := image.DecodeConfig(f); decodeErr == nil {
			result.Width = cfg.Width
			result.Height = cfg.Height
			if !strings.HasPrefix(result.ContentType, "image/") {
				result.ContentType = "image/" + format
			}
		} else {
			observability.FromContext(ctx).Debug("image header not decodable",
				observability.String("path", path),
				observability.Error(decodeErr))
		}
	}

	result.OK = true
	return result
}
