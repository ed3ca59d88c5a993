// Package acquire downloads image payloads with bounded retries.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultMaxBytes     = 10 * 1024 * 1024
	defaultMaxRedirects = 5
	defaultBackoffBase  = time.Second
)

var errTooManyRedirects = errors.New("too many redirects")

// Acquirer implements domain.Acquirer over net/http.
type Acquirer struct {
	client      *http.Client
	clock       clock.Clock
	timeout     time.Duration
	maxRetries  int
	maxBytes    int64
	backoffBase time.Duration
	userAgent   string
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithClock replaces the clock used for backoff waits.
func WithClock(c clock.Clock) Option {
	return func(a *Acquirer) { a.clock = c }
}

// WithTransport replaces the HTTP transport. The redirect policy is kept.
func WithTransport(rt http.RoundTripper) Option {
	return func(a *Acquirer) { a.client.Transport = rt }
}

// NewAcquirer creates an acquirer from configuration.
func NewAcquirer(cfg *config.AcquireConfig, opts ...Option) *Acquirer {
	maxRedirects := defaultMaxRedirects
	a := &Acquirer{
		clock:       clock.Real(),
		timeout:     defaultTimeout,
		maxRetries:  defaultMaxRetries,
		maxBytes:    defaultMaxBytes,
		backoffBase: defaultBackoffBase,
		userAgent:   "imgresolve/1.0",
	}
	if cfg != nil {
		if cfg.Timeout > 0 {
			a.timeout = cfg.Timeout
		}
		if cfg.MaxRetries > 0 {
			a.maxRetries = cfg.MaxRetries
		}
		if cfg.MaxBytes > 0 {
			a.maxBytes = cfg.MaxBytes
		}
		if cfg.BackoffBase > 0 {
			a.backoffBase = cfg.BackoffBase
		}
		if cfg.MaxRedirects > 0 {
			maxRedirects = cfg.MaxRedirects
		}
		if cfg.UserAgent != "" {
			a.userAgent = cfg.UserAgent
		}
	}

	a.client = &http.Client{
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// attemptError is the outcome of a single failed attempt.
type attemptError struct {
	status int
	reason string
	err    error
}

func (e *attemptError) Error() string {
	if e.err != nil {
		return e.reason + ": " + e.err.Error()
	}
	return e.reason
}

func (e *attemptError) Unwrap() error { return e.err }

// Download fetches url, retrying failed attempts with exponential backoff.
// The wait after attempt n (1-based) is backoffBase * 2^n; there is no wait after the last.
func (a *Acquirer) Download(ctx context.Context, url string, opts domain.DownloadOptions) (*domain.Download, error) {
	if url == "" {
		return nil, errors.New("url cannot be empty")
	}

	timeout := a.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	retries := a.maxRetries
	if opts.MaxRetries > 0 {
		retries = opts.MaxRetries
	}

	logger := observability.FromContext(ctx)

	var last *attemptError
	attempts := 0
	for attempt := 1; attempt <= retries; attempt++ {
		attempts = attempt
		download, err := a.attempt(ctx, url, timeout)
		if err == nil {
			download.Attempts = attempt
			logger.Debug("download succeeded",
				observability.String("url", url),
				observability.Int("attempt", attempt),
				observability.Int("bytes", len(download.Bytes)))
			return download, nil
		}

		last = err
		logger.Warn("download attempt failed",
			observability.String("url", url),
			observability.Int("attempt", attempt),
			observability.Int("max_attempts", retries),
			observability.String("reason", err.Error()))

		if ctx.Err() != nil {
			break
		}
		if attempt == retries {
			break
		}

		wait := a.backoffBase * time.Duration(1<<attempt)
		select {
		case <-ctx.Done():
		case <-a.clock.After(wait):
		}
		if ctx.Err() != nil {
			break
		}
	}

	dlErr := &domain.DownloadError{
		URL:        url,
		Attempts:   attempts,
		StatusCode: last.status,
		Reason:     last.Error(),
		Err:        last.err,
	}
	if ctx.Err() != nil {
		dlErr.Err = ctx.Err()
	}
	return nil, dlErr
}

func (a *Acquirer) attempt(ctx context.Context, url string, timeout time.Duration) (*domain.Download, *attemptError) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &attemptError{reason: "invalid request", err: err}
	}
	req.Header.Set("User-Agent", a.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, &attemptError{reason: "request failed", err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &attemptError{status: resp.StatusCode, reason: "unexpected status " + resp.Status}
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return nil, &attemptError{status: resp.StatusCode, reason: fmt.Sprintf("unexpected content type %q", contentType)}
	}

	if resp.ContentLength > a.maxBytes {
		return nil, &attemptError{status: resp.StatusCode, reason: fmt.Sprintf("payload of %d bytes exceeds limit", resp.ContentLength)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, a.maxBytes+1))
	if err != nil {
		return nil, &attemptError{status: resp.StatusCode, reason: "read failed", err: err}
	}
	if len(body) == 0 {
		return nil, &attemptError{status: resp.StatusCode, reason: "empty payload"}
	}
	if int64(len(body)) > a.maxBytes {
		return nil, &attemptError{status: resp.StatusCode, reason: fmt.Sprintf("payload exceeds %d bytes", a.maxBytes)}
	}

	return &domain.Download{
		Bytes:       body,
		ContentType: contentType,
		FinalURL:    resp.Request.URL.String(),
	}, nil
}
