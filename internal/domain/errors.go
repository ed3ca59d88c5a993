package domain

import (
	"errors"
	"fmt"
)

// ErrNoImage is the stable signal that a reference could not be resolved.
// Batch callers match it to substitute a placeholder and carry on.
var ErrNoImage = errors.New("no image")

var (
	// ErrSourceUnavailable means no candidate passed validation and rate limits.
	ErrSourceUnavailable = fmt.Errorf("%w: no source available", ErrNoImage)

	// ErrMappingLowConfidence means no existing asset scored above the similarity floor.
	ErrMappingLowConfidence = fmt.Errorf("%w: no mapping above confidence threshold", ErrNoImage)
)

var (
	ErrRateLimited    = errors.New("rate limited")
	ErrCacheMiss      = errors.New("cache miss")
	ErrCacheCorrupt   = errors.New("cache entry corrupt")
	ErrDownloadFailed = errors.New("download failed")
)

// DownloadError is returned once the acquirer has exhausted its attempts.
type DownloadError struct {
	URL        string
	Attempts   int
	StatusCode int
	Reason     string
	Err        error
}

func (e *DownloadError) Error() string {
	msg := fmt.Sprintf("download %s failed after %d attempts: %s", e.URL, e.Attempts, e.Reason)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	return msg
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrDownloadFailed) hold for every DownloadError.
func (e *DownloadError) Is(target error) bool {
	return target == ErrDownloadFailed
}
