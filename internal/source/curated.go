package source

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

// CuratedCheck is the probe result of one curated entry.
type CuratedCheck struct {
	Key      string   `json:"key"`
	ValidURL string   `json:"validUrl,omitempty"`
	Rejected []string `json:"rejected,omitempty"`
}

// Valid reports whether any URL of the entry passed.
func (c CuratedCheck) Valid() bool { return c.ValidURL != "" }

// CuratedReport groups curated keys by outcome.
type CuratedReport struct {
	Valid   []string       `json:"valid"`
	Invalid []string       `json:"invalid"`
	Checks  []CuratedCheck `json:"checks"`
}

// ValidateCurated probes every curated entry, primary first and then its
// fallbacks, stopping at the first URL that passes. Entries are checked in
// parallel, at most concurrency at a time.
func ValidateCurated(ctx context.Context, cat *catalog.Catalog, prober domain.Prober, concurrency int) (CuratedReport, error) {
	entries := cat.Curated()
	checks := make([]CuratedCheck, len(entries))

	var mu sync.Mutex
	report := CuratedReport{Valid: []string{}, Invalid: []string{}}

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, entry := range entries {
		g.Go(func() error {
			check := CuratedCheck{Key: entry.Key}
			for _, u := range entry.URLs() {
				if err := gctx.Err(); err != nil {
					return err
				}
				if result := prober.Probe(gctx, u); result.OK {
					check.ValidURL = u
					break
				}
				check.Rejected = append(check.Rejected, u)
			}
			checks[i] = check

			mu.Lock()
			defer mu.Unlock()
			if check.Valid() {
				report.Valid = append(report.Valid, entry.Key)
			} else {
				report.Invalid = append(report.Invalid, entry.Key)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CuratedReport{}, err
	}

	sort.Strings(report.Valid)
	sort.Strings(report.Invalid)
	report.Checks = checks

	observability.FromContext(ctx).Info("curated table validated",
		observability.Int("valid", len(report.Valid)),
		observability.Int("invalid", len(report.Invalid)))
	return report, nil
}
