package pathmap

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

// Report summarizes a mapping session.
type Report struct {
	Timestamp time.Time            `json:"timestamp"`
	Summary   SessionStats         `json:"summary"`
	ByStatus  map[string]int       `json:"byStatus"`
	ByType    map[string]int       `json:"byType"`
	Mappings  []domain.PathMapping `json:"mappings"`
	Errors    []SessionError       `json:"errors,omitempty"`
}

// SessionError records a reference that could not be mapped.
type SessionError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Fix is one rewrite of a content file.
type Fix struct {
	File         string               `json:"file"`
	OriginalPath string               `json:"originalPath"`
	MappedPath   string               `json:"mappedPath"`
	Status       domain.MappingStatus `json:"status"`
	Type         string               `json:"type"`
}

// MapAll maps every local reference and rewrites the table once at the end.
// Remote URLs and duplicates are ignored. Low confidence mappings are kept;
// other failures are reported without stopping the session.
func (m *Mapper) MapAll(ctx context.Context, refs []string) (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, err
	}

	var (
		stats   SessionStats
		errs    []SessionError
		changed bool
		seen    = map[string]bool{}
	)
	for _, ref := range refs {
		ref = strings.TrimSpace(ref)
		if ref == "" || seen[ref] || !strings.HasPrefix(ref, "/") {
			continue
		}
		seen[ref] = true
		stats.PathsAnalyzed++

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mapping, fresh, err := m.mapLocked(ctx, ref)
		if err != nil {
			errs = append(errs, SessionError{Path: ref, Error: err.Error()})
			continue
		}
		if fresh {
			changed = true
			if mapping.Status != domain.MappingExists {
				stats.PathsMapped++
			}
		}
	}
	stats.Errors = len(errs)

	m.table.Stats = stats
	if changed || stats.PathsAnalyzed > 0 {
		if err := m.saveLocked(); err != nil {
			return nil, err
		}
	}

	return m.reportLocked(stats, errs), nil
}

// Report summarizes the current table without mapping anything.
func (m *Mapper) Report() (*Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	return m.reportLocked(m.table.Stats, nil), nil
}

func (m *Mapper) reportLocked(stats SessionStats, errs []SessionError) *Report {
	r := &Report{
		Timestamp: m.clock.Now().UTC(),
		Summary:   stats,
		ByStatus:  map[string]int{},
		ByType:    map[string]int{},
		Mappings:  make([]domain.PathMapping, 0, len(m.table.Mappings)),
		Errors:    errs,
	}
	for _, mapping := range m.table.Mappings {
		r.ByStatus[string(mapping.Status)]++
		r.ByType[mapping.Type]++
		r.Mappings = append(r.Mappings, *cloneMapping(mapping))
	}
	sort.Slice(r.Mappings, func(i, j int) bool { return r.Mappings[i].OriginalPath < r.Mappings[j].OriginalPath })
	return r
}

// Apply rewrites references in content files to their mapped paths. With
// dryRun the fixes are only reported. Longer original paths are replaced
// first so one mapping never rewrites part of another.
func (m *Mapper) Apply(ctx context.Context, files []string, dryRun bool) ([]Fix, error) {
	m.mu.Lock()
	if err := m.loadLocked(); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	mappings := make([]domain.PathMapping, 0, len(m.table.Mappings))
	for _, mapping := range m.table.Mappings {
		if mapping.MappedPath != mapping.OriginalPath {
			mappings = append(mappings, *cloneMapping(mapping))
		}
	}
	m.mu.Unlock()

	sort.Slice(mappings, func(i, j int) bool {
		if len(mappings[i].OriginalPath) != len(mappings[j].OriginalPath) {
			return len(mappings[i].OriginalPath) > len(mappings[j].OriginalPath)
		}
		return mappings[i].OriginalPath < mappings[j].OriginalPath
	})

	logger := observability.FromContext(ctx)
	var (
		fixes []Fix
		errs  []error
	)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return fixes, err
		}

		fileFixes, err := applyFile(file, mappings, dryRun)
		if err != nil {
			logger.Warn("content rewrite failed", observability.String("file", file), observability.Error(err))
			errs = append(errs, err)
			continue
		}
		fixes = append(fixes, fileFixes...)
	}

	if !dryRun && len(fixes) > 0 {
		m.mu.Lock()
		m.table.Stats.PathsFixed += len(fixes)
		err := m.saveLocked()
		m.mu.Unlock()
		if err != nil {
			errs = append(errs, err)
		}
	}

	logger.Info("path mappings applied",
		observability.Int("fixes", len(fixes)),
		observability.Bool("dry_run", dryRun))

	return fixes, errors.Join(errs...)
}

func applyFile(file string, mappings []domain.PathMapping, dryRun bool) ([]Fix, error) {
	original, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", file, err)
	}

	updated := original
	var fixes []Fix
	for _, mapping := range mappings {
		from := []byte(mapping.OriginalPath)
		if !bytes.Contains(updated, from) {
			continue
		}
		updated = bytes.ReplaceAll(updated, from, []byte(mapping.MappedPath))
		fixes = append(fixes, Fix{
			File:         file,
			OriginalPath: mapping.OriginalPath,
			MappedPath:   mapping.MappedPath,
			Status:       mapping.Status,
			Type:         mapping.Type,
		})
	}

	if dryRun || bytes.Equal(updated, original) {
		return fixes, nil
	}
	if err := writeFileAtomic(file, updated); err != nil {
		return nil, err
	}
	return fixes, nil
}
