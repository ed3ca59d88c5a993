// Package pathmap repairs local image references that point at missing
// assets. Every decision is memoized in a JSON mapping table so repeated
// lookups are stable across runs.
package pathmap

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/blake3"

	"github.com/davidbz/imgresolve/internal/catalog"
	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/config"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const (
	typeIdentity   = "identity"
	typePattern    = "pattern_match"
	typeSimilarity = "similarity_match"
	typeGenerated  = "intelligent_generation"
	typeCustom     = "custom"
)

var (
	affixPrefix   = regexp.MustCompile(`^(img|image|photo|pic)[-_]`)
	affixSuffix   = regexp.MustCompile(`[-_](img|image|photo|pic)$`)
	separatorRun  = regexp.MustCompile(`[_\s]+`)
	dashRun       = regexp.MustCompile(`-+`)
	imageExts     = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	errEmptyInput = errors.New("path cannot be empty")
)

// Mapper implements domain.PathMapper.
type Mapper struct {
	catalog   *catalog.Catalog
	prober    domain.Prober
	publicDir string
	prefix    string
	tablePath string
	threshold float64
	scorer    Scorer
	clock     clock.Clock
	events    domain.EventPublisher

	mu    sync.Mutex
	table *tableFile
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithScorer replaces the keyword similarity scorer.
func WithScorer(s Scorer) Option {
	return func(m *Mapper) { m.scorer = s }
}

func WithClock(c clock.Clock) Option {
	return func(m *Mapper) { m.clock = c }
}

func WithEvents(p domain.EventPublisher) Option {
	return func(m *Mapper) { m.events = p }
}

// NewMapper creates a mapper over cfg.PublicDir. The prober decides whether a
// referenced asset is usable as is.
func NewMapper(cfg *config.PathsConfig, cat *catalog.Catalog, prober domain.Prober, opts ...Option) *Mapper {
	m := &Mapper{
		catalog:   cat,
		prober:    prober,
		publicDir: cfg.PublicDir,
		prefix:    "/" + strings.Trim(cfg.ImagePrefix, "/"),
		tablePath: cfg.MappingTable,
		threshold: cfg.SimilarityThreshold,
		scorer:    KeywordScorer(cat.ProductKeywords(), cat.FeatureKeywords()),
		clock:     clock.Real(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapPath returns the mapping for originalPath, deriving and persisting it on
// first use. Generated mappings come back together with
// domain.ErrMappingLowConfidence so callers can decide whether to trust them.
func (m *Mapper) MapPath(ctx context.Context, originalPath string) (*domain.PathMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mapping, fresh, err := m.mapLocked(ctx, originalPath)
	if err != nil {
		return nil, err
	}
	if fresh {
		if err := m.saveLocked(); err != nil {
			return nil, err
		}
	}
	return result(mapping)
}

// mapLocked resolves one path against the loaded table. fresh is true when
// the table changed.
func (m *Mapper) mapLocked(ctx context.Context, originalPath string) (*domain.PathMapping, bool, error) {
	originalPath = strings.TrimSpace(originalPath)
	if originalPath == "" {
		return nil, false, errEmptyInput
	}
	if err := m.loadLocked(); err != nil {
		return nil, false, err
	}

	logger := observability.FromContext(ctx)

	if cached, ok := m.table.Mappings[originalPath]; ok && m.stillValid(ctx, cached) {
		logger.Debug("path mapping reused", observability.String("status", string(cached.Status)))
		return cloneMapping(cached), false, nil
	}

	mapping, err := m.derive(ctx, originalPath)
	if err != nil {
		return nil, false, err
	}
	mapping.CreatedAt = m.clock.Now().UTC()
	m.table.Mappings[originalPath] = mapping

	logger.Info("path mapped",
		observability.String("original_path", originalPath),
		observability.String("mapped_path", mapping.MappedPath),
		observability.String("status", string(mapping.Status)))
	m.publish(ctx, mapping)

	return cloneMapping(mapping), true, nil
}

// stillValid keeps memoized decisions unless the asset they point at is gone
// or the asset set they were scored against has changed.
func (m *Mapper) stillValid(ctx context.Context, cached *domain.PathMapping) bool {
	switch cached.Status {
	case domain.MappingExists:
		return m.prober.Probe(ctx, cached.MappedPath).OK
	case domain.MappingSimilar:
	default:
		return true
	}
	assets, err := m.assets()
	if err != nil {
		observability.FromContext(ctx).Warn("asset listing failed", observability.Error(err))
		return true
	}
	return fingerprint(assets) == cached.AssetsFingerprint
}

func (m *Mapper) derive(ctx context.Context, originalPath string) (*domain.PathMapping, error) {
	if m.prober.Probe(ctx, originalPath).OK {
		return &domain.PathMapping{
			OriginalPath: originalPath,
			MappedPath:   originalPath,
			Status:       domain.MappingExists,
			Type:         typeIdentity,
		}, nil
	}

	if mapping := m.byPattern(originalPath); mapping != nil {
		return mapping, nil
	}

	assets, err := m.assets()
	if err != nil {
		return nil, err
	}
	if mapping := m.bySimilarity(originalPath, assets); mapping != nil {
		return mapping, nil
	}

	return m.generate(originalPath), nil
}

func (m *Mapper) byPattern(originalPath string) *domain.PathMapping {
	for _, rule := range m.catalog.Patterns() {
		filename, ok := rule.Match(originalPath)
		if !ok {
			continue
		}
		return &domain.PathMapping{
			OriginalPath: originalPath,
			MappedPath:   path.Join(m.prefix, rule.Directory, filename),
			Status:       domain.MappingPatternMapped,
			Type:         typePattern,
			Pattern:      rule.Name,
			Directory:    rule.Directory,
			Priority:     rule.Priority,
		}
	}
	return nil
}

// bySimilarity picks the best scoring existing asset strictly above the
// threshold. Ties go to the lexically smallest path.
func (m *Mapper) bySimilarity(originalPath string, assets []string) *domain.PathMapping {
	target := path.Base(originalPath)

	var (
		best     string
		bestSim  Similarity
		bestSeen bool
	)
	for _, asset := range assets {
		sim := m.scorer(target, path.Base(asset))
		if sim.Score <= m.threshold {
			continue
		}
		if !bestSeen || sim.Score > bestSim.Score || (sim.Score == bestSim.Score && asset < best) {
			best, bestSim, bestSeen = asset, sim, true
		}
	}
	if !bestSeen {
		return nil
	}

	return &domain.PathMapping{
		OriginalPath:      originalPath,
		MappedPath:        best,
		Status:            domain.MappingSimilar,
		Type:              typeSimilarity,
		Confidence:        bestSim.Score,
		Reasons:           bestSim.Reasons,
		AssetsFingerprint: fingerprint(assets),
	}
}

func (m *Mapper) generate(originalPath string) *domain.PathMapping {
	dir := m.catalog.ClassifyDirectory(originalPath)
	return &domain.PathMapping{
		OriginalPath: originalPath,
		MappedPath:   path.Join(m.prefix, dir, StandardizeFilename(path.Base(originalPath))),
		Status:       domain.MappingGenerated,
		Type:         typeGenerated,
		Directory:    dir,
	}
}

// StandardizeFilename lowercases a filename, drops img/image/photo/pic
// affixes, collapses separators into single hyphens and forces an image extension.
func StandardizeFilename(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if !imageExts[ext] {
		ext = ".jpg"
	}

	base = affixPrefix.ReplaceAllString(base, "")
	base = affixSuffix.ReplaceAllString(base, "")
	base = separatorRun.ReplaceAllString(base, "-")
	base = dashRun.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if base == "" {
		base = "image"
	}
	return base + ext
}

// AddMapping records a custom mapping, replacing any derived one.
func (m *Mapper) AddMapping(ctx context.Context, originalPath, mappedPath string) (*domain.PathMapping, error) {
	if strings.TrimSpace(originalPath) == "" || strings.TrimSpace(mappedPath) == "" {
		return nil, errEmptyInput
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, err
	}

	mapping := &domain.PathMapping{
		OriginalPath: originalPath,
		MappedPath:   mappedPath,
		Status:       domain.MappingCustom,
		Type:         typeCustom,
		CreatedAt:    m.clock.Now().UTC(),
	}
	m.table.Mappings[originalPath] = mapping
	if err := m.saveLocked(); err != nil {
		return nil, err
	}

	m.publish(ctx, mapping)
	return cloneMapping(mapping), nil
}

// Lookup returns a memoized mapping without deriving one.
func (m *Mapper) Lookup(originalPath string) (*domain.PathMapping, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, false, err
	}
	mapping, ok := m.table.Mappings[originalPath]
	return cloneMapping(mapping), ok, nil
}

// Mappings returns every memoized mapping ordered by original path.
func (m *Mapper) Mappings() ([]domain.PathMapping, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]domain.PathMapping, 0, len(m.table.Mappings))
	for _, mapping := range m.table.Mappings {
		out = append(out, *cloneMapping(mapping))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OriginalPath < out[j].OriginalPath })
	return out, nil
}

// assets lists every image under the managed root as a web path, sorted.
func (m *Mapper) assets() ([]string, error) {
	root := filepath.Join(m.publicDir, filepath.FromSlash(strings.TrimPrefix(m.prefix, "/")))

	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) || (d != nil && d.IsDir()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !imageExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		rel, relErr := filepath.Rel(m.publicDir, p)
		if relErr != nil {
			return nil //nolint:nilerr // unreadable entries are skipped
		}
		out = append(out, "/"+filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}

	sort.Strings(out)
	return out, nil
}

func (m *Mapper) loadLocked() error {
	if m.table != nil {
		return nil
	}
	t, err := readTable(m.tablePath)
	if err != nil {
		return err
	}
	m.table = t
	return nil
}

func (m *Mapper) saveLocked() error {
	m.table.Timestamp = m.clock.Now().UTC()
	m.table.Version = tableVersion
	return writeTable(m.tablePath, m.table)
}

func (m *Mapper) publish(ctx context.Context, mapping *domain.PathMapping) {
	if m.events == nil {
		return
	}
	m.events.Publish(ctx, observability.EventPathMapped, map[string]any{
		"original_path": mapping.OriginalPath,
		"mapped_path":   mapping.MappedPath,
		"status":        string(mapping.Status),
		"confidence":    mapping.Confidence,
	})
}

func result(mapping *domain.PathMapping) (*domain.PathMapping, error) {
	if mapping.Status == domain.MappingGenerated {
		return mapping, fmt.Errorf("%w: %s", domain.ErrMappingLowConfidence, mapping.OriginalPath)
	}
	return mapping, nil
}

// fingerprint identifies an asset set independent of listing order.
func fingerprint(assets []string) string {
	h := blake3.New()
	for _, a := range assets {
		_, _ = h.Write([]byte(a))
		_, _ = h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

func cloneMapping(m *domain.PathMapping) *domain.PathMapping {
	if m == nil {
		return nil
	}
	c := *m
	c.Reasons = append([]string(nil), m.Reasons...)
	return &c
}
