package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/imgresolve/internal/domain"
)

const (
	imagesDir      = "images"
	metadataDir    = "metadata"
	payloadExt     = ".img"
	sidecarExt     = ".json"
	tempPrefix     = ".tmp-"
	orphanGrace    = time.Minute
	defaultStripes = 64
)

// sidecar is the JSON metadata stored next to each payload.
type sidecar struct {
	CacheKey     string `json:"cacheKey"`
	OriginalURL  string `json:"originalUrl,omitempty"`
	OriginalPath string `json:"originalPath,omitempty"`
	DelegatedURL string `json:"delegatedUrl,omitempty"`
	CachedAt     int64  `json:"cachedAt"`
	Size         int64  `json:"size"`
	Source       string `json:"source"`
	ContentType  string `json:"contentType,omitempty"`
	FetchedAt    int64  `json:"fetchedAt,omitempty"`
}

func (s *sidecar) entry(payload []byte) *domain.CacheEntry {
	var fetchedAt time.Time
	if s.FetchedAt > 0 {
		fetchedAt = time.UnixMilli(s.FetchedAt).UTC()
	}
	return &domain.CacheEntry{
		Key:          s.CacheKey,
		Payload:      payload,
		DelegatedURL: s.DelegatedURL,
		Meta: domain.SourceMeta{
			Origin:       s.Source,
			OriginalURL:  s.OriginalURL,
			OriginalPath: s.OriginalPath,
			ContentType:  s.ContentType,
			FetchedAt:    fetchedAt,
			SizeBytes:    s.Size,
		},
		CachedAt: time.UnixMilli(s.CachedAt).UTC(),
	}
}

// DiskStore persists entries as a payload file plus a JSON sidecar.
// Both files are written to a temp name and renamed into place. The sidecar is
// renamed last, so a payload without a sidecar is never served.
type DiskStore struct {
	root    string
	stripes []sync.Mutex
}

// NewDiskStore creates the directory layout under root.
func NewDiskStore(root string, stripes int) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("cache directory cannot be empty")
	}
	if stripes <= 0 {
		stripes = defaultStripes
	}

	for _, dir := range []string{imagesDir, metadataDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	return &DiskStore{
		root:    root,
		stripes: make([]sync.Mutex, stripes),
	}, nil
}

func (d *DiskStore) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &d.stripes[h.Sum32()%uint32(len(d.stripes))]
	mu.Lock()
	return mu.Unlock
}

func (d *DiskStore) payloadPath(key string) string {
	return filepath.Join(d.root, imagesDir, key+payloadExt)
}

func (d *DiskStore) sidecarPath(key string) string {
	return filepath.Join(d.root, metadataDir, key+sidecarExt)
}

// Write stores the entry atomically.
func (d *DiskStore) Write(entry *domain.CacheEntry) error {
	meta := sidecar{
		CacheKey:     entry.Key,
		OriginalURL:  entry.Meta.OriginalURL,
		OriginalPath: entry.Meta.OriginalPath,
		DelegatedURL: entry.DelegatedURL,
		CachedAt:     entry.CachedAt.UnixMilli(),
		Size:         int64(len(entry.Payload)),
		Source:       entry.Meta.Origin,
		ContentType:  entry.Meta.ContentType,
	}
	if !entry.Meta.FetchedAt.IsZero() {
		meta.FetchedAt = entry.Meta.FetchedAt.UnixMilli()
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}

	unlock := d.lock(entry.Key)
	defer unlock()

	// Drop the old sidecar first so a crash mid-write leaves at worst an orphan payload.
	if err := os.Remove(d.sidecarPath(entry.Key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to replace sidecar: %w", err)
	}

	if len(entry.Payload) > 0 {
		if err := writeAtomic(d.payloadPath(entry.Key), entry.Payload); err != nil {
			return fmt.Errorf("failed to write payload: %w", err)
		}
	} else {
		_ = os.Remove(d.payloadPath(entry.Key))
	}

	if err := writeAtomic(d.sidecarPath(entry.Key), data); err != nil {
		_ = os.Remove(d.payloadPath(entry.Key))
		return fmt.Errorf("failed to write sidecar: %w", err)
	}

	return nil
}

// Read returns the entry, domain.ErrCacheMiss, or domain.ErrCacheCorrupt after
// deleting an unreadable pair.
func (d *DiskStore) Read(key string) (*domain.CacheEntry, error) {
	unlock := d.lock(key)
	defer unlock()

	data, err := os.ReadFile(d.sidecarPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to read sidecar: %w", err)
	}

	var meta sidecar
	if err := json.Unmarshal(data, &meta); err != nil || meta.CacheKey != key {
		d.removeLocked(key)
		return nil, domain.ErrCacheCorrupt
	}

	if meta.DelegatedURL != "" && meta.Size == 0 {
		return meta.entry(nil), nil
	}

	payload, err := os.ReadFile(d.payloadPath(key))
	if err != nil || int64(len(payload)) != meta.Size || meta.Size == 0 {
		d.removeLocked(key)
		return nil, domain.ErrCacheCorrupt
	}

	return meta.entry(payload), nil
}

// Remove deletes both files of an entry.
func (d *DiskStore) Remove(key string) error {
	unlock := d.lock(key)
	defer unlock()
	return d.removeLocked(key)
}

func (d *DiskStore) removeLocked(key string) error {
	var errs []error
	for _, path := range []string{d.sidecarPath(key), d.payloadPath(key)} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// diskItem is a live entry seen by a scan.
type diskItem struct {
	key      string
	cachedAt int64
	size     int64
}

// scanResult is the state of the store at one point in time.
type scanResult struct {
	live     []diskItem
	corrupt  []string
	payloads map[string]time.Time
	temps    map[string]time.Time
}

func (d *DiskStore) scan() (*scanResult, error) {
	result := &scanResult{
		payloads: map[string]time.Time{},
		temps:    map[string]time.Time{},
	}

	metaEntries, err := os.ReadDir(filepath.Join(d.root, metadataDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list metadata: %w", err)
	}

	for _, e := range metaEntries {
		name := e.Name()
		if strings.HasPrefix(name, tempPrefix) {
			if info, infoErr := e.Info(); infoErr == nil {
				result.temps[filepath.Join(d.root, metadataDir, name)] = info.ModTime()
			}
			continue
		}
		if !strings.HasSuffix(name, sidecarExt) {
			continue
		}
		key := strings.TrimSuffix(name, sidecarExt)

		data, readErr := os.ReadFile(filepath.Join(d.root, metadataDir, name))
		if readErr != nil {
			continue
		}
		var meta sidecar
		if jsonErr := json.Unmarshal(data, &meta); jsonErr != nil || meta.CacheKey != key {
			result.corrupt = append(result.corrupt, key)
			continue
		}
		result.live = append(result.live, diskItem{key: key, cachedAt: meta.CachedAt, size: meta.Size})
	}

	payloadEntries, err := os.ReadDir(filepath.Join(d.root, imagesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list payloads: %w", err)
	}

	for _, e := range payloadEntries {
		info, infoErr := e.Info()
		if infoErr != nil {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, tempPrefix) {
			result.temps[filepath.Join(d.root, imagesDir, name)] = info.ModTime()
			continue
		}
		if strings.HasSuffix(name, payloadExt) {
			result.payloads[strings.TrimSuffix(name, payloadExt)] = info.ModTime()
		}
	}

	return result, nil
}

// removeIfUnchanged deletes the entry only if its sidecar still carries cachedAt.
// A concurrent rewrite between scan and delete keeps the fresh entry.
func (d *DiskStore) removeIfUnchanged(key string, cachedAt int64) (bool, error) {
	unlock := d.lock(key)
	defer unlock()

	data, err := os.ReadFile(d.sidecarPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	var meta sidecar
	if jsonErr := json.Unmarshal(data, &meta); jsonErr == nil && meta.CachedAt != cachedAt {
		return false, nil
	}
	return true, d.removeLocked(key)
}

// sweepPlan decides which live entries go: everything older than maxAge, then
// the oldest by cachedAt (ties by key) until the total fits maxSize.
func sweepPlan(live []diskItem, now time.Time, maxAge time.Duration, maxSize int64) (expired, evicted []diskItem, total int64) {
	cutoff := now.Add(-maxAge).UnixMilli()

	kept := make([]diskItem, 0, len(live))
	for _, item := range live {
		if maxAge > 0 && item.cachedAt < cutoff {
			expired = append(expired, item)
			continue
		}
		kept = append(kept, item)
		total += item.size
	}

	if maxSize <= 0 || total <= maxSize {
		return expired, nil, total
	}

	sort.Slice(kept, func(i, j int) bool {
		if kept[i].cachedAt != kept[j].cachedAt {
			return kept[i].cachedAt < kept[j].cachedAt
		}
		return kept[i].key < kept[j].key
	})

	for _, item := range kept {
		if total <= maxSize {
			break
		}
		evicted = append(evicted, item)
		total -= item.size
	}

	return expired, evicted, total
}

// Clear removes every entry and temp file.
func (d *DiskStore) Clear() error {
	for i := range d.stripes {
		d.stripes[i].Lock()
	}
	defer func() {
		for i := range d.stripes {
			d.stripes[i].Unlock()
		}
	}()

	var errs []error
	for _, dir := range []string{imagesDir, metadataDir} {
		path := filepath.Join(d.root, dir)
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, err)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeAtomic(path string, data []byte) error {
	tmp := filepath.Join(filepath.Dir(path), tempPrefix+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func statFile(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
