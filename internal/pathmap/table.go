package pathmap

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/davidbz/imgresolve/internal/domain"
)

const tableVersion = "1.0"

// SessionStats are the counters persisted alongside the table.
type SessionStats struct {
	PathsAnalyzed int `json:"pathsAnalyzed"`
	PathsMapped   int `json:"pathsMapped"`
	PathsFixed    int `json:"pathsFixed"`
	Errors        int `json:"errors"`
}

// tableFile is the on-disk mapping table document.
type tableFile struct {
	Timestamp time.Time                      `json:"timestamp"`
	Version   string                         `json:"version"`
	Stats     SessionStats                   `json:"stats"`
	Mappings  map[string]*domain.PathMapping `json:"mappings"`
}

func readTable(file string) (*tableFile, error) {
	data, err := os.ReadFile(file)
	if errors.Is(err, fs.ErrNotExist) {
		return &tableFile{Version: tableVersion, Mappings: map[string]*domain.PathMapping{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping table: %w", err)
	}

	var t tableFile
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse mapping table %s: %w", file, err)
	}
	if t.Mappings == nil {
		t.Mappings = map[string]*domain.PathMapping{}
	}
	return &t, nil
}

// writeTable replaces the whole table atomically.
func writeTable(file string, t *tableFile) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping table: %w", err)
	}
	return writeFileAtomic(file, data)
}

func writeFileAtomic(file string, data []byte) error {
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp := filepath.Join(dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, file); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", file, err)
	}
	return nil
}
