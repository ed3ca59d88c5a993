// Package ledger records which articles use which image URLs in a SQLite
// database so duplicate images across articles can be reported and avoided.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/davidbz/imgresolve/internal/clock"
	"github.com/davidbz/imgresolve/internal/domain"
	"github.com/davidbz/imgresolve/internal/observability"
)

const schema = `
CREATE TABLE IF NOT EXISTS image_usage (
	reference TEXT NOT NULL,
	article   TEXT NOT NULL,
	url       TEXT NOT NULL,
	source    TEXT NOT NULL DEFAULT '',
	used_at   INTEGER NOT NULL,
	PRIMARY KEY (reference, article)
);
CREATE INDEX IF NOT EXISTS idx_image_usage_url ON image_usage(url);
`

// Ledger implements domain.UsageLedger.
type Ledger struct {
	db    *sql.DB
	clock clock.Clock
}

// Open creates or opens the ledger database at path.
func Open(ctx context.Context, path string, clk clock.Clock) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("ledger path cannot be empty")
	}
	if clk == nil {
		clk = clock.Real()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(10000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply ledger schema: %w", err)
	}

	observability.FromContext(ctx).Info("usage ledger opened", observability.String("path", path))
	return &Ledger{db: db, clock: clk}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores the URL used by an article for a reference, replacing any
// earlier choice for the same pair.
func (l *Ledger) Record(ctx context.Context, usage domain.Usage) error {
	if usage.Reference == "" || usage.URL == "" {
		return errors.New("usage needs a reference and a url")
	}

	usedAt := usage.UsedAt
	if usedAt.IsZero() {
		usedAt = l.clock.Now()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO image_usage (reference, article, url, source, used_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (reference, article) DO UPDATE SET
			url = excluded.url,
			source = excluded.source,
			used_at = excluded.used_at`,
		usage.Reference, usage.Article, usage.URL, usage.Source, usedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record usage: %w", err)
	}
	return nil
}

// UsedElsewhere reports whether any article other than article already uses url.
func (l *Ledger) UsedElsewhere(ctx context.Context, url, article string) (bool, error) {
	var one int
	err := l.db.QueryRowContext(ctx,
		`SELECT 1 FROM image_usage WHERE url = ? AND article <> ? LIMIT 1`, url, article).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query usage: %w", err)
	}
	return true, nil
}

// Duplicates lists URLs used by more than one article, ordered by URL.
func (l *Ledger) Duplicates(ctx context.Context) ([]domain.DuplicateGroup, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT url, article FROM image_usage
		WHERE url IN (
			SELECT url FROM image_usage GROUP BY url HAVING COUNT(DISTINCT article) > 1
		)
		GROUP BY url, article
		ORDER BY url, article`)
	if err != nil {
		return nil, fmt.Errorf("failed to query duplicates: %w", err)
	}
	defer rows.Close()

	var groups []domain.DuplicateGroup
	for rows.Next() {
		var url, article string
		if err := rows.Scan(&url, &article); err != nil {
			return nil, fmt.Errorf("failed to scan duplicate: %w", err)
		}
		if n := len(groups); n == 0 || groups[n-1].URL != url {
			groups = append(groups, domain.DuplicateGroup{URL: url})
		}
		last := &groups[len(groups)-1]
		last.Articles = append(last.Articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read duplicates: %w", err)
	}
	return groups, nil
}

// Usage returns every recorded usage for an article, newest first.
func (l *Ledger) Usage(ctx context.Context, article string) ([]domain.Usage, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT reference, article, url, source, used_at FROM image_usage
		WHERE article = ? ORDER BY used_at DESC, reference`, article)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage: %w", err)
	}
	defer rows.Close()

	var out []domain.Usage
	for rows.Next() {
		var (
			u      domain.Usage
			usedAt int64
		)
		if err := rows.Scan(&u.Reference, &u.Article, &u.URL, &u.Source, &usedAt); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		u.UsedAt = time.UnixMilli(usedAt).UTC()
		out = append(out, u)
	}
	return out, rows.Err()
}
