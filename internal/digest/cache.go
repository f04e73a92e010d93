// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package digest

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meshintel/collabrank/pkg/types"
)

const (
	cacheFile = "digests.db"

	// DefaultFreshness is how long a cached digest set is served before
	// the profile is re-fetched.
	DefaultFreshness = 168 * time.Hour
)

// Cache persists digest sets per profile identifier in SQLite. Entries
// replace each other atomically; a crash mid-write leaves the previous
// entry intact.
type Cache struct {
	db        *sql.DB
	freshness time.Duration
	now       func() time.Time
}

// OpenCache opens (creating if needed) the digest cache under dir. A
// non-positive freshness falls back to DefaultFreshness.
func OpenCache(dir string, freshness time.Duration) (*Cache, error) {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, cacheFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS digest_cache (
		bai TEXT PRIMARY KEY,
		fetched_at TEXT NOT NULL,
		digests TEXT NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}

	return &Cache{db: db, freshness: freshness, now: time.Now}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached digest set for the identifier. The second return
// is false when the entry is missing or older than the freshness window.
func (c *Cache) Get(bai string) ([]types.PaperDigest, bool, error) {
	var fetchedAt, payload string
	err := c.db.QueryRow(
		`SELECT fetched_at, digests FROM digest_cache WHERE bai = ?`, bai,
	).Scan(&fetchedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry for %s: %w", bai, err)
	}

	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || c.now().Sub(t) > c.freshness {
		return nil, false, nil
	}

	var ds []types.PaperDigest
	if err := json.Unmarshal([]byte(payload), &ds); err != nil {
		// A corrupt entry is treated as a miss; the next Put repairs it.
		return nil, false, nil
	}
	return ds, true, nil
}

// Put stores the digest set for the identifier, replacing any previous
// entry in a single statement.
func (c *Cache) Put(bai string, digests []types.PaperDigest) error {
	payload, err := json.Marshal(digests)
	if err != nil {
		return fmt.Errorf("encoding digests for %s: %w", bai, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO digest_cache (bai, fetched_at, digests) VALUES (?, ?, ?)
		 ON CONFLICT(bai) DO UPDATE SET fetched_at=excluded.fetched_at, digests=excluded.digests`,
		bai, c.now().UTC().Format(time.RFC3339), string(payload),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry for %s: %w", bai, err)
	}
	return nil
}
