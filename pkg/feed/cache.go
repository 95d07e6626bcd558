package feed

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// CacheEntry is one cached response body
type CacheEntry struct {
	Body      []byte
	ETag      string
	FetchedAt time.Time
}

// Cache stores feed responses in sqlite, keyed by URL
type Cache struct {
	db  *sql.DB
	now func() time.Time
}

// OpenCache opens (or creates) the cache database at path
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Cache{db: db, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache: %w", err)
	}
	return c, nil
}

// Close closes the database
func (c *Cache) Close() error {
	return c.db.Close()
}

func (c *Cache) migrate() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS responses (
			key        TEXT PRIMARY KEY,
			body       BLOB NOT NULL,
			etag       TEXT NOT NULL DEFAULT '',
			fetched_at INTEGER NOT NULL
		)
	`)
	return err
}

// Get returns the entry for key, or nil when there is none
func (c *Cache) Get(key string) (*CacheEntry, error) {
	var e CacheEntry
	var fetched int64
	err := c.db.QueryRow(`SELECT body, etag, fetched_at FROM responses WHERE key = ?`, key).
		Scan(&e.Body, &e.ETag, &fetched)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	e.FetchedAt = time.Unix(0, fetched)
	return &e, nil
}

// Put stores body for key, stamped with the current time
func (c *Cache) Put(key string, body []byte, etag string) error {
	_, err := c.db.Exec(`
		INSERT INTO responses (key, body, etag, fetched_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET body = excluded.body, etag = excluded.etag, fetched_at = excluded.fetched_at
	`, key, body, etag, c.now().UnixNano())
	if err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Touch marks key as freshly validated
func (c *Cache) Touch(key string) error {
	_, err := c.db.Exec(`UPDATE responses SET fetched_at = ? WHERE key = ?`, c.now().UnixNano(), key)
	if err != nil {
		return fmt.Errorf("touch cache entry: %w", err)
	}
	return nil
}

// SetClock replaces the time source, for tests
func (c *Cache) SetClock(now func() time.Time) {
	c.now = now
}
