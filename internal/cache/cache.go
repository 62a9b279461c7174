// Package cache is a small content-addressed store for formatter output,
// keyed by a hash of the input source. It lets the CLI skip re-formatting
// files that have not changed since the last run.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS formatted (
	hash       TEXT PRIMARY KEY,
	output     TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Cache is a sqlite-backed formatter cache. Safe for use from a single
// process; the CLI opens one per invocation.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache schema: %w", err)
	}
	return &Cache{db: db}, nil
}

func (c *Cache) Close() error { return c.db.Close() }

func key(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached output for source, if present.
func (c *Cache) Get(source string) (string, bool, error) {
	var out string
	err := c.db.QueryRow(`SELECT output FROM formatted WHERE hash = ?`, key(source)).Scan(&out)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

// Put stores the formatter output for source.
func (c *Cache) Put(source, output string) error {
	_, err := c.db.Exec(
		`INSERT INTO formatted (hash, output, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(hash) DO UPDATE SET output = excluded.output, updated_at = excluded.updated_at`,
		key(source), output, time.Now().Unix(),
	)
	return err
}
