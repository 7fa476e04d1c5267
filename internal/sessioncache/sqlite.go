package sessioncache

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fortuna/apex/internal/timing"
)

// SQLiteCache is the default on-disk cache. One row per SessionKey; a
// re-fetch overwrites the row in a single transaction, so readers see either
// the old blob or the new one, never a partial write.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLite opens or creates the cache database at the given path.
func OpenSQLite(path string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	// WAL keeps concurrent readers unblocked during writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		season       INTEGER NOT NULL,
		round        INTEGER NOT NULL,
		session_type TEXT    NOT NULL,
		blob         BLOB    NOT NULL,
		written_at   TEXT DEFAULT (datetime('now')),
		PRIMARY KEY (season, round, session_type)
	);`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create cache schema: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Close closes the underlying database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Has reports whether an entry exists for the key.
func (c *SQLiteCache) Has(ctx context.Context, key timing.SessionKey) (bool, error) {
	var one int
	err := c.db.QueryRowContext(ctx,
		`SELECT 1 FROM sessions WHERE season = ? AND round = ? AND session_type = ?`,
		key.Season, key.Round, string(key.Type),
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, &StorageError{Op: "has", Key: key, Err: err}
	}
	return true, nil
}

// Read returns the blob for the key, or ErrCacheMiss if absent.
func (c *SQLiteCache) Read(ctx context.Context, key timing.SessionKey) ([]byte, error) {
	var blob []byte
	err := c.db.QueryRowContext(ctx,
		`SELECT blob FROM sessions WHERE season = ? AND round = ? AND session_type = ?`,
		key.Season, key.Round, string(key.Type),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Key: key, Err: err}
	}
	return blob, nil
}

// Write stores the blob for the key, replacing any previous entry atomically.
func (c *SQLiteCache) Write(ctx context.Context, key timing.SessionKey, blob []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (season, round, session_type, blob) VALUES (?, ?, ?, ?)`,
		key.Season, key.Round, string(key.Type), blob,
	)
	if err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}
