// Package db holds the sqlite-backed checksum cache. Computing a CRC32 means
// reading the whole plugin file, so results are cached keyed by location and
// modification time.
package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

var defaultDB *sql.DB

const (
	createTableSQL = `
CREATE TABLE IF NOT EXISTS file_crc_cache_tab (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	location VARCHAR(1024) NOT NULL,
	file_modtime BIGINT NOT NULL,
	crc INTEGER NOT NULL,
	create_time BIGINT NOT NULL
);`

	createIndexSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_file_crc_cache_tab_location
ON file_crc_cache_tab(location);`
)

// Open opens (creating if needed) the cache database at path and initialises
// its schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open cache db %s: %w", path, err)
	}
	if err := EnsureSchema(ctx, handle); err != nil {
		handle.Close()
		return nil, fmt.Errorf("init cache db %s: %w", path, err)
	}
	return handle, nil
}

// SetDefault assigns the global database instance.
func SetDefault(db *sql.DB) {
	defaultDB = db
}

// Default returns the configured global database instance, nil when caching
// is disabled.
func Default() *sql.DB {
	return defaultDB
}

// EnsureSchema initialises required tables and indexes.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, createIndexSQL); err != nil {
		return err
	}
	return nil
}
