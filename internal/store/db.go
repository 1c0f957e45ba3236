package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB plus the backend it was opened with.
type DB struct {
	Client *sql.DB

	// Backend is "sqlite" or "postgres".
	Backend string
	// FilePath is the database file for the sqlite backend, empty otherwise.
	FilePath string
}

// NewSQLite opens (creating if needed) a file-backed SQLite database.
func NewSQLite(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent inserts.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &DB{Client: db, Backend: "sqlite", FilePath: path}, nil
}

// NewPostgres creates a Postgres connection with sane defaults.
func NewPostgres(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Client: db, Backend: "postgres"}, nil
}

// Checkpoint folds the WAL sidecar back into the main database file so
// that the file on disk is a complete snapshot on its own. No-op for
// backends without a file.
func (d *DB) Checkpoint(ctx context.Context) error {
	if d.Backend != "sqlite" {
		return nil
	}
	if _, err := d.Client.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
