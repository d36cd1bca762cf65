package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mkosuda/spinneret/internal/config"
	"github.com/mkosuda/spinneret/internal/model"
)

// ErrStoreNotFound is returned when opening an existing store that does not
// exist on disk.
var ErrStoreNotFound = errors.New("frontier store not found")

// URLStore is the SQLite-backed durable mirror of the frontier's URL map.
// Every record is one discovered URL keyed by its fingerprint, with a
// visited flag that only ever transitions false -> true.
type URLStore struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// path is the path to the SQLite database file.
	path string
}

// Options configures URLStore behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. WAL improves concurrent read
	// performance while keeping each autocommit statement durable.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions returns options for inspecting an existing store, as the
// status command does. Opening fails if the store file is absent.
func ReadOnlyOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         false,
	}
}

// Open opens or creates a URLStore in the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dir string, opts Options) (*URLStore, error) {
	path := filepath.Join(dir, config.StoreFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, path)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check store path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// modernc.org/sqlite DSN: mode=rw prevents creating new files, mode=rwc
	// allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = path + "?mode=rwc"
	} else {
		dsn = path + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open frontier store: %w", err)
	}

	// SQLite only supports one writer; a single connection also serializes
	// the frontier's write-through ordering.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &URLStore{
		db:   db,
		path: path,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	// Each autocommit statement must reach disk before the call returns;
	// the frontier acknowledges mutations only after the store does.
	if _, err := db.ExecContext(context.Background(), "PRAGMA synchronous=FULL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *URLStore) Close() error {
	return s.db.Close()
}

// Path returns the location of the SQLite file.
func (s *URLStore) Path() string {
	return s.path
}

// createTables creates the store schema if it doesn't exist.
func (s *URLStore) createTables() error {
	schema := `
	-- URL records mirror the frontier's in-memory map for crash recovery
	CREATE TABLE IF NOT EXISTS url_records (
		fingerprint TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		visited INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_url_records_visited ON url_records(visited);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Put inserts a new unvisited URL record. Inserting a fingerprint that
// already exists is a no-op, preserving whatever visited state the existing
// record carries.
func (s *URLStore) Put(ctx context.Context, fingerprint, url string) error {
	query := `
	INSERT INTO url_records (fingerprint, url, visited)
	VALUES (?, ?, 0)
	ON CONFLICT(fingerprint) DO NOTHING
	`

	if _, err := s.db.ExecContext(ctx, query, fingerprint, url); err != nil {
		return fmt.Errorf("failed to put url record: %w", err)
	}

	return nil
}

// MarkVisited sets the visited flag for a fingerprint. The flag never
// transitions back; marking an already-visited record again is harmless.
// Unknown fingerprints are ignored (the frontier logs the inconsistency).
func (s *URLStore) MarkVisited(ctx context.Context, fingerprint string) error {
	query := `UPDATE url_records SET visited = 1 WHERE fingerprint = ?`

	if _, err := s.db.ExecContext(ctx, query, fingerprint); err != nil {
		return fmt.Errorf("failed to mark url visited: %w", err)
	}

	return nil
}

// Get retrieves one record by fingerprint, or nil if absent.
func (s *URLStore) Get(ctx context.Context, fingerprint string) (*model.URLRecord, error) {
	query := `SELECT fingerprint, url, visited FROM url_records WHERE fingerprint = ?`

	var rec model.URLRecord
	var visited int
	err := s.db.QueryRowContext(ctx, query, fingerprint).Scan(&rec.Fingerprint, &rec.URL, &visited)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get url record: %w", err)
	}

	rec.Visited = visited != 0
	return &rec, nil
}

// All streams every record in the store to fn, in fingerprint order for
// deterministic replay. Iteration stops at the first error fn returns.
func (s *URLStore) All(ctx context.Context, fn func(model.URLRecord) error) error {
	query := `SELECT fingerprint, url, visited FROM url_records ORDER BY fingerprint`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to read url records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec model.URLRecord
		var visited int
		if err := rows.Scan(&rec.Fingerprint, &rec.URL, &visited); err != nil {
			return fmt.Errorf("failed to scan url record: %w", err)
		}
		rec.Visited = visited != 0

		if err := fn(rec); err != nil {
			return err
		}
	}

	return rows.Err()
}

// Count returns the total number of URL records.
func (s *URLStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM url_records`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count url records: %w", err)
	}
	return count, nil
}

// CountVisited returns the number of records with the visited flag set.
func (s *URLStore) CountVisited(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM url_records WHERE visited = 1`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visited records: %w", err)
	}
	return count, nil
}
