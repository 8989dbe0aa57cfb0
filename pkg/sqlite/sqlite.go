// Package sqlite provides a persistent vector storage engine backed by a
// single SQLite database file. Index definitions and documents live in two
// tables; similarity scoring happens in process after a candidate scan, so
// search behaves exactly like the in-memory engine but survives restarts.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/vexdb-io/vexdb/pkg/core"
)

const (
	// Version is the engine version reported by BackendInfo
	Version = "1.0.0"

	backendName = "sqlite"

	// chunkSize bounds the number of ids per IN clause
	chunkSize = 500
)

// Config holds SQLite engine configuration
type Config struct {
	// Path is the database file path. ":memory:" works for tests.
	Path string

	// Logger receives operational logs. Nil means silent.
	Logger core.Logger
}

// DefaultConfig returns a config pointing at the given database file
func DefaultConfig(path string) Config {
	return Config{Path: path}
}

// Store is a SQLite-backed implementation of the storage contract
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	config Config
	logger core.Logger
	closed bool
}

// New opens or creates the database file and prepares the schema
func New(ctx context.Context, config Config) (*Store, error) {
	const op = "open"

	if config.Path == "" {
		return nil, core.WrapError(op, core.InvalidConfigError("database path must not be empty"))
	}
	logger := config.Logger
	if logger == nil {
		logger = core.NopLogger()
	}

	// _journal_mode=WAL: better concurrency
	// _synchronous=NORMAL: good balance of safety and speed
	// _busy_timeout=5000: wait up to 5s for a lock instead of failing
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", config.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, core.WrapError(op, core.OperationFailedError("failed to open database", err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(2 * time.Hour)

	// Foreign keys drive the index -> documents cascade
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		db.Close()
		return nil, core.WrapError(op, core.OperationFailedError("failed to enable foreign keys", err))
	}

	store := &Store{db: db, config: config, logger: logger}
	if err := store.createTables(ctx); err != nil {
		db.Close()
		return nil, core.WrapError(op, err)
	}

	logger.Info("database opened", "path", config.Path)
	return store, nil
}

func (s *Store) createTables(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS indexes (
		name TEXT PRIMARY KEY,
		dimension INTEGER NOT NULL,
		metric TEXT NOT NULL,
		options TEXT,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS documents (
		index_name TEXT NOT NULL,
		id TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		embedding BLOB,
		metadata TEXT,
		PRIMARY KEY (index_name, id),
		FOREIGN KEY (index_name) REFERENCES indexes(name) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_documents_index_name ON documents(index_name);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return core.OperationFailedError("failed to create tables", err)
	}
	return nil
}

// HealthCheck pings the database
func (s *Store) HealthCheck(ctx context.Context) error {
	const op = "healthCheck"

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return core.WrapError(op, errClosed())
	}
	if err := s.db.PingContext(ctx); err != nil {
		return core.WrapError(op, &core.VectorError{
			Code: core.CodeConnectionFailed, Message: "database ping failed", Err: err,
		})
	}
	return nil
}

// BackendInfo describes the engine
func (s *Store) BackendInfo() core.BackendInfo {
	info := core.NewBackendInfo(backendName, Version).
		WithFeature("filtering").
		WithFeature("metadata").
		WithFeature("exact_search").
		WithFeature("persistence")
	info.Metadata = core.Metadata{"path": core.StringValue(s.config.Path)}
	return info
}

// Close closes the database. Subsequent operations fail.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return core.WrapError("close", errClosed())
	}
	s.closed = true
	if err := s.db.Close(); err != nil {
		return core.WrapError("close", core.OperationFailedError("failed to close database", err))
	}
	return nil
}

// guard takes the read lock and rejects operations on a closed store. The
// caller must release the lock.
func (s *Store) guard(op string) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return core.WrapError(op, errClosed())
	}
	return nil
}

func errClosed() error {
	return core.OperationFailedError("store is closed", nil)
}

// Interface check
var _ core.Storage = (*Store)(nil)
