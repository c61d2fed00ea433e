// Package sqlite provides the SQLite-backed implementation of every storage
// interface. Session tables carry an expires_at column: expired rows are
// invisible to reads and swept opportunistically on writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/zkgames/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/zkgames/internal/storage/sqlite/migrations"
)

// Store is a SQLite-backed store implementing all storage interfaces.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Option configures store behavior.
type Option func(*Store)

// WithNow overrides the clock used for expiry decisions. Tests use a
// frozen or stepping clock.
func WithNow(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open opens a SQLite store at the provided path and applies embedded
// migrations before the store is handed to higher layers.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return store, nil
}

// Close closes the underlying SQLite database. Nil-safe so callers can
// defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) nowMillis() int64 {
	return s.now().UTC().UnixMilli()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	value := strings.ToLower(err.Error())
	return strings.Contains(value, "unique constraint") || strings.Contains(value, "constraint failed")
}
