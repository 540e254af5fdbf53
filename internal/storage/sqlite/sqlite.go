// Package sqlite provides the local durable storage.Store on the pure-Go
// modernc.org/sqlite driver. Every value is stored next to its BLAKE2b-256 digest;
// a value that no longer matches its digest is reported as storage.ErrCorrupt.
package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/blake2b"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/cory-johannsen/lurefish/internal/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS kv (
	key        TEXT    PRIMARY KEY,
	value      BLOB    NOT NULL,
	checksum   BLOB    NOT NULL,
	updated_at INTEGER NOT NULL
);`

// Store is a storage.Store backed by one SQLite database file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. The special path ":memory:" keeps
// the database in memory.
//
// Postcondition: returns a Store whose kv table exists, or a non-nil error.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// One connection serializes writers and keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating kv table: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Checksum returns the digest stored alongside value.
func Checksum(value []byte) []byte {
	sum := blake2b.Sum256(value)
	return sum[:]
}

// Get implements storage.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value, sum []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value, checksum FROM kv WHERE key = ?`, key,
	).Scan(&value, &sum)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	if !bytes.Equal(Checksum(value), sum) {
		return nil, false, fmt.Errorf("reading %s: %w", key, storage.ErrCorrupt)
	}
	return value, true, nil
}

// Set implements storage.Store.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value, checksum, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, checksum = excluded.checksum, updated_at = excluded.updated_at`,
		key, value, Checksum(value), s.now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete implements storage.Store. All keys are removed in one transaction.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Close()
	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k); err != nil {
			return fmt.Errorf("deleting %s: %w", k, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return s.db.Close()
}
