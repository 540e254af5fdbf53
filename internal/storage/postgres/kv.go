package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// KVStore is a storage.Store over the kv table. Keys are scoped to a namespace so
// several profiles can share one database.
type KVStore struct {
	pool      *Pool
	db        *pgxpool.Pool
	namespace string
}

// NewKVStore creates a KVStore that owns pool.
//
// Precondition: pool must be open and migrated; namespace must be non-empty.
func NewKVStore(pool *Pool, namespace string) *KVStore {
	if namespace == "" {
		panic("postgres.NewKVStore: namespace must not be empty")
	}
	return &KVStore{pool: pool, db: pool.DB(), namespace: namespace}
}

// Namespace returns the key scope of the store.
func (s *KVStore) Namespace() string {
	return s.namespace
}

// Get implements storage.Store.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		`SELECT value FROM kv WHERE namespace = $1 AND key = $2`,
		s.namespace, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, true, nil
}

// Set implements storage.Store.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO kv (namespace, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		s.namespace, key, value,
	)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete implements storage.Store in a single statement.
func (s *KVStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`DELETE FROM kv WHERE namespace = $1 AND key = ANY($2)`,
		s.namespace, keys,
	)
	if err != nil {
		return fmt.Errorf("deleting %d keys: %w", len(keys), err)
	}
	return nil
}

// Close implements storage.Store and closes the pool.
func (s *KVStore) Close() error {
	s.pool.Close()
	return nil
}
