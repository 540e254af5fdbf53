package backend_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/config"
	"github.com/cory-johannsen/lurefish/internal/storage/backend"
	"github.com/cory-johannsen/lurefish/internal/storage/memory"
	"github.com/cory-johannsen/lurefish/internal/storage/sqlite"
)

func TestOpen_Memory(t *testing.T) {
	s, err := backend.Open(context.Background(), config.StorageConfig{Backend: config.BackendMemory}, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &memory.Store{}, s)
}

func TestOpen_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "saves", "game.db")
	s, err := backend.Open(ctx, config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: path}, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &sqlite.Store{}, s)

	require.NoError(t, s.Set(ctx, "@k", []byte(`1`)))
	v, ok, err := s.Get(ctx, "@k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`1`), v)
}

func TestOpen_PostgresUnreachable(t *testing.T) {
	cfg := config.StorageConfig{
		Backend:   config.BackendPostgres,
		Namespace: "default",
		Database: config.DatabaseConfig{
			Host: "127.0.0.1", Port: 1, User: "u", Name: "db", SSLMode: "disable", MaxConns: 1,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := backend.Open(ctx, cfg, zap.NewNop())
	assert.ErrorContains(t, err, "opening postgres storage")
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := backend.Open(context.Background(), config.StorageConfig{Backend: "floppy"}, zap.NewNop())
	assert.ErrorContains(t, err, `unknown storage backend "floppy"`)
}
