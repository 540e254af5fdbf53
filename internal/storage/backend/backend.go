// Package backend opens the configured storage.Store.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/lurefish/internal/config"
	"github.com/cory-johannsen/lurefish/internal/storage"
	"github.com/cory-johannsen/lurefish/internal/storage/memory"
	"github.com/cory-johannsen/lurefish/internal/storage/postgres"
	"github.com/cory-johannsen/lurefish/internal/storage/sqlite"
)

// Open returns the store selected by cfg.Backend. The caller owns the store and
// must Close it.
//
// Postcondition: Returns a ready store or an error naming the backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (storage.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage; progress is lost on exit")
		return memory.New(), nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite storage: %w", err)
		}
		logger.Info("sqlite storage opened", zap.String("path", cfg.SQLitePath))
		return s, nil
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("opening postgres storage: %w", err)
		}
		logger.Info("postgres storage connected",
			zap.String("host", cfg.Database.Host),
			zap.String("namespace", cfg.Namespace),
		)
		return postgres.NewKVStore(pool, cfg.Namespace), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
