package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/loadprogress/internal/config"
)

// Open builds the backend named by cfg.Backend. For postgres, pending
// migrations are applied before the pool is opened.
func Open(ctx context.Context, cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage, data will not survive a restart")
		return NewMemory(), nil
	case config.BackendFile:
		logger.Info("using file storage", "dir", cfg.Path)
		return NewFile(cfg.Path)
	case config.BackendSQLite:
		logger.Info("using sqlite storage", "path", cfg.Path)
		return OpenSQLite(ctx, cfg.Path)
	case config.BackendRedis:
		logger.Info("using redis storage", "prefix", cfg.Redis.Prefix)
		return NewRedis(ctx, cfg.Redis.URL, cfg.Redis.Prefix)
	case config.BackendPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(dsn, cfg.MigrationsPath); err != nil {
			return nil, err
		}
		logger.Info("using postgres storage", "host", cfg.Database.Host, "database", cfg.Database.Name)
		return NewDB(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}
