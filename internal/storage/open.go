package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// Open returns the backend named by cfg.Driver.
func Open(cfg DatabaseConfig, logger *zap.Logger) (Storage, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		logger.Info("Using in-memory storage")
		return NewMemoryStorage(), nil
	case DriverPostgres:
		logger.Info("Using PostgreSQL storage")
		return NewPostgresStorage(cfg, logger)
	case DriverSQLite:
		logger.Info("Using SQLite storage")
		return NewSQLiteStorage(cfg.SQLitePath, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
