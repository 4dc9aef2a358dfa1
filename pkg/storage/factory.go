// Package storage selects and wraps the gateway storage backends.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/storage/memory"
	"github.com/vialabs/message-gateway/pkg/storage/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const postgresDriver = "postgres"

// Factory creates storage instances based on configuration.
type Factory struct{}

// NewStorageFactory creates a new storage factory.
func NewStorageFactory() *Factory {
	return &Factory{}
}

// CreateStorage creates a storage instance based on the provided configuration.
func (f *Factory) CreateStorage(config model.StorageConfig, lggr logger.SugaredLogger) (common.GatewayStorage, error) {
	switch config.StorageType {
	case model.StorageTypeMemory:
		return memory.NewInMemoryStorage(common.NewRealTimeProvider()), nil
	case model.StorageTypePostgreSQL:
		return f.createPostgreSQLStorage(config, lggr)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", config.StorageType)
	}
}

// createPostgreSQLStorage creates a PostgreSQL-backed storage instance.
func (f *Factory) createPostgreSQLStorage(config model.StorageConfig, lggr logger.SugaredLogger) (common.GatewayStorage, error) {
	if config.ConnectionURL == "" {
		return nil, fmt.Errorf("PostgreSQL connection URL is required")
	}

	db, err := sql.Open(postgresDriver, config.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
	if config.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(config.ConnMaxIdleTime)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	// Create sqlx wrapper for sqlutil.DataSource compatibility
	sqlxDB := sqlx.NewDb(db, postgresDriver)

	if err := postgres.RunMigrations(sqlxDB, postgresDriver); err != nil {
		return nil, fmt.Errorf("failed to run PostgreSQL migrations: %w", err)
	}

	return postgres.NewDatabaseStorage(sqlxDB, lggr), nil
}
