package sql

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pentesthub/pentest-hub/internal/data/model"
	"github.com/pentesthub/pentest-hub/pkg/types"
)

// DatabaseInitializer opens the database described by a config.
type DatabaseInitializer interface {
	Initialize(ctx context.Context, config *DatabaseConfig, logger types.Logger) (*gorm.DB, error)
}

type connectorFactory func(config *DatabaseConfig) (DBConnector, error)

type defaultDatabaseInitializer struct {
	newConnector connectorFactory
}

func (d *defaultDatabaseInitializer) Initialize(ctx context.Context, config *DatabaseConfig, logger types.Logger) (*gorm.DB, error) {
	connector, err := d.newConnector(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	logger.Info("Connecting to database", zap.String("dbType", config.DBType), zap.String("dbPath", config.DBPath))
	dbConn, err := connector.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return dbConn, nil
}

// gormMigrator is the part of *gorm.DB the migrator needs.
type gormMigrator interface {
	AutoMigrate(dst ...interface{}) error
}

// DatabaseMigrator brings the schema up to date.
type DatabaseMigrator interface {
	Migrate(dbConn gormMigrator) error
}

type autoMigratingMigrator struct{}

func (d *autoMigratingMigrator) Migrate(dbConn gormMigrator) error {
	if err := dbConn.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

type migratingDatabaseInitializer struct {
	initializer DatabaseInitializer
	migrator    DatabaseMigrator
}

// DefaultDatabaseInitializer connects with the connector matching the config and auto-migrates every model.
var DefaultDatabaseInitializer DatabaseInitializer = &migratingDatabaseInitializer{
	initializer: &defaultDatabaseInitializer{newConnector: CreateDBConnector},
	migrator:    &autoMigratingMigrator{},
}

func (d *migratingDatabaseInitializer) Initialize(ctx context.Context, config *DatabaseConfig, logger types.Logger) (*gorm.DB, error) {
	dbConn, err := d.initializer.Initialize(ctx, config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize: %w", err)
	}

	if err := d.migrator.Migrate(dbConn); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return dbConn, nil
}
