package sql

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database types.
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeCloudSQL = "cloudsql"
)

// DatabaseConfig holds everything needed to open the database.
type DatabaseConfig struct {
	DBType                   string
	DBPath                   string
	DBHost                   string
	DBPort                   string
	DBUser                   string
	DBPassword               string
	DBName                   string
	DBSSLMode                string
	DBInstanceConnectionName string
	// DBLogLevel is the gorm log level: silent, error, warn or info.
	DBLogLevel string
}

// DBConnector is an interface for database connections.
type DBConnector interface {
	Connect(ctx context.Context) (*gorm.DB, error)
}

// gormConfig returns the gorm configuration shared by all connectors.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func gormConfig(level string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(gormLogLevel(level)),
		TranslateError: true,
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "info":
		return logger.Info
	case "warn":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Silent
	}
}

// SQLiteConnector implements DBConnector for SQLite connections.
type SQLiteConnector struct {
	dbPath   string
	logLevel string
}

// Connect connects to the SQLite database, creating its directory if needed.
func (c *SQLiteConnector) Connect(_ context.Context) (*gorm.DB, error) {
	if dir := filepath.Dir(c.dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create directory for database: %w", err)
		}
	}
	database, err := gorm.Open(sqlite.Open(c.dbPath), gormConfig(c.logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	return database, nil
}

// StandardDBConnector implements DBConnector for plain Postgres connections.
type StandardDBConnector struct {
	host     string
	port     string
	user     string
	password string
	dbname   string
	sslMode  string
	logLevel string
}

// Connect connects to the Postgres database.
func (c *StandardDBConnector) Connect(_ context.Context) (*gorm.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=%s",
		c.host, c.port, c.user, c.dbname, c.password, c.sslMode,
	)
	database, err := gorm.Open(postgres.Open(connStr), gormConfig(c.logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// CloudSQLConnector implements DBConnector for Cloud SQL connections.
type CloudSQLConnector struct {
	instanceConnectionName string
	user                   string
	password               string
	dbname                 string
	logLevel               string
}

// Connect connects to the database using the Cloud SQL connection.
func (c *CloudSQLConnector) Connect(ctx context.Context) (*gorm.DB, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		// Fallback to using password if IAMAuthN fails
		dialer, err = cloudsqlconn.NewDialer(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create dialer: %w", err)
		}
	}

	config, err := pgx.ParseConfig(fmt.Sprintf("user=%s password=%s dbname=%s sslmode=disable",
		c.user, c.password, c.dbname))
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	config.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := dialer.Dial(ctx, c.instanceConnectionName)
		if err != nil {
			return nil, fmt.Errorf("failed to dial Cloud SQL instance: %w", err)
		}
		return conn, nil
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDB(*config),
	}), gormConfig(c.logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gorm with pgx connection: %w", err)
	}
	return gormDB, nil
}

// CreateDBConnector is a factory function that returns the appropriate DBConnector.
func CreateDBConnector(config *DatabaseConfig) (DBConnector, error) {
	if config == nil {
		return nil, fmt.Errorf("database config cannot be nil")
	}
	switch config.DBType {
	case TypeSQLite, "":
		return &SQLiteConnector{
			dbPath:   config.DBPath,
			logLevel: config.DBLogLevel,
		}, nil
	case TypePostgres:
		return &StandardDBConnector{
			host:     config.DBHost,
			port:     config.DBPort,
			user:     config.DBUser,
			password: config.DBPassword,
			dbname:   config.DBName,
			sslMode:  config.DBSSLMode,
			logLevel: config.DBLogLevel,
		}, nil
	case TypeCloudSQL:
		return &CloudSQLConnector{
			instanceConnectionName: config.DBInstanceConnectionName,
			user:                   config.DBUser,
			password:               config.DBPassword,
			dbname:                 config.DBName,
			logLevel:               config.DBLogLevel,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.DBType)
	}
}
