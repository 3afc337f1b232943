// Package database provides source database connection management for encbench.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/dbsmedya/encbench/internal/config"
)

// Manager handles the connection to the source database.
type Manager struct {
	Source *sql.DB
	config *config.SourceConfig

	open       func(driver, dsn string) (*sql.DB, error)
	maxRetries int
	backoff    time.Duration
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.SourceConfig) *Manager {
	return &Manager{
		config:     cfg,
		open:       sql.Open,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Driver returns the configured driver name.
func (m *Manager) Driver() string {
	return m.config.Driver
}

// Connect establishes the source connection.
func (m *Manager) Connect(ctx context.Context) error {
	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to source database: %w", err)
	}
	m.Source = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff

	for i := 0; i < m.maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < m.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

// connect opens a pool for the configured driver.
func (m *Manager) connect() (*sql.DB, error) {
	dsn, err := BuildDSN(m.config)
	if err != nil {
		return nil, err
	}

	db, err := m.open(m.config.Driver, dsn)
	if err != nil {
		return nil, err
	}

	switch m.config.Driver {
	case config.DriverSQLite:
		// SQLite serializes writers; one connection avoids "database is locked".
		db.SetMaxOpenConns(1)
	default:
		if m.config.MaxConnections > 0 {
			db.SetMaxOpenConns(m.config.MaxConnections)
		}
		if m.config.MaxIdleConnections > 0 {
			db.SetMaxIdleConns(m.config.MaxIdleConnections)
		}
		db.SetConnMaxLifetime(10 * time.Minute)
	}

	return db, nil
}

// BuildDSN constructs the data source name for the configured driver.
func BuildDSN(cfg *config.SourceConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return SQLiteDSN(cfg.Path), nil
	case config.DriverMySQL:
		return MySQLDSN(cfg), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// SQLiteDSN returns the go-sqlite3 DSN for a database file.
func SQLiteDSN(path string) string {
	return path + "?_foreign_keys=on&_busy_timeout=5000"
}

// MySQLDSN constructs a MySQL DSN from configuration.
func MySQLDSN(cfg *config.SourceConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the source connection.
func (m *Manager) Close() error {
	if m.Source == nil {
		return nil
	}
	if err := m.Source.Close(); err != nil {
		return fmt.Errorf("source close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Source != nil {
		if err := m.Source.PingContext(ctx); err != nil {
			return fmt.Errorf("source ping failed: %w", err)
		}
	}
	return nil
}
