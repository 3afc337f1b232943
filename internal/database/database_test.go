package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/encbench/internal/config"
)

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      *config.SourceConfig
		expected string
	}{
		{
			name: "basic DSN",
			cfg: &config.SourceConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "hospital",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/hospital?parseTime=true&tls=preferred",
		},
		{
			name: "DSN without database",
			cfg: &config.SourceConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				TLS:      "preferred",
			},
			expected: "root:secret@tcp(localhost:3306)/?parseTime=true&tls=preferred",
		},
		{
			name: "DSN with TLS disabled",
			cfg: &config.SourceConfig{
				Host:     "localhost",
				Port:     3306,
				User:     "root",
				Password: "secret",
				Database: "hospital",
				TLS:      "disable",
			},
			expected: "root:secret@tcp(localhost:3306)/hospital?parseTime=true&tls=false",
		},
		{
			name: "DSN with TLS required and custom port",
			cfg: &config.SourceConfig{
				Host:     "remote-host",
				Port:     3307,
				User:     "admin",
				Password: "p@ssw0rd!",
				Database: "hospital",
				TLS:      "required",
			},
			expected: "admin:p@ssw0rd!@tcp(remote-host:3307)/hospital?parseTime=true&tls=true",
		},
		{
			name: "empty TLS defaults to preferred",
			cfg: &config.SourceConfig{
				Host: "localhost",
				Port: 3306,
				User: "root",
			},
			expected: "root:@tcp(localhost:3306)/?parseTime=true&tls=preferred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MySQLDSN(tt.cfg))
		})
	}
}

func TestBuildDSN(t *testing.T) {
	dsn, err := BuildDSN(&config.SourceConfig{Driver: config.DriverSQLite, Path: "/tmp/hospital.db"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/hospital.db?_foreign_keys=on&_busy_timeout=5000", dsn)

	dsn, err = BuildDSN(&config.SourceConfig{Driver: config.DriverMySQL, Host: "db", Port: 3306, User: "u"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "u:@tcp(db:3306)/"))

	_, err = BuildDSN(&config.SourceConfig{Driver: "postgres"})
	assert.ErrorContains(t, err, "unsupported driver")
}

func TestNewManager(t *testing.T) {
	cfg := &config.SourceConfig{Driver: config.DriverSQLite, Path: "hospital.db"}

	manager := NewManager(cfg)
	require.NotNil(t, manager)
	assert.Same(t, cfg, manager.config)
	assert.Nil(t, manager.Source)
	assert.Equal(t, config.DriverSQLite, manager.Driver())
	assert.Equal(t, 3, manager.maxRetries)
}

func TestManagerCloseWithoutConnect(t *testing.T) {
	manager := NewManager(&config.SourceConfig{Driver: config.DriverSQLite})
	assert.NoError(t, manager.Close())
	assert.NoError(t, manager.Ping(context.Background()))
}

func TestManagerConnect_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hospital.db")
	manager := NewManager(&config.SourceConfig{Driver: config.DriverSQLite, Path: path})

	require.NoError(t, manager.Connect(context.Background()))
	defer manager.Close()

	require.NotNil(t, manager.Source)
	assert.Equal(t, 1, manager.Source.Stats().MaxOpenConnections)
	assert.NoError(t, manager.Ping(context.Background()))

	var one int
	require.NoError(t, manager.Source.QueryRow("SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)
}

func TestManagerConnect_RetriesThenFails(t *testing.T) {
	manager := NewManager(&config.SourceConfig{Driver: config.DriverSQLite, Path: "x.db"})
	manager.backoff = time.Millisecond

	attempts := 0
	manager.open = func(driver, dsn string) (*sql.DB, error) {
		attempts++
		return nil, errors.New("connection refused")
	}

	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Contains(t, err.Error(), "connection refused")
	assert.Nil(t, manager.Source)
}

func TestManagerConnect_ContextCancelledDuringBackoff(t *testing.T) {
	manager := NewManager(&config.SourceConfig{Driver: config.DriverSQLite, Path: "x.db"})
	manager.backoff = time.Hour
	manager.open = func(driver, dsn string) (*sql.DB, error) {
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := manager.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestManagerConnect_UnsupportedDriver(t *testing.T) {
	manager := NewManager(&config.SourceConfig{Driver: "oracle"})
	manager.backoff = time.Millisecond

	err := manager.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}
