package config

import (
	"errors"
	"strings"
	"testing"
)

func validMySQLConfig() *Config {
	cfg := DefaultConfig()
	cfg.Source = SourceConfig{
		Driver:   DriverMySQL,
		Host:     "localhost",
		Port:     3306,
		User:     "root",
		Password: "pass",
		Database: "hospital",
		Table:    "Patients",
		Column:   "ssn",
		OrderBy:  "id",
	}
	return cfg
}

func TestValidConfig(t *testing.T) {
	if err := validMySQLConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Source.Driver = "postgres" }, "source.driver"},
		{"missing mysql host", func(c *Config) { c.Source.Host = "" }, "source.host"},
		{"invalid port", func(c *Config) { c.Source.Port = 99999 }, "source.port"},
		{"single mysql connection", func(c *Config) { c.Source.MaxConnections = 1 }, "source.max_connections"},
		{"invalid tls", func(c *Config) { c.Source.TLS = "maybe" }, "source.tls"},
		{"missing sqlite path", func(c *Config) { c.Source.Driver = DriverSQLite; c.Source.Path = "" }, "source.path"},
		{"injected table", func(c *Config) { c.Source.Table = "Patients; DROP TABLE x" }, "source.table"},
		{"empty column", func(c *Config) { c.Source.Column = "" }, "source.column"},
		{"no batch sizes", func(c *Config) { c.Benchmark.BatchSizes = nil }, "benchmark.batch_sizes"},
		{"zero batch size", func(c *Config) { c.Benchmark.BatchSizes = []int{0, 10} }, "benchmark.batch_sizes[0]"},
		{"descending batch sizes", func(c *Config) { c.Benchmark.BatchSizes = []int{10, 5} }, "benchmark.batch_sizes[1]"},
		{"duplicate batch sizes", func(c *Config) { c.Benchmark.BatchSizes = []int{5, 5} }, "benchmark.batch_sizes[1]"},
		{"unknown snapshot size", func(c *Config) { c.Benchmark.SnapshotSizes = []int{42} }, "benchmark.snapshot_sizes[0]"},
		{"unknown symmetric scheme", func(c *Config) { c.Symmetric.Scheme = "des" }, "symmetric.scheme"},
		{"unknown asymmetric scheme", func(c *Config) { c.Asymmetric.Scheme = "elgamal" }, "asymmetric.scheme"},
		{"small rsa key", func(c *Config) { c.Asymmetric.KeyBits = 512 }, "asymmetric.key_bits"},
		{"results table", func(c *Config) { c.Results.Table = "bad-name" }, "results.table"},
		{"duplicate store files", func(c *Config) { c.Storage.SymmetricFile = c.Storage.PlainFile }, "storage"},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validMySQLConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error mentioning %q", tt.field)
			}
			if !strings.Contains(err.Error(), tt.field+":") {
				t.Errorf("expected error to mention %q, got: %v", tt.field, err)
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Errorf("expected ValidationErrors, got %T", err)
			}
		})
	}
}

func TestMultipleValidationErrors(t *testing.T) {
	cfg := validMySQLConfig()
	cfg.Source.Host = ""
	cfg.Source.User = ""
	cfg.Benchmark.BatchSizes = nil

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 3 {
		t.Errorf("expected at least 3 errors, got %d", len(verrs))
	}
}

func TestMySQLConnectionLimit(t *testing.T) {
	for _, n := range []int{0, 2, 10} {
		cfg := validMySQLConfig()
		cfg.Source.MaxConnections = n
		if err := cfg.Validate(); err != nil {
			t.Errorf("max_connections=%d: unexpected error: %v", n, err)
		}
	}

	// SQLite always runs on one connection and takes no lock.
	cfg := DefaultConfig()
	cfg.Source.MaxConnections = 1
	if err := cfg.Validate(); err != nil {
		t.Errorf("sqlite with max_connections=1: unexpected error: %v", err)
	}
}

func TestIdentifierErrorOrder(t *testing.T) {
	cfg := validMySQLConfig()
	cfg.Source.Table = "a-b"
	cfg.Source.Column = "c d"
	cfg.Source.OrderBy = "e;f"

	for i := 0; i < 10; i++ {
		err := cfg.Validate()
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected ValidationErrors, got %T", err)
		}
		var fields []string
		for _, e := range verrs {
			fields = append(fields, e.Field)
		}
		want := "source.table,source.column,source.order_by"
		if got := strings.Join(fields, ","); got != want {
			t.Fatalf("run %d: fields = %s, want %s", i, got, want)
		}
	}
}

func TestValidateNoSQL(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ValidateNoSQL(); err != nil {
		t.Errorf("expected default nosql config to validate, got: %v", err)
	}

	cfg.NoSQL.URI = ""
	cfg.NoSQL.Collection = ""
	err := cfg.ValidateNoSQL()
	if err == nil {
		t.Fatal("expected nosql validation error")
	}
	if !strings.Contains(err.Error(), "nosql.uri") || !strings.Contains(err.Error(), "nosql.collection") {
		t.Errorf("expected uri and collection errors, got: %v", err)
	}
}

func TestValidationErrorsEmpty(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "" {
		t.Errorf("expected empty string for no errors, got %q", errs.Error())
	}
}
