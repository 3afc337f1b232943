package config

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/encbench/internal/sqlutil"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Known scheme names. The scheme package owns the implementations.
var (
	symmetricSchemes  = map[string]bool{"aes-256-gcm": true, "fernet": true, "chacha20-poly1305": true}
	asymmetricSchemes = map[string]bool{"rsa-oaep-sha256": true, "rsa-pkcs1v15": true}
)

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateBenchmark()...)
	errors = append(errors, c.validateSchemes()...)
	errors = append(errors, c.validateOutputs()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateNoSQL checks the document store settings. They are only required by the nosql command.
func (c *Config) ValidateNoSQL() error {
	var errors ValidationErrors

	if c.NoSQL.URI == "" {
		errors = append(errors, ValidationError{Field: "nosql.uri", Message: "uri is required"})
	}
	if c.NoSQL.Database == "" {
		errors = append(errors, ValidationError{Field: "nosql.database", Message: "database is required"})
	}
	if c.NoSQL.Collection == "" {
		errors = append(errors, ValidationError{Field: "nosql.collection", Message: "collection is required"})
	}
	if c.NoSQL.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{Field: "nosql.timeout_seconds", Message: "timeout_seconds cannot be negative"})
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors
	src := &c.Source

	switch src.Driver {
	case DriverSQLite:
		if src.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "source.path",
				Message: "path is required for the sqlite3 driver",
			})
		}
	case DriverMySQL:
		if src.Host == "" {
			errors = append(errors, ValidationError{
				Field:   "source.host",
				Message: "host is required",
			})
		}
		if src.Port <= 0 || src.Port > 65535 {
			errors = append(errors, ValidationError{
				Field:   "source.port",
				Message: "port must be between 1 and 65535",
			})
		}
		if src.User == "" {
			errors = append(errors, ValidationError{
				Field:   "source.user",
				Message: "user is required",
			})
		}
		if src.Database == "" {
			errors = append(errors, ValidationError{
				Field:   "source.database",
				Message: "database name is required",
			})
		}
		// The run lock pins one connection for the whole run.
		if src.MaxConnections == 1 {
			errors = append(errors, ValidationError{
				Field:   "source.max_connections",
				Message: "max_connections must be 0 (unlimited) or at least 2 for mysql",
			})
		}
		validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
		if !validTLS[src.TLS] {
			errors = append(errors, ValidationError{
				Field:   "source.tls",
				Message: "tls must be 'disable', 'preferred', or 'required'",
			})
		}
	default:
		errors = append(errors, ValidationError{
			Field:   "source.driver",
			Message: "driver must be 'sqlite3' or 'mysql'",
		})
	}

	if src.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "source.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	identifiers := []struct{ field, name string }{
		{"source.table", src.Table},
		{"source.column", src.Column},
		{"source.order_by", src.OrderBy},
	}
	for _, id := range identifiers {
		if !sqlutil.IsValidIdentifier(id.name) {
			errors = append(errors, ValidationError{
				Field:   id.field,
				Message: fmt.Sprintf("%q is not a valid identifier", id.name),
			})
		}
	}

	return errors
}

func (c *Config) validateBenchmark() ValidationErrors {
	var errors ValidationErrors
	b := &c.Benchmark

	if len(b.BatchSizes) == 0 {
		errors = append(errors, ValidationError{
			Field:   "benchmark.batch_sizes",
			Message: "at least one batch size must be defined",
		})
	}

	known := make(map[int]bool, len(b.BatchSizes))
	for i, n := range b.BatchSizes {
		if n <= 0 {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("benchmark.batch_sizes[%d]", i),
				Message: "batch size must be positive",
			})
		}
		if i > 0 && n <= b.BatchSizes[i-1] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("benchmark.batch_sizes[%d]", i),
				Message: "batch sizes must be strictly ascending",
			})
		}
		known[n] = true
	}

	for i, n := range b.SnapshotSizes {
		if !known[n] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("benchmark.snapshot_sizes[%d]", i),
				Message: fmt.Sprintf("%d is not one of the configured batch sizes", n),
			})
		}
	}

	return errors
}

func (c *Config) validateSchemes() ValidationErrors {
	var errors ValidationErrors

	if !symmetricSchemes[c.Symmetric.Scheme] {
		errors = append(errors, ValidationError{
			Field:   "symmetric.scheme",
			Message: "scheme must be 'aes-256-gcm', 'fernet', or 'chacha20-poly1305'",
		})
	}

	if !asymmetricSchemes[c.Asymmetric.Scheme] {
		errors = append(errors, ValidationError{
			Field:   "asymmetric.scheme",
			Message: "scheme must be 'rsa-oaep-sha256' or 'rsa-pkcs1v15'",
		})
	}

	if c.Asymmetric.KeyBits < 1024 || c.Asymmetric.KeyBits%8 != 0 {
		errors = append(errors, ValidationError{
			Field:   "asymmetric.key_bits",
			Message: "key_bits must be a multiple of 8 and at least 1024",
		})
	}

	return errors
}

func (c *Config) validateOutputs() ValidationErrors {
	var errors ValidationErrors

	if !sqlutil.IsValidIdentifier(c.Results.Table) {
		errors = append(errors, ValidationError{
			Field:   "results.table",
			Message: fmt.Sprintf("%q is not a valid identifier", c.Results.Table),
		})
	}

	st := &c.Storage
	if st.PlainFile == "" || st.SymmetricFile == "" || st.AsymmetricFile == "" {
		errors = append(errors, ValidationError{
			Field:   "storage",
			Message: "plain_file, symmetric_file and asymmetric_file are required",
		})
	} else if st.PlainFile == st.SymmetricFile || st.PlainFile == st.AsymmetricFile || st.SymmetricFile == st.AsymmetricFile {
		errors = append(errors, ValidationError{
			Field:   "storage",
			Message: "store files must be distinct",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
