package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/sink"
	"github.com/dbsmedya/encbench/internal/storage"
)

func TestExecute(t *testing.T) {
	// Execute() calls os.Exit on error, so only its presence is checked here.
	assert.NotNil(t, Execute)
}

func TestVersionVariables(t *testing.T) {
	assert.NotEmpty(t, Version, "Version should not be empty")
	assert.NotEmpty(t, Commit, "Commit should not be empty")
}

func TestCLIFlagsVariables(t *testing.T) {
	assert.Equal(t, "encbench.yaml", cfgFile, "cfgFile should default to encbench.yaml")
	assert.Equal(t, "", logLevel)
	assert.Equal(t, "", logFormat)
	assert.Empty(t, batchSizes)
	assert.False(t, skipVerify)
	assert.False(t, noColor)
}

func TestCLIOverrideStruct(t *testing.T) {
	overrides := CLIOverrides{
		LogLevel:   "debug",
		LogFormat:  "json",
		BatchSizes: []int{10, 20},
		SkipVerify: true,
	}

	assert.Equal(t, "debug", overrides.LogLevel)
	assert.Equal(t, "json", overrides.LogFormat)
	assert.Equal(t, []int{10, 20}, overrides.BatchSizes)
	assert.True(t, overrides.SkipVerify)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, exitOK},
		{"bad flag", &usageError{err: errors.New("unknown flag: --bogus")}, exitConfig},
		{"invalid config", config.ValidationErrors{{Field: "source.driver", Message: "bad"}}, exitConfig},
		{"results missing", fmt.Errorf("load: %w", sink.ErrResultsMissing), exitConfig},
		{"empty snapshot", storage.ErrNoRecords, exitConfig},
		{"insufficient records", &bench.BatchError{BatchSize: 4, Op: bench.OpFetch, Err: bench.ErrInsufficientRecords}, exitConfig},
		{"payload too long", &bench.BatchError{BatchSize: 2, Op: bench.OpAsymEncrypt, Err: scheme.ErrMessageTooLong}, exitCrypto},
		{"round trip mismatch", &bench.BatchError{BatchSize: 2, Op: bench.OpSymVerify, Err: bench.ErrRoundTripMismatch}, exitCrypto},
		{"sink failure", &bench.BatchError{BatchSize: 2, Op: bench.OpSink, Err: errors.New("disk full")}, exitIO},
		{"connection failure", errors.New("connection refused"), exitIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestUsageErrorUnwrap(t *testing.T) {
	inner := errors.New("boom")
	err := &usageError{err: inner}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
