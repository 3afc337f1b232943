package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/logger"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

// loadConfig loads the config file, applies CLI overrides and validates the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, &usageError{err: fmt.Errorf("failed to load config: %w", err)}
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat, overrides.BatchSizes, overrides.SkipVerify)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the logger for a command.
func newLogger(cfg *config.Config) (*logger.Logger, error) {
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return log, nil
}

// snapshotPolicy converts the configured snapshot sizes.
func snapshotPolicy(cfg *config.Config) bench.SnapshotPolicy {
	return bench.SnapshotSizes(cfg.Benchmark.EffectiveSnapshotSizes()...)
}

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := len(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", len(title)+2))
}
