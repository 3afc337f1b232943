package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/sink"
	"github.com/dbsmedya/encbench/internal/storage"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// CLI flags that override config file values
var (
	cfgFile    string
	logLevel   string
	logFormat  string
	batchSizes []int
	skipVerify bool
	noColor    bool
)

// Exit codes by error class.
const (
	exitOK     = 0
	exitIO     = 1
	exitConfig = 2
	exitCrypto = 3
)

var rootCmd = &cobra.Command{
	Use:   "encbench",
	Short: "AES vs RSA encryption benchmark",
	Long: `Benchmark symmetric against asymmetric encryption of sensitive identifiers
stored in a relational database and a document store, and measure the
storage overhead of keeping the ciphertexts.

Features:
  - Timed encrypt/decrypt passes per batch size (AES-256-GCM, Fernet, ChaCha20-Poly1305 vs RSA)
  - Round-trip verification of every record
  - Results table, CSV timings, and console reports
  - MongoDB document benchmark with logical size comparison
  - On-disk storage analysis of plaintext vs ciphertext SQLite stores`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps a failure to a process exit code by its class.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var usageErr *usageError
	if errors.As(err, &usageErr) || errors.Is(err, sink.ErrResultsMissing) || errors.Is(err, storage.ErrNoRecords) {
		return exitConfig
	}
	switch bench.Classify(err) {
	case bench.ClassConfig:
		return exitConfig
	case bench.ClassCrypto:
		return exitCrypto
	default:
		return exitIO
	}
}

// usageError marks bad flags and unreadable config files.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func init() {
	// Config file flag
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "encbench.yaml",
		"Path to configuration file")

	// Logging overrides
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	// Benchmark overrides
	rootCmd.PersistentFlags().IntSliceVar(&batchSizes, "batch-sizes", nil,
		"Override batch sizes (comma separated, ascending)")
	rootCmd.PersistentFlags().BoolVar(&skipVerify, "no-verify", false,
		"Skip round-trip verification of decrypted records")

	// Output
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false,
		"Disable colored table headers")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// CLIOverrides contains flag values that override config file settings
type CLIOverrides struct {
	LogLevel   string
	LogFormat  string
	BatchSizes []int
	SkipVerify bool
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() CLIOverrides {
	return CLIOverrides{
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		BatchSizes: batchSizes,
		SkipVerify: skipVerify,
	}
}
