package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/database"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/source"
)

var validateNoSQL bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against the source database without generating keys or timing anything.

Checks performed:
  - Configuration syntax and required fields
  - Scheme names and RSA key size
  - Source database connectivity
  - Source table holds enough records for the largest batch size
  - Document store settings (with --nosql)

Example:
  encbench validate --config encbench.yaml`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateNoSQL, "nosql", false,
		"Also validate the document store settings")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("Starting validation checks...")

	fmt.Fprintf(outputWriter, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(outputWriter, "Batch sizes: %s\n\n", joinInts(cfg.Benchmark.BatchSizes))

	limit, err := scheme.MaxMessageSizeFor(cfg.Asymmetric.Scheme, cfg.Asymmetric.KeyBits)
	if err != nil {
		return err
	}
	fmt.Fprintf(outputWriter, "✅ Schemes: %s / %s (max asymmetric message %d bytes)\n",
		cfg.Symmetric.Scheme, cfg.Asymmetric.Scheme, limit)

	if validateNoSQL {
		if err := cfg.ValidateNoSQL(); err != nil {
			fmt.Fprintf(outputWriter, "❌ Document store settings: %v\n", err)
			return err
		}
		fmt.Fprintf(outputWriter, "✅ Document store: %s.%s\n", cfg.NoSQL.Database, cfg.NoSQL.Collection)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbManager := database.NewManager(&cfg.Source)
	if err := dbManager.Connect(ctx); err != nil {
		fmt.Fprintf(outputWriter, "❌ Source connection: %v\n", err)
		return err
	}
	defer dbManager.Close()

	if err := dbManager.Ping(ctx); err != nil {
		fmt.Fprintf(outputWriter, "❌ Source connection: %v\n", err)
		return fmt.Errorf("database connection failed: %w", err)
	}
	fmt.Fprintf(outputWriter, "✅ Source connection: %s\n", sourceLocation(&cfg.Source))

	available, err := checkSource(ctx, cfg, dbManager)
	if err != nil {
		if errors.Is(err, source.ErrInsufficientRecords) {
			fmt.Fprintf(outputWriter, "❌ Source records: %v\n", err)
		} else {
			fmt.Fprintf(outputWriter, "❌ Source table: %v\n", err)
		}
		return err
	}
	fmt.Fprintf(outputWriter, "✅ Source records: %d available in %s, largest batch needs %d\n",
		available, cfg.Source.Table, cfg.Benchmark.MaxBatchSize())

	fmt.Fprintln(outputWriter, "\n=== Validation Complete ===")
	fmt.Fprintln(outputWriter, "✅ Configuration validated successfully")
	return nil
}

// checkSource counts the source records and confirms the column can be read.
func checkSource(ctx context.Context, cfg *config.Config, dbManager *database.Manager) (int64, error) {
	available, err := source.Preflight(ctx, dbManager.Source, cfg.Source.Table, cfg.Benchmark.BatchSizes)
	if err != nil {
		return available, err
	}

	src, err := source.NewSQLSource(dbManager.Source, cfg.Source.Table, cfg.Source.Column, cfg.Source.OrderBy)
	if err != nil {
		return available, err
	}
	if _, err := src.Fetch(ctx, 1); err != nil {
		return available, err
	}
	return available, nil
}
