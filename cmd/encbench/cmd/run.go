package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/database"
	"github.com/dbsmedya/encbench/internal/lock"
	"github.com/dbsmedya/encbench/internal/logger"
	"github.com/dbsmedya/encbench/internal/report"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/sink"
	"github.com/dbsmedya/encbench/internal/source"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the relational encryption benchmark",
	Long: `Run reads identifiers from the source table and, for each batch size,
times symmetric and asymmetric encryption and decryption of the same records.

Steps:
  - Check the source holds enough records for the largest batch
  - Generate the symmetric key and RSA key pair
  - Time the four passes per batch size and print one row per batch
  - Write the largest snapshot to the results table
  - Optionally append timings to a CSV file

Example:
  encbench run --config encbench.yaml --batch-sizes 1000,5000,10000`,
	RunE: runBenchmark,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runBenchmark(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbManager := database.NewManager(&cfg.Source)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()

	return runRelational(ctx, cfg, dbManager, log)
}

// runRelational runs the benchmark against an open source database.
func runRelational(ctx context.Context, cfg *config.Config, dbManager *database.Manager, log *logger.Logger) error {
	db := dbManager.Source

	available, err := source.Preflight(ctx, db, cfg.Source.Table, cfg.Benchmark.BatchSizes)
	if err != nil {
		return err
	}
	log.Infow("Source ready", "table", cfg.Source.Table, "records", available)

	src, err := source.NewSQLSource(db, cfg.Source.Table, cfg.Source.Column, cfg.Source.OrderBy)
	if err != nil {
		return err
	}

	results, err := sink.NewResultTable(db, cfg.Results.Table)
	if err != nil {
		return err
	}

	log.Infow("Generating keys", "symmetric", cfg.Symmetric.Scheme, "asymmetric", cfg.Asymmetric.Scheme, "key_bits", cfg.Asymmetric.KeyBits)
	keys, err := scheme.NewKeyring(cfg)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	table := report.NewTimingTable("Relational benchmark", keys.Symmetric.Name(), keys.Asymmetric.Name(), noColor)
	table.Stream(outputWriter)
	sinks := []bench.RowSink{table}

	if cfg.Results.CSVPath != "" {
		csvSink, err := sink.NewCSVFile(cfg.Results.CSVPath, runID)
		if err != nil {
			return err
		}
		defer csvSink.Close()
		sinks = append(sinks, csvSink)
	}

	runner, err := bench.NewRunner(src, keys, bench.Options{
		RunID:           runID,
		BatchSizes:      cfg.Benchmark.BatchSizes,
		Snapshot:        snapshotPolicy(cfg),
		VerifyRoundTrip: cfg.Benchmark.VerifyRoundTrip,
		Sinks:           sinks,
	})
	if err != nil {
		return err
	}
	runner.SetLogger(log)

	fmt.Fprintln(outputWriter)

	var result *bench.Result
	err = lock.WithLock(ctx, lock.NewRunLock(db, &cfg.Source), func() error {
		var err error
		result, err = runner.Run(ctx)
		if err != nil {
			return err
		}

		snap := result.Largest()
		if snap == nil {
			return nil
		}
		if err := results.Write(ctx, snap); err != nil {
			return &bench.BatchError{BatchSize: snap.BatchSize, Op: bench.OpStore, Err: err}
		}
		log.Infow("Snapshot written", "table", results.Table(), "records", len(snap.Triples))
		return nil
	})
	if err != nil {
		return err
	}

	if snap := result.Largest(); snap != nil {
		sample, _ := result.StorageSample(snap.BatchSize)
		fmt.Fprintln(outputWriter)
		if err := report.RenderSample(outputWriter, sample, keys.Symmetric.Name(), keys.Asymmetric.Name(), noColor); err != nil {
			return err
		}
	}

	return nil
}
