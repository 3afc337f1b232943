package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/bench"
	"github.com/dbsmedya/encbench/internal/docbench"
	"github.com/dbsmedya/encbench/internal/docstore"
	"github.com/dbsmedya/encbench/internal/report"
	"github.com/dbsmedya/encbench/internal/scheme"
	"github.com/dbsmedya/encbench/internal/sink"
	"github.com/dbsmedya/encbench/internal/source"
)

var nosqlCmd = &cobra.Command{
	Use:   "nosql",
	Short: "Run the document store encryption benchmark",
	Long: `NoSQL generates patient log documents and, for each batch size, times
encrypting the patient_ssn field and replacing the collection, then reading
the collection back and decrypting it.

The collection is dropped and rewritten on every pass. Logical sizes
(collStats.size) are recorded for a plaintext baseline and for the
encrypted collections of the snapshot batch sizes.

Example:
  encbench nosql --config encbench.yaml`,
	RunE: runNoSQL,
}

func init() {
	rootCmd.AddCommand(nosqlCmd)
}

func runNoSQL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateNoSQL(); err != nil {
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

	connectCtx := ctx
	if cfg.NoSQL.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, time.Duration(cfg.NoSQL.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	store, err := docstore.Connect(connectCtx, &cfg.NoSQL)
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	log.Infow("Generating keys", "symmetric", cfg.Symmetric.Scheme, "asymmetric", cfg.Asymmetric.Scheme, "key_bits", cfg.Asymmetric.KeyBits)
	keys, err := scheme.NewKeyring(cfg)
	if err != nil {
		return err
	}

	docs := &source.SyntheticSource{Clock: func() float64 {
		return float64(time.Now().UnixNano()) / 1e9
	}}

	runID := uuid.NewString()
	table := report.NewTimingTable("Document store benchmark", keys.Symmetric.Name(), keys.Asymmetric.Name(), noColor)
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

	runner, err := docbench.NewRunner(store, docs, keys, docbench.Options{
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

	sample := docs.Documents(1)[0]
	log.Infow("Sample document before encryption",
		"device_id", sample.DeviceID,
		"patient_ssn", sample.PatientSSN,
		"bpm", sample.Vitals.BPM,
		"temp", sample.Vitals.Temp,
	)

	fmt.Fprintln(outputWriter)
	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(outputWriter)
	return report.RenderSizes(outputWriter, "Logical data size (collStats.size)", result.Sizes, noColor)
}
