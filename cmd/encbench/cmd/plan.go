package cmd

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/report"
	"github.com/dbsmedya/encbench/internal/scheme"
)

var planRecordLength int

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show the benchmark plan without running it",
	Long: `Plan reads the configuration and shows what a run would do, without
connecting to any database or generating keys.

The plan shows:
  - Source table and ordering
  - Batch sizes, snapshot sizes, and round-trip verification
  - Schemes with their per-record ciphertext size and message limit
  - Estimated logical footprint of the largest snapshot
  - Output destinations

Example:
  encbench plan --config encbench.yaml --record-length 11`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().IntVar(&planRecordLength, "record-length", 9,
		"Plaintext length in bytes used for size estimates")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if planRecordLength <= 0 {
		return &usageError{err: fmt.Errorf("--record-length must be positive")}
	}

	printHeader("Benchmark Plan")

	fmt.Fprintln(outputWriter)
	printSection("Source")
	fmt.Fprintf(outputWriter, "  Driver:     %s\n", cfg.Source.Driver)
	fmt.Fprintf(outputWriter, "  Location:   %s\n", sourceLocation(&cfg.Source))
	fmt.Fprintf(outputWriter, "  Records:    %s.%s ORDER BY %s\n", cfg.Source.Table, cfg.Source.Column, cfg.Source.OrderBy)

	fmt.Fprintln(outputWriter)
	printSection("Batches")
	fmt.Fprintf(outputWriter, "  Batch Sizes:      %s\n", joinInts(cfg.Benchmark.BatchSizes))
	fmt.Fprintf(outputWriter, "  Snapshot Sizes:   %s\n", joinInts(cfg.Benchmark.EffectiveSnapshotSizes()))
	fmt.Fprintf(outputWriter, "  Verify Roundtrip: %t\n", cfg.Benchmark.VerifyRoundTrip)

	symSize, err := scheme.SealedSize(cfg.Symmetric.Scheme, planRecordLength, cfg.Asymmetric.KeyBits)
	if err != nil {
		return err
	}
	asymSize, err := scheme.SealedSize(cfg.Asymmetric.Scheme, planRecordLength, cfg.Asymmetric.KeyBits)
	if err != nil {
		return err
	}
	limit, err := scheme.MaxMessageSizeFor(cfg.Asymmetric.Scheme, cfg.Asymmetric.KeyBits)
	if err != nil {
		return err
	}

	fmt.Fprintln(outputWriter)
	printSection("Schemes")
	fmt.Fprintf(outputWriter, "  Symmetric:  %s (%d bytes stored per %d-byte record)\n",
		cfg.Symmetric.Scheme, symSize, planRecordLength)
	fmt.Fprintf(outputWriter, "  Asymmetric: %s, %d-bit key (%d bytes stored per record, max message %d bytes)\n",
		cfg.Asymmetric.Scheme, cfg.Asymmetric.KeyBits, asymSize, limit)
	if limit > 0 && planRecordLength > limit {
		fmt.Fprintf(outputWriter, "  WARNING: %d-byte records exceed the %s limit; the run would fail\n",
			planRecordLength, cfg.Asymmetric.Scheme)
	}

	n := int64(cfg.Benchmark.MaxBatchSize())
	sizes := orderedmap.NewOrderedMap[string, int64]()
	sizes.Set("Plaintext", n*int64(planRecordLength))
	sizes.Set(cfg.Symmetric.Scheme+" (hex)", n*int64(2*symSize))
	sizes.Set(cfg.Asymmetric.Scheme+" (hex)", n*int64(2*asymSize))

	fmt.Fprintln(outputWriter)
	if err := report.RenderSizes(outputWriter, fmt.Sprintf("Estimated logical footprint (%d records)", n), sizes, noColor); err != nil {
		return err
	}

	fmt.Fprintln(outputWriter)
	printSection("Outputs")
	fmt.Fprintf(outputWriter, "  Results Table: %s\n", cfg.Results.Table)
	if cfg.Results.CSVPath != "" {
		fmt.Fprintf(outputWriter, "  Timings CSV:   %s\n", cfg.Results.CSVPath)
	}
	fmt.Fprintf(outputWriter, "  Store Files:   %s, %s, %s (in %s)\n",
		cfg.Storage.PlainFile, cfg.Storage.SymmetricFile, cfg.Storage.AsymmetricFile, cfg.Storage.OutputDir)
	fmt.Fprintf(outputWriter, "  Documents:     %s %s.%s\n", redactURI(cfg.NoSQL.URI), cfg.NoSQL.Database, cfg.NoSQL.Collection)

	return nil
}

// sourceLocation describes the source without exposing credentials.
func sourceLocation(src *config.SourceConfig) string {
	if src.Driver == config.DriverSQLite {
		return src.Path
	}
	return fmt.Sprintf("%s@%s:%d/%s", src.User, src.Host, src.Port, src.Database)
}

// redactURI masks the password of a connection URI.
func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "(unparseable uri)"
	}
	return u.Redacted()
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}
