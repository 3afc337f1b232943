package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/encbench/internal/database"
	"github.com/dbsmedya/encbench/internal/report"
	"github.com/dbsmedya/encbench/internal/sink"
	"github.com/dbsmedya/encbench/internal/storage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Measure the on-disk cost of storing ciphertexts",
	Long: `Analyze reads the snapshot written by "encbench run" from the results
table and writes the plaintexts, symmetric ciphertexts, and asymmetric
ciphertexts into three separate SQLite files.

For each file it reports the number of records, the sum of the stored text,
the real file size, the database overhead (file minus text), the average
overhead per record, and the file size relative to the plaintext file.

Existing store files are deleted first.

Example:
  encbench analyze --config encbench.yaml`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	results, err := sink.NewResultTable(dbManager.Source, cfg.Results.Table)
	if err != nil {
		return err
	}

	triples, err := results.LoadTriples(ctx)
	if err != nil {
		return err
	}
	log.Infow("Loaded snapshot", "table", results.Table(), "records", len(triples))

	analyzer := storage.NewAnalyzer(&cfg.Storage, cfg.Symmetric.Scheme, cfg.Asymmetric.Scheme)
	analyzer.SetLogger(log)

	analysis, err := analyzer.Analyze(ctx, triples)
	if err != nil {
		return err
	}

	fmt.Fprintln(outputWriter)
	return report.RenderStorage(outputWriter, analysis, noColor)
}
