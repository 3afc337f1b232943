// Package storage measures the on-disk cost of storing encrypted identifiers
// by writing the same records into parallel SQLite files.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/elliotchance/orderedmap/v2"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/dbsmedya/encbench/internal/config"
	"github.com/dbsmedya/encbench/internal/logger"
	"github.com/dbsmedya/encbench/internal/types"
)

// PlainStore is the label of the plaintext control store.
const PlainStore = "Plain"

// ErrNoRecords is returned when there is nothing to analyze.
var ErrNoRecords = errors.New("no records to analyze")

// StoreReport describes one store file.
type StoreReport struct {
	Name      string
	Path      string
	Records   int
	TextBytes int64 // sum of stored value lengths
	FileBytes int64 // size of the database file
}

// Overhead returns file bytes minus text bytes.
func (s *StoreReport) Overhead() int64 {
	return s.FileBytes - s.TextBytes
}

// PerRecordOverhead returns the average overhead per record.
func (s *StoreReport) PerRecordOverhead() float64 {
	if s.Records == 0 {
		return 0
	}
	return float64(s.Overhead()) / float64(s.Records)
}

// Analysis holds one report per store, in store order: plaintext first.
type Analysis struct {
	Stores *orderedmap.OrderedMap[string, *StoreReport]
}

// Baseline returns the plaintext store report.
func (a *Analysis) Baseline() *StoreReport {
	r, _ := a.Stores.Get(PlainStore)
	return r
}

// Ratio returns the file size of the named store divided by the plaintext file size.
func (a *Analysis) Ratio(name string) float64 {
	base := a.Baseline()
	r, ok := a.Stores.Get(name)
	if !ok || base == nil || base.FileBytes <= 0 {
		return 0
	}
	return float64(r.FileBytes) / float64(base.FileBytes)
}

// Reports returns the store reports in order.
func (a *Analysis) Reports() []*StoreReport {
	out := make([]*StoreReport, 0, a.Stores.Len())
	for el := a.Stores.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

type store struct {
	name  string
	path  string
	value func(types.Triple) string
}

// Analyzer writes the three stores and measures them.
type Analyzer struct {
	stores []store
	logger *logger.Logger
}

// NewAnalyzer builds an analyzer from the storage settings. symLabel and
// asymLabel name the encrypted stores in the report.
func NewAnalyzer(cfg *config.StorageConfig, symLabel, asymLabel string) *Analyzer {
	dir := cfg.OutputDir
	return &Analyzer{
		stores: []store{
			{PlainStore, filepath.Join(dir, cfg.PlainFile), func(t types.Triple) string { return t.Plaintext }},
			{symLabel, filepath.Join(dir, cfg.SymmetricFile), func(t types.Triple) string { return t.SymHex }},
			{asymLabel, filepath.Join(dir, cfg.AsymmetricFile), func(t types.Triple) string { return t.AsymHex }},
		},
		logger: logger.NewDefault(),
	}
}

// SetLogger sets the logger for the analyzer.
func (a *Analyzer) SetLogger(log *logger.Logger) {
	a.logger = log
}

// Analyze replaces the store files with the given triples and measures them.
func (a *Analyzer) Analyze(ctx context.Context, triples []types.Triple) (*Analysis, error) {
	if len(triples) == 0 {
		return nil, ErrNoRecords
	}

	analysis := &Analysis{Stores: orderedmap.NewOrderedMap[string, *StoreReport]()}

	for _, st := range a.stores {
		report, err := a.build(ctx, st, triples)
		if err != nil {
			return nil, fmt.Errorf("store %s: %w", st.name, err)
		}
		analysis.Stores.Set(st.name, report)

		a.logger.Infow("Store written",
			"store", st.name,
			"path", st.path,
			"records", report.Records,
			"text_bytes", report.TextBytes,
			"file_bytes", report.FileBytes,
		)
	}

	return analysis, nil
}

func (a *Analyzer) build(ctx context.Context, st store, triples []types.Triple) (*StoreReport, error) {
	if err := os.Remove(st.path); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to remove stale file: %w", err)
	}

	db, err := sql.Open("sqlite3", st.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open: %w", err)
	}
	db.SetMaxOpenConns(1)

	report := &StoreReport{Name: st.name, Path: st.path}
	if err := populate(ctx, db, st, triples, report); err != nil {
		db.Close()
		return nil, err
	}
	// The file size is only final once the connection is closed.
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("failed to close: %w", err)
	}

	info, err := os.Stat(st.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat: %w", err)
	}
	report.FileBytes = info.Size()

	return report, nil
}

func populate(ctx context.Context, db *sql.DB, st store, triples []types.Triple, report *StoreReport) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE Patients (ID INTEGER PRIMARY KEY, SSN TEXT)"); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO Patients (SSN) VALUES (?)")
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range triples {
		v := st.value(t)
		if _, err := stmt.ExecContext(ctx, v); err != nil {
			return fmt.Errorf("failed to insert: %w", err)
		}
		report.Records++
		report.TextBytes += int64(len(v))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
