package sink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/dbsmedya/encbench/internal/types"
)

// CSVHeader is the first line of every timing file.
var CSVHeader = []string{"run_id", "batch_size", "sym_encrypt_s", "sym_decrypt_s", "asym_encrypt_s", "asym_decrypt_s"}

// CSVWriter writes timing rows as they arrive, flushing after each one.
type CSVWriter struct {
	w      *csv.Writer
	closer io.Closer
	runID  string
}

// NewCSVFile creates (or truncates) path and writes the header.
func NewCSVFile(path, runID string) (*CSVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	w, err := NewCSVWriter(f, runID)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// NewCSVWriter writes the header to out.
func NewCSVWriter(out io.Writer, runID string) (*CSVWriter, error) {
	w := &CSVWriter{w: csv.NewWriter(out), runID: runID}
	if err := w.write(CSVHeader); err != nil {
		return nil, err
	}
	return w, nil
}

// WriteRow appends one row.
func (c *CSVWriter) WriteRow(row types.TimingRow) error {
	record := make([]string, 0, len(CSVHeader))
	record = append(record, c.runID, strconv.Itoa(row.BatchSize))
	for _, s := range row.Seconds() {
		record = append(record, strconv.FormatFloat(s, 'f', 6, 64))
	}
	return c.write(record)
}

func (c *CSVWriter) write(record []string) error {
	if err := c.w.Write(record); err != nil {
		return fmt.Errorf("failed to write csv row: %w", err)
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}
