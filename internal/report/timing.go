package report

import (
	"io"
	"strconv"
	"sync"

	"github.com/dbsmedya/encbench/internal/types"
)

// TimingTable collects timing rows and renders them in arrival order.
// With Stream set, each row is also printed as soon as it arrives.
type TimingTable struct {
	mu       sync.Mutex
	title    string
	symName  string
	asymName string
	plain    bool
	rows     []types.TimingRow

	stream  io.Writer
	started bool
}

// NewTimingTable labels the columns with the scheme names.
func NewTimingTable(title, symName, asymName string, plain bool) *TimingTable {
	return &TimingTable{title: title, symName: symName, asymName: asymName, plain: plain}
}

// Stream prints the header before the first row and every row as it is written.
func (t *TimingTable) Stream(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stream = w
}

// WriteRow records one row, printing it when streaming.
func (t *TimingTable) WriteRow(row types.TimingRow) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = append(t.rows, row)

	if t.stream == nil {
		return nil
	}
	tbl := t.table()
	if !t.started {
		if err := tbl.RenderHeader(t.stream); err != nil {
			return err
		}
		t.started = true
	}
	return tbl.RenderRow(t.stream, cells(row)...)
}

// Rows returns the collected rows.
func (t *TimingTable) Rows() []types.TimingRow {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]types.TimingRow(nil), t.rows...)
}

// Render writes the collected rows as a table. Durations are in seconds.
func (t *TimingTable) Render(w io.Writer) error {
	tbl := t.table()
	for _, row := range t.Rows() {
		tbl.AddRow(cells(row)...)
	}
	return tbl.Render(w)
}

func (t *TimingTable) table() *Table {
	return &Table{
		Title: t.title,
		Headers: []string{
			"Batch Size",
			t.symName + " Encrypt (s)",
			t.symName + " Decrypt (s)",
			t.asymName + " Encrypt (s)",
			t.asymName + " Decrypt (s)",
		},
		Aligns: []Align{AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
		Plain:  t.plain,
	}
}

func cells(row types.TimingRow) []string {
	out := []string{strconv.Itoa(row.BatchSize)}
	for _, s := range row.Seconds() {
		out = append(out, FormatSeconds(s))
	}
	return out
}

// FormatSeconds formats a duration in seconds with microsecond precision.
func FormatSeconds(s float64) string {
	return strconv.FormatFloat(s, 'f', 6, 64)
}
