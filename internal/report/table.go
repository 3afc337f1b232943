// Package report renders benchmark results as console tables.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

var headerStyle = color.New(color.FgCyan, color.OpBold)

// Align controls how a column is padded.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table is a simple column-aligned text table.
type Table struct {
	Title   string
	Headers []string
	Aligns  []Align
	Rows    [][]string
	// Plain disables ANSI colors in the header.
	Plain bool
}

// AddRow appends a row. Missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render writes the table to w.
func (t *Table) Render(w io.Writer) error {
	widths := t.columnWidths()

	var sb strings.Builder
	sb.WriteString(t.header(widths))
	for _, row := range t.Rows {
		sb.WriteString(t.formatRow(row, widths))
		sb.WriteString("\n")
	}
	return write(w, sb.String())
}

// RenderHeader writes only the title, header and rule, sized to the headers.
// Rows streamed afterwards with RenderRow line up with it.
func (t *Table) RenderHeader(w io.Writer) error {
	return write(w, t.header(t.headerWidths()))
}

// RenderRow writes one row sized to the headers.
func (t *Table) RenderRow(w io.Writer, cells ...string) error {
	return write(w, t.formatRow(cells, t.headerWidths())+"\n")
}

func (t *Table) header(widths []int) string {
	var sb strings.Builder
	if t.Title != "" {
		sb.WriteString(t.Title)
		sb.WriteString("\n")
	}

	header := t.formatRow(t.Headers, widths)
	if !t.Plain {
		header = headerStyle.Sprint(header)
	}
	sb.WriteString(header)
	sb.WriteString("\n")

	rule := make([]string, len(widths))
	for i, width := range widths {
		rule[i] = strings.Repeat("-", width)
	}
	sb.WriteString(strings.Join(rule, "  "))
	sb.WriteString("\n")
	return sb.String()
}

func write(w io.Writer, s string) error {
	if _, err := io.WriteString(w, s); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

func (t *Table) headerWidths() []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(h)
	}
	return widths
}

func (t *Table) columnWidths() []int {
	widths := t.headerWidths()
	for _, row := range t.Rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := runewidth.StringWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func (t *Table) formatRow(cells []string, widths []int) string {
	out := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i < len(t.Aligns) && t.Aligns[i] == AlignRight {
			out[i] = runewidth.FillLeft(cell, width)
		} else {
			out[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(out, "  "), " ")
}
