package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/encbench/internal/storage"
	"github.com/dbsmedya/encbench/internal/types"
)

// KB formats a byte count in kilobytes.
func KB(n int64) string {
	return strconv.FormatFloat(float64(n)/1024, 'f', 2, 64)
}

// Ratio formats an expansion ratio.
func Ratio(r float64) string {
	return fmt.Sprintf("%.2fx", r)
}

// RenderStorage writes the disk footprint of each store.
func RenderStorage(w io.Writer, a *storage.Analysis, plain bool) error {
	tbl := &Table{
		Title:   "Disk footprint",
		Headers: []string{"Type", "Records", "Text (KB)", "File (KB)", "Overhead (KB)", "Overhead/Record (B)", "Ratio"},
		Aligns:  []Align{AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
		Plain:   plain,
	}
	for _, r := range a.Reports() {
		tbl.AddRow(
			r.Name,
			strconv.Itoa(r.Records),
			KB(r.TextBytes),
			KB(r.FileBytes),
			KB(r.Overhead()),
			strconv.FormatFloat(r.PerRecordOverhead(), 'f', 1, 64),
			Ratio(a.Ratio(r.Name)),
		)
	}
	return tbl.Render(w)
}

// RenderSizes writes labeled sizes in insertion order, each with its ratio to the first.
func RenderSizes(w io.Writer, title string, sizes *orderedmap.OrderedMap[string, int64], plain bool) error {
	tbl := &Table{
		Title:   title,
		Headers: []string{"Type", "Size (KB)", "Ratio"},
		Aligns:  []Align{AlignLeft, AlignRight, AlignRight},
		Plain:   plain,
	}

	var base int64
	for el := sizes.Front(); el != nil; el = el.Next() {
		if el == sizes.Front() {
			base = el.Value
		}
		r := 0.0
		if base > 0 {
			r = float64(el.Value) / float64(base)
		}
		tbl.AddRow(el.Key, KB(el.Value), Ratio(r))
	}
	return tbl.Render(w)
}

// RenderSample writes the logical footprint of a snapshot.
func RenderSample(w io.Writer, s types.StorageSample, symName, asymName string, plain bool) error {
	sizes := orderedmap.NewOrderedMap[string, int64]()
	sizes.Set("Plaintext", s.PlaintextBytes)
	sizes.Set(symName+" (hex)", s.SymmetricBytes)
	sizes.Set(asymName+" (hex)", s.AsymmetricBytes)
	return RenderSizes(w, fmt.Sprintf("Logical footprint (%d records)", s.Records), sizes, plain)
}
