package model

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
)

// Column is one feature's values across the row window. Observed holds the
// row indices that carry a real value; a nil bitmap means every row does.
// Rows outside Observed take the dataset's tare value for the feature.
type Column struct {
	Values   []float64
	Observed *roaring.Bitmap
}

// IsObserved reports whether the row carries a real value.
func (c Column) IsObserved(row int) bool {
	return c.Observed == nil || c.Observed.Contains(uint32(row))
}

// ObservedCount returns the number of rows carrying a real value.
func (c Column) ObservedCount() int {
	if c.Observed == nil {
		return len(c.Values)
	}
	return int(c.Observed.GetCardinality())
}

// Value returns the effective cell value for the row, falling back to tare
// for unobserved rows.
func (c Column) Value(row int, tare float64) float64 {
	if c.IsObserved(row) {
		return c.Values[row]
	}
	return tare
}

// Dataset is a column-major window of rows with one tare value per feature.
// It is immutable once built; the kernel and proposer only read it.
type Dataset struct {
	cols []Column
	tare []float64
	rows int
}

// NewDataset builds a dataset over the given columns. tare must hold one
// default value per column and every column must span rows values.
func NewDataset(cols []Column, tare []float64, rows int) (*Dataset, error) {
	if len(cols) != len(tare) {
		return nil, fmt.Errorf("model: %d columns but %d tare values", len(cols), len(tare))
	}
	for f, c := range cols {
		if len(c.Values) != rows {
			return nil, fmt.Errorf("model: column %d: %w", f, &RowCountError{Expected: rows, Actual: len(c.Values)})
		}
		if c.Observed != nil && !c.Observed.IsEmpty() && int(c.Observed.Maximum()) >= rows {
			return nil, fmt.Errorf("model: column %d: observed row %d out of range", f, c.Observed.Maximum())
		}
		if math.IsNaN(tare[f]) || math.IsInf(tare[f], 0) {
			return nil, fmt.Errorf("model: column %d: tare value must be finite, got %v", f, tare[f])
		}
	}
	return &Dataset{cols: cols, tare: tare, rows: rows}, nil
}

// Rows returns the number of rows in the window.
func (d *Dataset) Rows() int {
	return d.rows
}

// Features returns the number of columns.
func (d *Dataset) Features() int {
	return len(d.cols)
}

// Column returns the column for the feature. The returned value shares
// backing storage with the dataset and must not be mutated.
func (d *Dataset) Column(f FeatureID) Column {
	return d.cols[f]
}

// Tare returns the default cell value for the feature.
func (d *Dataset) Tare(f FeatureID) float64 {
	return d.tare[f]
}

// TareRow returns the full tare row. The slice is live and must not be
// mutated.
func (d *Dataset) TareRow() []float64 {
	return d.tare
}

// GroupStatsUnder folds the feature's column into per-group statistics under
// the given row partition. Unobserved cells enter as tare values, folded in
// per group rather than per row. Group labels must lie in [0, groupCount).
func (d *Dataset) GroupStatsUnder(f FeatureID, groups []GroupID, groupCount int) ([]GroupStats, error) {
	if int(f) >= len(d.cols) {
		return nil, ErrFeatureRange
	}
	if len(groups) != d.rows {
		return nil, &RowCountError{Expected: d.rows, Actual: len(groups)}
	}
	stats := make([]GroupStats, groupCount)
	col := d.cols[f]
	if col.Observed == nil {
		for r, g := range groups {
			stats[g].Add(col.Values[r])
		}
		return stats, nil
	}

	observed := make([]float64, groupCount)
	it := col.Observed.Iterator()
	for it.HasNext() {
		r := it.Next()
		g := groups[r]
		stats[g].Add(col.Values[r])
		observed[g]++
	}
	sizes := make([]float64, groupCount)
	for _, g := range groups {
		sizes[g]++
	}
	tare := d.tare[f]
	for g := range stats {
		if n := sizes[g] - observed[g]; n > 0 {
			stats[g].AddRepeated(tare, n)
		}
	}
	return stats, nil
}
