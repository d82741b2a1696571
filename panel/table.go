// Package panel provides person-level and person-period tables.
package panel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownColumn is returned when a named column is not present in a table.
var ErrUnknownColumn = errors.New("unknown column")

// Table is a rectangular dataset keyed by a string id column.
//
// Every other column is numeric. Missing cells are stored as NaN.
type Table struct {
	IDColumn string      // Name of the key column
	Columns  []string    // Numeric column names, in order
	IDs      []string    // Key value per row
	Rows     [][]float64 // Rows[i][j] is Columns[j] for row i
}

// New creates an empty table with the given id column and numeric columns.
func New(idColumn string, columns ...string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		IDColumn: idColumn,
		Columns:  cols,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.IDs)
}

// Append adds a row. The values must follow the table's column order.
func (t *Table) Append(id string, values ...float64) error {
	if len(values) != len(t.Columns) {
		return fmt.Errorf("row %q has %d values, table has %d columns", id, len(values), len(t.Columns))
	}
	row := make([]float64, len(values))
	copy(row, values)
	t.IDs = append(t.IDs, id)
	t.Rows = append(t.Rows, row)
	return nil
}

// Index returns the position of a numeric column, or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether name is the id column or a numeric column.
func (t *Table) HasColumn(name string) bool {
	return name == t.IDColumn || t.Index(name) >= 0
}

// Column returns a copy of the named numeric column.
func (t *Table) Column(name string) ([]float64, error) {
	j := t.Index(name)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[j]
	}
	return out, nil
}

// Value returns the cell at row i of the named column.
func (t *Table) Value(i int, name string) (float64, error) {
	j := t.Index(name)
	if j < 0 {
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return t.Rows[i][j], nil
}

// Select returns a copy holding only the named columns, in the given order.
func (t *Table) Select(columns ...string) (*Table, error) {
	idx := make([]int, len(columns))
	for k, c := range columns {
		idx[k] = t.Index(c)
		if idx[k] < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
	}

	out := New(t.IDColumn, columns...)
	out.IDs = make([]string, len(t.IDs))
	copy(out.IDs, t.IDs)
	out.Rows = make([][]float64, len(t.Rows))
	for i, row := range t.Rows {
		sel := make([]float64, len(idx))
		for k, j := range idx {
			sel[k] = row[j]
		}
		out.Rows[i] = sel
	}
	return out, nil
}

// Subset returns a copy holding the given row positions, in the given order.
func (t *Table) Subset(rows []int) *Table {
	out := New(t.IDColumn, t.Columns...)
	out.IDs = make([]string, 0, len(rows))
	out.Rows = make([][]float64, 0, len(rows))
	for _, i := range rows {
		row := make([]float64, len(t.Rows[i]))
		copy(row, t.Rows[i])
		out.IDs = append(out.IDs, t.IDs[i])
		out.Rows = append(out.Rows, row)
	}
	return out
}

// SortWithinIDs returns a copy whose rows are grouped by id, in order of
// first appearance, and ordered by column within each id. NaN sorts last and
// ties keep their input order.
func (t *Table) SortWithinIDs(column string) (*Table, error) {
	j := t.Index(column)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	rank := make(map[string]int)
	for _, id := range t.IDs {
		if _, ok := rank[id]; !ok {
			rank[id] = len(rank)
		}
	}

	rows := make([]int, len(t.Rows))
	for i := range rows {
		rows[i] = i
	}
	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rank[t.IDs[rows[a]]], rank[t.IDs[rows[b]]]
		if ra != rb {
			return ra < rb
		}
		va, vb := t.Rows[rows[a]][j], t.Rows[rows[b]][j]
		if math.IsNaN(vb) {
			return !math.IsNaN(va)
		}
		return va < vb
	})
	return t.Subset(rows), nil
}

// Filter returns a copy holding the rows for which keep returns true.
func (t *Table) Filter(keep func(id string, row []float64) bool) *Table {
	var rows []int
	for i, row := range t.Rows {
		if keep(t.IDs[i], row) {
			rows = append(rows, i)
		}
	}
	return t.Subset(rows)
}

// WithColumn returns a copy with an extra column computed from each row.
// An existing column of the same name is replaced.
func (t *Table) WithColumn(name string, fn func(id string, row []float64) float64) *Table {
	out := t.Clone()
	j := out.Index(name)
	if j < 0 {
		out.Columns = append(out.Columns, name)
	}
	for i, row := range t.Rows {
		v := fn(t.IDs[i], row)
		if j < 0 {
			out.Rows[i] = append(out.Rows[i], v)
		} else {
			out.Rows[i][j] = v
		}
	}
	return out
}

// Center returns a copy with a mean-centred version of column stored as name.
// NaN cells are ignored when computing the mean and stay NaN.
func (t *Table) Center(column, name string) (*Table, error) {
	j := t.Index(column)
	if j < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	sum, n := 0.0, 0
	for _, row := range t.Rows {
		if !math.IsNaN(row[j]) {
			sum += row[j]
			n++
		}
	}
	mean := 0.0
	if n > 0 {
		mean = sum / float64(n)
	}

	return t.WithColumn(name, func(_ string, row []float64) float64 {
		return row[j] - mean
	}), nil
}

// Clone creates a deep copy of the table.
func (t *Table) Clone() *Table {
	rows := make([]int, len(t.Rows))
	for i := range rows {
		rows[i] = i
	}
	return t.Subset(rows)
}

// UniqueIDs returns the distinct ids in first-appearance order.
func (t *Table) UniqueIDs() []string {
	seen := make(map[string]bool, len(t.IDs))
	var ids []string
	for _, id := range t.IDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// CompareIDs orders entity ids. Numeric ids sort before all other ids and
// compare by value, with equal values ("1" and "1.0") broken by string
// order. Non-numeric ids compare as strings. The order is total, so sorting
// any set of ids gives one result.
func CompareIDs(a, b string) int {
	fa, numA := numericID(a)
	fb, numB := numericID(b)
	switch {
	case numA && !numB:
		return -1
	case !numA && numB:
		return 1
	case numA && numB:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
	}
	return strings.Compare(a, b)
}

func numericID(id string) (float64, bool) {
	f, err := strconv.ParseFloat(id, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
