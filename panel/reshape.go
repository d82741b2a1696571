package panel

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrMalformedColumnName is returned when a value column carries the
	// pattern prefix but its suffix is not an integer time index.
	ErrMalformedColumnName = errors.New("malformed column name")

	// ErrDuplicateTime is returned when an entity has more than one row for
	// the same time point.
	ErrDuplicateTime = errors.New("duplicate time for entity")

	// ErrDuplicateID is returned when a person-level table has more than
	// one row for the same entity.
	ErrDuplicateID = errors.New("duplicate entity id")
)

// ColumnPattern names the per-time value columns of a wide table,
// e.g. tol11..tol15 is {Prefix: "tol"}.
type ColumnPattern struct {
	Prefix   string // Prefix shared by every value column
	TimeBase int    // Subtracted from the parsed suffix to obtain the time
}

// Name returns the value column name for time t.
func (p ColumnPattern) Name(t int) string {
	return p.Prefix + strconv.Itoa(t+p.TimeBase)
}

// Match reports whether column is a value column and returns its time.
// Columns without the prefix do not match. A prefixed column whose suffix is
// not a canonical integer (no sign, no leading zeros) fails with
// ErrMalformedColumnName, since Name could not reproduce it.
func (p ColumnPattern) Match(column string) (int, bool, error) {
	if !strings.HasPrefix(column, p.Prefix) {
		return 0, false, nil
	}
	suffix := strings.TrimPrefix(column, p.Prefix)
	n, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q has suffix %q", ErrMalformedColumnName, column, suffix)
	}
	if p.Name(n-p.TimeBase) != column {
		return 0, false, fmt.Errorf("%w: %q is not in canonical form %q", ErrMalformedColumnName, column, p.Name(n-p.TimeBase))
	}
	return n - p.TimeBase, true, nil
}

// LongSpec describes a wide-to-long conversion.
type LongSpec struct {
	IDColumn     string        // Key column of the wide table
	FixedColumns []string      // Time-invariant covariates carried to every row
	Pattern      ColumnPattern // Value column naming scheme
	TimeColumn   string        // Name of the derived time column (default: "time")
	ValueColumn  string        // Name of the outcome column (default: Pattern.Prefix)
}

// WideSpec describes a long-to-wide conversion.
type WideSpec struct {
	IDColumn    string        // Key column of the long table
	TimeColumn  string        // Column holding the time index
	ValueColumn string        // Column spread into one column per time
	Pattern     ColumnPattern // Naming scheme for the spread columns
}

func (s LongSpec) withDefaults() LongSpec {
	if s.TimeColumn == "" {
		s.TimeColumn = "time"
	}
	if s.ValueColumn == "" {
		s.ValueColumn = s.Pattern.Prefix
	}
	return s
}

// ToLong converts a person-level table into a person-period table.
//
// Each wide row yields one long row per value column, ordered by time, with
// columns (time, fixed..., value). Wide ids must be unique. Missing values are kept as NaN so that
// ToWide can restore the original table. Columns that are neither fixed nor
// value columns are dropped.
func ToLong(wide *Table, spec LongSpec) (*Table, error) {
	spec = spec.withDefaults()
	if spec.IDColumn != "" && spec.IDColumn != wide.IDColumn {
		return nil, fmt.Errorf("%w: id column %q (table is keyed by %q)", ErrUnknownColumn, spec.IDColumn, wide.IDColumn)
	}

	fixedIdx := make([]int, len(spec.FixedColumns))
	isFixed := make(map[string]bool, len(spec.FixedColumns))
	for k, c := range spec.FixedColumns {
		fixedIdx[k] = wide.Index(c)
		if fixedIdx[k] < 0 {
			return nil, fmt.Errorf("%w: fixed column %q", ErrUnknownColumn, c)
		}
		isFixed[c] = true
	}

	type valueColumn struct {
		index int
		time  int
	}
	var valueCols []valueColumn
	for j, c := range wide.Columns {
		if isFixed[c] {
			continue
		}
		t, ok, err := spec.Pattern.Match(c)
		if err != nil {
			return nil, err
		}
		if ok {
			valueCols = append(valueCols, valueColumn{index: j, time: t})
		}
	}
	if len(valueCols) == 0 {
		return nil, fmt.Errorf("%w: no columns with prefix %q", ErrUnknownColumn, spec.Pattern.Prefix)
	}
	sort.SliceStable(valueCols, func(a, b int) bool {
		return valueCols[a].time < valueCols[b].time
	})
	for k := 1; k < len(valueCols); k++ {
		if valueCols[k].time == valueCols[k-1].time {
			return nil, fmt.Errorf("%w: two value columns for time %d", ErrDuplicateTime, valueCols[k].time)
		}
	}

	columns := make([]string, 0, len(spec.FixedColumns)+2)
	columns = append(columns, spec.TimeColumn)
	columns = append(columns, spec.FixedColumns...)
	columns = append(columns, spec.ValueColumn)

	long := New(wide.IDColumn, columns...)
	long.IDs = make([]string, 0, wide.Len()*len(valueCols))
	long.Rows = make([][]float64, 0, wide.Len()*len(valueCols))

	seen := make(map[string]bool, wide.Len())
	for i, row := range wide.Rows {
		id := wide.IDs[i]
		if seen[id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
		for _, vc := range valueCols {
			out := make([]float64, 0, len(columns))
			out = append(out, float64(vc.time))
			for _, j := range fixedIdx {
				out = append(out, row[j])
			}
			out = append(out, row[vc.index])
			long.IDs = append(long.IDs, id)
			long.Rows = append(long.Rows, out)
		}
	}

	return long, nil
}

// ToWide converts a person-period table back into a person-level table.
//
// Entities appear in first-appearance order. The output columns are the
// long table's remaining columns (taken from each entity's first row)
// followed by one value column per distinct time, ascending.
func ToWide(long *Table, spec WideSpec) (*Table, error) {
	if spec.IDColumn != "" && spec.IDColumn != long.IDColumn {
		return nil, fmt.Errorf("%w: id column %q (table is keyed by %q)", ErrUnknownColumn, spec.IDColumn, long.IDColumn)
	}
	timeIdx := long.Index(spec.TimeColumn)
	if timeIdx < 0 {
		return nil, fmt.Errorf("%w: time column %q", ErrUnknownColumn, spec.TimeColumn)
	}
	valueIdx := long.Index(spec.ValueColumn)
	if valueIdx < 0 {
		return nil, fmt.Errorf("%w: value column %q", ErrUnknownColumn, spec.ValueColumn)
	}

	var fixedIdx []int
	var fixed []string
	for j, c := range long.Columns {
		if j != timeIdx && j != valueIdx {
			fixedIdx = append(fixedIdx, j)
			fixed = append(fixed, c)
		}
	}

	type entity struct {
		fixed  []float64
		values map[int]float64
	}
	entities := make(map[string]*entity)
	var order []string
	timeSet := make(map[int]bool)

	for i, row := range long.Rows {
		tf := row[timeIdx]
		if math.IsNaN(tf) || tf != math.Trunc(tf) {
			return nil, fmt.Errorf("%w: time %v for entity %q is not an integer", ErrMalformedColumnName, tf, long.IDs[i])
		}
		t := int(tf)

		id := long.IDs[i]
		e, ok := entities[id]
		if !ok {
			e = &entity{values: make(map[int]float64)}
			for _, j := range fixedIdx {
				e.fixed = append(e.fixed, row[j])
			}
			entities[id] = e
			order = append(order, id)
		}
		if _, dup := e.values[t]; dup {
			return nil, fmt.Errorf("%w: entity %q, time %d", ErrDuplicateTime, id, t)
		}
		e.values[t] = row[valueIdx]
		timeSet[t] = true
	}

	times := make([]int, 0, len(timeSet))
	for t := range timeSet {
		times = append(times, t)
	}
	sort.Ints(times)

	columns := make([]string, 0, len(fixed)+len(times))
	columns = append(columns, fixed...)
	for _, t := range times {
		columns = append(columns, spec.Pattern.Name(t))
	}

	wide := New(long.IDColumn, columns...)
	for _, id := range order {
		e := entities[id]
		row := make([]float64, 0, len(columns))
		row = append(row, e.fixed...)
		for _, t := range times {
			v, ok := e.values[t]
			if !ok {
				v = math.NaN()
			}
			row = append(row, v)
		}
		wide.IDs = append(wide.IDs, id)
		wide.Rows = append(wide.Rows, row)
	}

	return wide, nil
}
