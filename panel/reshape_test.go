package panel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toleranceSpec() LongSpec {
	return LongSpec{
		IDColumn:     "id",
		FixedColumns: []string{"male", "exposure"},
		Pattern:      ColumnPattern{Prefix: "tol"},
		TimeColumn:   "age",
		ValueColumn:  "tolerance",
	}
}

func loadTolerance(t *testing.T) *Table {
	t.Helper()
	wide, err := LoadCSV("testdata/tolerance.csv", nil)
	require.NoError(t, err)
	return wide
}

// requireSameTable compares two tables ignoring column order.
func requireSameTable(t *testing.T, want, got *Table) {
	t.Helper()
	require.Equal(t, want.IDColumn, got.IDColumn)
	require.Equal(t, want.IDs, got.IDs)
	require.ElementsMatch(t, want.Columns, got.Columns)
	for _, c := range want.Columns {
		wc, err := want.Column(c)
		require.NoError(t, err)
		gc, err := got.Column(c)
		require.NoError(t, err)
		for i := range wc {
			if math.IsNaN(wc[i]) {
				assert.True(t, math.IsNaN(gc[i]), "column %s row %d", c, i)
				continue
			}
			assert.Equal(t, wc[i], gc[i], "column %s row %d", c, i)
		}
	}
}

func TestColumnPatternMatch(t *testing.T) {
	p := ColumnPattern{Prefix: "tol"}

	tm, ok, err := p.Match("tol13")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 13, tm)

	_, ok, err = p.Match("male")
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = p.Match("tolX")
	require.ErrorIs(t, err, ErrMalformedColumnName)

	based := ColumnPattern{Prefix: "tol", TimeBase: 11}
	tm, ok, err = based.Match("tol15")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, tm)
	require.Equal(t, "tol15", based.Name(4))
}

func TestToLongSingleEntity(t *testing.T) {
	wide := New("id", "tol11", "tol12", "tol13", "tol14", "tol15")
	require.NoError(t, wide.Append("9", 2, 1, 1, 1, 1))

	long, err := ToLong(wide, LongSpec{IDColumn: "id", Pattern: ColumnPattern{Prefix: "tol"}})
	require.NoError(t, err)

	require.Equal(t, []string{"time", "tol"}, long.Columns)
	require.Equal(t, []string{"9", "9", "9", "9", "9"}, long.IDs)
	want := [][]float64{{11, 2}, {12, 1}, {13, 1}, {14, 1}, {15, 1}}
	require.Equal(t, want, long.Rows)

	back, err := ToWide(long, WideSpec{IDColumn: "id", TimeColumn: "time", ValueColumn: "tol", Pattern: ColumnPattern{Prefix: "tol"}})
	require.NoError(t, err)
	requireSameTable(t, wide, back)
}

func TestToLongTolerance(t *testing.T) {
	wide := loadTolerance(t)

	long, err := ToLong(wide, toleranceSpec())
	require.NoError(t, err)

	require.Equal(t, 16*5, long.Len())
	require.Equal(t, []string{"age", "male", "exposure", "tolerance"}, long.Columns)

	// Covariates repeat across an entity's rows.
	for i := 0; i < 5; i++ {
		require.Equal(t, "9", long.IDs[i])
		require.Equal(t, float64(11+i), long.Rows[i][0])
		require.Equal(t, 0.0, long.Rows[i][1])
		require.Equal(t, 1.54, long.Rows[i][2])
	}
	require.Equal(t, 2.23, long.Rows[0][3])
	require.Equal(t, 2.66, long.Rows[4][3])
}

func TestRoundTripTolerance(t *testing.T) {
	wide := loadTolerance(t)
	spec := toleranceSpec()

	long, err := ToLong(wide, spec)
	require.NoError(t, err)

	back, err := ToWide(long, WideSpec{
		IDColumn:    spec.IDColumn,
		TimeColumn:  spec.TimeColumn,
		ValueColumn: spec.ValueColumn,
		Pattern:     spec.Pattern,
	})
	require.NoError(t, err)
	requireSameTable(t, wide, back)
}

func TestRoundTripWithTimeBaseAndMissing(t *testing.T) {
	wide := New("id", "w1", "x", "w2", "w3")
	require.NoError(t, wide.Append("b", 1, 10, math.NaN(), 3))
	require.NoError(t, wide.Append("a", 4, 20, 5, 6))

	pattern := ColumnPattern{Prefix: "w", TimeBase: 1}
	long, err := ToLong(wide, LongSpec{FixedColumns: []string{"x"}, Pattern: pattern})
	require.NoError(t, err)
	require.Equal(t, 6, long.Len())

	times, err := long.Column("time")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2, 0, 1, 2}, times)

	back, err := ToWide(long, WideSpec{TimeColumn: "time", ValueColumn: "w", Pattern: pattern})
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a"}, back.IDs)
	requireSameTable(t, wide, back)
}

func TestToLongMalformedColumn(t *testing.T) {
	wide := New("id", "tol11", "tolx")
	require.NoError(t, wide.Append("1", 1, 2))

	_, err := ToLong(wide, LongSpec{Pattern: ColumnPattern{Prefix: "tol"}})
	require.ErrorIs(t, err, ErrMalformedColumnName)
}

func TestToLongFixedColumnSharingPrefix(t *testing.T) {
	wide := New("id", "tol11", "tol12", "tolerant")
	require.NoError(t, wide.Append("1", 1, 2, 1))

	long, err := ToLong(wide, LongSpec{FixedColumns: []string{"tolerant"}, Pattern: ColumnPattern{Prefix: "tol"}})
	require.NoError(t, err)
	require.Equal(t, 2, long.Len())
}

func TestToLongUnknownFixedColumn(t *testing.T) {
	wide := New("id", "tol11")
	require.NoError(t, wide.Append("1", 1))

	_, err := ToLong(wide, LongSpec{FixedColumns: []string{"male"}, Pattern: ColumnPattern{Prefix: "tol"}})
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestToWideDuplicateTime(t *testing.T) {
	long := New("id", "time", "y")
	require.NoError(t, long.Append("1", 1, 5))
	require.NoError(t, long.Append("1", 2, 6))
	require.NoError(t, long.Append("1", 1, 7))

	_, err := ToWide(long, WideSpec{TimeColumn: "time", ValueColumn: "y", Pattern: ColumnPattern{Prefix: "y"}})
	require.ErrorIs(t, err, ErrDuplicateTime)
}

func TestToLongDuplicateID(t *testing.T) {
	wide := New("id", "tol11", "tol12")
	require.NoError(t, wide.Append("1", 1, 2))
	require.NoError(t, wide.Append("2", 3, 4))
	require.NoError(t, wide.Append("1", 5, 6))

	_, err := ToLong(wide, LongSpec{Pattern: ColumnPattern{Prefix: "tol"}})
	require.ErrorIs(t, err, ErrDuplicateID)
	require.ErrorContains(t, err, `"1"`)
}

func TestToLongNonCanonicalSuffix(t *testing.T) {
	for _, col := range []string{"w01", "w+2", "w 3"} {
		wide := New("id", "w4", col)
		require.NoError(t, wide.Append("1", 1, 2))

		_, err := ToLong(wide, LongSpec{Pattern: ColumnPattern{Prefix: "w"}})
		require.ErrorIs(t, err, ErrMalformedColumnName, col)
	}

	_, _, err := ColumnPattern{Prefix: "tol", TimeBase: 11}.Match("tol012")
	require.ErrorIs(t, err, ErrMalformedColumnName)
}

func TestToLongOrdersRowsByTime(t *testing.T) {
	wide := New("id", "tol13", "male", "tol11", "tol12")
	require.NoError(t, wide.Append("9", 3, 0, 1, 2))

	long, err := ToLong(wide, LongSpec{
		FixedColumns: []string{"male"},
		Pattern:      ColumnPattern{Prefix: "tol", TimeBase: 11},
		ValueColumn:  "y",
	})
	require.NoError(t, err)

	times, err := long.Column("time")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 1, 2}, times)
	values, err := long.Column("y")
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, values)
}

func TestToWideNonIntegerTime(t *testing.T) {
	long := New("id", "time", "y")
	require.NoError(t, long.Append("1", 1.5, 5))

	_, err := ToWide(long, WideSpec{TimeColumn: "time", ValueColumn: "y", Pattern: ColumnPattern{Prefix: "y"}})
	require.ErrorIs(t, err, ErrMalformedColumnName)
}

func TestToWideUnbalanced(t *testing.T) {
	long := New("id", "time", "y")
	require.NoError(t, long.Append("1", 1, 5))
	require.NoError(t, long.Append("1", 2, 6))
	require.NoError(t, long.Append("2", 2, 7))

	wide, err := ToWide(long, WideSpec{TimeColumn: "time", ValueColumn: "y", Pattern: ColumnPattern{Prefix: "y"}})
	require.NoError(t, err)
	require.Equal(t, []string{"y1", "y2"}, wide.Columns)
	require.True(t, math.IsNaN(wide.Rows[1][0]))
	require.Equal(t, 7.0, wide.Rows[1][1])
}
