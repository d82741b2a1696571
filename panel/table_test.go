package panel

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	table := New("id", "age", "y")
	require.NoError(t, table.Append("2", 11, 1))
	require.NoError(t, table.Append("1", 11, 2))
	require.NoError(t, table.Append("2", 12, 3))
	require.NoError(t, table.Append("1", 12, math.NaN()))
	return table
}

func TestAppendArity(t *testing.T) {
	table := New("id", "a", "b")
	require.Error(t, table.Append("1", 1))
	require.Equal(t, 0, table.Len())
}

func TestColumnAndValue(t *testing.T) {
	table := sampleTable(t)

	age, err := table.Column("age")
	require.NoError(t, err)
	require.Equal(t, []float64{11, 11, 12, 12}, age)

	v, err := table.Value(2, "y")
	require.NoError(t, err)
	require.Equal(t, 3.0, v)

	_, err = table.Column("nope")
	require.ErrorIs(t, err, ErrUnknownColumn)
	require.True(t, table.HasColumn("id"))
	require.False(t, table.HasColumn("nope"))
}

func TestSelectCopies(t *testing.T) {
	table := sampleTable(t)

	sel, err := table.Select("y")
	require.NoError(t, err)
	require.Equal(t, []string{"y"}, sel.Columns)
	sel.Rows[0][0] = 99
	require.Equal(t, 1.0, table.Rows[0][1])

	_, err = table.Select("y", "zzz")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFilterAndUniqueIDs(t *testing.T) {
	table := sampleTable(t)
	require.Equal(t, []string{"2", "1"}, table.UniqueIDs())

	ones := table.Filter(func(id string, _ []float64) bool { return id == "1" })
	require.Equal(t, 2, ones.Len())
	require.Equal(t, []string{"1", "1"}, ones.IDs)
}

func TestWithColumnAndCenter(t *testing.T) {
	table := sampleTable(t)

	timed := table.WithColumn("time", func(_ string, row []float64) float64 { return row[0] - 11 })
	require.Equal(t, []string{"age", "y", "time"}, timed.Columns)
	require.Equal(t, []string{"age", "y"}, table.Columns)
	tm, err := timed.Column("time")
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 1, 1}, tm)

	centred, err := table.Center("y", "y")
	require.NoError(t, err)
	require.Len(t, centred.Columns, 2)
	y, err := centred.Column("y")
	require.NoError(t, err)
	require.Equal(t, []float64{-1, 0, 1}, y[:3])
	require.True(t, math.IsNaN(y[3]))

	_, err = table.Center("nope", "x")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestSortWithinIDs(t *testing.T) {
	long := New("id", "time", "y")
	require.NoError(t, long.Append("b", 2, 22))
	require.NoError(t, long.Append("a", 1, 11))
	require.NoError(t, long.Append("b", math.NaN(), 99))
	require.NoError(t, long.Append("b", 0, 20))
	require.NoError(t, long.Append("a", 0, 10))

	sorted, err := long.SortWithinIDs("time")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "b", "b", "a", "a"}, sorted.IDs)
	y, err := sorted.Column("y")
	require.NoError(t, err)
	require.Equal(t, []float64{20, 22, 99, 10, 11}, y)

	// The input is untouched.
	require.Equal(t, 22.0, long.Rows[0][1])

	_, err = long.SortWithinIDs("age")
	require.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCompareIDs(t *testing.T) {
	ids := []string{"978", "9", "1105", "45", "b", "a"}
	sort.Slice(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
	require.Equal(t, []string{"9", "45", "978", "1105", "a", "b"}, ids)
}

func TestCompareIDsIsTotal(t *testing.T) {
	ids := []string{"2", "10", "1a", "1.0", "1", "NaN", "b", "-3"}
	for _, a := range ids {
		require.Zero(t, CompareIDs(a, a), a)
		for _, b := range ids {
			require.Equal(t, -CompareIDs(b, a), CompareIDs(a, b), "%s vs %s", a, b)
			for _, c := range ids {
				if CompareIDs(a, b) < 0 && CompareIDs(b, c) < 0 {
					require.Negative(t, CompareIDs(a, c), "%s < %s < %s", a, b, c)
				}
			}
		}
	}

	sort.Slice(ids, func(i, j int) bool { return CompareIDs(ids[i], ids[j]) < 0 })
	require.Equal(t, []string{"-3", "1", "1.0", "2", "10", "1a", "NaN", "b"}, ids)
}
