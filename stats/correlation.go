package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/golda/panel"
)

// Correlation returns the Pearson correlation of x and y over the pairs
// where neither value is missing. Fewer than two complete pairs, or a
// constant input, yield NaN.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) {
		return math.NaN()
	}

	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}

	return stat.Correlation(xs, ys, nil)
}

// CorrelationMatrix holds pairwise correlations between columns.
type CorrelationMatrix struct {
	Columns []string
	Values  *mat.SymDense
}

// At returns the correlation between two named columns.
func (c *CorrelationMatrix) At(a, b string) (float64, error) {
	i, j := -1, -1
	for k, name := range c.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), fmt.Errorf("%w: %q or %q", panel.ErrUnknownColumn, a, b)
	}
	return c.Values.At(i, j), nil
}

// Correlations computes pairwise-complete Pearson correlations between the
// named columns, e.g. tolerance measured at each wave of a wide table.
func Correlations(table *panel.Table, columns ...string) (*CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = table.Columns
	}

	data := make([][]float64, len(columns))
	for k, c := range columns {
		values, err := table.Column(c)
		if err != nil {
			return nil, err
		}
		data[k] = values
	}

	m := mat.NewSymDense(len(columns), nil)
	for i := range columns {
		m.SetSym(i, i, 1)
		for j := i + 1; j < len(columns); j++ {
			m.SetSym(i, j, Correlation(data[i], data[j]))
		}
	}

	return &CorrelationMatrix{Columns: columns, Values: m}, nil
}
