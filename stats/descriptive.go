// Package stats provides descriptive statistics for panel data.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/golda/panel"
)

// Description summarises one numeric column.
type Description struct {
	Name    string
	N       int // Non-missing observations
	Missing int
	Mean    float64
	SD      float64 // Sample standard deviation (n-1)
	Min     float64
	Q1      float64
	Median  float64
	Q3      float64
	Max     float64
}

// Describe summarises values, ignoring NaN. Statistics of an empty input are NaN.
func Describe(values []float64) Description {
	valid := dropNaN(values)
	d := Description{
		N:       len(valid),
		Missing: len(values) - len(valid),
	}
	if len(valid) == 0 {
		nan := math.NaN()
		d.Mean, d.SD, d.Min, d.Q1, d.Median, d.Q3, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}

	sort.Float64s(valid)
	d.Mean = stat.Mean(valid, nil)
	if len(valid) > 1 {
		d.SD = stat.StdDev(valid, nil)
	}
	d.Min = valid[0]
	d.Max = valid[len(valid)-1]
	d.Q1 = stat.Quantile(0.25, stat.Empirical, valid, nil)
	d.Q3 = stat.Quantile(0.75, stat.Empirical, valid, nil)
	d.Median = Median(valid)

	return d
}

// DescribeTable summarises the named columns. With no columns given, every
// numeric column is described.
func DescribeTable(table *panel.Table, columns ...string) ([]Description, error) {
	if len(columns) == 0 {
		columns = table.Columns
	}

	out := make([]Description, 0, len(columns))
	for _, c := range columns {
		values, err := table.Column(c)
		if err != nil {
			return nil, err
		}
		d := Describe(values)
		d.Name = c
		out = append(out, d)
	}
	return out, nil
}

// Median returns the median of values, ignoring NaN.
func Median(values []float64) float64 {
	sorted := dropNaN(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// MADSD returns the median absolute deviation scaled to be consistent with
// the standard deviation of a normal distribution.
func MADSD(values []float64) float64 {
	med := Median(values)
	if math.IsNaN(med) {
		return math.NaN()
	}
	dev := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			dev = append(dev, math.Abs(v-med))
		}
	}
	return 1.4826 * Median(dev)
}

// dropNaN returns a copy of values without NaN entries.
func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
