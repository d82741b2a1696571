package stats

import "math"

// ACF returns the sample autocorrelations of values for lags 0 to maxLag,
// e.g. of one person's residuals sorted by time. maxLag is capped at
// len(values)-1. It returns nil for empty, constant or incomplete input.
func ACF(values []float64, maxLag int) []float64 {
	n := len(values)
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 0 {
		return nil
	}

	mean := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			return nil
		}
		mean += v
	}
	mean /= float64(n)

	variance := 0.0
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	if variance == 0 {
		return nil
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (values[i] - mean) * (values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf
}

// LagOneAutocorrelation returns the lag-1 autocorrelation of values, or NaN
// when ACF is undefined.
func LagOneAutocorrelation(values []float64) float64 {
	acf := ACF(values, 1)
	if len(acf) < 2 {
		return math.NaN()
	}
	return acf[1]
}
