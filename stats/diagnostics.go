package stats

import "math"

// InformationCriteria holds likelihood-based model comparison criteria.
type InformationCriteria struct {
	AIC    float64
	AICc   float64 // Corrected AIC for small samples
	BIC    float64
	LogLik float64
}

// GaussianLogLik returns the Gaussian log-likelihood of residuals at the
// maximum-likelihood variance sse/n.
func GaussianLogLik(residuals []float64) float64 {
	n := float64(len(residuals))
	if n == 0 {
		return math.NaN()
	}
	sse := 0.0
	for _, r := range residuals {
		sse += r * r
	}
	if sse == 0 {
		return math.Inf(1)
	}
	return -n / 2 * (math.Log(2*math.Pi) + math.Log(sse/n) + 1)
}

// CalculateIC calculates all information criteria.
// nParams counts every estimated parameter, including the residual variance.
func CalculateIC(logLik float64, nObs int, nParams int) InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	bic := -2*logLik + k*math.Log(n)

	aicc := math.Inf(1)
	if n-k-1 > 0 {
		aicc = aic + 2*k*(k+1)/(n-k-1)
	}

	return InformationCriteria{
		AIC:    aic,
		AICc:   aicc,
		BIC:    bic,
		LogLik: logLik,
	}
}

// DurbinWatson calculates the Durbin-Watson statistic of residuals ordered
// in time; the caller is responsible for the ordering. Values near 2 indicate no first-order autocorrelation, values
// below 2 positive and above 2 negative autocorrelation. It returns NaN for
// fewer than two residuals or all-zero residuals.
func DurbinWatson(residuals []float64) float64 {
	n := len(residuals)
	if n < 2 {
		return math.NaN()
	}

	numerator := 0.0
	denominator := 0.0

	for i := 1; i < n; i++ {
		diff := residuals[i] - residuals[i-1]
		numerator += diff * diff
	}

	for _, r := range residuals {
		denominator += r * r
	}

	if denominator == 0 {
		return math.NaN()
	}

	return numerator / denominator
}
