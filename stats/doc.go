// Package stats provides descriptive statistics and model diagnostics for
// panel data.
//
// # Descriptive Statistics
//
// Summarise the tolerance measurements of a wide table:
//
//	desc, err := stats.DescribeTable(wide, "tol11", "tol12", "tol13", "tol14", "tol15")
//	for _, d := range desc {
//	    fmt.Printf("%s: mean=%.2f sd=%.2f\n", d.Name, d.Mean, d.SD)
//	}
//
// Missing values (NaN) are ignored and counted in Description.Missing.
//
// # Correlations
//
// Pairwise-complete Pearson correlations across waves:
//
//	corr, err := stats.Correlations(wide, "tol11", "tol12", "tol13", "tol14", "tol15")
//	r, _ := corr.At("tol11", "tol15")
//
// # Diagnostics
//
//	ll := stats.GaussianLogLik(residuals)
//	ic := stats.CalculateIC(ll, n, k+1)
//	dw := stats.DurbinWatson(residuals)
//	r1 := stats.LagOneAutocorrelation(residuals)
package stats
