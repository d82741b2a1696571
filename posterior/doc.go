// Package posterior extracts coefficient and model summaries from fitted
// regressions and tabulates them per entity.
//
// # Extraction
//
//	coefs, err := posterior.ExtractCoefficients(model, []string{"(Intercept)", "time"})
//	sigma2, err := posterior.ExtractDerived(model, posterior.ResidualVariance)
//	r2, err := posterior.ExtractDerived(model, posterior.RSquared)
//
// R² uses one policy for every model: the median of the posterior R² draws
// when the model has a posterior, its classical point estimate otherwise.
//
// # Summary Tables
//
//	summary, err := posterior.BuildSummaryTable(result.Fits,
//	    []string{"(Intercept)", "time"},
//	    []posterior.Statistic{posterior.ResidualVariance, posterior.RSquared})
//	err = summary.WriteCSV(os.Stdout)
//
// The CSV columns are stable:
//
//	id, n, intercept_est, intercept_sd, time_est, time_sd, sigma2, r2
//
// Coefficient columns are <name>_est and <name>_sd, where "(Intercept)" is
// written as "intercept" and an interaction "a:b" as "a_x_b". Statistic
// columns use the Statistic value (sigma2, r2, sigma, aic, bic, dw, acf1).
package posterior
