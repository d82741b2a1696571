// Package golda provides exploratory longitudinal data analysis for
// person-period panels.
//
// golda follows the exploratory workflow of "Applied Longitudinal Data
// Analysis": reshape a panel between its person-level and person-period
// layouts, fit one linear change model per person, and tabulate the
// per-person intercepts, slopes and fit statistics for comparison.
//
// # Features
//
//   - Wide (person-level) and long (person-period) reshaping with missing values
//   - CSV loading from files or URLs
//   - Descriptive statistics and pairwise correlations
//   - Ordinary least squares and Bayesian linear regression with interactions
//   - Concurrent per-person fitting with failure isolation
//   - Per-person summary tables of coefficients and derived statistics
//
// # Quick Start
//
// Reshape the NYS tolerance data and fit one trajectory per person:
//
//	wide, _ := panel.LoadCSV("tolerance.csv", nil)
//	long, _ := panel.ToLong(wide, panel.LongSpec{
//	    IDColumn:     "id",
//	    FixedColumns: []string{"male", "exposure"},
//	    Pattern:      panel.ColumnPattern{Prefix: "tol", TimeBase: 11},
//	    TimeColumn:   "time",
//	    ValueColumn:  "tolerance",
//	})
//
//	f := regress.Formula{Response: "tolerance", Predictors: []string{"time"}}
//	result, _ := grouped.RunPerEntity(ctx, long, regress.OLS(f), grouped.Options{Workers: 4})
//
//	summary, _ := posterior.BuildSummaryTable(result.Fits, nil,
//	    []posterior.Statistic{posterior.ResidualVariance, posterior.RSquared})
//	summary.WriteCSV(os.Stdout)
//
// # Packages
//
// The library is organized into the following packages:
//
//   - panel: Tables, CSV I/O, and wide/long reshaping
//   - stats: Descriptive statistics, correlations, and residual diagnostics
//   - regress: Formulas, OLS, and Bayesian linear regression
//   - grouped: Per-entity and pooled model runs
//   - posterior: Coefficient and statistic extraction, summary tables
//
// The lda command (cmd/lda) exposes the same workflow on the command line.
//
// # References
//
//   - Singer, J.D., & Willett, J.B. (2003). Applied Longitudinal Data Analysis
//   - Gelman, A., Hill, J., & Vehtari, A. (2020). Regression and Other Stories
package golda
