// Package regress implements linear regression for panel data.
//
// Models are specified with a Formula value rather than a parsed string:
//
//	// tolerance ~ 1 + time + male + time:male
//	f := regress.Formula{
//	    Response:     "tolerance",
//	    Predictors:   []string{"time", "male"},
//	    Interactions: []regress.Interaction{{A: "time", B: "male"}},
//	}
//
// Coefficients are named "(Intercept)", the predictor column names, and
// "A:B" for interactions. Rows with a missing value in any column the
// formula reads are dropped before fitting.
//
// # Ordinary Least Squares
//
//	model, err := regress.FitOLS(ctx, long, f)
//	slope, _ := model.Coefficient("time")
//	fmt.Println(slope.Estimate, slope.Spread) // estimate and standard error
//	fmt.Println(model.AIC(), model.BIC())
//
// # Bayesian Linear Regression
//
// FitBayes samples the exact posterior of the Gaussian linear model under
// the reference prior p(beta, sigma²) ∝ 1/sigma². Coefficient estimates are
// posterior medians and spreads are MAD_SD:
//
//	cfg := regress.DefaultSamplerConfig()
//	cfg.Seed = 42
//	model, err := regress.FitBayes(ctx, long, f, cfg)
//	r2 := model.RSquaredDraws() // per-draw Bayesian R²
//
// # Fitters
//
// OLS and Bayes wrap the fit functions as a Fitter, the signature used by
// the grouped runner:
//
//	fit := regress.Bayes(f, cfg)
//	model, err := fit(ctx, rows)
//
// # Errors
//
//   - ErrInsufficientData: no more complete observations than coefficients
//   - ErrModelFit: rank-deficient design
//   - ErrUnknownCoefficient: coefficient lookup by an unknown name
package regress
