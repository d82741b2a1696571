// Package regress implements linear regression collaborators for panel data.
package regress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/sartorproj/golda/panel"
)

var (
	// ErrInsufficientData is returned when there are not more complete
	// observations than coefficients.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelFit is returned when the model cannot be estimated, e.g. for
	// a rank-deficient design matrix.
	ErrModelFit = errors.New("model fit failure")

	// ErrUnknownCoefficient is returned when a requested coefficient is not
	// part of the model.
	ErrUnknownCoefficient = errors.New("unknown coefficient")
)

// Interval level used for coefficient intervals.
const intervalLevel = 0.95

// Coefficient is the estimate of one model term.
type Coefficient struct {
	Name     string
	Estimate float64 // Point estimate (OLS) or posterior median (Bayes)
	Spread   float64 // Standard error (OLS) or posterior MAD_SD (Bayes)
	Lower    float64 // Lower bound of the 95% interval
	Upper    float64 // Upper bound of the 95% interval
}

// Model is a fitted regression.
type Model interface {
	// Formula returns the formula the model was fitted with.
	Formula() Formula
	// NObs returns the number of complete observations used.
	NObs() int
	// Coefficients returns all coefficients in term order.
	Coefficients() []Coefficient
	// Coefficient returns one coefficient by name.
	Coefficient(name string) (Coefficient, error)
	// Sigma returns the residual standard deviation estimate.
	Sigma() float64
	// RSquared returns the point estimate of R².
	RSquared() float64
	// RSquaredDraws returns the posterior draws of R², or nil when the
	// model has no posterior distribution.
	RSquaredDraws() []float64
	// Residuals returns y - fitted for each observation.
	Residuals() []float64
	// FittedValues returns the fitted values for each observation.
	FittedValues() []float64
	// Summary renders a human-readable summary.
	Summary() string
}

// InformationCriteria is implemented by models with a likelihood.
type InformationCriteria interface {
	LogLik() float64
	AIC() float64
	BIC() float64
}

// Fitter fits a model to a table.
type Fitter func(ctx context.Context, table *panel.Table) (Model, error)

// OLS returns a Fitter for ordinary least squares.
func OLS(f Formula) Fitter {
	return func(ctx context.Context, table *panel.Table) (Model, error) {
		m, err := FitOLS(ctx, table, f)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// Bayes returns a Fitter for the Bayesian linear model.
func Bayes(f Formula, cfg SamplerConfig) Fitter {
	return func(ctx context.Context, table *panel.Table) (Model, error) {
		m, err := FitBayes(ctx, table, f, cfg)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
}

// leastSquares holds the shared least-squares quantities of a design.
type leastSquares struct {
	beta      *mat.VecDense
	xtxInv    *mat.SymDense
	fitted    []float64
	residuals []float64
	sse       float64
	s2        float64 // sse / (n - k)
}

// solve computes the least-squares fit of d through the normal equations.
func solve(d *Design) (*leastSquares, error) {
	n, k := d.N(), d.K()
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d coefficients", ErrInsufficientData, n, k)
	}

	xtx := mat.NewSymDense(k, nil)
	xtx.SymOuterK(1, d.X.T())

	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return nil, fmt.Errorf("%w: design matrix is rank deficient", ErrModelFit)
	}

	var xty mat.VecDense
	xty.MulVec(d.X.T(), d.Y)

	beta := mat.NewVecDense(k, nil)
	if err := chol.SolveVecTo(beta, &xty); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	xtxInv := mat.NewSymDense(k, nil)
	if err := chol.InverseTo(xtxInv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelFit, err)
	}

	var fit mat.VecDense
	fit.MulVec(d.X, beta)

	ls := &leastSquares{
		beta:      beta,
		xtxInv:    xtxInv,
		fitted:    make([]float64, n),
		residuals: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		ls.fitted[i] = fit.AtVec(i)
		ls.residuals[i] = d.Y.AtVec(i) - ls.fitted[i]
		ls.sse += ls.residuals[i] * ls.residuals[i]
	}
	ls.s2 = ls.sse / float64(n-k)

	return ls, nil
}

// rSquared returns 1 - SSE/SST clamped to [0, 1]. A constant response
// yields 0.
func rSquared(y []float64, sse float64) float64 {
	mean := stat.Mean(y, nil)
	sst := 0.0
	for _, v := range y {
		sst += (v - mean) * (v - mean)
	}
	if sst == 0 {
		return 0
	}
	return clamp01(1 - sse/sst)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func findCoefficient(coefs []Coefficient, name string) (Coefficient, error) {
	for _, c := range coefs {
		if c.Name == name {
			return c, nil
		}
	}
	return Coefficient{}, fmt.Errorf("%w: %q", ErrUnknownCoefficient, name)
}

func copyFloats(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// renderSummary formats a coefficient table followed by model statistics.
func renderSummary(title string, f Formula, spread string, coefs []Coefficient, footer [][2]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n formula: %s\n\n", title, f)

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\testimate\t%s\t2.5%%\t97.5%%\t\n", spread)
	for _, c := range coefs {
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t\n", c.Name, c.Estimate, c.Spread, c.Lower, c.Upper)
	}
	tw.Flush()

	b.WriteString("\n")
	for _, kv := range footer {
		fmt.Fprintf(&b, " %s: %s\n", kv[0], kv[1])
	}
	return b.String()
}
