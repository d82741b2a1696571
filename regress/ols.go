package regress

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/stats"
)

// OLSModel is an ordinary least squares fit.
type OLSModel struct {
	formula   Formula
	coefs     []Coefficient
	nObs      int
	df        int // Residual degrees of freedom
	sigma     float64
	rSquared  float64
	ic        stats.InformationCriteria
	residuals []float64
	fitted    []float64
}

// FitOLS fits f to table by ordinary least squares.
//
// Standard errors use the unbiased residual variance with n-k degrees of
// freedom; intervals use the Student-t distribution.
func FitOLS(ctx context.Context, table *panel.Table, f Formula) (*OLSModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d, err := NewDesign(table, f)
	if err != nil {
		return nil, err
	}
	ls, err := solve(d)
	if err != nil {
		return nil, err
	}

	n, k := d.N(), d.K()
	df := n - k
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}
	crit := t.Quantile(1 - (1-intervalLevel)/2)

	m := &OLSModel{
		formula:   f,
		nObs:      n,
		df:        df,
		sigma:     math.Sqrt(ls.s2),
		rSquared:  rSquared(d.Y.RawVector().Data, ls.sse),
		residuals: ls.residuals,
		fitted:    ls.fitted,
	}

	m.coefs = make([]Coefficient, k)
	for j, name := range d.Terms {
		est := ls.beta.AtVec(j)
		se := math.Sqrt(ls.s2 * ls.xtxInv.At(j, j))
		m.coefs[j] = Coefficient{
			Name:     name,
			Estimate: est,
			Spread:   se,
			Lower:    est - crit*se,
			Upper:    est + crit*se,
		}
	}

	// k coefficients plus the residual variance.
	m.ic = stats.CalculateIC(stats.GaussianLogLik(ls.residuals), n, k+1)

	return m, nil
}

// Formula returns the formula the model was fitted with.
func (m *OLSModel) Formula() Formula { return m.formula }

// NObs returns the number of complete observations used.
func (m *OLSModel) NObs() int { return m.nObs }

// DF returns the residual degrees of freedom.
func (m *OLSModel) DF() int { return m.df }

// Coefficients returns all coefficients in term order.
func (m *OLSModel) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.coefs))
	copy(out, m.coefs)
	return out
}

// Coefficient returns one coefficient by name.
func (m *OLSModel) Coefficient(name string) (Coefficient, error) {
	return findCoefficient(m.coefs, name)
}

// Sigma returns the residual standard deviation with n-k degrees of freedom.
func (m *OLSModel) Sigma() float64 { return m.sigma }

// RSquared returns the classical R².
func (m *OLSModel) RSquared() float64 { return m.rSquared }

// RSquaredDraws returns nil; least squares has no posterior.
func (m *OLSModel) RSquaredDraws() []float64 { return nil }

// Residuals returns the model residuals.
func (m *OLSModel) Residuals() []float64 { return copyFloats(m.residuals) }

// FittedValues returns the fitted values.
func (m *OLSModel) FittedValues() []float64 { return copyFloats(m.fitted) }

// LogLik returns the Gaussian log-likelihood at the ML variance.
func (m *OLSModel) LogLik() float64 { return m.ic.LogLik }

// AIC returns the Akaike information criterion.
func (m *OLSModel) AIC() float64 { return m.ic.AIC }

// AICc returns the small-sample corrected AIC.
func (m *OLSModel) AICc() float64 { return m.ic.AICc }

// BIC returns the Bayesian information criterion.
func (m *OLSModel) BIC() float64 { return m.ic.BIC }

// Summary returns a coefficient table with standard errors and fit statistics.
func (m *OLSModel) Summary() string {
	return renderSummary("Ordinary least squares", m.formula, "std.err", m.coefs, [][2]string{
		{"observations", fmt.Sprintf("%d (df %d)", m.nObs, m.df)},
		{"sigma", fmt.Sprintf("%.4f", m.sigma)},
		{"R-squared", fmt.Sprintf("%.4f", m.rSquared)},
		{"log-likelihood", fmt.Sprintf("%.3f", m.ic.LogLik)},
		{"AIC / BIC", fmt.Sprintf("%.3f / %.3f", m.ic.AIC, m.ic.BIC)},
	})
}
