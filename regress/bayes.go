package regress

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/stats"
)

// SamplerConfig controls posterior sampling.
type SamplerConfig struct {
	Draws int    // Number of posterior draws (default: 4000)
	Seed  uint64 // Base seed of the random stream
}

// DefaultSamplerConfig returns the default sampling configuration.
func DefaultSamplerConfig() SamplerConfig {
	return SamplerConfig{
		Draws: 4000,
		Seed:  1,
	}
}

// cancelCheckEvery is how many draws are taken between context checks.
const cancelCheckEvery = 256

// BayesModel is a Gaussian linear model under the reference prior
// p(beta, sigma²) ∝ 1/sigma², summarised by posterior draws.
type BayesModel struct {
	formula   Formula
	terms     []string
	nObs      int
	draws     [][]float64 // draws[j][s] is coefficient j in draw s
	sigma     []float64
	r2        []float64
	coefs     []Coefficient
	residuals []float64
	fitted    []float64
}

// FitBayes fits f to table and draws from the exact joint posterior:
//
//	sigma² | y   ~ (n-k) s² / chi²(n-k)
//	beta | sigma², y ~ N(beta_hat, sigma² (X'X)^-1)
//
// Draws are taken by inversion from a PCG stream seeded with cfg.Seed and a
// hash of the id of the table's first complete row, so each entity gets the
// same draws regardless of the order in which entities are fitted.
func FitBayes(ctx context.Context, table *panel.Table, f Formula, cfg SamplerConfig) (*BayesModel, error) {
	if cfg.Draws <= 0 {
		cfg.Draws = DefaultSamplerConfig().Draws
	}
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
	df := float64(n - k)

	var cov mat.Cholesky
	if ok := cov.Factorize(ls.xtxInv); !ok {
		return nil, fmt.Errorf("%w: posterior covariance is not positive definite", ErrModelFit)
	}
	var l mat.TriDense
	cov.LTo(&l)

	rng := rand.New(rand.NewPCG(cfg.Seed, xxhash.Sum64String(d.IDs[0])))
	chi := distuv.ChiSquared{K: df}
	norm := distuv.UnitNormal

	m := &BayesModel{
		formula: f,
		terms:   d.Terms,
		nObs:    n,
		draws:   make([][]float64, k),
		sigma:   make([]float64, cfg.Draws),
		r2:      make([]float64, cfg.Draws),
	}
	for j := range m.draws {
		m.draws[j] = make([]float64, cfg.Draws)
	}

	z := mat.NewVecDense(k, nil)
	var lz, beta, fit mat.VecDense
	for s := 0; s < cfg.Draws; s++ {
		if s%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		sigma2 := df * ls.s2 / chi.Quantile(uniform(rng))
		sigma := math.Sqrt(sigma2)

		for j := 0; j < k; j++ {
			z.SetVec(j, norm.Quantile(uniform(rng)))
		}
		lz.MulVec(&l, z)
		beta.AddScaledVec(ls.beta, sigma, &lz)
		fit.MulVec(d.X, &beta)

		for j := 0; j < k; j++ {
			m.draws[j][s] = beta.AtVec(j)
		}
		m.sigma[s] = sigma

		varFit := stat.Variance(fit.RawVector().Data, nil)
		if varFit+sigma2 > 0 {
			m.r2[s] = clamp01(varFit / (varFit + sigma2))
		}
	}

	m.summarise(d)
	return m, nil
}

// uniform returns a draw from the open interval (0, 1), so that inverse
// CDFs stay finite.
func uniform(rng *rand.Rand) float64 {
	for {
		if u := rng.Float64(); u > 0 {
			return u
		}
	}
}

// summarise computes coefficient summaries and the residuals at the
// posterior median.
func (m *BayesModel) summarise(d *Design) {
	lo := (1 - intervalLevel) / 2

	medians := make([]float64, len(m.terms))
	m.coefs = make([]Coefficient, len(m.terms))
	for j, name := range m.terms {
		sorted := copyFloats(m.draws[j])
		sort.Float64s(sorted)
		medians[j] = stats.Median(sorted)
		m.coefs[j] = Coefficient{
			Name:     name,
			Estimate: medians[j],
			Spread:   stats.MADSD(sorted),
			Lower:    stat.Quantile(lo, stat.LinInterp, sorted, nil),
			Upper:    stat.Quantile(1-lo, stat.LinInterp, sorted, nil),
		}
	}

	var fit mat.VecDense
	fit.MulVec(d.X, mat.NewVecDense(len(medians), medians))
	n := d.N()
	m.fitted = make([]float64, n)
	m.residuals = make([]float64, n)
	for i := 0; i < n; i++ {
		m.fitted[i] = fit.AtVec(i)
		m.residuals[i] = d.Y.AtVec(i) - m.fitted[i]
	}
}

// Formula returns the formula the model was fitted with.
func (m *BayesModel) Formula() Formula { return m.formula }

// NObs returns the number of complete observations used.
func (m *BayesModel) NObs() int { return m.nObs }

// Coefficients returns all coefficients in term order.
func (m *BayesModel) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.coefs))
	copy(out, m.coefs)
	return out
}

// Coefficient returns one coefficient by name.
func (m *BayesModel) Coefficient(name string) (Coefficient, error) {
	return findCoefficient(m.coefs, name)
}

// Draws returns the posterior draws of one coefficient.
func (m *BayesModel) Draws(name string) ([]float64, error) {
	for j, term := range m.terms {
		if term == name {
			return copyFloats(m.draws[j]), nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCoefficient, name)
}

// Sigma returns the posterior median of the residual standard deviation.
func (m *BayesModel) Sigma() float64 { return stats.Median(m.sigma) }

// SigmaDraws returns the posterior draws of the residual standard deviation.
func (m *BayesModel) SigmaDraws() []float64 { return copyFloats(m.sigma) }

// RSquared returns the posterior median of the Bayesian R².
func (m *BayesModel) RSquared() float64 { return stats.Median(m.r2) }

// RSquaredDraws returns the posterior draws of the Bayesian R².
func (m *BayesModel) RSquaredDraws() []float64 { return copyFloats(m.r2) }

// Residuals returns the residuals at the posterior median coefficients.
func (m *BayesModel) Residuals() []float64 { return copyFloats(m.residuals) }

// FittedValues returns the fitted values at the posterior median coefficients.
func (m *BayesModel) FittedValues() []float64 { return copyFloats(m.fitted) }

// Summary returns posterior medians, MAD_SD and 95% credible intervals.
func (m *BayesModel) Summary() string {
	return renderSummary("Bayesian linear regression", m.formula, "mad_sd", m.coefs, [][2]string{
		{"observations", fmt.Sprintf("%d", m.nObs)},
		{"posterior draws", fmt.Sprintf("%d", len(m.sigma))},
		{"sigma", fmt.Sprintf("%.4f (mad_sd %.4f)", m.Sigma(), stats.MADSD(m.sigma))},
		{"R-squared", fmt.Sprintf("%.4f (median of draws)", m.RSquared())},
	})
}
