// Package posterior extracts coefficient and model summaries from fitted
// regressions and tabulates them per entity.
package posterior

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/golda/regress"
	"github.com/sartorproj/golda/stats"
)

// ErrUnsupportedStatistic is returned when a model cannot provide a
// requested derived statistic.
var ErrUnsupportedStatistic = errors.New("unsupported statistic")

// Statistic names a model-level derived statistic. The value doubles as the
// summary column name.
type Statistic string

const (
	ResidualVariance Statistic = "sigma2" // Squared residual scale
	RSquared         Statistic = "r2"     // Coefficient of determination
	Sigma            Statistic = "sigma"  // Residual scale
	AIC              Statistic = "aic"    // Requires regress.InformationCriteria
	BIC              Statistic = "bic"    // Requires regress.InformationCriteria
	DurbinWatson     Statistic = "dw"     // Serial correlation of residuals in row order
	Autocorrelation  Statistic = "acf1"   // Lag-1 autocorrelation of residuals in row order
)

// ExtractCoefficients returns the named coefficients of m.
func ExtractCoefficients(m regress.Model, names []string) (map[string]regress.Coefficient, error) {
	out := make(map[string]regress.Coefficient, len(names))
	for _, name := range names {
		c, err := m.Coefficient(name)
		if err != nil {
			return nil, err
		}
		out[name] = c
	}
	return out, nil
}

// ExtractDerived returns one model-level statistic.
//
// R² is the median of the posterior R² draws when the model has them and
// the model's point R² otherwise; it is clamped to [0, 1]. Residual
// variance is the square of the model's residual scale estimate.
//
// DurbinWatson and Autocorrelation treat the residuals as a series in the
// order of the fitted table's rows, so each entity's rows must be sorted by
// time (see panel.Table.SortWithinIDs). ToLong output already is.
func ExtractDerived(m regress.Model, s Statistic) (float64, error) {
	switch s {
	case ResidualVariance:
		sigma := m.Sigma()
		return sigma * sigma, nil
	case Sigma:
		return math.Abs(m.Sigma()), nil
	case RSquared:
		r2 := m.RSquared()
		if draws := m.RSquaredDraws(); len(draws) > 0 {
			r2 = stats.Median(draws)
		}
		return math.Max(0, math.Min(1, r2)), nil
	case AIC, BIC:
		ic, ok := m.(regress.InformationCriteria)
		if !ok {
			return math.NaN(), fmt.Errorf("%w: %s needs a likelihood-based model", ErrUnsupportedStatistic, s)
		}
		if s == AIC {
			return ic.AIC(), nil
		}
		return ic.BIC(), nil
	case DurbinWatson:
		return stats.DurbinWatson(m.Residuals()), nil
	case Autocorrelation:
		return stats.LagOneAutocorrelation(m.Residuals()), nil
	default:
		return math.NaN(), fmt.Errorf("%w: %q", ErrUnsupportedStatistic, string(s))
	}
}
