package posterior

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/regress"
)

// SummaryRow holds the extracted summaries of one entity.
type SummaryRow struct {
	EntityID     string
	NObs         int
	Coefficients map[string]regress.Coefficient
	Derived      map[Statistic]float64
}

// SummaryTable is one SummaryRow per entity, ordered by entity id.
type SummaryTable struct {
	Coefficients []string
	Statistics   []Statistic
	Rows         []SummaryRow
}

// BuildSummaryTable extracts the named coefficients and statistics from
// every model. Rows are sorted by entity id (numerically when the ids are
// numbers). With no coefficient names, every term of the first entity's
// formula is used.
//
// Extraction errors abort the whole table: asking for a coefficient or
// statistic the models cannot provide is a caller bug, not bad data.
func BuildSummaryTable(fits map[string]regress.Model, coefficients []string, statistics []Statistic) (*SummaryTable, error) {
	ids := make([]string, 0, len(fits))
	for id := range fits {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return panel.CompareIDs(ids[i], ids[j]) < 0
	})

	if len(coefficients) == 0 && len(ids) > 0 {
		coefficients = fits[ids[0]].Formula().Terms()
	}

	table := &SummaryTable{
		Coefficients: append([]string(nil), coefficients...),
		Statistics:   append([]Statistic(nil), statistics...),
		Rows:         make([]SummaryRow, 0, len(ids)),
	}

	for _, id := range ids {
		m := fits[id]
		coefs, err := ExtractCoefficients(m, coefficients)
		if err != nil {
			return nil, fmt.Errorf("entity %s: %w", id, err)
		}

		derived := make(map[Statistic]float64, len(statistics))
		for _, s := range statistics {
			v, err := ExtractDerived(m, s)
			if err != nil {
				return nil, fmt.Errorf("entity %s: %w", id, err)
			}
			derived[s] = v
		}

		table.Rows = append(table.Rows, SummaryRow{
			EntityID:     id,
			NObs:         m.NObs(),
			Coefficients: coefs,
			Derived:      derived,
		})
	}

	return table, nil
}

// ColumnName returns the summary column prefix of a coefficient:
// "(Intercept)" becomes "intercept" and "a:b" becomes "a_x_b".
func ColumnName(coefficient string) string {
	if coefficient == regress.InterceptName {
		return "intercept"
	}
	return strings.ReplaceAll(coefficient, ":", "_x_")
}

// Columns returns the numeric column names of the serialized table:
// n, then <coef>_est and <coef>_sd per coefficient, then one column per
// statistic.
func (t *SummaryTable) Columns() []string {
	cols := make([]string, 0, 1+2*len(t.Coefficients)+len(t.Statistics))
	cols = append(cols, "n")
	for _, c := range t.Coefficients {
		name := ColumnName(c)
		cols = append(cols, name+"_est", name+"_sd")
	}
	for _, s := range t.Statistics {
		cols = append(cols, string(s))
	}
	return cols
}

// ToTable converts the summary into a panel table keyed by "id".
func (t *SummaryTable) ToTable() *panel.Table {
	out := panel.New("id", t.Columns()...)
	for _, r := range t.Rows {
		row := make([]float64, 0, len(out.Columns))
		row = append(row, float64(r.NObs))
		for _, c := range t.Coefficients {
			coef := r.Coefficients[c]
			row = append(row, coef.Estimate, coef.Spread)
		}
		for _, s := range t.Statistics {
			row = append(row, r.Derived[s])
		}
		out.IDs = append(out.IDs, r.EntityID)
		out.Rows = append(out.Rows, row)
	}
	return out
}

// WriteCSV serializes the summary as comma-separated text with a header.
func (t *SummaryTable) WriteCSV(w io.Writer) error {
	return panel.WriteCSV(w, t.ToTable())
}
