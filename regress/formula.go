package regress

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/golda/panel"
)

// InterceptName is the coefficient name of the intercept term.
const InterceptName = "(Intercept)"

// Interaction is the product of two predictor columns.
type Interaction struct {
	A string
	B string
}

// Name returns the coefficient name of the interaction, e.g. "time:male".
func (i Interaction) Name() string {
	return i.A + ":" + i.B
}

// Formula specifies a linear model: Response ~ 1 + Predictors + Interactions.
type Formula struct {
	Response     string
	Predictors   []string
	Interactions []Interaction
}

// String renders the formula in the usual tilde notation.
func (f Formula) String() string {
	terms := []string{"1"}
	terms = append(terms, f.Predictors...)
	for _, in := range f.Interactions {
		terms = append(terms, in.Name())
	}
	return f.Response + " ~ " + strings.Join(terms, " + ")
}

// Terms returns the coefficient names in design-matrix column order.
func (f Formula) Terms() []string {
	terms := make([]string, 0, 1+len(f.Predictors)+len(f.Interactions))
	terms = append(terms, InterceptName)
	terms = append(terms, f.Predictors...)
	for _, in := range f.Interactions {
		terms = append(terms, in.Name())
	}
	return terms
}

// Columns returns every table column the formula reads, response first.
func (f Formula) Columns() []string {
	seen := map[string]bool{f.Response: true}
	cols := []string{f.Response}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}
	for _, p := range f.Predictors {
		add(p)
	}
	for _, in := range f.Interactions {
		add(in.A)
		add(in.B)
	}
	return cols
}

// Validate checks that the formula is well formed.
func (f Formula) Validate() error {
	if f.Response == "" {
		return errors.New("formula has no response")
	}
	seen := make(map[string]bool)
	for _, term := range f.Terms() {
		if seen[term] {
			return fmt.Errorf("formula term %q appears twice", term)
		}
		seen[term] = true
	}
	for _, p := range f.Predictors {
		if p == f.Response {
			return fmt.Errorf("response %q is also a predictor", p)
		}
	}
	for _, in := range f.Interactions {
		if in.A == "" || in.B == "" {
			return fmt.Errorf("interaction %q is incomplete", in.Name())
		}
	}
	return nil
}

// Design holds the response vector and design matrix of a formula applied
// to a table, after dropping incomplete rows.
type Design struct {
	Formula Formula
	Terms   []string
	X       *mat.Dense
	Y       *mat.VecDense
	Rows    []int // Table row of each design row
	IDs     []string
}

// N returns the number of complete observations.
func (d *Design) N() int {
	return d.Y.Len()
}

// K returns the number of coefficients.
func (d *Design) K() int {
	return len(d.Terms)
}

// NewDesign builds the design matrix of f over table. Rows with a missing
// value in any column the formula reads are dropped.
func NewDesign(table *panel.Table, f Formula) (*Design, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cols := f.Columns()
	idx := make(map[string]int, len(cols))
	for _, c := range cols {
		j := table.Index(c)
		if j < 0 {
			return nil, fmt.Errorf("%w: %q", panel.ErrUnknownColumn, c)
		}
		idx[c] = j
	}

	var rows []int
	for i, row := range table.Rows {
		complete := true
		for _, c := range cols {
			if math.IsNaN(row[idx[c]]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}

	terms := f.Terms()
	n, k := len(rows), len(terms)
	d := &Design{
		Formula: f,
		Terms:   terms,
		Rows:    rows,
		IDs:     make([]string, n),
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no complete observations", ErrInsufficientData)
	}

	x := make([]float64, 0, n*k)
	y := make([]float64, n)
	for r, i := range rows {
		row := table.Rows[i]
		d.IDs[r] = table.IDs[i]
		y[r] = row[idx[f.Response]]
		x = append(x, 1)
		for _, p := range f.Predictors {
			x = append(x, row[idx[p]])
		}
		for _, in := range f.Interactions {
			x = append(x, row[idx[in.A]]*row[idx[in.B]])
		}
	}
	d.X = mat.NewDense(n, k, x)
	d.Y = mat.NewVecDense(n, y)

	return d, nil
}
