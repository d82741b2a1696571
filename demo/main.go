// Package main walks through exploratory longitudinal analysis of the NYS
// tolerance-of-deviant-behaviour panel: descriptives, per-person change
// models fitted by least squares and Bayesian regression, and pooled models
// with person-level interactions.
// Based on: Singer & Willett, Applied Longitudinal Data Analysis, chapter 2.
package main

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/sartorproj/golda/grouped"
	"github.com/sartorproj/golda/internal/logging"
	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/posterior"
	"github.com/sartorproj/golda/regress"
	"github.com/sartorproj/golda/stats"
)

//go:embed tolerance.csv
var toleranceCSV []byte

// PooledModel defines a model fitted on every person-period row
type PooledModel struct {
	Name        string          // Display name
	Description string          // Brief description
	Formula     regress.Formula // Terms to fit
}

// PersonResult holds one person's change trajectory for JSON export
type PersonResult struct {
	ID        string  `json:"id"`
	Intercept float64 `json:"intercept"`
	Slope     float64 `json:"slope"`
	Sigma2    float64 `json:"sigma2"`
	R2        float64 `json:"r2"`
}

// PooledResult holds a pooled model's coefficients for JSON export
type PooledResult struct {
	Name         string             `json:"name"`
	Formula      string             `json:"formula"`
	Coefficients map[string]float64 `json:"coefficients"`
	RSquared     float64            `json:"r_squared"`
	AIC          float64            `json:"aic,omitempty"`
}

// OutputData holds all results for visualization
type OutputData struct {
	OLS    []PersonResult `json:"ols"`
	Bayes  []PersonResult `json:"bayes"`
	Pooled []PooledResult `json:"pooled"`
}

var changeModel = regress.Formula{Response: "tolerance", Predictors: []string{"time"}}

func main() {
	logging.Init(os.Stderr, false, slog.LevelWarn)
	ctx := context.Background()

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("golda Demonstration - Exploring Longitudinal Data on Change")
	fmt.Println("Reference: Singer & Willett (2003), chapter 2")
	fmt.Println(strings.Repeat("=", 80))

	wide, err := panel.LoadCSVFromReader(bytes.NewReader(toleranceCSV), nil)
	if err != nil {
		fail(err)
	}
	long, err := panel.ToLong(wide, panel.LongSpec{
		IDColumn:     "id",
		FixedColumns: []string{"male", "exposure"},
		Pattern:      panel.ColumnPattern{Prefix: "tol", TimeBase: 11},
		TimeColumn:   "time",
		ValueColumn:  "tolerance",
	})
	if err != nil {
		fail(err)
	}

	output := OutputData{}

	section(1, "Person-level data")
	describeWaves(wide)

	section(2, "Person-period data")
	fmt.Printf("   %d people x %d waves -> %d rows\n", wide.Len(), long.Len()/wide.Len(), long.Len())
	printRows(long, 10)

	section(3, "Per-person OLS trajectories")
	output.OLS = perPerson(ctx, long, regress.OLS(changeModel), 1)

	section(4, "Per-person Bayesian trajectories")
	output.Bayes = perPerson(ctx, long, regress.Bayes(changeModel, regress.DefaultSamplerConfig()), 4)

	section(5, "Pooled models")
	centred, err := long.Center("exposure", "exposure_c")
	if err != nil {
		fail(err)
	}
	models := []PooledModel{
		{Name: "Average trajectory", Description: "population intercept and rate of change",
			Formula: changeModel},
		{Name: "Change by gender", Description: "does the rate of change differ for boys?",
			Formula: regress.Formula{Response: "tolerance", Predictors: []string{"time", "male"},
				Interactions: []regress.Interaction{{A: "time", B: "male"}}}},
		{Name: "Change by exposure", Description: "centred exposure to deviant peers at age 11",
			Formula: regress.Formula{Response: "tolerance", Predictors: []string{"time", "exposure_c"},
				Interactions: []regress.Interaction{{A: "time", B: "exposure_c"}}}},
	}
	for _, pm := range models {
		if r := pooled(ctx, centred, pm); r != nil {
			output.Pooled = append(output.Pooled, *r)
		}
	}

	// Export results
	fmt.Printf("\n%s\nEXPORTING RESULTS\n%s\n", strings.Repeat("=", 80), strings.Repeat("=", 80))

	if data, err := json.MarshalIndent(output, "", "  "); err == nil {
		os.WriteFile("lda_results.json", data, 0644)
		fmt.Printf("Exported %d people and %d pooled models to lda_results.json\n", len(output.OLS), len(output.Pooled))
	}
	fmt.Println(strings.Repeat("=", 80))
}

func section(i int, title string) {
	fmt.Printf("\n%s\n[%d/5] %s\n%s\n", strings.Repeat("=", 80), i, title, strings.Repeat("=", 80))
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

// describeWaves prints descriptives per wave and the wave-to-wave correlations
func describeWaves(wide *panel.Table) {
	waves := []string{"tol11", "tol12", "tol13", "tol14", "tol15"}

	descs, err := stats.DescribeTable(wide, waves...)
	if err != nil {
		fail(err)
	}
	for _, d := range descs {
		fmt.Printf("   %s: mean=%.3f sd=%.3f range=[%.2f, %.2f]\n", d.Name, d.Mean, d.SD, d.Min, d.Max)
	}

	corr, err := stats.Correlations(wide, waves...)
	if err != nil {
		fail(err)
	}
	fmt.Println("\n   Correlations across waves:")
	for i, a := range waves {
		fmt.Printf("   %-6s", a)
		for j := 0; j <= i; j++ {
			fmt.Printf(" %5.2f", corr.Values.At(i, j))
		}
		fmt.Println()
	}
}

func printRows(t *panel.Table, n int) {
	fmt.Printf("   %-6s %s\n", t.IDColumn, strings.Join(t.Columns, "  "))
	for i := 0; i < min(n, t.Len()); i++ {
		cells := make([]string, len(t.Rows[i]))
		for j, v := range t.Rows[i] {
			cells[j] = panel.FormatFloat(v)
		}
		fmt.Printf("   %-6s %s\n", t.IDs[i], strings.Join(cells, "  "))
	}
}

// perPerson fits the linear change model to every person and summarises the
// spread of their intercepts and slopes
func perPerson(ctx context.Context, long *panel.Table, fit regress.Fitter, workers int) []PersonResult {
	result, err := grouped.RunPerEntity(ctx, long, fit, grouped.Options{Workers: workers})
	if err != nil {
		fail(err)
	}
	for _, f := range result.Failures {
		fmt.Printf("   %v\n", f)
	}

	summary, err := posterior.BuildSummaryTable(result.Fits,
		[]string{regress.InterceptName, "time"},
		[]posterior.Statistic{posterior.ResidualVariance, posterior.RSquared})
	if err != nil {
		fail(err)
	}

	people := make([]PersonResult, 0, len(summary.Rows))
	fmt.Printf("   %-6s %9s %9s %8s %6s\n", "id", "intercept", "slope", "sigma2", "R2")
	for _, r := range summary.Rows {
		p := PersonResult{
			ID:        r.EntityID,
			Intercept: r.Coefficients[regress.InterceptName].Estimate,
			Slope:     r.Coefficients["time"].Estimate,
			Sigma2:    r.Derived[posterior.ResidualVariance],
			R2:        r.Derived[posterior.RSquared],
		}
		fmt.Printf("   %-6s %9.3f %9.3f %8.3f %6.2f\n", p.ID, p.Intercept, p.Slope, p.Sigma2, p.R2)
		people = append(people, p)
	}

	table := summary.ToTable()
	intercepts, _ := table.Column("intercept_est")
	slopes, _ := table.Column("time_est")
	ic, sc := stats.Describe(intercepts), stats.Describe(slopes)
	fmt.Printf("\n   intercepts: mean=%.3f sd=%.3f\n", ic.Mean, ic.SD)
	fmt.Printf("   slopes:     mean=%.3f sd=%.3f\n", sc.Mean, sc.SD)
	fmt.Printf("   corr(intercept, slope) = %.3f\n", stats.Correlation(intercepts, slopes))

	return people
}

// pooled fits one model on all rows and prints its summary
func pooled(ctx context.Context, long *panel.Table, pm PooledModel) *PooledResult {
	fmt.Printf("\n   %s: %s\n\n", pm.Name, pm.Description)

	m, err := grouped.RunPooled(ctx, long, regress.OLS(pm.Formula))
	if err != nil {
		fmt.Printf("   Error fitting: %v\n", err)
		return nil
	}
	fmt.Println(m.Summary())

	r := &PooledResult{
		Name:         pm.Name,
		Formula:      pm.Formula.String(),
		Coefficients: make(map[string]float64),
		RSquared:     m.RSquared(),
	}
	for _, c := range m.Coefficients() {
		r.Coefficients[c.Name] = c.Estimate
	}
	if ic, ok := m.(regress.InformationCriteria); ok {
		r.AIC = ic.AIC()
	}
	return r
}
