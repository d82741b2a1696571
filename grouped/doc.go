// Package grouped fits one regression per entity of a person-period table.
//
// Each entity's rows are copied into their own table, so no fit can see
// another entity's observations:
//
//	fit := regress.OLS(regress.Formula{Response: "tolerance", Predictors: []string{"time"}})
//	result, err := grouped.RunPerEntity(ctx, long, fit, grouped.Options{Workers: 4})
//	for _, f := range result.Failures {
//	    log.Printf("skipped %s: %v", f.ID, f.Err)
//	}
//
// A failing entity is recorded in Result.Failures and never aborts the run.
// With Workers > 1 the fits run concurrently; results are collected into
// per-entity slots, so the outcome does not depend on scheduling.
//
// The pooled model uses the same fitter on the whole table:
//
//	pooled, err := grouped.RunPooled(ctx, long, fit)
package grouped
