// Package grouped fits one regression per entity of a person-period table.
package grouped

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/regress"
)

// Group is the rows of one entity.
type Group struct {
	ID   string
	Rows *panel.Table
}

// Partition splits a table into one group per distinct id, in order of
// first appearance. Each group owns a copy of its rows.
func Partition(table *panel.Table) []Group {
	index := make(map[string]int)
	var positions [][]int
	var ids []string

	for i, id := range table.IDs {
		k, ok := index[id]
		if !ok {
			k = len(ids)
			index[id] = k
			ids = append(ids, id)
			positions = append(positions, nil)
		}
		positions[k] = append(positions[k], i)
	}

	groups := make([]Group, len(ids))
	for k, id := range ids {
		groups[k] = Group{ID: id, Rows: table.Subset(positions[k])}
	}
	return groups
}

// Options controls a per-entity run.
type Options struct {
	Workers int           // Concurrent fits; 0 or 1 fits sequentially
	Timeout time.Duration // Per-fit deadline; 0 disables it
	Logger  *slog.Logger  // Defaults to slog.Default()
}

// Failure records why one entity could not be fitted.
type Failure struct {
	ID  string
	Err error
}

func (f Failure) Error() string {
	return fmt.Sprintf("entity %s: %v", f.ID, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result holds the fitted models of a per-entity run.
type Result struct {
	RunID    string
	Order    []string                 // Entity ids in first-appearance order
	Fits     map[string]regress.Model // Successful fits by entity id
	Failures []Failure                // Failed fits, sorted by entity id
}

// Fitted returns the ids of successfully fitted entities in input order.
func (r *Result) Fitted() []string {
	ids := make([]string, 0, len(r.Fits))
	for _, id := range r.Order {
		if _, ok := r.Fits[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// Err returns the failure of one entity, or nil.
func (r *Result) Err(id string) error {
	for _, f := range r.Failures {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// RunPerEntity fits every entity of table independently.
//
// A failing fit does not stop the run: its error is recorded in
// Result.Failures and the remaining entities are still fitted. The returned
// error is non-nil only when ctx is cancelled.
func RunPerEntity(ctx context.Context, table *panel.Table, fit regress.Fitter, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	groups := Partition(table)
	result := &Result{
		RunID: uuid.NewString(),
		Order: make([]string, len(groups)),
		Fits:  make(map[string]regress.Model, len(groups)),
	}
	logger = logger.With("run_id", result.RunID)

	// One slot per group; workers never share a slot.
	models := make([]regress.Model, len(groups))
	errs := make([]error, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	g.SetLimit(workers)

	start := time.Now()
	for k, grp := range groups {
		result.Order[k] = grp.ID
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			models[k], errs[k] = fitOne(gctx, grp, fit, opts.Timeout)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for k, grp := range groups {
		if errs[k] != nil {
			result.Failures = append(result.Failures, Failure{ID: grp.ID, Err: errs[k]})
			logger.Warn("entity fit failed", "entity", grp.ID, "rows", grp.Rows.Len(), "error", errs[k])
			continue
		}
		result.Fits[grp.ID] = models[k]
	}
	sort.Slice(result.Failures, func(i, j int) bool {
		return panel.CompareIDs(result.Failures[i].ID, result.Failures[j].ID) < 0
	})

	logger.Info("per-entity fits complete",
		"entities", len(groups),
		"fitted", len(result.Fits),
		"failed", len(result.Failures),
		"workers", workers,
		"elapsed", time.Since(start))

	return result, nil
}

// fitOne runs fit on one group under the optional per-fit deadline. A fit
// that outlives its deadline is reported as a failure even if the fitter
// ignores the context.
func fitOne(ctx context.Context, grp Group, fit regress.Fitter, timeout time.Duration) (regress.Model, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	m, err := fit(ctx, grp.Rows)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fit exceeded deadline: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: fitter returned no model", regress.ErrModelFit)
	}
	return m, nil
}

// RunPooled fits a single model on the whole table, e.g. the population
// trajectory or a model with person-level interaction terms.
func RunPooled(ctx context.Context, table *panel.Table, fit regress.Fitter) (regress.Model, error) {
	m, err := fit(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("pooled fit: %w", err)
	}
	return m, nil
}
