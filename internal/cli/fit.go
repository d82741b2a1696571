package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sartorproj/golda/grouped"
	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/posterior"
	"github.com/sartorproj/golda/regress"
)

type fitOptions struct {
	method       string
	long         bool
	response     string
	predictors   []string
	interactions []string
	center       []string
	perEntity    bool
	pooled       bool
	coefficients []string
	statistics   []string
	workers      int
	timeout      time.Duration
	draws        int
	seed         uint64
	output       string
}

func newFitCmd(a *app) *cobra.Command {
	var opts fitOptions

	cmd := &cobra.Command{
		Use:   "fit [source]",
		Short: "Fit per-person and pooled linear change models",
		Long: `Fit one regression per person (the exploratory within-person models) and,
optionally, a pooled model across everyone. Per-person results are written as
a summary CSV with one row per person; the pooled model is printed as a text
summary.

Columns named with --center get a mean-centred copy called <column>_c, which
can then be used as a predictor or in an interaction.

Examples:
  lda fit tolerance.csv
  lda fit tolerance.csv --method bayes --draws 2000 --workers 4 -o per_person.csv
  lda fit tolerance.csv --per-entity=false --pooled \
      --center exposure --predictor time,exposure_c --interaction time:exposure_c`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("workers") {
				a.cfg.Runner.Workers = opts.workers
			}
			if flags.Changed("timeout") {
				a.cfg.Runner.Timeout = opts.timeout
			}
			if flags.Changed("draws") {
				a.cfg.Sampling.Draws = opts.draws
			}
			if flags.Changed("seed") {
				a.cfg.Sampling.Seed = opts.seed
			}
			return a.runFit(cmd, args, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.method, "method", "m", "ols", "Estimation method: ols, bayes")
	flags.BoolVar(&opts.long, "long", false, "Input is already in the person-period layout")
	flags.StringVar(&opts.response, "response", "", "Response column (default: the value column)")
	flags.StringSliceVarP(&opts.predictors, "predictor", "p", nil, "Predictor columns (default: the time column)")
	flags.StringSliceVarP(&opts.interactions, "interaction", "i", nil, "Interaction terms as a:b")
	flags.StringSliceVar(&opts.center, "center", nil, "Columns to mean-centre into <column>_c")
	flags.BoolVar(&opts.perEntity, "per-entity", true, "Fit one model per entity")
	flags.BoolVar(&opts.pooled, "pooled", false, "Fit one model on all rows")
	flags.StringSliceVar(&opts.coefficients, "coef", nil, "Coefficients to report (default: every term)")
	flags.StringSliceVar(&opts.statistics, "stat", []string{"sigma2", "r2"}, "Statistics to report: sigma2, r2, sigma, aic, bic, dw, acf1")
	flags.IntVarP(&opts.workers, "workers", "w", 1, "Concurrent per-entity fits")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Per-entity fit deadline (0 disables it)")
	flags.IntVar(&opts.draws, "draws", 4000, "Posterior draws per Bayesian fit")
	flags.Uint64Var(&opts.seed, "seed", 1, "Base seed of the posterior sampler")
	flags.StringVarP(&opts.output, "output", "o", "", "Per-entity summary file (default: stdout)")

	return cmd
}

func (a *app) runFit(cmd *cobra.Command, args []string, opts fitOptions) error {
	if !opts.perEntity && !opts.pooled {
		return errors.New("nothing to fit: enable --per-entity or --pooled")
	}
	ctx := cmd.Context()

	table, err := a.load(ctx, args)
	if err != nil {
		return err
	}
	if !opts.long {
		table, err = panel.ToLong(table, a.cfg.Schema.LongSpec())
		if err != nil {
			return fmt.Errorf("reshape to long: %w", err)
		}
	}
	// Serial residual statistics (dw, acf1) read residuals in row order.
	table, err = table.SortWithinIDs(a.cfg.Schema.TimeColumn)
	if err != nil {
		return fmt.Errorf("order by time: %w", err)
	}
	for _, c := range opts.center {
		table, err = table.Center(c, c+"_c")
		if err != nil {
			return fmt.Errorf("center: %w", err)
		}
	}

	f, err := a.formula(opts)
	if err != nil {
		return err
	}

	var fit regress.Fitter
	switch opts.method {
	case "ols":
		fit = regress.OLS(f)
	case "bayes":
		if err := a.cfg.Validate(); err != nil {
			return err
		}
		fit = regress.Bayes(f, a.cfg.Sampling.SamplerConfig())
	default:
		return fmt.Errorf("unknown method %q: want ols or bayes", opts.method)
	}
	a.logger.Info("fitting", "formula", f.String(), "method", opts.method, "rows", table.Len())

	// The pooled summary shares stdout only when no CSV is written there.
	pooledOut := cmd.OutOrStdout()
	if opts.perEntity && opts.output == "" {
		pooledOut = cmd.ErrOrStderr()
	}

	if opts.perEntity {
		if err := a.fitPerEntity(cmd, table, fit, opts); err != nil {
			return err
		}
	}
	if opts.pooled {
		m, err := grouped.RunPooled(ctx, table, fit)
		if err != nil {
			return err
		}
		fmt.Fprintln(pooledOut, m.Summary())
	}
	return nil
}

func (a *app) fitPerEntity(cmd *cobra.Command, table *panel.Table, fit regress.Fitter, opts fitOptions) error {
	result, err := grouped.RunPerEntity(cmd.Context(), table, fit, grouped.Options{
		Workers: a.cfg.Runner.Workers,
		Timeout: a.cfg.Runner.Timeout,
		Logger:  a.logger,
	})
	if err != nil {
		return err
	}
	if len(result.Fits) == 0 {
		return fmt.Errorf("no entity could be fitted (%d failures)", len(result.Failures))
	}

	statistics := make([]posterior.Statistic, len(opts.statistics))
	for i, s := range opts.statistics {
		statistics[i] = posterior.Statistic(strings.TrimSpace(s))
	}

	summary, err := posterior.BuildSummaryTable(result.Fits, opts.coefficients, statistics)
	if err != nil {
		return err
	}
	return write(cmd, opts.output, func(w io.Writer) error {
		return summary.WriteCSV(w)
	})
}

func (a *app) formula(opts fitOptions) (regress.Formula, error) {
	f := regress.Formula{
		Response:   opts.response,
		Predictors: opts.predictors,
	}
	if f.Response == "" {
		f.Response = a.cfg.Schema.ValueColumn
	}
	if len(f.Predictors) == 0 {
		f.Predictors = []string{a.cfg.Schema.TimeColumn}
	}
	for _, term := range opts.interactions {
		left, right, ok := strings.Cut(term, ":")
		if !ok || left == "" || right == "" {
			return regress.Formula{}, fmt.Errorf("interaction %q: want a:b", term)
		}
		f.Interactions = append(f.Interactions, regress.Interaction{A: left, B: right})
	}
	if err := f.Validate(); err != nil {
		return regress.Formula{}, err
	}
	return f, nil
}
