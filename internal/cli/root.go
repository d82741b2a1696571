// Package cli implements the lda command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sartorproj/golda/internal/config"
	"github.com/sartorproj/golda/internal/logging"
	"github.com/sartorproj/golda/panel"
)

// app is the state shared by every subcommand after setup.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	// Persistent flag values, applied over the environment in setup.
	logLevel    string
	logJSON     bool
	idColumn    string
	prefix      string
	timeBase    int
	timeColumn  string
	valueColumn string
	fixed       []string
}

// NewRootCmd builds the lda command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "lda",
		Short: "Longitudinal data analysis for person-period panels",
		Long: `lda reshapes longitudinal panels between person-level and person-period
layouts, describes them, and fits one regression per person.

Settings are read from GOLDA_* environment variables; flags override them.

Examples:
  lda reshape tolerance.csv --to long
  lda describe tolerance.csv
  lda fit tolerance.csv --method bayes --workers 4
  lda fit tolerance.csv --per-entity=false --pooled --predictor time,male --interaction time:male`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.BoolVar(&a.logJSON, "log-json", false, "Write logs as JSON")
	flags.StringVar(&a.idColumn, "id-column", "", "Entity id column")
	flags.StringVar(&a.prefix, "prefix", "", "Prefix of the per-wave value columns")
	flags.IntVar(&a.timeBase, "time-base", 0, "Value subtracted from column suffixes to get time")
	flags.StringVar(&a.timeColumn, "time-column", "", "Time column of the long layout")
	flags.StringVar(&a.valueColumn, "value-column", "", "Value column of the long layout")
	flags.StringSliceVar(&a.fixed, "fixed", nil, "Time-invariant columns carried to every wave")

	root.AddCommand(newReshapeCmd(a))
	root.AddCommand(newDescribeCmd(a))
	root.AddCommand(newFitCmd(a))

	return root
}

// Execute runs the command tree and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("log-json") {
		cfg.LogJSON = a.logJSON
	}
	if flags.Changed("id-column") {
		cfg.Schema.IDColumn = a.idColumn
	}
	if flags.Changed("prefix") {
		cfg.Schema.ValuePrefix = a.prefix
	}
	if flags.Changed("time-base") {
		cfg.Schema.TimeBase = a.timeBase
	}
	if flags.Changed("time-column") {
		cfg.Schema.TimeColumn = a.timeColumn
	}
	if flags.Changed("value-column") {
		cfg.Schema.ValueColumn = a.valueColumn
	}
	if flags.Changed("fixed") {
		cfg.Schema.FixedColumns = a.fixed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logging.Init(cmd.ErrOrStderr(), cfg.LogJSON, logging.ParseLevel(cfg.LogLevel))
	return nil
}

// load reads the table named by the first argument, or the configured source.
func (a *app) load(ctx context.Context, args []string) (*panel.Table, error) {
	source := a.cfg.Source
	if len(args) > 0 {
		source = args[0]
	}
	if source == "" {
		return nil, fmt.Errorf("no data source: pass a file or URL, or set %sSOURCE", config.Prefix)
	}

	table, err := panel.Load(ctx, source, a.cfg.Schema.CSVOptions())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}
	a.logger.Debug("loaded table", "source", source, "rows", table.Len(), "columns", len(table.Columns))
	return table, nil
}

// write sends output to path, or to the command's stdout when path is empty.
func write(cmd *cobra.Command, path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
