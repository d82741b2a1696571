package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sartorproj/golda/panel"
	"github.com/sartorproj/golda/stats"
)

func newDescribeCmd(a *app) *cobra.Command {
	var (
		columns []string
		long    bool
		noCorr  bool
	)

	cmd := &cobra.Command{
		Use:   "describe [source]",
		Short: "Print descriptive statistics and correlations",
		Long: `Print per-column descriptive statistics and the pairwise correlation matrix
of a panel. Missing cells are skipped.

Examples:
  lda describe tolerance.csv
  lda describe tolerance.csv --columns tol11,tol12,tol13,tol14,tol15
  lda describe tolerance.csv --long --columns tolerance`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}
			if long {
				table, err = panel.ToLong(table, a.cfg.Schema.LongSpec())
				if err != nil {
					return fmt.Errorf("reshape to long: %w", err)
				}
			}

			descs, err := stats.DescribeTable(table, columns...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := writeDescriptions(out, descs); err != nil {
				return err
			}
			if noCorr || len(descs) < 2 {
				return nil
			}

			names := make([]string, len(descs))
			for i, d := range descs {
				names[i] = d.Name
			}
			corr, err := stats.Correlations(table, names...)
			if err != nil {
				return err
			}
			fmt.Fprintln(out)
			return writeCorrelations(out, corr)
		},
	}

	cmd.Flags().StringSliceVarP(&columns, "columns", "c", nil, "Columns to describe (default: all)")
	cmd.Flags().BoolVar(&long, "long", false, "Reshape to the person-period layout first")
	cmd.Flags().BoolVar(&noCorr, "no-correlations", false, "Skip the correlation matrix")

	return cmd
}

func writeDescriptions(w io.Writer, descs []stats.Description) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "column\tn\tmissing\tmean\tsd\tmin\tq1\tmedian\tq3\tmax")
	for _, d := range descs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			d.Name, d.N, d.Missing, d.Mean, d.SD, d.Min, d.Q1, d.Median, d.Q3, d.Max)
	}
	return tw.Flush()
}

func writeCorrelations(w io.Writer, corr *stats.CorrelationMatrix) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for _, c := range corr.Columns {
		fmt.Fprintf(tw, "%s\t", c)
	}
	fmt.Fprintln(tw)
	for i, row := range corr.Columns {
		fmt.Fprintf(tw, "%s\t", row)
		for j := range corr.Columns {
			fmt.Fprintf(tw, "%.2f\t", corr.Values.At(i, j))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
