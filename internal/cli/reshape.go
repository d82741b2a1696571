package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sartorproj/golda/panel"
)

func newReshapeCmd(a *app) *cobra.Command {
	var (
		to     string
		output string
	)

	cmd := &cobra.Command{
		Use:   "reshape [source]",
		Short: "Convert between person-level and person-period layouts",
		Long: `Convert a panel between the person-level (wide) layout, one row per person
with one value column per wave, and the person-period (long) layout, one row
per person and wave.

Examples:
  lda reshape tolerance.csv --to long --output tolerance_pp.csv
  lda reshape tolerance_pp.csv --to wide`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := a.load(cmd.Context(), args)
			if err != nil {
				return err
			}

			var out *panel.Table
			switch to {
			case "long":
				out, err = panel.ToLong(in, a.cfg.Schema.LongSpec())
			case "wide":
				out, err = panel.ToWide(in, a.cfg.Schema.WideSpec())
			default:
				return fmt.Errorf("unknown layout %q: want long or wide", to)
			}
			if err != nil {
				return fmt.Errorf("reshape to %s: %w", to, err)
			}

			a.logger.Info("reshaped table", "to", to, "rows_in", in.Len(), "rows_out", out.Len())
			return write(cmd, output, func(w io.Writer) error {
				return panel.WriteCSV(w, out)
			})
		},
	}

	cmd.Flags().StringVar(&to, "to", "long", "Target layout: long, wide")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
