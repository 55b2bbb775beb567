package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/compare"
)

func newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <triple> <triple>",
		Short: "Probability that one estimate comes in lower than another",
		Long: `Compute the probability that a draw from the first estimate is lower than
an independent draw from the second.

Example:
  estima compare 2,3,8 3,4,6`,
		Args: cobra.ExactArgs(2),
		RunE: instrumented("compare", runCompare),
	}

	cmd.Flags().Int("shape", 0, "PERT shape parameter (default from settings)")
	return cmd
}

type compareReport struct {
	First  string  `json:"first" yaml:"first"`
	Second string  `json:"second" yaml:"second"`
	Lower  float64 `json:"lower" yaml:"lower"`
	Higher float64 `json:"higher" yaml:"higher"`
}

func runCompare(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	shape := cc.Settings.Shape
	if cmd.Flags().Changed("shape") {
		shape, _ = cmd.Flags().GetInt("shape")
	}

	one, err := parseEstimate(args[0], shape)
	if err != nil {
		return err
	}
	two, err := parseEstimate(args[1], shape)
	if err != nil {
		return err
	}

	subintervals := cc.Settings.QuadratureSubintervals
	report := compareReport{
		First:  args[0],
		Second: args[1],
		Lower:  compare.EstimateIsLowerWith(one, two, subintervals),
		Higher: compare.EstimateIsLowerWith(two, one, subintervals),
	}
	cc.Metrics.Comparisons.Add(2)

	return render(cmd, cc, report, func(w io.Writer) error {
		fmt.Fprintf(w, "P(%s < %s) = %s\n", report.First, report.Second, formatProbability(report.Lower))
		fmt.Fprintf(w, "P(%s > %s) = %s\n", report.First, report.Second, formatProbability(report.Higher))
		return nil
	})
}
