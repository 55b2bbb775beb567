package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/estimate"
)

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate [optimistic,most_likely,pessimistic]",
		Short: "Summarize a three-point estimate",
		Long: `Turn a three-point estimate into a PERT distribution and print its moments
and a central interval. With --mean, --sigma and --skew the triple is solved
from the moments instead.

Examples:
  # Moments of a 2/3/8 day estimate
  estima estimate 2,3,8

  # Sampled density over the default domain
  estima estimate 2,3,8 --density --samples 20

  # Which triple has mean 10, sigma 2 and skew 0.5?
  estima estimate --mean 10 --sigma 2 --skew 0.5`,
		Args: cobra.MaximumNArgs(1),
		RunE: instrumented("estimate", runEstimate),
	}

	cmd.Flags().Int("shape", 0, "PERT shape parameter (default from settings)")
	cmd.Flags().Float64("confidence", 0.9, "mass of the central interval")
	cmd.Flags().Bool("density", false, "print the sampled density")
	cmd.Flags().Int("samples", 0, "density sample count (default from settings)")
	cmd.Flags().Float64("mean", 0, "solve the triple from this expected value")
	cmd.Flags().Float64("sigma", 0, "standard deviation used with --mean")
	cmd.Flags().Float64("skew", 0, "skewness used with --mean")
	cmd.MarkFlagsRequiredTogether("mean", "sigma")
	return cmd
}

type estimateReport struct {
	Estimate estimateSummary `json:"estimate" yaml:"estimate"`
	Density  []densityPoint  `json:"density,omitempty" yaml:"density,omitempty"`
}

type densityPoint struct {
	X   float64 `json:"x" yaml:"x"`
	PDF float64 `json:"pdf" yaml:"pdf"`
}

func runEstimate(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	shape := cc.Settings.Shape
	if flags.Changed("shape") {
		shape, _ = flags.GetInt("shape")
	}
	confidence, _ := flags.GetFloat64("confidence")
	if err := checkConfidence(confidence); err != nil {
		return err
	}

	var in estimate.Input
	switch {
	case flags.Changed("mean"):
		if len(args) > 0 {
			return fmt.Errorf("give either a triple or --mean, not both")
		}
		mean, _ := flags.GetFloat64("mean")
		sigma, _ := flags.GetFloat64("sigma")
		skew, _ := flags.GetFloat64("skew")
		solved, err := estimate.InputFromParameters(mean, sigma*sigma, skew, shape)
		if err != nil {
			return err
		}
		in = solved
	case len(args) == 1:
		parsed, err := parseTriple(args[0], shape)
		if err != nil {
			return err
		}
		in = parsed
	default:
		return fmt.Errorf("requires a triple argument or --mean and --sigma")
	}

	e, err := estimate.FromInput(in)
	if err != nil {
		return err
	}
	cc.Logger.Debug("estimate built",
		"expected", e.Expected(),
		"sigma", e.Sigma(),
		"shape", e.Shape())

	report := estimateReport{Estimate: summarize(e, confidence)}
	if density, _ := flags.GetBool("density"); density {
		samples := cc.Settings.PertSamples
		if flags.Changed("samples") {
			samples, _ = flags.GetInt("samples")
		}
		d, err := e.PertDensity(samples)
		if err != nil {
			return err
		}
		cc.Metrics.DensitySamples.WithLabelValues("pert").Observe(float64(samples))
		report.Density = make([]densityPoint, d.Len())
		for i := range d.Domain {
			report.Density[i] = densityPoint{X: d.Domain[i], PDF: d.Values[i]}
		}
	}

	return render(cmd, cc, report, func(w io.Writer) error {
		fmt.Fprintln(w, report.Estimate.table().Render())
		if len(report.Density) == 0 {
			return nil
		}
		t := newTable([]string{"x", "pdf"}, 0, 1)
		for _, p := range report.Density {
			t.Row(formatFloat(p.X), fmt.Sprintf("%.4f", p.PDF))
		}
		fmt.Fprintln(w, t.Render())
		return nil
	})
}
