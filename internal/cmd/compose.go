package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/estimate"
)

func newComposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compose <triple> <triple>...",
		Short: "Sum independent estimates",
		Long: `Compose independent estimates into the estimate of their sum. By default
expected values and variances add and the result keeps no triple. With
--parameters the skewness is carried as well and the result is solved back
into a PERT triple.

Examples:
  estima compose 1,2,4 2,3,6 1,1,2
  estima compose 1,2,4 2,3,6 --parameters`,
		Args: cobra.MinimumNArgs(1),
		RunE: instrumented("compose", runCompose),
	}

	cmd.Flags().Bool("parameters", false, "carry skewness and solve back into a triple")
	cmd.Flags().Int("shape", 0, "PERT shape parameter (default from settings)")
	cmd.Flags().Float64("confidence", 0.9, "mass of the central interval")
	return cmd
}

type composeReport struct {
	Operands []estimateSummary `json:"operands" yaml:"operands"`
	Result   estimateSummary   `json:"result" yaml:"result"`
	Path     string            `json:"path" yaml:"path"`
}

func runCompose(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	shape := cc.Settings.Shape
	if flags.Changed("shape") {
		shape, _ = flags.GetInt("shape")
	}
	confidence, _ := flags.GetFloat64("confidence")
	if err := checkConfidence(confidence); err != nil {
		return err
	}
	byParameters, _ := flags.GetBool("parameters")

	operands := make([]estimate.Estimate, len(args))
	for i, arg := range args {
		e, err := parseEstimate(arg, shape)
		if err != nil {
			return err
		}
		operands[i] = e
	}

	path := "simple"
	result := estimate.Sum(operands...)
	if byParameters {
		path = "parameters"
		result = operands[0]
		for _, e := range operands[1:] {
			next, err := result.ComposeUsingParameters(e)
			if err != nil {
				return err
			}
			result = next
		}
	}
	cc.Metrics.Compositions.WithLabelValues(path).Add(float64(len(operands) - 1))

	report := composeReport{Result: summarize(result, confidence), Path: path}
	for _, e := range operands {
		report.Operands = append(report.Operands, summarize(e, confidence))
	}

	return render(cmd, cc, report, func(w io.Writer) error {
		t := newTable([]string{"operand", "expected", "sigma", "skewness"}, 1, 2, 3)
		for i, s := range report.Operands {
			t.Row(args[i], formatFloat(s.Expected), formatFloat(s.Sigma), formatFloat(s.Skewness))
		}
		fmt.Fprintln(w, t.Render())
		fmt.Fprintf(w, "sum (%s):\n", path)
		fmt.Fprintln(w, report.Result.table().Render())
		return nil
	})
}
