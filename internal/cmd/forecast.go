package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/estima/internal/estimate"
	"github.com/felixgeelhaar/estima/internal/forecast"
	"github.com/felixgeelhaar/estima/internal/telemetry"
)

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast when work will be finished",
		Long: `Fit a velocity model to the work completed in past periods and compute,
period by period, the probability that the given work is done. The work is
a fixed amount, a three-point estimate, or the remaining estimate of a board.

Examples:
  estima forecast --history 5,6,4,7,5 --work 40
  estima forecast --history 5,6,4,7,5 --estimate 30,40,60
  estima forecast --history 5,6,4,7,5 --board board.yaml`,
		Args: cobra.NoArgs,
		RunE: instrumented("forecast", runForecast),
	}

	cmd.Flags().Float64Slice("history", nil, "work completed in each past period")
	cmd.Flags().Float64("work", 0, "fixed amount of work left")
	cmd.Flags().String("estimate", "", "work left as optimistic,most_likely,pessimistic")
	cmd.Flags().String("board", "", "board whose remaining point estimate is the work left")
	cmd.Flags().Float64("probability", 0, "stop once this completion probability is reached (default from settings)")
	_ = cmd.MarkFlagRequired("history")
	cmd.MarkFlagsMutuallyExclusive("work", "estimate", "board")
	cmd.MarkFlagsOneRequired("work", "estimate", "board")
	return cmd
}

type forecastReport struct {
	Work         estimateSummary  `json:"work" yaml:"work"`
	VelocityMean float64          `json:"velocity_mean" yaml:"velocity_mean"`
	Target       float64          `json:"target_probability" yaml:"target_probability"`
	Reached      bool             `json:"reached" yaml:"reached"`
	Curve        []forecast.Point `json:"curve" yaml:"curve"`
	TimeToFinish *finishSummary   `json:"time_to_finish,omitempty" yaml:"time_to_finish,omitempty"`
}

// finishSummary condenses the time-to-finish density.
type finishSummary struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	Median float64 `json:"median" yaml:"median"`
	P90    float64 `json:"p90" yaml:"p90"`
}

func forecastWork(cc *CommandContext, cmd *cobra.Command) (estimate.Estimate, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("estimate"):
		s, _ := flags.GetString("estimate")
		return parseEstimate(s, cc.Settings.Shape)
	case flags.Changed("board"):
		path, _ := flags.GetString("board")
		_, m, err := loadBoard(cc, path)
		if err != nil {
			return estimate.Estimate{}, err
		}
		return m.Root().RemainingPointEstimate(), nil
	default:
		work, _ := flags.GetFloat64("work")
		return estimate.New(work, 0), nil
	}
}

func runForecast(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	opts := cc.ForecastOptions()
	if cmd.Flags().Changed("probability") {
		opts.Probability, _ = cmd.Flags().GetFloat64("probability")
		if err := checkConfidence(opts.Probability); err != nil {
			return err
		}
	}
	history, _ := cmd.Flags().GetFloat64Slice("history")

	work, err := forecastWork(cc, cmd)
	if err != nil {
		return err
	}

	velocity, err := forecast.VelocityFromHistory(history, opts)
	if err != nil {
		return err
	}

	_, span := telemetry.StartEngineSpan(ctx, "completion_curve")
	curve, reached, err := forecast.CompletionCurveForWork(velocity, work, opts)
	if err != nil {
		telemetry.RecordError(span, err)
		span.End()
		return err
	}
	telemetry.RecordSuccess(span,
		attribute.Int("periods", len(curve)),
		attribute.Bool("reached", reached))
	span.End()

	report := forecastReport{
		Work:         summarize(work, 0.9),
		VelocityMean: velocity.Mean(),
		Target:       opts.Probability,
		Reached:      reached,
		Curve:        curve,
	}

	if work.Expected() > 0 {
		_, span := telemetry.StartEngineSpan(ctx, "time_to_finish")
		finish, err := forecast.TimeToFinish(work, velocity, opts)
		if err != nil {
			telemetry.RecordError(span, err)
			span.End()
			return err
		}
		span.End()
		report.TimeToFinish = &finishSummary{
			Mean:   finish.Mean(),
			Median: densityQuantile(finish, 0.5),
			P90:    densityQuantile(finish, 0.9),
		}
	}

	return render(cmd, cc, report, func(w io.Writer) error {
		fmt.Fprintf(w, "work: %s, mean velocity: %s per period\n",
			formatEstimate(work), formatFloat(report.VelocityMean))

		t := newTable([]string{"period", "P(done)"}, 0, 1)
		for _, p := range report.Curve {
			t.Row(fmt.Sprint(p.Period), formatProbability(p.Probability))
		}
		fmt.Fprintln(w, t.Render())

		if reached {
			fmt.Fprintf(w, "%s likely done after %d periods\n",
				formatProbability(report.Target), len(report.Curve))
		} else {
			fmt.Fprintf(w, "%s not reached within %d periods\n",
				formatProbability(report.Target), len(report.Curve))
		}
		if f := report.TimeToFinish; f != nil {
			fmt.Fprintf(w, "time to finish: mean %s, median %s, 90%% by %s periods\n",
				formatFloat(f.Mean), formatFloat(f.Median), formatFloat(f.P90))
		}
		return nil
	})
}
