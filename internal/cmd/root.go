package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/telemetry"
	"github.com/felixgeelhaar/estima/internal/version"
)

func newRootCmd(s *session) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "estima",
		Short: "Probabilistic effort estimation and forecasting",
		Long: `estima turns three-point estimates into PERT distributions, rolls them up
through task trees, compares them, and forecasts completion from a history
of velocity.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			s.cc = cc

			tracing := cc.Settings.Tracing
			tracing.ServiceVersion = version.GetInfo().Version
			shutdown, err := telemetry.InitProvider(cmd.Context(), tracing)
			if err != nil {
				cc.Logger.Warn("failed to initialize tracing", "error", err)
			} else {
				s.shutdown = shutdown
			}

			cmd.SetContext(context.WithValue(cmd.Context(), commandContextKey{}, cc))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "settings file (YAML); ESTIMA_* variables override it")
	flags.BoolP("verbose", "v", false, "log at debug level")
	flags.String("format", "text", "output format: text, json or yaml")
	flags.String("metrics-out", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(
		newEstimateCmd(),
		newComposeCmd(),
		newCompareCmd(),
		newTreeCmd(),
		newSimilarCmd(),
		newForecastCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with the given context, then flushes
// traces and writes the metrics file if one was requested.
func ExecuteContext(ctx context.Context) error {
	s := &session{}
	err := newRootCmd(s).ExecuteContext(ctx)
	if ferr := s.finish(ctx); err == nil {
		err = ferr
	}
	return err
}
