package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/estima/internal/config"
	"github.com/felixgeelhaar/estima/internal/forecast"
	"github.com/felixgeelhaar/estima/internal/log"
	"github.com/felixgeelhaar/estima/internal/metrics"
	"github.com/felixgeelhaar/estima/internal/model"
	"github.com/felixgeelhaar/estima/internal/telemetry"
	"github.com/felixgeelhaar/estima/internal/version"
)

// CommandContext holds the flags and the services built from them for one
// invocation. Commands get it with commandContext instead of reading
// globals, so tests can run many command trees side by side.
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string

	// Configuration
	ConfigPath string
	MetricsOut string
	Settings   config.Settings

	Logger   *log.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

type commandContextKey struct{}

// NewCommandContext reads the persistent flags, loads settings from the
// config file and environment, and builds the logger and metrics registry.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}
	switch format {
	case "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("invalid argument %q for --format: want text, json or yaml", format)
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	metricsOut, err := cmd.Flags().GetString("metrics-out")
	if err != nil {
		return nil, err
	}

	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := settings.LoggerConfig()
	logCfg.Output = cmd.ErrOrStderr()
	if verbose {
		logCfg.Level = log.LevelDebug
	}
	logger := log.New(logCfg).With("version", version.GetInfo().Short())

	registry, m := metrics.NewRegistry()

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		ConfigPath: configPath,
		MetricsOut: metricsOut,
		Settings:   settings,
		Logger:     logger,
		Metrics:    m,
		Registry:   registry,
	}, nil
}

// commandContext returns the context stored by the root command's
// pre-run hook.
func commandContext(cmd *cobra.Command) (*CommandContext, error) {
	cc, ok := cmd.Context().Value(commandContextKey{}).(*CommandContext)
	if !ok {
		return nil, fmt.Errorf("command context not initialized for %q", cmd.Name())
	}
	return cc, nil
}

// ModelOptions wires the logger and metrics into a new model.
func (cc *CommandContext) ModelOptions() []model.Option {
	return []model.Option{
		model.WithLogger(cc.Logger.With("component", "model")),
		model.WithMetrics(cc.Metrics),
	}
}

// ForecastOptions maps the settings onto forecast tuning.
func (cc *CommandContext) ForecastOptions() forecast.Options {
	opts := forecast.DefaultOptions()
	opts.OutlierThreshold = cc.Settings.OutlierThreshold
	opts.LognormSamples = cc.Settings.LognormSamples
	opts.IterationCap = cc.Settings.ConvolutionIterationCap
	opts.Probability = cc.Settings.CompletionProbability
	opts.PruneEpsilon = cc.Settings.PruneEpsilon
	opts.Subintervals = cc.Settings.QuadratureSubintervals
	opts.WorkSamples = cc.Settings.PertSamples
	opts.Logger = cc.Logger.With("component", "forecast")
	opts.Metrics = cc.Metrics
	return opts
}

// SimilarOptions maps the settings onto similar-task thresholds.
func (cc *CommandContext) SimilarOptions() model.SimilarOptions {
	return model.SimilarOptions{
		RankThreshold:     cc.Settings.SimilarRankThreshold,
		DistanceThreshold: cc.Settings.SimilarDistanceThreshold,
	}
}

// instrumented wraps a command body with a span, a duration metric and
// error logging.
func instrumented(name string, run func(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cc, err := commandContext(cmd)
		if err != nil {
			return err
		}

		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		defer span.End()

		start := time.Now()
		err = run(ctx, cc, cmd, args)
		cc.Metrics.RecordCommand(name, time.Since(start), err)

		if err != nil {
			telemetry.RecordError(span, err)
			cc.Logger.WithError(err).Debug("command failed", "command", name)
			return err
		}
		telemetry.RecordSuccess(span, attribute.String("format", cc.Format))
		return nil
	}
}

// session carries what must be torn down after the command tree returns,
// whether or not the command succeeded.
type session struct {
	cc       *CommandContext
	shutdown func(context.Context) error
}

func (s *session) finish(ctx context.Context) error {
	if s.cc == nil {
		return nil
	}
	if s.shutdown != nil {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.shutdown(shutdownCtx); err != nil {
			s.cc.Logger.Warn("failed to shut down tracing", "error", err)
		}
	}
	if s.cc.MetricsOut != "" {
		if err := metrics.WriteTextfile(s.cc.MetricsOut, s.cc.Registry); err != nil {
			return fmt.Errorf("write metrics to %s: %w", s.cc.MetricsOut, err)
		}
	}
	return nil
}

// output writes to the command's stdout.
func output(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
