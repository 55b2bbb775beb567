package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// Metrics holds all Prometheus metrics for Estima
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec
	CommandErrors     *prometheus.CounterVec

	// Estimation model metrics
	ModelOperations *prometheus.CounterVec
	ModelTasks      prometheus.Gauge
	Compositions    *prometheus.CounterVec

	// Density and comparison metrics
	DensitySamples *prometheus.HistogramVec
	Comparisons    prometheus.Counter

	// Forecast metrics
	Forecasts       *prometheus.CounterVec
	ForecastPeriods prometheus.Histogram

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Command metrics
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "estima_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		CommandErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_command_errors_total",
				Help: "Total number of command errors",
			},
			[]string{"command", "error_code"},
		),

		// Model metrics
		ModelOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_model_operations_total",
				Help: "Total number of estimation model operations",
			},
			[]string{"operation", "success"},
		),
		ModelTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "estima_model_tasks",
				Help: "Number of tasks indexed by the most recently built model",
			},
		),
		Compositions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_compositions_total",
				Help: "Total number of estimate compositions by path",
			},
			[]string{"path"},
		),

		// Density metrics
		DensitySamples: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "estima_density_samples",
				Help:    "Number of sample points in computed densities",
				Buckets: []float64{10, 50, 100, 200, 500, 1000, 5000},
			},
			[]string{"kind"},
		),
		Comparisons: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "estima_comparisons_total",
				Help: "Total number of stochastic dominance comparisons",
			},
		),

		// Forecast metrics
		Forecasts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_forecasts_total",
				Help: "Total number of completion forecasts",
			},
			[]string{"reached"},
		),
		ForecastPeriods: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "estima_forecast_periods",
				Help:    "Number of periods a completion forecast iterated",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200},
			},
		),

		// Error metrics (by structured error code)
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "estima_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordCommand records one command execution and its outcome.
func (m *Metrics) RecordCommand(command string, duration time.Duration, err error) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
	if err != nil {
		m.CommandErrors.WithLabelValues(command, errorCode(err)).Inc()
		m.RecordError(err, "cmd")
	}
}

// RecordModelOperation records a model mutation or lookup.
func (m *Metrics) RecordModelOperation(operation string, err error) {
	m.ModelOperations.WithLabelValues(operation, strconv.FormatBool(err == nil)).Inc()
	if err != nil {
		m.RecordError(err, "model")
	}
}

// RecordForecast records how many periods a forecast ran and whether it
// reached its target probability.
func (m *Metrics) RecordForecast(periods int, reached bool) {
	m.Forecasts.WithLabelValues(strconv.FormatBool(reached)).Inc()
	m.ForecastPeriods.Observe(float64(periods))
}

// RecordError counts an error under its code.
func (m *Metrics) RecordError(err error, component string) {
	if err == nil {
		return
	}
	m.Errors.WithLabelValues(errorCode(err), component).Inc()
}

func errorCode(err error) string {
	if code, ok := errors.CodeOf(err); ok {
		return string(code)
	}
	return "unknown"
}
