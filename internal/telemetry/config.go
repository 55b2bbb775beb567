package telemetry

// Config holds configuration for the tracer
type Config struct {
	// ServiceName is the name of the service
	ServiceName string `yaml:"-"`

	// ServiceVersion is the version of the service
	ServiceVersion string `yaml:"-"`

	// Enabled determines whether tracing is enabled
	// When false, a noop tracer is used
	Enabled bool `yaml:"enabled" env:"ESTIMA_TRACING"`

	// Endpoint is the OTLP/HTTP collector, as host:port or a URL
	// If empty, spans are recorded but not exported
	Endpoint string `yaml:"endpoint" env:"ESTIMA_OTLP_ENDPOINT"`

	// SampleRate is the fraction of traces to sample (0.0 to 1.0)
	SampleRate float64 `yaml:"sample_rate" env:"ESTIMA_TRACE_SAMPLE_RATE"`
}

// DefaultConfig returns tracing disabled, the right default for a CLI
func DefaultConfig() Config {
	return Config{
		ServiceName:    "estima",
		ServiceVersion: "dev",
		Enabled:        false,
		SampleRate:     1.0,
	}
}
