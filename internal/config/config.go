// Package config holds the engine's tunable settings. Settings start from
// defaults, are overlaid by an optional YAML file, then by ESTIMA_*
// environment variables, and are validated last.
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/log"
	"github.com/felixgeelhaar/estima/internal/telemetry"
)

// Settings are the engine tunables.
type Settings struct {
	// Shape is the PERT shape parameter for new estimates.
	Shape int `yaml:"shape" env:"ESTIMA_SHAPE"`
	// PertSamples is the sample count of rendered estimate densities.
	PertSamples int `yaml:"pert_samples" env:"ESTIMA_PERT_SAMPLES"`
	// OutlierThreshold is the multiple of the raw mean above which a
	// velocity sample is an outlier.
	OutlierThreshold float64 `yaml:"outlier_threshold" env:"ESTIMA_OUTLIER_THRESHOLD"`
	// LognormSamples is the sample count of fitted velocity densities.
	LognormSamples int `yaml:"lognorm_samples" env:"ESTIMA_LOGNORM_SAMPLES"`
	// ConvolutionIterationCap bounds the periods a forecast iterates.
	ConvolutionIterationCap int `yaml:"convolution_iteration_cap" env:"ESTIMA_CONVOLUTION_CAP"`
	// CompletionProbability is the probability a forecast must reach.
	CompletionProbability float64 `yaml:"completion_probability" env:"ESTIMA_COMPLETION_PROBABILITY"`
	// PruneEpsilon drops density tails below this value while convolving.
	PruneEpsilon float64 `yaml:"prune_epsilon" env:"ESTIMA_PRUNE_EPSILON"`
	// QuadratureSubintervals splits integration ranges.
	QuadratureSubintervals int `yaml:"quadrature_subintervals" env:"ESTIMA_QUADRATURE_SUBINTERVALS"`
	// SimilarRankThreshold admits similar tasks by rank distance.
	SimilarRankThreshold float64 `yaml:"similar_rank_threshold" env:"ESTIMA_SIMILAR_RANK"`
	// SimilarDistanceThreshold admits similar tasks by absolute distance;
	// zero disables it.
	SimilarDistanceThreshold float64 `yaml:"similar_distance_threshold" env:"ESTIMA_SIMILAR_DISTANCE"`

	Log     LogSettings      `yaml:"log"`
	Tracing telemetry.Config `yaml:"tracing"`
}

// LogSettings select the log level and format.
type LogSettings struct {
	Level  string `yaml:"level" env:"ESTIMA_LOG_LEVEL"`
	Format string `yaml:"format" env:"ESTIMA_LOG_FORMAT"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Shape:                    4,
		PertSamples:              100,
		OutlierThreshold:         3.0,
		LognormSamples:           200,
		ConvolutionIterationCap:  200,
		CompletionProbability:    0.99,
		PruneEpsilon:             1e-9,
		QuadratureSubintervals:   20,
		SimilarRankThreshold:     1.0,
		SimilarDistanceThreshold: 0,
		Log: LogSettings{
			Level:  "info",
			Format: "text",
		},
		Tracing: telemetry.DefaultConfig(),
	}
}

// Load returns the defaults overlaid by the YAML file at path, when path is
// not empty, and by the environment.
func Load(path string) (Settings, error) {
	s := Default()
	if path != "" {
		if err := s.mergeFile(path); err != nil {
			return Settings{}, err
		}
	}
	if err := ParseEnv(&s); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeConfigInvalid, "invalid environment override", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (s *Settings) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.NewFileNotFoundError(path)
		}
		return errors.Wrap(errors.ErrCodeFileReadFailed, "read config file", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return errors.NewFileUnmarshalError(path, "YAML", err)
	}
	return nil
}

// Validate checks every setting is usable.
func (s Settings) Validate() error {
	switch {
	case s.Shape < 1:
		return errors.NewConfigInvalidError("shape", fmt.Sprintf("must be at least 1, got %d", s.Shape))
	case s.PertSamples < 1:
		return errors.NewConfigInvalidError("pert_samples", fmt.Sprintf("must be positive, got %d", s.PertSamples))
	case s.OutlierThreshold <= 1:
		return errors.NewConfigInvalidError("outlier_threshold", fmt.Sprintf("must be greater than 1, got %g", s.OutlierThreshold))
	case s.LognormSamples < 3:
		return errors.NewConfigInvalidError("lognorm_samples", fmt.Sprintf("must be at least 3, got %d", s.LognormSamples))
	case s.ConvolutionIterationCap < 1:
		return errors.NewConfigInvalidError("convolution_iteration_cap", fmt.Sprintf("must be positive, got %d", s.ConvolutionIterationCap))
	case !(s.CompletionProbability > 0 && s.CompletionProbability < 1):
		return errors.NewConfigInvalidError("completion_probability", fmt.Sprintf("must be in (0, 1), got %g", s.CompletionProbability))
	case s.PruneEpsilon < 0:
		return errors.NewConfigInvalidError("prune_epsilon", fmt.Sprintf("must not be negative, got %g", s.PruneEpsilon))
	case s.QuadratureSubintervals < 1:
		return errors.NewConfigInvalidError("quadrature_subintervals", fmt.Sprintf("must be positive, got %d", s.QuadratureSubintervals))
	case s.SimilarRankThreshold < 0:
		return errors.NewConfigInvalidError("similar_rank_threshold", fmt.Sprintf("must not be negative, got %g", s.SimilarRankThreshold))
	case s.SimilarDistanceThreshold < 0:
		return errors.NewConfigInvalidError("similar_distance_threshold", fmt.Sprintf("must not be negative, got %g", s.SimilarDistanceThreshold))
	case !(s.Tracing.SampleRate >= 0 && s.Tracing.SampleRate <= 1):
		return errors.NewConfigInvalidError("tracing.sample_rate", fmt.Sprintf("must be in [0, 1], got %g", s.Tracing.SampleRate))
	}
	if _, err := log.ParseLevel(s.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid setting log.level", err)
	}
	if _, err := log.ParseFormat(s.Log.Format); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "invalid setting log.format", err)
	}
	return nil
}

// LoggerConfig returns the logger configuration these settings select.
// Settings are assumed valid.
func (s Settings) LoggerConfig() log.Config {
	cfg := log.DefaultConfig()
	if level, err := log.ParseLevel(s.Log.Level); err == nil {
		cfg.Level = level
	}
	if format, err := log.ParseFormat(s.Log.Format); err == nil {
		cfg.Format = format
	}
	return cfg
}
