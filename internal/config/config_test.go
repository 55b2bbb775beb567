package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/log"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "estima.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Equal(t, 4, s.Shape)
	assert.Equal(t, 0.99, s.CompletionProbability)
}

func TestLoadWithoutFile(t *testing.T) {
	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := writeFile(t, `
shape: 6
pert_samples: 250
completion_probability: 0.95
log:
  level: debug
tracing:
  enabled: true
`)
	t.Setenv("ESTIMA_PERT_SAMPLES", "400")
	t.Setenv("ESTIMA_LOG_FORMAT", "json")
	t.Setenv("ESTIMA_OTLP_ENDPOINT", "localhost:4318")

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, s.Shape)
	assert.Equal(t, 400, s.PertSamples, "environment wins over the file")
	assert.Equal(t, 0.95, s.CompletionProbability)
	assert.Equal(t, 200, s.LognormSamples, "unset keys keep defaults")
	assert.True(t, s.Tracing.Enabled)
	assert.Equal(t, "localhost:4318", s.Tracing.Endpoint)
	assert.Equal(t, "estima", s.Tracing.ServiceName)

	cfg := s.LoggerConfig()
	assert.Equal(t, log.LevelDebug, cfg.Level)
	assert.Equal(t, log.FormatJSON, cfg.Format)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, errors.IsCode(err, errors.ErrCodeFileNotFound))
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := Load(writeFile(t, "shape: [1"))
		assert.True(t, errors.IsCode(err, errors.ErrCodeFileUnmarshal))
	})

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("ESTIMA_SHAPE", "wide")
		_, err := Load("")
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeFile(t, "completion_probability: 1.5\n"))
		assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"shape", func(s *Settings) { s.Shape = 0 }},
		{"pert samples", func(s *Settings) { s.PertSamples = 0 }},
		{"outlier threshold", func(s *Settings) { s.OutlierThreshold = 1 }},
		{"lognorm samples", func(s *Settings) { s.LognormSamples = 2 }},
		{"iteration cap", func(s *Settings) { s.ConvolutionIterationCap = 0 }},
		{"probability zero", func(s *Settings) { s.CompletionProbability = 0 }},
		{"probability one", func(s *Settings) { s.CompletionProbability = 1 }},
		{"prune epsilon", func(s *Settings) { s.PruneEpsilon = -1 }},
		{"subintervals", func(s *Settings) { s.QuadratureSubintervals = 0 }},
		{"rank threshold", func(s *Settings) { s.SimilarRankThreshold = -1 }},
		{"distance threshold", func(s *Settings) { s.SimilarDistanceThreshold = -0.5 }},
		{"log level", func(s *Settings) { s.Log.Level = "loud" }},
		{"log format", func(s *Settings) { s.Log.Format = "xml" }},
		{"sample rate", func(s *Settings) { s.Tracing.SampleRate = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
		})
	}
}
