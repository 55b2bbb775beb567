package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/estima/internal/card"
	"github.com/felixgeelhaar/estima/internal/config"
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/version"
)

const board = `
cards:
  - name: epic
    title: Checkout rework
    children:
      - name: api
        status: done
        estimate: {optimistic: 2, most_likely: 3, pessimistic: 6}
      - name: ui
        estimate: {optimistic: 1, most_likely: 2, pessimistic: 3}
  - name: chore
    point_cost: 2
`

// runCLI executes a fresh command tree and returns what it wrote to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	s := &session{}
	root := newRootCmd(s)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)

	ctx := context.Background()
	err := root.ExecuteContext(ctx)
	if ferr := s.finish(ctx); err == nil {
		err = ferr
	}
	return out.String(), err
}

func runJSON(t *testing.T, target any, args ...string) {
	t.Helper()
	out, err := runCLI(t, append(args, "--format", "json")...)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), target), out)
}

func writeBoard(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(board), 0644))
	return path
}

func TestEstimateCommand(t *testing.T) {
	var report estimateReport
	runJSON(t, &report, "estimate", "1,2,4")

	assert.InDelta(t, 13.0/6, report.Estimate.Expected, 1e-9)
	assert.InDelta(t, (7.0/6)*(11.0/6)/7, report.Estimate.Variance, 1e-9)
	require.NotNil(t, report.Estimate.Source)
	assert.Equal(t, 2.0, report.Estimate.Source.MostLikely)
	assert.Less(t, report.Estimate.IntervalLow, report.Estimate.IntervalHigh)
	assert.Empty(t, report.Density)
}

func TestEstimateCommandText(t *testing.T) {
	out, err := runCLI(t, "estimate", "1,2,4")
	require.NoError(t, err)
	assert.Contains(t, out, "expected")
	assert.Contains(t, out, "2.17")
	assert.Contains(t, out, "90.0% interval")
}

func TestEstimateCommandDensity(t *testing.T) {
	var report estimateReport
	runJSON(t, &report, "estimate", "1,2,4", "--density", "--samples", "10")

	require.Len(t, report.Density, 10)
	assert.Equal(t, 1.0, report.Density[0].X)
	assert.Equal(t, 4.0, report.Density[9].X)
}

func TestEstimateCommandFromParameters(t *testing.T) {
	var report estimateReport
	runJSON(t, &report, "estimate", "--mean", "10", "--sigma", "2", "--skew", "0.5")

	assert.InDelta(t, 10, report.Estimate.Expected, 1e-6)
	assert.InDelta(t, 2, report.Estimate.Sigma, 1e-6)
	assert.InDelta(t, 0.5, report.Estimate.Skewness, 1e-6)
}

func TestEstimateCommandErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.ErrorCode
	}{
		{"bad ordering", []string{"estimate", "3,2,4"}, errors.ErrCodeInvalidOrdering},
		{"infeasible skew", []string{"estimate", "--mean", "10", "--sigma", "2", "--skew", "1.9"}, errors.ErrCodeInfeasibleParameters},
		{"bad confidence", []string{"estimate", "1,2,4", "--confidence", "1.5"}, errors.ErrCodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, tt.code), "got %v", err)
		})
	}

	t.Run("no input", func(t *testing.T) {
		_, err := runCLI(t, "estimate")
		assert.Error(t, err)
	})

	t.Run("malformed triple", func(t *testing.T) {
		_, err := runCLI(t, "estimate", "1,2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid triple")
	})
}

func TestComposeCommand(t *testing.T) {
	var simple composeReport
	runJSON(t, &simple, "compose", "1,2,4", "2,3,5")

	assert.Equal(t, "simple", simple.Path)
	require.Len(t, simple.Operands, 2)
	assert.InDelta(t, 13.0/6+19.0/6, simple.Result.Expected, 1e-9)
	assert.InDelta(t, simple.Operands[0].Variance+simple.Operands[1].Variance, simple.Result.Variance, 1e-9)
	assert.Nil(t, simple.Result.Source, "a simple sum keeps no triple")

	var byParameters composeReport
	runJSON(t, &byParameters, "compose", "1,2,4", "2,3,5", "--parameters")

	assert.Equal(t, "parameters", byParameters.Path)
	assert.InDelta(t, simple.Result.Expected, byParameters.Result.Expected, 1e-6)
	assert.InDelta(t, simple.Result.Sigma, byParameters.Result.Sigma, 1e-6)
	assert.NotNil(t, byParameters.Result.Source)
}

func TestCompareCommand(t *testing.T) {
	var disjoint compareReport
	runJSON(t, &disjoint, "compare", "1,2,3", "5,6,7")
	assert.InDelta(t, 1, disjoint.Lower, 1e-9)
	assert.InDelta(t, 0, disjoint.Higher, 1e-9)

	var even compareReport
	runJSON(t, &even, "compare", "1,2,4", "1,2,4")
	assert.InDelta(t, 0.5, even.Lower, 1e-6)
	assert.InDelta(t, 1, even.Lower+even.Higher, 1e-6)

	out, err := runCLI(t, "compare", "1,2,3", "5,6,7")
	require.NoError(t, err)
	assert.Contains(t, out, "P(1,2,3 < 5,6,7) = 100.0%")
}

func TestTreeCommand(t *testing.T) {
	path := writeBoard(t)

	var report treeReport
	runJSON(t, &report, "tree", path)

	assert.InDelta(t, 20.0/6+2+2, report.Nominal.Expected(), 1e-9)
	assert.InDelta(t, 2+2, report.Remaining.Expected(), 1e-9, "done cards are masked")
	require.Len(t, report.Cards, 2)

	epic := report.Cards[0]
	require.NotNil(t, epic.Projection)
	assert.True(t, epic.Projection.Composite)
	api := epic.Children[0]
	require.NotNil(t, api.Projection)
	assert.True(t, api.Projection.Masked)
	assert.Zero(t, api.Projection.RemainingPoint.Expected())

	out, err := runCLI(t, "tree", path)
	require.NoError(t, err)
	for _, want := range []string{"epic", "api", "ui", "chore", "total", "(masked)"} {
		assert.Contains(t, out, want)
	}
}

func TestTreeCommandWritesProjections(t *testing.T) {
	path := writeBoard(t)
	out := filepath.Join(t.TempDir(), "projected.yaml")

	_, err := runCLI(t, "tree", path, "--write", out)
	require.NoError(t, err)

	cards, err := card.Load(out)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	require.NotNil(t, cards[1].Projection)
	assert.Equal(t, "chore", cards[1].Projection.Name)
	assert.InDelta(t, 2, cards[1].Projection.NominalPoint.Expected(), 1e-9)
}

func TestTreeCommandMissingBoard(t *testing.T) {
	_, err := runCLI(t, "tree", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeFileNotFound))
}

func TestSimilarCommand(t *testing.T) {
	path := writeBoard(t)

	var none []similarEntry
	runJSON(t, &none, "similar", path, "api")
	assert.Empty(t, none, "nothing is within one rank distance of api")

	var wide []similarEntry
	runJSON(t, &wide, "similar", path, "api", "--rank", "2")
	require.Len(t, wide, 2)
	var names []string
	for _, e := range wide {
		names = append(names, e.Name)
		assert.InDelta(t, 20.0/6-2, e.Distance, 1e-9)
		assert.NotNil(t, e.RankDistance)
	}
	assert.ElementsMatch(t, []string{"ui", "chore"}, names)

	out, err := runCLI(t, "similar", path, "api")
	require.NoError(t, err)
	assert.Contains(t, out, "no task is similar to api")

	_, err = runCLI(t, "similar", path, "ghost")
	assert.True(t, errors.IsCode(err, errors.ErrCodeUnknownEntity))
}

func TestForecastCommand(t *testing.T) {
	var fixed forecastReport
	runJSON(t, &fixed, "forecast", "--history", "3,4,4,5,6,7,9", "--work", "20")

	require.True(t, fixed.Reached)
	require.NotEmpty(t, fixed.Curve)
	last := fixed.Curve[len(fixed.Curve)-1]
	assert.GreaterOrEqual(t, last.Probability, 0.99)
	assert.Equal(t, len(fixed.Curve), last.Period)
	for i := 1; i < len(fixed.Curve); i++ {
		assert.GreaterOrEqual(t, fixed.Curve[i].Probability, fixed.Curve[i-1].Probability-1e-9)
	}

	require.NotNil(t, fixed.TimeToFinish)
	want := 20 * (38.0 / 7) / 25
	assert.InDelta(t, want, fixed.TimeToFinish.Mean, 0.15*want)
	assert.LessOrEqual(t, fixed.TimeToFinish.Median, fixed.TimeToFinish.P90)

	var uncertain forecastReport
	runJSON(t, &uncertain, "forecast", "--history", "3,4,4,5,6,7,9", "--estimate", "15,20,30")
	require.True(t, uncertain.Reached)
	assert.NotNil(t, uncertain.TimeToFinish)
	assert.InDelta(t, (15+80+30)/6.0, uncertain.Work.Expected, 1e-9)
}

func TestForecastCommandFromBoard(t *testing.T) {
	var report forecastReport
	runJSON(t, &report, "forecast", "--history", "3,4,4,5,6,7,9", "--board", writeBoard(t))

	assert.InDelta(t, 4, report.Work.Expected, 1e-9)
	assert.True(t, report.Reached)
}

func TestForecastCommandErrors(t *testing.T) {
	_, err := runCLI(t, "forecast", "--history", "3,4,5")
	assert.Error(t, err, "work is required")

	_, err = runCLI(t, "forecast", "--work", "10")
	assert.Error(t, err, "history is required")

	_, err = runCLI(t, "forecast", "--history", "3,4,5", "--work", "10", "--estimate", "1,2,3")
	assert.Error(t, err, "work sources are exclusive")

	_, err = runCLI(t, "forecast", "--history", "0,0,0", "--work", "10")
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))
}

func TestConfigCommands(t *testing.T) {
	var settings config.Settings
	runJSON(t, &settings, "config", "view")
	assert.Equal(t, config.Default().Shape, settings.Shape)

	out, err := runCLI(t, "config", "get", "log.level")
	require.NoError(t, err)
	assert.Equal(t, "info", strings.TrimSpace(out))

	path := filepath.Join(t.TempDir(), "estima.yaml")
	require.NoError(t, os.WriteFile(path, []byte("shape: 6\n"), 0644))
	out, err = runCLI(t, "config", "get", "shape", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "6", strings.TrimSpace(out))

	_, err = runCLI(t, "config", "get", "nope")
	assert.Error(t, err)
	_, err = runCLI(t, "config", "get", "log")
	assert.Error(t, err)

	out, err = runCLI(t, "config", "view")
	require.NoError(t, err)
	assert.Contains(t, out, "pert_samples: 100")
}

func TestConfigFileErrorsFailEveryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estima.yaml")
	require.NoError(t, os.WriteFile(path, []byte("completion_probability: 2\n"), 0644))

	_, err := runCLI(t, "estimate", "1,2,4", "--config", path)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigInvalid))
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "estima "+version.GetInfo().Short()+"\n", out)

	var report version.Info
	runJSON(t, &report, "version")
	assert.Equal(t, version.GetInfo().Version, report.Version)
	assert.NotEmpty(t, report.GoVersion)
}

func TestInvalidFormat(t *testing.T) {
	_, err := runCLI(t, "version", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestMetricsOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estima.prom")

	_, err := runCLI(t, "compose", "1,2,4", "2,3,5", "--metrics-out", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `estima_command_executions_total{command="compose",success="true"} 1`)
	assert.Contains(t, text, `estima_compositions_total{path="simple"} 1`)
}

func TestMetricsOutRecordsFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "estima.prom")

	_, err := runCLI(t, "estimate", "3,2,4", "--metrics-out", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `error_code="ESTIM-001"`)
}
