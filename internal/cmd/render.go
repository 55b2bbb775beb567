package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/estima/internal/dist"
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/estimate"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// render writes v as JSON or YAML, or calls text for the text format.
func render(cmd *cobra.Command, cc *CommandContext, v any, text func(io.Writer) error) error {
	w := output(cmd)
	switch cc.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return text(w)
	}
}

// newTable returns a bordered table whose columns listed in numeric are
// right-aligned.
func newTable(headers []string, numeric ...int) *table.Table {
	right := make(map[int]bool, len(numeric))
	for _, col := range numeric {
		right[col] = true
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case right[col]:
				return numberStyle
			default:
				return cellStyle
			}
		}).
		Headers(headers...)
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatEstimate(e estimate.Estimate) string {
	return fmt.Sprintf("%s ± %s", formatFloat(e.Expected()), formatFloat(e.Sigma()))
}

func formatProbability(p float64) string {
	return strconv.FormatFloat(100*p, 'f', 1, 64) + "%"
}

// parseTriple reads "optimistic,most_likely,pessimistic".
func parseTriple(s string, shape int) (estimate.Input, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return estimate.Input{}, fmt.Errorf("invalid triple %q: want optimistic,most_likely,pessimistic", s)
	}
	var v [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return estimate.Input{}, fmt.Errorf("invalid triple %q: %w", s, err)
		}
		v[i] = f
	}
	return estimate.NewInputWithShape(v[0], v[1], v[2], shape)
}

func parseEstimate(s string, shape int) (estimate.Estimate, error) {
	in, err := parseTriple(s, shape)
	if err != nil {
		return estimate.Estimate{}, err
	}
	return estimate.FromInput(in)
}

// estimateSummary is the rendered view of an estimate.
type estimateSummary struct {
	Expected     float64         `json:"expected" yaml:"expected"`
	Sigma        float64         `json:"sigma" yaml:"sigma"`
	Variance     float64         `json:"variance" yaml:"variance"`
	Skewness     float64         `json:"skewness" yaml:"skewness"`
	Mode         float64         `json:"mode" yaml:"mode"`
	Confidence   float64         `json:"confidence" yaml:"confidence"`
	IntervalLow  float64         `json:"interval_low" yaml:"interval_low"`
	IntervalHigh float64         `json:"interval_high" yaml:"interval_high"`
	Source       *estimate.Input `json:"source,omitempty" yaml:"source,omitempty"`
}

func summarize(e estimate.Estimate, confidence float64) estimateSummary {
	lo, hi := e.Interval(confidence)
	s := estimateSummary{
		Expected:     e.Expected(),
		Sigma:        e.Sigma(),
		Variance:     e.Variance(),
		Skewness:     e.Skewness(),
		Mode:         e.Mode(),
		Confidence:   confidence,
		IntervalLow:  lo,
		IntervalHigh: hi,
	}
	if src, ok := e.Source(); ok {
		s.Source = &src
	}
	return s
}

func (s estimateSummary) table() *table.Table {
	t := newTable([]string{"measure", "value"}, 1)
	if s.Source != nil {
		t.Row("triple", fmt.Sprintf("%s / %s / %s",
			formatFloat(s.Source.Optimistic), formatFloat(s.Source.MostLikely), formatFloat(s.Source.Pessimistic)))
	}
	t.Row("expected", formatFloat(s.Expected))
	t.Row("sigma", formatFloat(s.Sigma))
	t.Row("variance", formatFloat(s.Variance))
	t.Row("skewness", formatFloat(s.Skewness))
	t.Row("mode", formatFloat(s.Mode))
	t.Row(fmt.Sprintf("%s interval", formatProbability(s.Confidence)),
		fmt.Sprintf("%s .. %s", formatFloat(s.IntervalLow), formatFloat(s.IntervalHigh)))
	return t
}

// densityQuantile returns the first domain point where the cumulative
// mass reaches p.
func densityQuantile(d dist.Density, p float64) float64 {
	masses := d.Masses()
	total := d.Mass()
	var acc float64
	for i, m := range masses {
		acc += m
		if acc >= p*total {
			return d.Domain[i]
		}
	}
	return d.Domain[d.Len()-1]
}

func checkConfidence(confidence float64) error {
	if !(confidence > 0 && confidence < 1) {
		return errors.NewConfigInvalidError("confidence", fmt.Sprintf("must be in (0, 1), got %g", confidence))
	}
	return nil
}
