package cmd

import (
	"context"
	"fmt"
	"io"
	"math"

	"github.com/spf13/cobra"
)

func newSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar <board.yaml> <task>",
		Short: "List tasks sized like a reference task",
		Long: `Rank the tasks of a board whose point estimates are close to the named
task's, nearest first. A task qualifies when its rank distance, the gap
between expected values over the combined sigma, is within --rank, or when
the absolute gap is within --distance.

Example:
  estima similar board.yaml api --rank 0.5`,
		Args: cobra.ExactArgs(2),
		RunE: instrumented("similar", runSimilar),
	}

	cmd.Flags().Float64("rank", 0, "rank distance threshold (default from settings)")
	cmd.Flags().Float64("distance", 0, "absolute distance threshold, 0 disables (default from settings)")
	return cmd
}

type similarEntry struct {
	Name           string   `json:"name" yaml:"name"`
	Expected       float64  `json:"expected" yaml:"expected"`
	Sigma          float64  `json:"sigma" yaml:"sigma"`
	Distance       float64  `json:"distance" yaml:"distance"`
	RankDistance   *float64 `json:"rank_distance,omitempty" yaml:"rank_distance,omitempty"`
	TripleDistance *float64 `json:"triple_distance,omitempty" yaml:"triple_distance,omitempty"`
}

func runSimilar(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	_, m, err := loadBoard(cc, args[0])
	if err != nil {
		return err
	}

	opts := cc.SimilarOptions()
	if cmd.Flags().Changed("rank") {
		opts.RankThreshold, _ = cmd.Flags().GetFloat64("rank")
	}
	if cmd.Flags().Changed("distance") {
		opts.DistanceThreshold, _ = cmd.Flags().GetFloat64("distance")
	}

	similar, err := m.SimilarTo(args[1], opts)
	if err != nil {
		return err
	}

	entries := make([]similarEntry, 0, len(similar))
	for _, s := range similar {
		e := s.Task.PointEstimate()
		entry := similarEntry{
			Name:           s.Task.Name,
			Expected:       e.Expected(),
			Sigma:          e.Sigma(),
			Distance:       s.Distance,
			RankDistance:   finite(s.RankDistance),
			TripleDistance: finite(s.TripleDistance),
		}
		entries = append(entries, entry)
	}

	return render(cmd, cc, entries, func(w io.Writer) error {
		if len(entries) == 0 {
			fmt.Fprintf(w, "no task is similar to %s\n", args[1])
			return nil
		}
		t := newTable([]string{"task", "estimate", "distance", "rank distance", "triple distance"}, 1, 2, 3, 4)
		for i, entry := range entries {
			t.Row(entry.Name, formatEstimate(similar[i].Task.PointEstimate()),
				formatFloat(entry.Distance), formatFloat(similar[i].RankDistance), formatFloat(similar[i].TripleDistance))
		}
		fmt.Fprintln(w, t.Render())
		return nil
	})
}

// finite returns nil for values JSON cannot carry.
func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
