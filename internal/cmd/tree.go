package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/estima/internal/card"
	"github.com/felixgeelhaar/estima/internal/estimate"
	"github.com/felixgeelhaar/estima/internal/model"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree <board.yaml>",
		Short: "Roll estimates up a card tree",
		Long: `Load a board of cards, build the task tree, and print the nominal and
remaining point estimate of every card. Cards whose status is done or
abandoned are masked: they count towards the nominal estimate only.

Examples:
  estima tree board.yaml
  estima tree board.yaml --write board.out.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: instrumented("tree", runTree),
	}

	cmd.Flags().String("write", "", "save the board with computed projections to this file")
	return cmd
}

type treeReport struct {
	Nominal   estimate.Estimate `json:"nominal" yaml:"nominal"`
	Remaining estimate.Estimate `json:"remaining" yaml:"remaining"`
	Cards     []*card.Card      `json:"cards" yaml:"cards"`
}

// loadBoard reads a board and builds its model.
func loadBoard(cc *CommandContext, path string) ([]*card.Card, *model.EstiModel, error) {
	cards, err := card.Load(path)
	if err != nil {
		return nil, nil, err
	}
	m, err := card.BuildModel(cards, card.DefaultStatusPolicy(), cc.ModelOptions()...)
	if err != nil {
		return nil, nil, err
	}
	cc.Logger.Debug("board loaded",
		"path", path,
		"tasks", len(m.Elements()),
		"compositions", len(m.Compositions()))
	return cards, m, nil
}

func runTree(ctx context.Context, cc *CommandContext, cmd *cobra.Command, args []string) error {
	cards, m, err := loadBoard(cc, args[0])
	if err != nil {
		return err
	}
	if err := card.UpdateTargetsWithValues(m, cards); err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("write"); out != "" {
		if err := card.Save(cards, out); err != nil {
			return err
		}
		cc.Logger.Info("board written", "path", out)
	}

	report := treeReport{
		Nominal:   m.Root().NominalPointEstimate(),
		Remaining: m.Root().RemainingPointEstimate(),
		Cards:     cards,
	}

	return render(cmd, cc, report, func(w io.Writer) error {
		t := newTable([]string{"card", "status", "nominal", "remaining"}, 2, 3)
		for _, top := range cards {
			addTreeRows(t, top, 0)
		}
		t.Row("total", "", formatEstimate(report.Nominal), formatEstimate(report.Remaining))
		fmt.Fprintln(w, t.Render())
		return nil
	})
}

func addTreeRows(t *table.Table, c *card.Card, depth int) {
	name := strings.Repeat("  ", depth) + c.Name
	if c.Title != "" {
		name += mutedStyle.Render(" " + c.Title)
	}
	status := string(c.Status)
	if c.Projection != nil && c.Projection.Masked {
		status += " (masked)"
	}
	nominal, remaining := "-", "-"
	if p := c.Projection; p != nil {
		nominal, remaining = formatEstimate(p.NominalPoint), formatEstimate(p.RemainingPoint)
	}
	t.Row(name, status, nominal, remaining)
	for _, child := range c.Children {
		addTreeRows(t, child, depth+1)
	}
}
