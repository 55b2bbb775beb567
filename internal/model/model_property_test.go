package model

import (
	"fmt"
	"math"
	"testing"

	"pgregory.net/rapid"
)

// randomTree builds a two-level tree of tasks with random triples and
// returns it with its tasks in insertion order.
func randomTree(t *rapid.T) (*Composition, []*TaskModel) {
	root := NewComposition("")
	var tasks []*TaskModel
	groups := rapid.IntRange(0, 3).Draw(t, "groups")
	parents := []*Composition{root}
	for g := range groups {
		sub := NewComposition(fmt.Sprintf("group-%d", g))
		if err := root.AddComposition(sub); err != nil {
			t.Fatalf("AddComposition: %v", err)
		}
		parents = append(parents, sub)
	}

	n := rapid.IntRange(1, 12).Draw(t, "tasks")
	for i := range n {
		task := NewTaskModel(fmt.Sprintf("task-%d", i))
		o := rapid.Float64Range(0, 10).Draw(t, "optimistic")
		m := o + rapid.Float64Range(0, 5).Draw(t, "mode_offset")
		p := m + rapid.Float64Range(0, 5).Draw(t, "pessimistic_offset")
		if err := task.SetPointEstimate(m, o, p); err != nil {
			t.Fatalf("SetPointEstimate: %v", err)
		}
		parent := parents[rapid.IntRange(0, len(parents)-1).Draw(t, "parent")]
		parent.AddElement(task)
		tasks = append(tasks, task)
	}
	return root, tasks
}

func TestPropertyMaskingRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root, tasks := randomTree(t)
		nominal := root.NominalPointEstimate()
		before := root.RemainingPointEstimate()

		masked := rapid.SliceOfNDistinct(rapid.IntRange(0, len(tasks)-1), 1, len(tasks), rapid.ID[int]).Draw(t, "masked")
		var hidden float64
		for _, i := range masked {
			tasks[i].Mask()
			hidden += tasks[i].PointEstimate().Expected()
		}

		if !root.NominalPointEstimate().Equal(nominal) {
			t.Fatalf("masking changed the nominal estimate")
		}
		during := root.RemainingPointEstimate()
		if math.Abs(during.Expected()-(before.Expected()-hidden)) > 1e-9 {
			t.Fatalf("remaining %g, want %g", during.Expected(), before.Expected()-hidden)
		}

		for _, i := range masked {
			tasks[i].Unmask()
		}
		if !root.RemainingPointEstimate().Equal(before) {
			t.Fatalf("unmasking did not restore the remaining estimate")
		}
	})
}

func TestPropertyRollUpMatchesLeafSum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		root, tasks := randomTree(t)

		var expected, variance float64
		for _, task := range tasks {
			expected += task.PointEstimate().Expected()
			variance += task.PointEstimate().Variance()
		}
		total := root.NominalPointEstimate()
		if math.Abs(total.Expected()-expected) > 1e-9 {
			t.Fatalf("expected %g, want %g", total.Expected(), expected)
		}
		if math.Abs(total.Sigma()-math.Sqrt(variance)) > 1e-9 {
			t.Fatalf("sigma %g, want %g", total.Sigma(), math.Sqrt(variance))
		}
	})
}
