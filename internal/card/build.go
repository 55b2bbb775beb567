package card

import (
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/model"
)

// BuildComposition turns cards into a tree under an unnamed root. Cards
// held by another card in the list are skipped. A leaf card becomes a task
// sized by its own estimate; a card with children becomes a composition
// named after it and its own cost is ignored. The policy decides which
// statuses mask a task or composition. Children links that lead back to
// an ancestor fail with a cyclic composition error.
func BuildComposition(cards []*Card, policy StatusPolicy) (*model.Composition, error) {
	if err := checkAcyclic(cards); err != nil {
		return nil, err
	}
	root := model.NewComposition("")
	for _, c := range ReduceSubsetsFromSets(cards) {
		if err := appendCard(root, c, policy); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// checkAcyclic walks the children links depth-first, tracking the cards on
// the current path.
func checkAcyclic(cards []*Card) error {
	onPath := make(map[*Card]bool)
	done := make(map[*Card]bool)
	var visit func(c *Card) error
	visit = func(c *Card) error {
		if done[c] {
			return nil
		}
		onPath[c] = true
		for _, child := range c.Children {
			if onPath[child] {
				return errors.NewCyclicCompositionError(c.Name, child.Name)
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		onPath[c] = false
		done[c] = true
		return nil
	}
	for _, c := range cards {
		if err := visit(c); err != nil {
			return err
		}
	}
	return nil
}

func appendCard(parent *model.Composition, c *Card, policy StatusPolicy) error {
	if len(c.Children) == 0 {
		e, err := c.PointEstimate()
		if err != nil {
			return err
		}
		task := model.NewTaskModel(c.Name)
		task.SetPointEstimateValue(e)
		if policy.IsMasked(c.Status) {
			task.Mask()
		}
		parent.AddElement(task)
		return nil
	}

	sub := model.NewComposition(c.Name)
	if policy.IsMasked(c.Status) {
		sub.Mask()
	}
	for _, child := range c.Children {
		if err := appendCard(sub, child, policy); err != nil {
			return err
		}
	}
	return parent.AddComposition(sub)
}

// BuildModel builds the tree and indexes it.
func BuildModel(cards []*Card, policy StatusPolicy, opts ...model.Option) (*model.EstiModel, error) {
	root, err := BuildComposition(cards, policy)
	if err != nil {
		return nil, err
	}
	m := model.New(opts...)
	m.UseComposition(root)
	return m, nil
}

// UpdateTargetsWithValues stores the model's computed values on every card
// and descendant card it knows by name.
func UpdateTargetsWithValues(m *model.EstiModel, cards []*Card) error {
	var firstErr error
	for _, top := range cards {
		top.Walk(func(c *Card) {
			if firstErr != nil {
				return
			}
			p, err := m.ExportElement(c.Name)
			if err != nil {
				firstErr = err
				return
			}
			c.Projection = &p
		})
	}
	return firstErr
}
