// Package card turns tracker items into an estimation tree and writes the
// computed values back onto them.
package card

import (
	"github.com/felixgeelhaar/estima/internal/estimate"
	"github.com/felixgeelhaar/estima/internal/model"
)

// Card is a tracker item. Leaf cards carry either a three-point estimate
// or a plain point cost; cards with children are sized by their
// descendants.
type Card struct {
	Name      string          `yaml:"name" json:"name"`
	Title     string          `yaml:"title,omitempty" json:"title,omitempty"`
	Status    Status          `yaml:"status,omitempty" json:"status,omitempty"`
	Estimate  *estimate.Input `yaml:"estimate,omitempty" json:"estimate,omitempty"`
	PointCost float64         `yaml:"point_cost,omitempty" json:"point_cost,omitempty"`
	// ParentName links a card listed at top level to its parent.
	ParentName string  `yaml:"parent,omitempty" json:"parent,omitempty"`
	Children   []*Card `yaml:"children,omitempty" json:"children,omitempty"`

	Projection *model.Projection `yaml:"projection,omitempty" json:"projection,omitempty"`

	Parent *Card `yaml:"-" json:"-"`
}

// AddChild appends child and sets its parent link.
func (c *Card) AddChild(child *Card) {
	child.Parent = c
	child.ParentName = ""
	c.Children = append(c.Children, child)
}

// Contains reports whether other is c or one of its descendants.
func (c *Card) Contains(other *Card) bool {
	if c == other {
		return true
	}
	for _, child := range c.Children {
		if child.Contains(other) {
			return true
		}
	}
	return false
}

// Walk visits c and then its descendants depth-first.
func (c *Card) Walk(visit func(*Card)) {
	visit(c)
	for _, child := range c.Children {
		child.Walk(visit)
	}
}

// PointEstimate is the card's own estimate: its three-point estimate when
// it has one, otherwise its point cost with no uncertainty.
func (c *Card) PointEstimate() (estimate.Estimate, error) {
	if c.Estimate != nil {
		return estimate.FromInput(*c.Estimate)
	}
	return estimate.New(c.PointCost, 0), nil
}
