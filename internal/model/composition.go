package model

import (
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/estimate"
)

// Composition is an interior node of the work breakdown. Its estimates are
// the sums of its tasks and nested compositions.
type Composition struct {
	Name         string
	Elements     []*TaskModel
	Compositions []*Composition

	masked bool
}

// NewComposition returns an empty composition.
func NewComposition(name string) *Composition {
	return &Composition{Name: name}
}

// AddElement appends a task. Names are not checked here; EstiModel does
// that on insertion.
func (c *Composition) AddElement(task *TaskModel) {
	c.Elements = append(c.Elements, task)
}

// AddComposition appends a nested composition. It fails with a cyclic
// composition error when c is child itself or already sits somewhere below
// child. The same child may be added under several parents.
func (c *Composition) AddComposition(child *Composition) error {
	if child.reaches(c) {
		return errors.NewCyclicCompositionError(c.Name, child.Name)
	}
	c.Compositions = append(c.Compositions, child)
	return nil
}

// reaches reports whether target is c or one of its descendants.
func (c *Composition) reaches(target *Composition) bool {
	if c == target {
		return true
	}
	for _, sub := range c.Compositions {
		if sub.reaches(target) {
			return true
		}
	}
	return false
}

// Mask hides the whole subtree from remaining-work roll-ups.
func (c *Composition) Mask() {
	c.masked = true
}

// Unmask reverses Mask.
func (c *Composition) Unmask() {
	c.masked = false
}

// Masked reports whether the composition itself is masked.
func (c *Composition) Masked() bool {
	return c.masked
}

// NominalPointEstimate sums the effort of every descendant, masked or not.
func (c *Composition) NominalPointEstimate() estimate.Estimate {
	return c.fold((*TaskModel).NominalPointEstimate, (*Composition).NominalPointEstimate)
}

// RemainingPointEstimate sums the effort of unmasked descendants. It is
// zero when the composition itself is masked.
func (c *Composition) RemainingPointEstimate() estimate.Estimate {
	if c.masked {
		return estimate.Zero()
	}
	return c.fold((*TaskModel).RemainingPointEstimate, (*Composition).RemainingPointEstimate)
}

// NominalTimeEstimate sums the duration of every descendant.
func (c *Composition) NominalTimeEstimate() estimate.Estimate {
	return c.fold((*TaskModel).NominalTimeEstimate, (*Composition).NominalTimeEstimate)
}

// RemainingTimeEstimate sums the duration of unmasked descendants.
func (c *Composition) RemainingTimeEstimate() estimate.Estimate {
	if c.masked {
		return estimate.Zero()
	}
	return c.fold((*TaskModel).RemainingTimeEstimate, (*Composition).RemainingTimeEstimate)
}

// fold composes tasks first, then nested compositions, starting from zero.
func (c *Composition) fold(ofTask func(*TaskModel) estimate.Estimate, ofComposition func(*Composition) estimate.Estimate) estimate.Estimate {
	total := estimate.Zero()
	for _, task := range c.Elements {
		total = total.ComposeWith(ofTask(task))
	}
	for _, sub := range c.Compositions {
		total = total.ComposeWith(ofComposition(sub))
	}
	return total
}

// ContainedElements flattens every descendant task depth-first, the tasks
// of a node before those of its nested compositions.
func (c *Composition) ContainedElements() []*TaskModel {
	var out []*TaskModel
	c.walk(func(*Composition) {}, func(task *TaskModel) {
		out = append(out, task)
	})
	return out
}

// ContainedCompositions lists every nested composition depth-first,
// excluding c.
func (c *Composition) ContainedCompositions() []*Composition {
	var out []*Composition
	c.walk(func(sub *Composition) {
		if sub != c {
			out = append(out, sub)
		}
	}, func(*TaskModel) {})
	return out
}

// walk visits c, then its tasks, then recurses into nested compositions.
func (c *Composition) walk(onComposition func(*Composition), onTask func(*TaskModel)) {
	onComposition(c)
	for _, task := range c.Elements {
		onTask(task)
	}
	for _, sub := range c.Compositions {
		sub.walk(onComposition, onTask)
	}
}
