package model

import (
	"github.com/felixgeelhaar/estima/internal/estimate"
)

// TaskRecord is the serializable form of a TaskModel.
type TaskRecord struct {
	Name   string          `json:"name" yaml:"name"`
	Point  estimate.Record `json:"point" yaml:"point"`
	Time   estimate.Record `json:"time" yaml:"time"`
	Masked bool            `json:"masked,omitempty" yaml:"masked,omitempty"`
}

// CompositionRecord is the serializable form of a Composition subtree. A
// composition shared by several parents is written once under each.
type CompositionRecord struct {
	Name         string              `json:"name" yaml:"name"`
	Masked       bool                `json:"masked,omitempty" yaml:"masked,omitempty"`
	Elements     []TaskRecord        `json:"elements,omitempty" yaml:"elements,omitempty"`
	Compositions []CompositionRecord `json:"compositions,omitempty" yaml:"compositions,omitempty"`
}

// ToRecord exports the task.
func (t *TaskModel) ToRecord() TaskRecord {
	return TaskRecord{
		Name:   t.Name,
		Point:  t.pointEstimate.ToRecord(),
		Time:   t.timeEstimate.ToRecord(),
		Masked: t.masked,
	}
}

// TaskFromRecord rebuilds a task.
func TaskFromRecord(r TaskRecord) (*TaskModel, error) {
	point, err := estimate.FromRecord(r.Point)
	if err != nil {
		return nil, err
	}
	duration, err := estimate.FromRecord(r.Time)
	if err != nil {
		return nil, err
	}
	return &TaskModel{
		Name:          r.Name,
		pointEstimate: point,
		timeEstimate:  duration,
		masked:        r.Masked,
	}, nil
}

// ToRecord exports the composition and everything below it.
func (c *Composition) ToRecord() CompositionRecord {
	r := CompositionRecord{Name: c.Name, Masked: c.masked}
	for _, task := range c.Elements {
		r.Elements = append(r.Elements, task.ToRecord())
	}
	for _, sub := range c.Compositions {
		r.Compositions = append(r.Compositions, sub.ToRecord())
	}
	return r
}

// CompositionFromRecord rebuilds a composition subtree.
func CompositionFromRecord(r CompositionRecord) (*Composition, error) {
	c := NewComposition(r.Name)
	c.masked = r.Masked
	for _, tr := range r.Elements {
		task, err := TaskFromRecord(tr)
		if err != nil {
			return nil, err
		}
		c.AddElement(task)
	}
	for _, cr := range r.Compositions {
		sub, err := CompositionFromRecord(cr)
		if err != nil {
			return nil, err
		}
		if err := c.AddComposition(sub); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ToRecord exports the whole tree.
func (m *EstiModel) ToRecord() CompositionRecord {
	return m.root.ToRecord()
}

// FromRecord builds a model over the tree described by r.
func FromRecord(r CompositionRecord, opts ...Option) (*EstiModel, error) {
	root, err := CompositionFromRecord(r)
	if err != nil {
		return nil, err
	}
	m := New(opts...)
	m.UseComposition(root)
	return m, nil
}
