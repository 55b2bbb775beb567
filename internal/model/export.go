package model

import (
	"github.com/felixgeelhaar/estima/internal/estimate"
)

// Projection is the set of computed values for one named task or
// composition, as handed to exporters and renderers.
type Projection struct {
	Name           string            `json:"name" yaml:"name"`
	Composite      bool              `json:"composite" yaml:"composite"`
	Masked         bool              `json:"masked" yaml:"masked"`
	NominalPoint   estimate.Estimate `json:"nominal_point" yaml:"nominal_point"`
	RemainingPoint estimate.Estimate `json:"remaining_point" yaml:"remaining_point"`
	NominalTime    estimate.Estimate `json:"nominal_time" yaml:"nominal_time"`
	RemainingTime  estimate.Estimate `json:"remaining_time" yaml:"remaining_time"`
}

// ExportElement projects the named task or composition, task first.
func (m *EstiModel) ExportElement(name string) (Projection, error) {
	if task, ok := m.tasks[name]; ok {
		return Projection{
			Name:           name,
			Masked:         task.Masked(),
			NominalPoint:   task.NominalPointEstimate(),
			RemainingPoint: task.RemainingPointEstimate(),
			NominalTime:    task.NominalTimeEstimate(),
			RemainingTime:  task.RemainingTimeEstimate(),
		}, nil
	}
	c, err := m.Composition(name)
	if err != nil {
		return Projection{}, err
	}
	return Projection{
		Name:           name,
		Composite:      true,
		Masked:         c.Masked(),
		NominalPoint:   c.NominalPointEstimate(),
		RemainingPoint: c.RemainingPointEstimate(),
		NominalTime:    c.NominalTimeEstimate(),
		RemainingTime:  c.RemainingTimeEstimate(),
	}, nil
}
