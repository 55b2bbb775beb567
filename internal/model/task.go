package model

import (
	"github.com/felixgeelhaar/estima/internal/estimate"
)

// TaskModel is a single leaf of the work breakdown: a named holder of a
// point (effort) estimate and a time estimate that can be masked out of the
// remaining-work view without losing its values.
type TaskModel struct {
	Name string

	pointEstimate estimate.Estimate
	timeEstimate  estimate.Estimate
	masked        bool
}

// NewTaskModel returns an unmasked task whose estimates are both zero.
func NewTaskModel(name string) *TaskModel {
	return &TaskModel{
		Name:          name,
		pointEstimate: estimate.Zero(),
		timeEstimate:  estimate.Zero(),
	}
}

// PointEstimate returns the effort estimate.
func (t *TaskModel) PointEstimate() estimate.Estimate {
	return t.pointEstimate
}

// TimeEstimate returns the duration estimate.
func (t *TaskModel) TimeEstimate() estimate.Estimate {
	return t.timeEstimate
}

// SetPointEstimate builds the effort estimate from a triple given as
// (most likely, optimistic, pessimistic).
func (t *TaskModel) SetPointEstimate(mostLikely, optimistic, pessimistic float64) error {
	e, err := estimate.FromTriple(mostLikely, optimistic, pessimistic)
	if err != nil {
		return err
	}
	t.pointEstimate = e
	return nil
}

// SetTimeEstimate builds the duration estimate from a triple given as
// (most likely, optimistic, pessimistic).
func (t *TaskModel) SetTimeEstimate(mostLikely, optimistic, pessimistic float64) error {
	e, err := estimate.FromTriple(mostLikely, optimistic, pessimistic)
	if err != nil {
		return err
	}
	t.timeEstimate = e
	return nil
}

// SetPointEstimateValue stores an already computed effort estimate.
func (t *TaskModel) SetPointEstimateValue(e estimate.Estimate) {
	t.pointEstimate = e
}

// SetTimeEstimateValue stores an already computed duration estimate.
func (t *TaskModel) SetTimeEstimateValue(e estimate.Estimate) {
	t.timeEstimate = e
}

// Mask hides the task from remaining-work roll-ups.
func (t *TaskModel) Mask() {
	t.masked = true
}

// Unmask reverses Mask.
func (t *TaskModel) Unmask() {
	t.masked = false
}

// Masked reports whether the task is masked.
func (t *TaskModel) Masked() bool {
	return t.masked
}

// Nullify resets both estimates to zero, as when the task is complete.
func (t *TaskModel) Nullify() {
	t.pointEstimate = estimate.Zero()
	t.timeEstimate = estimate.Zero()
}

// NominalPointEstimate ignores masking.
func (t *TaskModel) NominalPointEstimate() estimate.Estimate {
	return t.pointEstimate
}

// RemainingPointEstimate is zero while the task is masked.
func (t *TaskModel) RemainingPointEstimate() estimate.Estimate {
	if t.masked {
		return estimate.Zero()
	}
	return t.pointEstimate
}

// NominalTimeEstimate ignores masking.
func (t *TaskModel) NominalTimeEstimate() estimate.Estimate {
	return t.timeEstimate
}

// RemainingTimeEstimate is zero while the task is masked.
func (t *TaskModel) RemainingTimeEstimate() estimate.Estimate {
	if t.masked {
		return estimate.Zero()
	}
	return t.timeEstimate
}
