// Package model holds the work-breakdown tree of tasks and compositions and
// the EstiModel facade that indexes it by name.
//
// Tasks and compositions are shared by pointer: a task reached through the
// tree and the same task looked up by name are one value, so mutations are
// visible through either path. An EstiModel is not safe for concurrent
// mutation.
package model

import (
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/estimate"
	"github.com/felixgeelhaar/estima/internal/log"
	"github.com/felixgeelhaar/estima/internal/metrics"
)

// EstiModel is a work-breakdown tree plus name indices over its tasks and
// compositions.
type EstiModel struct {
	root         *Composition
	tasks        map[string]*TaskModel
	compositions map[string]*Composition

	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures an EstiModel.
type Option func(*EstiModel)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(m *EstiModel) {
		m.logger = logger
	}
}

// WithMetrics records model operations on the given metrics.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *EstiModel) {
		m.metrics = mt
	}
}

// New returns a model with an empty, unnamed root composition.
func New(opts ...Option) *EstiModel {
	m := &EstiModel{logger: log.Discard()}
	for _, opt := range opts {
		opt(m)
	}
	m.UseComposition(NewComposition(""))
	return m
}

// UseComposition replaces the whole tree and rebuilds the name indices in
// one depth-first walk. Names are not checked for uniqueness here; when a
// name occurs twice the later occurrence in walk order wins.
func (m *EstiModel) UseComposition(root *Composition) {
	m.root = root
	m.tasks = make(map[string]*TaskModel)
	m.compositions = make(map[string]*Composition)
	root.walk(func(c *Composition) {
		m.compositions[c.Name] = c
	}, func(task *TaskModel) {
		m.tasks[task.Name] = task
	})

	m.logger.Debug("model reindexed",
		"tasks", len(m.tasks),
		"compositions", len(m.compositions))
	if m.metrics != nil {
		m.metrics.ModelTasks.Set(float64(len(m.tasks)))
	}
}

// Root returns the root composition.
func (m *EstiModel) Root() *Composition {
	return m.root
}

// AddElement inserts a task directly under the root. It fails if a task of
// the same name already exists.
func (m *EstiModel) AddElement(task *TaskModel) error {
	if _, ok := m.tasks[task.Name]; ok {
		err := errors.NewDuplicateEntityError(task.Name)
		m.logger.Debug("rejected duplicate task", "task", task.Name)
		m.record("add_element", err)
		return err
	}
	m.root.AddElement(task)
	m.tasks[task.Name] = task
	if m.metrics != nil {
		m.metrics.ModelTasks.Set(float64(len(m.tasks)))
	}
	m.record("add_element", nil)
	return nil
}

// NewElement creates an empty task under the root and returns it.
func (m *EstiModel) NewElement(name string) (*TaskModel, error) {
	task := NewTaskModel(name)
	if err := m.AddElement(task); err != nil {
		return nil, err
	}
	return task, nil
}

// EstimatePointsOf sets the effort estimate of the named task.
func (m *EstiModel) EstimatePointsOf(name string, in estimate.Input) error {
	task, err := m.Element(name)
	if err == nil {
		var e estimate.Estimate
		if e, err = estimate.FromInput(in); err == nil {
			task.SetPointEstimateValue(e)
		}
	}
	m.record("estimate_points", err)
	return err
}

// EstimateTimeOf sets the duration estimate of the named task.
func (m *EstiModel) EstimateTimeOf(name string, in estimate.Input) error {
	task, err := m.Element(name)
	if err == nil {
		var e estimate.Estimate
		if e, err = estimate.FromInput(in); err == nil {
			task.SetTimeEstimateValue(e)
		}
	}
	m.record("estimate_time", err)
	return err
}

// CompleteElement nullifies the named task's estimates.
func (m *EstiModel) CompleteElement(name string) error {
	task, err := m.Element(name)
	if err == nil {
		task.Nullify()
	}
	m.record("complete_element", err)
	return err
}

// SetMasked masks or unmasks the named task or composition, task first.
func (m *EstiModel) SetMasked(name string, masked bool) error {
	var target interface {
		Mask()
		Unmask()
	}
	if task, ok := m.tasks[name]; ok {
		target = task
	} else if c, ok := m.compositions[name]; ok {
		target = c
	} else {
		err := errors.NewUnknownEntityError(name)
		m.record("set_masked", err)
		return err
	}

	if masked {
		target.Mask()
	} else {
		target.Unmask()
	}
	m.record("set_masked", nil)
	return nil
}

// Element returns the named task.
func (m *EstiModel) Element(name string) (*TaskModel, error) {
	task, ok := m.tasks[name]
	if !ok {
		return nil, errors.NewUnknownEntityError(name)
	}
	return task, nil
}

// Composition returns the named composition. The root is named "".
func (m *EstiModel) Composition(name string) (*Composition, error) {
	c, ok := m.compositions[name]
	if !ok {
		return nil, errors.NewUnknownEntityError(name)
	}
	return c, nil
}

// Elements lists every task in tree order.
func (m *EstiModel) Elements() []*TaskModel {
	return m.root.ContainedElements()
}

// Compositions lists the root followed by every nested composition in tree
// order.
func (m *EstiModel) Compositions() []*Composition {
	return append([]*Composition{m.root}, m.root.ContainedCompositions()...)
}

// NominalPointEstimateOf resolves name as a task, then as a composition.
func (m *EstiModel) NominalPointEstimateOf(name string) (estimate.Estimate, error) {
	return m.resolve(name, (*TaskModel).NominalPointEstimate, (*Composition).NominalPointEstimate)
}

// RemainingPointEstimateOf resolves name as a task, then as a composition.
func (m *EstiModel) RemainingPointEstimateOf(name string) (estimate.Estimate, error) {
	return m.resolve(name, (*TaskModel).RemainingPointEstimate, (*Composition).RemainingPointEstimate)
}

// NominalTimeEstimateOf resolves name as a task, then as a composition.
func (m *EstiModel) NominalTimeEstimateOf(name string) (estimate.Estimate, error) {
	return m.resolve(name, (*TaskModel).NominalTimeEstimate, (*Composition).NominalTimeEstimate)
}

// RemainingTimeEstimateOf resolves name as a task, then as a composition.
func (m *EstiModel) RemainingTimeEstimateOf(name string) (estimate.Estimate, error) {
	return m.resolve(name, (*TaskModel).RemainingTimeEstimate, (*Composition).RemainingTimeEstimate)
}

func (m *EstiModel) resolve(name string, ofTask func(*TaskModel) estimate.Estimate, ofComposition func(*Composition) estimate.Estimate) (estimate.Estimate, error) {
	if task, ok := m.tasks[name]; ok {
		return ofTask(task), nil
	}
	if c, ok := m.compositions[name]; ok {
		return ofComposition(c), nil
	}
	return estimate.Estimate{}, errors.NewUnknownEntityError(name)
}

func (m *EstiModel) record(operation string, err error) {
	if m.metrics != nil {
		m.metrics.RecordModelOperation(operation, err)
	}
}
