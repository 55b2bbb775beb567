package estimate

import (
	"math"
)

// varianceFloor absorbs the small negative variances produced by floating
// error on near-degenerate triples.
const varianceFloor = -1e-10

// Estimate summarizes a probability distribution over effort or duration.
// It is an immutable value; the zero value is the degenerate estimate at 0.
type Estimate struct {
	expected float64
	sigma    float64
	source   *Input
	shape    int
}

// New returns an estimate with the given expected value and standard
// deviation. A zero sigma yields a degenerate estimate whose source is the
// point triple at expected; a positive sigma yields a Normal-like summary
// with no triple.
func New(expected, sigma float64) Estimate {
	sigma = math.Abs(sigma)
	e := Estimate{expected: expected, sigma: sigma, shape: DefaultShape}
	if sigma == 0 {
		src := PointInput(expected)
		e.source = &src
	}
	return e
}

// Zero returns the degenerate estimate at 0, the identity of composition.
func Zero() Estimate {
	return New(0, 0)
}

// FromTriple builds an estimate from a triple given as (most likely,
// optimistic, pessimistic) with the default shape.
func FromTriple(mostLikely, optimistic, pessimistic float64) (Estimate, error) {
	return FromTripleWithShape(mostLikely, optimistic, pessimistic, DefaultShape)
}

// FromTripleWithShape is FromTriple with an explicit shape.
func FromTripleWithShape(mostLikely, optimistic, pessimistic float64, shape int) (Estimate, error) {
	in, err := NewInputWithShape(optimistic, mostLikely, pessimistic, shape)
	if err != nil {
		return Estimate{}, err
	}
	return fromValidInput(in), nil
}

// FromInput builds an estimate from a triple and keeps it as the source.
func FromInput(in Input) (Estimate, error) {
	in.Shape = shapeOrDefault(in.Shape)
	if err := in.Validate(); err != nil {
		return Estimate{}, err
	}
	return fromValidInput(in), nil
}

func fromValidInput(in Input) Estimate {
	gamma := float64(in.Shape)
	expected := (in.Optimistic + gamma*in.MostLikely + in.Pessimistic) / (gamma + 2)
	variance := (expected - in.Optimistic) * (in.Pessimistic - expected) / (gamma + 3)
	if variance < 0 && variance > varianceFloor {
		variance = 0
	}

	e := Estimate{expected: expected, sigma: math.Sqrt(variance), shape: in.Shape}
	if e.sigma == 0 {
		src := PointInput(expected)
		src.Shape = in.Shape
		e.source = &src
		return e
	}
	src := in
	e.source = &src
	return e
}

// Expected returns the mean.
func (e Estimate) Expected() float64 {
	return e.expected
}

// Sigma returns the standard deviation.
func (e Estimate) Sigma() float64 {
	return e.sigma
}

// Variance returns sigma squared.
func (e Estimate) Variance() float64 {
	return e.sigma * e.sigma
}

// Shape returns the PERT shape parameter.
func (e Estimate) Shape() int {
	return shapeOrDefault(e.shape)
}

// Source returns the triple this estimate was built from, if it can be
// reconstructed. Degenerate estimates always have one.
func (e Estimate) Source() (Input, bool) {
	if e.source == nil {
		if e.sigma == 0 {
			return PointInput(e.expected), true
		}
		return Input{}, false
	}
	return *e.source, true
}

// IsDegenerate reports whether the estimate carries no uncertainty.
func (e Estimate) IsDegenerate() bool {
	return e.sigma == 0
}

// Width returns pessimistic - optimistic of the source, or 0 without one.
func (e Estimate) Width() float64 {
	src, ok := e.Source()
	if !ok {
		return 0
	}
	return src.Width()
}

// BetaParameters returns the Beta shape parameters a and b of the PERT
// distribution. It reports false when there is no non-degenerate source.
func (e Estimate) BetaParameters() (a, b float64, ok bool) {
	src, ok := e.Source()
	if !ok || src.Width() == 0 {
		return 0, 0, false
	}
	gamma := float64(e.Shape())
	width := src.Width()
	a = 1 + gamma*(src.MostLikely-src.Optimistic)/width
	b = 1 + gamma*(src.Pessimistic-src.MostLikely)/width
	return a, b, true
}

// Skewness returns the third standardized moment. Estimates without a
// triple are treated as symmetric.
func (e Estimate) Skewness() float64 {
	a, b, ok := e.BetaParameters()
	if !ok {
		return 0
	}
	return 2 * (b - a) * math.Sqrt(a+b+1) / ((a + b + 2) * math.Sqrt(a*b))
}

// Mode returns the most likely value.
func (e Estimate) Mode() float64 {
	if src, ok := e.Source(); ok {
		return src.MostLikely
	}
	return e.expected
}

// RankDistance measures how alike two estimates are once uncertainty is
// accounted for: |Δexpected| / (sigma1+sigma2). Identical expected values
// give 0; different values with no uncertainty on either side give +Inf.
func (e Estimate) RankDistance(other Estimate) float64 {
	diff := math.Abs(e.expected - other.expected)
	if diff == 0 {
		return 0
	}
	spread := e.sigma + other.sigma
	if spread == 0 {
		return math.Inf(1)
	}
	return diff / spread
}

// Equal reports whether two estimates describe the same distribution.
func (e Estimate) Equal(other Estimate) bool {
	if e.expected != other.expected || e.sigma != other.sigma {
		return false
	}
	s1, ok1 := e.Source()
	s2, ok2 := other.Source()
	if ok1 != ok2 {
		return false
	}
	if !ok1 {
		return true
	}
	return s1.Optimistic == s2.Optimistic && s1.MostLikely == s2.MostLikely &&
		s1.Pessimistic == s2.Pessimistic && e.Shape() == other.Shape()
}
