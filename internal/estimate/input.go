package estimate

import (
	"math"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// DefaultShape is the PERT shape parameter used when none is given.
const DefaultShape = 4

// Input is a raw three-point estimate.
type Input struct {
	Optimistic  float64 `json:"optimistic" yaml:"optimistic"`
	MostLikely  float64 `json:"most_likely" yaml:"most_likely"`
	Pessimistic float64 `json:"pessimistic" yaml:"pessimistic"`
	Shape       int     `json:"shape,omitempty" yaml:"shape,omitempty"`
}

// NewInput validates a triple given as (optimistic, most likely,
// pessimistic) with the default shape.
func NewInput(optimistic, mostLikely, pessimistic float64) (Input, error) {
	return NewInputWithShape(optimistic, mostLikely, pessimistic, DefaultShape)
}

// NewInputWithShape is NewInput with an explicit shape. A shape of zero or
// less selects DefaultShape.
func NewInputWithShape(optimistic, mostLikely, pessimistic float64, shape int) (Input, error) {
	in := Input{
		Optimistic:  optimistic,
		MostLikely:  mostLikely,
		Pessimistic: pessimistic,
		Shape:       shapeOrDefault(shape),
	}
	if err := in.Validate(); err != nil {
		return Input{}, err
	}
	return in, nil
}

// PointInput returns the degenerate input with all three values equal.
func PointInput(value float64) Input {
	return Input{Optimistic: value, MostLikely: value, Pessimistic: value, Shape: DefaultShape}
}

// Validate checks optimistic <= most likely <= pessimistic.
func (in Input) Validate() error {
	if !(in.Optimistic <= in.MostLikely) || !(in.MostLikely <= in.Pessimistic) {
		return errors.NewInvalidOrderingError(in.Optimistic, in.MostLikely, in.Pessimistic)
	}
	return nil
}

// IsPoint reports whether all three values are equal.
func (in Input) IsPoint() bool {
	return in.Optimistic == in.MostLikely && in.MostLikely == in.Pessimistic
}

// Width returns pessimistic - optimistic.
func (in Input) Width() float64 {
	return in.Pessimistic - in.Optimistic
}

// DistanceFrom returns the Euclidean distance between two triples.
func (in Input) DistanceFrom(other Input) float64 {
	do := in.Optimistic - other.Optimistic
	dm := in.MostLikely - other.MostLikely
	dp := in.Pessimistic - other.Pessimistic
	return math.Sqrt(do*do + dm*dm + dp*dp)
}

// Shifted returns the triple moved by delta.
func (in Input) Shifted(delta float64) Input {
	in.Optimistic += delta
	in.MostLikely += delta
	in.Pessimistic += delta
	return in
}

// InputFromParameters recovers the triple whose PERT distribution with the
// given shape has the given expected value, variance and skewness.
//
// With ν = shape+2 the Beta parameters satisfy a+b = ν, so writing
// a = ν/2 - d and b = ν/2 + d the skewness fixes d in closed form:
//
//	k = skewness*(ν+2) / (4*sqrt(ν+1))
//	d = (ν/2) * k / sqrt(1+k²)
//
// The variance then fixes the width. A triple exists only while a and b stay
// at or above 1, i.e. |d| <= shape/2; otherwise the error names the shape so
// the caller can retry with a larger one.
func InputFromParameters(expected, variance, skewness float64, shape int) (Input, error) {
	shape = shapeOrDefault(shape)
	if variance <= 0 {
		in := PointInput(expected)
		in.Shape = shape
		return in, nil
	}

	gamma := float64(shape)
	nu := gamma + 2
	k := skewness * (nu + 2) / (4 * math.Sqrt(nu+1))
	d := (nu / 2) * k / math.Sqrt(1+k*k)
	if math.Abs(d) > gamma/2*(1+1e-12) {
		return Input{}, errors.NewInfeasibleParametersError(shape, skewness)
	}
	d = math.Max(-gamma/2, math.Min(gamma/2, d))

	a := nu/2 - d
	b := nu/2 + d
	width := math.Sqrt(variance * nu * nu * (nu + 1) / (a * b))
	optimistic := expected - width*a/nu
	pessimistic := optimistic + width
	mostLikely := optimistic + width*(a-1)/gamma
	mostLikely = math.Max(optimistic, math.Min(pessimistic, mostLikely))

	return NewInputWithShape(optimistic, mostLikely, pessimistic, shape)
}

func shapeOrDefault(shape int) int {
	if shape <= 0 {
		return DefaultShape
	}
	return shape
}
