package dist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// Convolve returns the density of X+Y for independent X ~ a and Y ~ b.
// Both densities must sit on uniform grids with the same step; the result
// uses that step and starts at a.Domain[0]+b.Domain[0].
func Convolve(a, b Density) (Density, error) {
	if !a.IsUniform() || !b.IsUniform() {
		return Density{}, errors.NewInvalidDistributionError("convolution needs uniform grids")
	}
	step := a.Step()
	if a.Len() > 1 && b.Len() > 1 && math.Abs(step-b.Step()) > uniformTolerance*math.Abs(step) {
		return Density{}, errors.NewInvalidDistributionError(
			fmt.Sprintf("convolution needs equal steps, got %g and %g", step, b.Step()))
	}
	if a.Len() == 1 {
		step = b.Step()
	}

	n := a.Len() + b.Len() - 1
	values := make([]float64, n)
	for i, av := range a.Values {
		if av == 0 {
			continue
		}
		for j, bv := range b.Values {
			values[i+j] += av * bv * step
		}
	}

	start := a.Domain[0] + b.Domain[0]
	domain := make([]float64, n)
	for k := range domain {
		domain[k] = start + float64(k)*step
	}
	return Density{Domain: domain, Values: values}, nil
}

// Pruned zeroes samples below eps times the peak and drops the empty tails,
// keeping one zero sample on each side. It bounds the growth of repeatedly
// convolved densities.
func (d Density) Pruned(eps float64) Density {
	out := d.clone()
	peak := floats.Max(out.Values)
	if peak <= 0 {
		return out
	}
	for i, v := range out.Values {
		if v < eps*peak {
			out.Values[i] = 0
		}
	}

	first, last := -1, -1
	for i, v := range out.Values {
		if v != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	lo := max(first-1, 0)
	hi := min(last+2, len(out.Values))
	return Density{Domain: out.Domain[lo:hi], Values: out.Values[lo:hi]}
}

// ProbabilityAtLeast returns P(X >= target), counting the mass of every
// sample at or above target.
func (d Density) ProbabilityAtLeast(target float64) float64 {
	var total float64
	masses := d.Masses()
	for i := len(d.Domain) - 1; i >= 0 && d.Domain[i] >= target; i-- {
		total += masses[i]
	}
	return math.Min(total, 1)
}

// SelfConvolver repeatedly adds one more independent draw of a base
// density: after n calls to Next the current density is the n-fold
// convolution of the base with itself.
type SelfConvolver struct {
	base    Density
	current Density
	periods int
	eps     float64
}

// NewSelfConvolver prepares iterative convolution of base, which must be
// sampled on a uniform grid.
func NewSelfConvolver(base Density, eps float64) (*SelfConvolver, error) {
	if base.Len() < 1 {
		return nil, errors.NewInvalidSampleSizeError(base.Len())
	}
	if !base.IsUniform() {
		return nil, errors.NewInvalidDistributionError("convolution needs a uniform grid")
	}
	return &SelfConvolver{base: base.Normalized(), eps: eps}, nil
}

// Next advances by one period and returns the density of the sum so far.
func (s *SelfConvolver) Next() (Density, error) {
	if s.periods == 0 {
		s.current = s.base
	} else {
		next, err := Convolve(s.current, s.base)
		if err != nil {
			return Density{}, err
		}
		s.current = next.Normalized().Pruned(s.eps)
	}
	s.periods++
	return s.current, nil
}

// Periods returns how many draws the current density sums.
func (s *SelfConvolver) Periods() int {
	return s.periods
}

// CompletionPDF returns the density of the total of n independent draws
// from velocity, the distribution of work completed after n periods.
func CompletionPDF(velocity Density, n int, eps float64) (Density, error) {
	if n < 1 {
		return Density{}, errors.NewInvalidSampleSizeError(n).
			WithSuggestion("Ask for at least one period")
	}
	conv, err := NewSelfConvolver(velocity, eps)
	if err != nil {
		return Density{}, err
	}
	var current Density
	for i := 0; i < n; i++ {
		if current, err = conv.Next(); err != nil {
			return Density{}, err
		}
	}
	return current, nil
}

// PeriodsToComplete iterates the convolution until P(sum >= target) reaches
// probability or iterationCap periods have passed. It returns the number of
// periods examined and the probability after each of them; reached reports
// whether the probability was met within the cap.
func PeriodsToComplete(velocity Density, target, probability float64, iterationCap int, eps float64) (curve []float64, reached bool, err error) {
	conv, err := NewSelfConvolver(velocity, eps)
	if err != nil {
		return nil, false, err
	}
	for i := 0; i < iterationCap; i++ {
		current, err := conv.Next()
		if err != nil {
			return nil, false, err
		}
		p := current.ProbabilityAtLeast(target)
		curve = append(curve, p)
		if p >= probability {
			return curve, true, nil
		}
	}
	return curve, false, nil
}
