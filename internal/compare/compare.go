// Package compare answers stochastic dominance questions between
// independent estimates.
package compare

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/felixgeelhaar/estima/internal/estimate"
)

const (
	// DefaultSubintervals splits the overlap of two supports for
	// quadrature. With 16 Legendre nodes each it keeps the absolute error
	// well under 1e-3 for PERT and Normal densities.
	DefaultSubintervals = 32

	quadNodes = 16
)

// EstimateIsLower returns P(X_one < X_two) for independent draws from the
// two estimates.
func EstimateIsLower(one, two estimate.Estimate) float64 {
	return EstimateIsLowerWith(one, two, DefaultSubintervals)
}

// EstimateIsLowerWith is EstimateIsLower with an explicit number of
// quadrature subintervals.
func EstimateIsLowerWith(one, two estimate.Estimate, subintervals int) float64 {
	if subintervals < 1 {
		subintervals = DefaultSubintervals
	}

	switch {
	case one.IsDegenerate() && two.IsDegenerate():
		switch {
		case one.Expected() == two.Expected():
			return 0.5
		case one.Expected() < two.Expected():
			return 1
		default:
			return 0
		}
	case one.IsDegenerate():
		return 1 - two.CDF(one.Expected())
	case two.IsDegenerate():
		return one.CDF(two.Expected())
	case one.Equal(two):
		return 0.5
	}

	x := one.Distribution()
	y := two.Distribution()
	xLo, xHi := x.Support()
	yLo, yHi := y.Support()

	// Below yLo the second CDF is 0 and above yHi it is 1, so only the
	// overlap needs integrating.
	p := x.CDF(math.Min(xHi, yLo)) - x.CDF(xLo)
	p = math.Max(p, 0)

	lo, hi := math.Max(xLo, yLo), math.Min(xHi, yHi)
	if lo < hi {
		integrand := func(t float64) float64 {
			return x.Prob(t) * (1 - y.CDF(t))
		}
		step := (hi - lo) / float64(subintervals)
		for i := range subintervals {
			a := lo + float64(i)*step
			b := a + step
			if i == subintervals-1 {
				b = hi
			}
			p += quad.Fixed(integrand, a, b, quadNodes, nil, 0)
		}
	}
	return math.Max(0, math.Min(1, p))
}

// EstimateIsHigher returns P(X_one > X_two).
func EstimateIsHigher(one, two estimate.Estimate) float64 {
	return EstimateIsLower(two, one)
}
