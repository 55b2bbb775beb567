package dist

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/felixgeelhaar/estima/internal/errors"
)

const (
	// quadNodes is the Gauss-Legendre order used on each sub-interval.
	quadNodes = 16
	// nearZero guards the 1/|t| factor of the product integral.
	nearZero = 1e-12
)

// MultiplyTwoPDFs returns the density of X*Y for independent X ~ first and
// Y ~ second, sampled at domain:
//
//	product(x) = ∫ first(t) * second(x/t) / |t| dt
//
// The integral runs over the support of first, split into subintervals
// pieces to balance accuracy and cost. Both inputs must be zero-padded.
// Typical use: remaining work times the inverse of velocity gives time to
// finish.
func MultiplyTwoPDFs(first, second Density, domain []float64, subintervals int) (Density, error) {
	if len(domain) < 1 {
		return Density{}, errors.NewInvalidSampleSizeError(len(domain))
	}
	if subintervals < 1 {
		subintervals = 1
	}
	support, err := first.Trimmed()
	if err != nil {
		return Density{}, err
	}
	if _, _, err := BoundsSlice(second.Values); err != nil {
		return Density{}, err
	}

	f1 := support.Lookup()
	f2 := second.Lookup()
	lo, hi := support.Domain[0], support.Domain[len(support.Domain)-1]
	edges := Linspace(lo, hi, subintervals+1)

	values := make([]float64, len(domain))
	for i, x := range domain {
		integrand := func(t float64) float64 {
			if math.Abs(t) < nearZero {
				return 0
			}
			return f1(t) * f2(x/t) / math.Abs(t)
		}
		var total float64
		for j := 0; j < subintervals; j++ {
			total += quad.Fixed(integrand, edges[j], edges[j+1], quadNodes, nil, 0)
		}
		values[i] = math.Max(total, 0)
	}

	return Density{Domain: domain, Values: values}.Normalized(), nil
}

// InversePDF returns the density of 1/X sampled at domain, using
// f(u) = pdf(1/u) / u². Points at or below zero get no mass.
func InversePDF(d Density, domain []float64) (Density, error) {
	if len(domain) < 1 {
		return Density{}, errors.NewInvalidSampleSizeError(len(domain))
	}
	eval := d.Lookup()
	values := make([]float64, len(domain))
	for i, u := range domain {
		if u <= nearZero {
			continue
		}
		values[i] = eval(1/u) / (u * u)
	}
	return Density{Domain: domain, Values: values}.Normalized(), nil
}
