package estimate

import (
	"math"

	"github.com/felixgeelhaar/estima/internal/dist"
	"github.com/felixgeelhaar/estima/internal/errors"
)

// degenerateHalfWidth is the half-width of the default domain drawn around
// a degenerate estimate.
const degenerateHalfWidth = 1.0

// PertDensity samples the density over the default domain: samples evenly
// spaced points from optimistic to pessimistic. A single sample sits in the
// middle of the range and carries all of the mass.
//
// Each value is the mass of the cell around its sample divided by the cell
// width, so sum(values)*step is 1 for any sample count. A degenerate
// estimate yields a unit spike at the sample nearest to most likely.
func (e Estimate) PertDensity(samples int) (dist.Density, error) {
	if samples < 1 {
		return dist.Density{}, errors.NewInvalidSampleSizeError(samples)
	}
	lo, hi := e.Distribution().Support()
	if lo == hi {
		lo, hi = e.expected-degenerateHalfWidth, e.expected+degenerateHalfWidth
	}
	if samples == 1 {
		return e.densityOver([]float64{(lo + hi) / 2}), nil
	}
	return e.densityOver(dist.Linspace(lo, hi, samples)), nil
}

// PertDensityOver samples the density over a caller-given, strictly
// increasing domain. Mass outside the domain is not redistributed.
func (e Estimate) PertDensityOver(domain []float64) (dist.Density, error) {
	if len(domain) < 1 {
		return dist.Density{}, errors.NewInvalidSampleSizeError(len(domain))
	}
	if _, err := dist.NewDensity(domain, make([]float64, len(domain))); err != nil {
		return dist.Density{}, err
	}
	return e.densityOver(domain), nil
}

// densityOver fills in cell-averaged densities.
func (e Estimate) densityOver(domain []float64) dist.Density {
	values := make([]float64, len(domain))
	if len(domain) == 1 {
		// a lone sample stands for a unit-width cell holding everything
		values[0] = 1
		return dist.Density{Domain: domain, Values: values}
	}
	widths := dist.CellWidths(domain)

	if e.sigma == 0 {
		nearest := 0
		for i, x := range domain {
			if math.Abs(x-e.Mode()) < math.Abs(domain[nearest]-e.Mode()) {
				nearest = i
			}
		}
		values[nearest] = 1 / widths[nearest]
		return dist.Density{Domain: domain, Values: values}
	}

	cdf := e.Distribution().CDF
	for i, x := range domain {
		lo, hi := x-widths[i]/2, x+widths[i]/2
		if i > 0 {
			lo = (domain[i-1] + x) / 2
		}
		if i < len(domain)-1 {
			hi = (x + domain[i+1]) / 2
		}
		values[i] = (cdf(hi) - cdf(lo)) / widths[i]
	}
	return dist.Density{Domain: domain, Values: values}
}
