package estimate

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// normalReach is how many standard deviations the support of a Normal-like
// estimate spans on each side.
const normalReach = 6

// Distribution is the probability law behind an Estimate.
type Distribution interface {
	// Prob returns the density at x.
	Prob(x float64) float64
	// CDF returns P(X <= x).
	CDF(x float64) float64
	// Quantile returns the x with CDF(x) = p.
	Quantile(p float64) float64
	// Support returns the interval holding effectively all of the mass.
	Support() (lo, hi float64)
}

// Distribution returns the PERT distribution when the estimate has a
// non-degenerate triple, a Normal one when it has none, and a point mass
// when it is degenerate.
func (e Estimate) Distribution() Distribution {
	if e.sigma == 0 {
		return pointDistribution{value: e.expected}
	}
	if a, b, ok := e.BetaParameters(); ok {
		src, _ := e.Source()
		return pertDistribution{
			optimistic: src.Optimistic,
			width:      src.Width(),
			beta:       distuv.Beta{Alpha: a, Beta: b},
		}
	}
	return normalDistribution{normal: distuv.Normal{Mu: e.expected, Sigma: e.sigma}}
}

// CDF returns P(X <= x).
func (e Estimate) CDF(x float64) float64 {
	return e.Distribution().CDF(x)
}

// Quantile returns the value below which a fraction p of the mass lies.
func (e Estimate) Quantile(p float64) float64 {
	return e.Distribution().Quantile(p)
}

// Interval returns the central interval holding the given fraction of the
// mass, e.g. 0.9 for the 5%-95% range.
func (e Estimate) Interval(confidence float64) (lo, hi float64) {
	tail := (1 - confidence) / 2
	dist := e.Distribution()
	return dist.Quantile(tail), dist.Quantile(1 - tail)
}

type pertDistribution struct {
	optimistic float64
	width      float64
	beta       distuv.Beta
}

func (d pertDistribution) Prob(x float64) float64 {
	u := (x - d.optimistic) / d.width
	switch {
	case u < 0 || u > 1:
		return 0
	case u == 0:
		if d.beta.Alpha == 1 {
			return d.beta.Beta / d.width
		}
		return 0
	case u == 1:
		if d.beta.Beta == 1 {
			return d.beta.Alpha / d.width
		}
		return 0
	}
	return d.beta.Prob(u) / d.width
}

func (d pertDistribution) CDF(x float64) float64 {
	u := (x - d.optimistic) / d.width
	switch {
	case u <= 0:
		return 0
	case u >= 1:
		return 1
	}
	return d.beta.CDF(u)
}

func (d pertDistribution) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return d.optimistic
	case p >= 1:
		return d.optimistic + d.width
	}
	return d.optimistic + d.width*mathext.InvRegIncBeta(d.beta.Alpha, d.beta.Beta, p)
}

func (d pertDistribution) Support() (float64, float64) {
	return d.optimistic, d.optimistic + d.width
}

type normalDistribution struct {
	normal distuv.Normal
}

func (d normalDistribution) Prob(x float64) float64 {
	return d.normal.Prob(x)
}

func (d normalDistribution) CDF(x float64) float64 {
	return d.normal.CDF(x)
}

func (d normalDistribution) Quantile(p float64) float64 {
	switch {
	case p <= 0:
		return math.Inf(-1)
	case p >= 1:
		return math.Inf(1)
	}
	return d.normal.Quantile(p)
}

func (d normalDistribution) Support() (float64, float64) {
	return d.normal.Mu - normalReach*d.normal.Sigma, d.normal.Mu + normalReach*d.normal.Sigma
}

type pointDistribution struct {
	value float64
}

// Prob of a point mass is zero everywhere; densities of degenerate
// estimates are built as a unit spike instead.
func (d pointDistribution) Prob(float64) float64 {
	return 0
}

func (d pointDistribution) CDF(x float64) float64 {
	if x < d.value {
		return 0
	}
	return 1
}

func (d pointDistribution) Quantile(float64) float64 {
	return d.value
}

func (d pointDistribution) Support() (float64, float64) {
	return d.value, d.value
}
