package estimate

import (
	"math"
)

// ComposeWith returns the estimate of the sum of two independent
// quantities by adding expected values and variances. Adding a degenerate
// estimate only shifts the other operand, triple included; otherwise the
// result keeps no triple. This path is commutative and associative and is
// the one tree roll-ups use.
func (e Estimate) ComposeWith(other Estimate) Estimate {
	switch {
	case other.sigma == 0:
		return e.shiftedBy(other.expected)
	case e.sigma == 0:
		return other.shiftedBy(e.expected)
	}
	out := New(e.expected+other.expected, math.Sqrt(e.Variance()+other.Variance()))
	out.shape = max(e.Shape(), other.Shape())
	return out
}

// Sum folds estimates with ComposeWith, starting from Zero.
func Sum(estimates ...Estimate) Estimate {
	total := Zero()
	for _, e := range estimates {
		total = total.ComposeWith(e)
	}
	return total
}

// ComposeUsingParameters returns the estimate of the sum of two independent
// quantities that keeps a reconstructible triple. It matches the expected
// value, variance and skewness of the sum,
//
//	skew = (skew1*sigma1³ + skew2*sigma2³) / (var1+var2)^1.5
//
// and inverts them with InputFromParameters. A degenerate operand only
// shifts the other one.
func (e Estimate) ComposeUsingParameters(other Estimate) (Estimate, error) {
	switch {
	case other.sigma == 0:
		return e.shiftedBy(other.expected), nil
	case e.sigma == 0:
		return other.shiftedBy(e.expected), nil
	}

	expected := e.expected + other.expected
	variance := e.Variance() + other.Variance()
	skewness := (e.Skewness()*math.Pow(e.sigma, 3) + other.Skewness()*math.Pow(other.sigma, 3)) /
		math.Pow(variance, 1.5)
	shape := max(e.Shape(), other.Shape())

	in, err := InputFromParameters(expected, variance, skewness, shape)
	if err != nil {
		return Estimate{}, err
	}
	return FromInput(in)
}

func (e Estimate) shiftedBy(delta float64) Estimate {
	out := Estimate{expected: e.expected + delta, sigma: e.sigma, shape: e.shape}
	if src, ok := e.Source(); ok {
		shifted := src.Shifted(delta)
		out.source = &shifted
	}
	return out
}
