// Package estimate models a three-point estimate as a PERT (scaled Beta)
// distribution and provides the algebra for summing independent estimates.
//
// An Input is the raw (optimistic, most likely, pessimistic) triple. An
// Estimate is the derived summary: expected value, standard deviation and,
// when it can be reconstructed, the triple that produced it. With shape γ
// (default 4):
//
//	expected = (optimistic + γ*most_likely + pessimistic) / (γ+2)
//	variance = (expected-optimistic) * (pessimistic-expected) / (γ+3)
//
// Two composition paths exist. ComposeWith adds means and variances and
// drops the triple; it is associative and is what tree roll-ups use.
// ComposeUsingParameters also matches skewness and recovers a new triple
// through InputFromParameters.
package estimate
