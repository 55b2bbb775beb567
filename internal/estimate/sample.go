package estimate

import (
	"math/rand/v2"
)

// PertRvs draws n samples from the estimate's distribution by inverse
// transform, using a generator seeded with seed so runs are reproducible.
// A degenerate estimate yields n copies of its most likely value.
func (e Estimate) PertRvs(n int, seed uint64) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if e.sigma == 0 {
		for i := range out {
			out[i] = e.Mode()
		}
		return out
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	dist := e.Distribution()
	for i := range out {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		out[i] = dist.Quantile(u)
	}
	return out
}
