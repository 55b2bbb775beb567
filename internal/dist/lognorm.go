package dist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/felixgeelhaar/estima/internal/errors"
)

const (
	// lognormStretch spreads the domain out to a multiple of the mean.
	lognormStretch = 6.0
	// lognormExponent concentrates samples near zero, where most of the
	// mass of a right-skewed velocity distribution sits.
	lognormExponent = 1.8
	// lognormCoverage is the quantile the domain must reach.
	lognormCoverage = 0.999
)

// LognormFromMeanMedian fits a lognormal distribution to a mean and median
// and samples its density.
//
// mu = ln(median) and sigma = sqrt(2*(ln(mean)-mu)), which requires
// 0 < median < mean. The domain is x = t^1.8 * mean * k for t in [0, 1],
// with k large enough to reach the 99.9% quantile. Both endpoints are forced
// to zero so the result is zero-padded.
func LognormFromMeanMedian(mean, median float64, samples int) (Density, error) {
	if samples < 3 {
		return Density{}, errors.NewInvalidSampleSizeError(samples).
			WithSuggestion("A lognormal density needs at least 3 samples")
	}
	if !(median > 0) || !(mean > median) {
		return Density{}, errors.NewInvalidDistributionError(
			fmt.Sprintf("lognormal fit needs 0 < median < mean, got mean=%g median=%g", mean, median)).
			WithField("mean", mean).
			WithField("median", median)
	}

	mu := math.Log(median)
	sigma := math.Sqrt(2 * (math.Log(mean) - mu))
	lognorm := distuv.LogNormal{Mu: mu, Sigma: sigma}

	reach := math.Exp(mu + sigma*distuv.UnitNormal.Quantile(lognormCoverage))
	upper := math.Max(mean*lognormStretch, reach)

	domain := make([]float64, samples)
	values := make([]float64, samples)
	for i, t := range Linspace(0, 1, samples) {
		domain[i] = math.Pow(t, lognormExponent) * upper
		values[i] = lognorm.Prob(domain[i])
	}
	values[0] = 0
	values[samples-1] = 0

	return Density{Domain: domain, Values: values}.Normalized(), nil
}
