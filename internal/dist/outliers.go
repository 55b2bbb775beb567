package dist

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// MeanMedianDissolvingOutliers summarizes samples so that a few abnormally
// large values do not distort a velocity model.
//
// Samples at or above mean*threshold are treated as outliers. The median is
// taken over the remaining samples and rescaled by mean/goodMean, which keeps
// it consistent with the mean of all samples. The returned mean is the mean
// of all samples.
func MeanMedianDissolvingOutliers(samples []float64, threshold float64) (mean, median float64, err error) {
	if len(samples) == 0 {
		return 0, 0, errors.NewInvalidDistributionError("no samples to summarize")
	}

	mean = stat.Mean(samples, nil)
	good := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s < mean*threshold {
			good = append(good, s)
		}
	}
	if len(good) == 0 {
		return mean, Median(samples), nil
	}

	goodMean := stat.Mean(good, nil)
	if goodMean == 0 {
		return mean, 0, nil
	}
	return mean, Median(good) * mean / goodMean, nil
}

// Median returns the sample median, averaging the two middle values of an
// even-sized sample. The input is not modified.
func Median(samples []float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
