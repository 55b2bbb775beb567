// Package forecast turns a history of completed work per period into a
// velocity model and answers when a given amount of work will be done.
package forecast

import (
	"fmt"
	"math"

	"github.com/felixgeelhaar/estima/internal/dist"
	"github.com/felixgeelhaar/estima/internal/errors"
	"github.com/felixgeelhaar/estima/internal/estimate"
	"github.com/felixgeelhaar/estima/internal/log"
	"github.com/felixgeelhaar/estima/internal/metrics"
)

const (
	// fallbackSigma is the log-scale spread used when the history has no
	// right skew to fit.
	fallbackSigma = 0.05
	// slowestVelocityQuantile bounds the inverse of velocity away from
	// zero when deriving time to finish.
	slowestVelocityQuantile = 0.001
)

// Options tune the numerical routines.
type Options struct {
	OutlierThreshold float64
	LognormSamples   int
	// GridSamples is the size of the uniform grids used for convolution
	// and for time-to-finish densities.
	GridSamples int
	// WorkSamples is the sample count of remaining-work densities.
	WorkSamples  int
	IterationCap int
	Probability  float64
	PruneEpsilon float64
	Subintervals int

	Logger  *log.Logger
	Metrics *metrics.Metrics
}

// DefaultOptions returns the built-in tuning.
func DefaultOptions() Options {
	return Options{
		OutlierThreshold: 3.0,
		LognormSamples:   200,
		GridSamples:      200,
		WorkSamples:      100,
		IterationCap:     200,
		Probability:      0.99,
		PruneEpsilon:     1e-9,
		Subintervals:     20,
	}
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Discard()
	}
	return o.Logger
}

// Point is the probability of having finished by the end of a period.
type Point struct {
	Period      int     `json:"period" yaml:"period"`
	Probability float64 `json:"probability" yaml:"probability"`
}

// VelocityFromHistory fits a lognormal velocity model to the work completed
// in each past period. Outliers are dissolved first. A history without
// right skew (median not below mean) gets a narrow lognormal around its
// mean. The result sits on a uniform grid starting at zero.
func VelocityFromHistory(history []float64, opts Options) (dist.Density, error) {
	if len(history) == 0 {
		return dist.Density{}, errors.NewInvalidDistributionError("velocity history is empty").
			WithSuggestion("Record the work completed in at least one period")
	}
	for _, v := range history {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return dist.Density{}, errors.NewInvalidDistributionError(
				fmt.Sprintf("velocity history holds invalid value %g", v))
		}
	}

	mean, median, err := dist.MeanMedianDissolvingOutliers(history, opts.OutlierThreshold)
	if err != nil {
		return dist.Density{}, err
	}
	if mean <= 0 {
		return dist.Density{}, errors.NewInvalidDistributionError("velocity history completed no work")
	}
	if median >= mean || median <= 0 {
		median = mean * math.Exp(-fallbackSigma*fallbackSigma/2)
		opts.logger().Debug("velocity history has no skew, using narrow fit",
			"mean", mean,
			"sigma", fallbackSigma)
	}

	fitted, err := dist.LognormFromMeanMedian(mean, median, opts.LognormSamples)
	if err != nil {
		return dist.Density{}, err
	}
	upper := fitted.Domain[fitted.Len()-1]
	velocity := fitted.Regrid(dist.Linspace(0, upper, opts.GridSamples))
	if opts.Metrics != nil {
		opts.Metrics.DensitySamples.WithLabelValues("velocity").Observe(float64(velocity.Len()))
	}
	return velocity, nil
}

// CompletionCurve returns, period by period, the probability that the
// work completed so far is at least work. It stops once the probability
// reaches opts.Probability or after opts.IterationCap periods; reached
// reports which.
func CompletionCurve(velocity dist.Density, work float64, opts Options) ([]Point, bool, error) {
	curve, reached, err := dist.PeriodsToComplete(velocity, work, opts.Probability, opts.IterationCap, opts.PruneEpsilon)
	if err != nil {
		return nil, false, err
	}
	return finish(curve, reached, opts), reached, nil
}

// CompletionCurveForWork is CompletionCurve for an uncertain amount of
// work: each period's probability averages P(done >= w) over the work
// density.
func CompletionCurveForWork(velocity dist.Density, work estimate.Estimate, opts Options) ([]Point, bool, error) {
	if work.IsDegenerate() {
		return CompletionCurve(velocity, work.Expected(), opts)
	}
	wd, err := work.PertDensity(opts.WorkSamples)
	if err != nil {
		return nil, false, err
	}
	masses := wd.Masses()

	conv, err := dist.NewSelfConvolver(velocity, opts.PruneEpsilon)
	if err != nil {
		return nil, false, err
	}
	var curve []float64
	reached := false
	for range opts.IterationCap {
		done, err := conv.Next()
		if err != nil {
			return nil, false, err
		}
		var p float64
		for i, m := range masses {
			if m > 0 {
				p += m * done.ProbabilityAtLeast(wd.Domain[i])
			}
		}
		p = math.Min(p, 1)
		curve = append(curve, p)
		if p >= opts.Probability {
			reached = true
			break
		}
	}
	return finish(curve, reached, opts), reached, nil
}

func finish(curve []float64, reached bool, opts Options) []Point {
	points := make([]Point, len(curve))
	for i, p := range curve {
		points[i] = Point{Period: i + 1, Probability: p}
	}
	opts.logger().Debug("completion forecast finished",
		"periods", len(points),
		"reached", reached)
	if opts.Metrics != nil {
		opts.Metrics.RecordForecast(len(points), reached)
	}
	return points
}

// TimeToFinish returns the density of the number of periods needed to
// finish work at the given velocity, work × 1/velocity, treating both as
// independent. The slowest 0.1% of velocity is ignored so the inverse stays
// bounded.
func TimeToFinish(work estimate.Estimate, velocity dist.Density, opts Options) (dist.Density, error) {
	if work.Expected() <= 0 && work.IsDegenerate() {
		return dist.Density{}, errors.NewInvalidDistributionError("no work left to finish")
	}

	inverse, err := inverseVelocity(velocity, opts.GridSamples)
	if err != nil {
		return dist.Density{}, err
	}
	slowest := inverse.Domain[inverse.Len()-1]

	if work.IsDegenerate() {
		amount := work.Expected()
		domain := dist.Linspace(0, amount*slowest, opts.GridSamples)
		eval := inverse.Lookup()
		values := make([]float64, len(domain))
		for i, x := range domain {
			values[i] = eval(x/amount) / amount
		}
		return dist.Density{Domain: domain, Values: values}.Normalized(), nil
	}

	wd, err := work.PertDensity(opts.WorkSamples)
	if err != nil {
		return dist.Density{}, err
	}
	_, most := work.Distribution().Support()
	domain := dist.Linspace(0, most*slowest, opts.GridSamples)
	return dist.MultiplyTwoPDFs(wd.Padded(), inverse, domain, opts.Subintervals)
}

// inverseVelocity samples the density of 1/velocity between the inverse of
// the fastest and of the slowest considered velocity, zero-padded.
func inverseVelocity(velocity dist.Density, samples int) (dist.Density, error) {
	trimmed, err := velocity.Trimmed()
	if err != nil {
		return dist.Density{}, err
	}
	fastest := trimmed.Domain[trimmed.Len()-1]
	slowest := 0.0
	for _, v := range trimmed.Domain {
		if v > 0 && trimmed.CDF(v) >= slowestVelocityQuantile {
			slowest = v
			break
		}
	}
	if slowest <= 0 || slowest >= fastest {
		return dist.Density{}, errors.NewInvalidDistributionError("velocity has no usable spread")
	}

	inverse, err := dist.InversePDF(velocity, dist.Linspace(1/fastest, 1/slowest, samples))
	if err != nil {
		return dist.Density{}, err
	}
	return inverse.Padded(), nil
}
