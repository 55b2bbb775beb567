package dist

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// uniformTolerance is the relative step deviation still treated as a
// uniform grid.
const uniformTolerance = 1e-6

// Density is a probability density sampled at increasing domain points.
// Each sample stands for the cell reaching halfway to its neighbours, so
// the total mass is the cell-weighted sum of the values.
type Density struct {
	Domain []float64 `json:"domain" yaml:"domain"`
	Values []float64 `json:"values" yaml:"values"`
}

// NewDensity validates that domain and values line up.
func NewDensity(domain, values []float64) (Density, error) {
	if len(domain) < 1 {
		return Density{}, errors.NewInvalidSampleSizeError(len(domain))
	}
	if len(domain) != len(values) {
		return Density{}, errors.NewMisshapenDensityError("domain and values differ in length").
			WithField("domain", len(domain)).
			WithField("values", len(values))
	}
	for i := 1; i < len(domain); i++ {
		if !(domain[i] > domain[i-1]) {
			return Density{}, errors.NewMisshapenDensityError("domain is not strictly increasing").
				WithField("index", i)
		}
	}
	return Density{Domain: domain, Values: values}, nil
}

// Linspace returns n evenly spaced points over [lo, hi].
func Linspace(lo, hi float64, n int) []float64 {
	if n == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Len returns the number of samples.
func (d Density) Len() int {
	return len(d.Domain)
}

// Step returns the spacing of the first two samples, or 1 for a single sample.
func (d Density) Step() float64 {
	if len(d.Domain) < 2 {
		return 1
	}
	return d.Domain[1] - d.Domain[0]
}

// IsUniform reports whether the samples are evenly spaced.
func (d Density) IsUniform() bool {
	if len(d.Domain) < 3 {
		return true
	}
	step := d.Step()
	for i := 2; i < len(d.Domain); i++ {
		if math.Abs((d.Domain[i]-d.Domain[i-1])-step) > uniformTolerance*math.Abs(step) {
			return false
		}
	}
	return true
}

// CellWidths returns the width of the cell each sample stands for.
func CellWidths(domain []float64) []float64 {
	n := len(domain)
	widths := make([]float64, n)
	if n == 1 {
		widths[0] = 1
		return widths
	}
	for i := range domain {
		switch i {
		case 0:
			widths[i] = domain[1] - domain[0]
		case n - 1:
			widths[i] = domain[n-1] - domain[n-2]
		default:
			widths[i] = (domain[i+1] - domain[i-1]) / 2
		}
	}
	return widths
}

// Masses returns the probability mass carried by each sample.
func (d Density) Masses() []float64 {
	masses := CellWidths(d.Domain)
	floats.Mul(masses, d.Values)
	return masses
}

// Mass returns the total probability mass. A uniform grid gives
// sum(values) * step.
func (d Density) Mass() float64 {
	return floats.Sum(d.Masses())
}

// Mean returns the first moment of the sampled density.
func (d Density) Mean() float64 {
	mass := d.Mass()
	if mass == 0 {
		return 0
	}
	return floats.Dot(d.Domain, d.Masses()) / mass
}

// Normalized returns a copy scaled to unit mass. A massless density is
// returned unchanged.
func (d Density) Normalized() Density {
	out := d.clone()
	mass := d.Mass()
	if mass > 0 {
		floats.Scale(1/mass, out.Values)
	}
	return out
}

// Padded returns a copy with one zero sample added on each side, one step
// beyond the current ends.
func (d Density) Padded() Density {
	n := len(d.Domain)
	lowStep, highStep := d.Step(), d.Step()
	if n >= 2 {
		highStep = d.Domain[n-1] - d.Domain[n-2]
	}
	domain := make([]float64, 0, n+2)
	domain = append(domain, d.Domain[0]-lowStep)
	domain = append(domain, d.Domain...)
	domain = append(domain, d.Domain[n-1]+highStep)

	values := make([]float64, 0, n+2)
	values = append(values, 0)
	values = append(values, d.Values...)
	values = append(values, 0)
	return Density{Domain: domain, Values: values}
}

// At evaluates the density by linear interpolation, zero outside the domain.
// Use Lookup when evaluating many points.
func (d Density) At(x float64) float64 {
	return d.interpolator().At(x)
}

// Lookup returns a reusable evaluator equivalent to At.
func (d Density) Lookup() func(float64) float64 {
	return d.interpolator().At
}

// Regrid resamples the density onto domain and renormalizes it.
func (d Density) Regrid(domain []float64) Density {
	eval := d.interpolator()
	values := make([]float64, len(domain))
	for i, x := range domain {
		values[i] = eval.At(x)
	}
	return Density{Domain: domain, Values: values}.Normalized()
}

// CDF returns the mass of all cells whose sample lies at or below x.
func (d Density) CDF(x float64) float64 {
	var total float64
	for i, m := range d.Masses() {
		if d.Domain[i] > x {
			break
		}
		total += m
	}
	return total
}

func (d Density) clone() Density {
	return Density{
		Domain: append([]float64(nil), d.Domain...),
		Values: append([]float64(nil), d.Values...),
	}
}

func (d Density) interpolator() lookup {
	l := lookup{lo: d.Domain[0], hi: d.Domain[len(d.Domain)-1]}
	if len(d.Domain) == 1 {
		l.single = d.Values[0]
		return l
	}
	// Fit only fails on a non-increasing domain, which NewDensity rejects.
	if err := l.pl.Fit(d.Domain, d.Values); err != nil {
		l.broken = true
	}
	return l
}

type lookup struct {
	pl     interp.PiecewiseLinear
	lo, hi float64
	single float64
	broken bool
}

func (l lookup) At(x float64) float64 {
	if x < l.lo || x > l.hi || l.broken {
		return 0
	}
	if l.lo == l.hi {
		return l.single
	}
	return l.pl.Predict(x)
}
