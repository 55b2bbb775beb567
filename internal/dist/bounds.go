package dist

import (
	"github.com/felixgeelhaar/estima/internal/errors"
)

// BoundsSlice locates the support of a sampled density. It returns slice
// bounds [lo, hi) that keep exactly one zero sample on each side of the
// nonzero run, so the trimmed array is still zero-padded.
//
// The routines that multiply or convolve densities rely on the input being
// zero outside its support; an array whose first or last sample is nonzero,
// or that has no nonzero sample at all, is rejected.
func BoundsSlice(values []float64) (lo, hi int, err error) {
	first, last := -1, -1
	for i, v := range values {
		if v != 0 {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	switch {
	case first < 0:
		return 0, 0, errors.NewMisshapenDensityError("density has no nonzero sample")
	case first == 0:
		return 0, 0, errors.NewMisshapenDensityError("density is not zero-padded at its lower bound").
			WithField("value", values[0])
	case last == len(values)-1:
		return 0, 0, errors.NewMisshapenDensityError("density is not zero-padded at its upper bound").
			WithField("value", values[last])
	}
	return first - 1, last + 2, nil
}

// Trimmed drops the empty tails of d, keeping one zero sample on each side.
func (d Density) Trimmed() (Density, error) {
	lo, hi, err := BoundsSlice(d.Values)
	if err != nil {
		return Density{}, err
	}
	return Density{Domain: d.Domain[lo:hi], Values: d.Values[lo:hi]}, nil
}
