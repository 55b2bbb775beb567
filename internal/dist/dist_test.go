package dist

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// triangular samples a triangular density peaking at peak over domain.
func triangular(domain []float64, lo, peak, hi float64) Density {
	values := make([]float64, len(domain))
	for i, x := range domain {
		switch {
		case x <= lo || x >= hi:
			values[i] = 0
		case x <= peak:
			values[i] = (x - lo) / (peak - lo)
		default:
			values[i] = (hi - x) / (hi - peak)
		}
	}
	return Density{Domain: domain, Values: values}.Normalized()
}

func TestNewDensityValidation(t *testing.T) {
	_, err := NewDensity(nil, nil)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSampleSize))

	_, err = NewDensity([]float64{0, 1}, []float64{1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMisshapenDensity))

	_, err = NewDensity([]float64{0, 0}, []float64{1, 1})
	assert.True(t, errors.IsCode(err, errors.ErrCodeMisshapenDensity))

	d, err := NewDensity([]float64{0, 1, 2}, []float64{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Len())
}

func TestUniformMassIsSumTimesStep(t *testing.T) {
	d := Density{Domain: Linspace(0, 2, 5), Values: []float64{0.2, 0.4, 0.6, 0.4, 0.2}}

	assert.InDelta(t, 1.8*0.5, d.Mass(), 1e-12)
	assert.InDelta(t, 1.0, d.Normalized().Mass(), 1e-12)
	assert.True(t, d.IsUniform())
	assert.False(t, Density{Domain: []float64{0, 1, 3}, Values: []float64{0, 1, 0}}.IsUniform())
}

func TestPaddedAddsZeroSamples(t *testing.T) {
	d := Density{Domain: []float64{1, 2, 3}, Values: []float64{1, 2, 1}}

	p := d.Padded()
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, p.Domain)
	assert.Equal(t, []float64{0, 1, 2, 1, 0}, p.Values)

	_, _, err := BoundsSlice(p.Values)
	assert.NoError(t, err)
}

func TestAtInterpolatesAndIsZeroOutside(t *testing.T) {
	d := Density{Domain: []float64{0, 1, 2}, Values: []float64{0, 2, 0}}

	assert.InDelta(t, 1.0, d.At(0.5), 1e-12)
	assert.InDelta(t, 2.0, d.At(1), 1e-12)
	assert.Equal(t, 0.0, d.At(-1))
	assert.Equal(t, 0.0, d.At(3))
}

func TestBoundsSlice(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		lo, hi  int
		wantErr bool
	}{
		{name: "padded", values: []float64{0, 0, 1, 2, 0, 0}, lo: 1, hi: 5},
		{name: "tight padding", values: []float64{0, 1, 0}, lo: 0, hi: 3},
		{name: "inner zero kept", values: []float64{0, 1, 0, 1, 0}, lo: 0, hi: 5},
		{name: "lower edge nonzero", values: []float64{1, 1, 0}, wantErr: true},
		{name: "upper edge nonzero", values: []float64{0, 1, 1}, wantErr: true},
		{name: "all zero", values: []float64{0, 0, 0}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi, err := BoundsSlice(tt.values)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeMisshapenDensity))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lo, lo)
			assert.Equal(t, tt.hi, hi)
		})
	}
}

func TestMeanMedianDissolvingOutliers(t *testing.T) {
	t.Run("no outliers", func(t *testing.T) {
		mean, median, err := MeanMedianDissolvingOutliers([]float64{2, 4, 6}, 3)
		require.NoError(t, err)
		assert.InDelta(t, 4.0, mean, 1e-12)
		assert.InDelta(t, 4.0, median, 1e-12)
	})

	t.Run("outlier rescales median", func(t *testing.T) {
		mean, median, err := MeanMedianDissolvingOutliers([]float64{1, 2, 3, 100}, 2)
		require.NoError(t, err)
		assert.InDelta(t, 26.5, mean, 1e-12)
		// good subset {1,2,3}: median 2, mean 2, rescaled by 26.5/2
		assert.InDelta(t, 26.5, median, 1e-12)
	})

	t.Run("median rescaled to the raw mean", func(t *testing.T) {
		samples := []float64{4, 5, 6, 5, 4, 6, 5, 60}
		_, median, err := MeanMedianDissolvingOutliers(samples, 3)
		require.NoError(t, err)
		raw := Median(samples)
		assert.Greater(t, median, raw)
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := MeanMedianDissolvingOutliers(nil, 3)
		assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))
	})

	t.Run("zeros", func(t *testing.T) {
		mean, median, err := MeanMedianDissolvingOutliers([]float64{0, 0}, 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, mean)
		assert.Equal(t, 0.0, median)
	})
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.5, Median([]float64{4, 1, 3, 2}))
	assert.Equal(t, 3.0, Median([]float64{5, 3, 1}))
	assert.Equal(t, 0.0, Median(nil))
}

func TestLognormFromMeanMedian(t *testing.T) {
	d, err := LognormFromMeanMedian(10, 8, 400)
	require.NoError(t, err)

	assert.Equal(t, 0.0, d.Values[0])
	assert.Equal(t, 0.0, d.Values[len(d.Values)-1])
	assert.InDelta(t, 1.0, d.Mass(), 1e-9)
	assert.InDelta(t, 10.0, d.Mean(), 0.6)

	// samples concentrate near the bulk of the mass
	firstStep := d.Domain[1] - d.Domain[0]
	lastStep := d.Domain[len(d.Domain)-1] - d.Domain[len(d.Domain)-2]
	assert.Less(t, firstStep, lastStep)
}

func TestLognormRejectsInvalidInputs(t *testing.T) {
	_, err := LognormFromMeanMedian(5, 5, 100)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))

	_, err = LognormFromMeanMedian(5, 0, 100)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))

	_, err = LognormFromMeanMedian(10, 8, 2)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSampleSize))
}

func TestConvolve(t *testing.T) {
	a := Density{Domain: []float64{0, 1, 2, 3}, Values: []float64{0, 0.5, 0.5, 0}}

	sum, err := Convolve(a, a)
	require.NoError(t, err)

	assert.Equal(t, 7, sum.Len())
	assert.InDelta(t, 0.25, sum.Values[2], 1e-12)
	assert.InDelta(t, 0.5, sum.Values[3], 1e-12)
	assert.InDelta(t, 0.25, sum.Values[4], 1e-12)
	assert.InDelta(t, 1.0, sum.Mass(), 1e-12)
	assert.InDelta(t, 3.0, sum.Mean(), 1e-12)
}

func TestConvolveRejectsMismatchedGrids(t *testing.T) {
	a := Density{Domain: []float64{0, 1, 2}, Values: []float64{0, 1, 0}}
	b := Density{Domain: []float64{0, 0.5, 1}, Values: []float64{0, 2, 0}}

	_, err := Convolve(a, b)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))

	c := Density{Domain: []float64{0, 1, 3}, Values: []float64{0, 1, 0}}
	_, err = Convolve(a, c)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidDistribution))
}

func TestPrunedDropsTails(t *testing.T) {
	d := Density{Domain: Linspace(0, 6, 7), Values: []float64{1e-15, 0, 1, 2, 1, 1e-14, 0}}

	p := d.Pruned(1e-9)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, p.Domain)
	assert.Equal(t, []float64{0, 1, 2, 1, 0}, p.Values)
}

func TestCompletionPDFMeanGrowsLinearly(t *testing.T) {
	velocity := triangular(Linspace(0, 4, 81), 0, 2, 4)

	for _, n := range []int{1, 3, 6} {
		total, err := CompletionPDF(velocity, n, 1e-12)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, total.Mass(), 1e-6)
		assert.InDelta(t, 2.0*float64(n), total.Mean(), 0.02*float64(n))
	}

	_, err := CompletionPDF(velocity, 0, 1e-12)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidSampleSize))
}

func TestPeriodsToComplete(t *testing.T) {
	velocity := triangular(Linspace(0, 4, 81), 0, 2, 4)

	curve, reached, err := PeriodsToComplete(velocity, 10, 0.99, 50, 1e-12)
	require.NoError(t, err)
	require.True(t, reached)
	assert.GreaterOrEqual(t, curve[len(curve)-1], 0.99)
	for i := 1; i < len(curve); i++ {
		assert.GreaterOrEqual(t, curve[i], curve[i-1]-1e-9)
	}
	// mean velocity 2 cannot finish 10 points with certainty in 5 periods
	assert.Greater(t, len(curve), 5)

	capped, reached, err := PeriodsToComplete(velocity, 1e6, 0.99, 4, 1e-12)
	require.NoError(t, err)
	assert.False(t, reached)
	assert.Len(t, capped, 4)
}

func TestMultiplyTwoPDFs(t *testing.T) {
	x := triangular(Linspace(0, 4, 81), 0, 2, 4)
	y := triangular(Linspace(0, 2, 41), 0, 1, 2)

	product, err := MultiplyTwoPDFs(x, y, Linspace(0, 8, 161), 20)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, product.Mass(), 1e-9)
	// E[XY] = E[X]E[Y] for independent factors
	assert.InDelta(t, 2.0, product.Mean(), 0.1)
}

func TestMultiplyTwoPDFsNeedsPadding(t *testing.T) {
	unpadded := Density{Domain: []float64{1, 2, 3}, Values: []float64{1, 1, 1}}
	padded := triangular(Linspace(0, 4, 41), 0, 2, 4)

	_, err := MultiplyTwoPDFs(unpadded, padded, Linspace(0, 10, 11), 4)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMisshapenDensity))

	_, err = MultiplyTwoPDFs(padded, unpadded, Linspace(0, 10, 11), 4)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMisshapenDensity))
}

func TestInversePDF(t *testing.T) {
	x := triangular(Linspace(0, 4, 401), 1, 2, 3)

	inv, err := InversePDF(x, Linspace(0.2, 1.2, 201))
	require.NoError(t, err)

	want := (1 - math.Ln2) + (3*math.Log(1.5) - 1)
	assert.InDelta(t, want, inv.Mean(), 0.02)
}
