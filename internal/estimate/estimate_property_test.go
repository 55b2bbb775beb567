package estimate

import (
	"math"
	"testing"

	"pgregory.net/rapid"

	"github.com/felixgeelhaar/estima/internal/errors"
)

// tripleGen draws valid non-degenerate inputs with an optimistic value of
// at least 1.
func tripleGen() *rapid.Generator[Input] {
	return rapid.Custom(func(t *rapid.T) Input {
		o := rapid.Float64Range(1, 50).Draw(t, "optimistic")
		width := rapid.Float64Range(0.5, 50).Draw(t, "width")
		frac := rapid.Float64Range(0, 1).Draw(t, "mode_fraction")
		shape := rapid.IntRange(2, 8).Draw(t, "shape")
		return Input{Optimistic: o, MostLikely: o + frac*width, Pessimistic: o + width, Shape: shape}
	})
}

func estimateGen() *rapid.Generator[Estimate] {
	return rapid.Custom(func(t *rapid.T) Estimate {
		e, err := FromInput(tripleGen().Draw(t, "input"))
		if err != nil {
			t.Fatalf("valid input rejected: %v", err)
		}
		return e
	})
}

func TestPropertyOrderingInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		o := rapid.Float64Range(-100, 100).Draw(t, "o")
		m := rapid.Float64Range(-100, 100).Draw(t, "m")
		p := rapid.Float64Range(-100, 100).Draw(t, "p")

		_, err := FromTriple(m, o, p)
		ordered := o <= m && m <= p
		if ordered && err != nil {
			t.Fatalf("ordered triple (%g, %g, %g) rejected: %v", o, m, p, err)
		}
		if !ordered && !errors.IsCode(err, errors.ErrCodeInvalidOrdering) {
			t.Fatalf("unordered triple (%g, %g, %g) accepted, err=%v", o, m, p, err)
		}
	})
}

func TestPropertyDensityIsNormalized(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := estimateGen().Draw(t, "estimate")
		n := rapid.IntRange(2, 400).Draw(t, "samples")

		d, err := e.PertDensity(n)
		if err != nil {
			t.Fatalf("PertDensity(%d): %v", n, err)
		}
		var sum float64
		for _, v := range d.Values {
			if v < 0 {
				t.Fatalf("negative density %g", v)
			}
			sum += v
		}
		if got := sum * d.Step(); math.Abs(got-1) > 1e-9 {
			t.Fatalf("sum*step = %g, want 1", got)
		}
	})
}

func TestPropertyDensityRecoversMean(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := estimateGen().Draw(t, "estimate")
		n := rapid.IntRange(100, 400).Draw(t, "samples")

		d, err := e.PertDensity(n)
		if err != nil {
			t.Fatalf("PertDensity(%d): %v", n, err)
		}
		if got := d.Mean(); math.Abs(got-e.Expected()) > 0.05*e.Expected() {
			t.Fatalf("density mean %g, expected value %g", got, e.Expected())
		}
	})
}

func TestPropertyComposeCommutesAndAssociates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := estimateGen().Draw(t, "a")
		b := estimateGen().Draw(t, "b")
		c := estimateGen().Draw(t, "c")

		ab := a.ComposeWith(b)
		ba := b.ComposeWith(a)
		if ab.Expected() != ba.Expected() || ab.Sigma() != ba.Sigma() {
			t.Fatalf("not commutative: %v vs %v", ab.ToRecord(), ba.ToRecord())
		}

		left := a.ComposeWith(b).ComposeWith(c)
		right := a.ComposeWith(b.ComposeWith(c))
		if math.Abs(left.Expected()-right.Expected()) > 1e-9 || math.Abs(left.Sigma()-right.Sigma()) > 1e-9 {
			t.Fatalf("not associative: %v vs %v", left.ToRecord(), right.ToRecord())
		}
	})
}

func TestPropertyComposeIdentityAndShift(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		e := estimateGen().Draw(t, "estimate")
		k := rapid.Float64Range(-20, 20).Draw(t, "shift")

		if !e.ComposeWith(Zero()).Equal(e) {
			t.Fatalf("Zero is not an identity for %v", e.ToRecord())
		}
		shifted := e.ComposeWith(New(k, 0))
		if math.Abs(shifted.Expected()-(e.Expected()+k)) > 1e-9 || shifted.Sigma() != e.Sigma() {
			t.Fatalf("shift by %g gave %v from %v", k, shifted.ToRecord(), e.ToRecord())
		}
	})
}

func TestPropertyInputFromParametersRoundTrips(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := tripleGen().Draw(t, "input")
		e, err := FromInput(in)
		if err != nil {
			t.Fatalf("FromInput: %v", err)
		}

		got, err := InputFromParameters(e.Expected(), e.Variance(), e.Skewness(), in.Shape)
		if err != nil {
			t.Fatalf("InputFromParameters: %v", err)
		}
		tol := 1e-6 * in.Pessimistic
		if got.DistanceFrom(in) > tol {
			t.Fatalf("recovered %+v from %+v", got, in)
		}
	})
}

func TestPropertyRankDistanceIsSymmetric(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := estimateGen().Draw(t, "a")
		b := estimateGen().Draw(t, "b")

		if a.RankDistance(b) != b.RankDistance(a) {
			t.Fatalf("rank distance not symmetric")
		}
		if a.RankDistance(a) != 0 {
			t.Fatalf("rank distance to self is %g", a.RankDistance(a))
		}
	})
}
