package model

import (
	"cmp"
	"math"
	"slices"
)

// SimilarOptions selects which tasks count as similar to a reference task.
// A candidate qualifies when its rank distance is at most RankThreshold or,
// if DistanceThreshold is positive, when the absolute gap between expected
// values is at most DistanceThreshold.
type SimilarOptions struct {
	RankThreshold     float64
	DistanceThreshold float64
}

// DefaultSimilarOptions returns a rank threshold of 1 and no distance
// threshold.
func DefaultSimilarOptions() SimilarOptions {
	return SimilarOptions{RankThreshold: 1}
}

// Similar is one entry of a similar-task ranking.
type Similar struct {
	Task *TaskModel
	// Distance is |Δexpected| of the point estimates.
	Distance float64
	// RankDistance is Distance scaled by the combined uncertainty.
	RankDistance float64
	// TripleDistance is the Euclidean distance between the source triples,
	// NaN when either side has none.
	TripleDistance float64
}

// SimilarTo ranks the tasks whose point estimates are close to the named
// task's, nearest first. Ties keep tree order.
func (m *EstiModel) SimilarTo(name string, opts SimilarOptions) ([]Similar, error) {
	ref, err := m.Element(name)
	if err != nil {
		return nil, err
	}
	refEstimate := ref.PointEstimate()
	refSource, refHasSource := refEstimate.Source()

	var out []Similar
	for _, task := range m.Elements() {
		if task == ref {
			continue
		}
		e := task.PointEstimate()
		s := Similar{
			Task:           task,
			Distance:       math.Abs(e.Expected() - refEstimate.Expected()),
			RankDistance:   refEstimate.RankDistance(e),
			TripleDistance: math.NaN(),
		}
		if src, ok := e.Source(); ok && refHasSource {
			s.TripleDistance = refSource.DistanceFrom(src)
		}

		byRank := s.RankDistance <= opts.RankThreshold
		byDistance := opts.DistanceThreshold > 0 && s.Distance <= opts.DistanceThreshold
		if byRank || byDistance {
			out = append(out, s)
		}
	}

	slices.SortStableFunc(out, func(a, b Similar) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out, nil
}
