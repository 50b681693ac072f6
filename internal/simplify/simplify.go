// Package simplify reduces traced contour polylines with Douglas-Peucker,
// built directly on github.com/paulmach/orb/simplify
// (simplify.DouglasPeucker(epsilon)) rather than a hand-rolled
// implementation.
package simplify

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"

	"github.com/pspoerri/demcontour/internal/isoline"
)

// Polylines reduces every polyline of at least 2 points using Douglas-
// Peucker on coordinates normalized to [0,1]² (orb's reducer, like turf's,
// assumes a unit-scale tolerance). tolerance ≤ 0 short-circuits and
// returns polylines unchanged. Each output polyline with fewer than 2
// points is dropped; any polyline whose reduction fails for any reason
// falls back to the original, unsimplified.
func Polylines(polylines []isoline.Polyline, tolerance float64, extent int) []isoline.Polyline {
	if tolerance <= 0 {
		return polylines
	}

	reducer := simplify.DouglasPeucker(tolerance / float64(extent))
	out := make([]isoline.Polyline, 0, len(polylines))
	for _, pl := range polylines {
		if len(pl)/2 < 2 {
			continue
		}
		reduced := simplifyOne(reducer, pl, extent)
		if len(reduced)/2 < 2 {
			continue
		}
		out = append(out, reduced)
	}
	return out
}

func simplifyOne(reducer orb.Simplifier, pl isoline.Polyline, extent int) (result isoline.Polyline) {
	defer func() {
		if recover() != nil {
			result = pl
		}
	}()

	n := len(pl) / 2
	ls := make(orb.LineString, n)
	scale := float64(extent)
	for k := 0; k < n; k++ {
		ls[k] = orb.Point{float64(pl[2*k]) / scale, float64(pl[2*k+1]) / scale}
	}

	reduced := reducer.LineString(ls)
	if len(reduced) < 2 {
		return pl
	}

	out := make(isoline.Polyline, 0, len(reduced)*2)
	for _, p := range reduced {
		out = append(out, int(roundHalfAwayFromZero(p[0]*scale)), int(roundHalfAwayFromZero(p[1]*scale)))
	}
	return out
}

func roundHalfAwayFromZero(v float64) float64 {
	if v < 0 {
		return -roundPositive(-v)
	}
	return roundPositive(v)
}

func roundPositive(v float64) float64 {
	return float64(int64(v + 0.5))
}
