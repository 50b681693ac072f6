package terrain

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/simplify"
)

// Method is a polygon pre-simplification strategy.
type Method int

const (
	MethodConvexHull Method = iota
	MethodDouglasPeucker
	MethodNone
)

// Preprocessor filters and simplifies terrain polygons before they're used
// to classify contours. Method is fixed at construction time and never
// mutated afterward.
type Preprocessor struct {
	Method Method
}

func NewPreprocessor(method Method) *Preprocessor {
	return &Preprocessor{Method: method}
}

// zoomParams reports the approximate-area threshold and Douglas-Peucker
// tolerance for zoom z, per the engine's per-zoom polygon budget.
func zoomParams(z int) (area, dpTolerance float64) {
	switch {
	case z <= 11:
		return 5e-5, 0.01
	case z == 12:
		return 2e-5, 0.005
	case z == 13:
		return 1e-5, 0.002
	default:
		return 5e-6, 0.001
	}
}

// Process filters polygons by approximate shoelace area against the zoom's
// threshold, simplifies each survivor's exterior ring per Method
// (automatically downgraded from convex-hull to none at z ≥ 13), and drops
// any polygon whose exterior ring is reduced below 4 points. Interior rings
// (holes) are carried through unsimplified alongside the exterior, so a
// polygon with a hole still excludes its interior from containment tests —
// planar.PolygonContains, used against the full Polygon in split.go, treats
// the ring list as exterior-plus-holes on its own.
func (p *Preprocessor) Process(polygons []Polygon, zoom int) []IndexedPolygon {
	areaThreshold, dpTolerance := zoomParams(zoom)
	method := p.Method
	if method == MethodConvexHull && zoom >= 13 {
		method = MethodNone
	}

	out := make([]IndexedPolygon, 0, len(polygons))
	for _, poly := range polygons {
		if len(poly.Geometry) == 0 || len(poly.Geometry[0]) == 0 {
			continue
		}
		exterior := poly.Geometry[0]
		if math.Abs(planar.Area(exterior)) < areaThreshold {
			continue
		}

		switch method {
		case MethodConvexHull:
			exterior = convexHull(exterior)
		case MethodDouglasPeucker:
			exterior = douglasPeuckerRing(exterior, dpTolerance)
		}
		if len(exterior) < 4 {
			continue
		}

		rings := make(orb.Polygon, 1, len(poly.Geometry))
		rings[0] = exterior
		rings = append(rings, poly.Geometry[1:]...)

		simplified := Polygon{Geometry: rings, Type: poly.Type}
		out = append(out, IndexedPolygon{
			ID:      len(out),
			Polygon: simplified,
			BBox:    ringBBox(exterior),
		})
	}
	return out
}

// douglasPeuckerRing simplifies a closed ring with orb/simplify's
// Douglas-Peucker reducer, re-closing the ring if the reduction dropped
// its closing point.
func douglasPeuckerRing(ring orb.Ring, tolerance float64) orb.Ring {
	ls := orb.LineString(ring)
	reduced := simplify.DouglasPeucker(tolerance).LineString(ls)
	if len(reduced) == 0 {
		return orb.Ring{}
	}
	if !reduced[0].Equal(reduced[len(reduced)-1]) {
		reduced = append(reduced, reduced[0])
	}
	return orb.Ring(reduced)
}

// convexHull computes the convex hull of ring via Andrew's monotone chain.
// No library in the example corpus provides a convex-hull primitive, so
// this is deliberately hand-rolled rather than borrowed.
func convexHull(ring orb.Ring) orb.Ring {
	points := make([]orb.Point, len(ring))
	copy(points, ring)
	sort.Slice(points, func(i, j int) bool {
		if points[i][0] != points[j][0] {
			return points[i][0] < points[j][0]
		}
		return points[i][1] < points[j][1]
	})
	points = dedupeSorted(points)
	if len(points) < 3 {
		return orb.Ring(points)
	}

	cross := func(o, a, b orb.Point) float64 {
		return (a[0]-o[0])*(b[1]-o[1]) - (a[1]-o[1])*(b[0]-o[0])
	}

	lower := make([]orb.Point, 0, len(points))
	for _, p := range points {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]orb.Point, 0, len(points))
	for i := len(points) - 1; i >= 0; i-- {
		p := points[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	hull := append(lower[:len(lower)-1], upper...)
	if len(hull) > 0 && !hull[0].Equal(hull[len(hull)-1]) {
		hull = append(hull, hull[0])
	}
	return orb.Ring(hull)
}

func dedupeSorted(points []orb.Point) []orb.Point {
	out := points[:0]
	for i, p := range points {
		if i == 0 || !p.Equal(points[i-1]) {
			out = append(out, p)
		}
	}
	return out
}
