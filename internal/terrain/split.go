package terrain

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/pspoerri/demcontour/internal/isoline"
)

// minRun is the shortest a reclassified run may be (in vertices) before
// it's folded back into its neighboring run, suppressing flip-flop
// slivers at a polygon boundary.
const minRun = 10

// sampleBudget bounds how many vertices are checked to classify a whole
// polyline as all-inside, all-outside, or crossing before committing to a
// full vertex-by-vertex walk.
const sampleBudget = 20

// ClassifiedSet is the classified counterpart of isoline.Set: each
// polyline has been replaced by one or more terrain-typed Segments. It
// satisfies isoline.IsolineSet so the vtile encoder can type-switch on it.
type ClassifiedSet map[float64][]Segment

func (ClassifiedSet) isIsolineSet() {}

// Split replaces every polyline in set with one or more Segments,
// classified against idx's polygons. extent converts the polyline's
// integer tile coordinates to idx's normalized [0,1]² space and back.
func Split(set isoline.Set, idx *GridIndex, extent int) ClassifiedSet {
	out := make(ClassifiedSet, len(set))
	for threshold, polylines := range set {
		segs := make([]Segment, 0, len(polylines))
		for _, pl := range polylines {
			segs = append(segs, splitOne(pl, idx, extent)...)
		}
		out[threshold] = segs
	}
	return out
}

type run struct {
	start, end int // inclusive vertex indices into the polyline
	terrain    Type
}

func (r run) length() int { return r.end - r.start + 1 }

func splitOne(pl isoline.Polyline, idx *GridIndex, extent int) []Segment {
	n := len(pl) / 2
	if n < 2 {
		return nil
	}

	normalized := make([]orb.Point, n)
	scale := float64(extent)
	for k := 0; k < n; k++ {
		normalized[k] = orb.Point{float64(pl[2*k]) / scale, float64(pl[2*k+1]) / scale}
	}

	candidates := idx.Candidates(normalized)
	if len(candidates) == 0 {
		return []Segment{{Geometry: append([]int(nil), pl...), Type: Normal}}
	}

	polylineBBox := pointsBBox(normalized)
	runs := []run{{start: 0, end: n - 1, terrain: Normal}}

	for _, candidate := range candidates {
		if !polylineBBox.Intersects(candidate.BBox) {
			continue
		}
		runs = applyPolygon(runs, normalized, candidate)
	}

	segments := make([]Segment, 0, len(runs))
	for _, r := range runs {
		geom := make([]int, 0, (r.end-r.start+1)*2)
		geom = append(geom, pl[2*r.start:2*r.end+2]...)
		segments = append(segments, Segment{Geometry: geom, Type: r.terrain})
	}
	return segments
}

func pointsBBox(points []orb.Point) BBox {
	ring := make(orb.Ring, len(points))
	copy(ring, points)
	return ringBBox(ring)
}

// applyPolygon splits every currently-Normal run in runs against polygon,
// leaving already-classified runs untouched. Geometric predicate failures
// are swallowed: the candidate is skipped and runs is returned unchanged.
func applyPolygon(runs []run, points []orb.Point, polygon IndexedPolygon) (result []run) {
	result = runs
	defer func() {
		if recover() != nil {
			result = runs
		}
	}()

	var next []run
	for _, r := range runs {
		if r.terrain != Normal {
			next = append(next, r)
			continue
		}
		next = append(next, splitRun(r, points, polygon)...)
	}
	return coalesce(next)
}

func splitRun(r run, points []orb.Point, polygon IndexedPolygon) []run {
	switch classifyGlobal(points[r.start:r.end+1], polygon.Polygon.Geometry) {
	case outsideAll:
		return []run{r}
	case insideAll:
		return []run{{start: r.start, end: r.end, terrain: polygon.Polygon.Type}}
	default:
		return walkRun(r, points, polygon)
	}
}

type classification int

const (
	insideAll classification = iota
	outsideAll
	crossing
)

func classifyGlobal(points []orb.Point, polygon orb.Polygon) classification {
	n := len(points)
	count := sampleBudget
	if n < count {
		count = n
	}
	inside, outside := 0, 0
	seen := make(map[int]bool, count+1)
	check := func(idx int) {
		if seen[idx] {
			return
		}
		seen[idx] = true
		if planar.PolygonContains(polygon, points[idx]) {
			inside++
		} else {
			outside++
		}
	}
	for k := 0; k < count; k++ {
		idx := 0
		if count > 1 {
			idx = k * (n - 1) / (count - 1)
		}
		check(idx)
	}
	check(n - 1)

	switch {
	case outside == 0:
		return insideAll
	case inside == 0:
		return outsideAll
	default:
		return crossing
	}
}

// walkRun performs the full vertex-by-vertex classification of a run
// against polygon, splitting it into typed sub-runs and folding any
// sub-run shorter than minRun back into its neighbor.
func walkRun(r run, points []orb.Point, polygon IndexedPolygon) []run {
	raw := make([]run, 0, 4)
	cur := run{start: r.start, terrain: terrainFor(points[r.start], polygon)}
	for i := r.start + 1; i <= r.end; i++ {
		t := terrainFor(points[i], polygon)
		if t != cur.terrain {
			cur.end = i
			raw = append(raw, cur)
			cur = run{start: i, terrain: t}
		}
	}
	cur.end = r.end
	raw = append(raw, cur)

	return coalesce(foldShortRuns(raw))
}

func terrainFor(p orb.Point, polygon IndexedPolygon) Type {
	if planar.PolygonContains(polygon.Polygon.Geometry, p) {
		return polygon.Polygon.Type
	}
	return Normal
}

func foldShortRuns(raw []run) []run {
	for {
		idx := -1
		for i, r := range raw {
			if len(raw) > 1 && r.length() < minRun {
				idx = i
				break
			}
		}
		if idx < 0 {
			return raw
		}
		if idx == 0 {
			raw[1].start = raw[0].start
			raw = raw[1:]
		} else {
			raw[idx-1].end = raw[idx].end
			raw = append(raw[:idx], raw[idx+1:]...)
		}
	}
}

// coalesce merges adjacent runs that ended up with the same terrain type.
func coalesce(runs []run) []run {
	if len(runs) == 0 {
		return runs
	}
	out := make([]run, 0, len(runs))
	out = append(out, runs[0])
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if last.terrain == r.terrain {
			last.end = r.end
			continue
		}
		out = append(out, r)
	}
	return out
}
