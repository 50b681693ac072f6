// Package isoline traces marching-squares contour lines over a HeightTile,
// adapted from the d3-contour family of algorithms: classify each grid
// cell's four corners against a threshold, interpolate the edge crossings,
// and stitch the resulting directed segments into closed rings or open
// chains with the interior consistently kept on the traveler's left, using
// a dense double loop over the sample grid rather than a sparse/quadtree
// scan.
package isoline

import "math"

// Polyline is a flat sequence of integer tile coordinates [x0,y0,x1,y1,…].
type Polyline []int

// Set maps a threshold elevation (an integer multiple of the minor
// interval) to the polylines traced at that level. Thresholds with no
// crossings are omitted.
type Set map[float64][]Polyline

// IsolineSet unifies the unclassified Set Generate produces with the
// classified segment map terrain.Split produces, so callers downstream of
// splitting (principally the vtile encoder) can accept either without
// terrain importing isoline's consumers or isoline importing terrain.
type IsolineSet interface {
	isIsolineSet()
}

func (Set) isIsolineSet() {}

type point struct{ X, Y float64 }

type segment struct{ from, to point }

// Generate traces contours of tile at every multiple of delta present in
// the data, within the cell grid spanning [-border, width+border-2] in
// both axes (the range materialize(border) guarantees is sampleable), and
// scales the resulting sample-index coordinates into an extent×extent
// destination space. delta must be > 0; border should be chosen by the
// caller so that border × (extent/width) covers the desired tile-border
// buffer.
func Generate(tile Tile, delta float64, border, extent int) Set {
	width, height := tile.Width(), tile.Height()
	segmentsByThreshold := make(map[float64][]segment)

	for j := -border; j <= height+border-2; j++ {
		for i := -border; i <= width+border-2; i++ {
			vTL := tile.Get(i, j)
			vTR := tile.Get(i+1, j)
			vBL := tile.Get(i, j+1)
			vBR := tile.Get(i+1, j+1)
			if math.IsNaN(float64(vTL)) || math.IsNaN(float64(vTR)) || math.IsNaN(float64(vBL)) || math.IsNaN(float64(vBR)) {
				continue
			}
			processCell(i, j, float64(vTL), float64(vTR), float64(vBR), float64(vBL), delta, segmentsByThreshold)
		}
	}

	result := make(Set, len(segmentsByThreshold))
	scaleX := float64(extent) / float64(width)
	scaleY := float64(extent) / float64(height)
	for threshold, segs := range segmentsByThreshold {
		paths := stitch(segs)
		polylines := make([]Polyline, 0, len(paths))
		for _, path := range paths {
			if len(path) < 2 {
				continue
			}
			pl := make(Polyline, 0, len(path)*2)
			for _, p := range path {
				pl = append(pl, int(math.Round(p.X*scaleX)), int(math.Round(p.Y*scaleY)))
			}
			polylines = append(polylines, pl)
		}
		if len(polylines) > 0 {
			result[threshold] = polylines
		}
	}
	return result
}

// Tile is the subset of height.Tile that isoline generation needs;
// declared independently to avoid an import of internal/height, which the
// orchestrator already depends on.
type Tile interface {
	Get(i, j int) float32
	Width() int
	Height() int
}

// processCell classifies one grid cell against every threshold multiple of
// delta that falls within its corner value range, and appends the
// resulting directed edge segment(s) to segmentsByThreshold.
func processCell(i, j int, vTL, vTR, vBR, vBL, delta float64, segmentsByThreshold map[float64][]segment) {
	lo := math.Min(math.Min(vTL, vTR), math.Min(vBL, vBR))
	hi := math.Max(math.Max(vTL, vTR), math.Max(vBL, vBR))
	if hi <= lo {
		return
	}

	n0 := int(math.Ceil(lo / delta))
	for n := n0; float64(n)*delta <= hi; n++ {
		threshold := float64(n) * delta
		emitCell(i, j, vTL, vTR, vBR, vBL, threshold, segmentsByThreshold)
	}
}

func emitCell(i, j int, vTL, vTR, vBR, vBL, threshold float64, segmentsByThreshold map[float64][]segment) {
	bTL := vTL > threshold
	bTR := vTR > threshold
	bBR := vBR > threshold
	bBL := vBL > threshold

	topCross := bTL != bTR
	rightCross := bTR != bBR
	bottomCross := bBL != bBR
	leftCross := bTL != bBL

	count := 0
	for _, c := range []bool{topCross, rightCross, bottomCross, leftCross} {
		if c {
			count++
		}
	}
	if count == 0 {
		return
	}

	top := point{float64(i) + interpT(threshold, vTL, vTR), float64(j)}
	right := point{float64(i + 1), float64(j) + interpT(threshold, vTR, vBR)}
	bottom := point{float64(i) + interpT(threshold, vBL, vBR), float64(j + 1)}
	left := point{float64(i), float64(j) + interpT(threshold, vTL, vBL)}

	emit := func(a, b, interior point) {
		from, to := orient(a, b, interior)
		segmentsByThreshold[threshold] = append(segmentsByThreshold[threshold], segment{from: from, to: to})
	}

	if count == 2 {
		var crossings []point
		if topCross {
			crossings = append(crossings, top)
		}
		if rightCross {
			crossings = append(crossings, right)
		}
		if bottomCross {
			crossings = append(crossings, bottom)
		}
		if leftCross {
			crossings = append(crossings, left)
		}
		interior := pickInteriorCorner(i, j, bTL, bTR, bBR, bBL)
		emit(crossings[0], crossings[1], interior)
		return
	}

	// count == 4: a saddle cell, one diagonal pair of corners true. The
	// bilinearly interpolated center value decides whether the two true
	// corners are connected through the cell's middle (one arc isolates
	// each false corner) or isolated from each other (one arc isolates
	// each true corner).
	center := (vTL + vTR + vBR + vBL) / 4
	tl := point{float64(i), float64(j)}
	tr := point{float64(i + 1), float64(j)}
	br := point{float64(i + 1), float64(j + 1)}
	bl := point{float64(i), float64(j + 1)}

	if bTL && bBR {
		if center > threshold {
			emit(bottom, left, tl)
			emit(top, right, br)
		} else {
			emit(top, left, tl)
			emit(bottom, right, br)
		}
	} else {
		if center > threshold {
			emit(top, left, tr)
			emit(bottom, right, tr)
		} else {
			emit(top, right, tr)
			emit(bottom, left, bl)
		}
	}
}

func pickInteriorCorner(i, j int, bTL, bTR, bBR, bBL bool) point {
	switch {
	case bTL:
		return point{float64(i), float64(j)}
	case bTR:
		return point{float64(i + 1), float64(j)}
	case bBR:
		return point{float64(i + 1), float64(j + 1)}
	case bBL:
		return point{float64(i), float64(j + 1)}
	default:
		return point{}
	}
}

// interpT locates, as a fraction in [0,1] from v0 toward v1, where the
// threshold crosses the edge. Values exactly equal to threshold classify
// as below it, so ties never produce a degenerate fraction outside [0,1].
func interpT(threshold, v0, v1 float64) float64 {
	if v1 == v0 {
		return 0.5
	}
	frac := (threshold - v0) / (v1 - v0)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// orient returns (a, b) or (b, a), whichever direction keeps interior to
// the left of travel.
func orient(a, b, interior point) (point, point) {
	cross := (b.X-a.X)*(interior.Y-a.Y) - (b.Y-a.Y)*(interior.X-a.X)
	if cross >= 0 {
		return a, b
	}
	return b, a
}

// stitch joins directed segments tail-to-head into polylines: open chains
// are walked from their true head (a "from" point that is no other
// segment's "to") first, then any segments left over form closed rings
// (first point == last point), reachable by starting a walk anywhere on
// the cycle.
func stitch(segments []segment) [][]point {
	n := len(segments)
	starts := make(map[point]int, n)
	toSet := make(map[point]bool, n)
	for idx, s := range segments {
		starts[s.from] = idx
		toSet[s.to] = true
	}

	visited := make([]bool, n)
	walk := func(start int) []point {
		path := []point{segments[start].from}
		cur := start
		for {
			path = append(path, segments[cur].to)
			visited[cur] = true
			next, ok := starts[segments[cur].to]
			if !ok || visited[next] {
				break
			}
			cur = next
		}
		return path
	}

	var result [][]point
	for i, s := range segments {
		if visited[i] || toSet[s.from] {
			continue
		}
		result = append(result, walk(i))
	}
	for i := range segments {
		if !visited[i] {
			result = append(result, walk(i))
		}
	}
	return result
}
