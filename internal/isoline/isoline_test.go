package isoline

import (
	"math"
	"testing"
)

// gridTile is a minimal Tile backed by an explicit 2D array, for tests that
// want exact control over sample values.
type gridTile struct {
	w, h int
	v    func(i, j int) float32
}

func (g *gridTile) Width() int  { return g.w }
func (g *gridTile) Height() int { return g.h }
func (g *gridTile) Get(i, j int) float32 {
	if i < 0 || j < 0 || i >= g.w || j >= g.h {
		return float32(math.NaN())
	}
	return g.v(i, j)
}

// shoelace computes the signed polygon area of a closed ring's flat
// coordinate sequence (last point assumed equal to first).
func shoelace(pl Polyline) float64 {
	sum := 0.0
	n := len(pl) / 2
	for k := 0; k < n-1; k++ {
		x0, y0 := float64(pl[2*k]), float64(pl[2*k+1])
		x1, y1 := float64(pl[2*k+2]), float64(pl[2*k+3])
		sum += x0*y1 - x1*y0
	}
	return sum
}

func TestGenerateSingleBumpProducesClosedRing(t *testing.T) {
	// A 3x3 grid with one elevated sample at the center: every other
	// sample is 0. Thresholding at 5 should trace a small diamond ring
	// around the center point, built from the four corner cells.
	tile := &gridTile{w: 3, h: 3, v: func(i, j int) float32 {
		if i == 1 && j == 1 {
			return 10
		}
		return 0
	}}

	set := Generate(tile, 5, 1, 1200)
	polys, ok := set[5]
	if !ok {
		t.Fatalf("expected threshold 5 in result, got keys %v", keys(set))
	}
	if len(polys) != 1 {
		t.Fatalf("expected exactly one ring, got %d", len(polys))
	}
	ring := polys[0]
	if len(ring) < 4 {
		t.Fatalf("ring too short: %v", ring)
	}
	if ring[0] != ring[len(ring)-2] || ring[1] != ring[len(ring)-1] {
		t.Fatalf("ring is not closed: first=(%d,%d) last=(%d,%d)", ring[0], ring[1], ring[len(ring)-2], ring[len(ring)-1])
	}
}

func TestGenerateInteriorOnLeftOfTravel(t *testing.T) {
	// Same bump as above, in raw sample-index space (extent == width so
	// scaling is the identity): a ring with interior consistently on the
	// traveler's left has a positive shoelace sum under the same
	// orientation convention used to build it.
	tile := &gridTile{w: 3, h: 3, v: func(i, j int) float32 {
		if i == 1 && j == 1 {
			return 10
		}
		return 0
	}}

	set := Generate(tile, 5, 1, 3)
	polys := set[5]
	if len(polys) != 1 {
		t.Fatalf("expected one ring, got %d", len(polys))
	}
	if area := shoelace(polys[0]); area <= 0 {
		t.Fatalf("shoelace area = %v, want > 0 (interior should be enclosed counterclockwise)", area)
	}
}

func TestGenerateEmptyTileProducesNoThresholds(t *testing.T) {
	tile := &gridTile{w: 3, h: 3, v: func(i, j int) float32 { return 0 }}
	set := Generate(tile, 5, 1, 4096)
	if len(set) != 0 {
		t.Fatalf("flat tile should produce no crossings, got %d thresholds", len(set))
	}
}

func TestGenerateOmitsEmptyLevels(t *testing.T) {
	tile := &gridTile{w: 2, h: 2, v: func(i, j int) float32 { return float32(10 + i + j) }}
	set := Generate(tile, 100, 0, 256)
	if len(set) != 0 {
		t.Fatalf("a value range of [10,12] should produce no multiple-of-100 crossings, got %v", keys(set))
	}
}

func TestGenerateScalesToExtent(t *testing.T) {
	tile := &gridTile{w: 4, h: 4, v: func(i, j int) float32 {
		if i >= 2 {
			return 10
		}
		return 0
	}}
	set := Generate(tile, 5, 0, 8) // scale factor 2 (extent 8 / width 4)
	polys, ok := set[5]
	if !ok || len(polys) == 0 {
		t.Fatalf("expected a vertical divide at threshold 5")
	}
	// The value jumps from 0 (column 1) to 10 (column 2); threshold 5 sits
	// exactly midway, so the crossing falls at sample-index x=1.5, scaled
	// by 2 to destination x=3.
	for _, pl := range polys {
		for k := 0; k < len(pl); k += 2 {
			if pl[k] != 3 {
				t.Errorf("x coordinate = %d, want 3 (scaled divide position)", pl[k])
			}
		}
	}
}

func keys(s Set) []float64 {
	out := make([]float64, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}
