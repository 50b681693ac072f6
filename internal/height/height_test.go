package height

import (
	"math"
	"testing"

	"github.com/pspoerri/demcontour/internal/demfetch"
)

func newArrayTile(w, h int, fill func(i, j int) float32) Tile {
	pix := make([]float32, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			pix[j*w+i] = fill(i, j)
		}
	}
	return FromRawDem(&demfetch.DemTile{Width: w, Height: h, Pix: pix})
}

func TestFromRawDemOutOfBoundsIsNaN(t *testing.T) {
	tile := newArrayTile(2, 2, func(i, j int) float32 { return float32(i + j) })
	if !math.IsNaN(float64(tile.Get(-1, 0))) {
		t.Error("expected NaN west of bounds")
	}
	if !math.IsNaN(float64(tile.Get(0, 2))) {
		t.Error("expected NaN south of bounds")
	}
	if got := tile.Get(1, 1); got != 2 {
		t.Errorf("Get(1,1) = %v, want 2", got)
	}
}

func TestSplitZeroIsIdentity(t *testing.T) {
	base := newArrayTile(4, 4, func(i, j int) float32 { return float32(i*10 + j) })
	split := Split(base, 0, 0, 0)
	if split != base {
		t.Fatal("Split with subZ=0 should return base unchanged")
	}
}

func TestSplitSamplesCorrectQuadrant(t *testing.T) {
	base := newArrayTile(4, 4, func(i, j int) float32 { return float32(i*10 + j) })

	// subZ=1 divides the 4x4 base into four 2x2 quadrants, each
	// re-exposed at the base's own 4x4 resolution.
	topLeft := Split(base, 1, 0, 0)
	bottomRight := Split(base, 1, 1, 1)

	if topLeft.Width() != 4 || topLeft.Height() != 4 {
		t.Fatalf("split dims = %dx%d, want 4x4", topLeft.Width(), topLeft.Height())
	}

	// Sampling near the edges of the split tile should stay within the
	// quadrant it represents.
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			v := topLeft.Get(i, j)
			if v < 0 || v >= 20 {
				t.Errorf("topLeft.Get(%d,%d) = %v, expected value from the 0..1 sub-range", i, j, v)
			}
		}
	}
	for j := 0; j < 4; j++ {
		for i := 0; i < 4; i++ {
			v := bottomRight.Get(i, j)
			if v < 20 {
				t.Errorf("bottomRight.Get(%d,%d) = %v, expected value from the 2..3 sub-range", i, j, v)
			}
		}
	}
}

func TestCombineNeighborsNilCenterReturnsNil(t *testing.T) {
	var neighbors [9]Tile
	neighbors[4] = nil
	if got := CombineNeighbors(neighbors); got != nil {
		t.Fatal("expected nil when center is missing")
	}
}

func TestCombineNeighborsMissingCardinalIsNaN(t *testing.T) {
	center := newArrayTile(2, 2, func(i, j int) float32 { return 1 })
	var neighbors [9]Tile
	neighbors[4] = center
	combined := CombineNeighbors(neighbors)
	if combined == nil {
		t.Fatal("expected non-nil combined tile")
	}
	if !math.IsNaN(float64(combined.Get(-1, 0))) {
		t.Error("expected NaN where west neighbor is missing")
	}
}

func TestCombineNeighborsSamplesWestNeighbor(t *testing.T) {
	center := newArrayTile(2, 2, func(i, j int) float32 { return 0 })
	west := newArrayTile(2, 2, func(i, j int) float32 { return float32(100 + i) })
	var neighbors [9]Tile
	neighbors[4] = center
	neighbors[3] = west // index 3 = (dy=0,dx=-1) in row-major order
	combined := CombineNeighbors(neighbors)

	got := combined.Get(-1, 0)
	want := west.Get(1, 0) // rightmost column of the west neighbor
	if got != want {
		t.Errorf("Get(-1,0) = %v, want %v (west neighbor's east edge)", got, want)
	}
}

func TestMaterializeDefinesHalo(t *testing.T) {
	base := newArrayTile(2, 2, func(i, j int) float32 { return float32(i + j) })
	materialized := Materialize(base, 1)

	if materialized.Width() != 2 || materialized.Height() != 2 {
		t.Fatalf("Width/Height should report original dims, got %dx%d", materialized.Width(), materialized.Height())
	}
	if got := materialized.Get(0, 0); got != 0 {
		t.Errorf("Get(0,0) = %v, want 0", got)
	}
	if !math.IsNaN(float64(materialized.Get(-1, -1))) {
		t.Error("expected NaN outside base bounds within the halo (no neighbor supplied)")
	}
	if !math.IsNaN(float64(materialized.Get(-2, 0))) {
		t.Error("expected NaN beyond the materialized border")
	}
}

func TestSubsamplePixelCentersReplicates(t *testing.T) {
	base := newArrayTile(2, 2, func(i, j int) float32 { return float32(i*10 + j) })
	sub := SubsamplePixelCenters(base, 2)

	if sub.Width() != 4 || sub.Height() != 4 {
		t.Fatalf("dims = %dx%d, want 4x4", sub.Width(), sub.Height())
	}
	for _, p := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		want := base.Get(0, 0)
		if got := sub.Get(p[0], p[1]); got != want {
			t.Errorf("Get(%d,%d) = %v, want %v", p[0], p[1], got, want)
		}
	}
	if got, want := sub.Get(2, 0), base.Get(1, 0); got != want {
		t.Errorf("Get(2,0) = %v, want %v", got, want)
	}
}

func TestAveragePixelCentersToGrid(t *testing.T) {
	base := newArrayTile(2, 2, func(i, j int) float32 { return 4 })
	grid := AveragePixelCentersToGrid(base)
	if grid.Width() != 3 || grid.Height() != 3 {
		t.Fatalf("dims = %dx%d, want 3x3", grid.Width(), grid.Height())
	}
	// Interior corner (1,1) averages all four base cells.
	if got := grid.Get(1, 1); got != 4 {
		t.Errorf("Get(1,1) = %v, want 4", got)
	}
	// Corner (0,0) only has one real neighbor; the rest are NaN and must
	// propagate.
	if !math.IsNaN(float64(grid.Get(0, 0))) {
		t.Error("expected NaN at an edge corner with missing neighbors")
	}
}

func TestScaleElevation(t *testing.T) {
	base := newArrayTile(1, 1, func(i, j int) float32 { return 10 })
	scaled := ScaleElevation(base, 0.5)
	if got := scaled.Get(0, 0); got != 5 {
		t.Errorf("Get(0,0) = %v, want 5", got)
	}
}
