package terrain

import (
	"testing"

	"github.com/paulmach/orb"
)

func idxPolygon(id int, minX, minY, maxX, maxY float64, typ Type) IndexedPolygon {
	ring := square(minX, minY, maxX, maxY)
	return IndexedPolygon{ID: id, Polygon: Polygon{Geometry: orb.Polygon{ring}, Type: typ}, BBox: ringBBox(ring)}
}

func TestGridIndexCandidatesOnlyTouchedCells(t *testing.T) {
	near := idxPolygon(0, 0.0, 0.0, 0.1, 0.1, Rock)
	far := idxPolygon(1, 0.8, 0.8, 0.9, 0.9, Glacier)
	idx := NewGridIndex([]IndexedPolygon{near, far}, 10) // zoom 10 -> 8x8 grid

	points := []orb.Point{{0.05, 0.05}, {0.06, 0.06}}
	candidates := idx.Candidates(points)
	if len(candidates) != 1 || candidates[0].ID != 0 {
		t.Fatalf("expected only the near polygon, got %+v", candidates)
	}
}

func TestGridIndexPreservesInputOrder(t *testing.T) {
	rock := idxPolygon(0, 0.0, 0.0, 0.5, 0.5, Rock)
	glacier := idxPolygon(1, 0.0, 0.0, 0.5, 0.5, Glacier)
	idx := NewGridIndex([]IndexedPolygon{rock, glacier}, 10)

	candidates := idx.Candidates([]orb.Point{{0.1, 0.1}})
	if len(candidates) != 2 {
		t.Fatalf("expected both polygons as candidates, got %d", len(candidates))
	}
	if candidates[0].Polygon.Type != Rock || candidates[1].Polygon.Type != Glacier {
		t.Fatalf("expected rock-before-glacier order preserved, got %v then %v", candidates[0].Polygon.Type, candidates[1].Polygon.Type)
	}
}

func TestGridIndexDisabledAtZ14(t *testing.T) {
	near := idxPolygon(0, 0.0, 0.0, 0.1, 0.1, Rock)
	far := idxPolygon(1, 0.8, 0.8, 0.9, 0.9, Glacier)
	idx := NewGridIndex([]IndexedPolygon{near, far}, 14)

	candidates := idx.Candidates([]orb.Point{{0.05, 0.05}})
	if len(candidates) != 2 {
		t.Fatalf("expected grid disabled at z14 to return every polygon, got %d", len(candidates))
	}
}
