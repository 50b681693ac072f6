package terrain

import (
	"math"

	"github.com/paulmach/orb"
)

// gridSize returns the spatial index's N×N cell count for zoom z, or 0 to
// disable indexing (every polygon becomes its own candidate, filtered only
// by the per-polyline bbox check in Split).
func gridSize(z int) int {
	switch {
	case z <= 12:
		return 8
	case z == 13:
		return 4
	default:
		return 0
	}
}

type cellKey struct{ x, y int }

// GridIndex accelerates candidates(polyline) lookups with a uniform grid
// over [0,1]². At z ≥ 14 it degrades to returning every polygon, in its
// original (caller-supplied) order.
type GridIndex struct {
	n     int
	cells map[cellKey][]IndexedPolygon
	all   []IndexedPolygon
}

// NewGridIndex builds a GridIndex over polygons for zoom z.
func NewGridIndex(polygons []IndexedPolygon, zoom int) *GridIndex {
	g := &GridIndex{n: gridSize(zoom), all: polygons}
	if g.n == 0 {
		return g
	}
	g.cells = make(map[cellKey][]IndexedPolygon)
	cellSize := 1.0 / float64(g.n)
	for _, p := range polygons {
		minX := int(math.Floor(p.BBox.MinX / cellSize))
		maxX := int(math.Floor(p.BBox.MaxX / cellSize))
		minY := int(math.Floor(p.BBox.MinY / cellSize))
		maxY := int(math.Floor(p.BBox.MaxY / cellSize))
		for cx := minX; cx <= maxX; cx++ {
			for cy := minY; cy <= maxY; cy++ {
				key := cellKey{cx, cy}
				g.cells[key] = append(g.cells[key], p)
			}
		}
	}
	return g
}

// Candidates returns the polygons whose grid cells are touched by any
// vertex of points, in the original polygon order (so rock-before-glacier
// precedence follows from the caller's input order, not cell iteration
// order).
func (g *GridIndex) Candidates(points []orb.Point) []IndexedPolygon {
	if g.n == 0 {
		return g.all
	}

	touched := make(map[int]bool)
	cellSize := 1.0 / float64(g.n)
	for _, p := range points {
		cx := int(math.Floor(p[0] / cellSize))
		cy := int(math.Floor(p[1] / cellSize))
		for _, ip := range g.cells[cellKey{cx, cy}] {
			touched[ip.ID] = true
		}
	}

	out := make([]IndexedPolygon, 0, len(touched))
	for _, p := range g.all {
		if touched[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
