// Package terrain classifies traced contour polylines against a set of
// terrain polygons (glacier/rock outlines parsed from a companion vector
// tile), using a bbox-filtered, grid-accelerated area-filter-then-classify
// pipeline built on orb.Polygon geometry and orb/planar predicates.
package terrain

import (
	"math"

	"github.com/paulmach/orb"
)

// Type is a terrain classification assigned to a contour segment.
type Type string

const (
	Normal  Type = "normal"
	Glacier Type = "glacier"
	Rock    Type = "rock"
)

// Polygon is a terrain-classification polygon in coordinates normalized to
// [0,1] relative to its source tile.
type Polygon struct {
	Geometry orb.Polygon
	Type     Type
}

// BBox is an axis-aligned bounding box in normalized [0,1]² space.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b BBox) Intersects(o BBox) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

func ringBBox(ring orb.Ring) BBox {
	b := BBox{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
	for _, p := range ring {
		if p[0] < b.MinX {
			b.MinX = p[0]
		}
		if p[0] > b.MaxX {
			b.MaxX = p[0]
		}
		if p[1] < b.MinY {
			b.MinY = p[1]
		}
		if p[1] > b.MaxY {
			b.MaxY = p[1]
		}
	}
	return b
}

// IndexedPolygon is a Polygon paired with its precomputed bounding box and
// a stable identity used to deduplicate grid-cell unions.
type IndexedPolygon struct {
	ID      int
	Polygon Polygon
	BBox    BBox
}

// Segment is a contour polyline fragment with its own terrain
// classification; segments cover the source polyline end-to-end, in
// order, with no gap; consecutive segments share their transition vertex.
type Segment struct {
	Geometry []int // flat tile-coordinate int pairs
	Type     Type
}
