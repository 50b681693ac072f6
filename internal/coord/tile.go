// Package coord provides the small amount of tile-coordinate arithmetic the
// contour engine needs. Every coordinate here is already tile-local or
// tile-integer — there is no CRS reprojection in this engine, so no
// projection/Swiss/Hilbert machinery for source-raster CRS math is needed.
package coord

// Tile identifies a single z/x/y tile.
type Tile struct {
	Z, X, Y int
}

// WrapX wraps a tile X coordinate onto the [0, 2^z) cylinder, matching
// standard web-mercator tile addressing where longitude wraps but latitude
// does not.
func WrapX(x, z int) int {
	n := 1 << uint(z)
	x %= n
	if x < 0 {
		x += n
	}
	return x
}

// InYRange reports whether y is a valid row at zoom z (no wrap in Y).
func InYRange(y, z int) bool {
	n := 1 << uint(z)
	return y >= 0 && y < n
}

// Ancestor computes the tile at zoom z-overzoom that contains (z,x,y), along
// with the sub-quadrant position of (z,x,y) within that ancestor expressed
// as (subZ, subX, subY) — the same triple HeightTile.split consumes to crop
// a coarser parent tile down to the requested zoom.
//
// maxZoom caps how coarse the ancestor may become: when maxZoom >= 0 and
// z-overzoom would fall below it, the ancestor zoom is raised to maxZoom
// (never above z). Any negative maxZoom disables this clamp.
func Ancestor(z, x, y, overzoom, maxZoom int) (ancestor Tile, subZ, subX, subY int) {
	ancZ := z - overzoom
	if maxZoom >= 0 && ancZ < maxZoom {
		ancZ = maxZoom
	}
	if ancZ < 0 {
		ancZ = 0
	}
	if ancZ > z {
		ancZ = z
	}
	shift := uint(z - ancZ)
	ancX := x >> shift
	ancY := y >> shift
	subZ = z - ancZ
	mask := (1 << shift) - 1
	subX = x & mask
	subY = y & mask
	return Tile{Z: ancZ, X: ancX, Y: ancY}, subZ, subX, subY
}

// Neighbors9 returns the row-major 3x3 neighborhood of t, center at index 4,
// in the order [NW, N, NE, W, center, E, SW, S, SE]. X wraps on the tile
// cylinder; Y values outside [0, 2^z) are marked invalid via ok[i] = false.
func Neighbors9(t Tile) (tiles [9]Tile, ok [9]bool) {
	offsets := [9][2]int{
		{-1, -1}, {0, -1}, {1, -1},
		{-1, 0}, {0, 0}, {1, 0},
		{-1, 1}, {0, 1}, {1, 1},
	}
	for i, off := range offsets {
		nx := WrapX(t.X+off[0], t.Z)
		ny := t.Y + off[1]
		tiles[i] = Tile{Z: t.Z, X: nx, Y: ny}
		ok[i] = InYRange(ny, t.Z)
	}
	return
}
