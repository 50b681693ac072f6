// Package height implements the lazy elevation sampler (HeightTile) the
// contour engine builds DEM tiles up into before isoline tracing. Variants
// compose by wrapping one another — array-backed, neighbor-stitched, split
// (overzoom crop), materialized, and three lazy transforms — layering
// transforms through wrapping the way a decode/downsample/resample
// pipeline chains passes, rather than mutating a single concrete type.
package height

import (
	"math"

	"github.com/pspoerri/demcontour/internal/demfetch"
)

// Tile is a virtual elevation sampler over integer coordinates. Get returns
// NaN for unknown or out-of-range samples; implementations must propagate
// NaN rather than panic.
type Tile interface {
	Get(i, j int) float32
	Width() int
	Height() int
}

// FromRawDem wraps a decoded DEM tile as an array-backed Tile.
func FromRawDem(dem *demfetch.DemTile) Tile {
	return &arrayTile{width: dem.Width, height: dem.Height, pix: dem.Pix}
}

type arrayTile struct {
	width, height int
	pix           []float32
}

func (t *arrayTile) Width() int  { return t.width }
func (t *arrayTile) Height() int { return t.height }

func (t *arrayTile) Get(i, j int) float32 {
	if i < 0 || j < 0 || i >= t.width || j >= t.height {
		return float32(math.NaN())
	}
	return t.pix[j*t.width+i]
}

// Split returns a logical crop of base spanning the (1/2^subZ)-sized
// sub-region at (subX, subY) — the window an overzoomed tile occupies
// within a coarser ancestor it was fetched in place of — re-exposed at
// base's own resolution via nearest-neighbor resampling. subX and subY
// range over [0, 2^subZ). subZ == 0 returns base unchanged.
func Split(base Tile, subZ, subX, subY int) Tile {
	if subZ <= 0 {
		return base
	}
	return &splitTile{base: base, subZ: subZ, subX: subX, subY: subY}
}

type splitTile struct {
	base             Tile
	subZ, subX, subY int
}

func (t *splitTile) Width() int  { return t.base.Width() }
func (t *splitTile) Height() int { return t.base.Height() }

func (t *splitTile) Get(i, j int) float32 {
	n := float64(int(1) << uint(t.subZ))
	w := float64(t.base.Width())
	h := float64(t.base.Height())
	regionW := w / n
	regionH := h / n
	srcX := float64(t.subX)*regionW + (float64(i)+0.5)*regionW/w
	srcY := float64(t.subY)*regionH + (float64(j)+0.5)*regionH/h
	return t.base.Get(int(math.Floor(srcX)), int(math.Floor(srcY)))
}

// CombineNeighbors stitches up to 9 neighbor tiles — row-major order with
// the center at index 4, matching internal/coord.Neighbors9 — into one
// Tile whose Get extends past its own bounds into whichever neighbor
// covers that direction. It returns nil iff the center is missing. A
// missing cardinal or corner neighbor reads as NaN rather than panicking.
func CombineNeighbors(neighbors [9]Tile) Tile {
	center := neighbors[4]
	if center == nil {
		return nil
	}
	return &neighborTile{neighbors: neighbors, width: center.Width(), height: center.Height()}
}

type neighborTile struct {
	neighbors     [9]Tile
	width, height int
}

func (t *neighborTile) Width() int  { return t.width }
func (t *neighborTile) Height() int { return t.height }

func (t *neighborTile) Get(i, j int) float32 {
	if i >= 0 && i < t.width && j >= 0 && j < t.height {
		return t.neighbors[4].Get(i, j)
	}

	dx, dy := 0, 0
	switch {
	case i < 0:
		dx = -1
	case i >= t.width:
		dx = 1
	}
	switch {
	case j < 0:
		dy = -1
	case j >= t.height:
		dy = 1
	}

	neighbor := t.neighbors[(dy+1)*3+(dx+1)]
	if neighbor == nil {
		return float32(math.NaN())
	}

	li, lj := i, j
	switch dx {
	case -1:
		li = neighbor.Width() + i
	case 1:
		li = i - t.width
	}
	switch dy {
	case -1:
		lj = neighbor.Height() + j
	case 1:
		lj = j - t.height
	}
	return neighbor.Get(li, lj)
}

// Materialize realizes t into a dense array of size (width+2·border) ×
// (height+2·border), so that Get(i, j) is defined for -border ≤ i <
// width+border and likewise for j. Width and Height report t's original
// dimensions, not the padded extent.
func Materialize(t Tile, border int) Tile {
	w, h := t.Width(), t.Height()
	fullW := w + 2*border
	fullH := h + 2*border
	pix := make([]float32, fullW*fullH)
	for j := -border; j < h+border; j++ {
		row := (j + border) * fullW
		for i := -border; i < w+border; i++ {
			pix[row+i+border] = t.Get(i, j)
		}
	}
	return &materializedTile{width: w, height: h, border: border, pix: pix}
}

type materializedTile struct {
	width, height, border int
	pix                   []float32
}

func (t *materializedTile) Width() int  { return t.width }
func (t *materializedTile) Height() int { return t.height }

func (t *materializedTile) Get(i, j int) float32 {
	fullW := t.width + 2*t.border
	ii := i + t.border
	jj := j + t.border
	if ii < 0 || jj < 0 || ii >= fullW || jj >= t.height+2*t.border {
		return float32(math.NaN())
	}
	return t.pix[jj*fullW+ii]
}

// SubsamplePixelCenters upsamples t by nearest-midpoint so each original
// cell becomes factor² cells. Lazy: no allocation happens until a
// downstream Materialize.
func SubsamplePixelCenters(base Tile, factor int) Tile {
	return &subsampleTile{base: base, factor: factor}
}

type subsampleTile struct {
	base   Tile
	factor int
}

func (t *subsampleTile) Width() int  { return t.base.Width() * t.factor }
func (t *subsampleTile) Height() int { return t.base.Height() * t.factor }

func (t *subsampleTile) Get(i, j int) float32 {
	return t.base.Get(floorDiv(i, t.factor), floorDiv(j, t.factor))
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// AveragePixelCentersToGrid shifts measurements from pixel centers to
// pixel corners by averaging the four surrounding centers. Lazy; NaN in
// any of the four inputs propagates to the corner (float32 arithmetic
// carries NaN through the sum without any explicit check).
func AveragePixelCentersToGrid(base Tile) Tile {
	return &gridAverageTile{base: base}
}

type gridAverageTile struct {
	base Tile
}

func (t *gridAverageTile) Width() int  { return t.base.Width() + 1 }
func (t *gridAverageTile) Height() int { return t.base.Height() + 1 }

func (t *gridAverageTile) Get(i, j int) float32 {
	sum := t.base.Get(i-1, j-1) + t.base.Get(i, j-1) + t.base.Get(i-1, j) + t.base.Get(i, j)
	return sum / 4
}

// ScaleElevation multiplies every sample by factor. Lazy.
func ScaleElevation(base Tile, factor float64) Tile {
	return &scaleTile{base: base, factor: factor}
}

type scaleTile struct {
	base   Tile
	factor float64
}

func (t *scaleTile) Width() int  { return t.base.Width() }
func (t *scaleTile) Height() int { return t.base.Height() }

func (t *scaleTile) Get(i, j int) float32 {
	return float32(float64(t.base.Get(i, j)) * t.factor)
}
