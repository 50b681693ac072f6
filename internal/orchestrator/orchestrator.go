// Package orchestrator composes DemFetcher, HeightTile, IsolineGenerator,
// Simplifier, TerrainSplitter, and VectorTileCodec into the engine's single
// entry point, FetchContourTile. The 3x3 neighbor fan-out uses
// golang.org/x/sync/errgroup (errgroup.WithContext) rather than a raw
// sync.WaitGroup and error channel, because only the center neighbor's
// failure is fatal while the other eight must be individually cancellable
// and independently tolerated.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/pspoerri/demcontour/internal/asynccache"
	"github.com/pspoerri/demcontour/internal/config"
	"github.com/pspoerri/demcontour/internal/coord"
	"github.com/pspoerri/demcontour/internal/demerrors"
	"github.com/pspoerri/demcontour/internal/demfetch"
	"github.com/pspoerri/demcontour/internal/height"
	"github.com/pspoerri/demcontour/internal/isoline"
	"github.com/pspoerri/demcontour/internal/logging"
	"github.com/pspoerri/demcontour/internal/simplify"
	"github.com/pspoerri/demcontour/internal/terrain"
	"github.com/pspoerri/demcontour/internal/vtile"
)

// VectorFetchFunc fetches the raw MVT bytes of the companion terrain
// polygon tile at (z, x, y). Implementations must observe ctx.
type VectorFetchFunc func(ctx context.Context, z, x, y int) ([]byte, error)

// Result is the outcome of one FetchContourTile call: either Data holds an
// encoded MVT, or Empty reports a "no contours apply" success per §7's
// EmptyResult policy.
type Result struct {
	Data  []byte
	Empty bool
}

// Orchestrator holds the ports and shared caches needed to serve
// FetchContourTile requests. The three AsyncCaches named in §4.A are
// DemFetcher's two (held inside Dem) plus VectorPolys below.
type Orchestrator struct {
	Dem         *demfetch.Fetcher
	DemEncoding demfetch.Encoding
	DemURL      func(z, x, y int) string

	// VectorFetch and VectorPolys are the DemFetcher-style pair for the
	// companion terrain-polygon tile: VectorFetch is the fetch port,
	// VectorPolys is the single AsyncCache that dedupes fetch+decode
	// together (there is no separate raw-bytes cache for vector tiles —
	// spec names exactly three AsyncCaches: DemFetcher's raw and decoded
	// caches plus this one).
	VectorURL   func(z, x, y int) string
	VectorFetch VectorFetchFunc
	VectorPolys *asynccache.Cache[[]terrain.Polygon]

	// Preprocessor's simplification method is fixed at construction time
	// (design note: never mutated per-request — no runtime mode switch).
	Preprocessor *terrain.Preprocessor

	// MaxZoom is the floor passed to coord.Ancestor: how coarse the DEM
	// ancestor tile may become regardless of requested overzoom. -1
	// disables the floor.
	MaxZoom int

	Log *logging.Logger
}

// New creates an Orchestrator with sensible defaults for the fields a
// caller doesn't set explicitly (the VectorPolys cache, a Douglas-Peucker
// Preprocessor, and a quiet Logger).
func New(dem *demfetch.Fetcher, demEncoding demfetch.Encoding, demURL func(z, x, y int) string) *Orchestrator {
	return &Orchestrator{
		Dem:          dem,
		DemEncoding:  demEncoding,
		DemURL:       demURL,
		VectorPolys:  asynccache.New[[]terrain.Polygon](100),
		Preprocessor: terrain.NewPreprocessor(terrain.MethodDouglasPeucker),
		MaxZoom:      -1,
		Log:          logging.New("orchestrator: ", false),
	}
}

// FetchContourTile serves one request end to end, per the engine's
// seven-step algorithm.
func (o *Orchestrator) FetchContourTile(ctx context.Context, z, x, y int, opts config.ContourTileOptions) (Result, error) {
	thresholds, ok := opts.ThresholdsForZoom(z)
	if !ok || len(thresholds) == 0 {
		return Result{Empty: true}, nil
	}

	ht, border, err := o.buildHeightTile(ctx, z, x, y, opts)
	if err != nil {
		if errors.Is(err, demerrors.ErrNoSource) {
			return Result{Empty: true}, nil
		}
		return Result{}, err
	}

	set := isoline.Generate(ht, float64(thresholds[0]), border, opts.Extent)

	var working isoline.Set
	if opts.Simplify > 0 {
		working = make(isoline.Set, len(set))
		for threshold, polylines := range set {
			working[threshold] = simplify.Polylines(polylines, opts.Simplify, opts.Extent)
		}
	} else {
		working = set
	}

	var final isoline.IsolineSet = working
	if opts.SplitMode == config.SplitClassic {
		polys, err := o.fetchTerrainPolygons(ctx, z, x, y, opts)
		if err != nil {
			o.Log.Warnf("terrain polygons for %d/%d/%d: %v", z, x, y, err)
			polys = nil
		}
		if len(polys) > 0 {
			sortRockFirst(polys)
			indexed := o.Preprocessor.Process(polys, z)
			idx := terrain.NewGridIndex(indexed, z)
			final = terrain.Split(working, idx, opts.Extent)
		}
	}

	data, err := vtile.EncodeContours(final, vtile.EncodeConfig{
		ContourLayer: opts.ContourLayer,
		ElevationKey: opts.ElevationKey,
		LevelKey:     opts.LevelKey,
		Extent:       opts.Extent,
		Thresholds:   thresholds,
	})
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", demerrors.ErrGeometryFailed, err)
	}
	return Result{Data: data}, nil
}

// buildHeightTile executes steps 1-3: fetch the 3x3 DEM neighborhood,
// stitch/crop/resample it, and re-grid it, returning the tile materialized
// with enough border to satisfy opts.Buffer, and that border (in sample
// cells) for the caller to pass to isoline.Generate.
func (o *Orchestrator) buildHeightTile(ctx context.Context, z, x, y int, opts config.ContourTileOptions) (height.Tile, int, error) {
	ancestor, subZ, subX, subY := coord.Ancestor(z, x, y, opts.Overzoom, o.MaxZoom)
	neighborTiles, validMask := coord.Neighbors9(ancestor)

	group, gctx := errgroup.WithContext(ctx)
	var fetched [9]height.Tile
	for i := range neighborTiles {
		i := i
		nt := neighborTiles[i]
		valid := validMask[i]
		group.Go(func() error {
			if !valid {
				return nil
			}
			dem, err := o.Dem.FetchDem(gctx, o.DemURL(nt.Z, nt.X, nt.Y), o.DemEncoding)
			if err != nil {
				if i == 4 {
					return err
				}
				o.Log.Warnf("neighbor dem %d/%d/%d unavailable: %v", nt.Z, nt.X, nt.Y, err)
				return nil
			}
			fetched[i] = height.FromRawDem(dem)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		// A cancelled request reports Cancelled with no body. Any other
		// center-fetch failure (FetchFailed, DecodeFailed, Timeout) means
		// the source has no tile here; that is the "center DEM tile
		// missing" no-data case, reported as ErrNoSource so the caller
		// returns an empty success rather than propagating the error.
		if errors.Is(err, demerrors.ErrCancelled) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: %v", demerrors.ErrNoSource, err)
	}

	combined := height.CombineNeighbors(fetched)
	splitTile := height.Split(combined, subZ, subX, subY)

	var ht height.Tile = splitTile
	if ht.Width() >= opts.SubsampleBelow {
		ht = height.Materialize(ht, 2)
	} else {
		for ht.Width() < opts.SubsampleBelow {
			ht = height.Materialize(height.SubsamplePixelCenters(ht, 2), 2)
		}
	}

	regridded := height.ScaleElevation(height.AveragePixelCentersToGrid(ht), opts.Multiplier)

	border := bufferToBorder(opts.Buffer, regridded.Width(), opts.Extent)
	return height.Materialize(regridded, border), border, nil
}

// bufferToBorder converts a destination-unit tile buffer into the number
// of sample cells a materialize/Generate border must cover, per the
// IsolineGenerator's own contract: "border should be chosen by the caller
// so that border x (extent/width) covers the desired tile-border buffer."
// At least 1 cell is always materialized, matching step 3's minimum halo
// for the pixel-center-to-grid average.
func bufferToBorder(buffer float64, width, extent int) int {
	if width <= 0 || extent <= 0 {
		return 1
	}
	border := int(math.Ceil(buffer * float64(width) / float64(extent)))
	if border < 1 {
		border = 1
	}
	return border
}

func (o *Orchestrator) fetchTerrainPolygons(ctx context.Context, z, x, y int, opts config.ContourTileOptions) ([]terrain.Polygon, error) {
	if o.VectorFetch == nil || o.VectorURL == nil {
		return nil, nil
	}
	key := fmt.Sprintf("%d/%d/%d", z, x, y)
	decodeCfg := vtile.DecodeConfig{
		SourceLayer:   opts.SourceLayer,
		GlacierValues: opts.GlacierValues,
		RockValues:    opts.RockValues,
	}
	polys, err := o.VectorPolys.Get(ctx, key, func(producerCtx context.Context, _ string) ([]terrain.Polygon, error) {
		raw, err := o.VectorFetch(producerCtx, z, x, y)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", demerrors.ErrVectorParseFailed, err)
		}
		return vtile.DecodeTerrainPolygons(raw, decodeCfg), nil
	})
	return polys, demerrors.ClassifyCancellation(err)
}

// sortRockFirst stably reorders polygons so every rock polygon precedes
// every glacier polygon, implementing design note 2's documented (not
// enforced by the splitter) precedence: splitting preserves input order,
// so the orchestrator is responsible for ordering rock before glacier.
func sortRockFirst(polygons []terrain.Polygon) {
	rank := func(t terrain.Type) int {
		if t == terrain.Rock {
			return 0
		}
		return 1
	}
	// Insertion sort: polygon counts per tile are small (tens, not
	// thousands), and stability matters more than asymptotic cost here.
	for i := 1; i < len(polygons); i++ {
		j := i
		for j > 0 && rank(polygons[j].Type) < rank(polygons[j-1].Type) {
			polygons[j], polygons[j-1] = polygons[j-1], polygons[j]
			j--
		}
	}
}
