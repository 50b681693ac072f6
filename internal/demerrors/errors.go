// Package demerrors defines the contour engine's error taxonomy.
//
// Each sentinel corresponds to one of the error kinds named in the engine's
// failure-handling design: fetch/decode/timeout errors propagate and evict
// the offending cache entry, and cancellation reports no body. Terrain
// vector-tile failures are logged by the orchestrator and treated as "no
// polygons"; simplification and splitting recover from their own failures
// and keep the original geometry. The one place ErrGeometryFailed is
// returned is an MVT encode failure in the orchestrator.
package demerrors

import (
	"context"
	"errors"
	"fmt"
)

// ErrFetchFailed wraps a non-2xx HTTP response or network error from a fetch port.
var ErrFetchFailed = errors.New("demcontour: fetch failed")

// ErrDecodeFailed wraps a DEM raster decode error.
var ErrDecodeFailed = errors.New("demcontour: decode failed")

// ErrTimeout reports that a fetch exceeded its deadline.
var ErrTimeout = errors.New("demcontour: timeout")

// ErrCancelled reports that the caller's context was cancelled before
// completion. No partial result is ever returned alongside this error.
var ErrCancelled = errors.New("demcontour: cancelled")

// ErrVectorParseFailed wraps a failure to fetch the terrain-polygon source
// tile (an MVT parse failure yields no polygons without an error). Callers
// treat it as "no polygons" rather than propagating it.
var ErrVectorParseFailed = errors.New("demcontour: vector tile parse failed")

// ErrGeometryFailed reports a geometry failure. Simplification and terrain
// splitting recover in place without returning it; the orchestrator returns
// it, wrapped, when MVT encoding of the contours fails.
var ErrGeometryFailed = errors.New("demcontour: geometry operation failed")

// ErrNoSource reports that the orchestrator was given no DEM tile to work
// with at all — distinct from MissingNeighbor, which tolerates missing
// cardinals as long as the center resolves.
var ErrNoSource = errors.New("demcontour: no source tile")

// ClassifyCancellation translates a bare context error into the taxonomy
// above. An AsyncCache waiter that leaves via its own ctx rather than the
// producer completing returns ctx.Err() directly (context.Canceled or
// context.DeadlineExceeded), bypassing whatever wrapping the producer
// itself would have applied; callers at a fetch boundary run their error
// through this before returning it so ErrCancelled/ErrTimeout are produced
// either way. Errors already wrapped by a producer pass through unchanged.
func ClassifyCancellation(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: %v", ErrCancelled, err)
	default:
		return err
	}
}
