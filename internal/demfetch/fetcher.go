package demfetch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pspoerri/demcontour/internal/asynccache"
	"github.com/pspoerri/demcontour/internal/demerrors"
)

// RawResponse is what a FetchFunc returns for a successful request.
type RawResponse struct {
	Body         []byte
	Format       string // "png", "jpeg", "webp" — empty defaults to "png"
	Expires      *time.Time
	CacheControl string
}

// FetchFunc performs the actual network fetch for url. Implementations must
// observe ctx for cancellation.
type FetchFunc func(ctx context.Context, url string) (RawResponse, error)

// DecodeFunc decodes raw raster bytes of the given format into a DemTile
// using the given pixel encoding. The default decoder (New's fallback
// when Config.Decode is nil) wraps decodeRaster + demTileFromImage.
type DecodeFunc func(ctx context.Context, data []byte, format string, encoding Encoding) (*DemTile, error)

func defaultDecode(_ context.Context, data []byte, format string, encoding Encoding) (*DemTile, error) {
	img, err := decodeRaster(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", demerrors.ErrDecodeFailed, err)
	}
	tile, err := demTileFromImage(img, encoding)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", demerrors.ErrDecodeFailed, err)
	}
	return tile, nil
}

// Fetcher composes a FetchFunc and DecodeFunc behind two AsyncCaches — one
// keyed by URL holding raw responses, one keyed by URL+encoding holding
// decoded DemTiles — per the DemFetcher component's contract.
type Fetcher struct {
	fetch      FetchFunc
	decode     DecodeFunc
	timeout    time.Duration
	rawCache   *asynccache.Cache[rawEntry]
	demCache   *asynccache.Cache[*DemTile]
}

type rawEntry struct {
	body   []byte
	format string
}

// Config configures a Fetcher.
type Config struct {
	Fetch        FetchFunc
	Decode       DecodeFunc // nil uses the built-in raster decoder
	Timeout      time.Duration
	RawCacheSize int
	DemCacheSize int
}

// New creates a Fetcher. Timeout defaults to 10s (the engine's typical
// per-fetch deadline); cache sizes default to 100 entries each.
func New(cfg Config) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rawSize := cfg.RawCacheSize
	if rawSize <= 0 {
		rawSize = 100
	}
	demSize := cfg.DemCacheSize
	if demSize <= 0 {
		demSize = 100
	}
	decode := cfg.Decode
	if decode == nil {
		decode = defaultDecode
	}
	return &Fetcher{
		fetch:    cfg.Fetch,
		decode:   decode,
		timeout:  timeout,
		rawCache: asynccache.New[rawEntry](rawSize),
		demCache: asynccache.New[*DemTile](demSize),
	}
}

// FetchRaw fetches and caches the raw response body for url, enforcing the
// configured per-fetch timeout. A deadline exceeded is reported as
// ErrTimeout, a cancellation as ErrCancelled, and any other fetch failure
// as ErrFetchFailed.
func (f *Fetcher) FetchRaw(ctx context.Context, url string) (rawEntry, error) {
	entry, err := f.rawCache.Get(ctx, url, func(producerCtx context.Context, key string) (rawEntry, error) {
		deadlineCtx, cancel := context.WithTimeout(producerCtx, f.timeout)
		defer cancel()

		resp, err := f.fetch(deadlineCtx, key)
		if err != nil {
			if errors.Is(deadlineCtx.Err(), context.DeadlineExceeded) {
				return rawEntry{}, fmt.Errorf("%w: %s", demerrors.ErrTimeout, key)
			}
			if errors.Is(err, context.Canceled) {
				return rawEntry{}, demerrors.ErrCancelled
			}
			return rawEntry{}, fmt.Errorf("%w: %s: %v", demerrors.ErrFetchFailed, key, err)
		}
		format := resp.Format
		if format == "" {
			format = "png"
		}
		return rawEntry{body: resp.Body, format: format}, nil
	})
	// A waiter whose own ctx ends while the producer keeps running for
	// other waiters returns ctx.Err() directly from Get, unwrapped by the
	// producer above; normalize it into the same taxonomy either way.
	return entry, demerrors.ClassifyCancellation(err)
}

// FetchDem fetches (via FetchRaw) and decodes the DEM tile at url using the
// given pixel encoding, deduplicated per (url, encoding).
func (f *Fetcher) FetchDem(ctx context.Context, url string, encoding Encoding) (*DemTile, error) {
	key := string(encoding) + "|" + url
	tile, err := f.demCache.Get(ctx, key, func(producerCtx context.Context, _ string) (*DemTile, error) {
		raw, err := f.FetchRaw(producerCtx, url)
		if err != nil {
			return nil, err
		}
		return f.decode(producerCtx, raw.body, raw.format, encoding)
	})
	return tile, demerrors.ClassifyCancellation(err)
}
