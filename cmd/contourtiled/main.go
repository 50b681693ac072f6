// Command contourtiled is the engine's demo entrypoint: it wires a real
// net/http fetch port and the internal/demfetch raster decode port into an
// internal/orchestrator.Orchestrator, then serves contour tiles either over
// HTTP (-listen) or by rendering a bounding box to a directory tree
// (-bbox).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pspoerri/demcontour/internal/config"
	"github.com/pspoerri/demcontour/internal/demfetch"
	"github.com/pspoerri/demcontour/internal/logging"
	"github.com/pspoerri/demcontour/internal/orchestrator"
)

// Set via -ldflags at build time.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	var (
		demURLTemplate    string
		vectorURLTemplate string
		demEncoding       string
		listen            string
		bbox              string
		bboxZoom          int
		outDir            string
		concurrency       int
		timeout           time.Duration
		verbose           bool
		showVersion       bool
		cpuProfile        string
		memProfile        string
	)

	flag.StringVar(&demURLTemplate, "dem-url", "", "DEM tile URL template with %d %d %d for z x y (required)")
	flag.StringVar(&vectorURLTemplate, "vector-url", "", "Terrain polygon vector tile URL template with %d %d %d for z x y (optional, enables splitMode=classic)")
	flag.StringVar(&demEncoding, "dem-encoding", "terrarium", "DEM pixel encoding: terrarium, mapbox")
	flag.StringVar(&listen, "listen", "", "Serve contour tiles over HTTP at this address, e.g. :8080")
	flag.StringVar(&bbox, "bbox", "", "Render a bounding box instead of serving: minLon,minLat,maxLon,maxLat")
	flag.IntVar(&bboxZoom, "bbox-zoom", 12, "Zoom level to render -bbox at")
	flag.StringVar(&outDir, "out", "tiles", "Output directory for -bbox rendering ({z}/{x}/{y}.mvt)")
	flag.IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Number of parallel tile workers for -bbox rendering")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-fetch timeout")
	flag.BoolVar(&verbose, "verbose", false, "Verbose progress output")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&cpuProfile, "cpuprofile", "", "Write CPU profile to file")
	flag.StringVar(&memProfile, "memprofile", "", "Write memory profile to file")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: contourtiled -dem-url <template> [-listen :8080 | -bbox minLon,minLat,maxLon,maxLat]\n\n")
		fmt.Fprintf(os.Stderr, "Serve or batch-render on-demand topographic contour vector tiles.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("contourtiled %s (commit %s, built %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	if cpuProfile != "" {
		f, err := os.Create(cpuProfile)
		if err != nil {
			log.Fatalf("Creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}
	if memProfile != "" {
		defer func() {
			f, err := os.Create(memProfile)
			if err != nil {
				log.Fatalf("Creating memory profile: %v", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				log.Fatalf("Writing memory profile: %v", err)
			}
		}()
	}

	if demURLTemplate == "" {
		log.Fatal("-dem-url is required")
	}
	encoding, err := parseEncoding(demEncoding)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New("contourtiled: ", verbose)

	httpClient := &http.Client{Timeout: timeout}
	dem := demfetch.New(demfetch.Config{
		Fetch:   httpFetch(httpClient),
		Timeout: timeout,
	})
	orch := orchestrator.New(dem, encoding, urlTemplateFunc(demURLTemplate))
	orch.Log = logger
	if vectorURLTemplate != "" {
		orch.VectorURL = urlTemplateFunc(vectorURLTemplate)
		orch.VectorFetch = func(ctx context.Context, z, x, y int) ([]byte, error) {
			return fetchBytes(ctx, httpClient, orch.VectorURL(z, x, y))
		}
	}

	switch {
	case bbox != "":
		if err := renderBBox(orch, bbox, bboxZoom, outDir, concurrency, logger); err != nil {
			log.Fatalf("Rendering bbox: %v", err)
		}
	case listen != "":
		if err := serveHTTP(orch, listen, logger); err != nil {
			log.Fatalf("Serving HTTP: %v", err)
		}
	default:
		flag.Usage()
		os.Exit(1)
	}
}

func parseEncoding(s string) (demfetch.Encoding, error) {
	switch s {
	case "terrarium":
		return demfetch.Terrarium, nil
	case "mapbox":
		return demfetch.Mapbox, nil
	default:
		return "", fmt.Errorf("unsupported -dem-encoding %q, want terrarium or mapbox", s)
	}
}

func urlTemplateFunc(template string) func(z, x, y int) string {
	return func(z, x, y int) string {
		return fmt.Sprintf(template, z, x, y)
	}
}

// httpFetch adapts an *http.Client into a demfetch.FetchFunc, classifying
// the response format from its Content-Type header rather than a file
// header, since the body never touches disk.
func httpFetch(client *http.Client) demfetch.FetchFunc {
	return func(ctx context.Context, url string) (demfetch.RawResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return demfetch.RawResponse{}, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return demfetch.RawResponse{}, err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return demfetch.RawResponse{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return demfetch.RawResponse{}, err
		}
		return demfetch.RawResponse{Body: body, Format: formatFromContentType(resp.Header.Get("Content-Type"))}, nil
	}
}

func formatFromContentType(ct string) string {
	switch {
	case strings.Contains(ct, "webp"):
		return "webp"
	case strings.Contains(ct, "jpeg"):
		return "jpeg"
	default:
		return "png"
	}
}

func fetchBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}
	return io.ReadAll(resp.Body)
}

// serveHTTP serves GET /{z}/{x}/{y}.mvt?k=v… requests, parsing z/x/y from
// the path and decoding the query with the same option keys the
// dem-contour:// grammar uses (config.DecodeOptions).
func serveHTTP(orch *orchestrator.Orchestrator, addr string, logger *logging.Logger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".mvt")
		parts := strings.Split(path, "/")
		if len(parts) != 3 {
			http.Error(w, "expected /{z}/{x}/{y}.mvt", http.StatusBadRequest)
			return
		}
		z, zErr := strconv.Atoi(parts[0])
		x, xErr := strconv.Atoi(parts[1])
		y, yErr := strconv.Atoi(parts[2])
		if zErr != nil || xErr != nil || yErr != nil {
			http.Error(w, "invalid tile coordinates", http.StatusBadRequest)
			return
		}
		opts, err := config.DecodeOptions(r.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		res, err := orch.FetchContourTile(r.Context(), z, x, y, opts)
		if err != nil {
			logger.Warnf("%d/%d/%d: %v", z, x, y, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.mapbox-vector-tile")
		w.Header().Set("ETag", `"`+config.CacheKey(z, x, y, opts)+`"`)
		if res.Empty {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write(res.Data)
	})

	logger.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// renderBBox enumerates every tile of a bounding box at zoom and renders
// each to outDir/{z}/{x}/{y}.mvt, fanning out across concurrency workers.
func renderBBox(orch *orchestrator.Orchestrator, bbox string, zoom int, outDir string, concurrency int, logger *logging.Logger) error {
	minLon, minLat, maxLon, maxLat, err := parseBBox(bbox)
	if err != nil {
		return err
	}
	minX, maxY := lonLatToTile(minLon, minLat, zoom)
	maxX, minY := lonLatToTile(maxLon, maxLat, zoom)
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	if minY > maxY {
		minY, maxY = maxY, minY
	}

	type job struct{ x, y int }
	var jobs []job
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			jobs = append(jobs, job{x, y})
		}
	}

	opts := config.Defaults()
	bar := newProgressBar(fmt.Sprintf("z%d", zoom), int64(len(jobs)))
	defer bar.Finish()

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for _, j := range jobs {
		wg.Add(1)
		sem <- struct{}{}
		go func(j job) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := orch.FetchContourTile(context.Background(), zoom, j.x, j.y, opts)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%d/%d/%d: %w", zoom, j.x, j.y, err)
				}
				mu.Unlock()
				bar.Increment(true)
				return
			}
			bar.Increment(res.Empty)
			if res.Empty {
				return
			}
			if err := writeTile(outDir, zoom, j.x, j.y, res.Data); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(j)
	}
	wg.Wait()
	return firstErr
}

func writeTile(outDir string, z, x, y int, data []byte) error {
	dir := filepath.Join(outDir, strconv.Itoa(z), strconv.Itoa(x))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, strconv.Itoa(y)+".mvt"), data, 0o644)
}

func parseBBox(s string) (minLon, minLat, maxLon, maxLat float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return 0, 0, 0, 0, errors.New("-bbox must be minLon,minLat,maxLon,maxLat")
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		vals[i], err = strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("-bbox: %w", err)
		}
	}
	return vals[0], vals[1], vals[2], vals[3], nil
}

// lonLatToTile converts WGS84 lon/lat to tile coordinates at the given zoom,
// the standard web-mercator slippy-map formula.
func lonLatToTile(lon, lat float64, zoom int) (x, y int) {
	n := math.Pow(2, float64(zoom))
	x = int(math.Floor((lon + 180.0) / 360.0 * n))
	latRad := lat * math.Pi / 180.0
	y = int(math.Floor((1.0 - math.Log(math.Tan(latRad)+1.0/math.Cos(latRad))/math.Pi) / 2.0 * n))

	maxTile := int(n) - 1
	if x < 0 {
		x = 0
	}
	if x > maxTile {
		x = maxTile
	}
	if y < 0 {
		y = 0
	}
	if y > maxTile {
		y = maxTile
	}
	return
}
