// Package vtile is the boundary between the engine's internal geometry and
// the Mapbox Vector Tile wire format, built end to end on
// github.com/paulmach/orb/encoding/mvt: mvt.NewLayer/Marshal to encode,
// mvt.Unmarshal plus orb.Geometry and feature properties to decode.
package vtile

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"

	"github.com/pspoerri/demcontour/internal/terrain"
)

// DefaultGlacierValues and DefaultRockValues are the type-attribute values
// classified as glacier/rock when a DecodeConfig leaves its lists empty.
var (
	DefaultGlacierValues = []string{"ice", "glacier"}
	DefaultRockValues    = []string{"rock", "bare_rock", "scree"}
)

// DecodeConfig controls how terrain polygons are extracted from a
// companion MVT tile.
type DecodeConfig struct {
	SourceLayer   string
	TypeAttribute string // default "type"
	GlacierValues []string
	RockValues    []string
}

func (c DecodeConfig) typeAttribute() string {
	if c.TypeAttribute == "" {
		return "type"
	}
	return c.TypeAttribute
}

// DecodeTerrainPolygons parses raw MVT bytes (gzipped or plain) and returns
// the polygon features of cfg.SourceLayer classified into glacier/rock
// terrain.Polygons, normalized to [0,1]² by the layer's integer extent.
// A missing layer, absent type attribute, or parse failure all yield a nil
// slice rather than an error: the companion vector tile is optional,
// best-effort input.
func DecodeTerrainPolygons(data []byte, cfg DecodeConfig) []terrain.Polygon {
	layers, err := mvt.UnmarshalGzipped(data)
	if err != nil {
		layers, err = mvt.Unmarshal(data)
		if err != nil {
			return nil
		}
	}

	collections := layers.ToFeatureCollections()
	fc, ok := collections[cfg.SourceLayer]
	if !ok {
		return nil
	}

	glacier := toSet(cfg.GlacierValues, DefaultGlacierValues)
	rock := toSet(cfg.RockValues, DefaultRockValues)
	attr := cfg.typeAttribute()

	var extent float64
	for _, l := range layers {
		if l.Name == cfg.SourceLayer {
			extent = float64(l.Extent)
			break
		}
	}
	if extent == 0 {
		extent = 4096
	}

	var out []terrain.Polygon
	for _, f := range fc.Features {
		if f == nil || f.Properties == nil {
			continue
		}
		value, _ := f.Properties[attr].(string)
		terrainType, ok := classify(value, glacier, rock)
		if !ok {
			continue
		}
		for _, poly := range extractPolygons(f.Geometry) {
			out = append(out, terrain.Polygon{Geometry: normalize(poly, extent), Type: terrainType})
		}
	}
	return out
}

func classify(value string, glacier, rock map[string]bool) (terrain.Type, bool) {
	switch {
	case glacier[value]:
		return terrain.Glacier, true
	case rock[value]:
		return terrain.Rock, true
	default:
		return "", false
	}
}

func toSet(values, defaults []string) map[string]bool {
	if len(values) == 0 {
		values = defaults
	}
	out := make(map[string]bool, len(values))
	for _, v := range values {
		out[v] = true
	}
	return out
}

// extractPolygons normalizes a feature's geometry to a slice of
// orb.Polygon, flattening MultiPolygon into its constituent polygons. Any
// other geometry type (point, line) is discarded — the decoder only
// recognizes polygon terrain outlines.
func extractPolygons(g orb.Geometry) []orb.Polygon {
	switch geom := g.(type) {
	case orb.Polygon:
		return []orb.Polygon{geom}
	case orb.MultiPolygon:
		return []orb.Polygon(geom)
	default:
		return nil
	}
}

func normalize(p orb.Polygon, extent float64) orb.Polygon {
	out := make(orb.Polygon, len(p))
	for i, ring := range p {
		nring := make(orb.Ring, len(ring))
		for j, pt := range ring {
			nring[j] = orb.Point{pt[0] / extent, pt[1] / extent}
		}
		out[i] = nring
	}
	return out
}
