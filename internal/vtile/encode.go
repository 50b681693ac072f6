package vtile

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/mvt"
	"github.com/paulmach/orb/geojson"

	"github.com/pspoerri/demcontour/internal/isoline"
	"github.com/pspoerri/demcontour/internal/terrain"
)

// EncodeConfig names the output layer and the attribute keys contour
// segments are serialized under.
type EncodeConfig struct {
	ContourLayer string
	ElevationKey string // default "ele"
	LevelKey     string // default "level"
	Extent       int
	// Thresholds is the per-tile minor interval followed by its nested
	// major multiples (ContourTileOptions.thresholds); Level uses it to
	// compute each feature's levelKey.
	Thresholds []int
}

func (c EncodeConfig) elevationKey() string {
	if c.ElevationKey == "" {
		return "ele"
	}
	return c.ElevationKey
}

func (c EncodeConfig) levelKey() string {
	if c.LevelKey == "" {
		return "level"
	}
	return c.LevelKey
}

// Level returns the index of the highest-importance threshold that divides
// elevation: max{ i : elevation mod thresholds[i] == 0 }, or 0 if none do.
// Level 0 is "minor"; level >= 1 is "major".
func Level(elevation int, thresholds []int) int {
	level := 0
	for i, t := range thresholds {
		if t <= 0 {
			continue
		}
		if elevation%t == 0 {
			level = i
		}
	}
	return level
}

// EncodeContours builds a single-layer MVT from an isoline.IsolineSet — either
// the unclassified isoline.Set (every segment treated as terrain "normal",
// used when splitMode=no-split) or terrain.ClassifiedSet (the usual
// classic-split path) — with one feature per polyline/segment carrying
// elevationKey, levelKey, and terrain_type attributes. Geometry is already
// in tile-integer coordinates at cfg.Extent, so no ProjectToTile step runs;
// the layer's extent is set directly.
func EncodeContours(set isoline.IsolineSet, cfg EncodeConfig) ([]byte, error) {
	fc := geojson.NewFeatureCollection()

	switch s := set.(type) {
	case terrain.ClassifiedSet:
		for elevation, segs := range s {
			elev := int(math.Round(elevation))
			level := Level(elev, cfg.Thresholds)
			for _, seg := range segs {
				appendFeature(fc, seg.Geometry, elev, level, seg.Type, cfg)
			}
		}
	case isoline.Set:
		for elevation, polylines := range s {
			elev := int(math.Round(elevation))
			level := Level(elev, cfg.Thresholds)
			for _, pl := range polylines {
				appendFeature(fc, pl, elev, level, terrain.Normal, cfg)
			}
		}
	default:
		return nil, fmt.Errorf("vtile: unsupported isoline set type %T", set)
	}

	layer := mvt.NewLayer(cfg.ContourLayer, fc)
	layer.Extent = uint32(cfg.Extent)
	layer.Version = 2
	return mvt.Marshal(mvt.Layers{layer})
}

func appendFeature(fc *geojson.FeatureCollection, geometry []int, elevation, level int, terrainType terrain.Type, cfg EncodeConfig) {
	ls := toLineString(geometry)
	if len(ls) < 2 {
		return
	}
	f := geojson.NewFeature(ls)
	f.Properties[cfg.elevationKey()] = elevation
	f.Properties[cfg.levelKey()] = level
	f.Properties["terrain_type"] = string(terrainType)
	fc.Append(f)
}

func toLineString(geometry []int) orb.LineString {
	n := len(geometry) / 2
	ls := make(orb.LineString, n)
	for i := 0; i < n; i++ {
		ls[i] = orb.Point{float64(geometry[2*i]), float64(geometry[2*i+1])}
	}
	return ls
}
