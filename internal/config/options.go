// Package config decodes the contour engine's request-scoped options and
// its dem-contour:// URL grammar using stdlib net/url and strconv only,
// the same way a flag-based CLI parses every flag with the standard flag
// package rather than an external config/flags library. No third-party
// dependency fits URL/query-string grammars better than net/url + strconv
// used directly.
package config

import "fmt"

// SplitMode selects whether traced contours are classified against terrain
// polygons.
type SplitMode string

const (
	SplitClassic SplitMode = "classic"
	SplitNone    SplitMode = "no-split"
)

// ThresholdTable is one zoom-indexed entry of a threshold table.
// Thresholds[0] is the minor interval; subsequent entries are nested major
// multiples, each required to be an exact multiple of its predecessor.
type ThresholdTable struct {
	Zoom       int
	Thresholds []int
}

// ContourTileOptions is request-scoped configuration for one contour tile,
// per spec §3/§6.
type ContourTileOptions struct {
	ContourLayer   string
	ElevationKey   string
	LevelKey       string
	Multiplier     float64
	Overzoom       int
	Buffer         float64
	Extent         int
	SubsampleBelow int
	Simplify       float64
	SplitMode      SplitMode
	Thresholds     []ThresholdTable

	// SourceLayer, GlacierValues, and RockValues configure the companion
	// terrain-polygon decode (internal/vtile.DecodeConfig); they aren't
	// part of the dem-contour:// grammar itself but are carried alongside
	// it since the orchestrator needs both to serve one request.
	SourceLayer   string
	GlacierValues []string
	RockValues    []string
}

// Defaults returns the documented default option values.
func Defaults() ContourTileOptions {
	return ContourTileOptions{
		ContourLayer:   "contours",
		ElevationKey:   "ele",
		LevelKey:       "level",
		Multiplier:     1,
		Overzoom:       0,
		Buffer:         1,
		Extent:         4096,
		SubsampleBelow: 100,
		Simplify:       1,
		SplitMode:      SplitClassic,
	}
}

// ThresholdsForZoom selects the threshold entry with the largest Zoom <= z,
// per the orchestrator's zoom-table lookup rule. ok is false if no entry's
// Zoom is <= z (including an empty table).
func (o ContourTileOptions) ThresholdsForZoom(z int) (thresholds []int, ok bool) {
	best := -1
	for _, t := range o.Thresholds {
		if t.Zoom <= z && t.Zoom > best {
			best = t.Zoom
			thresholds = t.Thresholds
			ok = true
		}
	}
	return thresholds, ok
}

// Validate rejects invalid option combinations, per the open question
// decision recorded in DESIGN.md: threshold divisibility is checked here,
// at decode time, rather than left undefined until a level is computed
// for some elevation.
func (o ContourTileOptions) Validate() error {
	if o.Extent <= 0 {
		return fmt.Errorf("config: extent must be positive, got %d", o.Extent)
	}
	if o.SplitMode != SplitClassic && o.SplitMode != SplitNone {
		return fmt.Errorf("config: splitMode must be %q or %q, got %q", SplitClassic, SplitNone, o.SplitMode)
	}
	for _, t := range o.Thresholds {
		if len(t.Thresholds) == 0 {
			return fmt.Errorf("config: thresholds entry at zoom %d is empty", t.Zoom)
		}
		for i := 0; i+1 < len(t.Thresholds); i++ {
			lo, hi := t.Thresholds[i], t.Thresholds[i+1]
			if lo <= 0 || hi%lo != 0 {
				return fmt.Errorf("config: thresholds[%d]=%d must evenly divide thresholds[%d]=%d at zoom %d", i, lo, i+1, hi, t.Zoom)
			}
		}
	}
	return nil
}
