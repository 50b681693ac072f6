package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CacheKey returns the canonical "z/x/y/<option encoding>" string an
// external result cache (CDN, reverse proxy) should key on: option keys
// sorted alphabetically and stringified, so any two option objects that
// decode to the same values produce identical keys regardless of the
// order their source query string listed them in.
func CacheKey(z, x, y int, o ContourTileOptions) string {
	pairs := []string{
		"contourLayer=" + o.ContourLayer,
		"elevationKey=" + o.ElevationKey,
		"levelKey=" + o.LevelKey,
		"multiplier=" + formatFloat(o.Multiplier),
		"overzoom=" + strconv.Itoa(o.Overzoom),
		"buffer=" + formatFloat(o.Buffer),
		"extent=" + strconv.Itoa(o.Extent),
		"subsampleBelow=" + strconv.Itoa(o.SubsampleBelow),
		"simplify=" + formatFloat(o.Simplify),
		"splitMode=" + string(o.SplitMode),
		"sourceLayer=" + o.SourceLayer,
		"thresholds=" + formatThresholds(o.Thresholds),
	}
	sort.Strings(pairs)
	return fmt.Sprintf("%d/%d/%d/%s", z, x, y, strings.Join(pairs, "&"))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatThresholds(tables []ThresholdTable) string {
	sorted := make([]ThresholdTable, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Zoom < sorted[j].Zoom })

	entries := make([]string, len(sorted))
	for i, t := range sorted {
		parts := make([]string, len(t.Thresholds))
		for j, v := range t.Thresholds {
			parts[j] = strconv.Itoa(v)
		}
		entries[i] = fmt.Sprintf("%d*%s", t.Zoom, strings.Join(parts, "*"))
	}
	return strings.Join(entries, "~")
}
