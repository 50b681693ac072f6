package config

import (
	"fmt"
	"strconv"
	"strings"
)

// parseThresholds parses the thresholds grammar:
// z1*minor1*major1~z2*minor2*major2… — a `~`-separated list of zoom-indexed
// entries, each a `*`-separated zoom followed by one or more thresholds.
func parseThresholds(raw string) ([]ThresholdTable, error) {
	if raw == "" {
		return nil, nil
	}

	entries := strings.Split(raw, "~")
	out := make([]ThresholdTable, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Split(entry, "*")
		if len(fields) < 2 {
			return nil, fmt.Errorf("config: thresholds entry %q must be zoom*minor[*major…]", entry)
		}
		zoom, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("config: thresholds entry %q has a non-integer zoom: %w", entry, err)
		}
		thresholds := make([]int, 0, len(fields)-1)
		for _, f := range fields[1:] {
			n, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("config: thresholds entry %q has a non-integer value %q: %w", entry, f, err)
			}
			thresholds = append(thresholds, n)
		}
		out = append(out, ThresholdTable{Zoom: zoom, Thresholds: thresholds})
	}
	return out, nil
}
