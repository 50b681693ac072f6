package config

import "testing"

func TestCacheKeyStableUnderFieldOrder(t *testing.T) {
	a := Defaults()
	a.Thresholds = []ThresholdTable{{Zoom: 12, Thresholds: []int{50, 500}}, {Zoom: 8, Thresholds: []int{200, 1000}}}

	b := Defaults()
	b.Thresholds = []ThresholdTable{{Zoom: 8, Thresholds: []int{200, 1000}}, {Zoom: 12, Thresholds: []int{50, 500}}}

	if CacheKey(11, 5, 9, a) != CacheKey(11, 5, 9, b) {
		t.Error("expected equivalent option sets (differing only in threshold entry order) to produce the same cache key")
	}
}

func TestCacheKeyDiffersOnOptionValue(t *testing.T) {
	a := Defaults()
	b := Defaults()
	b.Extent = 2048

	if CacheKey(11, 5, 9, a) == CacheKey(11, 5, 9, b) {
		t.Error("expected differing extent to produce a different cache key")
	}
}

func TestCacheKeyIncludesTileCoordinates(t *testing.T) {
	opts := Defaults()
	if CacheKey(11, 5, 9, opts) == CacheKey(11, 5, 10, opts) {
		t.Error("expected differing tile y to produce a different cache key")
	}
}
