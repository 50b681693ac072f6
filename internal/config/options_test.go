package config

import "testing"

func TestThresholdsForZoomSelectsLargestZoomLE(t *testing.T) {
	opts := Defaults()
	opts.Thresholds = []ThresholdTable{
		{Zoom: 8, Thresholds: []int{200, 1000}},
		{Zoom: 12, Thresholds: []int{50, 500}},
		{Zoom: 14, Thresholds: []int{10, 100}},
	}

	if _, ok := opts.ThresholdsForZoom(7); ok {
		t.Error("z=7: expected no entry applies (below the lowest zoom)")
	}

	cases := []struct {
		z    int
		want int // expected minor interval
	}{
		{8, 200},
		{11, 200},
		{12, 50},
		{13, 50},
		{20, 10},
	}
	for _, c := range cases {
		got, ok := opts.ThresholdsForZoom(c.z)
		if !ok || got[0] != c.want {
			t.Errorf("z=%d: got %v ok=%v, want minor=%d", c.z, got, ok, c.want)
		}
	}
}

func TestValidateRejectsNonDividingThresholds(t *testing.T) {
	opts := Defaults()
	opts.Thresholds = []ThresholdTable{{Zoom: 10, Thresholds: []int{30, 100}}} // 100 % 30 != 0
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for non-dividing thresholds")
	}
}

func TestValidateAcceptsDividingThresholds(t *testing.T) {
	opts := Defaults()
	opts.Thresholds = []ThresholdTable{{Zoom: 10, Thresholds: []int{50, 100, 500}}}
	if err := opts.Validate(); err != nil {
		t.Errorf("expected valid thresholds to pass, got %v", err)
	}
}

func TestValidateRejectsBadSplitMode(t *testing.T) {
	opts := Defaults()
	opts.SplitMode = "sometimes"
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for an unrecognized splitMode")
	}
}

func TestValidateRejectsNonPositiveExtent(t *testing.T) {
	opts := Defaults()
	opts.Extent = 0
	if err := opts.Validate(); err == nil {
		t.Error("expected an error for a zero extent")
	}
}
