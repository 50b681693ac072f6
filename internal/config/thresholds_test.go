package config

import "testing"

func TestParseThresholdsSingleEntry(t *testing.T) {
	tables, err := parseThresholds("11*200*1000")
	if err != nil {
		t.Fatalf("parseThresholds: %v", err)
	}
	if len(tables) != 1 || tables[0].Zoom != 11 {
		t.Fatalf("got %+v", tables)
	}
	if len(tables[0].Thresholds) != 2 || tables[0].Thresholds[0] != 200 || tables[0].Thresholds[1] != 1000 {
		t.Fatalf("got thresholds %v", tables[0].Thresholds)
	}
}

func TestParseThresholdsMultipleZoomEntries(t *testing.T) {
	tables, err := parseThresholds("8*200*1000~12*50*500~14*10*100")
	if err != nil {
		t.Fatalf("parseThresholds: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(tables))
	}
	if tables[1].Zoom != 12 || tables[1].Thresholds[0] != 50 {
		t.Fatalf("got %+v", tables[1])
	}
}

func TestParseThresholdsThreeLevels(t *testing.T) {
	tables, err := parseThresholds("10*50*100*500")
	if err != nil {
		t.Fatalf("parseThresholds: %v", err)
	}
	if len(tables[0].Thresholds) != 3 {
		t.Fatalf("expected 3 thresholds, got %v", tables[0].Thresholds)
	}
}

func TestParseThresholdsEmptyStringIsNil(t *testing.T) {
	tables, err := parseThresholds("")
	if err != nil || tables != nil {
		t.Fatalf("expected nil, nil for an empty string, got %v, %v", tables, err)
	}
}

func TestParseThresholdsRejectsMalformedEntry(t *testing.T) {
	if _, err := parseThresholds("notanumber*200"); err == nil {
		t.Error("expected an error for a non-integer zoom")
	}
	if _, err := parseThresholds("10"); err == nil {
		t.Error("expected an error for an entry missing a minor interval")
	}
	if _, err := parseThresholds("10*abc"); err == nil {
		t.Error("expected an error for a non-integer threshold")
	}
}
