package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseRequestURL parses a dem-contour://{z}/{x}/{y}?k=v… request URL,
// returning the tile coordinates and options decoded from the query
// string (merged over Defaults()). The options are validated before
// return.
func ParseRequestURL(raw string) (z, x, y int, opts ContourTileOptions, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: parsing request url: %w", err)
	}
	if u.Scheme != "dem-contour" {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: unsupported scheme %q, want dem-contour", u.Scheme)
	}

	z, err = strconv.Atoi(u.Host)
	if err != nil {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: invalid zoom %q: %w", u.Host, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: expected {z}/{x}/{y} path, got %q", u.Path)
	}
	x, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: invalid x %q: %w", parts[0], err)
	}
	y, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, ContourTileOptions{}, fmt.Errorf("config: invalid y %q: %w", parts[1], err)
	}

	opts, err = DecodeOptions(u.Query())
	if err != nil {
		return 0, 0, 0, ContourTileOptions{}, err
	}
	return z, x, y, opts, nil
}

// DecodeOptions decodes recognized query keys over Defaults(). Numeric keys
// parse as float (per spec §6) and are then narrowed to their field's
// concrete type. Unrecognized keys are ignored.
func DecodeOptions(values url.Values) (ContourTileOptions, error) {
	opts := Defaults()

	if v := values.Get("contourLayer"); v != "" {
		opts.ContourLayer = v
	}
	if v := values.Get("elevationKey"); v != "" {
		opts.ElevationKey = v
	}
	if v := values.Get("levelKey"); v != "" {
		opts.LevelKey = v
	}
	if v := values.Get("splitMode"); v != "" {
		opts.SplitMode = SplitMode(v)
	}

	var floatErr error
	setFloat := func(key string, dst *float64) {
		if v := values.Get(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				floatErr = fmt.Errorf("config: %s=%q is not numeric: %w", key, v, err)
				return
			}
			*dst = n
		}
	}
	setInt := func(key string, dst *int) {
		if v := values.Get(key); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				floatErr = fmt.Errorf("config: %s=%q is not numeric: %w", key, v, err)
				return
			}
			*dst = int(n)
		}
	}

	setFloat("multiplier", &opts.Multiplier)
	setFloat("buffer", &opts.Buffer)
	setFloat("simplify", &opts.Simplify)
	setInt("overzoom", &opts.Overzoom)
	setInt("extent", &opts.Extent)
	setInt("subsampleBelow", &opts.SubsampleBelow)
	if floatErr != nil {
		return ContourTileOptions{}, floatErr
	}

	if v := values.Get("thresholds"); v != "" {
		tables, err := parseThresholds(v)
		if err != nil {
			return ContourTileOptions{}, err
		}
		opts.Thresholds = tables
	}

	if err := opts.Validate(); err != nil {
		return ContourTileOptions{}, err
	}
	return opts, nil
}
