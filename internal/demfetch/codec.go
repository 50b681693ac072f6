package demfetch

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/gen2brain/webp"
)

// decodeRaster decodes raw image bytes into an image.Image. Supported
// formats: PNG (including Terrarium/Mapbox-encoded PNGs, which are
// ordinary RGB PNGs), JPEG, and WebP via the pure-Go
// github.com/gen2brain/webp decoder.
func decodeRaster(data []byte, format string) (image.Image, error) {
	r := bytes.NewReader(data)
	switch format {
	case "png", "terrarium", "mapbox", "":
		return png.Decode(r)
	case "jpeg", "jpg":
		return jpeg.Decode(r)
	case "webp":
		return webp.Decode(r)
	default:
		return nil, fmt.Errorf("demfetch: unsupported raster format %q", format)
	}
}

// demTileFromImage converts a decoded raster image to a DemTile by applying
// the given pixel encoding to every pixel.
func demTileFromImage(img image.Image, enc Encoding) (*DemTile, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pix := make([]float32, w*h)

	var decode func(color.RGBA) float32
	switch enc {
	case Terrarium:
		decode = terrariumToElevation
	case Mapbox:
		decode = mapboxToElevation
	default:
		return nil, fmt.Errorf("demfetch: unsupported DEM encoding %q", enc)
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			c := color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
			pix[i] = decode(c)
			i++
		}
	}

	return &DemTile{Width: w, Height: h, Pix: pix}, nil
}

// terrariumToElevation converts Terrarium-encoded RGB to elevation, in
// meters, NaN for fully-transparent (nodata) pixels.
//
// elevation = (R*256 + G + B/256) - 32768
func terrariumToElevation(c color.RGBA) float32 {
	if c.A == 0 {
		return float32(math.NaN())
	}
	return float32(float64(c.R)*256.0 + float64(c.G) + float64(c.B)/256.0 - 32768.0)
}

// elevationToTerrarium is the inverse of terrariumToElevation. It is not
// used by the production decode path (the engine never emits raster
// tiles) — it exists so tests can synthesize Terrarium-encoded fixture
// tiles.
func elevationToTerrarium(elevation float64) color.RGBA {
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		return color.RGBA{}
	}
	value := elevation + 32768.0
	if value < 0 {
		value = 0
	}
	if value > 65535.996 {
		value = 65535.996
	}
	r := int(value / 256)
	if r > 255 {
		r = 255
	}
	remainder := value - float64(r)*256.0
	g := int(remainder)
	if g > 255 {
		g = 255
	}
	b := int((remainder - float64(g)) * 256.0)
	if b > 255 {
		b = 255
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// mapboxToElevation converts Mapbox Terrain-RGB encoded RGB to elevation, in
// meters, per the engine's DEM source contract:
//
// elevation = -10000 + (R*65536 + G*256 + B) * 0.1
func mapboxToElevation(c color.RGBA) float32 {
	if c.A == 0 {
		return float32(math.NaN())
	}
	return float32(-10000.0 + (float64(c.R)*65536.0+float64(c.G)*256.0+float64(c.B))*0.1)
}

// elevationToMapbox is the inverse of mapboxToElevation, used only to build
// synthetic fixtures in tests.
func elevationToMapbox(elevation float64) color.RGBA {
	if math.IsNaN(elevation) || math.IsInf(elevation, 0) {
		return color.RGBA{}
	}
	value := (elevation + 10000.0) / 0.1
	if value < 0 {
		value = 0
	}
	if value > 16777215 {
		value = 16777215
	}
	iv := int64(value)
	r := (iv >> 16) & 0xff
	g := (iv >> 8) & 0xff
	b := iv & 0xff
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}
