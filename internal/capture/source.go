package capture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
)

// ImageFile decodes a PNG, JPEG or SVG once and serves it scaled to width x
// height. A zero dimension keeps the image's own size on that axis.
func ImageFile(path string, width, height int) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		img, err := rasterizeSVG(path, width, height)
		if err != nil {
			return nil, err
		}
		return func(time.Time) (*image.RGBA, error) { return img, nil }, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	img := Scale(src, width, height)
	return func(time.Time) (*image.RGBA, error) { return img, nil }, nil
}

// rasterizeSVG renders an SVG at width x height, defaulting to its view
// box. Transparent areas come out black on the panel.
func rasterizeSVG(path string, width, height int) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	icon, err := oksvg.ReadIconStream(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if width <= 0 {
		width = int(math.Ceil(icon.ViewBox.W))
	}
	if height <= 0 {
		height = int(math.Ceil(icon.ViewBox.H))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%s: no view box, pass a size", path)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	icon.SetTarget(0, 0, float64(width), float64(height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}

// Scale converts src to RGBA at width x height.
func Scale(src image.Image, width, height int) *image.RGBA {
	b := src.Bounds()
	if width <= 0 {
		width = b.Dx()
	}
	if height <= 0 {
		height = b.Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	if width == b.Dx() && height == b.Dy() {
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// Pattern renders vertical color bars that scroll one bar width per second,
// so dropped or misplaced tiles are easy to spot.
func Pattern(width, height int) Source {
	bars := []color.RGBA{
		{255, 255, 255, 255},
		{255, 255, 0, 255},
		{0, 255, 255, 255},
		{0, 255, 0, 255},
		{255, 0, 255, 255},
		{255, 0, 0, 255},
		{0, 0, 255, 255},
		{0, 0, 0, 255},
	}
	return func(t time.Time) (*image.RGBA, error) {
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		barW := max(1, width/len(bars))
		shift := int(t.UnixMilli()%int64(1000*len(bars))) * barW / 1000
		for x := 0; x < width; x++ {
			c := bars[((x+shift)/barW)%len(bars)]
			draw.Draw(img, image.Rect(x, 0, x+1, height), &image.Uniform{c}, image.Point{}, draw.Src)
		}
		return img, nil
	}
}
