// Package raster cuts page regions out of rendered pages and stores them as PNG.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/draw"

	"github.com/ivlev/uloha2doc/internal/region"
)

// ErrOutsidePage is returned when a region does not overlap the rendered page.
var ErrOutsidePage = errors.New("region lies outside the page")

// PointsPerInch is the PDF user-space resolution.
const PointsPerInch = 72.0

// PixelRect converts a rectangle in points to pixels of a page rendered at dpi,
// clipped to the page bounds.
func PixelRect(r region.Rect, dpi int, bounds image.Rectangle) image.Rectangle {
	scale := float64(dpi) / PointsPerInch
	px := image.Rect(
		int(math.Floor(r.X0*scale)),
		int(math.Floor(r.Y0*scale)),
		int(math.Ceil(r.X1*scale)),
		int(math.Ceil(r.Y1*scale)),
	).Add(bounds.Min)
	return px.Intersect(bounds)
}

// Crop copies the region out of a page rendered at dpi into a pooled buffer
// anchored at (0,0). Callers hand the buffer back with PutImage.
func Crop(page image.Image, r region.Rect, dpi int) (*image.RGBA, error) {
	src := PixelRect(r, dpi, page.Bounds())
	if src.Empty() {
		return nil, ErrOutsidePage
	}

	dst := GetImage(image.Rect(0, 0, src.Dx(), src.Dy()))
	draw.Copy(dst, image.Point{}, page, src, draw.Src, nil)
	return dst, nil
}

// SavePNG writes img to path, replacing any existing file.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
