package raster

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ivlev/uloha2doc/internal/region"
)

func TestPixelRect(t *testing.T) {
	bounds := image.Rect(0, 0, 600, 800)

	// 144 DPI doubles point coordinates
	got := PixelRect(region.Rect{X0: 35, Y0: 46, X1: 265, Y1: 200}, 144, bounds)
	if want := image.Rect(70, 92, 530, 400); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	clipped := PixelRect(region.Rect{X0: 35, Y0: -4, X1: 565, Y1: 900}, 72, bounds)
	if want := image.Rect(35, 0, 565, 800); clipped != want {
		t.Errorf("Expected clipped %v, got %v", want, clipped)
	}
}

func TestCrop(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 100, 100))
	page.Set(20, 30, color.RGBA{R: 255, A: 255})

	img, err := Crop(page, region.Rect{X0: 10, Y0: 20, X1: 60, Y1: 50}, 72)
	if err != nil {
		t.Fatalf("Crop failed: %v", err)
	}
	defer PutImage(img)

	if img.Bounds() != image.Rect(0, 0, 50, 30) {
		t.Errorf("Unexpected crop bounds: %v", img.Bounds())
	}
	if c := img.RGBAAt(10, 10); c.R != 255 {
		t.Errorf("Expected the red pixel at (10,10), got %v", c)
	}
}

func TestCropOutsidePage(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 100, 100))
	_, err := Crop(page, region.Rect{X0: 10, Y0: 200, X1: 60, Y1: 300}, 72)
	if !errors.Is(err, ErrOutsidePage) {
		t.Errorf("Expected ErrOutsidePage, got %v", err)
	}
}

func TestImagePoolReuseAcrossHeights(t *testing.T) {
	pool := newImagePool()

	tall := pool.Get(image.Rect(0, 0, 8, 20))
	if tall.Bounds() != image.Rect(0, 0, 8, 20) || len(tall.Pix) != 4*8*20 {
		t.Fatalf("Unexpected buffer %v with %d bytes", tall.Bounds(), len(tall.Pix))
	}
	pool.Put(tall)
	pool.Put(nil)

	short := pool.Get(image.Rect(0, 0, 8, 5))
	if &short.Pix[0] != &tall.Pix[0] {
		t.Errorf("Expected the taller buffer to be reused")
	}
	if short.Bounds() != image.Rect(0, 0, 8, 5) || len(short.Pix) != 4*8*5 || short.Stride != 32 {
		t.Errorf("Unexpected re-sliced buffer %v, %d bytes, stride %d", short.Bounds(), len(short.Pix), short.Stride)
	}
	pool.Put(short)

	// too small for the request, a fresh buffer is allocated
	if taller := pool.Get(image.Rect(0, 0, 8, 40)); len(taller.Pix) != 4*8*40 {
		t.Errorf("Expected a fresh 8x40 buffer, got %d bytes", len(taller.Pix))
	}
	if other := pool.Get(image.Rect(0, 0, 6, 5)); other.Stride != 24 {
		t.Errorf("Expected a buffer for the other width, got stride %d", other.Stride)
	}
}

func TestImagePoolKeepsLargestBuffers(t *testing.T) {
	pool := newImagePool()
	for h := 1; h <= maxIdle; h++ {
		pool.Put(image.NewRGBA(image.Rect(0, 0, 4, h)))
	}
	big := image.NewRGBA(image.Rect(0, 0, 4, 100))
	pool.Put(big)

	if got := pool.Get(image.Rect(0, 0, 4, 100)); &got.Pix[0] != &big.Pix[0] {
		t.Errorf("Expected the largest buffer to be kept when the pool is full")
	}
}

func TestCropReusesPooledBuffer(t *testing.T) {
	page := image.NewGray(image.Rect(0, 0, 100, 100))
	for i := range page.Pix {
		page.Pix[i] = 200
	}

	first, err := Crop(page, region.Rect{X0: 10, Y0: 0, X1: 90, Y1: 60}, 72)
	if err != nil {
		t.Fatal(err)
	}
	PutImage(first)

	second, err := Crop(page, region.Rect{X0: 10, Y0: 60, X1: 90, Y1: 100}, 72)
	if err != nil {
		t.Fatal(err)
	}
	defer PutImage(second)
	if second.Bounds() != image.Rect(0, 0, 80, 40) {
		t.Fatalf("Unexpected crop bounds %v", second.Bounds())
	}
	if c := second.RGBAAt(79, 39); c.R != 200 || c.A != 255 {
		t.Errorf("Expected the reused buffer to be fully overwritten, got %v", c)
	}
}

func TestSavePNGOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Úloha_1.png")

	if err := SavePNG(path, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("first SavePNG failed: %v", err)
	}
	if err := SavePNG(path, image.NewRGBA(image.Rect(0, 0, 9, 3))); err != nil {
		t.Fatalf("second SavePNG failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Width != 9 || cfg.Height != 3 {
		t.Errorf("Expected the second image (9x3), got %dx%d", cfg.Width, cfg.Height)
	}
}
