package extract

import (
	"errors"
	"image"
	"image/color"
	"sync"

	"github.com/ivlev/uloha2doc/internal/region"
	"github.com/ivlev/uloha2doc/internal/source"
)

// fakeSource serves fixed text layouts and paints each page a distinct gray.
type fakeSource struct {
	pages     []source.Page
	renderErr error

	mu       sync.Mutex
	rendered []int
}

func newFakeSource(width, height float64, headerYs ...[]float64) *fakeSource {
	src := &fakeSource{}
	for i, ys := range headerYs {
		page := source.Page{Index: i, Width: width, Height: height}
		for n, y := range ys {
			page.Blocks = append(page.Blocks,
				region.TextBlock{X0: 60, Y0: y, X1: 140, Y1: y + 12, Text: headerText(n + 1)},
				region.TextBlock{X0: 60, Y0: y + 20, X1: 500, Y1: y + 32, Text: "Riešte rovnicu."},
			)
		}
		src.pages = append(src.pages, page)
	}
	return src
}

func headerText(n int) string {
	return "Úloha " + string(rune('0'+n))
}

func (f *fakeSource) PageCount() int { return len(f.pages) }

func (f *fakeSource) LoadPage(index int) (source.Page, error) {
	if index >= len(f.pages) {
		return source.Page{}, errors.New("no such page")
	}
	return f.pages[index], nil
}

func (f *fakeSource) RenderPage(index int, dpi int) (image.Image, error) {
	f.mu.Lock()
	f.rendered = append(f.rendered, index)
	f.mu.Unlock()
	if f.renderErr != nil {
		return nil, f.renderErr
	}

	p := f.pages[index]
	scale := float64(dpi) / 72
	img := image.NewGray(image.Rect(0, 0, int(p.Width*scale), int(p.Height*scale)))
	shade := color.Gray{Y: uint8(40 * (index + 1))}
	for i := range img.Pix {
		img.Pix[i] = shade.Y
	}
	return img, nil
}

func (f *fakeSource) Close() error { return nil }
