package source

import (
	"fmt"

	"github.com/tsawler/tabula"
	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/reader"

	"github.com/ivlev/uloha2doc/internal/region"
)

// TabulaSource takes text blocks from tabula's pure-Go layout analysis and
// keeps MuPDF for rendering. Tabula groups lines into paragraph blocks with
// its own spacing rules, which makes it a second opinion on hard layouts.
type TabulaSource struct {
	*FitzPDFSource
}

func NewTabulaSource(path string) (*TabulaSource, error) {
	f, err := NewFitzPDFSource(path)
	if err != nil {
		return nil, err
	}
	return &TabulaSource{FitzPDFSource: f}, nil
}

// LoadPage opens its own reader, so pages can be loaded from several
// goroutines at once.
func (s *TabulaSource) LoadPage(index int) (Page, error) {
	r, err := reader.Open(s.path)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}
	defer r.Close()

	pg, err := r.GetPage(index)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}
	box, err := pg.CropBox()
	if err != nil {
		return Page{}, fmt.Errorf("page %d: page box: %w", index+1, err)
	}

	blocks, err := tabula.FromReader(r).Pages(index + 1).Blocks()
	if err != nil {
		return Page{}, fmt.Errorf("page %d: tabula blocks: %w", index+1, err)
	}
	return tabulaPage(index, box, blocks), nil
}

// tabulaPage moves tabula's boxes from PDF user space, origin at the bottom
// left, into the top-left page space MuPDF renders in. box is the visible
// page box [x0 y0 x1 y1].
func tabulaPage(index int, box []float64, blocks []layout.Block) Page {
	left, top := box[0], box[3]
	page := Page{Index: index, Width: box[2] - box[0], Height: box[3] - box[1]}
	for i := range blocks {
		b := &blocks[i]
		y0 := top - (b.BBox.Y + b.BBox.Height)
		page.Blocks = append(page.Blocks, region.TextBlock{
			X0:   b.BBox.X - left,
			Y0:   y0,
			X1:   b.BBox.X - left + b.BBox.Width,
			Y1:   y0 + b.BBox.Height,
			Text: b.GetText(),
		})
	}
	return page
}
