package source

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/gen2brain/go-fitz"

	"github.com/ivlev/uloha2doc/internal/region"
)

// ErrSourceUnreadable is returned when the input cannot be opened as a PDF.
var ErrSourceUnreadable = errors.New("source unreadable")

// Page is the text layout of one page in PDF points.
type Page struct {
	Index  int
	Width  float64
	Height float64
	Blocks []region.TextBlock
}

type Source interface {
	PageCount() int
	LoadPage(index int) (Page, error)
	RenderPage(index int, dpi int) (image.Image, error)
	Close() error
}

// FitzPDFSource reads text blocks and renders pages through MuPDF.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, path, err)
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) PageCount() int {
	return f.doc.NumPage()
}

// LoadPage extracts the page's text blocks, one per paragraph.
func (f *FitzPDFSource) LoadPage(index int) (Page, error) {
	markup, err := f.doc.HTML(index, false)
	if err != nil {
		return Page{}, fmt.Errorf("page %d: extracting text: %w", index+1, err)
	}
	page, err := ParseStextHTML(strings.NewReader(markup))
	if err != nil {
		return Page{}, fmt.Errorf("page %d: %w", index+1, err)
	}
	page.Index = index

	if page.Width <= 0 || page.Height <= 0 {
		w, h, err := f.pageSize(index)
		if err != nil {
			return Page{}, err
		}
		page.Width, page.Height = w, h
	}
	return page, nil
}

func (f *FitzPDFSource) pageSize(index int) (float64, float64, error) {
	rect, err := f.doc.Bound(index)
	if err != nil {
		return 0, 0, fmt.Errorf("page %d: bounds: %w", index+1, err)
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

// RenderPage opens its own document so pages can be rendered from several
// goroutines at once.
func (f *FitzPDFSource) RenderPage(index int, dpi int) (image.Image, error) {
	workerDoc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer workerDoc.Close()
	return workerDoc.ImageDPI(index, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
