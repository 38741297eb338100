package source

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tsawler/tabula/layout"
	"github.com/tsawler/tabula/model"

	"github.com/ivlev/uloha2doc/internal/region"
	"github.com/ivlev/uloha2doc/internal/testpdf"
)

func writeSheet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sheet.pdf")
	if err := testpdf.Write(path, testpdf.TwoProblemSheet()); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFitzPDFSource(t *testing.T) {
	src, err := NewFitzPDFSource(writeSheet(t))
	if err != nil {
		t.Fatalf("NewFitzPDFSource failed: %v", err)
	}
	defer src.Close()

	if src.PageCount() != 2 {
		t.Fatalf("Expected 2 pages, got %d", src.PageCount())
	}

	page, err := src.LoadPage(0)
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	if math.Abs(page.Width-595) > 1 || math.Abs(page.Height-842) > 1 {
		t.Errorf("Expected an A4 page, got %.1fx%.1f", page.Width, page.Height)
	}

	headers := region.Headers(page.Blocks)
	if len(headers) != 1 {
		t.Fatalf("Expected 1 header on page 1, got %d (blocks: %+v)", len(headers), page.Blocks)
	}
	if !strings.HasPrefix(strings.TrimSpace(headers[0].Text), "Úloha 1") {
		t.Errorf("Expected header starting with %q, got %q", "Úloha 1", headers[0].Text)
	}
	// baseline at 110pt, the line box starts one ascent above it
	if headers[0].Y0 < 90 || headers[0].Y0 > 110 {
		t.Errorf("Header top %.1f is not just above the 110pt baseline", headers[0].Y0)
	}

	img, err := src.RenderPage(1, 72)
	if err != nil {
		t.Fatalf("RenderPage failed: %v", err)
	}
	if b := img.Bounds(); math.Abs(float64(b.Dx())-595) > 2 {
		t.Errorf("Expected a 72 DPI render about 595px wide, got %d", b.Dx())
	}
}

func TestFitzWrappedStatementIsOneRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrapped.pdf")
	if err := testpdf.Write(path, testpdf.WrappedStatementSheet()); err != nil {
		t.Fatal(err)
	}
	src, err := NewFitzPDFSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	page, err := src.LoadPage(0)
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	regions := region.Layout(0, page.Blocks, page.Width, page.Height, region.DefaultGeometry())
	if len(regions) != 1 {
		t.Fatalf("Expected 1 region, got %d (blocks: %+v)", len(regions), page.Blocks)
	}
	if regions[0].Label != "Úloha 1" {
		t.Errorf("Expected label %q, got %q", "Úloha 1", regions[0].Label)
	}
	if regions[0].Rect.Y1 != page.Height {
		t.Errorf("Expected the region to reach the page bottom, got %.1f", regions[0].Rect.Y1)
	}
}

func TestOpenUnreadable(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.pdf"), "fitz")
	if !errors.Is(err, ErrSourceUnreadable) {
		t.Errorf("Expected ErrSourceUnreadable, got %v", err)
	}

	if _, err := Open("x.pdf", "ocr"); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestTabulaSource(t *testing.T) {
	src, err := Open(writeSheet(t), "tabula")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer src.Close()

	page, err := src.LoadPage(1)
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}

	headers := region.Headers(page.Blocks)
	if len(headers) != 1 {
		t.Fatalf("Expected 1 header on page 2, got %d (blocks: %+v)", len(headers), page.Blocks)
	}
	if !strings.HasPrefix(strings.TrimSpace(headers[0].Text), "Úloha 2") {
		t.Errorf("Expected header starting with %q, got %q", "Úloha 2", headers[0].Text)
	}
	// flipped to a top-left origin: the 310pt baseline stays near the middle of the page
	if headers[0].Y0 < 280 || headers[0].Y0 > 320 {
		t.Errorf("Header top %.1f is not near the 310pt baseline", headers[0].Y0)
	}
}

func TestTabulaPageFlip(t *testing.T) {
	blocks := []layout.Block{{BBox: model.BBox{X: 100, Y: 700.25, Width: 50, Height: 12}}}

	page := tabulaPage(0, []float64{0, 0, 595.5, 842.25}, blocks)
	if page.Width != 595.5 || page.Height != 842.25 {
		t.Errorf("Expected the fractional page box, got %vx%v", page.Width, page.Height)
	}
	if b := page.Blocks[0]; b.Y0 != 130 || b.Y1 != 142 || b.X0 != 100 || b.X1 != 150 {
		t.Errorf("Unexpected flipped block %+v", b)
	}

	cropped := tabulaPage(0, []float64{20, 30, 520, 800}, blocks)
	if cropped.Width != 500 || cropped.Height != 770 {
		t.Errorf("Expected the crop box size, got %vx%v", cropped.Width, cropped.Height)
	}
	if b := cropped.Blocks[0]; b.Y0 != 87.75 || b.X0 != 80 {
		t.Errorf("Expected the block relative to the crop box, got %+v", b)
	}
}

func TestTabulaPageUsesPDFPageBox(t *testing.T) {
	path := writeSheet(t)
	tab, err := NewTabulaSource(path)
	if err != nil {
		t.Fatal(err)
	}
	defer tab.Close()

	page, err := tab.LoadPage(0)
	if err != nil {
		t.Fatalf("LoadPage failed: %v", err)
	}
	// fpdf writes the A4 media box in points with fractions
	if math.Abs(page.Width-595.28) > 0.01 || math.Abs(page.Height-841.89) > 0.01 {
		t.Errorf("Expected the exact A4 media box, got %.2fx%.2f", page.Width, page.Height)
	}
}
