// Package region finds "Úloha <n>" headers among the text blocks of a page and
// derives the crop rectangle of every problem statement that follows them.
package region

// TextBlock is a run of text on a page with its bounding box.
// Coordinates are PDF points with the origin in the top-left corner.
type TextBlock struct {
	X0, Y0, X1, Y1 float64
	Text           string
}

// Rect is an axis-aligned rectangle in page points.
type Rect struct {
	X0, Y0, X1, Y1 float64
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// Empty reports whether the rectangle has no positive area.
func (r Rect) Empty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Region is the crop computed for one header.
type Region struct {
	Page   int
	Index  int // position on the page, top to bottom
	Rect   Rect
	Label  string // trimmed header text
	Header TextBlock
}
