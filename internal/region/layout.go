package region

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDegenerate is returned by Validate for rectangles without area.
var ErrDegenerate = errors.New("degenerate region")

// Geometry holds the fixed insets applied around each region.
type Geometry struct {
	Margin  float64 // extends the crop above the header text
	OffsetX float64 // trimmed from both the left and the right page edge
}

// DefaultGeometry matches the insets used for the school problem sheets.
func DefaultGeometry() Geometry {
	return Geometry{Margin: 4, OffsetX: 35}
}

// SortHeaders orders headers top to bottom. Headers sharing the same Y0
// keep their discovery order.
func SortHeaders(headers []TextBlock) []TextBlock {
	sorted := make([]TextBlock, len(headers))
	copy(sorted, headers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y0 < sorted[j].Y0
	})
	return sorted
}

// Layout computes one region per header block found on a page of the given size.
// Each region spans from just above its header to the top of the next header,
// or to the bottom of the page for the last one.
func Layout(page int, blocks []TextBlock, pageWidth, pageHeight float64, g Geometry) []Region {
	headers := SortHeaders(Headers(blocks))
	if len(headers) == 0 {
		return nil
	}

	regions := make([]Region, 0, len(headers))
	for i, h := range headers {
		bottom := pageHeight
		if i+1 < len(headers) {
			bottom = headers[i+1].Y0
		}
		regions = append(regions, Region{
			Page:  page,
			Index: i,
			Rect: Rect{
				X0: g.OffsetX,
				Y0: h.Y0 - g.Margin,
				X1: pageWidth - g.OffsetX,
				Y1: bottom,
			},
			Label:  headerLine(h.Text),
			Header: h,
		})
	}
	return regions
}

// headerLine is the first line of a header block. Paragraph blocks carry the
// statement below the header in the same text.
func headerLine(text string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(line)
}

// Validate rejects regions that cannot be rendered.
// A negative top edge is accepted; rendering clips it to the page.
func Validate(r Region) error {
	if r.Rect.Empty() {
		return fmt.Errorf("%w: page %d %q rect (%.1f,%.1f,%.1f,%.1f)",
			ErrDegenerate, r.Page+1, r.Label, r.Rect.X0, r.Rect.Y0, r.Rect.X1, r.Rect.Y1)
	}
	return nil
}
