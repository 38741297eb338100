package extract

import (
	"fmt"

	"github.com/ivlev/uloha2doc/internal/region"
)

// ErrDegenerateRegion marks a region whose rectangle has no area.
var ErrDegenerateRegion = region.ErrDegenerate

// RenderError reports the region that could not be rendered.
type RenderError struct {
	Page  int // 0-based
	Label string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render page %d %q: %v", e.Page+1, e.Label, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
