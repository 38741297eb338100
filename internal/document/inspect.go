package document

import (
	"fmt"
	"strings"

	"github.com/tsawler/tabula/docx"
)

// Info summarises a DOCX file found at the output path.
type Info struct {
	Author   string
	Lines    int
	Captions int
}

// Inspect reads an existing DOCX and counts its text lines and the
// paragraphs starting with captionLabel.
func Inspect(path, captionLabel string) (Info, error) {
	r, err := docx.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("inspecting %s: %w", path, err)
	}
	defer r.Close()

	text, err := r.Text()
	if err != nil {
		return Info{}, fmt.Errorf("inspecting %s: %w", path, err)
	}

	info := Info{Author: r.Metadata().Author}
	if text == "" {
		return info, nil
	}
	lines := strings.Split(text, "\n")
	info.Lines = len(lines)
	for _, l := range lines {
		if captionLabel != "" && strings.HasPrefix(l, captionLabel) {
			info.Captions++
		}
	}
	return info, nil
}
