// Package document assembles the cropped region images into a single
// DOCX or PDF file with an author caption under every image.
package document

import (
	"context"
	"fmt"
	"image/png"
	"os"
)

const (
	FormatDocx = "docx"
	FormatPDF  = "pdf"
)

// Entry is one image placed in the document.
type Entry struct {
	ImagePath string
	Page      int // 0-based
	Label     string
}

// Options controls the layout and metadata of the written document.
type Options struct {
	WidthInches  float64
	CaptionLabel string // plain run written before the placeholder
	Placeholder  string // bold run the author replaces by hand
	Author       string
	Append       bool // keep the body of an existing DOCX
	TraceQR      bool
	SourceName   string // PDF file name encoded into trace codes
}

func DefaultOptions() Options {
	return Options{
		WidthInches:  6.0,
		CaptionLabel: "Author: ",
		Placeholder:  "text",
	}
}

type Assembler interface {
	Assemble(ctx context.Context, entries []Entry) error
}

// New returns the assembler writing format to path.
func New(format, path string, opts Options) (Assembler, error) {
	switch format {
	case FormatDocx, "":
		return &DocxAssembler{Path: path, Opts: opts}, nil
	case FormatPDF:
		if opts.Append {
			return nil, fmt.Errorf("append mode is not supported for %s output", format)
		}
		return &PDFAssembler{Path: path, Opts: opts}, nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// CreateEmpty writes a valid document without any entries.
func CreateEmpty(format, path string, opts Options) error {
	opts.Append = false
	opts.TraceQR = false
	a, err := New(format, path, opts)
	if err != nil {
		return err
	}
	return a.Assemble(context.Background(), nil)
}

// imageSize returns the pixel size of a PNG on disk.
func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, err := png.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("reading %s: %w", path, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return 0, 0, fmt.Errorf("reading %s: empty image", path)
	}
	return cfg.Width, cfg.Height, nil
}
