package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/common/units"
	"github.com/gomutex/godocx/docx"
)

// qrInches is the printed side of a trace code.
const qrInches = 0.6

// DocxAssembler writes a Word document with one image and caption per entry.
type DocxAssembler struct {
	Path string
	Opts Options
}

func (d *DocxAssembler) Assemble(ctx context.Context, entries []Entry) error {
	doc, err := d.open()
	if err != nil {
		return err
	}

	scratch, err := os.MkdirTemp("", "uloha-docx-*")
	if err != nil {
		return fmt.Errorf("creating %s: %w", d.Path, err)
	}
	defer os.RemoveAll(scratch)

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := d.addEntry(doc, e, scratch, i); err != nil {
			return err
		}
	}

	saved := filepath.Join(scratch, "document.docx")
	if err := doc.SaveTo(saved); err != nil {
		return fmt.Errorf("writing %s: %w", d.Path, err)
	}
	return stampCore(saved, d.Path, d.Opts.Author, time.Now())
}

// open starts from the existing document in append mode, otherwise from
// an empty one.
func (d *DocxAssembler) open() (*docx.RootDoc, error) {
	if d.Opts.Append {
		if _, err := os.Stat(d.Path); err == nil {
			doc, err := godocx.OpenDocument(d.Path)
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", d.Path, err)
			}
			return doc, nil
		}
	}
	doc, err := godocx.NewDocument()
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", d.Path, err)
	}
	return doc, nil
}

// addEntry appends spacing, the picture, spacing and the caption. The trace
// code, when enabled, follows the caption as a small picture of its own.
func (d *DocxAssembler) addEntry(doc *docx.RootDoc, e Entry, scratch string, n int) error {
	w, h, err := imageSize(e.ImagePath)
	if err != nil {
		return err
	}
	width := d.Opts.WidthInches
	height := width * float64(h) / float64(w)

	doc.AddParagraph("")
	if _, err := doc.AddPicture(e.ImagePath, units.Inch(width), units.Inch(height)); err != nil {
		return fmt.Errorf("adding %s: %w", e.ImagePath, err)
	}
	doc.AddParagraph("")

	caption := doc.AddParagraph(d.Opts.CaptionLabel)
	caption.AddText(d.Opts.Placeholder).Bold(true)

	if !d.Opts.TraceQR {
		return nil
	}
	code, err := TraceQR(d.Opts.SourceName, e)
	if err != nil {
		return err
	}
	// godocx embeds pictures from files only
	path := filepath.Join(scratch, fmt.Sprintf("trace%d.png", n+1))
	if err := os.WriteFile(path, code, 0644); err != nil {
		return fmt.Errorf("writing trace code: %w", err)
	}
	if _, err := doc.AddPicture(path, units.Inch(qrInches), units.Inch(qrInches)); err != nil {
		return fmt.Errorf("adding trace code for %s: %w", e.Label, err)
	}
	return nil
}
