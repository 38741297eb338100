package document

import (
	"bytes"
	"context"
	"fmt"

	"codeberg.org/go-pdf/fpdf"
)

const (
	pdfMargin     = 72.0 // one inch on every side
	pdfLineHeight = 14.0
	pdfQRSide     = 0.6 * 72
)

// PDFAssembler lays the entries out on A4 pages: image, spacing, caption.
type PDFAssembler struct {
	Path string
	Opts Options
}

func (a *PDFAssembler) Assemble(ctx context.Context, entries []Entry) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetAuthor(a.Opts.Author, true)
	pdf.SetCreator("uloha2doc", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	_, pageH := pdf.GetPageSize()
	maxH := pageH - 2*pdfMargin - 3*pdfLineHeight

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		w, h, err := imageSize(e.ImagePath)
		if err != nil {
			return err
		}
		imgW := a.Opts.WidthInches * 72
		imgH := imgW * float64(h) / float64(w)
		if imgH > maxH {
			imgW *= maxH / imgH
			imgH = maxH
		}

		pdf.Ln(pdfLineHeight)
		if pdf.GetY()+imgH+2*pdfLineHeight > pageH-pdfMargin {
			pdf.AddPage()
		}
		opts := fpdf.ImageOptions{ImageType: "PNG"}
		name := fmt.Sprintf("entry%d", i)
		pdf.RegisterImageOptions(e.ImagePath, opts)
		pdf.ImageOptions(e.ImagePath, pdfMargin, pdf.GetY(), imgW, imgH, true, opts, 0, "")
		pdf.Ln(pdfLineHeight)

		pdf.SetFont("Helvetica", "", 12)
		pdf.Write(pdfLineHeight, tr(a.Opts.CaptionLabel))
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Write(pdfLineHeight, tr(a.Opts.Placeholder))

		if a.Opts.TraceQR {
			code, err := TraceQR(a.Opts.SourceName, e)
			if err != nil {
				return err
			}
			qrOpts := fpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name+"-qr", qrOpts, bytes.NewReader(code))
			pdf.ImageOptions(name+"-qr", pdf.GetX()+pdfLineHeight, pdf.GetY(), pdfQRSide, pdfQRSide, false, qrOpts, 0, "")
			pdf.Ln(pdfQRSide)
		}
		pdf.Ln(pdfLineHeight)

		if err := pdf.Error(); err != nil {
			return fmt.Errorf("adding %s: %w", e.ImagePath, err)
		}
	}

	if err := pdf.OutputFileAndClose(a.Path); err != nil {
		return fmt.Errorf("writing %s: %w", a.Path, err)
	}
	return nil
}
