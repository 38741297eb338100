// Package testpdf writes small problem sheets used as fixtures by the tests.
package testpdf

import (
	"fmt"

	"codeberg.org/go-pdf/fpdf"
)

// Line is a line of text whose baseline sits Y points below the top of the page.
type Line struct {
	Y    float64
	Text string
	Bold bool
}

// Write creates an A4 PDF at path with one page per entry in pages.
func Write(path string, pages [][]Line) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, lines := range pages {
		pdf.AddPage()
		for _, l := range lines {
			style := ""
			if l.Bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, 12)
			pdf.Text(72, l.Y, tr(l.Text))
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing fixture %s: %w", path, err)
	}
	return nil
}

// TwoProblemSheet is the two-page sheet used by the end-to-end tests:
// "Úloha 1" near the top of page 1 and "Úloha 2" lower on page 2.
func TwoProblemSheet() [][]Line {
	return [][]Line{
		{
			{Y: 60, Text: "Matematická olympiáda"},
			{Y: 110, Text: "Úloha 1", Bold: true},
			{Y: 130, Text: "Dokážte, že súčet dvoch párnych čísel je párny."},
		},
		{
			{Y: 310, Text: "Úloha 2", Bold: true},
			{Y: 330, Text: "Nájdite všetky prvočísla p, pre ktoré je p+2 prvočíslo."},
		},
	}
}

// WrappedStatementSheet has one problem whose statement wraps so that its
// third line starts with "Úloha 2".
func WrappedStatementSheet() [][]Line {
	return [][]Line{
		{
			{Y: 110, Text: "Úloha 1", Bold: true},
			{Y: 124, Text: "Vypočítajte obsah trojuholníka, ktorého strany poznáte z riešenia"},
			{Y: 138, Text: "Úloha 2 z minulého kola, a dokážte, že je celočíselný."},
			{Y: 152, Text: "Výsledok zdôvodnite."},
		},
	}
}
