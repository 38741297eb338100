package source

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ivlev/uloha2doc/internal/region"
)

// ParseStextHTML reads MuPDF's structured-text HTML output:
//
//	<div id="page0" style="width:595.3pt;height:841.9pt">
//	<p style="top:72.0pt;left:56.7pt;line-height:12.0pt"><span ...>Úloha 1</span></p>
//
// MuPDF prints one positioned <p> per line. Consecutive lines of the same
// paragraph are grouped into one block, so a wrapped line that happens to start
// with a header word stays inside its statement. MuPDF does not print the right
// edge of a line, so X1 is set to the page width.
func ParseStextHTML(r io.Reader) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Page{}, fmt.Errorf("parsing text layout: %w", err)
	}

	var page Page
	if div := doc.Find("div[id^='page']").First(); div.Length() > 0 {
		style := parseStyle(div.AttrOr("style", ""))
		page.Width = points(style["width"])
		page.Height = points(style["height"])
	}

	var lines []region.TextBlock
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		style := parseStyle(p.AttrOr("style", ""))
		top, ok := style["top"]
		if !ok {
			return
		}
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			return
		}
		y0 := points(top)
		lines = append(lines, region.TextBlock{
			X0:   points(style["left"]),
			Y0:   y0,
			X1:   page.Width,
			Y1:   y0 + points(style["line-height"]),
			Text: text,
		})
	})
	page.Blocks = groupLines(lines)
	return page, nil
}

// paragraphGap is the largest gap between two lines of one paragraph, as a
// share of the line height. Headers and problems are set further apart.
const paragraphGap = 0.5

// groupLines joins lines that continue the block above them. A line continues
// a block when it starts right below the previous line, within half a line
// height, and its left edge stays within two line heights of that line.
func groupLines(lines []region.TextBlock) []region.TextBlock {
	var blocks []region.TextBlock
	for i, l := range lines {
		if i > 0 && continuesLine(lines[i-1], l) {
			b := &blocks[len(blocks)-1]
			b.Text += "\n" + l.Text
			b.X0 = math.Min(b.X0, l.X0)
			b.Y1 = math.Max(b.Y1, l.Y1)
			continue
		}
		blocks = append(blocks, l)
	}
	return blocks
}

func continuesLine(prev, l region.TextBlock) bool {
	height := l.Y1 - l.Y0
	if height <= 0 {
		return false
	}
	gap := l.Y0 - prev.Y1
	if gap < -height || gap > paragraphGap*height {
		return false
	}
	return math.Abs(l.X0-prev.X0) <= 2*height
}

// parseStyle splits an inline CSS declaration list.
func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		props[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}
	return props
}

// points converts a CSS length in pt to a float. Unknown values give 0.
func points(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "pt")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
