package region

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultLabelLength is the number of runes kept from the header text.
const DefaultLabelLength = 8

// ImageExt is appended to every region file name.
const ImageExt = ".png"

// Label turns header text into a file-name friendly identifier: the text is
// trimmed, whitespace and path separators become underscores and the result
// is cut to n runes. The same text always yields the same label.
func Label(text string, n int) string {
	s := strings.TrimSpace(text)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '/' || r == '\\' {
			return '_'
		}
		return r
	}, s)
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes)
}

// FileName builds the image file name for a label. With pageSuffix set the
// 1-based page number is appended so equal labels on different pages do not
// overwrite each other.
func FileName(label string, page int, pageSuffix bool) string {
	if pageSuffix {
		return fmt.Sprintf("%s_p%d%s", label, page+1, ImageExt)
	}
	return label + ImageExt
}
