package region

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// HeaderWord opens every problem header.
const HeaderWord = "Úloha"

// IsHeader reports whether text, after trimming, starts with "Úloha"
// followed by whitespace and at least one decimal digit.
func IsHeader(text string) bool {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, HeaderWord) {
		return false
	}
	s = s[len(HeaderWord):]

	spaces := 0
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		if !unicode.IsSpace(r) {
			break
		}
		s = s[size:]
		spaces++
	}
	if spaces == 0 || len(s) == 0 {
		return false
	}
	return s[0] >= '0' && s[0] <= '9'
}

// Headers returns the header blocks in their original discovery order.
func Headers(blocks []TextBlock) []TextBlock {
	var headers []TextBlock
	for _, b := range blocks {
		if IsHeader(b.Text) {
			headers = append(headers, b)
		}
	}
	return headers
}
