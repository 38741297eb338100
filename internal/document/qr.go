package document

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

const qrPixels = 256

// TraceText identifies where a region came from.
func TraceText(source string, page int, label string) string {
	return fmt.Sprintf("%s p.%d %s", source, page+1, label)
}

// TraceQR encodes the trace text of an entry as a PNG QR code.
func TraceQR(source string, e Entry) ([]byte, error) {
	png, err := qrcode.Encode(TraceText(source, e.Page, e.Label), qrcode.Medium, qrPixels)
	if err != nil {
		return nil, fmt.Errorf("encoding trace code for %s: %w", e.Label, err)
	}
	return png, nil
}
