package report

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// SerialToQR creates a QR code PNG encoding a part's serial number,
// typically the VINI SN keyword value.
func SerialToQR(serial string, size int) ([]byte, error) {
	normalized := sanitizeSerial(serial)
	if normalized == "" {
		return nil, fmt.Errorf("serial number is empty")
	}
	if size <= 0 {
		size = 128
	}
	png, err := qrcode.Encode(normalized, qrcode.Medium, size)
	if err != nil {
		return nil, err
	}
	return png, nil
}

func sanitizeSerial(serial string) string {
	upper := strings.ToUpper(strings.TrimSpace(serial))
	var b strings.Builder
	for _, r := range upper {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r == '-' || r == '.':
			b.WriteRune(r)
		}
	}
	return b.String()
}
