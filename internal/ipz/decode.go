package ipz

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789abcdef"

func hexString(data []byte) string {
	var b strings.Builder
	b.Grow(len(data) * 2)
	for _, c := range data {
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0x0F])
	}
	return b.String()
}

// decodeKeyword turns a keyword's raw bytes into its string representation
// per the encoding scheme. Payloads shorter than the scheme's fixed size
// fail; no implicit padding or truncation is introduced.
func decodeKeyword(enc Encoding, data []byte) (string, error) {
	switch enc {
	case EncodingASCII:
		return string(data), nil
	case EncodingRaw:
		return hexString(data), nil
	case EncodingB1:
		return decodeMAC(data)
	case EncodingMB:
		return decodeBuildDate(data)
	case EncodingUD:
		return decodeUUID(data)
	default:
		return string(data), nil
	}
}

// decodeMAC renders the first six payload bytes as AA:BB:CC:DD:EE:FF. The
// B1 keyword carries trailing bytes past the MAC; they are not part of the
// address.
func decodeMAC(data []byte) (string, error) {
	if len(data) < macLenBytes {
		return "", errShort("mac", macLenBytes, len(data))
	}
	var b strings.Builder
	b.Grow(macLenBytes*3 - 1)
	for i := 0; i < macLenBytes; i++ {
		if i > 0 {
			b.WriteByte(':')
		}
		b.WriteByte(hexDigits[data[i]>>4])
		b.WriteByte(hexDigits[data[i]&0x0F])
	}
	return b.String(), nil
}

// decodeBuildDate renders the packed MB build date as
// "1997-01-01-08:30:00". The first payload byte is reserved; the remaining
// seven are BCD-coded YYYYMMDDHHMMSS.
func decodeBuildDate(data []byte) (string, error) {
	if len(data) < mbLenBytes {
		return "", errShort("build date", mbLenBytes, len(data))
	}
	var b strings.Builder
	b.Grow(19)
	for i := 1; i < mbLenBytes; i++ {
		b.WriteByte(hexDigits[data[i]>>4])
		b.WriteByte(hexDigits[data[i]&0x0F])
		switch i {
		case 2, 3, 4:
			b.WriteByte('-')
		case 5, 6:
			b.WriteByte(':')
		}
	}
	return b.String(), nil
}

// decodeUUID renders sixteen payload bytes in canonical hyphenated form,
// e.g. 123e4567-e89b-12d3-a456-426655440000.
func decodeUUID(data []byte) (string, error) {
	if len(data) < uuidLenBytes {
		return "", errShort("uuid", uuidLenBytes, len(data))
	}
	hex := hexString(data[:uuidLenBytes])
	var b strings.Builder
	b.Grow(36)
	b.WriteString(hex[0:8])
	b.WriteByte('-')
	b.WriteString(hex[8:12])
	b.WriteByte('-')
	b.WriteString(hex[12:16])
	b.WriteByte('-')
	b.WriteString(hex[16:20])
	b.WriteByte('-')
	b.WriteString(hex[20:32])
	return b.String(), nil
}

type shortPayloadError struct {
	what string
	want int
	got  int
}

func (e *shortPayloadError) Error() string {
	return fmt.Sprintf("%s payload too short: %d bytes, need %d", e.what, e.got, e.want)
}

func errShort(what string, want, got int) error {
	return &shortPayloadError{what: what, want: want, got: got}
}
