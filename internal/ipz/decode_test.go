package ipz

import (
	"errors"
	"testing"
)

func TestDecodeKeyword(t *testing.T) {
	tests := []struct {
		name    string
		enc     Encoding
		data    []byte
		want    string
		wantErr bool
	}{
		{name: "ascii", enc: EncodingASCII, data: []byte("1234567"), want: "1234567"},
		{name: "ascii empty", enc: EncodingASCII, data: nil, want: ""},
		{name: "raw", enc: EncodingRaw, data: []byte{0xDE, 0xAD, 0x01}, want: "dead01"},
		{name: "mac", enc: EncodingB1, data: []byte{0x00, 0x0A, 0x1B, 0x2C, 0x3D, 0x4E}, want: "00:0a:1b:2c:3d:4e"},
		{
			name: "mac ignores trailing bytes",
			enc:  EncodingB1,
			data: []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x12, 0x34},
			want: "aa:bb:cc:dd:ee:ff",
		},
		{name: "mac too short", enc: EncodingB1, data: []byte{0x00, 0x0A}, wantErr: true},
		{
			name: "build date",
			enc:  EncodingMB,
			data: []byte{0x00, 0x19, 0x97, 0x01, 0x01, 0x08, 0x30, 0x00},
			want: "1997-01-01-08:30:00",
		},
		{name: "build date too short", enc: EncodingMB, data: []byte{0x00, 0x19, 0x97}, wantErr: true},
		{
			name: "uuid",
			enc:  EncodingUD,
			data: []byte{0x12, 0x3E, 0x45, 0x67, 0xE8, 0x9B, 0x12, 0xD3, 0xA4, 0x56, 0x42, 0x66, 0x55, 0x44, 0x00, 0x00},
			want: "123e4567-e89b-12d3-a456-426655440000",
		},
		{name: "uuid too short", enc: EncodingUD, data: make([]byte, 15), wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeKeyword(tc.enc, tc.data)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeKeyword failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("decodeKeyword = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestEncodingString(t *testing.T) {
	pairs := map[Encoding]string{
		EncodingASCII: "ascii",
		EncodingRaw:   "raw",
		EncodingB1:    "b1",
		EncodingMB:    "mb",
		EncodingUD:    "ud",
	}
	for enc, want := range pairs {
		if enc.String() != want {
			t.Fatalf("Encoding(%d).String() = %q, want %q", enc, enc.String(), want)
		}
	}
}

func TestCursorBounds(t *testing.T) {
	buf := Buffer([]byte{0x01, 0x02, 0x03, 0x04})

	cur, err := buf.Cursor(0)
	if err != nil {
		t.Fatalf("Cursor failed: %v", err)
	}
	v, err := cur.Uint16()
	if err != nil {
		t.Fatalf("Uint16 failed: %v", err)
	}
	if v != 0x0201 {
		t.Fatalf("Uint16 = 0x%04X, want 0x0201 (little endian)", v)
	}
	if err := cur.Skip(1); err != nil {
		t.Fatalf("Skip failed: %v", err)
	}
	if cur.Remaining() != 1 {
		t.Fatalf("Remaining = %d, want 1", cur.Remaining())
	}
	if _, err := cur.Bytes(2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}

	if _, err := buf.Cursor(5); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("Cursor past end: expected ErrOutOfBounds, got %v", err)
	}
	if _, err := buf.CursorRange(2, 3); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("CursorRange past end: expected ErrOutOfBounds, got %v", err)
	}
	if _, err := buf.CursorRange(-1, 2); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("negative offset: expected ErrOutOfBounds, got %v", err)
	}
}

func TestComputeECCDetectsSingleByteCorruption(t *testing.T) {
	data := make([]byte, 64)
	for i := range data {
		data[i] = byte(i * 7)
	}
	ecc := ComputeECC(data, 11)
	checker := DefaultChecker{}
	if err := checker.Check(data, ecc); err != nil {
		t.Fatalf("Check failed on intact data: %v", err)
	}
	for i := range data {
		corrupted := make([]byte, len(data))
		copy(corrupted, data)
		corrupted[i] ^= 0x40
		if err := checker.Check(corrupted, ecc); err == nil {
			t.Fatalf("corruption at byte %d went undetected", i)
		}
	}
}

func TestDefaultCheckerEmptyECC(t *testing.T) {
	if err := (DefaultChecker{}).Check([]byte{1, 2, 3}, nil); err == nil {
		t.Fatal("expected error for empty ecc region")
	}
}
