package ipz

import (
	"bytes"
	"errors"
	"testing"
)

func TestDirectReaderMatchesFullParse(t *testing.T) {
	img, offsets := assembleImage(t, sampleRecords(), nil)
	store, err := NewParser(img, "", "", sampleConfig(), Options{}).Run()
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	direct, err := NewDirectReader(bytes.NewReader(img), 0, offsets, sampleConfig())
	if err != nil {
		t.Fatalf("NewDirectReader failed: %v", err)
	}
	for _, record := range store.Records() {
		for _, keyword := range store.Keywords(record) {
			want, err := store.Get(record, keyword)
			if err != nil {
				t.Fatalf("Get(%s, %s) failed: %v", record, keyword, err)
			}
			got, err := direct.ReadKeyword(record, keyword)
			if err != nil {
				t.Fatalf("ReadKeyword(%s, %s) failed: %v", record, keyword, err)
			}
			if got != want {
				t.Fatalf("ReadKeyword(%s, %s) = %q, full parse says %q", record, keyword, got, want)
			}
		}
	}
}

func TestDirectReaderStartOffset(t *testing.T) {
	img, offsets := assembleImage(t, sampleRecords(), nil)
	const shift = 128
	shifted := append(make([]byte, shift), img...)

	direct, err := NewDirectReader(bytes.NewReader(shifted), shift, offsets, sampleConfig())
	if err != nil {
		t.Fatalf("NewDirectReader failed: %v", err)
	}
	got, err := direct.ReadKeyword("VINI", "SN")
	if err != nil {
		t.Fatalf("ReadKeyword failed: %v", err)
	}
	if got != "1234567" {
		t.Fatalf("ReadKeyword = %q, want 1234567", got)
	}
}

func TestDirectReaderKeywordNotFound(t *testing.T) {
	img, offsets := assembleImage(t, sampleRecords(), nil)
	direct, err := NewDirectReader(bytes.NewReader(img), 0, offsets, sampleConfig())
	if err != nil {
		t.Fatalf("NewDirectReader failed: %v", err)
	}

	if _, err := direct.ReadKeyword("VINI", "ZZ"); !errors.Is(err, ErrKeywordNotFound) {
		t.Fatalf("missing keyword: expected ErrKeywordNotFound, got %v", err)
	}
	if _, err := direct.ReadKeyword("VSYS", "SE"); !errors.Is(err, ErrKeywordNotFound) {
		t.Fatalf("unmapped record: expected ErrKeywordNotFound, got %v", err)
	}
}

func TestDirectReaderRecordMismatch(t *testing.T) {
	img, offsets := assembleImage(t, sampleRecords(), nil)
	// The offset map claims OPFR lives where VINI does.
	bad := map[string]int64{"OPFR": offsets["VINI"]}
	direct, err := NewDirectReader(bytes.NewReader(img), 0, bad, sampleConfig())
	if err != nil {
		t.Fatalf("NewDirectReader failed: %v", err)
	}
	if _, err := direct.ReadKeyword("OPFR", "VN"); !errors.Is(err, ErrRecordMismatch) {
		t.Fatalf("expected ErrRecordMismatch, got %v", err)
	}
}

func TestDirectReaderNilStream(t *testing.T) {
	if _, err := NewDirectReader(nil, 0, nil, sampleConfig()); !errors.Is(err, ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}
