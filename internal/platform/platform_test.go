package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shenki/openpower-vpd-parser/internal/ipz"
)

func TestDefaultTable(t *testing.T) {
	table := Default()
	for _, name := range []string{"VINI", "OPFR", "OSYS"} {
		if !table.SupportsRecord(name) {
			t.Fatalf("default table does not support %s", name)
		}
	}
	if table.SupportsRecord("XXXX") {
		t.Fatal("default table supports XXXX")
	}

	pairs := []struct {
		record, keyword string
		want            ipz.Encoding
	}{
		{"VINI", "SN", ipz.EncodingASCII},
		{"VINI", "HW", ipz.EncodingRaw},
		{"VINI", "B1", ipz.EncodingB1},
		{"OPFR", "MB", ipz.EncodingMB},
		{"OSYS", "UD", ipz.EncodingUD},
		// Unrecognized pairs fall back to ASCII.
		{"VINI", "ZZ", ipz.EncodingASCII},
		{"XXXX", "SN", ipz.EncodingASCII},
	}
	for _, tc := range pairs {
		if got := table.EncodingFor(tc.record, tc.keyword); got != tc.want {
			t.Fatalf("EncodingFor(%s, %s) = %v, want %v", tc.record, tc.keyword, got, tc.want)
		}
	}
}

func TestFromFileValidation(t *testing.T) {
	boolPtr := func(v bool) *bool { return &v }

	tests := []struct {
		name    string
		file    File
		wantErr string
	}{
		{name: "empty", file: File{}, wantErr: "no records"},
		{
			name:    "bad record name",
			file:    File{Records: []RecordConfig{{Name: "TOOLONG"}}},
			wantErr: "not 4 characters",
		},
		{
			name: "duplicate record",
			file: File{Records: []RecordConfig{
				{Name: "VINI"},
				{Name: "VINI"},
			}},
			wantErr: "duplicate record",
		},
		{
			name: "bad keyword name",
			file: File{Records: []RecordConfig{
				{Name: "VINI", Keywords: []KeywordConfig{{Name: "SNX"}}},
			}},
			wantErr: "not 2 characters",
		},
		{
			name: "duplicate keyword",
			file: File{Records: []RecordConfig{
				{Name: "VINI", Keywords: []KeywordConfig{{Name: "SN"}, {Name: "SN"}}},
			}},
			wantErr: "duplicate keyword",
		},
		{
			name: "unknown encoding",
			file: File{Records: []RecordConfig{
				{Name: "VINI", Keywords: []KeywordConfig{{Name: "SN", Encoding: "base64"}}},
			}},
			wantErr: "unknown encoding",
		},
		{
			name: "valid",
			file: File{Records: []RecordConfig{
				{Name: "VINI", ECC: boolPtr(false), Keywords: []KeywordConfig{
					{Name: "SN", Encoding: "ascii"},
					{Name: "B1", Encoding: "mac"},
				}},
			}},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			table, err := FromFile(tc.file)
			if tc.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
					t.Fatalf("error = %v, want substring %q", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromFile failed: %v", err)
			}
			if table.RecordHasECC("VINI") {
				t.Fatal("ecc: false not honored")
			}
			if got := table.EncodingFor("VINI", "B1"); got != ipz.EncodingB1 {
				t.Fatalf("EncodingFor(VINI, B1) = %v, want b1", got)
			}
		})
	}
}

func TestLoadYAML(t *testing.T) {
	doc := `
records:
  - name: VINI
    keywords:
      - name: SN
        encoding: ascii
      - name: HW
        encoding: raw
  - name: VSYS
    ecc: false
    keywords:
      - name: SE
`
	path := filepath.Join(t.TempDir(), "platform.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !table.SupportsRecord("VSYS") {
		t.Fatal("VSYS not supported after load")
	}
	if table.RecordHasECC("VSYS") {
		t.Fatal("VSYS ecc flag not honored")
	}
	if got := table.EncodingFor("VINI", "HW"); got != ipz.EncodingRaw {
		t.Fatalf("EncodingFor(VINI, HW) = %v, want raw", got)
	}
}

func TestEnsureLoadedDefault(t *testing.T) {
	table, err := EnsureLoaded("")
	if err != nil {
		t.Fatalf("EnsureLoaded failed: %v", err)
	}
	if !table.SupportsRecord("VINI") {
		t.Fatal("default table missing VINI")
	}
	if _, err := EnsureLoaded(t.TempDir()); err == nil {
		t.Fatal("expected error for directory path")
	}
}
