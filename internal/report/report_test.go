package report

import (
	"path/filepath"
	"testing"

	"github.com/shenki/openpower-vpd-parser/internal/inventory"
	"github.com/shenki/openpower-vpd-parser/internal/ipz"
)

func sampleStore() *inventory.Store {
	store := inventory.New("/system/chassis/motherboard", "/tmp/eeprom.bin")
	store.AddKeyword("VINI", "DR", "PROCESSOR CARD")
	store.AddKeyword("VINI", "SN", "YL10UF12345B")
	store.AddKeyword("OPFR", "VN", "IBM")
	return store
}

func TestStoreJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	if err := SaveStoreJSON(sampleStore(), path); err != nil {
		t.Fatalf("SaveStoreJSON failed: %v", err)
	}
	restored, err := LoadStoreJSON(path)
	if err != nil {
		t.Fatalf("LoadStoreJSON failed: %v", err)
	}
	if got := restored.Records(); len(got) != 2 || got[0] != "VINI" {
		t.Fatalf("Records = %v", got)
	}
	if v, _ := restored.Get("VINI", "SN"); v != "YL10UF12345B" {
		t.Fatalf("Get(VINI, SN) = %q", v)
	}
}

func TestSaveInventoryPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.pdf")
	problems := []ipz.Problem{
		{Record: "OSYS", Keyword: "UD", Offset: 0x120, Message: "payload too short"},
	}
	if err := SaveInventoryPDF(sampleStore(), problems, path); err != nil {
		t.Fatalf("SaveInventoryPDF failed: %v", err)
	}
}

func TestSerialToQR(t *testing.T) {
	png, err := SerialToQR("yl10uf12345b", 0)
	if err != nil {
		t.Fatalf("SerialToQR failed: %v", err)
	}
	if len(png) == 0 {
		t.Fatal("empty PNG output")
	}
	if _, err := SerialToQR("  \t ", 128); err == nil {
		t.Fatal("expected error for empty serial")
	}
}

func TestSanitizeSerial(t *testing.T) {
	if got := sanitizeSerial(" yl10-uf.123 45b\n"); got != "YL10-UF.12345B" {
		t.Fatalf("sanitizeSerial = %q", got)
	}
}
