package inventory

import (
	"encoding/json"
	"testing"
)

func TestStoreOrderAndLookup(t *testing.T) {
	store := New("/system/chassis", "/tmp/eeprom")
	store.AddRecord("VINI")
	store.AddKeyword("VINI", "DR", "PROCESSOR CARD")
	store.AddKeyword("VINI", "SN", "1234567")
	store.AddKeyword("OPFR", "VN", "IBM")

	if got := store.Records(); len(got) != 2 || got[0] != "VINI" || got[1] != "OPFR" {
		t.Fatalf("Records = %v, want [VINI OPFR]", got)
	}
	if got := store.Keywords("VINI"); len(got) != 2 || got[0] != "DR" || got[1] != "SN" {
		t.Fatalf("Keywords(VINI) = %v, want [DR SN]", got)
	}
	if v, err := store.Get("VINI", "SN"); err != nil || v != "1234567" {
		t.Fatalf("Get(VINI, SN) = %q, %v", v, err)
	}
	if _, err := store.Get("VINI", "ZZ"); err == nil {
		t.Fatal("expected error for missing keyword")
	}
	if _, err := store.Get("XXXX", "SN"); err == nil {
		t.Fatal("expected error for missing record")
	}
	if store.KeywordCount() != 3 {
		t.Fatalf("KeywordCount = %d, want 3", store.KeywordCount())
	}
}

func TestStoreRejectsDuplicates(t *testing.T) {
	store := New("", "")
	if !store.AddRecord("VINI") {
		t.Fatal("first AddRecord returned false")
	}
	if store.AddRecord("VINI") {
		t.Fatal("duplicate AddRecord returned true")
	}
	if !store.AddKeyword("VINI", "SN", "first") {
		t.Fatal("first AddKeyword returned false")
	}
	if store.AddKeyword("VINI", "SN", "second") {
		t.Fatal("duplicate AddKeyword returned true")
	}
	if v, _ := store.Get("VINI", "SN"); v != "first" {
		t.Fatalf("Get(VINI, SN) = %q, want first value kept", v)
	}
}

func TestStoreJSONRoundTrip(t *testing.T) {
	store := New("/system/chassis", "/tmp/eeprom")
	store.AddKeyword("VINI", "SN", "1234567")
	store.AddKeyword("VINI", "B1", "00:0a:1b:2c:3d:4e")
	store.AddKeyword("OSYS", "UD", "123e4567-e89b-12d3-a456-426655440000")

	data, err := json.Marshal(store)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var restored Store
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if restored.InventoryPath() != "/system/chassis" || restored.VpdFilePath() != "/tmp/eeprom" {
		t.Fatalf("paths = %q, %q", restored.InventoryPath(), restored.VpdFilePath())
	}
	if got := restored.Records(); len(got) != 2 || got[0] != "VINI" || got[1] != "OSYS" {
		t.Fatalf("Records = %v, want [VINI OSYS]", got)
	}
	if got := restored.Keywords("VINI"); len(got) != 2 || got[0] != "SN" || got[1] != "B1" {
		t.Fatalf("Keywords(VINI) = %v, want [SN B1]", got)
	}
	if v, _ := restored.Get("OSYS", "UD"); v != "123e4567-e89b-12d3-a456-426655440000" {
		t.Fatalf("Get(OSYS, UD) = %q", v)
	}
}
