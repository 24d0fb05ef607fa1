package report

import (
	"encoding/json"
	"os"

	"github.com/shenki/openpower-vpd-parser/internal/inventory"
)

func SaveStoreJSON(store *inventory.Store, out string) error {
	b, err := json.MarshalIndent(store, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadStoreJSON(path string) (*inventory.Store, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	store := &inventory.Store{}
	if err := json.Unmarshal(b, store); err != nil {
		return nil, err
	}
	return store, nil
}
