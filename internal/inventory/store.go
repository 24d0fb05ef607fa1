// Package inventory holds the output of a VPD parse: decoded keyword
// values addressed by record and keyword name, in the order they appeared
// in the image. A Store is populated once by the parser and is read-only in
// the hands of its recipient.
package inventory

import (
	"encoding/json"
	"fmt"
)

type recordData struct {
	name     string
	order    []string
	keywords map[string]string
}

// Store maps record name to keyword name to decoded value. Insertion order
// is preserved at both levels: records in table-of-contents order, keywords
// in the order they appear inside the record. Callers depend on keyword
// order, e.g. for checksums spanning multiple keywords.
type Store struct {
	inventoryPath string
	vpdFilePath   string
	order         []string
	records       map[string]*recordData
}

// New returns an empty store attributed to the given inventory path and
// backing VPD file.
func New(inventoryPath, vpdFilePath string) *Store {
	return &Store{
		inventoryPath: inventoryPath,
		vpdFilePath:   vpdFilePath,
		records:       make(map[string]*recordData),
	}
}

// InventoryPath returns the inventory path the parse was attributed to.
func (s *Store) InventoryPath() string {
	return s.inventoryPath
}

// VpdFilePath returns the path of the backing VPD image.
func (s *Store) VpdFilePath() string {
	return s.vpdFilePath
}

// AddRecord registers a record. It reports false when the record is already
// present; a record never appears twice in a store.
func (s *Store) AddRecord(name string) bool {
	if _, exists := s.records[name]; exists {
		return false
	}
	s.records[name] = &recordData{
		name:     name,
		keywords: make(map[string]string),
	}
	s.order = append(s.order, name)
	return true
}

// AddKeyword associates a decoded value with record/keyword. The first
// value wins; duplicates within a record are ignored, matching the
// image-order semantics of the parse.
func (s *Store) AddKeyword(record, keyword, value string) bool {
	rec, ok := s.records[record]
	if !ok {
		s.AddRecord(record)
		rec = s.records[record]
	}
	if _, exists := rec.keywords[keyword]; exists {
		return false
	}
	rec.keywords[keyword] = value
	rec.order = append(rec.order, keyword)
	return true
}

// Get returns the decoded value stored for record/keyword.
func (s *Store) Get(record, keyword string) (string, error) {
	rec, ok := s.records[record]
	if !ok {
		return "", fmt.Errorf("record %s not found", record)
	}
	val, ok := rec.keywords[keyword]
	if !ok {
		return "", fmt.Errorf("keyword %s not found in record %s", keyword, record)
	}
	return val, nil
}

// Records lists record names in parse order.
func (s *Store) Records() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Keywords lists keyword names of a record in image order.
func (s *Store) Keywords(record string) []string {
	rec, ok := s.records[record]
	if !ok {
		return nil
	}
	out := make([]string, len(rec.order))
	copy(out, rec.order)
	return out
}

// KeywordCount returns the total number of keywords across all records.
func (s *Store) KeywordCount() int {
	n := 0
	for _, rec := range s.records {
		n += len(rec.order)
	}
	return n
}

type keywordJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type recordJSON struct {
	Name     string        `json:"name"`
	Keywords []keywordJSON `json:"keywords"`
}

type storeJSON struct {
	InventoryPath string       `json:"inventoryPath,omitempty"`
	VpdFilePath   string       `json:"vpdFilePath,omitempty"`
	Records       []recordJSON `json:"records"`
}

// MarshalJSON serializes the store as ordered record and keyword arrays so
// the parse order survives the round trip.
func (s *Store) MarshalJSON() ([]byte, error) {
	doc := storeJSON{
		InventoryPath: s.inventoryPath,
		VpdFilePath:   s.vpdFilePath,
		Records:       make([]recordJSON, 0, len(s.order)),
	}
	for _, name := range s.order {
		rec := s.records[name]
		rj := recordJSON{Name: name, Keywords: make([]keywordJSON, 0, len(rec.order))}
		for _, kw := range rec.order {
			rj.Keywords = append(rj.Keywords, keywordJSON{Name: kw, Value: rec.keywords[kw]})
		}
		doc.Records = append(doc.Records, rj)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rebuilds a store from its serialized form.
func (s *Store) UnmarshalJSON(data []byte) error {
	var doc storeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.inventoryPath = doc.InventoryPath
	s.vpdFilePath = doc.VpdFilePath
	s.order = nil
	s.records = make(map[string]*recordData)
	for _, rec := range doc.Records {
		if !s.AddRecord(rec.Name) {
			return fmt.Errorf("duplicate record %s", rec.Name)
		}
		for _, kw := range rec.Keywords {
			if !s.AddKeyword(rec.Name, kw.Name, kw.Value) {
				return fmt.Errorf("duplicate keyword %s in record %s", kw.Name, rec.Name)
			}
		}
	}
	return nil
}
