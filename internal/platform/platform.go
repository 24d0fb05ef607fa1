// Package platform carries the configuration a parse needs but does not
// own: which records the platform supports, how each (record, keyword)
// pair decodes, and which records have their ECC verified.
package platform

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shenki/openpower-vpd-parser/internal/ipz"
)

type recordInfo struct {
	ecc      bool
	keywords map[string]ipz.Encoding
}

// Table is the supported-record set plus the keyword encoding lookup. It
// satisfies ipz.PlatformConfig. A Table is immutable once built and safe
// for concurrent readers.
type Table struct {
	records map[string]*recordInfo
}

// Default returns the OpenPower record and keyword table.
func Default() *Table {
	return &Table{records: map[string]*recordInfo{
		"VINI": {ecc: true, keywords: map[string]ipz.Encoding{
			"DR": ipz.EncodingASCII,
			"PN": ipz.EncodingASCII,
			"SN": ipz.EncodingASCII,
			"CC": ipz.EncodingASCII,
			"HW": ipz.EncodingRaw,
			"B1": ipz.EncodingB1,
		}},
		"OPFR": {ecc: true, keywords: map[string]ipz.Encoding{
			"DR": ipz.EncodingASCII,
			"VN": ipz.EncodingASCII,
			"MB": ipz.EncodingMB,
		}},
		"OSYS": {ecc: true, keywords: map[string]ipz.Encoding{
			"DR": ipz.EncodingASCII,
			"MM": ipz.EncodingASCII,
			"UD": ipz.EncodingUD,
		}},
	}}
}

// SupportsRecord reports whether the platform keeps the named record.
func (t *Table) SupportsRecord(name string) bool {
	_, ok := t.records[name]
	return ok
}

// EncodingFor looks up the decode scheme for a (record, keyword) pair. An
// unrecognized pair defaults to ASCII pass-through.
func (t *Table) EncodingFor(record, keyword string) ipz.Encoding {
	rec, ok := t.records[record]
	if !ok {
		return ipz.EncodingASCII
	}
	enc, ok := rec.keywords[keyword]
	if !ok {
		return ipz.EncodingASCII
	}
	return enc
}

// RecordHasECC reports whether the named record's own ECC is verified
// during a parse.
func (t *Table) RecordHasECC(name string) bool {
	rec, ok := t.records[name]
	return ok && rec.ecc
}

// Records lists the supported record names, sorted.
func (t *Table) Records() []string {
	out := make([]string, 0, len(t.records))
	for name := range t.records {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Keywords lists a record's configured keyword names, sorted.
func (t *Table) Keywords(record string) []string {
	rec, ok := t.records[record]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rec.keywords))
	for name := range rec.keywords {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// File is the YAML document shape for platform overrides.
type File struct {
	Records []RecordConfig `yaml:"records"`
}

type RecordConfig struct {
	Name     string          `yaml:"name"`
	ECC      *bool           `yaml:"ecc,omitempty"`
	Keywords []KeywordConfig `yaml:"keywords"`
}

type KeywordConfig struct {
	Name     string `yaml:"name"`
	Encoding string `yaml:"encoding"`
}

func parseEncoding(s string) (ipz.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ascii":
		return ipz.EncodingASCII, nil
	case "raw":
		return ipz.EncodingRaw, nil
	case "b1", "mac":
		return ipz.EncodingB1, nil
	case "mb", "date":
		return ipz.EncodingMB, nil
	case "ud", "uuid":
		return ipz.EncodingUD, nil
	default:
		return ipz.EncodingASCII, fmt.Errorf("unknown encoding %q", s)
	}
}

// FromFile validates a parsed configuration document and builds the table.
func FromFile(file File) (*Table, error) {
	if len(file.Records) == 0 {
		return nil, fmt.Errorf("configuration lists no records")
	}
	table := &Table{records: make(map[string]*recordInfo)}
	for i, rec := range file.Records {
		name := strings.TrimSpace(rec.Name)
		if len(name) != 4 {
			return nil, fmt.Errorf("records[%d]: name %q is not 4 characters", i, rec.Name)
		}
		if _, exists := table.records[name]; exists {
			return nil, fmt.Errorf("records[%d]: duplicate record %s", i, name)
		}
		info := &recordInfo{ecc: true, keywords: make(map[string]ipz.Encoding)}
		if rec.ECC != nil {
			info.ecc = *rec.ECC
		}
		for j, kw := range rec.Keywords {
			kwName := strings.TrimSpace(kw.Name)
			if len(kwName) != 2 {
				return nil, fmt.Errorf("records[%d].keywords[%d]: name %q is not 2 characters", i, j, kw.Name)
			}
			if _, exists := info.keywords[kwName]; exists {
				return nil, fmt.Errorf("records[%d].keywords[%d]: duplicate keyword %s", i, j, kwName)
			}
			enc, err := parseEncoding(kw.Encoding)
			if err != nil {
				return nil, fmt.Errorf("records[%d].keywords[%d]: %w", i, j, err)
			}
			info.keywords[kwName] = enc
		}
		table.records[name] = info
	}
	return table, nil
}
