package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ParseEntry captures the outcome of one VPD parse for the audit trail.
type ParseEntry struct {
	Image         string    `json:"image"`
	Sha256        string    `json:"sha256,omitempty"`
	InventoryPath string    `json:"inventoryPath,omitempty"`
	Records       int       `json:"records"`
	Keywords      int       `json:"keywords"`
	Error         string    `json:"error,omitempty"`
	Ts            time.Time `json:"ts"`
}

// ParseLog provides append-only access to a JSONL audit log of parses.
type ParseLog struct {
	path string
	mu   sync.Mutex
}

// NewParseLog returns a ParseLog that writes to the provided path.
func NewParseLog(path string) *ParseLog {
	return &ParseLog{path: path}
}

// Path returns the backing file path for the log.
func (p *ParseLog) Path() string {
	if p == nil {
		return ""
	}
	return p.path
}

// Append writes a new entry to the audit log, one JSON object per line.
func (p *ParseLog) Append(entry ParseEntry) error {
	if p == nil {
		return errors.New("nil parse log")
	}
	if entry.Image == "" {
		return errors.New("parse entry missing image")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(append(data, '\n')); err != nil {
		return err
	}
	return f.Sync()
}

// ReadParseLog loads every entry from the supplied JSONL file.
func ReadParseLog(path string) ([]ParseEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	var entries []ParseEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry ParseEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode parse entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
