// Package server exposes the VPD parser over HTTP: images are uploaded,
// parsed once, and the resulting inventories held for later keyword
// lookups and downloads.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/shenki/openpower-vpd-parser/internal/common"
	"github.com/shenki/openpower-vpd-parser/internal/inventory"
	"github.com/shenki/openpower-vpd-parser/internal/ipz"
	"github.com/shenki/openpower-vpd-parser/internal/platform"
)

// Options configures server creation.
type Options struct {
	StorageDir    string
	Platform      *platform.Table
	Policy        ipz.Policy
	SkipRecordECC bool
	// NotifyCommand, when non-empty, is executed after every successful
	// parse with the parse id, image sha256 and stored image path appended
	// as arguments.
	NotifyCommand []string
	AuditLog      *common.ParseLog
}

// ParseResult is one completed parse retained by the daemon.
type ParseResult struct {
	ID       string
	Name     string
	Sha256   string
	Path     string
	Store    *inventory.Store
	Problems []ipz.Problem
	Metrics  common.MetricsSnapshot
	Ts       time.Time
}

// ParseRef is the public representation returned in API responses.
type ParseRef struct {
	ID       string    `json:"id"`
	Name     string    `json:"name,omitempty"`
	Sha256   string    `json:"sha256"`
	Records  int       `json:"records"`
	Keywords int       `json:"keywords"`
	Problems int       `json:"problems"`
	Ts       time.Time `json:"ts"`
}

// ParseStore keeps completed parses for later lookup.
type ParseStore struct {
	mu      sync.RWMutex
	entries map[string]ParseResult
}

// Server coordinates HTTP handlers and owns the uploaded images and parse
// results produced by them.
type Server struct {
	parses        *ParseStore
	workDir       string
	uploadsDir    string
	platform      *platform.Table
	policy        ipz.Policy
	skipRecordECC bool
	notify        []string
	audit         *common.ParseLog
	started       time.Time
}

// NewServer constructs a Server rooted at a temporary workspace directory.
func NewServer(opts Options) (*Server, error) {
	storageDir := opts.StorageDir
	if storageDir == "" {
		storageDir = os.TempDir()
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, err
	}
	workDir, err := os.MkdirTemp(storageDir, "vpdd-")
	if err != nil {
		return nil, err
	}
	uploadsDir := filepath.Join(workDir, "uploads")
	if err := os.MkdirAll(uploadsDir, 0o755); err != nil {
		os.RemoveAll(workDir)
		return nil, err
	}
	table := opts.Platform
	if table == nil {
		table = platform.Default()
	}
	s := &Server{
		parses:        &ParseStore{entries: make(map[string]ParseResult)},
		workDir:       workDir,
		uploadsDir:    uploadsDir,
		platform:      table,
		policy:        opts.Policy,
		skipRecordECC: opts.SkipRecordECC,
		notify:        opts.NotifyCommand,
		audit:         opts.AuditLog,
		started:       time.Now(),
	}
	return s, nil
}

// Close removes any temporary state associated with the server.
func (s *Server) Close() error {
	if s == nil || s.workDir == "" {
		return nil
	}
	return os.RemoveAll(s.workDir)
}

func (s *Server) addParse(res ParseResult) {
	s.parses.mu.Lock()
	s.parses.entries[res.ID] = res
	s.parses.mu.Unlock()
}

func (s *Server) getParse(id string) (ParseResult, bool) {
	s.parses.mu.RLock()
	res, ok := s.parses.entries[id]
	s.parses.mu.RUnlock()
	return res, ok
}

func (s *Server) listParses() []ParseRef {
	s.parses.mu.RLock()
	refs := make([]ParseRef, 0, len(s.parses.entries))
	for _, res := range s.parses.entries {
		refs = append(refs, toRef(res))
	}
	s.parses.mu.RUnlock()
	sort.Slice(refs, func(i, j int) bool { return refs[i].Ts.Before(refs[j].Ts) })
	return refs
}

func toRef(res ParseResult) ParseRef {
	return ParseRef{
		ID:       res.ID,
		Name:     res.Name,
		Sha256:   res.Sha256,
		Records:  len(res.Store.Records()),
		Keywords: res.Store.KeywordCount(),
		Problems: len(res.Problems),
		Ts:       res.Ts,
	}
}

// runNotify fires the configured notify command in the background. The
// command's exit status is logged but never fails the parse that spawned it.
func (s *Server) runNotify(res ParseResult) {
	if len(s.notify) == 0 {
		return
	}
	args := append(append([]string{}, s.notify[1:]...), res.ID, res.Sha256, res.Path)
	cmd := exec.Command(s.notify[0], args...)
	go func() {
		if out, err := cmd.CombinedOutput(); err != nil {
			common.Logf("notify command failed for parse %s: %v (%s)", res.ID, err, out)
		}
	}()
}

func (s *Server) appendAudit(entry common.ParseEntry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(entry); err != nil {
		common.Logf("audit append: %v", err)
	}
}

func randomID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		now := time.Now().UTC()
		return fmt.Sprintf("%d%06d", now.UnixNano(), os.Getpid())
	}
	return hex.EncodeToString(b[:])
}

var errEmptyImage = errors.New("image is empty")
