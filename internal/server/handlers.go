package server

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shenki/openpower-vpd-parser/internal/common"
	"github.com/shenki/openpower-vpd-parser/internal/inventory"
	"github.com/shenki/openpower-vpd-parser/internal/ipz"
)

const maxImageBytes = 16 << 20

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		http.Error(w, fmt.Sprintf("parse multipart: %v", err), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	inventoryPath := strings.TrimSpace(r.FormValue("inventoryPath"))

	path, data, sum, err := s.saveImage(file, header)
	if err != nil {
		http.Error(w, fmt.Sprintf("save image: %v", err), http.StatusBadRequest)
		return
	}

	metrics := common.NewMetrics()
	parser := ipz.NewParser(data, inventoryPath, path, s.platform, ipz.Options{
		Policy:        s.policy,
		SkipRecordECC: s.skipRecordECC,
		Metrics:       metrics,
	})
	store, err := parser.Run()
	if err != nil {
		s.appendAudit(common.ParseEntry{
			Image:         header.Filename,
			Sha256:        sum,
			InventoryPath: inventoryPath,
			Error:         err.Error(),
		})
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ipz.ErrOutOfBounds) || errors.Is(err, ipz.ErrMalformedHeader) {
			status = http.StatusBadRequest
		}
		http.Error(w, fmt.Sprintf("parse: %v", err), status)
		return
	}

	res := ParseResult{
		ID:       randomID(),
		Name:     header.Filename,
		Sha256:   sum,
		Path:     path,
		Store:    store,
		Problems: parser.Problems(),
		Metrics:  metrics.Snapshot(),
		Ts:       time.Now().UTC(),
	}
	s.addParse(res)
	s.appendAudit(common.ParseEntry{
		Image:         header.Filename,
		Sha256:        sum,
		InventoryPath: inventoryPath,
		Records:       len(store.Records()),
		Keywords:      store.KeywordCount(),
	})
	s.runNotify(res)

	resp := struct {
		Parse     ParseRef         `json:"parse"`
		Inventory *inventory.Store `json:"inventory"`
		Problems  []ipz.Problem    `json:"problems,omitempty"`
	}{
		Parse:     toRef(res),
		Inventory: store,
		Problems:  res.Problems,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) saveImage(src multipart.File, header *multipart.FileHeader) (string, []byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxImageBytes+1))
	if err != nil {
		return "", nil, "", err
	}
	if len(data) == 0 {
		return "", nil, "", errEmptyImage
	}
	if len(data) > maxImageBytes {
		return "", nil, "", fmt.Errorf("image exceeds %d byte limit", maxImageBytes)
	}
	ext := filepath.Ext(header.Filename)
	pattern := "image-*"
	if ext != "" {
		pattern = fmt.Sprintf("image-*%s", ext)
	}
	dest, err := os.CreateTemp(s.uploadsDir, pattern)
	if err != nil {
		return "", nil, "", err
	}
	if _, err := dest.Write(data); err != nil {
		dest.Close()
		os.Remove(dest.Name())
		return "", nil, "", err
	}
	if err := dest.Close(); err != nil {
		os.Remove(dest.Name())
		return "", nil, "", err
	}
	sum := fmt.Sprintf("%x", sha256.Sum256(data))
	return dest.Name(), data, sum, nil
}

func (s *Server) handleParses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, s.listParses())
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/inventory/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	res, ok := s.getParse(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	resp := struct {
		Parse     ParseRef         `json:"parse"`
		Inventory *inventory.Store `json:"inventory"`
		Problems  []ipz.Problem    `json:"problems,omitempty"`
	}{
		Parse:     toRef(res),
		Inventory: res.Store,
		Problems:  res.Problems,
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleKeyword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	id := q.Get("parse")
	record := q.Get("record")
	keyword := q.Get("keyword")
	if id == "" || record == "" || keyword == "" {
		http.Error(w, "parse, record and keyword parameters required", http.StatusBadRequest)
		return
	}
	res, ok := s.getParse(id)
	if !ok {
		http.NotFound(w, r)
		return
	}
	value, err := res.Store.Get(record, keyword)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	resp := struct {
		Record  string `json:"record"`
		Keyword string `json:"keyword"`
		Value   string `json:"value"`
	}{Record: record, Keyword: keyword, Value: value}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlatform(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type keywordInfo struct {
		Name     string `json:"name"`
		Encoding string `json:"encoding"`
	}
	type recordInfo struct {
		Name     string        `json:"name"`
		ECC      bool          `json:"ecc"`
		Keywords []keywordInfo `json:"keywords"`
	}
	records := s.platform.Records()
	resp := make([]recordInfo, 0, len(records))
	for _, record := range records {
		info := recordInfo{Name: record, ECC: s.platform.RecordHasECC(record)}
		for _, kw := range s.platform.Keywords(record) {
			info.Keywords = append(info.Keywords, keywordInfo{
				Name:     kw,
				Encoding: s.platform.EncodingFor(record, kw).String(),
			})
		}
		resp = append(resp, info)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	resp := struct {
		Status        string  `json:"status"`
		UptimeSeconds float64 `json:"uptimeSeconds"`
		Parses        int     `json:"parses"`
	}{
		Status:        "ok",
		UptimeSeconds: time.Since(s.started).Seconds(),
		Parses:        len(s.listParses()),
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
