package server

import "net/http"

// NewRouter wires HTTP routes to the server's handlers.
func NewRouter(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/parse", s.handleParse)
	mux.HandleFunc("/parses", s.handleParses)
	mux.HandleFunc("/inventory/", s.handleInventory)
	mux.HandleFunc("/keyword", s.handleKeyword)
	mux.HandleFunc("/platform", s.handlePlatform)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}
