// Package feedtest provides a mock TWSE-style quote feed server for testing.
// It mimics the upstream envelope format: a JSON body with zero or one record
// of string-typed fields, and 503 for the transient "busy" condition.
package feedtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/gorilla/mux"
)

// Record is one raw feed record, keyed by the upstream's single-letter field
// names (z, y, o, h, l, u, w, v, tv).
type Record map[string]string

// Server is an in-process mock of the upstream quote feed.
type Server struct {
	mu sync.Mutex

	httpServer *httptest.Server

	records       map[string]Record
	busyRemaining int
	requestCount  int
}

// NewServer starts a mock feed server. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		records: make(map[string]Record),
	}

	router := mux.NewRouter()
	router.HandleFunc("/stock/api/getStockInfo.jsp", s.handleStockInfo).Methods(http.MethodGet)

	s.httpServer = httptest.NewServer(router)

	return s
}

// URL returns the server's base URL.
func (s *Server) URL() string {
	return s.httpServer.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.httpServer.Close()
}

// SetRecord installs the record returned for symbol.
func (s *Server) SetRecord(symbol string, record Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[symbol] = record
}

// RemoveRecord makes the feed answer with an empty envelope for symbol.
func (s *Server) RemoveRecord(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, symbol)
}

// SetBusy makes the next n requests answer 503 before serving normally again.
// Pass a large n to keep the feed busy for a whole test.
func (s *Server) SetBusy(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busyRemaining = n
}

// RequestCount returns the number of requests received so far.
func (s *Server) RequestCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.requestCount
}

// symbolFromExCh extracts the symbol out of an "tse_2330.tw" style key.
func symbolFromExCh(exCh string) string {
	key := exCh
	if idx := strings.Index(key, "_"); idx >= 0 {
		key = key[idx+1:]
	}

	return strings.TrimSuffix(key, ".tw")
}

func (s *Server) handleStockInfo(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requestCount++

	if s.busyRemaining > 0 {
		s.busyRemaining--
		s.mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)

		return
	}

	symbol := symbolFromExCh(r.URL.Query().Get("ex_ch"))
	record, ok := s.records[symbol]
	s.mu.Unlock()

	msgArray := []Record{}
	if ok {
		msgArray = append(msgArray, record)
	}

	w.Header().Set("Content-Type", "application/json")

	response := map[string]any{
		"msgArray": msgArray,
		"rtcode":   "0000",
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
