package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
)

// LogLine is one scripted (timestamp, message) pair served by the backend.
type LogLine struct {
	TimestampNs int64
	Message     string
}

// Page is one scripted query_range response. Each inner slice becomes one
// stream in the "result" array, so tests can spread values across groups.
type Page struct {
	Streams [][]LogLine
}

// PageOf builds a single-stream page from the given lines.
func PageOf(lines ...LogLine) Page {
	return Page{Streams: [][]LogLine{lines}}
}

// LokiBackend serves scripted query_range pages in request order and records
// the query parameters of every request it sees. Requests beyond the script
// receive an empty page.
type LokiBackend struct {
	mu       sync.Mutex
	pages    []Page
	calls    int
	requests []url.Values
}

// NewLokiBackend creates a backend that serves the given pages in order.
func NewLokiBackend(pages ...Page) *LokiBackend {
	return &LokiBackend{pages: pages}
}

// Requests returns a snapshot of the recorded query parameters, one entry per
// request served.
func (b *LokiBackend) Requests() []url.Values {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]url.Values, len(b.requests))
	copy(out, b.requests)
	return out
}

// Calls reports how many requests the backend has served.
func (b *LokiBackend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// ServeHTTP implements http.Handler.
func (b *LokiBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests = append(b.requests, r.URL.Query())
	var page Page
	if b.calls < len(b.pages) {
		page = b.pages[b.calls]
	}
	b.calls++
	b.mu.Unlock()

	type stream struct {
		Values [][]string `json:"values"`
	}
	var result []stream
	for _, s := range page.Streams {
		values := make([][]string, 0, len(s))
		for _, line := range s {
			values = append(values, []string{strconv.FormatInt(line.TimestampNs, 10), line.Message})
		}
		result = append(result, stream{Values: values})
	}
	if result == nil {
		result = []stream{}
	}

	body := map[string]any{"data": map[string]any{"result": result}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// Server starts an httptest server around the backend. The caller owns the
// returned server and must Close it.
func (b *LokiBackend) Server() *httptest.Server {
	return httptest.NewServer(b)
}
