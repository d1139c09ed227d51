package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"spoolcheck/internal/services/moonraker"
	"spoolcheck/internal/services/spoolman"
)

// FakePrinter serves the Moonraker and Spoolman endpoints spoolcheck uses
// from one httptest server. Fields may be changed between requests through
// the setter methods.
type FakePrinter struct {
	URL string

	mu         sync.Mutex
	spoolID    int64
	spools     map[int64]spoolman.Spool
	metadata   map[string]moonraker.FileMetadata
	filename   string
	scripts    []string
	pauses     int
	spoolCalls int
	metaStatus int
}

// NewFakePrinter starts the server and registers cleanup.
func NewFakePrinter(t testing.TB) *FakePrinter {
	t.Helper()

	printer := &FakePrinter{
		spools:   make(map[int64]spoolman.Spool),
		metadata: make(map[string]moonraker.FileMetadata),
	}
	server := httptest.NewServer(http.HandlerFunc(printer.serve))
	t.Cleanup(server.Close)
	printer.URL = server.URL
	return printer
}

// LoadSpool adds spool to the inventory and selects it as active.
func (p *FakePrinter) LoadSpool(spool spoolman.Spool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spools[spool.ID] = spool
	p.spoolID = spool.ID
}

// ClearSpool deselects the active spool.
func (p *FakePrinter) ClearSpool() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.spoolID = 0
}

// SetPrinting sets the print_stats filename.
func (p *FakePrinter) SetPrinting(filename string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filename = filename
}

// SetMetadata registers Moonraker file metadata for filename.
func (p *FakePrinter) SetMetadata(filename string, meta moonraker.FileMetadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	meta.Filename = filename
	p.metadata[filename] = meta
}

// FailMetadata makes the file metadata endpoint answer with status. Zero
// restores normal behaviour.
func (p *FakePrinter) FailMetadata(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.metaStatus = status
}

// Scripts returns the gcode scripts received so far.
func (p *FakePrinter) Scripts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.scripts...)
}

// Pauses returns how many pause requests were received.
func (p *FakePrinter) Pauses() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses
}

// SpoolRequests returns how many spool lookups Spoolman served.
func (p *FakePrinter) SpoolRequests() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.spoolCalls
}

func (p *FakePrinter) serve(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case r.URL.Path == "/server/info":
		writeResult(w, moonraker.ServerInfo{
			KlippyConnected:  true,
			KlippyState:      "ready",
			MoonrakerVersion: "v0.9.3",
			Components:       []string{"file_manager", "spoolman"},
		})
	case r.URL.Path == "/server/spoolman/spool_id":
		var id any
		if p.spoolID > 0 {
			id = p.spoolID
		}
		writeResult(w, map[string]any{"spool_id": id})
	case r.URL.Path == "/printer/objects/query":
		writeResult(w, map[string]any{
			"eventtime": 1.0,
			"status": map[string]any{
				"print_stats": map[string]any{"filename": p.filename, "state": "printing"},
			},
		})
	case r.URL.Path == "/server/files/metadata":
		if p.metaStatus != 0 {
			writeError(w, p.metaStatus, "Metadata request failed")
			return
		}
		meta, ok := p.metadata[r.URL.Query().Get("filename")]
		if !ok {
			writeError(w, http.StatusNotFound, "Metadata not available")
			return
		}
		writeResult(w, meta)
	case r.URL.Path == "/printer/gcode/script":
		var body struct {
			Script string `json:"script"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		p.scripts = append(p.scripts, body.Script)
		writeResult(w, "ok")
	case r.URL.Path == "/printer/print/pause":
		p.pauses++
		writeResult(w, "ok")
	case r.URL.Path == "/api/v1/health":
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	case strings.HasPrefix(r.URL.Path, "/api/v1/spool/"):
		p.spoolCalls++
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/v1/spool/"), 10, 64)
		spool, ok := p.spools[id]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Item not found"})
			return
		}
		writeJSON(w, http.StatusOK, spool)
	default:
		http.NotFound(w, r)
	}
}

func writeResult(w http.ResponseWriter, result any) {
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": map[string]any{"code": status, "message": message}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Spool builds a Spoolman spool with the given remaining weight in grams.
func Spool(id int64, material, name string, remaining float64) spoolman.Spool {
	return spoolman.Spool{
		ID: id,
		Filament: spoolman.Filament{
			ID:       id,
			Name:     name,
			Material: material,
			Vendor:   &spoolman.Vendor{ID: 1, Name: "Prusament"},
			Density:  1.24,
			Diameter: 1.75,
		},
		RemainingWeight: &remaining,
	}
}

func formatGrams(grams float64) string {
	return strconv.FormatFloat(grams, 'f', -1, 64)
}
