package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// FakeLedger serves the ledger RPC routes the wallet uses from memory.
type FakeLedger struct {
	URL string

	mu         sync.Mutex
	tick       uint32
	balances   map[string]uint64
	owned      map[string][]OwnedUnits
	broadcasts []string
}

// OwnedUnits is one owned-asset entry served by FakeLedger.
type OwnedUnits struct {
	Name   string
	Issuer string
	Units  uint64
}

func NewFakeLedger(t *testing.T) *FakeLedger {
	t.Helper()

	f := &FakeLedger{
		tick:     1000,
		balances: map[string]uint64{},
		owned:    map[string][]OwnedUnits{},
	}

	server := httptest.NewServer(http.HandlerFunc(f.serveHTTP))
	t.Cleanup(server.Close)
	f.URL = server.URL

	return f
}

func (f *FakeLedger) SetTick(tick uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tick = tick
}

func (f *FakeLedger) SetBalance(id string, balance uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[id] = balance
}

func (f *FakeLedger) SetOwned(id string, owned ...OwnedUnits) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owned[id] = owned
}

// Broadcasts returns the base64 transactions received so far.
func (f *FakeLedger) Broadcasts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.broadcasts...)
}

func (f *FakeLedger) serveHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/v1/tick-info":
		writeJSON(w, map[string]any{"tickInfo": map[string]any{"tick": f.tick}})
	case len(parts) == 3 && parts[1] == "balances":
		writeJSON(w, map[string]any{"balance": map[string]any{"id": parts[2], "balance": f.balances[parts[2]]}})
	case len(parts) == 4 && parts[1] == "assets" && parts[3] == "owned":
		entries := make([]any, 0, len(f.owned[parts[2]]))
		for _, o := range f.owned[parts[2]] {
			entries = append(entries, map[string]any{"data": map[string]any{
				"numberOfUnits": o.Units,
				"issuedAsset":   map[string]any{"name": o.Name, "issuerIdentity": o.Issuer},
			}})
		}
		writeJSON(w, map[string]any{"ownedAssets": entries})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/broadcast-transaction":
		var body struct {
			EncodedTransaction string `json:"encodedTransaction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.broadcasts = append(f.broadcasts, body.EncodedTransaction)
		writeJSON(w, map[string]any{"peersBroadcasted": 1, "encodedTransaction": body.EncodedTransaction})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
