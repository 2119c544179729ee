package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// GrocyRequest records a call received by FakeGrocy.
type GrocyRequest struct {
	Method  string
	Path    string
	APIKey  string
	Payload map[string]any
}

// FakeGrocy is an httptest stand-in for the Grocy REST API.
type FakeGrocy struct {
	Server *httptest.Server
	APIKey string

	// FailWith, when non-zero, is returned for every stock call with FailMessage as
	// the error_message
	FailWith    int
	FailMessage string

	mu       sync.Mutex
	products map[string]map[string]any
	requests []GrocyRequest
}

func NewFakeGrocy(t testing.TB, apiKey string) *FakeGrocy {
	t.Helper()
	f := &FakeGrocy{APIKey: apiKey, products: make(map[string]map[string]any)}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/system/info", f.handleInfo)
	mux.HandleFunc("GET /api/stock/products/by-barcode/{barcode}", f.handleLookup)
	mux.HandleFunc("POST /api/stock/products/by-barcode/{barcode}/{action}", f.handleAction)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeGrocy) URL() string {
	return f.Server.URL
}

// AddProduct registers lookup details for barcode, see ProductDetails.
func (f *FakeGrocy) AddProduct(barcode string, details map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products[barcode] = details
}

// Requests returns a copy of the calls received so far.
func (f *FakeGrocy) Requests() []GrocyRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	dup := make([]GrocyRequest, len(f.requests))
	copy(dup, f.requests)
	return dup
}

// LastRequest returns the most recent call, or a zero value.
func (f *FakeGrocy) LastRequest() GrocyRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return GrocyRequest{}
	}
	return f.requests[len(f.requests)-1]
}

// ProductDetails builds a by-barcode response body the way Grocy shapes it.
func ProductDetails(id int, name string, amount float64, unit, location string) map[string]any {
	return map[string]any{
		"product":             map[string]any{"id": id, "name": name},
		"stock_amount":        amount,
		"quantity_unit_stock": map[string]any{"name": unit},
		"location":            map[string]any{"name": location},
	}
}

func (f *FakeGrocy) record(r *http.Request) bool {
	req := GrocyRequest{Method: r.Method, Path: r.URL.Path, APIKey: r.Header.Get("GROCY-API-KEY")}
	if r.Body != nil && r.Method == http.MethodPost {
		_ = json.NewDecoder(r.Body).Decode(&req.Payload)
	}
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return req.APIKey == f.APIKey
}

func (f *FakeGrocy) handleInfo(w http.ResponseWriter, r *http.Request) {
	if !f.record(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error_message": "Unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"grocy_version": map[string]any{"Version": "4.2.0"}})
}

func (f *FakeGrocy) handleLookup(w http.ResponseWriter, r *http.Request) {
	if !f.record(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error_message": "Unauthorized"})
		return
	}
	f.mu.Lock()
	details, ok := f.products[r.PathValue("barcode")]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error_message": "No product with barcode found"})
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (f *FakeGrocy) handleAction(w http.ResponseWriter, r *http.Request) {
	if !f.record(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error_message": "Unauthorized"})
		return
	}
	if f.FailWith != 0 {
		msg := f.FailMessage
		if msg == "" {
			msg = "failed"
		}
		writeJSON(w, f.FailWith, map[string]any{"error_message": msg})
		return
	}
	switch r.PathValue("action") {
	case "add", "consume", "open":
	default:
		http.NotFound(w, r)
		return
	}
	f.mu.Lock()
	_, ok := f.products[r.PathValue("barcode")]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error_message": "No product with barcode found"})
		return
	}
	writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "transaction_type": r.PathValue("action")}})
}
