package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// FakeSupervisor is an httptest stand-in for the Home Assistant supervisor registry.
type FakeSupervisor struct {
	Server *httptest.Server
	Token  string

	// FailList makes GET /addons answer 500
	FailList bool

	ListCalls atomic.Int32
	InfoCalls atomic.Int32

	mu     sync.Mutex
	addons []fakeAddon
}

type fakeAddon struct {
	slug string
	ip   string
}

func NewFakeSupervisor(t testing.TB, token string) *FakeSupervisor {
	t.Helper()
	f := &FakeSupervisor{Token: token}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /addons", f.handleList)
	mux.HandleFunc("GET /addons/{slug}/info", f.handleInfo)

	f.Server = httptest.NewServer(f.authorize(mux))
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeSupervisor) URL() string {
	return f.Server.URL
}

// AddAddon registers an installed add-on; an empty ip omits ip_address from its info.
func (f *FakeSupervisor) AddAddon(slug, ip string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addons = append(f.addons, fakeAddon{slug: slug, ip: ip})
}

func (f *FakeSupervisor) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f.Token != "" && r.Header.Get("Authorization") != "Bearer "+f.Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"result": "error", "message": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeSupervisor) handleList(w http.ResponseWriter, r *http.Request) {
	f.ListCalls.Add(1)
	if f.FailList {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"result": "error", "message": "boom"})
		return
	}

	f.mu.Lock()
	addons := make([]map[string]any, 0, len(f.addons))
	for _, a := range f.addons {
		addons = append(addons, map[string]any{"slug": a.slug, "name": a.slug, "state": "started", "version": "1.0.0"})
	}
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"result": "ok",
		"data":   map[string]any{"addons": addons},
	})
}

func (f *FakeSupervisor) handleInfo(w http.ResponseWriter, r *http.Request) {
	f.InfoCalls.Add(1)
	slug := r.PathValue("slug")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.addons {
		if a.slug != slug {
			continue
		}
		data := map[string]any{"slug": a.slug, "name": a.slug, "state": "started", "hostname": "addon-" + a.slug}
		if a.ip != "" {
			data["ip_address"] = a.ip
		}
		writeJSON(w, http.StatusOK, map[string]any{"result": "ok", "data": data})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"result": "error", "message": "addon does not exist"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
