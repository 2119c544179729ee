package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecorderWithoutURLIsNop(t *testing.T) {
	r := NewRecorder(model.InfluxConfig{})
	_, ok := r.(NopRecorder)
	assert.True(t, ok)
	r.Record(context.Background(), Event{Operation: "lookup"})
	r.Close()
}

func TestInfluxRecorderWritesLineProtocol(t *testing.T) {
	var mu sync.Mutex
	var bodies []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v2/write" {
			body, _ := io.ReadAll(r.Body)
			mu.Lock()
			bodies = append(bodies, string(body))
			mu.Unlock()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	r := NewInfluxRecorder(model.InfluxConfig{URL: server.URL, Token: "t", Org: "home", Bucket: "scans"})
	r.Record(context.Background(), Event{
		Operation: "purchase",
		Barcode:   "4006381333931",
		Outcome:   "found",
		Status:    200,
		Time:      time.Unix(1700000000, 0),
	})
	r.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(bodies) > 0
	}, 5*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	line := strings.Join(bodies, "\n")
	assert.Contains(t, line, "scan,operation=purchase,outcome=found")
	assert.Contains(t, line, `barcode="4006381333931"`)
	assert.Contains(t, line, "status=200i")
}
