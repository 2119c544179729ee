package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestFileStore_OptionsStore(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "options.json")

	store := NewFileStore(path)

	// Test GetOptions on missing file
	opts, err := store.GetOptions()
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if opts.HasAPIKey() {
		t.Errorf("expected no api key, got '%s'", opts.GrocyAPIKey)
	}

	// Test SaveAPIKey
	if err := store.SaveAPIKey("abc123"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}
	if err := store.SaveResolvedURL("http://172.30.33.4:80"); err != nil {
		t.Fatalf("SaveResolvedURL failed: %v", err)
	}

	// Verify saved
	opts, err = NewFileStore(path).GetOptions()
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if opts.GrocyAPIKey != "abc123" {
		t.Errorf("expected key 'abc123', got '%s'", opts.GrocyAPIKey)
	}
	if opts.ResolvedGrocyURL != "http://172.30.33.4:80" {
		t.Errorf("expected resolved url, got '%s'", opts.ResolvedGrocyURL)
	}
}

func TestFileStore_PreservesUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	if err := os.WriteFile(path, []byte(`{"log_level":"debug","grocy_api_key":"old"}`), 0644); err != nil {
		t.Fatalf("failed to write options: %v", err)
	}

	store := NewFileStore(path)
	if err := store.SaveAPIKey("new"); err != nil {
		t.Fatalf("SaveAPIKey failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read options: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("failed to parse options: %v", err)
	}
	if raw["log_level"] != "debug" {
		t.Errorf("expected log_level to be preserved, got %v", raw["log_level"])
	}
	if raw["grocy_api_key"] != "new" {
		t.Errorf("expected key 'new', got %v", raw["grocy_api_key"])
	}
}

func TestFileStore_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	if err := os.WriteFile(path, []byte(`{not-json`), 0644); err != nil {
		t.Fatalf("failed to write options: %v", err)
	}

	store := NewFileStore(path)
	if _, err := store.GetOptions(); err == nil {
		t.Fatal("expected parse error")
	}
	if err := store.SaveAPIKey("x"); err == nil {
		t.Fatal("expected SaveAPIKey to refuse overwriting an unparseable file")
	}
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.json")
	store := NewFileStore(path)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = store.SaveAPIKey(fmt.Sprintf("key-%d", i))
			} else {
				_ = store.SaveResolvedURL(fmt.Sprintf("http://10.0.0.%d:80", i))
			}
		}(i)
	}
	wg.Wait()

	opts, err := store.GetOptions()
	if err != nil {
		t.Fatalf("GetOptions failed: %v", err)
	}
	if opts.GrocyAPIKey == "" || opts.ResolvedGrocyURL == "" {
		t.Errorf("expected both fields to survive concurrent writes, got %+v", opts)
	}
}
