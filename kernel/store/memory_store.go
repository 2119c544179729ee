package store

import (
	"sync"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/openziti/foundation/v2/concurrenz"
)

// MemoryStore is an in-memory implementation of OptionsStore, used for testing and
// when no options file is wanted.
type MemoryStore struct {
	mu      sync.Mutex
	options concurrenz.AtomicValue[model.Options]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func NewMemoryStoreWith(opts model.Options) *MemoryStore {
	s := &MemoryStore{}
	s.options.Store(opts)
	return s
}

func (s *MemoryStore) GetOptions() (model.Options, error) {
	return s.options.Load(), nil
}

func (s *MemoryStore) SaveAPIKey(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.options.Load()
	opts.GrocyAPIKey = key
	s.options.Store(opts)
	return nil
}

func (s *MemoryStore) SaveResolvedURL(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	opts := s.options.Load()
	opts.ResolvedGrocyURL = url
	s.options.Store(opts)
	return nil
}
