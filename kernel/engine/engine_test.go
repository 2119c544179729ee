package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/store"
)

type stubResolver struct {
	url   string
	err   error
	calls atomic.Int32
}

func (r *stubResolver) Resolve(context.Context) (string, error) {
	r.calls.Add(1)
	return r.url, r.err
}

func newTestScanner(opts model.Options, resolver BaseURLResolver) (*Scanner, *store.MemoryStore) {
	s := store.NewMemoryStoreWith(opts)
	return NewScanner(model.DefaultConfig(), s, resolver, grocy.NewClient(2*time.Second)), s
}

func ptr(v float64) *float64 {
	return &v
}
