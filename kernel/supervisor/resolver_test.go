package supervisor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T, fake *testutil.FakeSupervisor) *Resolver {
	t.Helper()
	client, err := NewClient(fake.URL(), fake.Token, 2*time.Second)
	require.NoError(t, err)
	return NewResolver(client, "grocy", "grocy_scanner", 80)
}

func TestResolve_SingleMatch(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "supervisor-token")
	fake.AddAddon("core_mosquitto", "172.30.33.1")
	fake.AddAddon("a0d7b954_grocy", "172.30.33.4")
	fake.AddAddon("local_grocy_scanner", "172.30.33.9")

	baseURL, err := newTestResolver(t, fake).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://172.30.33.4:80", baseURL)
}

func TestResolve_ServiceNotFound(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "")
	fake.AddAddon("core_mosquitto", "172.30.33.1")
	fake.AddAddon("grocy_scanner", "172.30.33.9")

	_, err := newTestResolver(t, fake).Resolve(context.Background())
	assert.True(t, errors.Is(err, model.ErrServiceNotFound), "got %v", err)
	assert.Equal(t, int32(0), fake.InfoCalls.Load())
}

func TestResolve_AddressUnresolved(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "")
	fake.AddAddon("a0d7b954_grocy", "")

	_, err := newTestResolver(t, fake).Resolve(context.Background())
	assert.True(t, errors.Is(err, model.ErrAddressUnresolved), "got %v", err)
}

func TestResolve_RegistryUnavailable(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "")
	fake.FailList = true

	_, err := newTestResolver(t, fake).Resolve(context.Background())
	assert.True(t, errors.Is(err, model.ErrRegistryUnavailable), "got %v", err)
}

func TestResolve_BadToken(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "right")
	fake.AddAddon("a0d7b954_grocy", "172.30.33.4")

	client, err := NewClient(fake.URL(), "wrong", time.Second)
	require.NoError(t, err)

	_, err = NewResolver(client, "", "", 0).Resolve(context.Background())
	assert.True(t, errors.Is(err, model.ErrRegistryUnavailable), "got %v", err)
}

func TestResolve_NoCaching(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "")
	fake.AddAddon("a0d7b954_grocy", "172.30.33.4")
	r := newTestResolver(t, fake)

	for i := 0; i < 3; i++ {
		_, err := r.Resolve(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), fake.ListCalls.Load())
}

func TestResolve_ConcurrentCallersSucceed(t *testing.T) {
	fake := testutil.NewFakeSupervisor(t, "")
	fake.AddAddon("a0d7b954_grocy", "172.30.33.4")
	r := newTestResolver(t, fake)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			baseURL, err := r.Resolve(context.Background())
			if err == nil && baseURL != "http://172.30.33.4:80" {
				err = errors.New("unexpected base url " + baseURL)
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
	assert.LessOrEqual(t, fake.ListCalls.Load(), int32(10))
}

type slowRegistry struct {
	delay   time.Duration
	started chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (s *slowRegistry) ListAddons(ctx context.Context) ([]Addon, error) {
	s.calls.Add(1)
	s.once.Do(func() { close(s.started) })
	select {
	case <-time.After(s.delay):
		return []Addon{{Slug: "a0d7b954_grocy"}}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *slowRegistry) AddonInfo(_ context.Context, slug string) (*AddonInfo, error) {
	return &AddonInfo{Slug: slug, IPAddress: "172.30.33.4"}, nil
}

func TestResolve_CancelledCallerDoesNotFailOthers(t *testing.T) {
	registry := &slowRegistry{delay: 200 * time.Millisecond, started: make(chan struct{})}
	r := NewResolver(registry, "grocy", "grocy_scanner", 80)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(first)
		firstErr <- err
	}()

	<-registry.started
	secondURL := make(chan string, 1)
	secondErr := make(chan error, 1)
	go func() {
		baseURL, err := r.Resolve(context.Background())
		secondURL <- baseURL
		secondErr <- err
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	require.NoError(t, <-secondErr)
	assert.Equal(t, "http://172.30.33.4:80", <-secondURL)
	assert.Equal(t, int32(1), registry.calls.Load())
}

func TestResolve_SharedQueryIsBounded(t *testing.T) {
	registry := &slowRegistry{delay: time.Second, started: make(chan struct{})}
	r := NewResolver(registry, "grocy", "grocy_scanner", 80)
	r.Timeout = 50 * time.Millisecond

	_, err := r.Resolve(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFindService(t *testing.T) {
	addons := []Addon{{Slug: "grocy_scanner"}, {Slug: "local_grocy"}, {Slug: "other_grocy"}}

	slug, err := FindService(addons, "grocy", "grocy_scanner")
	require.NoError(t, err)
	assert.Equal(t, "local_grocy", slug)

	_, err = FindService(nil, "grocy", "grocy_scanner")
	assert.ErrorIs(t, err, model.ErrServiceNotFound)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "http://172.30.33.4:80", BaseURL("172.30.33.4", 80))
	assert.Equal(t, "http://[fd00::1]:9192", BaseURL("fd00::1", 9192))
}
