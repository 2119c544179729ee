package engine

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/store"
	"github.com/grocyscan/grocy-scanner/kernel/supervisor"
	"github.com/grocyscan/grocy-scanner/kernel/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconciler_ResolvesTestsAndPersists(t *testing.T) {
	fakeGrocy := testutil.NewFakeGrocy(t, "secret")
	u, err := url.Parse(fakeGrocy.URL())
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	fakeSupervisor := testutil.NewFakeSupervisor(t, "token")
	fakeSupervisor.AddAddon("a0d7b954_grocy", u.Hostname())

	client, err := supervisor.NewClient(fakeSupervisor.URL(), "token", 2*time.Second)
	require.NoError(t, err)
	resolver := supervisor.NewResolver(client, "grocy", "grocy_scanner", port)

	memStore := store.NewMemoryStore()
	r := NewReconciler(memStore, nil, resolver, grocy.NewClient(2*time.Second))

	result, err := r.Reconcile(context.Background(), "secret")
	require.NoError(t, err)
	assert.Equal(t, model.Found, result.Result.Outcome)
	assert.Equal(t, fakeGrocy.URL(), result.BaseURL)

	opts, err := memStore.GetOptions()
	require.NoError(t, err)
	assert.Equal(t, fakeGrocy.URL(), opts.ResolvedGrocyURL)
	assert.Equal(t, "/api/system/info", fakeGrocy.LastRequest().Path)
	assert.Equal(t, "secret", fakeGrocy.LastRequest().APIKey)
}

func TestReconciler_UnauthorizedDoesNotPersist(t *testing.T) {
	fakeGrocy := testutil.NewFakeGrocy(t, "secret")
	memStore := store.NewMemoryStore()
	r := NewReconciler(memStore, nil, &stubResolver{url: fakeGrocy.URL()}, grocy.NewClient(2*time.Second))

	result, err := r.Reconcile(context.Background(), "wrong")
	require.NoError(t, err)
	assert.Equal(t, model.Unauthorized, result.Result.Outcome)

	opts, _ := memStore.GetOptions()
	assert.Empty(t, opts.ResolvedGrocyURL)
}

func TestReconciler_FallsBackToStoredKey(t *testing.T) {
	fakeGrocy := testutil.NewFakeGrocy(t, "stored")
	memStore := store.NewMemoryStoreWith(model.Options{GrocyAPIKey: "stored"})
	r := NewReconciler(memStore, nil, &stubResolver{url: fakeGrocy.URL()}, grocy.NewClient(2*time.Second))

	result, err := r.Reconcile(context.Background(), "")
	require.NoError(t, err)
	assert.True(t, result.Result.OK())
}

func TestReconciler_MissingCredential(t *testing.T) {
	resolver := &stubResolver{url: "http://127.0.0.1:1"}
	r := NewReconciler(store.NewMemoryStore(), nil, resolver, grocy.NewClient(time.Second))

	_, err := r.Reconcile(context.Background(), "  ")
	assert.ErrorIs(t, err, model.ErrMissingCredential)
	assert.Equal(t, int32(0), resolver.calls.Load())
}

func TestReconciler_DiscoveryErrorsPropagate(t *testing.T) {
	resolver := &stubResolver{err: model.ErrServiceNotFound}
	r := NewReconciler(store.NewMemoryStore(), nil, resolver, grocy.NewClient(time.Second))

	_, err := r.Reconcile(context.Background(), "key")
	assert.True(t, errors.Is(err, model.ErrServiceNotFound))
}

func TestReconciler_StaticURLSkipsDiscovery(t *testing.T) {
	fakeGrocy := testutil.NewFakeGrocy(t, "key")
	cfg := model.DefaultConfig()
	cfg.Grocy.URL = fakeGrocy.URL() + "/"
	resolver := &stubResolver{err: model.ErrRegistryUnavailable}

	r := NewReconciler(store.NewMemoryStore(), cfg, resolver, grocy.NewClient(2*time.Second))
	result, err := r.Reconcile(context.Background(), "key")
	require.NoError(t, err)
	assert.Equal(t, fakeGrocy.URL(), result.BaseURL)
	assert.Equal(t, int32(0), resolver.calls.Load())
}

func TestReconciler_NoResolver(t *testing.T) {
	r := NewReconciler(store.NewMemoryStore(), nil, nil, grocy.NewClient(time.Second))
	_, err := r.Reconcile(context.Background(), "key")
	assert.ErrorIs(t, err, model.ErrBaseURLUnset)
}
