package engine

import (
	"context"
	"strings"

	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/store"
	"github.com/sirupsen/logrus"
)

// BaseURLResolver locates the inventory service.
type BaseURLResolver interface {
	Resolve(ctx context.Context) (string, error)
}

// Reconciler brings the persisted resolved url in line with the inventory service that
// is currently reachable.
type Reconciler struct {
	Store    store.OptionsStore
	Config   *model.ScannerConfig
	Resolver BaseURLResolver
	Gateway  grocy.Gateway
}

type ReconcileResult struct {
	BaseURL string
	Result  model.Result
}

func NewReconciler(s store.OptionsStore, cfg *model.ScannerConfig, resolver BaseURLResolver, gateway grocy.Gateway) *Reconciler {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Reconciler{Store: s, Config: cfg, Resolver: resolver, Gateway: gateway}
}

// Reconcile locates the inventory service, tests apiKey against it and persists the
// base url when the test succeeds. An empty apiKey falls back to the stored key.
func (r *Reconciler) Reconcile(ctx context.Context, apiKey string) (*ReconcileResult, error) {
	opts, err := r.Store.GetOptions()
	if err != nil {
		logrus.Warnf("unable to load options, continuing with defaults: %v", err)
		opts = model.Options{}
	}
	mctx := model.NewContext(r.Config, opts)

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = mctx.APIKey()
	}
	if apiKey == "" {
		return nil, model.ErrMissingCredential
	}

	baseURL, err := r.locate(ctx)
	if err != nil {
		logrus.Errorf("unable to locate grocy: %v", err)
		return nil, err
	}

	result, err := r.Gateway.TestConnection(ctx, baseURL, apiKey)
	if err != nil {
		return nil, err
	}

	log := logrus.WithFields(logrus.Fields{
		"url":     baseURL,
		"key":     model.Fingerprint(apiKey),
		"outcome": result.Outcome.String(),
	})
	if !result.OK() {
		log.Errorf("failed to connect to grocy: %s", result.Message)
		return &ReconcileResult{BaseURL: baseURL, Result: result}, nil
	}

	if baseURL != opts.ResolvedGrocyURL {
		if err := r.Store.SaveResolvedURL(baseURL); err != nil {
			return nil, err
		}
	}
	log.Info("connected to grocy via internal network")
	return &ReconcileResult{BaseURL: baseURL, Result: result}, nil
}

func (r *Reconciler) locate(ctx context.Context) (string, error) {
	if static := strings.TrimRight(strings.TrimSpace(r.Config.Grocy.URL), "/"); static != "" {
		return static, nil
	}
	if r.Resolver == nil {
		return "", model.ErrBaseURLUnset
	}
	return r.Resolver.Resolve(ctx)
}
