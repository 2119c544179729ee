package engine

import (
	"context"
	"strings"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/openfoodfacts"
	"github.com/grocyscan/grocy-scanner/kernel/store"
	"github.com/grocyscan/grocy-scanner/kernel/telemetry"
	"github.com/michaelquigley/pfxlog"
)

const OperationLookup = "lookup"

// ProductSource is a public product database consulted when grocy is not involved.
type ProductSource interface {
	Lookup(ctx context.Context, barcode string) (*openfoodfacts.Product, error)
}

// Scanner serves the per-request inventory operations. Options are read from the store
// on every call, so a key saved through SetAPIKey is used by the next request.
type Scanner struct {
	Store    store.OptionsStore
	Scans    store.ScanStore
	Recorder telemetry.Recorder
	Config   *model.ScannerConfig
	Resolver BaseURLResolver
	Gateway  grocy.Gateway
	Products ProductSource
}

func NewScanner(cfg *model.ScannerConfig, s store.OptionsStore, resolver BaseURLResolver, gateway grocy.Gateway) *Scanner {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	return &Scanner{
		Store:    s,
		Scans:    store.NewScanLog(),
		Recorder: telemetry.NopRecorder{},
		Config:   cfg,
		Resolver: resolver,
		Gateway:  gateway,
	}
}

// SetAPIKey persists a new inventory service api key.
func (s *Scanner) SetAPIKey(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.ErrMissingCredential
	}
	if err := s.Store.SaveAPIKey(key); err != nil {
		return err
	}
	pfxlog.Logger().WithField("key", model.Fingerprint(key)).Info("grocy api key updated")
	return nil
}

// Lookup fetches the stock details for barcode.
func (s *Scanner) Lookup(ctx context.Context, barcode string) (model.Result, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return model.Result{}, model.ErrMissingBarcode
	}
	t, err := s.target(ctx)
	if err != nil {
		return model.Result{}, err
	}
	result, err := s.roundTrip(ctx, t, func(baseURL string) (model.Result, error) {
		return s.Gateway.LookupBarcode(ctx, baseURL, t.apiKey, barcode)
	})
	if err != nil {
		return model.Result{}, err
	}
	s.record(ctx, OperationLookup, barcode, result)
	return result, nil
}

// Apply runs the named stock action. A nil quantity takes the action's default.
func (s *Scanner) Apply(ctx context.Context, actionName, barcode string, quantity *float64) (model.Result, error) {
	action, err := model.GetStockAction(actionName)
	if err != nil {
		return model.Result{}, err
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return model.Result{}, model.ErrMissingBarcode
	}
	amount, err := model.ResolveAmount(action, quantity)
	if err != nil {
		return model.Result{}, err
	}
	t, err := s.target(ctx)
	if err != nil {
		return model.Result{}, err
	}
	result, err := s.roundTrip(ctx, t, func(baseURL string) (model.Result, error) {
		return s.Gateway.ApplyAction(ctx, baseURL, t.apiKey, barcode, action, amount)
	})
	if err != nil {
		return model.Result{}, err
	}
	s.record(ctx, action.Label(), barcode, result)
	return result, nil
}

// Fallback looks barcode up in the public product database. Like every other scan it
// requires a configured api key.
func (s *Scanner) Fallback(ctx context.Context, barcode string) (*openfoodfacts.Product, error) {
	if s.Products == nil {
		return nil, model.ErrFallbackDisabled
	}
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, model.ErrMissingBarcode
	}
	mctx, err := s.context()
	if err != nil {
		return nil, err
	}
	if mctx.APIKey() == "" {
		return nil, model.ErrMissingCredential
	}
	return s.Products.Lookup(ctx, barcode)
}

// RecentScans returns the scan log, newest first.
func (s *Scanner) RecentScans() []model.ScanRecord {
	return s.Scans.ListScans()
}

func (s *Scanner) context() (*model.Context, error) {
	opts, err := s.Store.GetOptions()
	if err != nil {
		return nil, err
	}
	return model.NewContext(s.Config, opts), nil
}

type target struct {
	baseURL string
	apiKey  string
	// stored is set when baseURL is the persisted resolved url
	stored  bool
}

// target picks the api key and base url for one request: the stored resolved url, else
// the static override, else a fresh resolution.
func (s *Scanner) target(ctx context.Context) (target, error) {
	mctx, err := s.context()
	if err != nil {
		return target{}, err
	}
	t := target{apiKey: mctx.APIKey()}
	if t.apiKey == "" {
		return target{}, model.ErrMissingCredential
	}
	if t.baseURL = mctx.KnownBaseURL(); t.baseURL != "" {
		t.stored = strings.TrimSpace(mctx.Options.ResolvedGrocyURL) != ""
		return t, nil
	}
	if s.Resolver == nil {
		return target{}, model.ErrBaseURLUnset
	}
	if t.baseURL, err = s.Resolver.Resolve(ctx); err != nil {
		return target{}, err
	}
	return t, nil
}

// roundTrip runs call against t.baseURL. When the stored resolved url is unreachable the
// service is resolved once more; a different address is tried and, if grocy answers
// there, persisted in place of the stale one.
func (s *Scanner) roundTrip(ctx context.Context, t target, call func(baseURL string) (model.Result, error)) (model.Result, error) {
	result, err := call(t.baseURL)
	if err != nil || result.Outcome != model.TransportError || !t.stored || s.Resolver == nil {
		return result, err
	}

	log := pfxlog.Logger().WithField("url", t.baseURL)
	fresh, err := s.Resolver.Resolve(ctx)
	if err != nil {
		log.WithError(err).Warn("stored grocy url unreachable and re-resolution failed")
		return result, nil
	}
	if fresh == t.baseURL {
		return result, nil
	}

	log.WithField("resolved", fresh).Info("stored grocy url unreachable, retrying at re-resolved url")
	retried, err := call(fresh)
	if err != nil {
		return model.Result{}, err
	}
	if retried.Outcome != model.TransportError {
		if err := s.Store.SaveResolvedURL(fresh); err != nil {
			log.WithError(err).Warn("unable to persist re-resolved grocy url")
		}
	}
	return retried, nil
}

func (s *Scanner) record(ctx context.Context, operation, barcode string, result model.Result) {
	now := time.Now()
	rec := model.ScanRecord{
		Barcode:   barcode,
		Operation: operation,
		Outcome:   result.Outcome.String(),
		Status:    result.Status,
		ScannedAt: now,
	}
	if result.Product != nil {
		rec.Product = result.Product.Name
	}
	s.Scans.RecordScan(rec)
	s.Recorder.Record(ctx, telemetry.Event{
		Operation: operation,
		Barcode:   barcode,
		Outcome:   rec.Outcome,
		Status:    result.Status,
		Time:      now,
	})

	pfxlog.ContextLogger(operation).WithField("barcode", barcode).Debugf("grocy answered [%s]", rec.Outcome)
}
