package subcmd

import (
	"io/fs"
	"os"

	"github.com/grocyscan/grocy-scanner/kernel/engine"
	"github.com/grocyscan/grocy-scanner/kernel/grocy"
	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/openfoodfacts"
	"github.com/grocyscan/grocy-scanner/kernel/store"
	"github.com/grocyscan/grocy-scanner/kernel/supervisor"
	"github.com/grocyscan/grocy-scanner/kernel/telemetry"
	"github.com/grocyscan/grocy-scanner/kernel/web"
	"github.com/sirupsen/logrus"
)

// scannerRuntime holds the components shared by serve and mcp-server.
type scannerRuntime struct {
	cfg        *model.ScannerConfig
	store      store.OptionsStore
	recorder   telemetry.Recorder
	scanner    *engine.Scanner
	reconciler *engine.Reconciler
}

func newSupervisorClient(cfg *model.ScannerConfig) (*supervisor.Client, error) {
	if cfg.Supervisor.Token == "" {
		logrus.Warn("no supervisor token configured, addon discovery will be rejected")
	}
	return supervisor.NewClient(cfg.Supervisor.URL, cfg.Supervisor.Token, cfg.SupervisorTimeout())
}

func newResolver(cfg *model.ScannerConfig) (*supervisor.Resolver, error) {
	client, err := newSupervisorClient(cfg)
	if err != nil {
		return nil, err
	}
	resolver := supervisor.NewResolver(client, cfg.Supervisor.ServiceName, cfg.Supervisor.SelfSlug, cfg.Grocy.Port)
	resolver.Timeout = 2 * cfg.SupervisorTimeout()
	return resolver, nil
}

func newOptionsStore(cfg *model.ScannerConfig, memory bool) store.OptionsStore {
	if memory {
		logrus.Info("using in-memory options store")
		return store.NewMemoryStore()
	}
	logrus.Infof("using options file [%s]", cfg.OptionsPath)
	return store.NewFileStore(cfg.OptionsPath)
}

func newRuntime(cfg *model.ScannerConfig, memory bool) (*scannerRuntime, error) {
	resolver, err := newResolver(cfg)
	if err != nil {
		return nil, err
	}
	optionsStore := newOptionsStore(cfg, memory)
	gateway := grocy.NewClient(cfg.GrocyTimeout())
	recorder := telemetry.NewRecorder(cfg.Influx)

	scanner := engine.NewScanner(cfg, optionsStore, resolver, gateway)
	scanner.Recorder = recorder
	if cfg.FallbackEnabled() {
		off, err := openfoodfacts.NewClient(cfg.OpenFoodFacts.URL, cfg.OpenFoodFactsTimeout())
		if err != nil {
			return nil, err
		}
		scanner.Products = off
	}

	return &scannerRuntime{
		cfg:        cfg,
		store:      optionsStore,
		recorder:   recorder,
		scanner:    scanner,
		reconciler: engine.NewReconciler(optionsStore, cfg, resolver, gateway),
	}, nil
}

func (rt *scannerRuntime) staticAssets() fs.FS {
	switch {
	case rt.cfg.DisableWeb:
		return nil
	case rt.cfg.WebDir != "":
		return os.DirFS(rt.cfg.WebDir)
	default:
		return web.FS()
	}
}

func (rt *scannerRuntime) Close() {
	rt.recorder.Close()
}
