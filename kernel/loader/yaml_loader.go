package loader

import (
	"os"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	EnvSupervisorToken = "SUPERVISOR_TOKEN"
	EnvHassioToken     = "HASSIO_TOKEN"
	EnvAPIKey          = "API_KEY"
	EnvListen          = "GROCY_SCANNER_LISTEN"
)

// LoadConfig reads the scanner configuration from path, applies environment overrides and
// defaults, and validates the result. An empty path, or a missing file at the default
// location, yields the defaults.
func LoadConfig(path string) (*model.ScannerConfig, error) {
	if path == "" {
		return finish(&model.ScannerConfig{})
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg, err := LoadConfigBytes(data)
		if err != nil {
			return nil, errors.Wrapf(err, "config [%s]", path)
		}
		return cfg, nil
	case os.IsNotExist(err) && path == model.DefaultConfigLocation:
		return finish(&model.ScannerConfig{})
	default:
		return nil, errors.Wrapf(err, "error reading config [%s]", path)
	}
}

// LoadConfigBytes parses a yaml document, then applies the same overrides, defaults and
// validation as LoadConfig.
func LoadConfigBytes(data []byte) (*model.ScannerConfig, error) {
	cfg := &model.ScannerConfig{}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, errors.Wrap(err, "error parsing config")
	}
	return finish(cfg)
}

func finish(cfg *model.ScannerConfig) (*model.ScannerConfig, error) {
	applyEnv(cfg)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

func applyEnv(cfg *model.ScannerConfig) {
	if token := os.Getenv(EnvSupervisorToken); token != "" {
		cfg.Supervisor.Token = token
	} else if token := os.Getenv(EnvHassioToken); token != "" && cfg.Supervisor.Token == "" {
		cfg.Supervisor.Token = token
	}
	if key := os.Getenv(EnvAPIKey); key != "" && cfg.Grocy.APIKey == "" {
		cfg.Grocy.APIKey = key
	}
	if listen := os.Getenv(EnvListen); listen != "" {
		cfg.Listen = listen
	}
}
