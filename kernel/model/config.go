package model

import (
	"fmt"
	"time"
)

const (
	DefaultListen         = ":3456"
	DefaultOptionsPath    = "/data/options.json"
	DefaultSupervisorURL  = "http://supervisor"
	DefaultServiceName    = "grocy"
	DefaultSelfSlug       = "grocy_scanner"
	DefaultGrocyPort      = 80
	DefaultTimeout        = "10s"
	DefaultOpenFoodFacts  = "https://world.openfoodfacts.org"
	DefaultInfluxBucket   = "grocy_scanner"
	DefaultLogLevel       = "info"
	ConfigFileName        = "config.yml"
	DefaultConfigLocation = "/data/" + ConfigFileName
)

// ScannerConfig is the static configuration of the scanner service.
type ScannerConfig struct {
	Listen        string              `yaml:"listen"`
	OptionsPath   string              `yaml:"options_path"`
	WebDir        string              `yaml:"web_dir"`
	DisableWeb    bool                `yaml:"disable_web"`
	LogLevel      string              `yaml:"log_level"`
	Supervisor    SupervisorConfig    `yaml:"supervisor"`
	Grocy         GrocyConfig         `yaml:"grocy"`
	OpenFoodFacts OpenFoodFactsConfig `yaml:"openfoodfacts"`
	Influx        InfluxConfig        `yaml:"influx"`
}

type SupervisorConfig struct {
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	ServiceName string `yaml:"service_name"`
	SelfSlug    string `yaml:"self_slug"`
	Timeout     string `yaml:"timeout"`
}

type GrocyConfig struct {
	// URL skips supervisor discovery when set
	URL     string `yaml:"url"`
	Port    int    `yaml:"port"`
	APIKey  string `yaml:"api_key"`
	Timeout string `yaml:"timeout"`
}

type OpenFoodFactsConfig struct {
	Enabled *bool  `yaml:"enabled"`
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *ScannerConfig {
	cfg := &ScannerConfig{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills every empty field with its default.
func (c *ScannerConfig) ApplyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.OptionsPath == "" {
		c.OptionsPath = DefaultOptionsPath
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Supervisor.URL == "" {
		c.Supervisor.URL = DefaultSupervisorURL
	}
	if c.Supervisor.ServiceName == "" {
		c.Supervisor.ServiceName = DefaultServiceName
	}
	if c.Supervisor.SelfSlug == "" {
		c.Supervisor.SelfSlug = DefaultSelfSlug
	}
	if c.Supervisor.Timeout == "" {
		c.Supervisor.Timeout = DefaultTimeout
	}
	if c.Grocy.Port == 0 {
		c.Grocy.Port = DefaultGrocyPort
	}
	if c.Grocy.Timeout == "" {
		c.Grocy.Timeout = DefaultTimeout
	}
	if c.OpenFoodFacts.URL == "" {
		c.OpenFoodFacts.URL = DefaultOpenFoodFacts
	}
	if c.OpenFoodFacts.Timeout == "" {
		c.OpenFoodFacts.Timeout = DefaultTimeout
	}
	if c.OpenFoodFacts.Enabled == nil {
		enabled := true
		c.OpenFoodFacts.Enabled = &enabled
	}
	if c.Influx.Bucket == "" {
		c.Influx.Bucket = DefaultInfluxBucket
	}
}

// Validate checks the fields that cannot be defaulted.
func (c *ScannerConfig) Validate() error {
	if c.Grocy.Port <= 0 || c.Grocy.Port > 65535 {
		return fmt.Errorf("grocy.port [%d] out of range", c.Grocy.Port)
	}
	for name, value := range map[string]string{
		"supervisor.timeout":    c.Supervisor.Timeout,
		"grocy.timeout":         c.Grocy.Timeout,
		"openfoodfacts.timeout": c.OpenFoodFacts.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s [%s]: %w", name, value, err)
		}
	}
	return nil
}

func (c *ScannerConfig) SupervisorTimeout() time.Duration {
	return parseDurationOr(c.Supervisor.Timeout, 10*time.Second)
}

func (c *ScannerConfig) GrocyTimeout() time.Duration {
	return parseDurationOr(c.Grocy.Timeout, 10*time.Second)
}

func (c *ScannerConfig) OpenFoodFactsTimeout() time.Duration {
	return parseDurationOr(c.OpenFoodFacts.Timeout, 10*time.Second)
}

func (c *ScannerConfig) FallbackEnabled() bool {
	return c.OpenFoodFacts.Enabled == nil || *c.OpenFoodFacts.Enabled
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
