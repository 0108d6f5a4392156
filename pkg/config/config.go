// Package config provides configuration loading and validation for unit-oracle.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy names accepted in basket.strategy.
const (
	StrategyGoldAnchored = "gold_anchored"
	StrategyGenesis      = "genesis"
)

// Feed modes accepted in feeds.mode.
const (
	FeedModeLive      = "live"
	FeedModeSimulated = "simulated"
)

// DefaultCurrencies is the standard five-leg FX basket.
var DefaultCurrencies = []string{"BRL", "RUB", "INR", "CNY", "ZAR"}

// DefaultTimeframes is the standard candle timeframe set, in minutes.
var DefaultTimeframes = []int{1, 15, 30, 60, 180, 1440, 4320, 10080, 43200}

// Load loads configuration from YAML file and environment variables.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	data, err := os.ReadFile(absPath) // #nosec G304 -- Path sanitized with filepath.Clean and filepath.Abs
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in YAML
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	return &cfg, nil
}

// ApplyDefaults sets default values for optional fields.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.HTTP.Addr == "" {
		cfg.Server.HTTP.Addr = ":8080"
	}
	if cfg.Server.CORSOrigin == "" {
		cfg.Server.CORSOrigin = "*"
	}

	// Basket defaults
	if cfg.Basket.Strategy == "" {
		cfg.Basket.Strategy = StrategyGoldAnchored
	}
	if cfg.Basket.GoldGramsPerUnit == 0 {
		cfg.Basket.GoldGramsPerUnit = 0.9823
	}
	if cfg.Basket.Window.ToDuration() == 0 {
		cfg.Basket.Window = Duration(5 * time.Second)
	}
	if len(cfg.Basket.Currencies) == 0 {
		cfg.Basket.Currencies = append([]string(nil), DefaultCurrencies...)
	}

	// Feed defaults
	if cfg.Feeds.Mode == "" {
		cfg.Feeds.Mode = FeedModeSimulated
	}
	if cfg.Feeds.Timeout.ToDuration() == 0 {
		cfg.Feeds.Timeout = Duration(4 * time.Second)
	}
	if cfg.Feeds.Interval.ToDuration() == 0 {
		cfg.Feeds.Interval = Duration(time.Second)
	}
	if cfg.Feeds.Gold.Fallback == 0 {
		cfg.Feeds.Gold.Fallback = 1900.0
	}
	if cfg.Feeds.FX.URL == "" {
		cfg.Feeds.FX.URL = "https://api.frankfurter.app/latest"
	}
	if cfg.Feeds.FX.Fallbacks == nil {
		cfg.Feeds.FX.Fallbacks = map[string]float64{
			"BRL": 5.4, "RUB": 92.0, "INR": 83.0, "CNY": 7.2, "ZAR": 18.5,
		}
	}

	// Candle defaults
	if len(cfg.Candles.Timeframes) == 0 {
		cfg.Candles.Timeframes = append([]int(nil), DefaultTimeframes...)
	}
	if cfg.Candles.MaxPerTimeframe == 0 {
		cfg.Candles.MaxPerTimeframe = 1000
	}

	// Sampler defaults
	if cfg.Sampler.Schedule == "" {
		cfg.Sampler.Schedule = "@every 1s"
	}

	// Metrics defaults
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9091"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
