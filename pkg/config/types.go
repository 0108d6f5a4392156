package config

import "time"

// Config is the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Basket  BasketConfig  `yaml:"basket"`
	Feeds   FeedsConfig   `yaml:"feeds"`
	Candles CandlesConfig `yaml:"candles"`
	Sampler SamplerConfig `yaml:"sampler"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP API server
type ServerConfig struct {
	HTTP       HTTPConfig `yaml:"http"`
	WebSocket  WSConfig   `yaml:"websocket"`
	CORSOrigin string     `yaml:"cors_origin"`
	StaticDir  string     `yaml:"static_dir"`
}

// HTTPConfig configures the HTTP listener
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// WSConfig configures the WebSocket endpoint
type WSConfig struct {
	Enabled bool `yaml:"enabled"`
}

// BasketConfig configures the unit basket composition
type BasketConfig struct {
	Strategy         string             `yaml:"strategy"`            // "gold_anchored" or "genesis"
	GoldGramsPerUnit float64            `yaml:"gold_grams_per_unit"` // gram weight of gold backing one unit
	Window           Duration           `yaml:"window"`              // sliding window for spot smoothing
	Currencies       []string           `yaml:"currencies"`
	GenesisRates     map[string]float64 `yaml:"genesis_rates"` // frozen baseline, required for "genesis" strategy
}

// FeedsConfig configures the upstream market data feeds
type FeedsConfig struct {
	Mode     string        `yaml:"mode"`     // "live" or "simulated"
	Timeout  Duration      `yaml:"timeout"`  // per-fetch deadline
	Interval Duration      `yaml:"interval"` // background refresh interval
	Gold     GoldFeed      `yaml:"gold"`
	FX       FXFeed        `yaml:"fx"`
	SimSeed  int64         `yaml:"sim_seed"` // seed for the simulated feed (0 = time-based)
}

// GoldFeed configures the gold spot source
type GoldFeed struct {
	URL      string  `yaml:"url"`
	APIKey   string  `yaml:"api_key"`
	Fallback float64 `yaml:"fallback"` // USD per troy ounce
}

// FXFeed configures the FX rates source
type FXFeed struct {
	URL       string             `yaml:"url"`
	Fallbacks map[string]float64 `yaml:"fallbacks"` // currency units per USD
}

// CandlesConfig configures OHLC candle aggregation
type CandlesConfig struct {
	Timeframes      []int `yaml:"timeframes"`        // minutes
	MaxPerTimeframe int   `yaml:"max_per_timeframe"` // oldest-first eviction above this
}

// SamplerConfig configures the background compute scheduler
type SamplerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // cron spec with seconds, e.g. "@every 1s"
}

// MetricsConfig configures Prometheus metrics
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig configures logging
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a wrapper around time.Duration for YAML parsing
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	td, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(td)
	return nil
}

// ToDuration converts Duration to time.Duration
func (d Duration) ToDuration() time.Duration {
	return time.Duration(d)
}
