package config

import (
	"fmt"
	"strings"
)

// Validate checks configuration for errors
func Validate(cfg *Config) error {
	if err := validateBasketConfig(&cfg.Basket); err != nil {
		return fmt.Errorf("basket config: %w", err)
	}
	if err := validateFeedsConfig(cfg); err != nil {
		return fmt.Errorf("feeds config: %w", err)
	}
	if err := validateCandlesConfig(&cfg.Candles); err != nil {
		return fmt.Errorf("candles config: %w", err)
	}
	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func validateBasketConfig(cfg *BasketConfig) error {
	strategy := strings.ToLower(cfg.Strategy)
	if strategy != StrategyGoldAnchored && strategy != StrategyGenesis {
		return fmt.Errorf("%w: %s (must be '%s' or '%s')",
			ErrUnknownStrategy, cfg.Strategy, StrategyGoldAnchored, StrategyGenesis)
	}

	if cfg.GoldGramsPerUnit <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidGoldGrams, cfg.GoldGramsPerUnit)
	}

	if cfg.Window.ToDuration() <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidWindow, cfg.Window.ToDuration())
	}

	if len(cfg.Currencies) == 0 {
		return fmt.Errorf("%w", ErrNoCurrencies)
	}

	if strategy == StrategyGenesis {
		for _, c := range cfg.Currencies {
			rate, ok := cfg.GenesisRates[c]
			if !ok || rate <= 0 {
				return fmt.Errorf("%w: %s", ErrMissingGenesisRate, c)
			}
		}
	}

	return nil
}

func validateFeedsConfig(cfg *Config) error {
	mode := strings.ToLower(cfg.Feeds.Mode)
	if mode != FeedModeLive && mode != FeedModeSimulated {
		return fmt.Errorf("%w: %s (must be '%s' or '%s')",
			ErrUnknownFeedMode, cfg.Feeds.Mode, FeedModeLive, FeedModeSimulated)
	}

	if mode == FeedModeLive && cfg.Feeds.Gold.URL == "" {
		return fmt.Errorf("%w", ErrMissingGoldURL)
	}

	if cfg.Feeds.Gold.Fallback <= 0 {
		return fmt.Errorf("%w: gold fallback %v", ErrInvalidFallback, cfg.Feeds.Gold.Fallback)
	}
	for _, c := range cfg.Basket.Currencies {
		fb, ok := cfg.Feeds.FX.Fallbacks[c]
		if !ok || fb <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidFallback, c)
		}
	}

	return nil
}

func validateCandlesConfig(cfg *CandlesConfig) error {
	for _, tf := range cfg.Timeframes {
		if tf <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidTimeframe, tf)
		}
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	level := strings.ToLower(cfg.Level)
	switch level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	format := strings.ToLower(cfg.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'text')", cfg.Format)
	}

	return nil
}
