// Package config provides configuration loading and validation for unit-oracle.
package config

import "errors"

var (
	// ErrUnknownStrategy indicates an unsupported basket strategy.
	ErrUnknownStrategy = errors.New("unknown basket strategy")
	// ErrInvalidGoldGrams indicates a non-positive gold gram weight.
	ErrInvalidGoldGrams = errors.New("gold_grams_per_unit must be positive")
	// ErrInvalidWindow indicates a non-positive smoothing window.
	ErrInvalidWindow = errors.New("basket window must be positive")
	// ErrNoCurrencies indicates an empty FX basket.
	ErrNoCurrencies = errors.New("at least one basket currency required")
	// ErrMissingGenesisRate indicates a currency without a frozen baseline rate.
	ErrMissingGenesisRate = errors.New("genesis strategy requires a genesis rate for every currency")
	// ErrUnknownFeedMode indicates an unsupported feed mode.
	ErrUnknownFeedMode = errors.New("unknown feed mode")
	// ErrMissingGoldURL indicates a live gold feed without a URL.
	ErrMissingGoldURL = errors.New("live feed mode requires feeds.gold.url")
	// ErrInvalidFallback indicates a non-positive fallback value.
	ErrInvalidFallback = errors.New("feed fallback values must be positive")
	// ErrInvalidTimeframe indicates a non-positive candle timeframe.
	ErrInvalidTimeframe = errors.New("candle timeframes must be positive")
)
