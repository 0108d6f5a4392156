package feed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

// Adapter wraps the feed sources behind synchronous-looking calls with an
// explicit bounded deadline and a mandatory static fallback per instrument.
// The engine never blocks indefinitely and never receives a missing or
// unusable scalar: worst case it gets the configured fallback.
type Adapter struct {
	gold    GoldSource
	fx      FXSource
	timeout time.Duration

	goldFallback decimal.Decimal
	fxFallbacks  map[string]decimal.Decimal

	logger *logging.Logger
}

// NewAdapter creates an adapter. fxFallbacks keys define the instrument set
// FXRates reports: a currency absent from the fallbacks is never returned.
func NewAdapter(gold GoldSource, fx FXSource, timeout time.Duration, goldFallback decimal.Decimal, fxFallbacks map[string]decimal.Decimal, logger *logging.Logger) *Adapter {
	fbs := make(map[string]decimal.Decimal, len(fxFallbacks))
	for k, v := range fxFallbacks {
		fbs[k] = v
	}

	return &Adapter{
		gold:         gold,
		fx:           fx,
		timeout:      timeout,
		goldFallback: goldFallback,
		fxFallbacks:  fbs,
		logger:       logger,
	}
}

// GoldSpot returns the current gold spot in USD per troy ounce. A healthy
// source's cached value is used directly; otherwise one on-demand fetch runs
// within the deadline, and on failure the fallback is substituted.
func (a *Adapter) GoldSpot(ctx context.Context) decimal.Decimal {
	if a.gold != nil {
		if price, ok := a.gold.GoldPrice(); ok && a.gold.IsHealthy() {
			return price
		}

		fctx, cancel := context.WithTimeout(ctx, a.timeout)
		err := a.gold.FetchNow(fctx)
		cancel()
		if err != nil {
			a.logger.Warn("On-demand gold fetch failed", "error", err)
		} else if price, ok := a.gold.GoldPrice(); ok {
			return price
		}
	}

	metrics.RecordFeedFallback(GoldInstrument)
	a.logger.Warn("Gold feed unavailable, substituting fallback",
		"fallback", a.goldFallback)
	return a.goldFallback
}

// FXRates returns USD-denominated rates for every configured instrument,
// substituting the static fallback for any leg the source cannot supply.
func (a *Adapter) FXRates(ctx context.Context) map[string]decimal.Decimal {
	var rates map[string]decimal.Decimal
	if a.fx != nil {
		rates = a.fx.Rates()
		if len(rates) == 0 || !a.fx.IsHealthy() {
			fctx, cancel := context.WithTimeout(ctx, a.timeout)
			err := a.fx.FetchNow(fctx)
			cancel()
			if err != nil {
				a.logger.Warn("On-demand FX fetch failed", "error", err)
			}
			rates = a.fx.Rates()
		}
	}

	out := make(map[string]decimal.Decimal, len(a.fxFallbacks))
	for currency, fallback := range a.fxFallbacks {
		if rate, ok := rates[currency]; ok && rate.IsPositive() {
			out[currency] = rate
			continue
		}
		metrics.RecordFeedFallback(currency)
		a.logger.Warn("FX rate unavailable, substituting fallback",
			"currency", currency, "fallback", fallback)
		out[currency] = fallback
	}
	return out
}
