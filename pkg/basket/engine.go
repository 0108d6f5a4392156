package basket

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/feed"
	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

// Engine owns one window store per instrument and runs compute cycles. It is
// the single aggregation-service object per process; handlers receive it by
// injection, there is no package-level state.
type Engine struct {
	adapter    *feed.Adapter
	composer   Composer
	currencies []string
	logger     *logging.Logger

	stores map[string]*instrumentWindow

	lastMu sync.RWMutex
	last   *Quote
}

// instrumentWindow guards one instrument's store for the duration of a
// push+evict+mean sequence, so two concurrent compute cycles cannot
// interleave in a way that reads an observation twice or loses one.
type instrumentWindow struct {
	mu  sync.Mutex
	win *WindowStore
}

// NewEngine creates an engine with one empty window store per instrument
// (gold plus each basket currency).
func NewEngine(adapter *feed.Adapter, composer Composer, window time.Duration, currencies []string, logger *logging.Logger) *Engine {
	stores := make(map[string]*instrumentWindow, len(currencies)+1)
	stores[feed.GoldInstrument] = &instrumentWindow{win: NewWindowStore(window)}
	for _, c := range currencies {
		stores[c] = &instrumentWindow{win: NewWindowStore(window)}
	}

	return &Engine{
		adapter:    adapter,
		composer:   composer,
		currencies: currencies,
		logger:     logger,
		stores:     stores,
	}
}

// ComputeQuote runs one compute cycle: fetch spots (the adapter guarantees a
// usable scalar for every instrument), push+evict+mean per instrument, then
// compose. It never fails: an unexpected fault degrades to the last-known-good
// quote, or a zeroed one before the first successful cycle.
func (e *Engine) ComputeQuote(ctx context.Context) (q Quote) {
	start := time.Now()
	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Compute cycle failed, serving degraded quote",
				"panic", r)
			status = "degraded"
			q = e.lastOrZero()
		}
		metrics.RecordComputeCycle(status, time.Since(start))
	}()

	goldSpot := e.adapter.GoldSpot(ctx)
	rates := e.adapter.FXRates(ctx)

	now := time.Now()
	goldTWAP := e.observe(feed.GoldInstrument, goldSpot, now)

	fxTWAP := make(map[string]decimal.Decimal, len(e.currencies))
	for _, currency := range e.currencies {
		rate, ok := rates[currency]
		if !ok || !rate.IsPositive() {
			// Leave the leg out; the composer degrades it to a
			// USD-allocation-only leg.
			continue
		}
		fxTWAP[currency] = e.observe(currency, rate, now)
	}

	q = e.composer.Compose(goldTWAP, fxTWAP, now)
	e.setLast(q)

	e.logger.Debug("Computed unit quote",
		"unit_usd", q.UnitUSD,
		"gold_twap", q.GoldUSDPerOzTWAP,
		"fx_legs", len(q.FXUSDTWAP))

	return q
}

// observe pushes a spot value into the instrument's window and returns the
// windowed mean, atomically with respect to other compute cycles. The spot
// itself is the empty-window fallback, so the first cycle after startup
// behaves as a one-sample average.
func (e *Engine) observe(instrument string, spot decimal.Decimal, now time.Time) decimal.Decimal {
	iw := e.stores[instrument]
	iw.mu.Lock()
	defer iw.mu.Unlock()

	iw.win.Push(spot, now)
	metrics.RecordObservation(instrument, iw.win.Len())
	return iw.win.Mean(now, spot)
}

// LastQuote returns the most recent successfully composed quote.
func (e *Engine) LastQuote() (Quote, bool) {
	e.lastMu.RLock()
	defer e.lastMu.RUnlock()
	if e.last == nil {
		return Quote{}, false
	}
	return *e.last, true
}

// WindowLen reports the retained observation count for an instrument.
// Used by tests and diagnostics.
func (e *Engine) WindowLen(instrument string) (int, error) {
	iw, ok := e.stores[instrument]
	if !ok {
		return 0, ErrUnknownInstrument
	}
	iw.mu.Lock()
	defer iw.mu.Unlock()
	return iw.win.Len(), nil
}

func (e *Engine) setLast(q Quote) {
	e.lastMu.Lock()
	defer e.lastMu.Unlock()
	e.last = &q
}

// lastOrZero returns the last-known-good quote, or an all-zero quote carrying
// only a timestamp when no cycle has succeeded yet. A caller tracking repeated
// identical values can tell the degraded case apart.
func (e *Engine) lastOrZero() Quote {
	if q, ok := e.LastQuote(); ok {
		return q
	}
	return Quote{
		TimestampUTC: time.Now().UTC(),
		FXUSDTWAP:    map[string]float64{},
		Strategy:     e.composer.Name(),
	}
}
