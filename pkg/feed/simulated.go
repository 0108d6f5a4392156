package feed

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

// SimulatedSource produces a random-walk gold price and FX rate table for
// offline runs and tests. It implements both GoldSource and FXSource so a
// single instance backs the whole adapter. A fixed seed makes the walk
// reproducible.
type SimulatedSource struct {
	*BaseSource

	interval time.Duration

	mu         sync.Mutex
	rng        *rand.Rand
	gold       decimal.Decimal
	rates      map[string]decimal.Decimal
	currencies []string // sorted, fixes the rng draw order per step
}

var (
	_ GoldSource = (*SimulatedSource)(nil)
	_ FXSource   = (*SimulatedSource)(nil)
)

// NewSimulatedSource creates a simulated feed starting from the given spot
// values. seed == 0 derives one from the clock.
func NewSimulatedSource(goldStart decimal.Decimal, startRates map[string]decimal.Decimal, seed int64, interval time.Duration, logger *logging.Logger) *SimulatedSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	rates := make(map[string]decimal.Decimal, len(startRates))
	currencies := make([]string, 0, len(startRates))
	for k, v := range startRates {
		rates[k] = v
		currencies = append(currencies, k)
	}
	sort.Strings(currencies)

	return &SimulatedSource{
		BaseSource: NewBaseSource("simulated", logger),
		interval:   interval,
		rng:        rand.New(rand.NewSource(seed)), // #nosec G404 -- simulation, not crypto
		gold:       goldStart,
		rates:      rates,
		currencies: currencies,
	}
}

// Initialize prepares the source.
func (s *SimulatedSource) Initialize(_ context.Context) error {
	return nil
}

// Start seeds the first sample and steps the walk on a ticker.
func (s *SimulatedSource) Start(ctx context.Context) error {
	s.Logger().Info("Starting simulated feed", "interval", s.interval)

	_ = s.FetchNow(ctx)
	s.SetHealthy(true)

	go runRefreshLoop(ctx, s.BaseSource, s.interval, s.FetchNow)
	return nil
}

// FetchNow advances the random walk by one step. Each value moves by at most
// ±0.1% per step. Rates step in sorted currency order so two sources with the
// same seed produce the same walk.
func (s *SimulatedSource) FetchNow(_ context.Context) error {
	s.mu.Lock()
	s.gold = s.gold.Mul(s.step())
	for _, currency := range s.currencies {
		s.rates[currency] = s.rates[currency].Mul(s.step())
	}
	s.mu.Unlock()

	s.SetLastUpdate(time.Now())
	metrics.RecordFeedFetch(s.Name(), "ok")
	return nil
}

// step returns a multiplier in [0.999, 1.001).
func (s *SimulatedSource) step() decimal.Decimal {
	drift := (s.rng.Float64() - 0.5) * 0.002
	return decimal.NewFromFloat(1 + drift)
}

// GoldPrice returns the current simulated gold spot.
func (s *SimulatedSource) GoldPrice() (decimal.Decimal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gold, true
}

// Rates returns a copy of the current simulated rate table.
func (s *SimulatedSource) Rates() map[string]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	rates := make(map[string]decimal.Decimal, len(s.rates))
	for k, v := range s.rates {
		rates[k] = v
	}
	return rates
}

// Stop stops the source.
func (s *SimulatedSource) Stop() error {
	s.Close()
	return nil
}
