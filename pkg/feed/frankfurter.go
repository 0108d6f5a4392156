package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

// FrankfurterSource fetches USD-denominated FX rates from a Frankfurter-style
// API (free, no API key). Querying with from=USD returns rates already in the
// convention the basket uses: units of currency per 1 USD, no inversion.
// https://www.frankfurter.app/docs/
type FrankfurterSource struct {
	*BaseSource

	baseURL    string
	currencies []string
	interval   time.Duration
	client     *http.Client

	mu    sync.RWMutex
	rates map[string]decimal.Decimal
}

var _ FXSource = (*FrankfurterSource)(nil)

type frankfurterResponse struct {
	Amount float64            `json:"amount"`
	Base   string             `json:"base"`
	Date   string             `json:"date"`
	Rates  map[string]float64 `json:"rates"`
}

// NewFrankfurterSource creates an FX rates source for the given currencies.
func NewFrankfurterSource(baseURL string, currencies []string, timeout, interval time.Duration, logger *logging.Logger) (*FrankfurterSource, error) {
	if len(currencies) == 0 {
		return nil, fmt.Errorf("%w", ErrNoCurrenciesConfigured)
	}

	return &FrankfurterSource{
		BaseSource: NewBaseSource("frankfurter", logger),
		baseURL:    baseURL,
		currencies: currencies,
		interval:   interval,
		client: &http.Client{
			Timeout: timeout,
		},
		rates: make(map[string]decimal.Decimal),
	}, nil
}

// Initialize prepares the source.
func (s *FrankfurterSource) Initialize(_ context.Context) error {
	return nil
}

// Start performs an initial fetch with retries, then refreshes on a ticker.
func (s *FrankfurterSource) Start(ctx context.Context) error {
	s.Logger().Info("Starting FX rates source", "currencies", s.currencies, "interval", s.interval)

	if err := fetchWithRetries(ctx, s.BaseSource, s.FetchNow); err != nil {
		s.Logger().Warn("Initial FX fetch failed after retries", "error", err)
	}

	go runRefreshLoop(ctx, s.BaseSource, s.interval, s.FetchNow)
	return nil
}

// FetchNow performs one synchronous fetch within the context deadline.
func (s *FrankfurterSource) FetchNow(ctx context.Context) error {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("invalid FX feed url: %w", err)
	}
	q := u.Query()
	q.Set("from", "USD")
	q.Set("to", strings.Join(s.currencies, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("failed to fetch FX rates: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		metrics.RecordFeedFetch(s.Name(), "rate_limited")
		s.SetHealthy(false)
		return fmt.Errorf("%w", ErrRateLimitExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var data frankfurterResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(data.Rates) == 0 {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("%w", ErrNoRatesInResponse)
	}

	s.mu.Lock()
	for currency, rate := range data.Rates {
		if rate <= 0 {
			s.Logger().Warn("Skipping non-positive FX rate", "currency", currency, "rate", rate)
			continue
		}
		s.rates[currency] = decimal.NewFromFloat(rate)
	}
	s.mu.Unlock()

	s.SetLastUpdate(time.Now())
	metrics.RecordFeedFetch(s.Name(), "ok")
	s.Logger().Debug("Updated FX rates", "count", len(data.Rates))
	return nil
}

// Rates returns a copy of the latest rate table.
func (s *FrankfurterSource) Rates() map[string]decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rates := make(map[string]decimal.Decimal, len(s.rates))
	for k, v := range s.rates {
		rates[k] = v
	}
	return rates
}

// Stop stops the source.
func (s *FrankfurterSource) Stop() error {
	s.Close()
	return nil
}
