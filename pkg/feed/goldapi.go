package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
	"tc.com/unit-oracle/pkg/version"
)

// GoldAPISource fetches the gold spot price (USD per troy ounce) from a
// goldapi.io-style JSON endpoint authenticated with an API key header.
type GoldAPISource struct {
	*BaseSource

	url      string
	apiKey   string
	interval time.Duration
	client   *http.Client

	mu       sync.RWMutex
	price    decimal.Decimal
	hasPrice bool
}

var _ GoldSource = (*GoldAPISource)(nil)

type goldAPIResponse struct {
	Metal    string  `json:"metal"`
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// NewGoldAPISource creates a gold spot source.
func NewGoldAPISource(url, apiKey string, timeout, interval time.Duration, logger *logging.Logger) *GoldAPISource {
	return &GoldAPISource{
		BaseSource: NewBaseSource("goldapi", logger),
		url:        url,
		apiKey:     apiKey,
		interval:   interval,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Initialize prepares the source.
func (s *GoldAPISource) Initialize(_ context.Context) error {
	return nil
}

// Start performs an initial fetch with retries, then refreshes on a ticker.
func (s *GoldAPISource) Start(ctx context.Context) error {
	s.Logger().Info("Starting gold spot source", "url", s.url, "interval", s.interval)

	if err := fetchWithRetries(ctx, s.BaseSource, s.FetchNow); err != nil {
		s.Logger().Warn("Initial gold fetch failed after retries", "error", err)
	}

	go runRefreshLoop(ctx, s.BaseSource, s.interval, s.FetchNow)
	return nil
}

// FetchNow performs one synchronous fetch within the context deadline.
func (s *GoldAPISource) FetchNow(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-access-token", s.apiKey)
	req.Header.Set("User-Agent", version.AgentString())

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("failed to fetch gold spot: %w", err)
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

	var data goldAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if data.Price <= 0 {
		metrics.RecordFeedFetch(s.Name(), "error")
		return fmt.Errorf("%w: price %v", ErrInvalidResponse, data.Price)
	}

	s.mu.Lock()
	s.price = decimal.NewFromFloat(data.Price)
	s.hasPrice = true
	s.mu.Unlock()

	s.SetLastUpdate(time.Now())
	metrics.RecordFeedFetch(s.Name(), "ok")
	s.Logger().Debug("Updated gold spot", "price", data.Price)
	return nil
}

// GoldPrice returns the latest spot price and whether one is available.
func (s *GoldAPISource) GoldPrice() (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.price, s.hasPrice
}

// Stop stops the source.
func (s *GoldAPISource) Stop() error {
	s.Close()
	return nil
}
