package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/unit-oracle/pkg/logging"
)

func TestGoldAPISource_FetchNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-access-token"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"metal":"XAU","currency":"USD","price":1912.35}`))
	}))
	defer srv.Close()

	s := NewGoldAPISource(srv.URL, "test-key", time.Second, time.Minute, logging.NewNoopLogger())
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.FetchNow(context.Background()))

	price, ok := s.GoldPrice()
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromFloat(1912.35)))
	assert.Equal(t, "goldapi", s.Name())
}

func TestGoldAPISource_RejectsNonPositivePrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"metal":"XAU","currency":"USD","price":0}`))
	}))
	defer srv.Close()

	s := NewGoldAPISource(srv.URL, "test-key", time.Second, time.Minute, logging.NewNoopLogger())
	err := s.FetchNow(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, ok := s.GoldPrice()
	assert.False(t, ok)
}

func TestGoldAPISource_RateLimitMarksUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	s := NewGoldAPISource(srv.URL, "test-key", time.Second, time.Minute, logging.NewNoopLogger())
	err := s.FetchNow(context.Background())
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.False(t, s.IsHealthy())
}

func TestGoldAPISource_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewGoldAPISource(srv.URL, "test-key", time.Second, time.Minute, logging.NewNoopLogger())
	err := s.FetchNow(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestFrankfurterSource_FetchNow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USD", r.URL.Query().Get("from"))
		assert.Equal(t, "BRL,CNY", r.URL.Query().Get("to"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"2026-08-26","rates":{"BRL":5.41,"CNY":7.23}}`))
	}))
	defer srv.Close()

	s, err := NewFrankfurterSource(srv.URL, []string{"BRL", "CNY"}, time.Second, time.Minute, logging.NewNoopLogger())
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	require.NoError(t, s.FetchNow(context.Background()))

	rates := s.Rates()
	require.Len(t, rates, 2)
	assert.True(t, rates["BRL"].Equal(decimal.NewFromFloat(5.41)))
	assert.True(t, rates["CNY"].Equal(decimal.NewFromFloat(7.23)))
	assert.Equal(t, "frankfurter", s.Name())
}

func TestFrankfurterSource_SkipsNonPositiveRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{"BRL":5.41,"CNY":-1}}`))
	}))
	defer srv.Close()

	s, err := NewFrankfurterSource(srv.URL, []string{"BRL", "CNY"}, time.Second, time.Minute, logging.NewNoopLogger())
	require.NoError(t, err)
	require.NoError(t, s.FetchNow(context.Background()))

	rates := s.Rates()
	require.Len(t, rates, 1)
	assert.True(t, rates["BRL"].Equal(decimal.NewFromFloat(5.41)))
}

func TestFrankfurterSource_EmptyRatesIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","rates":{}}`))
	}))
	defer srv.Close()

	s, err := NewFrankfurterSource(srv.URL, []string{"BRL"}, time.Second, time.Minute, logging.NewNoopLogger())
	require.NoError(t, err)

	err = s.FetchNow(context.Background())
	assert.ErrorIs(t, err, ErrNoRatesInResponse)
}

func TestFrankfurterSource_RequiresCurrencies(t *testing.T) {
	_, err := NewFrankfurterSource("http://example.invalid", nil, time.Second, time.Minute, logging.NewNoopLogger())
	assert.ErrorIs(t, err, ErrNoCurrenciesConfigured)
}

func TestFrankfurterSource_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s, err := NewFrankfurterSource(srv.URL, []string{"BRL"}, 5*time.Second, time.Minute, logging.NewNoopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.Error(t, s.FetchNow(ctx))
}
