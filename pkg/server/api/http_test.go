package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/unit-oracle/pkg/basket"
	"tc.com/unit-oracle/pkg/candle"
	"tc.com/unit-oracle/pkg/feed"
	"tc.com/unit-oracle/pkg/logging"
)

var testCurrencies = []string{"BRL", "RUB", "INR", "CNY", "ZAR"}

// newTestServer builds a server whose engine runs entirely off static
// fallbacks, so quotes are deterministic.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := logging.NewNoopLogger()

	fallbacks := map[string]decimal.Decimal{
		"BRL": decimal.NewFromFloat(5.40),
		"RUB": decimal.NewFromFloat(92.50),
		"INR": decimal.NewFromFloat(83.10),
		"CNY": decimal.NewFromFloat(7.24),
		"ZAR": decimal.NewFromFloat(18.60),
	}
	adapter := feed.NewAdapter(nil, nil, time.Second,
		decimal.NewFromFloat(1900), fallbacks, logger)
	composer := basket.NewGoldAnchoredComposer(
		decimal.RequireFromString("0.9823"), testCurrencies, logger)
	engine := basket.NewEngine(adapter, composer, 5*time.Second, testCurrencies, logger)
	candles := candle.NewStore([]int{1, 15}, 1000)

	return NewServer(":0", engine, candles, "*", "", logger)
}

func TestHandleLatest(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/latest.json", nil)
	rec := httptest.NewRecorder()
	s.handleLatest(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var quote basket.Quote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &quote))
	assert.Greater(t, quote.UnitUSD, 0.0)
	assert.InEpsilon(t, quote.UnitUSD*100, quote.HundredUnitsUSD, 1e-9)
	assert.Len(t, quote.FXUSDTWAP, 5)
	assert.Equal(t, "gold_anchored", quote.Strategy)
	assert.False(t, quote.TimestampUTC.IsZero())
}

func TestHandleLatest_AlwaysOK(t *testing.T) {
	s := newTestServer(t)

	// Repeated requests keep answering 200; the feed layer substitutes
	// fallbacks for everything.
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		s.handleLatest(rec, httptest.NewRequest(http.MethodGet, "/latest.json", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestHandleLatest_FoldsIntoCandles(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleLatest(rec, httptest.NewRequest(http.MethodGet, "/latest.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	candles, err := s.candles.Candles(1, 0)
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Greater(t, candles[0].Close, 0.0)
}

func TestHandleOHLC(t *testing.T) {
	s := newTestServer(t)

	// Seed one candle.
	s.handleLatest(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/latest.json", nil))

	rec := httptest.NewRecorder()
	s.handleOHLC(rec, httptest.NewRequest(http.MethodGet, "/ohlc?timeframe=1&limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var candles []candle.Candle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candles))
	require.Len(t, candles, 1)
	assert.Greater(t, candles[0].Open, 0.0)
}

func TestHandleOHLC_BadParams(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name   string
		target string
	}{
		{"missing timeframe", "/ohlc"},
		{"non-numeric timeframe", "/ohlc?timeframe=abc"},
		{"unknown timeframe", "/ohlc?timeframe=7"},
		{"non-numeric limit", "/ohlc?timeframe=1&limit=abc"},
		{"negative limit", "/ohlc?timeframe=1&limit=-5"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.handleOHLC(rec, httptest.NewRequest(http.MethodGet, tc.target, nil))

			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestHandleOHLC_EmptyTimeframe(t *testing.T) {
	s := newTestServer(t)

	// A known timeframe with no folds yet answers 200 with an empty list.
	rec := httptest.NewRecorder()
	s.handleOHLC(rec, httptest.NewRequest(http.MethodGet, "/ohlc?timeframe=15", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var candles []candle.Candle
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &candles))
	assert.Empty(t, candles)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestMiddlewareChain(t *testing.T) {
	logger := logging.NewNoopLogger()
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, RequestIDFromContext(r.Context()))
		w.WriteHeader(http.StatusOK)
	})
	handler := WithRequestID(WithCORS("*", WithLogging(logger, inner)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/latest.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "abc-123", RequestIDFromContext(r.Context()))
	})
	handler := WithRequestID(inner)

	req := httptest.NewRequest(http.MethodGet, "/latest.json", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestMiddleware_CORSPreflight(t *testing.T) {
	inner := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("preflight must not reach the handler")
	})
	handler := WithCORS("https://dashboard.example", inner)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/latest.json", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
