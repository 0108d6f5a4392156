// Package api provides the HTTP and WebSocket endpoints publishing the unit
// price.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"tc.com/unit-oracle/pkg/basket"
	"tc.com/unit-oracle/pkg/candle"
	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

const (
	defaultOHLCLimit = 100
	maxOHLCLimit     = 1000
)

// Server represents the HTTP API server.
type Server struct {
	addr       string
	engine     *basket.Engine
	candles    *candle.Store
	corsOrigin string
	staticDir  string
	logger     *logging.Logger
	server     *http.Server
	wsServer   *WebSocketServer // Optional WebSocket streaming
}

// NewServer creates a new HTTP API server.
func NewServer(addr string, engine *basket.Engine, candles *candle.Store, corsOrigin, staticDir string, logger *logging.Logger) *Server {
	return &Server{
		addr:       addr,
		engine:     engine,
		candles:    candles,
		corsOrigin: corsOrigin,
		staticDir:  staticDir,
		logger:     logger,
	}
}

// SetWebSocketServer enables WebSocket streaming at /ws.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/latest.json", s.handleLatest)
	mux.HandleFunc("/ohlc", s.handleOHLC)

	if s.wsServer != nil {
		go s.wsServer.Run()
		mux.HandleFunc("/ws", s.wsServer.HandleConnection)
	}

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}

	handler := WithRequestID(WithCORS(s.corsOrigin, WithLogging(s.logger, mux)))

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.wsServer != nil {
		s.wsServer.Stop()
	}
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles /health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleLatest handles /latest.json: one compute cycle, always 200 with the
// best available quote. Dashboard consumers cannot handle error responses, so
// a degraded cycle still answers with last-known-good or zeroed values.
func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/latest.json", "200", time.Since(start))
	}()

	quote := s.engine.ComputeQuote(r.Context())
	s.publish(quote)

	s.sendJSON(w, quote)
}

// handleOHLC handles /ohlc?timeframe=<minutes>&limit=<n>.
func (s *Server) handleOHLC(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest("/ohlc", status, time.Since(start))
	}()

	timeframe, err := strconv.Atoi(r.URL.Query().Get("timeframe"))
	if err != nil {
		status = "400"
		s.sendError(w, http.StatusBadRequest, "timeframe must be an integer number of minutes")
		return
	}

	limit := defaultOHLCLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			status = "400"
			s.sendError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
	}
	if limit > maxOHLCLimit {
		limit = maxOHLCLimit
	}

	candles, err := s.candles.Candles(timeframe, limit)
	if err != nil {
		status = "400"
		s.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.sendJSON(w, candles)
}

// publish folds a freshly computed quote into the candle store and streams it
// to WebSocket clients.
func (s *Server) publish(quote basket.Quote) {
	if quote.UnitUSD > 0 {
		s.candles.Fold(decimal.NewFromFloat(quote.UnitUSD), quote.TimestampUTC)
	}
	if s.wsServer != nil {
		s.wsServer.SendUpdate(quote)
	}
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}

// sendError sends a JSON error body with the given status.
func (s *Server) sendError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
