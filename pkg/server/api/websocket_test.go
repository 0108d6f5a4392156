package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/unit-oracle/pkg/basket"
	"tc.com/unit-oracle/pkg/logging"
)

// newWSTestServer mounts /ws behind the same middleware chain Server.Start
// builds, since the upgrade has to work through it.
func newWSTestServer(t *testing.T) (*WebSocketServer, *httptest.Server) {
	t.Helper()
	logger := logging.NewNoopLogger()

	ws := NewWebSocketServer(logger)
	go ws.Run()
	t.Cleanup(ws.Stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", ws.HandleConnection)
	handler := WithRequestID(WithCORS("*", WithLogging(logger, mux)))

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return ws, srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestWebSocket_UpgradeThroughMiddleware(t *testing.T) {
	_, srv := newWSTestServer(t)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err, "upgrade must succeed through the middleware chain")
	defer func() {
		_ = conn.Close()
	}()

	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestWebSocket_ClientReceivesQuoteUpdate(t *testing.T) {
	ws, srv := newWSTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()

	// The register runs in the upgrade handler; give it a moment before
	// broadcasting.
	require.Eventually(t, func() bool {
		ws.mu.RLock()
		defer ws.mu.RUnlock()
		return len(ws.clients) == 1
	}, 2*time.Second, 10*time.Millisecond)

	ws.SendUpdate(basket.Quote{
		UnitUSD:   150.2,
		FXUSDTWAP: map[string]float64{"BRL": 5.4},
		Strategy:  "gold_anchored",
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg quoteUpdateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "unit_quote", msg.Type)
	assert.Equal(t, 150.2, msg.Quote.UnitUSD)
}

func TestWebSocket_PingPong(t *testing.T) {
	_, srv := newWSTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer func() {
		_ = conn.Close()
	}()

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "ping"}))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var reply map[string]string
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "pong", reply["type"])
}
