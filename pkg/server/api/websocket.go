package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"tc.com/unit-oracle/pkg/basket"
	"tc.com/unit-oracle/pkg/logging"
	"tc.com/unit-oracle/pkg/metrics"
)

// WebSocketServer streams computed unit quotes to connected clients. It is
// mounted on the API server's mux at /ws rather than listening on its own
// address.
type WebSocketServer struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*wsClient]bool

	updates chan basket.Quote

	ctx    context.Context
	cancel context.CancelFunc
}

// wsClient represents a connected WebSocket client.
type wsClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *WebSocketServer
}

// wsMessage represents a client message.
type wsMessage struct {
	Type string `json:"type"` // "ping"
}

// quoteUpdateMessage is sent to clients on every compute cycle.
type quoteUpdateMessage struct {
	Type  string       `json:"type"` // "unit_quote"
	Quote basket.Quote `json:"quote"`
}

// NewWebSocketServer creates a new WebSocket streaming server.
func NewWebSocketServer(logger *logging.Logger) *WebSocketServer {
	ctx, cancel := context.WithCancel(context.Background())

	return &WebSocketServer{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// CORS policy is enforced by the HTTP middleware
				return true
			},
		},
		clients: make(map[*wsClient]bool),
		updates: make(chan basket.Quote, 100),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Run broadcasts queued updates until Stop is called.
func (s *WebSocketServer) Run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case quote := <-s.updates:
			s.broadcast(quote)
		}
	}
}

// Stop stops the broadcast loop.
func (s *WebSocketServer) Stop() {
	s.cancel()
}

// SendUpdate queues a quote for broadcast, dropping it if the queue is full.
func (s *WebSocketServer) SendUpdate(quote basket.Quote) {
	select {
	case s.updates <- quote:
	default:
		s.logger.Warn("Update channel full, dropping quote update")
	}
}

// HandleConnection upgrades an HTTP request to a WebSocket client.
func (s *WebSocketServer) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := &wsClient{
		conn:   conn,
		send:   make(chan []byte, 256),
		server: s,
	}

	s.registerClient(client)

	go client.writePump()
	go client.readPump()

	s.logger.Info("New WebSocket client connected", "remote", conn.RemoteAddr())
}

func (s *WebSocketServer) registerClient(client *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[client] = true
	metrics.WebSocketClients.Set(float64(len(s.clients)))
}

func (s *WebSocketServer) unregisterClient(client *wsClient) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
		metrics.WebSocketClients.Set(float64(len(s.clients)))
	}
}

// broadcast sends a quote update to all connected clients.
func (s *WebSocketServer) broadcast(quote basket.Quote) {
	data, err := json.Marshal(quoteUpdateMessage{
		Type:  "unit_quote",
		Quote: quote,
	})
	if err != nil {
		s.logger.Error("Failed to marshal quote update", "error", err)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for client := range s.clients {
		select {
		case client.send <- data:
		default:
			s.logger.Warn("Client send buffer full, skipping update")
		}
	}
}

// writePump sends messages to the WebSocket connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Channel closed
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.server.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads messages from the WebSocket connection.
func (c *wsClient) readPump() {
	defer func() {
		c.server.unregisterClient(c)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.server.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// handleMessage processes client messages. Every client receives every quote;
// the only supported message is an application-level ping.
func (c *wsClient) handleMessage(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.server.logger.Warn("Invalid client message", "error", err)
		return
	}

	switch msg.Type {
	case "ping":
		c.sendPong()
	default:
		c.server.logger.Warn("Unknown message type", "type", msg.Type)
	}
}

// sendPong sends a pong response.
func (c *wsClient) sendPong() {
	pong := map[string]string{"type": "pong"}
	data, _ := json.Marshal(pong)
	select {
	case c.send <- data:
	default:
	}
}
