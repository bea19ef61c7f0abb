package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/onnwee/forcemap/internal/logger"
	"github.com/onnwee/forcemap/internal/metrics"
	"github.com/onnwee/forcemap/internal/sim"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware owns origin policy
		return true
	},
}

// WebSocketMessage represents a message sent to clients
type WebSocketMessage struct {
	Type    string      `json:"type"` // "positions", "error"
	Payload interface{} `json:"payload"`
}

// positionFrame is the broadcast payload: positions indexed like the
// snapshot's body array.
type positionFrame struct {
	Tick      int64        `json:"tick"`
	Positions [][2]float64 `json:"positions"`
	Frozen    int64        `json:"frozen"`
}

// Client represents a WebSocket client connection
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub broadcasts position frames to all connected clients while the
// simulation ticks.
type Hub struct {
	sim      *sim.Simulator
	interval time.Duration

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	lastTick int64
}

// NewHub creates a hub broadcasting at the given frame interval.
func NewHub(s *sim.Simulator, interval time.Duration) *Hub {
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	return &Hub{
		sim:        s,
		interval:   interval,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run drives registration and the broadcast ticker until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.WSClientsConnected.Set(0)
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WSClientsConnected.Set(float64(n))
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.WSClientsConnected.Set(float64(n))
		case <-ticker.C:
			h.broadcastFrame()
		}
	}
}

// broadcastFrame sends the current positions to every client. Frames
// are skipped while no tick has completed since the last send, so idle
// (frozen or disabled) simulations stop producing traffic.
func (h *Hub) broadcastFrame() {
	h.mu.RLock()
	empty := len(h.clients) == 0
	h.mu.RUnlock()
	if empty {
		return
	}

	tick := h.sim.Ticks()
	if tick == h.lastTick {
		return
	}
	h.lastTick = tick

	snap := h.sim.Snapshot()
	frame := positionFrame{
		Tick:      tick,
		Positions: make([][2]float64, len(snap.Bodies)),
		Frozen:    h.sim.FrozenCount(),
	}
	for i, b := range snap.Bodies {
		frame.Positions[i] = [2]float64{b.Pos.X, b.Pos.Y}
	}
	data, err := json.Marshal(WebSocketMessage{Type: "positions", Payload: frame})
	if err != nil {
		logger.Error("Failed to encode position frame", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
			metrics.WSFramesSent.Inc()
		default:
			// Slow consumer; drop the frame rather than stall the hub
		}
	}
}

// ServeWS upgrades the connection and attaches it to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(r.Context()).Warn("WebSocket upgrade failed", "error", err)
		return
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump()
}

// readPump drains and discards client messages, keeping pong handling
// alive and unregistering on error.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards frames from the hub and pings the peer.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
