package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Message is one live-feed frame.
type Message struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func newMessage(kind string, data any) Message {
	return Message{Type: kind, Data: data, Timestamp: time.Now().UnixMilli()}
}

// Hub tracks live-feed connections and fans messages out to all of them.
type Hub struct {
	clients   map[*client]bool
	clientsMu sync.Mutex
	upgrader  websocket.Upgrader

	// Greeting returns the frames a new connection receives first.
	Greeting func() []Message
}

// client owns one connection. Only its writePump writes to conn once it
// is registered.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades the request and holds the connection until the
// peer goes away or stops answering pings.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(newMessage("connection_init", map[string]string{"status": "connected"})); err != nil {
		return
	}
	if h.Greeting != nil {
		for _, m := range h.Greeting() {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		}
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	defer h.unregister(c)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go c.writePump()

	// The feed is one-way; reading only detects disconnects and pongs.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump drains send and pings the peer. It closes the connection on
// the first failed write, which ends the read loop.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				slog.Debug("feed write failed", "err", err)
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	h.clients[c] = true
	slog.Debug("feed client connected", "clients", len(h.clients))
}

func (h *Hub) unregister(c *client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	h.drop(c)
}

// drop removes c and closes its queue. Callers hold clientsMu.
func (h *Hub) drop(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		slog.Debug("feed client disconnected", "clients", len(h.clients))
	}
}

// Clients returns the number of live connections.
func (h *Hub) Clients() int {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	return len(h.clients)
}

// Publish marshals once and queues the frame for every client without
// blocking. A client whose queue is full is dropped.
func (h *Hub) Publish(kind string, data any) {
	payload, err := json.Marshal(newMessage(kind, data))
	if err != nil {
		slog.Error("feed marshal failed", "type", kind, "err", err)
		return
	}

	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			slog.Warn("feed client too slow, dropping")
			h.drop(c)
		}
	}
}
