// Package telemetry is an optional websocket observer for the
// sequencer: it broadcasts warnings and per-frame completion events
// to any connected client, purely for visibility — it is never a
// control surface, and no upstream operation depends on a client
// being connected.
package telemetry

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Client is one connected websocket observer.
type Client struct {
	conn *websocket.Conn
	send chan interface{}
}

// writePump pumps messages from the hub to the websocket connection
// until send is closed or a write fails.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

// Hub tracks connected observers and fans warnings/events out to all
// of them.
type Hub struct {
	mu sync.RWMutex
	clients map[*Client]bool
	upgrade websocket.Upgrader
}

// NewHub builds an empty Hub, accepting connections from any origin
// (the demo server has no browser-facing auth boundary to protect).
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*Client]bool),
		upgrade: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
			ReadBufferSize: 1024,
			WriteBufferSize: 65536,
		},
	}
}

// ServeHTTP upgrades the connection and registers a new observer.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrade.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("telemetry: upgrade failed: %v", err)
		return
	}
	client := &Client{conn: conn, send: make(chan interface{}, 16)}
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()
	go client.writePump()
}

// broadcast fans msg out to every connected client, dropping it for
// any client whose send buffer is full rather than blocking.
func (h *Hub) broadcast(msg interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// Warn implements sequence.Warner and driver.Warner: it broadcasts
// non-fatal warnings (TGC clamp, HV retry) to every connected observer
// and logs them locally.
func (h *Hub) Warn(msg string) {
	log.Println("[warn]", msg)
	h.broadcast(map[string]string{"warning": msg})
}

// FrameComplete broadcasts a per-frame completion event: frame index,
// transmit count and sample count, so an observer can track
// acquisition progress without touching the RF data path.
func (h *Hub) FrameComplete(frameIndex, nTx, nSamp int) {
	h.broadcast(map[string]int{
		"frame": frameIndex,
		"nTx": nTx,
		"nSamp": nSamp,
	})
}
