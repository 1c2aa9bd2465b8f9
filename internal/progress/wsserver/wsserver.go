// Package wsserver broadcasts progress.Event notifications to connected
// dashboard clients over WebSocket. It is purely ambient (SPEC_FULL.md
// §5, "Live progress"): a build behaves identically whether or not any
// client is connected, or whether this package is wired in at all.
package wsserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vk/buildgraphgo/internal/progress"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(_ *http.Request) bool { return true },
}

// Hub tracks every connected dashboard client and fans every reported
// progress.Event out to all of them. It implements progress.Sink, so a
// Scheduler can use a Hub as its Progress field directly.
type Hub struct {
	Logger *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty Hub ready to accept connections.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (h *Hub) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// ServeWS upgrades r to a WebSocket connection and registers it as a
// broadcast recipient until the connection closes. Mount it behind an
// http.ServeMux, e.g. mux.HandleFunc("/progress", hub.ServeWS).
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger().Warn("wsserver: upgrade failed", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 32)}
	h.register(c)
	defer h.unregister(c)

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.writeLoop(c, done)

	// The client sends nothing we care about; reading is only how we
	// detect disconnects and keep the pong handler firing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			close(done)
			conn.Close()
			return
		}
	}
}

func (h *Hub) writeLoop(c *client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Report implements progress.Sink. It marshals e to JSON and pushes it
// onto every connected client's send buffer, dropping the oldest queued
// message rather than blocking — per spec.md §5, a slow or unreachable
// dashboard must never slow the build down.
func (h *Hub) Report(e progress.Event) {
	body, err := json.Marshal(e)
	if err != nil {
		h.logger().Warn("wsserver: marshal failed", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		pushOrDrop(c.send, body)
	}
}

func pushOrDrop(ch chan []byte, msg []byte) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}
