package monitor

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong before treating the
	// connection as dead. pingPeriod must be shorter.
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufSize is the per-client outgoing buffer depth. A client that
	// falls this far behind is disconnected.
	sendBufSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 2048,
	// The monitor is a lab-bench tool; origin filtering belongs to a proxy.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is the JSON envelope pushed to clients on every broadcast tick.
type wsMessage struct {
	Event string `json:"event"`
	Data  Status `json:"data"`
}

// Hub manages WebSocket clients and pushes the current acquisition status to
// all of them every interval.
type Hub struct {
	build    func() Status
	interval time.Duration

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

// wsClient is one connected viewer. The send channel is never closed; done
// signals shutdown instead, so a broadcast racing a disconnect can never send
// on a closed channel.
type wsClient struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

// close signals writePump to exit and unblocks readPump. Safe to call from
// any goroutine, any number of times.
func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func newHub(build func() Status, interval time.Duration) *Hub {
	return &Hub{
		build:    build,
		interval: interval,
		clients:  make(map[*wsClient]struct{}),
	}
}

// run ticks the broadcast loop until ctx is cancelled, then closes all
// connections.
func (h *Hub) run(ctx context.Context) {
	t := time.NewTicker(h.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-t.C:
			h.broadcast()
		}
	}
}

// ServeHTTP upgrades the connection and serves the client until it drops.
// The current status is sent immediately so a viewer has data right away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &wsClient{
		conn: conn,
		send: make(chan []byte, sendBufSize),
		done: make(chan struct{}),
	}
	h.register(c)
	defer h.unregister(c)

	if data, err := json.Marshal(wsMessage{Event: "status", Data: h.build()}); err == nil {
		select {
		case c.send <- data:
		default:
		}
	}

	go c.writePump()
	c.readPump() // blocks until the connection closes
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) broadcast() {
	data, err := json.Marshal(wsMessage{Event: "status", Data: h.build()})
	if err != nil {
		return
	}

	h.mu.Lock()
	targets := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- data:
		case <-c.done:
			// Disconnected between the snapshot and the send.
		default:
			// Outgoing buffer full — drop the laggard.
			h.unregister(c)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	targets := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		c.close()
	}
}

// writePump forwards queued messages and periodic pings to the connection.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes control frames and detects disconnects.
func (c *wsClient) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
