package monitor

import (
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// TestHub_ClientDisconnectDuringBroadcast hammers broadcast from the hub side
// while clients connect and drop. A disconnect landing between the target
// snapshot and the send must never crash the hub goroutine.
func TestHub_ClientDisconnectDuringBroadcast(t *testing.T) {
	h := newHub(func() Status { return Status{Samples: 1} }, time.Hour)
	ts := httptest.NewServer(h)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				h.broadcast()
			}
		}
	}()

	for round := 0; round < 40; round++ {
		conns := make([]*websocket.Conn, 0, 8)
		for i := 0; i < 8; i++ {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
			if err != nil {
				t.Fatalf("round %d dial %d: %v", round, i, err)
			}
			conns = append(conns, conn)
		}
		// Clients never read, so broadcasts also hit the laggard-drop
		// path while the disconnects race the send loop.
		for _, conn := range conns {
			conn.Close()
		}
	}

	close(stop)
	wg.Wait()

	deadline := time.After(5 * time.Second)
	for h.Count() > 0 {
		select {
		case <-deadline:
			t.Fatalf("clients still registered after disconnect: %d", h.Count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// TestHub_UnregisterIsIdempotent covers the double-unregister that happens
// when the laggard drop in broadcast races the handler's own deferred
// unregister.
func TestHub_UnregisterIsIdempotent(t *testing.T) {
	h := newHub(func() Status { return Status{} }, time.Hour)
	ts := httptest.NewServer(h)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.After(2 * time.Second)
	for h.Count() != 1 {
		select {
		case <-deadline:
			t.Fatalf("client not registered: %d", h.Count())
		case <-time.After(5 * time.Millisecond):
		}
	}

	h.mu.Lock()
	var c *wsClient
	for cl := range h.clients {
		c = cl
	}
	h.mu.Unlock()

	h.unregister(c)
	h.unregister(c)
	if got := h.Count(); got != 0 {
		t.Fatalf("Count after unregister: got %d, want 0", got)
	}
}
