package wsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type recordingHandler struct {
	mu       sync.Mutex
	connects int
	msgs     []string
	client   *Client
	got      chan struct{}
}

func (h *recordingHandler) OnConnect(ctx context.Context) error {
	h.mu.Lock()
	h.connects++
	h.mu.Unlock()
	return h.client.WriteJSON(map[string]string{"action": "subscribe"})
}

func (h *recordingHandler) OnMessage(ctx context.Context, msg []byte) {
	h.mu.Lock()
	h.msgs = append(h.msgs, string(msg))
	n := len(h.msgs)
	h.mu.Unlock()
	if n == 4 {
		close(h.got)
	}
}

func TestClientReconnectsAndResubscribes(t *testing.T) {
	upgrader := websocket.Upgrader{}
	subscribes := make(chan string, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, sub, err := conn.ReadMessage()
		if err != nil {
			return
		}
		subscribes <- string(sub)
		conn.WriteMessage(websocket.TextMessage, []byte("one"))
		conn.WriteMessage(websocket.TextMessage, []byte("two"))
		// Closing forces the client to redial.
	}))
	defer srv.Close()

	cfg := DefaultConfig("ws" + strings.TrimPrefix(srv.URL, "http"))
	cfg.BackoffInitial = 10 * time.Millisecond
	cfg.BackoffMax = 20 * time.Millisecond

	h := &recordingHandler{got: make(chan struct{})}
	c := New(cfg, h, nil)
	h.client = c

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- c.Run(ctx) }()

	select {
	case <-h.got:
	case <-time.After(5 * time.Second):
		t.Fatal("did not receive frames from two connections")
	}
	cancel()

	select {
	case err := <-errc:
		if err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if c.Connects() < 2 {
		t.Errorf("Connects() = %d, want >= 2", c.Connects())
	}
	if got := <-subscribes; !strings.Contains(got, "subscribe") {
		t.Errorf("subscribe frame = %q", got)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.msgs[0] != "one" || h.msgs[1] != "two" {
		t.Errorf("msgs = %v", h.msgs)
	}
}

func TestWriteJSONNotConnected(t *testing.T) {
	c := New(DefaultConfig("ws://127.0.0.1:1"), &recordingHandler{}, nil)
	if err := c.WriteJSON(map[string]string{}); err != ErrNotConnected {
		t.Errorf("WriteJSON() error = %v, want ErrNotConnected", err)
	}
}
