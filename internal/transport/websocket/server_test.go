package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *Hub, userID int64) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return server, conn
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	_, conn := newTestServer(t, hub, 1)

	// registration happens on the hub goroutine
	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	connections, exists := hub.connections[1]
	hub.mu.RUnlock()

	if !exists {
		t.Fatal("connection should be registered")
	}
	if len(connections) != 1 {
		t.Fatalf("expected 1 connection, got %d", len(connections))
	}

	conn.Close()
	time.Sleep(100 * time.Millisecond)

	hub.mu.RLock()
	_, exists = hub.connections[1]
	hub.mu.RUnlock()

	if exists {
		t.Fatal("connection should be unregistered")
	}
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	_, conn := newTestServer(t, hub, 7)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	hub.Broadcast(7, &Message{
		Type:    "report_complete",
		Channel: "report_complete#7",
		Data:    map[string]interface{}{"id": "exports:abc", "url": "/files/r.xlsx"},
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Message
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read message: %v", err)
	}

	if got.Type != "report_complete" {
		t.Fatalf("expected report_complete, got %q", got.Type)
	}
	if got.UserID != 7 {
		t.Fatalf("expected user 7, got %d", got.UserID)
	}
}

func TestHub_BroadcastToOtherUserOnly(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	_, conn := newTestServer(t, hub, 1)
	defer conn.Close()

	time.Sleep(100 * time.Millisecond)

	// message addressed to a different user must not arrive here
	hub.Broadcast(2, &Message{Type: "report_progress"})

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var got Message
	if err := conn.ReadJSON(&got); err == nil {
		t.Fatalf("expected no message, got %+v", got)
	}
}
