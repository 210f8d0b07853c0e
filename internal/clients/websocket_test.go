package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	ws "feedesk/internal/transport/websocket"

	"github.com/gorilla/websocket"
)

func dialTestHub(t *testing.T, hub *ws.Hub, userID int64) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.HandleWebSocket(w, r, userID)
	}))
	t.Cleanup(server.Close)

	wsURL := "ws" + server.URL[4:]
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// give the hub time to register the connection
	time.Sleep(100 * time.Millisecond)
	return conn
}

func decodeData(t *testing.T, m ws.Message) map[string]interface{} {
	t.Helper()

	dataBytes, err := json.Marshal(m.Data)
	if err != nil {
		t.Fatalf("Failed to marshal data: %v", err)
	}
	var data map[string]interface{}
	if err := json.Unmarshal(dataBytes, &data); err != nil {
		t.Fatalf("Failed to unmarshal data: %v", err)
	}
	return data
}

func TestWebSocketClient_NotifyReportProgress(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialTestHub(t, hub, 1)
	client := NewWebSocketClient(hub)

	err := client.NotifyReportProgress(context.Background(), 1, "report-123", 50.5, "collecting rows")
	if err != nil {
		t.Fatalf("Failed to notify progress: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != "report_progress" {
		t.Errorf("Expected type 'report_progress', got '%s'", received.Type)
	}
	if received.UserID != 1 {
		t.Errorf("Expected userID 1, got %d", received.UserID)
	}
	if received.Channel != "report_progress#1" {
		t.Errorf("Expected channel 'report_progress#1', got '%s'", received.Channel)
	}

	data := decodeData(t, received)
	if data["id"] != "report-123" {
		t.Errorf("Expected id 'report-123', got '%v'", data["id"])
	}
	if data["progress"].(float64) != 50.5 {
		t.Errorf("Expected progress 50.5, got %v", data["progress"])
	}
	if data["stage"] != "collecting rows" {
		t.Errorf("Expected stage 'collecting rows', got '%v'", data["stage"])
	}
}

func TestWebSocketClient_NotifyReportComplete(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialTestHub(t, hub, 1)
	client := NewWebSocketClient(hub)

	err := client.NotifyReportComplete(context.Background(), 1, "report-123", "https://example.com/file.xlsx", "payments_20260101.xlsx")
	if err != nil {
		t.Fatalf("Failed to notify complete: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != "report_complete" {
		t.Errorf("Expected type 'report_complete', got '%s'", received.Type)
	}
	if received.Channel != "report_complete#1" {
		t.Errorf("Expected channel 'report_complete#1', got '%s'", received.Channel)
	}

	data := decodeData(t, received)
	if data["id"] != "report-123" {
		t.Errorf("Expected id 'report-123', got '%v'", data["id"])
	}
	if data["url"] != "https://example.com/file.xlsx" {
		t.Errorf("Expected url 'https://example.com/file.xlsx', got '%v'", data["url"])
	}
	if data["filename"] != "payments_20260101.xlsx" {
		t.Errorf("Expected filename 'payments_20260101.xlsx', got '%v'", data["filename"])
	}
	if int64(data["user_id"].(float64)) != 1 {
		t.Errorf("Expected user_id 1, got %v", data["user_id"])
	}
}

func TestWebSocketClient_NotifyReportFailed(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialTestHub(t, hub, 1)
	client := NewWebSocketClient(hub)

	err := client.NotifyReportFailed(context.Background(), 1, "report-123", "upload failed")
	if err != nil {
		t.Fatalf("Failed to notify failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var received ws.Message
	if err := conn.ReadJSON(&received); err != nil {
		t.Fatalf("Failed to read message: %v", err)
	}

	if received.Type != "report_failed" {
		t.Errorf("Expected type 'report_failed', got '%s'", received.Type)
	}
	if received.Channel != "report_failed#1" {
		t.Errorf("Expected channel 'report_failed#1', got '%s'", received.Channel)
	}

	data := decodeData(t, received)
	if data["id"] != "report-123" {
		t.Errorf("Expected id 'report-123', got '%v'", data["id"])
	}
	if data["message"] != "upload failed" {
		t.Errorf("Expected message 'upload failed', got '%v'", data["message"])
	}
}

func TestWebSocketClient_NilHub(t *testing.T) {
	client := NewWebSocketClient(nil)

	if err := client.NotifyReportProgress(context.Background(), 1, "report-123", 50.5, ""); err != nil {
		t.Errorf("Should not return error with nil hub, got: %v", err)
	}
	if err := client.NotifyReportComplete(context.Background(), 1, "report-123", "https://example.com/file.xlsx", "file.xlsx"); err != nil {
		t.Errorf("Should not return error with nil hub, got: %v", err)
	}
	if err := client.NotifyReportFailed(context.Background(), 1, "report-123", "boom"); err != nil {
		t.Errorf("Should not return error with nil hub, got: %v", err)
	}
}

func TestWebSocketClient_MultipleProgressUpdates(t *testing.T) {
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	conn := dialTestHub(t, hub, 1)
	client := NewWebSocketClient(hub)

	progresses := []float64{10.0, 25.0, 50.0, 75.0, 100.0}
	for _, progress := range progresses {
		if err := client.NotifyReportProgress(context.Background(), 1, "report-123", progress, ""); err != nil {
			t.Fatalf("Failed to notify progress: %v", err)
		}

		conn.SetReadDeadline(time.Now().Add(1 * time.Second))
		var received ws.Message
		if err := conn.ReadJSON(&received); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}

		data := decodeData(t, received)
		if data["progress"].(float64) != progress {
			t.Errorf("Expected progress %.1f, got %.1f", progress, data["progress"].(float64))
		}
	}
}
