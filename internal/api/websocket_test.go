package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
)

// waitFor polls a condition until it returns true or timeout expires.
func waitFor(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("timeout waiting for: %s", msg)
}

func newWSServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, _ := newTestServer(t)
	server := httptest.NewServer(http.HandlerFunc(srv.wsEventsHandler))
	t.Cleanup(server.Close)
	return server
}

func wsDial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	return conn
}

func TestWebSocketReceivesRecentEvents(t *testing.T) {
	server := newWSServer(t)
	events.Clear()

	for i := 0; i < 5; i++ {
		events.Emit("info", "countdown.pulse", "", map[string]interface{}{"i": i})
	}

	conn := wsDial(t, server)
	defer conn.Close()

	received := 0
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for received < 5 {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("failed to read message: %v", err)
		}
		var e events.Event
		if err := json.Unmarshal(msg, &e); err != nil {
			t.Fatalf("failed to unmarshal event: %v", err)
		}
		if e.Name != "countdown.pulse" {
			t.Errorf("expected 'countdown.pulse', got '%s'", e.Name)
		}
		received++
	}
}

func TestWebSocketReceivesNewEvents(t *testing.T) {
	server := newWSServer(t)
	events.Clear()

	conn := wsDial(t, server)
	defer conn.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "lever.flipped", "", map[string]interface{}{"side": "left"})
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read new event: %v", err)
	}

	var e events.Event
	if err := json.Unmarshal(msg, &e); err != nil {
		t.Fatalf("failed to unmarshal event: %v", err)
	}

	if e.Name != "lever.flipped" {
		t.Errorf("expected 'lever.flipped', got '%s'", e.Name)
	}
	if e.Fields["side"] != "left" {
		t.Errorf("expected side 'left', got '%v'", e.Fields["side"])
	}
}

func TestWebSocketDisconnectCleansUp(t *testing.T) {
	server := newWSServer(t)
	events.Clear()

	conn := wsDial(t, server)

	// Verify the subscription is live before testing cleanup.
	go func() {
		time.Sleep(20 * time.Millisecond)
		events.Emit("info", "stage.finalized", "", nil)
	}()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("failed to read test event: %v", err)
	}

	base := events.SubscriberCount()
	conn.Close()

	// Emit events so the writer loop notices the closed connection.
	for i := 0; i < 5; i++ {
		events.Emit("info", "stage.finalized", "", nil)
		time.Sleep(50 * time.Millisecond)
	}

	waitFor(t, 5*time.Second, func() bool {
		return events.SubscriberCount() < base
	}, "subscriber count to drop after close")
}

func TestWebSocketMultipleClients(t *testing.T) {
	server := newWSServer(t)
	events.Clear()

	conn1 := wsDial(t, server)
	defer conn1.Close()
	conn2 := wsDial(t, server)
	defer conn2.Close()

	go func() {
		time.Sleep(50 * time.Millisecond)
		events.Emit("info", "dilemma.completed", "", map[string]interface{}{"scene": "lab_0.incompetent_bandit"})
	}()

	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg1, err := conn1.ReadMessage()
	if err != nil {
		t.Fatalf("client1 failed to read: %v", err)
	}

	conn2.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg2, err := conn2.ReadMessage()
	if err != nil {
		t.Fatalf("client2 failed to read: %v", err)
	}

	var e1, e2 events.Event
	json.Unmarshal(msg1, &e1)
	json.Unmarshal(msg2, &e2)

	if e1.Name != "dilemma.completed" {
		t.Errorf("client1: expected 'dilemma.completed', got '%s'", e1.Name)
	}
	if e2.Name != "dilemma.completed" {
		t.Errorf("client2: expected 'dilemma.completed', got '%s'", e2.Name)
	}
}
