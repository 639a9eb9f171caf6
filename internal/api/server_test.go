package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
)

func newTestServer(t *testing.T) (*Server, *engine.Engine) {
	t.Helper()
	eng, err := engine.New(engine.Options{})
	if err != nil {
		t.Fatalf("failed to build engine: %v", err)
	}
	eng.Tick(16 * time.Millisecond)
	srv, err := NewServer(eng)
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	return srv, eng
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	srv.healthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp.Status)
	}
	if resp.Service != "engine" {
		t.Errorf("expected service 'engine', got '%s'", resp.Service)
	}
}

func TestReadyEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	SetBridgeConnected(false)
	SetPostgresConnected(true)

	req := httptest.NewRequest("GET", "/readyz", nil)
	w := httptest.NewRecorder()

	srv.readyHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp ReadinessResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if !resp.Ready {
		t.Error("expected ready=true")
	}
	if resp.Checks["bridge"] {
		t.Error("expected bridge check false")
	}
	if !resp.Checks["postgres"] {
		t.Error("expected postgres check true")
	}
}

func TestStateEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/state", nil)
	w := httptest.NewRecorder()

	srv.stateHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var snap engine.Snapshot
	if err := json.NewDecoder(w.Body).Decode(&snap); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}

	if snap.Kind != "menu" {
		t.Errorf("expected fresh engine on menu, got kind %q", snap.Kind)
	}
	if snap.Mode != "campaign" {
		t.Errorf("expected campaign mode, got %q", snap.Mode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/stats", nil)
	w := httptest.NewRecorder()

	srv.statsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp StatsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(resp.Stages) != 0 {
		t.Errorf("expected no stages before any dilemma, got %d", len(resp.Stages))
	}
}

func TestOperatorStartAppliesIntent(t *testing.T) {
	srv, eng := newTestServer(t)
	req := httptest.NewRequest("POST", "/operator/start", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp OperatorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.OK {
		t.Fatalf("expected ok=true, got error %q", resp.Error)
	}

	// The intent lands on the next tick and the new scene is entered
	// on the tick after the queue settles.
	eng.Tick(16 * time.Millisecond)
	eng.Tick(16 * time.Millisecond)
	if kind := eng.Snapshot().Kind; kind == "menu" {
		t.Error("expected engine to leave the menu after start")
	}
}

func TestOperatorRejectsGET(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/operator/start", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestPullEndpointValidatesSide(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"left", `{"side":"left"}`, http.StatusOK},
		{"right", `{"side":"right"}`, http.StatusOK},
		{"unknown side", `{"side":"middle"}`, http.StatusBadRequest},
		{"malformed", `{not json`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/operator/pull", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			srv.pullHandler(w, req)

			if w.Code != tt.code {
				t.Errorf("expected status %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestEventsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	events.Clear()
	if err := events.Emit("info", "scene.entered", "menu", nil); err != nil {
		t.Fatalf("emit failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/events", nil)
	w := httptest.NewRecorder()

	srv.eventsHandler(w, req)

	var got []events.Event
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode events: %v", err)
	}
	if len(got) != 1 || got[0].Name != "scene.entered" {
		t.Errorf("unexpected event log: %+v", got)
	}
}

func TestGraphEndpointServesMermaid(t *testing.T) {
	srv, _ := newTestServer(t)
	req := httptest.NewRequest("GET", "/graph", nil)
	w := httptest.NewRecorder()

	srv.graphHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "mermaid") {
		t.Error("expected graph page to embed a mermaid diagram")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	InitMetrics()
	ObserveTick(42, 3)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	metricsHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, metric := range []string{
		"trolley_uptime_seconds",
		"trolley_ticks_total",
		"trolley_stages_played",
		"trolley_bridge_connected",
	} {
		if !strings.Contains(body, metric) {
			t.Errorf("expected metric %s in output", metric)
		}
	}
	if !strings.Contains(body, "} 42") {
		t.Error("expected tick counter value 42")
	}
}

func TestMetricsRejectsPost(t *testing.T) {
	req := httptest.NewRequest("POST", "/metrics", nil)
	w := httptest.NewRecorder()

	metricsHandler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}
