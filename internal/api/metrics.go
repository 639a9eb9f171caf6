package api

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/version"
)

var metricsState = &MetricsState{}

// MetricsState holds runtime metrics for the /metrics endpoint.
type MetricsState struct {
	mu                sync.RWMutex
	startTime         time.Time
	bridgeConnected   bool
	postgresConnected bool
	stagesPlayed      int
	ticks             uint64
}

// InitMetrics initializes the metrics system. Must be called at startup.
func InitMetrics() {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.startTime = time.Now()
}

// SetBridgeConnected records whether the console bridge is up.
func SetBridgeConnected(connected bool) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.bridgeConnected = connected
}

// SetPostgresConnected records whether the telemetry sink is up.
func SetPostgresConnected(connected bool) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.postgresConnected = connected
}

// ObserveTick records the latest tick counter and stage count.
func ObserveTick(ticks uint64, stagesPlayed int) {
	metricsState.mu.Lock()
	defer metricsState.mu.Unlock()
	metricsState.ticks = ticks
	metricsState.stagesPlayed = stagesPlayed
}

// metricsHandler returns Prometheus-compatible metrics in text format.
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	metricsState.mu.RLock()
	startTime := metricsState.startTime
	bridgeConnected := metricsState.bridgeConnected
	postgresConnected := metricsState.postgresConnected
	stagesPlayed := metricsState.stagesPlayed
	ticks := metricsState.ticks
	metricsState.mu.RUnlock()

	uptime := time.Since(startTime).Seconds()
	eventsTotal := events.TotalCount()
	wsClients := events.SubscriberCount()

	boolVal := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}

	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	writeMetric := func(name, mtype, help string, value interface{}) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, mtype)
		fmt.Fprintf(w, "%s{instance=%q,version=%q} %v\n", name, hostname, version.Version, value)
	}

	writeMetric("trolley_uptime_seconds", "gauge",
		"Number of seconds since the engine started", uptime)
	writeMetric("trolley_ticks_total", "counter",
		"Total number of game ticks advanced", ticks)
	writeMetric("trolley_stages_played", "gauge",
		"Number of dilemma stages completed this session", stagesPlayed)
	writeMetric("trolley_events_total", "counter",
		"Total number of events emitted since startup", eventsTotal)
	writeMetric("trolley_bridge_connected", "gauge",
		"Whether the console bridge is connected (1) or not (0)", boolVal(bridgeConnected))
	writeMetric("trolley_postgres_connected", "gauge",
		"Whether the telemetry sink is connected (1) or not (0)", boolVal(postgresConnected))
	writeMetric("trolley_ws_clients", "gauge",
		"Number of active WebSocket client connections", wsClients)
}
