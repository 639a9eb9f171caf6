package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/flow"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

// Server is the local observer surface: read-only views of the running
// game plus a small operator endpoint set that feeds intents in.
type Server struct {
	eng   *engine.Engine
	graph *flow.Graph
}

func NewServer(eng *engine.Engine) (*Server, error) {
	graph, err := flow.Campaign()
	if err != nil {
		return nil, err
	}
	return &Server{eng: eng, graph: graph}, nil
}

type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Hostname  string `json:"hostname"`
	Timestamp string `json:"ts"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	host, _ := os.Hostname()
	resp := HealthResponse{
		Status:    "ok",
		Service:   "engine",
		Hostname:  host,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// ReadinessResponse reports per-dependency health. Optional dependencies
// (bridge, postgres) never fail readiness; they are informational.
type ReadinessResponse struct {
	Ready  bool            `json:"ready"`
	Checks map[string]bool `json:"checks"`
}

func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	metricsState.mu.RLock()
	bridge := metricsState.bridgeConnected
	postgres := metricsState.postgresConnected
	metricsState.mu.RUnlock()

	resp := ReadinessResponse{
		Ready: true,
		Checks: map[string]bool{
			"engine":   true,
			"bridge":   bridge,
			"postgres": postgres,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.eng.Snapshot())
}

// StatsResponse is the cumulative run statistics view.
type StatsResponse struct {
	Stages  []stats.StageStats `json:"stages"`
	Summary stats.GameSummary  `json:"summary"`
	Report  string             `json:"report"`
}

func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	game := s.eng.GameStats()
	resp := StatsResponse{
		Stages:  game.All(),
		Summary: game.Summary(),
		Report:  game.Summary().Report(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events.Snapshot())
}

// graphHandler serves the progression graph as a mermaid page, a quick
// way to eyeball routing while authoring content.
func (s *Server) graphHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(s.graph.ExportHTML()))
}

type OperatorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// intentHandler turns a POST into one engine intent. The intent lands on
// the next tick like any other input.
func (s *Server) intentHandler(kind engine.IntentKind, event string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "method not allowed"})
			return
		}

		events.Emit("info", event, "", map[string]interface{}{
			"intent": kind.String(),
			"source": "api",
		})
		s.eng.Apply(kind)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: true})
	}
}

// pullHandler accepts {"side": "left"|"right"} and applies the matching
// lever intent.
func (s *Server) pullHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "method not allowed"})
		return
	}

	var req struct {
		Side string `json:"side"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "invalid JSON"})
		return
	}

	var kind engine.IntentKind
	switch req.Side {
	case "left":
		kind = engine.IntentLeverLeft
	case "right":
		kind = engine.IntentLeverRight
	default:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(OperatorResponse{OK: false, Error: "side must be left or right"})
		return
	}

	events.Emit("info", "operator.pull", "", map[string]interface{}{
		"side":   req.Side,
		"source": "api",
	})
	s.eng.Apply(kind)
	_ = json.NewEncoder(w).Encode(OperatorResponse{OK: true})
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.uiHandler)
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.HandleFunc("/readyz", s.readyHandler)
	mux.HandleFunc("/state", s.stateHandler)
	mux.HandleFunc("/stats", s.statsHandler)
	mux.HandleFunc("/events", s.eventsHandler)
	mux.HandleFunc("/graph", s.graphHandler)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/ws/events", s.wsEventsHandler)
	mux.HandleFunc("/operator/start", s.intentHandler(engine.IntentStart, "operator.start"))
	mux.HandleFunc("/operator/next", s.intentHandler(engine.IntentNext, "operator.next"))
	mux.HandleFunc("/operator/skip", s.intentHandler(engine.IntentSkip, "operator.skip"))
	mux.HandleFunc("/operator/replay", s.intentHandler(engine.IntentReplay, "operator.replay"))
	mux.HandleFunc("/operator/pull", s.pullHandler)
	return mux
}

// ListenAndServe starts the observer server on the given port.
// It blocks until the server exits.
func (s *Server) ListenAndServe(port int) error {
	addr := fmt.Sprintf(":%d", port)
	log.Info().Str("addr", addr).Msg("observer listening")
	return http.ListenAndServe(addr, s.Handler())
}

// Start starts the observer server in a goroutine.
// Errors are logged but do not stop the caller.
func (s *Server) Start(port int) {
	go func() {
		if err := s.ListenAndServe(port); err != nil {
			log.Error().Err(err).Msg("observer server error")
		}
	}()
}
