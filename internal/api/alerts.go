package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Alert severity levels
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
	SeverityInfo     = "info"
)

// Alert event types
const (
	AlertBridgeDisconnected  = "bridge_disconnected"
	AlertPostgresUnavailable = "postgres_unavailable"
	AlertEngineStalled       = "engine_stalled"
)

// AlertPayload is the JSON structure sent to the webhook.
type AlertPayload struct {
	Service   string                 `json:"service"`
	Event     string                 `json:"event"`
	Timestamp string                 `json:"timestamp"`
	Severity  string                 `json:"severity"`
	Message   string                 `json:"message,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

var (
	alertMu         sync.Mutex
	alertWebhookURL string
)

// InitAlerts reads the webhook target from the environment. Without one,
// alerts degrade to log lines.
func InitAlerts() {
	alertMu.Lock()
	defer alertMu.Unlock()

	alertWebhookURL = os.Getenv("TROLLEY_ALERT_WEBHOOK_URL")
	if alertWebhookURL != "" {
		log.Info().Msg("alerts enabled: webhook URL configured")
	}
}

// GetAlertWebhookURL returns the configured webhook URL (for testing).
func GetAlertWebhookURL() string {
	alertMu.Lock()
	defer alertMu.Unlock()
	return alertWebhookURL
}

// SendAlert sends an alert to the configured webhook (best-effort,
// non-blocking).
func SendAlert(event, severity, message string, details map[string]interface{}) {
	alertMu.Lock()
	webhookURL := alertWebhookURL
	alertMu.Unlock()

	if webhookURL == "" {
		log.Warn().
			Str("alert", event).
			Str("severity", severity).
			Str("message", message).
			Msg("alert (no webhook configured)")
		return
	}

	payload := AlertPayload{
		Service:   "trolley-engine",
		Event:     event,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Severity:  severity,
		Message:   message,
		Details:   details,
	}

	// Send asynchronously to avoid blocking the tick loop.
	go sendWebhook(webhookURL, payload)
}

func sendWebhook(url string, payload AlertPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("alert: failed to marshal payload")
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Error().Err(err).Msg("alert: webhook POST failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("alert: webhook returned error status")
	}
}
