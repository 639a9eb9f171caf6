package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadEngineConfig(t *testing.T) {
	path := writeConfig(t, `
version: 1
game:
  seed: 99
  tick_rate_hz: 30
  single_level: lab_2.the_trolley_problem
pulse:
  danger_seconds: 6.0
  interval_seconds: 0.8
network:
  observer_port: 9090
telemetry:
  postgres: true
`)
	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Game.Seed != 99 {
		t.Errorf("seed = %d", cfg.Game.Seed)
	}
	if cfg.TickRate() != 30 {
		t.Errorf("tick rate = %d", cfg.TickRate())
	}
	if cfg.ObserverPort() != 9090 {
		t.Errorf("observer port = %d", cfg.ObserverPort())
	}
	if !cfg.Telemetry.Postgres || cfg.Telemetry.MQTT {
		t.Error("telemetry toggles wrong")
	}

	tuning := cfg.PulseTuning()
	if tuning.DangerRemaining != 6*time.Second {
		t.Errorf("danger = %v", tuning.DangerRemaining)
	}
	if tuning.Interval != 800*time.Millisecond {
		t.Errorf("interval = %v", tuning.Interval)
	}
	// Unset fields keep the gameplay defaults.
	if tuning.SpeedupRemaining != 2*time.Second {
		t.Errorf("speedup = %v", tuning.SpeedupRemaining)
	}
}

func TestLoadEngineConfigRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, "version: 2\n")
	if _, err := LoadEngineConfig(path); err == nil {
		t.Fatal("expected version error")
	}
}

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()
	if cfg.TickRate() != 60 {
		t.Errorf("default tick rate = %d", cfg.TickRate())
	}
	if cfg.ObserverPort() != 8080 {
		t.Errorf("default observer port = %d", cfg.ObserverPort())
	}
	if cfg.TickInterval() != time.Second/60 {
		t.Errorf("tick interval = %v", cfg.TickInterval())
	}
}
