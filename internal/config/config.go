package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FraserHollow/TrolleyEngine/internal/dilemma"
)

// EngineConfig is engine.yaml: everything an install can tune without
// rebuilding. Campaign content itself is compiled in.
type EngineConfig struct {
	Version int `yaml:"version"`
	Game    struct {
		Seed        uint64 `yaml:"seed"`
		TickRateHz  int    `yaml:"tick_rate_hz"`
		SingleLevel string `yaml:"single_level"`
	} `yaml:"game"`
	Pulse struct {
		DangerSeconds   float64 `yaml:"danger_seconds"`
		SpeedupSeconds  float64 `yaml:"speedup_seconds"`
		IntervalSeconds float64 `yaml:"interval_seconds"`
	} `yaml:"pulse"`
	Network struct {
		ObserverPort int `yaml:"observer_port"`
		MQTTPort     int `yaml:"mqtt_port"`
		DBPort       int `yaml:"db_port"`
	} `yaml:"network"`
	Telemetry struct {
		Postgres bool `yaml:"postgres"`
		MQTT     bool `yaml:"mqtt"`
	} `yaml:"telemetry"`
}

// ObserverPort returns the configured observer port, defaulting to 8080
// if not set.
func (c *EngineConfig) ObserverPort() int {
	if c.Network.ObserverPort == 0 {
		return 8080
	}
	return c.Network.ObserverPort
}

// TickRate returns the configured tick rate, defaulting to 60 Hz.
func (c *EngineConfig) TickRate() int {
	if c.Game.TickRateHz <= 0 {
		return 60
	}
	return c.Game.TickRateHz
}

// TickInterval is the frame delta matching TickRate.
func (c *EngineConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate())
}

// PulseTuning maps the pulse section onto the countdown tunables. Unset
// fields take the gameplay defaults.
func (c *EngineConfig) PulseTuning() dilemma.PulseTuning {
	tuning := dilemma.DefaultPulseTuning()
	if c.Pulse.DangerSeconds > 0 {
		tuning.DangerRemaining = time.Duration(c.Pulse.DangerSeconds * float64(time.Second))
	}
	if c.Pulse.SpeedupSeconds > 0 {
		tuning.SpeedupRemaining = time.Duration(c.Pulse.SpeedupSeconds * float64(time.Second))
	}
	if c.Pulse.IntervalSeconds > 0 {
		tuning.Interval = time.Duration(c.Pulse.IntervalSeconds * float64(time.Second))
	}
	return tuning
}

// LoadEngineConfig reads and validates engine.yaml.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg EngineConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}

	if cfg.Version != 1 {
		return nil, fmt.Errorf("unsupported engine.yaml version: %d", cfg.Version)
	}

	return &cfg, nil
}

// DefaultEngineConfig is the configuration used when no engine.yaml is
// present: campaign mode, all telemetry off.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{Version: 1}
}
