package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FraserHollow/TrolleyEngine/internal/api"
	"github.com/FraserHollow/TrolleyEngine/internal/bridge"
	"github.com/FraserHollow/TrolleyEngine/internal/config"
	"github.com/FraserHollow/TrolleyEngine/internal/dilemma"
	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/flow"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/sim"
	"github.com/FraserHollow/TrolleyEngine/internal/storage/postgres"
	"github.com/FraserHollow/TrolleyEngine/internal/version"
)

// validateContent checks everything compiled-in content can break at
// startup, collecting every problem instead of stopping at the first.
func validateContent() []error {
	var errs []error

	if _, err := flow.Campaign(); err != nil {
		errs = append(errs, fmt.Errorf("campaign graph: %w", err))
	}

	rng := sim.NewRNG(1)
	for _, id := range scene.AllDilemmaIDs() {
		if _, err := dilemma.Load(id, rng); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return errs
}

func loadConfig(path string) *config.EngineConfig {
	cfg, err := config.LoadEngineConfig(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Info().Str("path", path).Msg("no engine.yaml, using defaults")
			return config.DefaultEngineConfig()
		}
		log.Fatal().Err(err).Str("path", path).Msg("failed to load config")
	}
	return cfg
}

func main() {
	configPath := flag.String("config", "engine.yaml", "path to engine.yaml")
	pretty := flag.Bool("pretty", false, "human-readable log output")
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	log.Info().Str("version", version.Version).Msg("trolley engine starting")

	if errs := validateContent(); len(errs) > 0 {
		for _, err := range errs {
			log.Error().Err(err).Msg("content validation failed")
		}
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)

	opts := engine.Options{
		Seed:        cfg.Game.Seed,
		PulseTuning: cfg.PulseTuning(),
	}
	if name := cfg.Game.SingleLevel; name != "" {
		if !scene.KnownDilemma(name) {
			log.Fatal().Str("level", name).Msg("unknown single_level dilemma")
		}
		id := scene.Dilemma(name)
		opts.SingleLevel = &id
	}

	eng, err := engine.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	api.InitMetrics()
	api.InitAlerts()

	var pg *postgres.Client
	if cfg.Telemetry.Postgres {
		pg, err = postgres.New()
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, telemetry disabled")
			api.SendAlert(api.AlertPostgresUnavailable, api.SeverityWarning, err.Error(), nil)
		} else {
			events.SetSink(pg)
			api.SetPostgresConnected(true)
			log.Info().Str("session", pg.SessionID()).Msg("telemetry sink connected")
			defer pg.Close()
		}
	}

	var br *bridge.Bridge
	if cfg.Telemetry.MQTT {
		br = bridge.New(eng)
		go func() {
			if br.Start() {
				api.SetBridgeConnected(true)
			} else {
				api.SendAlert(api.AlertBridgeDisconnected, api.SeverityWarning, "console bridge gave up connecting", nil)
			}
		}()
		defer br.Stop()
	}

	srv, err := api.NewServer(eng)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build observer server")
	}
	srv.Start(cfg.ObserverPort())

	events.Emit("info", "system.startup", "engine online", map[string]interface{}{
		"version":   version.Version,
		"tick_rate": cfg.TickRate(),
		"pid":       os.Getpid(),
	})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.TickInterval())
	defer ticker.Stop()

	recorded := 0
	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			eng.Tick(dt)

			snap := eng.Snapshot()
			api.ObserveTick(snap.Tick, snap.StagesPlayed)
			if br != nil {
				br.PublishSnapshot()
			}

			// Persist stage outcomes as they land.
			if pg != nil {
				game := eng.GameStats()
				for ; recorded < game.Len(); recorded++ {
					s := game.At(recorded)
					if err := pg.RecordStage(snap.Scene, recorded, *s); err != nil {
						log.Warn().Err(err).Msg("failed to record stage outcome")
					}
				}
			}

		case sig := <-sigs:
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			events.Emit("info", "system.shutdown", "engine stopping", nil)
			return
		}
	}
}
