package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FraserHollow/TrolleyEngine/internal/engine"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
)

// policy decides what a simulated player does during a decision phase.
type policy func(snap engine.Snapshot, stage int) *engine.IntentKind

func intentPtr(k engine.IntentKind) *engine.IntentKind { return &k }

func makePolicy(name string) (policy, error) {
	switch name {
	case "left":
		return func(engine.Snapshot, int) *engine.IntentKind {
			return intentPtr(engine.IntentLeverLeft)
		}, nil
	case "right":
		return func(engine.Snapshot, int) *engine.IntentKind {
			return intentPtr(engine.IntentLeverRight)
		}, nil
	case "alternate":
		return func(_ engine.Snapshot, stage int) *engine.IntentKind {
			if stage%2 == 0 {
				return intentPtr(engine.IntentLeverLeft)
			}
			return intentPtr(engine.IntentLeverRight)
		}, nil
	case "idle":
		return func(engine.Snapshot, int) *engine.IntentKind { return nil }, nil
	case "skip":
		return func(engine.Snapshot, int) *engine.IntentKind {
			return intentPtr(engine.IntentSkip)
		}, nil
	}
	return nil, fmt.Errorf("unknown policy %q (want left, right, alternate, idle or skip)", name)
}

func main() {
	seed := flag.Uint64("seed", 0, "deterministic seed (0 uses the default)")
	policyName := flag.String("policy", "idle", "decision policy: left, right, alternate, idle, skip")
	level := flag.String("level", "", "run one dilemma by name instead of the campaign")
	stages := flag.Int("stages", 10, "stop after this many completed stages")
	maxTicks := flag.Int("max-ticks", 200_000, "hard tick limit")
	verbose := flag.Bool("v", false, "log scene transitions")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if !*verbose {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}

	pick, err := makePolicy(*policyName)
	if err != nil {
		log.Fatal().Err(err).Msg("bad policy")
	}

	opts := engine.Options{Seed: *seed}
	if *level != "" {
		if !scene.KnownDilemma(*level) {
			log.Fatal().Str("level", *level).Msg("unknown dilemma")
		}
		id := scene.Dilemma(*level)
		opts.SingleLevel = &id
	}

	eng, err := engine.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build engine")
	}

	const dt = 50 * time.Millisecond

	lastScene := ""
	pulled := -1 // stage index the policy last acted on
loop:
	for i := 0; i < *maxTicks; i++ {
		snap := eng.Snapshot()

		if snap.Scene != lastScene {
			log.Info().Str("scene", snap.Scene).Msg("entered")
			lastScene = snap.Scene
			pulled = -1
		}

		if snap.StagesPlayed >= *stages {
			break
		}

		switch {
		case snap.Kind == "menu":
			if snap.StagesPlayed > 0 {
				// Back on the menu after playing: the run is over.
				break loop
			}
			eng.Apply(engine.IntentStart)

		case snap.Dilemma != nil && snap.Dilemma.Phase == "intro":
			eng.Apply(engine.IntentStart)

		case snap.Dilemma != nil && snap.Dilemma.Phase == "decision":
			if pulled < snap.Dilemma.Stage {
				pulled = snap.Dilemma.Stage
				if intent := pick(snap, snap.Dilemma.Stage); intent != nil {
					eng.Apply(*intent)
				}
			}

		case snap.Dilemma != nil && snap.Dilemma.Phase == "results":
			eng.Apply(engine.IntentNext)

		case snap.Ending != nil:
			eng.Apply(engine.IntentNext)
		}

		eng.Tick(dt)
	}

	game := eng.GameStats()
	for i, s := range game.All() {
		fmt.Printf("--- Stage %d ---\n%s\n\n", i+1, s.Report())
	}
	fmt.Println(game.Summary().Report())
}
