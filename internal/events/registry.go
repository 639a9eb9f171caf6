package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// scene lifecycle
	"scene.entered":  {},
	"scene.exited":   {},
	"scene.advanced": {},
	"scene.replaced": {},

	// dilemma phases
	"phase.changed":       {},
	"stage.started":       {},
	"stage.finalized":     {},
	"dilemma.loaded":      {},
	"dilemma.completed":   {},
	"consequence.impact":  {},
	"consequence.started": {},

	// player input
	"lever.flipped":   {},
	"input.ignored":   {},
	"operator.skip":   {},
	"operator.pull":   {},
	"operator.start":  {},
	"operator.next":   {},
	"operator.replay": {},

	// timing
	"countdown.started": {},
	"countdown.expired": {},
	"countdown.pulse":   {},
	"dilation.changed":  {},

	// output surfaces
	"audio.play":       {},
	"audio.missing":    {},
	"visuals.fallback": {},

	// console bridge
	"console.connected":    {},
	"console.disconnected": {},
	"console.input":        {},
	"console.error":        {},

	// system
	"system.startup":  {},
	"system.shutdown": {},
	"system.error":    {},
}

// Validate rejects event names outside the fixed vocabulary. Keeping the set
// closed makes the telemetry schema stable across builds.
func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
