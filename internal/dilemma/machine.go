package dilemma

import (
	"fmt"
	"strings"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/sim"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

// Phase is the gameplay state within a dilemma scene.
type Phase int

const (
	PhaseIntro Phase = iota
	PhaseTransition
	PhaseDecision
	PhaseConsequence
	PhaseSkip
	PhaseResults
)

func (p Phase) String() string {
	switch p {
	case PhaseIntro:
		return "intro"
	case PhaseTransition:
		return "intro_decision_transition"
	case PhaseDecision:
		return "decision"
	case PhaseConsequence:
		return "consequence"
	case PhaseSkip:
		return "skip"
	case PhaseResults:
		return "results"
	}
	return "unknown"
}

const (
	leverSoundCooldown = 100 * time.Millisecond
	skipDilation       = 6.0

	// The approach run puts the train 100 units out, so its arrival time
	// scales with the stage's speed.
	approachDistance = 100.0
	junctionSlide    = 1500 * time.Millisecond
)

// Machine drives one dilemma scene from intro to results. It owns the
// per-stage countdown, the lever, and the stage stats reducer; it pushes
// finished stages into the shared game stats.
type Machine struct {
	def   *Definition
	game  *stats.GameStats
	scope stats.RunScope

	dilation    *sim.Dilation
	rng         *sim.RNG
	pulseTuning PulseTuning

	phase   Phase
	pending *Phase

	stageIndex int
	lever      stats.LeverState
	leverSound *sim.Cooldown
	stage      *stats.StageStats
	countdown  *Countdown

	narrationDone bool
	startPressed  bool

	approach *sim.PointToPointMotion
	junction *sim.PointToPointMotion
	decision *sim.PointToPointMotion

	consequence *Consequence
	skipMotion  *sim.Timer

	done bool
}

// NewMachine loads the dilemma behind id and enters the intro phase.
// Fails if the catalog has no content for the id.
func NewMachine(id scene.ID, game *stats.GameStats, dilation *sim.Dilation, rng *sim.RNG, tuning PulseTuning) (*Machine, error) {
	def, err := Load(id, rng)
	if err != nil {
		return nil, fmt.Errorf("enter dilemma: %w", err)
	}

	m := &Machine{
		def:         def,
		game:        game,
		scope:       stats.NewRunScope(game.Len(), len(def.Stages)),
		dilation:    dilation,
		rng:         rng,
		pulseTuning: tuning,
		phase:       PhaseIntro,
		lever:       stats.LeverRandom,
		leverSound:  sim.NewCooldown(leverSoundCooldown),
	}

	events.Emit("info", "dilemma.loaded", def.Name, map[string]interface{}{
		"scene":  id.String(),
		"stages": len(def.Stages),
	})
	events.PlaySound(events.SoundNarration, def.NarrationPath)
	events.PlaySound(events.SoundMusic, def.MusicPath)
	return m, nil
}

func (m *Machine) Definition() *Definition { return m.def }
func (m *Machine) Phase() Phase            { return m.phase }
func (m *Machine) StageIndex() int         { return m.stageIndex }
func (m *Machine) Lever() stats.LeverState { return m.lever }
func (m *Machine) Scope() stats.RunScope   { return m.scope }
func (m *Machine) Done() bool              { return m.done }

// CurrentStage returns the active stage definition.
func (m *Machine) CurrentStage() *Stage {
	return &m.def.Stages[m.stageIndex]
}

// request defers a phase change to the start of the next tick. The first
// request within a tick wins.
func (m *Machine) request(p Phase) {
	if m.pending == nil {
		m.pending = &p
	}
}

// Tick advances the machine by one frame of wall time. A transition
// requested last tick is applied before any phase logic runs.
func (m *Machine) Tick(dt time.Duration) {
	if m.pending != nil {
		next := *m.pending
		m.pending = nil
		m.enter(next)
	}
	m.leverSound.Tick(dt)

	switch m.phase {
	case PhaseIntro:
		if m.startPressed || m.narrationDone {
			m.request(PhaseTransition)
		}
	case PhaseTransition:
		m.approach.Tick(dt)
		m.junction.Tick(dt)
		if m.approach.Finished() && m.junction.Finished() {
			m.request(PhaseDecision)
		}
	case PhaseDecision:
		m.countdown.Tick(dt, m.dilation)
		m.decision.Tick(m.dilation.Scale(dt))
		if m.countdown.JustPulsed() {
			events.Emit("debug", "countdown.pulse", "", map[string]interface{}{
				"remaining": m.countdown.RemainingSeconds(),
			})
			events.PlaySound(events.SoundClock, "")
		}
		if m.countdown.JustExpired() {
			events.Emit("info", "countdown.expired", "", map[string]interface{}{
				"stage": m.stageIndex,
			})
			m.request(PhaseConsequence)
		}
	case PhaseConsequence:
		m.consequence.Tick(dt, m.dilation)
		if m.consequence.Impacts() > 0 {
			events.Emit("info", "consequence.impact", "", map[string]interface{}{
				"stage":   m.stageIndex,
				"victims": m.consequence.Impacts(),
			})
			events.PlaySound(events.SoundBounce, "")
		}
		if m.consequence.ScreamJustFired() {
			events.PlaySound(events.SoundScream, "")
		}
		if m.consequence.SpeedupJustFired() {
			events.PlaySound(events.SoundSpeedUp, "")
		}
		if m.consequence.ButtonJustShown() {
			if m.stageIndex+1 < len(m.def.Stages) {
				m.stageIndex++
				m.request(PhaseTransition)
			} else {
				m.request(PhaseResults)
			}
		}
	case PhaseSkip:
		m.skipMotion.Tick(m.dilation.Scale(dt))
		if m.skipMotion.JustFinished() {
			m.dilation.Set(1.0)
			events.Emit("info", "dilation.changed", "", map[string]interface{}{"value": 1.0})
			m.request(PhaseResults)
		}
	case PhaseResults:
		// Waits for the next-scene intent.
	}
}

// enter performs the on-exit work of the old phase and the on-enter work
// of the new one.
func (m *Machine) enter(next Phase) {
	prev := m.phase
	if prev == PhaseDecision && next != PhaseSkip {
		m.finalizeStage()
	}

	m.phase = next
	events.Emit("info", "phase.changed", "", map[string]interface{}{
		"from":  prev.String(),
		"to":    next.String(),
		"stage": m.stageIndex,
	})

	switch next {
	case PhaseTransition:
		stage := m.CurrentStage()
		duration := time.Duration(approachDistance / stage.Speed * float64(time.Second))
		m.approach = sim.NewPointToPointMotion(
			sim.Vec2{X: -approachDistance}, sim.Vec2{}, duration, false)
		m.junction = sim.NewPointToPointMotion(
			sim.Vec2{Y: -20}, sim.Vec2{}, junctionSlide, false)
		events.PlaySound(events.SoundTrainApproaching, "")
		events.PlaySound(events.SoundHorn, "")
	case PhaseDecision:
		m.startStage()
	case PhaseConsequence:
		stage := m.CurrentStage()
		chosen := m.chosenOption(stage)
		m.consequence = NewConsequence(stage.OptionFatalities(chosen), m.rng)
		events.Emit("info", "consequence.started", "", map[string]interface{}{
			"stage":      m.stageIndex,
			"option":     chosen,
			"fatalities": stage.OptionFatalities(chosen),
		})
		events.PlaySound(events.SoundSlowMo, "")
		m.pushStage()
	case PhaseSkip:
		m.dilation.Set(skipDilation)
		events.Emit("info", "dilation.changed", "", map[string]interface{}{"value": skipDilation})
		events.PlaySound(events.SoundFastForward, "")
		// Run out the remainder of the approach at fast-forward speed.
		m.skipMotion = sim.NewTimer(2 * time.Second)
	case PhaseResults:
		events.Emit("info", "dilemma.completed", m.def.Name, map[string]interface{}{
			"scene":  m.def.ID.String(),
			"stages": m.scope.Len(m.game.Len()),
		})
	}
}

// startStage arms the countdown, the stats reducer, and the lever for the
// stage at stageIndex. The train is retargeted to cross the junction over
// the full decision window.
func (m *Machine) startStage() {
	stage := m.CurrentStage()
	duration := time.Duration(stage.CountdownSeconds * float64(time.Second))
	m.countdown = NewCountdown(duration, m.pulseTuning)
	m.stage = stats.NewStageStats(stage.CountdownSeconds)
	m.decision = sim.NewPointToPointMotion(
		sim.Vec2{}, sim.Vec2{X: approachDistance}, duration, false)

	m.lever = stats.LeverRandom
	if stage.DefaultOption != nil {
		if lever, err := stats.LeverFromOption(*stage.DefaultOption); err == nil {
			m.lever = lever
		}
	}

	events.Emit("info", "stage.started", "", map[string]interface{}{
		"stage":     m.stageIndex,
		"countdown": stage.CountdownSeconds,
		"options":   len(stage.Options),
	})
	events.Emit("info", "countdown.started", "", map[string]interface{}{
		"stage":   m.stageIndex,
		"seconds": stage.CountdownSeconds,
	})
}

// chosenOption maps the lever to the option slot the train will take. A
// lever still in Random falls to the stage default, or branch 0.
func (m *Machine) chosenOption(stage *Stage) int {
	if idx, ok := m.lever.OptionIndex(); ok {
		if idx >= len(stage.Options) {
			idx = len(stage.Options) - 1
		}
		return idx
	}
	if stage.DefaultOption != nil {
		return *stage.DefaultOption
	}
	return 0
}

// finalizeStage closes out the active stage reducer with the outcome of
// the final lever position.
func (m *Machine) finalizeStage() {
	if m.stage == nil {
		return
	}
	stage := m.CurrentStage()
	chosen := m.chosenOption(stage)
	m.stage.Finalize(stage.OptionFatalities(chosen), m.lever,
		m.countdown.ElapsedSeconds(), m.countdown.DurationSeconds())
	events.Emit("info", "stage.finalized", "", map[string]interface{}{
		"stage":      m.stageIndex,
		"fatalities": stage.OptionFatalities(chosen),
		"decisions":  m.stage.NumDecisions,
	})
}

// pushStage appends the finalized stage to the game stats and resets the
// reducer for the next stage.
func (m *Machine) pushStage() {
	if m.stage == nil {
		return
	}
	m.game.Push(m.stage)
	m.stage.Reset()
	m.stage = nil
}

// PullLever handles a lever intent. Outside the decision phase the input
// is ignored. Every press during the decision counts as a flip, including
// re-presses of the current side.
func (m *Machine) PullLever(side stats.LeverState) {
	if m.phase != PhaseDecision {
		events.Emit("debug", "input.ignored", "", map[string]interface{}{
			"phase": m.phase.String(),
			"lever": side.String(),
		})
		return
	}
	if side != stats.LeverLeft && side != stats.LeverRight {
		return
	}
	if m.stage == nil {
		// A skip already closed the stage out this tick.
		return
	}

	m.lever = side
	m.stage.RecordFlip(side, m.countdown.ElapsedSeconds(), m.countdown.RemainingSeconds())
	events.Emit("info", "lever.flipped", "", map[string]interface{}{
		"lever":     side.String(),
		"stage":     m.stageIndex,
		"remaining": m.countdown.RemainingSeconds(),
	})
	if m.leverSound.TryConsume() {
		events.PlaySound(events.SoundLever, "")
	}
}

// StartPressed advances past the intro. Ignored elsewhere.
func (m *Machine) StartPressed() {
	if m.phase == PhaseIntro {
		m.startPressed = true
	}
}

// NarrationFinished signals the end of the intro narration audio.
func (m *Machine) NarrationFinished() {
	m.narrationDone = true
}

// NextScenePressed leaves the results screen. The scene queue reads Done
// and asks the progression graph for what follows.
func (m *Machine) NextScenePressed() {
	if m.phase == PhaseResults {
		m.done = true
	}
}

// Skip fast-forwards out of the dilemma from any phase. The stage in
// flight is finalized with the lever as it stands; unplayed stages are
// discarded, but the run scope keeps the expected count so downstream
// readers can see the run was cut short.
func (m *Machine) Skip() {
	if m.phase == PhaseSkip || m.phase == PhaseResults {
		return
	}
	events.Emit("info", "operator.skip", "", map[string]interface{}{
		"phase": m.phase.String(),
		"stage": m.stageIndex,
	})
	if m.phase == PhaseDecision {
		m.finalizeStage()
		m.pushStage()
	}
	m.request(PhaseSkip)
}

// RunReport renders the results screen text: one report per played stage
// followed by the run summary.
func (m *Machine) RunReport() string {
	var b strings.Builder
	window := m.game.Window(m.scope)
	for i := range window {
		fmt.Fprintf(&b, "--- Stage %d ---\n", i+1)
		b.WriteString(window[i].Report())
		b.WriteString("\n")
	}
	b.WriteString(m.game.WindowSummary(m.scope).Report())
	return b.String()
}

// Snapshot is a read-only view of the machine for observers.
type Snapshot struct {
	Scene              string  `json:"scene"`
	Phase              string  `json:"phase"`
	Stage              int     `json:"stage"`
	StageCount         int     `json:"stage_count"`
	Lever              string  `json:"lever"`
	CountdownRemaining float64 `json:"countdown_remaining"`
	CountdownDanger    bool    `json:"countdown_danger"`
	Dilation           float64 `json:"dilation"`
	ResultsVisible     bool    `json:"results_visible"`
}

func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Scene:      m.def.ID.String(),
		Phase:      m.phase.String(),
		Stage:      m.stageIndex,
		StageCount: len(m.def.Stages),
		Lever:      m.lever.String(),
		Dilation:   m.dilation.Value(),
	}
	if m.countdown != nil {
		s.CountdownRemaining = m.countdown.RemainingSeconds()
		s.CountdownDanger = m.countdown.Danger()
	}
	if m.consequence != nil {
		s.ResultsVisible = m.consequence.ButtonVisible() && m.phase == PhaseConsequence
	}
	if m.phase == PhaseResults {
		s.ResultsVisible = true
	}
	return s
}
