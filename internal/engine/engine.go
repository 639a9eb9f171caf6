package engine

import (
	"sync"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/dilemma"
	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/flow"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/sim"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

// IntentKind is a player or operator input captured for the next tick.
type IntentKind int

const (
	IntentStart IntentKind = iota
	IntentNext
	IntentLeverLeft
	IntentLeverRight
	IntentSkip
	IntentNarrationDone
	IntentReplay
)

func (k IntentKind) String() string {
	switch k {
	case IntentStart:
		return "start"
	case IntentNext:
		return "next"
	case IntentLeverLeft:
		return "lever_left"
	case IntentLeverRight:
		return "lever_right"
	case IntentSkip:
		return "skip"
	case IntentNarrationDone:
		return "narration_done"
	case IntentReplay:
		return "replay"
	}
	return "unknown"
}

// Options configures a new engine.
type Options struct {
	Seed        uint64
	PulseTuning dilemma.PulseTuning
	// SingleLevel plays one dilemma instead of the campaign.
	SingleLevel *scene.ID
}

// Engine owns the shared game resources and drives one scene at a time.
// Apply may be called from any goroutine; everything else happens on the
// tick loop. Intents land on the tick after they arrive. When a scene
// finishes, its replacement is entered before that frame's snapshot is
// published, so observers never see a scene id without its view; the new
// driver first ticks on the following frame.
type Engine struct {
	queue    *SceneQueue
	game     *stats.GameStats
	dilation *sim.Dilation
	rng      *sim.RNG
	graph    *flow.Graph
	tuning   dilemma.PulseTuning

	machine  *dilemma.Machine
	dialogue *dialogueDriver
	ending   *endingDriver
	loading  *sim.Timer

	entered bool
	tick    uint64

	mu       sync.Mutex
	intents  []IntentKind
	snapshot Snapshot
}

func New(opts Options) (*Engine, error) {
	graph, err := flow.Campaign()
	if err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = sim.DefaultSeed
	}
	tuning := opts.PulseTuning
	if tuning.Interval <= 0 {
		tuning = dilemma.DefaultPulseTuning()
	}

	e := &Engine{
		queue:    NewSceneQueue(),
		game:     stats.NewGameStats(),
		dilation: sim.NewDilation(),
		rng:      sim.NewRNG(seed),
		graph:    graph,
		tuning:   tuning,
	}
	if opts.SingleLevel != nil {
		e.queue.ConfigureSingleLevel(*opts.SingleLevel)
	}
	e.refreshSnapshot()
	return e, nil
}

// Apply queues an input intent for the next tick.
func (e *Engine) Apply(intent IntentKind) {
	e.mu.Lock()
	e.intents = append(e.intents, intent)
	e.mu.Unlock()
}

// GameStats exposes the cumulative run statistics.
func (e *Engine) GameStats() *stats.GameStats { return e.game }

// Queue exposes the scene queue. Tick-loop use only.
func (e *Engine) Queue() *SceneQueue { return e.queue }

// Tick advances the whole game by one frame: drain intents, enter a
// pending scene, run the active driver, then mutate the queue if the
// driver finished.
func (e *Engine) Tick(dt time.Duration) {
	e.tick++

	e.mu.Lock()
	intents := e.intents
	e.intents = nil
	e.mu.Unlock()

	if !e.entered {
		e.enterScene()
	}

	for _, intent := range intents {
		e.dispatch(intent)
	}

	e.tickScene(dt)
	e.settleScene()
	if !e.entered {
		e.enterScene()
	}
	e.refreshSnapshot()
}

// enterScene sets up the driver for the queue's current scene. Content
// failures are surfaced as system errors and the scene is skipped; the
// campaign catalog is verified at startup so this only fires for
// operator-injected scenes.
func (e *Engine) enterScene() {
	id := e.queue.Current()
	var err error

	switch id.Kind {
	case scene.KindMenu:
		// Idle until a start intent.
	case scene.KindLoading:
		e.loading = sim.NewTimer(loadingDuration)
	case scene.KindDialogue:
		e.dialogue, err = newDialogueDriver(id)
	case scene.KindDilemma:
		e.machine, err = dilemma.NewMachine(id, e.game, e.dilation, e.rng, e.tuning)
	case scene.KindEnding:
		e.ending, err = newEndingDriver(id)
	}
	if err != nil {
		events.Emit("error", "system.error", err.Error(), map[string]interface{}{
			"scene": id.String(),
		})
		e.queue.Advance()
		return
	}

	e.entered = true
	events.Emit("info", "scene.entered", "", map[string]interface{}{
		"scene": id.String(),
		"kind":  id.Kind.String(),
	})
}

func (e *Engine) dispatch(intent IntentKind) {
	switch intent {
	case IntentReplay:
		events.Emit("info", "operator.replay", "", nil)
		e.reset()
		return
	case IntentSkip:
		if e.machine != nil && e.queue.CurrentKind() == scene.KindDilemma {
			e.machine.Skip()
		}
		return
	}

	switch e.queue.CurrentKind() {
	case scene.KindMenu:
		if intent == IntentStart {
			events.Emit("info", "operator.start", "", nil)
			events.PlaySound(events.SoundClick, "")
			e.exitScene()
		}
	case scene.KindDialogue:
		if intent == IntentNext && e.dialogue != nil {
			e.dialogue.next()
		}
	case scene.KindDilemma:
		if e.machine == nil {
			return
		}
		switch intent {
		case IntentStart:
			e.machine.StartPressed()
		case IntentLeverLeft:
			e.machine.PullLever(stats.LeverLeft)
		case IntentLeverRight:
			e.machine.PullLever(stats.LeverRight)
		case IntentNext:
			e.machine.NextScenePressed()
		case IntentNarrationDone:
			e.machine.NarrationFinished()
		}
	case scene.KindEnding:
		if intent == IntentNext && e.ending != nil {
			e.ending.next()
		}
	}
}

func (e *Engine) tickScene(dt time.Duration) {
	if !e.entered {
		return
	}
	switch e.queue.CurrentKind() {
	case scene.KindLoading:
		e.loading.Tick(dt)
	case scene.KindDialogue:
		e.dialogue.tick(dt, e.dilation)
	case scene.KindDilemma:
		e.machine.Tick(dt)
	}
}

// settleScene checks whether the active driver finished and, if so,
// mutates the queue. Tick enters the replacement before publishing the
// frame's snapshot.
func (e *Engine) settleScene() {
	if !e.entered {
		return
	}
	switch e.queue.CurrentKind() {
	case scene.KindLoading:
		if e.loading.Finished() {
			e.exitScene()
		}
	case scene.KindDialogue:
		if e.dialogue.done {
			e.exitScene()
		}
	case scene.KindDilemma:
		if e.machine.Done() {
			e.completeDilemma()
		}
	case scene.KindEnding:
		if e.ending.done {
			e.exitScene()
		}
	}
}

// completeDilemma routes a finished dilemma through the progression
// graph in campaign mode, or straight down the queue otherwise.
func (e *Engine) completeDilemma() {
	current := e.queue.Current()

	if e.queue.Mode() == FlowSingleLevel {
		e.exitScene()
		return
	}

	next, rule, ok := e.graph.NextScenes(current, e.game)
	if !ok {
		e.exitScene()
		return
	}
	e.exitCurrent(current)
	if err := e.queue.Replace(next); err != nil {
		events.Emit("error", "system.error", err.Error(), nil)
		e.queue.Advance()
		return
	}
	names := make([]string, len(next))
	for i, id := range next {
		names[i] = id.String()
	}
	events.Emit("info", "scene.replaced", "", map[string]interface{}{
		"from":  current.String(),
		"rule":  rule,
		"queue": names,
	})
}

// exitScene tears down the current driver, then advances the queue. The
// exit event must name the outgoing scene, so the id is captured before
// the queue moves.
func (e *Engine) exitScene() {
	from := e.queue.Current()
	e.exitCurrent(from)
	next := e.queue.Advance()
	events.Emit("info", "scene.advanced", "", map[string]interface{}{
		"from": from.String(),
		"next": next.String(),
	})
}

func (e *Engine) exitCurrent(id scene.ID) {
	events.Emit("info", "scene.exited", "", map[string]interface{}{
		"scene": id.String(),
	})
	e.machine = nil
	e.dialogue = nil
	e.ending = nil
	e.loading = nil
	e.entered = false
}

// reset returns the whole game to the boot state, keeping the rng so
// replays differ.
func (e *Engine) reset() {
	e.exitCurrent(e.queue.Current())
	e.queue.ResetCampaign()
	e.game = stats.NewGameStats()
	e.dilation.Set(1.0)
}
