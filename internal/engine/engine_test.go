package engine

import (
	"testing"
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
)

func TestQueueAdvanceEmptyFallsToMenu(t *testing.T) {
	q := NewSceneQueue()
	for i := 0; i < 3; i++ {
		q.Advance()
	}
	if q.Current() != scene.Dilemma("lab_0.incompetent_bandit") {
		t.Fatalf("boot queue ends on the first dilemma, got %s", q.Current())
	}
	if got := q.Advance(); got != scene.Menu {
		t.Fatalf("empty queue should fall back to menu, got %s", got)
	}
	if got := q.Advance(); got != scene.Menu {
		t.Fatalf("repeated advance on empty stays on menu, got %s", got)
	}
}

func TestQueueReplace(t *testing.T) {
	q := NewSceneQueue()
	q.ConfigureSingleLevel(scene.Dilemma("lab_2.the_trolley_problem"))
	if q.Mode() != FlowSingleLevel {
		t.Fatal("single level mode not set")
	}

	next := []scene.ID{
		scene.Dialogue("lab_1.a.pass"),
		scene.Dialogue("lab_1.b.intro"),
		scene.Dilemma("lab_2.the_trolley_problem"),
	}
	if err := q.Replace(next); err != nil {
		t.Fatal(err)
	}
	if q.Current() != next[0] {
		t.Errorf("replace should move to the first scene, got %s", q.Current())
	}
	if got := q.Future(); len(got) != 2 || got[0] != next[1] || got[1] != next[2] {
		t.Errorf("future = %v", got)
	}
	if q.Mode() != FlowCampaign {
		t.Error("replace should restore campaign mode")
	}

	if err := q.Replace(nil); err == nil {
		t.Fatal("empty replacement must be refused")
	}
}

func TestQueueCurrentKind(t *testing.T) {
	q := NewSceneQueue()
	if q.CurrentKind() != scene.KindMenu {
		t.Fatalf("boot kind = %s", q.CurrentKind())
	}
	q.Advance()
	if q.CurrentKind() != scene.KindLoading {
		t.Fatalf("kind after first advance = %s", q.CurrentKind())
	}
}

func newTestEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	e, err := New(opts)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

// runUntil ticks the engine with an autopilot that presses whatever
// button the current scene is waiting on, until pred holds.
func runUntil(t *testing.T, e *Engine, pred func(Snapshot) bool, limit int) Snapshot {
	t.Helper()
	for i := 0; i < limit; i++ {
		s := e.Snapshot()
		if pred(s) {
			return s
		}
		switch {
		case s.Kind == "menu":
			e.Apply(IntentStart)
		case s.Dilemma != nil && s.Dilemma.Phase == "intro":
			e.Apply(IntentStart)
		case s.Dilemma != nil && s.Dilemma.Phase == "results":
			e.Apply(IntentNext)
		case s.Ending != nil:
			e.Apply(IntentNext)
		}
		e.Tick(50 * time.Millisecond)
	}
	t.Fatalf("condition never reached; stuck at %s (%s)", e.Snapshot().Scene, e.Snapshot().Kind)
	return Snapshot{}
}

func TestEngineIntentsApplyNextTick(t *testing.T) {
	e := newTestEngine(t, Options{})
	if e.Snapshot().Kind != "menu" {
		t.Fatalf("boot scene = %s", e.Snapshot().Kind)
	}
	e.Apply(IntentStart)
	if e.Snapshot().Kind != "menu" {
		t.Fatal("intent must not take effect before a tick")
	}
	e.Tick(time.Millisecond)
	e.Tick(time.Millisecond)
	if got := e.Snapshot().Kind; got != "loading" {
		t.Fatalf("start should advance to loading, got %s", got)
	}
}

func TestEngineBootSequence(t *testing.T) {
	e := newTestEngine(t, Options{})

	s := runUntil(t, e, func(s Snapshot) bool { return s.Kind == "dialogue" }, 200)
	if s.Scene != "dialogue:lab_0.intro" {
		t.Fatalf("first dialogue = %s", s.Scene)
	}
	if s.Dialogue == nil || s.Dialogue.Line == "" {
		t.Fatal("dialogue view missing")
	}

	s = runUntil(t, e, func(s Snapshot) bool { return s.Kind == "dilemma" }, 2000)
	if s.Scene != "dilemma:lab_0.incompetent_bandit" {
		t.Fatalf("first dilemma = %s", s.Scene)
	}
}

func TestEngineDialogueNextSkipsLines(t *testing.T) {
	e := newTestEngine(t, Options{})
	runUntil(t, e, func(s Snapshot) bool { return s.Kind == "dialogue" }, 200)

	// Mash next; the dialogue should finish well before its timers would.
	for i := 0; i < 30 && e.Snapshot().Kind == "dialogue"; i++ {
		e.Apply(IntentNext)
		e.Tick(time.Millisecond)
	}
	if e.Snapshot().Kind == "dialogue" {
		t.Fatal("next intents did not finish the dialogue")
	}
}

func TestEngineCampaignRoutesAfterDilemma(t *testing.T) {
	e := newTestEngine(t, Options{})
	runUntil(t, e, func(s Snapshot) bool {
		return s.Scene == "dilemma:lab_1.near_sighted_bandit"
	}, 5000)
	if got := e.Snapshot().StagesPlayed; got != 1 {
		t.Fatalf("one stage should be recorded after lab_0, got %d", got)
	}
}

func TestEngineSingleLevelReturnsToMenu(t *testing.T) {
	id := scene.Dilemma("lab_2.the_trolley_problem")
	e := newTestEngine(t, Options{SingleLevel: &id})

	runUntil(t, e, func(s Snapshot) bool { return s.Kind == "dilemma" }, 100)
	s := runUntil(t, e, func(s Snapshot) bool {
		return s.Kind == "menu" && s.StagesPlayed > 0
	}, 2000)
	if s.StagesPlayed != 1 {
		t.Fatalf("stages played = %d", s.StagesPlayed)
	}
	if s.Mode != "single_level" {
		t.Fatalf("mode = %s", s.Mode)
	}
}

func TestEngineSkipCutsDilemmaShort(t *testing.T) {
	id := scene.Dilemma("lab_4.random_deaths")
	e := newTestEngine(t, Options{SingleLevel: &id})
	runUntil(t, e, func(s Snapshot) bool {
		return s.Dilemma != nil && s.Dilemma.Phase == "decision"
	}, 500)

	e.Apply(IntentSkip)
	s := runUntil(t, e, func(s Snapshot) bool {
		return s.Dilemma != nil && s.Dilemma.Phase == "results"
	}, 500)
	if s.Dilemma.StageCount != 3 {
		t.Fatalf("stage count = %d", s.Dilemma.StageCount)
	}
	if s.StagesPlayed != 1 {
		t.Fatalf("skip should record only the stage in flight, got %d", s.StagesPlayed)
	}
	if s.Dilation != 1.0 {
		t.Fatalf("dilation after skip = %v", s.Dilation)
	}
}

// Every published frame must pair the scene id with that scene's view. A
// dialogue frame with a nil Dialogue would mean readers caught the engine
// between scenes.
func TestEngineSnapshotNeverBetweenScenes(t *testing.T) {
	e := newTestEngine(t, Options{})
	sawDialogue, sawDilemma := false, false
	for i := 0; i < 3000 && !(sawDialogue && sawDilemma); i++ {
		s := e.Snapshot()
		switch s.Kind {
		case "dialogue":
			sawDialogue = true
			if s.Dialogue == nil {
				t.Fatalf("tick %d: dialogue frame for %s has no dialogue view", s.Tick, s.Scene)
			}
		case "dilemma":
			sawDilemma = true
			if s.Dilemma == nil {
				t.Fatalf("tick %d: dilemma frame for %s has no dilemma view", s.Tick, s.Scene)
			}
		case "ending":
			if s.Ending == nil {
				t.Fatalf("tick %d: ending frame for %s has no ending view", s.Tick, s.Scene)
			}
		}
		switch {
		case s.Kind == "menu":
			e.Apply(IntentStart)
		case s.Dilemma != nil && s.Dilemma.Phase == "intro":
			e.Apply(IntentStart)
		}
		e.Tick(50 * time.Millisecond)
	}
	if !sawDialogue || !sawDilemma {
		t.Fatal("autopilot never reached a dialogue and a dilemma")
	}
}

func TestEngineExitEventNamesOutgoingScene(t *testing.T) {
	events.Clear()
	e := newTestEngine(t, Options{})
	e.Apply(IntentStart)
	e.Tick(time.Millisecond)

	var exited, advancedFrom, advancedNext string
	for _, ev := range events.Snapshot() {
		switch ev.Name {
		case "scene.exited":
			exited, _ = ev.Fields["scene"].(string)
		case "scene.advanced":
			advancedFrom, _ = ev.Fields["from"].(string)
			advancedNext, _ = ev.Fields["next"].(string)
		}
	}
	if exited != "menu" {
		t.Errorf("exit event should name the outgoing scene, got %q", exited)
	}
	if advancedFrom != "menu" || advancedNext != "loading" {
		t.Errorf("advance event = %q -> %q", advancedFrom, advancedNext)
	}
}

func TestEngineReplayResets(t *testing.T) {
	e := newTestEngine(t, Options{})
	runUntil(t, e, func(s Snapshot) bool { return s.StagesPlayed > 0 }, 5000)

	e.Apply(IntentReplay)
	e.Tick(time.Millisecond)
	s := e.Snapshot()
	if s.Kind != "menu" {
		t.Fatalf("replay should return to the menu, got %s", s.Kind)
	}
	if s.StagesPlayed != 0 {
		t.Fatalf("replay should clear stats, got %d stages", s.StagesPlayed)
	}
}
