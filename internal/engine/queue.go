package engine

import (
	"fmt"

	"github.com/FraserHollow/TrolleyEngine/internal/scene"
)

// FlowMode selects how the queue refills when a dilemma completes.
type FlowMode int

const (
	// FlowCampaign consults the progression graph after each dilemma.
	FlowCampaign FlowMode = iota
	// FlowSingleLevel plays one dilemma and returns to the menu.
	FlowSingleLevel
)

func (m FlowMode) String() string {
	if m == FlowSingleLevel {
		return "single_level"
	}
	return "campaign"
}

// SceneQueue owns the current scene and the scenes lined up after it.
// Mutations happen between frames only; within a frame readers see one
// consistent state.
type SceneQueue struct {
	current scene.ID
	future  []scene.ID
	mode    FlowMode
}

// NewSceneQueue starts on the menu with the campaign opening queued:
// loading, the introduction dialogue, and the first dilemma.
func NewSceneQueue() *SceneQueue {
	q := &SceneQueue{}
	q.ResetCampaign()
	return q
}

// ResetCampaign restores the fresh-boot queue.
func (q *SceneQueue) ResetCampaign() {
	q.current = scene.Menu
	q.future = []scene.ID{
		scene.Loading,
		scene.Dialogue("lab_0.intro"),
		scene.Dilemma("lab_0.incompetent_bandit"),
	}
	q.mode = FlowCampaign
}

// Advance moves to the next queued scene. An empty queue falls back to
// the menu.
func (q *SceneQueue) Advance() scene.ID {
	if len(q.future) == 0 {
		q.current = scene.Menu
		return q.current
	}
	q.current = q.future[0]
	q.future = q.future[1:]
	return q.current
}

// Replace installs a new run of scenes: the first becomes current, the
// rest are queued. The progression graph guarantees its continuations
// are non-empty; an empty replacement is refused.
func (q *SceneQueue) Replace(scenes []scene.ID) error {
	if len(scenes) == 0 {
		return fmt.Errorf("replace with empty scene list")
	}
	q.current = scenes[0]
	q.future = append([]scene.ID(nil), scenes[1:]...)
	q.mode = FlowCampaign
	return nil
}

// ConfigureSingleLevel queues one dilemma followed by the menu, without
// touching the progression graph afterwards.
func (q *SceneQueue) ConfigureSingleLevel(id scene.ID) {
	q.current = scene.Menu
	q.future = []scene.ID{id, scene.Menu}
	q.mode = FlowSingleLevel
}

func (q *SceneQueue) Current() scene.ID       { return q.current }
func (q *SceneQueue) CurrentKind() scene.Kind { return q.current.Kind }
func (q *SceneQueue) Mode() FlowMode          { return q.mode }

// Peek returns the next queued scene, if any.
func (q *SceneQueue) Peek() (scene.ID, bool) {
	if len(q.future) == 0 {
		return scene.ID{}, false
	}
	return q.future[0], true
}

// Future returns a copy of the queued scenes.
func (q *SceneQueue) Future() []scene.ID {
	return append([]scene.ID(nil), q.future...)
}
