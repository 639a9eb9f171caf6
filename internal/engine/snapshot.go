package engine

import (
	"github.com/FraserHollow/TrolleyEngine/internal/dilemma"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

// DialogueView is the visible slice of a running dialogue.
type DialogueView struct {
	Character string `json:"character"`
	Line      string `json:"line"`
	Index     int    `json:"index"`
	Total     int    `json:"total"`
}

// EndingView is the ending card.
type EndingView struct {
	Title   string `json:"title"`
	Verdict string `json:"verdict"`
	Epitaph string `json:"epitaph"`
}

// Snapshot is the per-frame read model for observers: the API, the
// bridge, and the simulator all read this instead of poking at live
// engine state.
type Snapshot struct {
	Tick         uint64            `json:"tick"`
	Scene        string            `json:"scene"`
	Kind         string            `json:"kind"`
	Mode         string            `json:"mode"`
	Queue        []string          `json:"queue"`
	Dilation     float64           `json:"dilation"`
	StagesPlayed int               `json:"stages_played"`
	Summary      stats.GameSummary `json:"summary"`
	Dilemma      *dilemma.Snapshot `json:"dilemma,omitempty"`
	Dialogue     *DialogueView     `json:"dialogue,omitempty"`
	Ending       *EndingView       `json:"ending,omitempty"`
}

// Snapshot returns the state captured at the end of the last tick. Safe
// from any goroutine.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

func (e *Engine) refreshSnapshot() {
	current := e.queue.Current()
	s := Snapshot{
		Tick:         e.tick,
		Scene:        current.String(),
		Kind:         current.Kind.String(),
		Mode:         e.queue.Mode().String(),
		Dilation:     e.dilation.Value(),
		StagesPlayed: e.game.Len(),
		Summary:      e.game.Summary(),
	}
	for _, id := range e.queue.Future() {
		s.Queue = append(s.Queue, id.String())
	}

	if e.machine != nil {
		snap := e.machine.Snapshot()
		s.Dilemma = &snap
	}
	if e.dialogue != nil {
		if line := e.dialogue.currentLine(); line != nil {
			s.Dialogue = &DialogueView{
				Character: line.Character,
				Line:      line.Dialogue,
				Index:     e.dialogue.line,
				Total:     len(e.dialogue.script.Lines),
			}
		}
	}
	if e.ending != nil {
		s.Ending = &EndingView{
			Title:   e.ending.script.Title,
			Verdict: e.ending.script.Verdict,
			Epitaph: e.ending.script.Epitaph,
		}
	}

	e.mu.Lock()
	e.snapshot = s
	e.mu.Unlock()
}
