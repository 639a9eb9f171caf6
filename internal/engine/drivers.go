package engine

import (
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/events"
	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/sim"
)

// loadingDuration is how long the loading scene lingers before the
// campaign proper starts.
const loadingDuration = 1200 * time.Millisecond

// lineDuration scales a dialogue line's on-screen time with its length,
// approximating the narration pace.
func lineDuration(line scene.DialogueLine) time.Duration {
	base := 1500 * time.Millisecond
	perRune := 45 * time.Millisecond
	return base + time.Duration(len([]rune(line.Dialogue)))*perRune
}

// dialogueDriver plays a dialogue script line by line. Lines advance on
// their own timer or early on a next intent; the scene is done when the
// last line has played.
type dialogueDriver struct {
	id     scene.ID
	script *scene.DialogueScript
	line   int
	timer  *sim.Timer
	done   bool
}

func newDialogueDriver(id scene.ID) (*dialogueDriver, error) {
	script, err := scene.LoadDialogue(id)
	if err != nil {
		return nil, err
	}
	events.PlaySound(events.SoundMusic, script.MusicPath)
	return &dialogueDriver{
		id:     id,
		script: script,
		timer:  sim.NewTimer(lineDuration(script.Lines[0])),
	}, nil
}

func (d *dialogueDriver) tick(dt time.Duration, dilation *sim.Dilation) {
	if d.done {
		return
	}
	d.timer.Tick(dilation.Scale(dt))
	if d.timer.JustFinished() {
		d.advanceLine()
	}
}

func (d *dialogueDriver) next() {
	if !d.done {
		events.PlaySound(events.SoundClick, "")
		d.advanceLine()
	}
}

func (d *dialogueDriver) advanceLine() {
	d.line++
	if d.line >= len(d.script.Lines) {
		d.done = true
		return
	}
	d.timer.Reset(lineDuration(d.script.Lines[d.line]))
}

func (d *dialogueDriver) currentLine() *scene.DialogueLine {
	if d.done {
		return nil
	}
	return &d.script.Lines[d.line]
}

// endingDriver shows an ending card until the player moves on.
type endingDriver struct {
	id     scene.ID
	script *scene.EndingScript
	done   bool
}

func newEndingDriver(id scene.ID) (*endingDriver, error) {
	script, err := scene.LoadEnding(id)
	if err != nil {
		return nil, err
	}
	events.PlaySound(events.SoundMusic, script.MusicPath)
	return &endingDriver{id: id, script: script}, nil
}

func (e *endingDriver) next() {
	if !e.done {
		events.PlaySound(events.SoundClick, "")
		e.done = true
	}
}
