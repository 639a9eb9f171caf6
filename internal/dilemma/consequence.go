package dilemma

import (
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/sim"
)

// Consequence phase schedule. The pallet runs on wall time; only the
// physical motion below is dilated, so slow motion stretches the impact
// without delaying the audio cues around it.
const (
	screamDelay        = 1 * time.Second
	speedupDelay       = 3 * time.Second
	resultsButtonDelay = 4500 * time.Millisecond

	slowmoTarget       = 0.1
	slowmoRampDuration = 1 * time.Second
	recoveryDuration   = 1057 * time.Millisecond

	trainSpeed    = 100.0
	victimKick    = 20.0
	bloodChance   = 0.5
	victimSpacing = 6.0
)

type consequenceEvent int

const (
	eventScream consequenceEvent = iota
	eventSpeedup
	eventButton
)

// Glyph is one character cell of a victim's body art.
type Glyph struct {
	Offset   sim.Vec2
	Char     rune
	Bloodied bool
}

// Victim is a person on the active track. Before impact it stands still;
// after impact it becomes a ballistic fragment.
type Victim struct {
	Position sim.Vec2
	Velocity sim.Vec2
	Spin     float64
	Angle    float64
	Exploded bool
	Glyphs   []Glyph
}

func (v *Victim) box() sim.AABB {
	return sim.NewAABB(v.Position, sim.Vec2{X: 1, Y: 1.5})
}

var victimArt = []rune{'o', '|', '/', '\\', 'Λ'}

func newVictim(position sim.Vec2) *Victim {
	v := &Victim{Position: position}
	offsets := []sim.Vec2{
		{X: 0, Y: 1},
		{X: 0, Y: 0},
		{X: -0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
		{X: 0, Y: -1},
	}
	for i, ch := range victimArt {
		v.Glyphs = append(v.Glyphs, Glyph{Offset: offsets[i], Char: ch})
	}
	return v
}

// Consequence drives the aftermath of a decision: the train accelerates
// into the chosen branch, victims on it are struck, time dilates around
// the impact, and the results button appears once the dust settles.
type Consequence struct {
	pallet *sim.TimerPallet[consequenceEvent]
	ramp   *sim.DilationRamp

	train         sim.AABB
	trainVelocity sim.Vec2
	victims       []*Victim

	fatalities int
	rng        *sim.RNG

	impacts       int
	buttonVisible bool
	screamJust    bool
	speedupJust   bool
	buttonJust    bool
}

// NewConsequence spawns the aftermath for the chosen option. fatalities
// victims are placed on the track ahead of the train.
func NewConsequence(fatalities int, rng *sim.RNG) *Consequence {
	c := &Consequence{
		pallet: sim.NewTimerPallet(map[consequenceEvent]sim.TimerConfig{
			eventScream:  {Duration: screamDelay},
			eventSpeedup: {Duration: speedupDelay},
			eventButton:  {Duration: resultsButtonDelay},
		}),
		ramp:          sim.NewDilationRamp(slowmoTarget, slowmoRampDuration),
		train:         sim.NewAABB(sim.Vec2{}, sim.Vec2{X: 8, Y: 2}),
		trainVelocity: sim.Vec2{X: trainSpeed},
		fatalities:    fatalities,
		rng:           rng,
	}
	for i := 0; i < fatalities; i++ {
		jitter := rng.FloatBetween(-1, 1)
		c.victims = append(c.victims, newVictim(sim.Vec2{
			X: 20 + float64(i)*victimSpacing,
			Y: jitter,
		}))
	}
	return c
}

// Tick advances the aftermath by one frame. dt is wall time; motion is
// scaled through the dilation.
func (c *Consequence) Tick(dt time.Duration, dilation *sim.Dilation) {
	c.impacts = 0
	c.screamJust = false
	c.speedupJust = false
	c.buttonJust = false

	if c.ramp != nil && !c.ramp.Tick(dt, dilation) {
		c.ramp = nil
	}

	c.pallet.Tick(dt)
	if c.pallet.JustFinished(eventScream) && c.fatalities > 0 {
		c.screamJust = true
	}
	if c.pallet.JustFinished(eventSpeedup) {
		c.speedupJust = true
		c.ramp = sim.NewDilationRamp(1.0, recoveryDuration)
	}
	if c.pallet.JustFinished(eventButton) {
		c.buttonJust = true
		c.buttonVisible = true
	}

	step := dt.Seconds() * dilation.Value()
	c.train = c.train.Translate(c.trainVelocity.Scale(step))

	for _, v := range c.victims {
		if v.Exploded {
			v.Position = v.Position.Add(v.Velocity.Scale(step))
			v.Angle += v.Spin * step
			continue
		}
		if c.train.Overlaps(v.box()) {
			c.explode(v)
			c.impacts++
		}
	}
}

// explode converts a standing victim into a fragment: it inherits the
// train's velocity plus a random kick, and its glyphs are stained.
func (c *Consequence) explode(v *Victim) {
	kx, ky, kz := c.rng.UnitSphere()
	v.Exploded = true
	v.Velocity = c.trainVelocity.Add(sim.Vec2{X: kx, Y: ky}.Scale(victimKick))
	v.Spin = kz * 10
	for i := range v.Glyphs {
		if c.rng.Chance(bloodChance) {
			v.Glyphs[i].Bloodied = true
		}
	}
}

// Impacts reports how many victims were struck on the last tick.
func (c *Consequence) Impacts() int { return c.impacts }

// ScreamJustFired is true on the tick the scream cue fires. It never
// fires for a bloodless outcome.
func (c *Consequence) ScreamJustFired() bool { return c.screamJust }

// SpeedupJustFired is true on the tick slow motion starts recovering.
func (c *Consequence) SpeedupJustFired() bool { return c.speedupJust }

// ButtonJustShown is true on the tick the results button appears.
func (c *Consequence) ButtonJustShown() bool { return c.buttonJust }

// ButtonVisible reports whether the results button is on screen.
func (c *Consequence) ButtonVisible() bool { return c.buttonVisible }

// Fatalities is the fatality count of the resolved option.
func (c *Consequence) Fatalities() int { return c.fatalities }

// TrainPosition is the train's current center.
func (c *Consequence) TrainPosition() sim.Vec2 { return c.train.Center() }

// Victims exposes the victim slice for rendering and inspection.
func (c *Consequence) Victims() []*Victim { return c.victims }
