package dilemma

import (
	"time"

	"github.com/FraserHollow/TrolleyEngine/internal/sim"
)

// PulseTuning controls the danger pulse of the countdown display.
type PulseTuning struct {
	// DangerRemaining is the remaining time at which the pulse starts.
	DangerRemaining time.Duration
	// SpeedupRemaining is the remaining time at which the pulse interval
	// halves. The speedup is sticky for the rest of the countdown.
	SpeedupRemaining time.Duration
	// Interval is the base pulse interval.
	Interval time.Duration
}

func DefaultPulseTuning() PulseTuning {
	return PulseTuning{
		DangerRemaining:  5 * time.Second,
		SpeedupRemaining: 2 * time.Second,
		Interval:         time.Second,
	}
}

// Countdown is a stage decision timer. It advances in dilated time and
// drives the danger pulse once the remaining window shrinks past the
// tuning thresholds.
type Countdown struct {
	timer  *sim.Timer
	tuning PulseTuning

	pulse       *sim.Timer
	spedUp      bool
	justPulsed  bool
	justExpired bool
}

func NewCountdown(duration time.Duration, tuning PulseTuning) *Countdown {
	if tuning.Interval <= 0 {
		tuning = DefaultPulseTuning()
	}
	return &Countdown{
		timer:  sim.NewTimer(duration),
		tuning: tuning,
		pulse:  sim.NewTimer(tuning.Interval),
	}
}

// Tick advances the countdown by dt scaled through the dilation.
func (c *Countdown) Tick(dt time.Duration, dilation *sim.Dilation) {
	c.justPulsed = false
	c.justExpired = false
	if c.timer.Finished() {
		return
	}

	scaled := dilation.Scale(dt)
	c.timer.Tick(scaled)
	if c.timer.JustFinished() {
		c.justExpired = true
		return
	}

	remaining := c.timer.Remaining()
	if !c.spedUp && remaining <= c.tuning.SpeedupRemaining {
		c.spedUp = true
		c.pulse.Reset(c.tuning.Interval / 2)
	}
	if remaining > c.tuning.DangerRemaining {
		return
	}

	c.pulse.Tick(scaled)
	if c.pulse.JustFinished() {
		c.justPulsed = true
		interval := c.tuning.Interval
		if c.spedUp {
			interval /= 2
		}
		c.pulse.Reset(interval)
	}
}

func (c *Countdown) Remaining() time.Duration { return c.timer.Remaining() }
func (c *Countdown) Elapsed() time.Duration   { return c.timer.Elapsed() }
func (c *Countdown) Duration() time.Duration  { return c.timer.Duration() }
func (c *Countdown) Expired() bool            { return c.timer.Finished() }
func (c *Countdown) JustExpired() bool        { return c.justExpired }
func (c *Countdown) JustPulsed() bool         { return c.justPulsed }

// Danger reports whether the countdown is inside the pulse window.
func (c *Countdown) Danger() bool {
	return !c.timer.Finished() && c.timer.Remaining() <= c.tuning.DangerRemaining
}

// ElapsedSeconds is the dilated time spent so far, as the stats reducer
// consumes it.
func (c *Countdown) ElapsedSeconds() float64 { return c.timer.Elapsed().Seconds() }

// RemainingSeconds is the dilated time left on the clock.
func (c *Countdown) RemainingSeconds() float64 { return c.timer.Remaining().Seconds() }

// DurationSeconds is the full decision window.
func (c *Countdown) DurationSeconds() float64 { return c.timer.Duration().Seconds() }
