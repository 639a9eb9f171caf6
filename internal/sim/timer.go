package sim

import "time"

// Timer is a one-shot countdown advanced by explicit ticks. All "awaits" in
// the engine are timers polled each tick; nothing blocks.
type Timer struct {
	duration     time.Duration
	elapsed      time.Duration
	paused       bool
	justFinished bool
	finishCount  int
}

func NewTimer(duration time.Duration) *Timer {
	if duration < 0 {
		duration = 0
	}
	return &Timer{duration: duration}
}

// NewPausedTimer returns a timer that does not advance until Unpause.
func NewPausedTimer(duration time.Duration) *Timer {
	t := NewTimer(duration)
	t.paused = true
	return t
}

// Tick advances the timer by dt. JustFinished is true only for the tick on
// which the timer crosses its duration.
func (t *Timer) Tick(dt time.Duration) {
	t.justFinished = false
	if t.paused || t.Finished() {
		return
	}
	if dt < 0 {
		dt = 0
	}
	t.elapsed += dt
	if t.elapsed >= t.duration {
		t.elapsed = t.duration
		t.justFinished = true
		t.finishCount++
	}
}

func (t *Timer) Finished() bool          { return t.elapsed >= t.duration }
func (t *Timer) JustFinished() bool      { return t.justFinished }
func (t *Timer) TimesFinished() int      { return t.finishCount }
func (t *Timer) Paused() bool            { return t.paused }
func (t *Timer) Pause()                  { t.paused = true }
func (t *Timer) Unpause()                { t.paused = false }
func (t *Timer) Duration() time.Duration { return t.duration }
func (t *Timer) Elapsed() time.Duration  { return t.elapsed }

func (t *Timer) Remaining() time.Duration {
	if t.elapsed >= t.duration {
		return 0
	}
	return t.duration - t.elapsed
}

// Fraction reports completion in [0, 1]. A zero-duration timer is complete.
func (t *Timer) Fraction() float64 {
	if t.duration <= 0 {
		return 1
	}
	f := float64(t.elapsed) / float64(t.duration)
	if f > 1 {
		return 1
	}
	return f
}

// Reset restarts the timer with a new duration, keeping the pause state.
func (t *Timer) Reset(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	t.duration = duration
	t.elapsed = 0
	t.justFinished = false
}

// StartCondition gates when a conditional timer begins counting.
type StartCondition int

const (
	StartImmediate StartCondition = iota
	StartOnNarrationEnd
)

// ConditionalTimer is a one-shot timer that may wait for the narration to
// finish before starting, and may promote itself to a repeating timer with a
// shorter interval after its first completion.
type ConditionalTimer struct {
	condition      StartCondition
	timer          *Timer
	repeatInterval time.Duration
	timesFinished  int
	justFinished   bool
}

// TimerConfig describes a single conditional timer.
type TimerConfig struct {
	Condition      StartCondition
	Duration       time.Duration
	RepeatInterval time.Duration
}

func NewConditionalTimer(cfg TimerConfig) *ConditionalTimer {
	t := NewTimer(cfg.Duration)
	if cfg.Condition != StartImmediate {
		t.Pause()
	}
	return &ConditionalTimer{
		condition:      cfg.Condition,
		timer:          t,
		repeatInterval: cfg.RepeatInterval,
	}
}

func (c *ConditionalTimer) Tick(dt time.Duration) {
	c.justFinished = false
	c.timer.Tick(dt)
	if c.timer.JustFinished() {
		c.timesFinished++
		c.justFinished = true
		if c.repeatInterval > 0 {
			c.timer.Reset(c.repeatInterval)
		}
	}
}

func (c *ConditionalTimer) JustFinished() bool { return c.justFinished }
func (c *ConditionalTimer) TimesFinished() int { return c.timesFinished }

// NarrationFinished unpauses timers waiting on the narration gate.
func (c *ConditionalTimer) NarrationFinished() {
	if c.condition == StartOnNarrationEnd && c.timer.Paused() {
		c.timer.Unpause()
	}
}

// TimerPallet holds a keyed set of conditional timers ticked together, one
// per scheduled scene event.
type TimerPallet[K comparable] struct {
	timers map[K]*ConditionalTimer
}

func NewTimerPallet[K comparable](configs map[K]TimerConfig) *TimerPallet[K] {
	timers := make(map[K]*ConditionalTimer, len(configs))
	for key, cfg := range configs {
		timers[key] = NewConditionalTimer(cfg)
	}
	return &TimerPallet[K]{timers: timers}
}

func (p *TimerPallet[K]) Tick(dt time.Duration) {
	for _, timer := range p.timers {
		timer.Tick(dt)
	}
}

func (p *TimerPallet[K]) NarrationFinished() {
	for _, timer := range p.timers {
		timer.NarrationFinished()
	}
}

// JustFinished reports whether the keyed timer completed on the last tick.
// Unknown keys report false.
func (p *TimerPallet[K]) JustFinished(key K) bool {
	timer, ok := p.timers[key]
	return ok && timer.JustFinished()
}

func (p *TimerPallet[K]) TimesFinished(key K) int {
	timer, ok := p.timers[key]
	if !ok {
		return 0
	}
	return timer.TimesFinished()
}

// Cooldown gates repeatable actions by wall-clock time, independent of
// dilation. Used to deduplicate transient sounds.
type Cooldown struct {
	interval time.Duration
	elapsed  time.Duration
	armed    bool
}

func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{interval: interval, armed: true}
}

func (c *Cooldown) Tick(dt time.Duration) {
	if c.armed {
		return
	}
	c.elapsed += dt
	if c.elapsed >= c.interval {
		c.armed = true
	}
}

// TryConsume reports whether the action may fire, and if so starts the
// cooldown window.
func (c *Cooldown) TryConsume() bool {
	if !c.armed {
		return false
	}
	c.armed = false
	c.elapsed = 0
	return true
}
