package sim

import "time"

// Dilation is the global time scale applied to gameplay timers, animation,
// and audio pitch. 1.0 is real time; the skip phase runs above 1.0.
type Dilation struct {
	value float64
}

func NewDilation() *Dilation {
	return &Dilation{value: 1.0}
}

func (d *Dilation) Value() float64 { return d.value }

func (d *Dilation) Set(v float64) {
	if v < 0 {
		v = 0
	}
	d.value = v
}

// Scale returns dt multiplied by the current dilation.
func (d *Dilation) Scale(dt time.Duration) time.Duration {
	return time.Duration(float64(dt) * d.value)
}

// DilationRamp interpolates the global dilation from its value at ramp start
// to a target over a fixed duration. The ramp always runs in wall-clock time
// so slow motion cannot stall its own recovery.
type DilationRamp struct {
	initial float64
	target  float64
	timer   *Timer
	started bool
}

func NewDilationRamp(target float64, duration time.Duration) *DilationRamp {
	return &DilationRamp{
		target: target,
		timer:  NewTimer(duration),
	}
}

// Tick advances the ramp and writes the interpolated value into dilation.
// Returns true while the ramp is still running.
func (r *DilationRamp) Tick(dt time.Duration, dilation *Dilation) bool {
	if !r.started {
		r.initial = dilation.Value()
		r.started = true
	}
	r.timer.Tick(dt)
	if r.timer.Finished() {
		dilation.Set(r.target)
		return false
	}
	dilation.Set(r.initial + (r.target-r.initial)*r.timer.Fraction())
	return true
}
