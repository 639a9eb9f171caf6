package sim

import "time"

// PointToPointMotion moves an entity between two positions over a fixed
// duration. The dilemma transition drives the train and junction with these;
// the Decision phase begins once every scripted motion has finished.
type PointToPointMotion struct {
	Initial Vec2
	Final   Vec2
	Timer   *Timer
}

func NewPointToPointMotion(initial, final Vec2, duration time.Duration, paused bool) *PointToPointMotion {
	timer := NewTimer(duration)
	if paused {
		timer.Pause()
	}
	return &PointToPointMotion{
		Initial: initial,
		Final:   final,
		Timer:   timer,
	}
}

func (m *PointToPointMotion) Start() { m.Timer.Unpause() }

func (m *PointToPointMotion) Tick(dt time.Duration) {
	m.Timer.Tick(dt)
}

func (m *PointToPointMotion) Finished() bool { return m.Timer.Finished() }

// Position returns the interpolated position for the current timer fraction.
func (m *PointToPointMotion) Position() Vec2 {
	f := m.Timer.Fraction()
	return Vec2{
		X: m.Initial.X + (m.Final.X-m.Initial.X)*f,
		Y: m.Initial.Y + (m.Final.Y-m.Initial.Y)*f,
	}
}

// Retarget restarts the motion from its final position toward a new one.
func (m *PointToPointMotion) Retarget(final Vec2, duration time.Duration) {
	m.Initial = m.Final
	m.Final = final
	m.Timer = NewTimer(duration)
}
