package stats

import "fmt"

// LeverState is the junction lever position. Random is the uncommitted
// placeholder used before the player's first flip when the stage has no
// configured default; once a flip lands the state stays Left or Right.
type LeverState int

const (
	LeverRandom LeverState = iota
	LeverLeft
	LeverRight
)

func (l LeverState) String() string {
	switch l {
	case LeverLeft:
		return "left"
	case LeverRight:
		return "right"
	default:
		return "random"
	}
}

// OptionIndex maps a committed lever side to its dilemma option slot.
// Random has no slot; callers must resolve it first.
func (l LeverState) OptionIndex() (int, bool) {
	switch l {
	case LeverLeft:
		return 0, true
	case LeverRight:
		return 1, true
	default:
		return 0, false
	}
}

// Opposite returns the other committed side. Random flips to Random.
func (l LeverState) Opposite() LeverState {
	switch l {
	case LeverLeft:
		return LeverRight
	case LeverRight:
		return LeverLeft
	default:
		return LeverRandom
	}
}

// LeverFromOption maps an option slot back to a lever side.
func LeverFromOption(index int) (LeverState, error) {
	switch index {
	case 0:
		return LeverLeft, nil
	case 1:
		return LeverRight, nil
	default:
		return LeverRandom, fmt.Errorf("no lever side for option index %d", index)
	}
}

func (l LeverState) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *LeverState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "left":
		*l = LeverLeft
	case "right":
		*l = LeverRight
	case "random":
		*l = LeverRandom
	default:
		return fmt.Errorf("unknown lever state %q", text)
	}
	return nil
}
