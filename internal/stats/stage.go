package stats

// Decision is a single lever flip, recorded in insertion order. Elapsed is
// seconds since the stage countdown started.
type Decision struct {
	Elapsed float64    `json:"elapsed"`
	Choice  LeverState `json:"choice"`
}

// StageStats accumulates the player's behavior during one dilemma stage.
// A zero value is not useful; construct with NewStageStats so the stage
// countdown is captured.
type StageStats struct {
	Decisions             []Decision  `json:"decisions"`
	Result                *LeverState `json:"result,omitempty"`
	DecisionTimeAvailable float64     `json:"decision_time_available"`
	DecisionTimeUsed      float64     `json:"decision_time_used"`
	NumFatalities         int         `json:"num_fatalities"`
	NumDecisions          int         `json:"num_decisions"`

	// Defined only when the divisor is positive; nil rather than NaN.
	AvgDecisionsPerSecond       *float64 `json:"average_num_decisions_per_second,omitempty"`
	DurationBeforeFirstDecision *float64 `json:"duration_before_first_decision,omitempty"`
	DurationRemainingAtLastFlip *float64 `json:"duration_remaining_at_last_decision,omitempty"`
}

// NewStageStats returns zeroed stats with the stage countdown stored.
// Negative countdowns are clamped to zero.
func NewStageStats(decisionTimeAvailable float64) *StageStats {
	if decisionTimeAvailable < 0 {
		decisionTimeAvailable = 0
	}
	return &StageStats{DecisionTimeAvailable: decisionTimeAvailable}
}

// RecordFlip appends one decision. Every press counts, including presses
// that land the lever back on its current side.
func (s *StageStats) RecordFlip(lever LeverState, elapsed, remaining float64) {
	if elapsed < 0 {
		elapsed = 0
	}
	if remaining < 0 {
		remaining = 0
	}

	s.Decisions = append(s.Decisions, Decision{Elapsed: elapsed, Choice: lever})
	s.NumDecisions = len(s.Decisions)

	if s.DurationBeforeFirstDecision == nil {
		first := elapsed
		s.DurationBeforeFirstDecision = &first
	}
	last := remaining
	s.DurationRemainingAtLastFlip = &last
}

// Finalize closes the stage: the chosen option's fatality count, the final
// lever state, and the observed timing are written in, and the pull-rate
// average is derived. Defined only when both numerator and divisor are
// positive.
func (s *StageStats) Finalize(chosenFatalities int, finalLever LeverState, elapsed, duration float64) {
	if chosenFatalities < 0 {
		chosenFatalities = 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if duration < 0 {
		duration = 0
	}
	if elapsed > duration {
		elapsed = duration
	}

	result := finalLever
	s.Result = &result
	s.NumFatalities = chosenFatalities
	s.DecisionTimeAvailable = duration
	s.DecisionTimeUsed = elapsed
	s.NumDecisions = len(s.Decisions)

	if s.NumDecisions > 0 && s.DecisionTimeUsed > 0 {
		avg := float64(s.NumDecisions) / s.DecisionTimeUsed
		s.AvgDecisionsPerSecond = &avg
	} else {
		s.AvgDecisionsPerSecond = nil
	}
}

// Reset clears the record for reuse by the next stage, keeping nothing.
func (s *StageStats) Reset() {
	*s = StageStats{}
}

// Clone returns a deep copy safe to push into the game-wide list while the
// live reducer is reset for the next stage.
func (s *StageStats) Clone() StageStats {
	out := *s
	out.Decisions = append([]Decision(nil), s.Decisions...)
	out.Result = clonePtr(s.Result)
	out.AvgDecisionsPerSecond = clonePtr(s.AvgDecisionsPerSecond)
	out.DurationBeforeFirstDecision = clonePtr(s.DurationBeforeFirstDecision)
	out.DurationRemainingAtLastFlip = clonePtr(s.DurationRemainingAtLastFlip)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
