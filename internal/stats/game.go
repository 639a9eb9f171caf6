package stats

// GameSummary is the fold over a slice of finalized stage records. Means
// over optional fields only count entries where the field is defined, so an
// all-undefined column yields nil instead of NaN.
type GameSummary struct {
	NumDilemmas     int     `json:"num_dilemmas"`
	TotalFatalities int     `json:"total_fatalities"`
	TotalDecisions  int     `json:"total_decisions"`
	MeanFatalities  float64 `json:"mean_fatalities"`
	MeanDecisions   float64 `json:"mean_decisions"`

	AvgDecisionsPerSecond      *float64 `json:"avg_decisions_per_second,omitempty"`
	AvgDurationBeforeFirstFlip *float64 `json:"avg_duration_before_first_decision,omitempty"`
	AvgDurationRemainingAtLast *float64 `json:"avg_duration_remaining_at_last_decision,omitempty"`
}

// AggregateRun folds a slice of stage records into a summary. An empty slice
// returns the zeroed summary; no division happens when a divisor would be
// zero.
func AggregateRun(stages []StageStats) GameSummary {
	var out GameSummary
	out.NumDilemmas = len(stages)
	if out.NumDilemmas == 0 {
		return out
	}

	var (
		rateSum, rateN   float64
		firstSum, firstN float64
		lastSum, lastN   float64
	)
	for i := range stages {
		s := &stages[i]
		out.TotalFatalities += s.NumFatalities
		out.TotalDecisions += s.NumDecisions
		if s.AvgDecisionsPerSecond != nil {
			rateSum += *s.AvgDecisionsPerSecond
			rateN++
		}
		if s.DurationBeforeFirstDecision != nil {
			firstSum += *s.DurationBeforeFirstDecision
			firstN++
		}
		if s.DurationRemainingAtLastFlip != nil {
			lastSum += *s.DurationRemainingAtLastFlip
			lastN++
		}
	}

	n := float64(out.NumDilemmas)
	out.MeanFatalities = float64(out.TotalFatalities) / n
	out.MeanDecisions = float64(out.TotalDecisions) / n

	if rateN > 0 {
		v := rateSum / rateN
		out.AvgDecisionsPerSecond = &v
	}
	if firstN > 0 {
		v := firstSum / firstN
		out.AvgDurationBeforeFirstFlip = &v
	}
	if lastN > 0 {
		v := lastSum / lastN
		out.AvgDurationRemainingAtLast = &v
	}
	return out
}

// GameStats is the append-only game-wide statistics list plus its cached
// summary, recomputed on every push.
type GameStats struct {
	stages  []StageStats
	summary GameSummary
}

func NewGameStats() *GameStats {
	return &GameStats{}
}

// Push appends a finalized stage record and refreshes the cached summary.
// The record is deep-copied so the caller can reset its reducer.
func (g *GameStats) Push(s *StageStats) {
	g.stages = append(g.stages, s.Clone())
	g.summary = AggregateRun(g.stages)
}

// Len reports how many stage records have been pushed.
func (g *GameStats) Len() int { return len(g.stages) }

// Last returns the most recently pushed record, or nil before any push.
func (g *GameStats) Last() *StageStats {
	if len(g.stages) == 0 {
		return nil
	}
	return &g.stages[len(g.stages)-1]
}

// At returns the record at index i, or nil when out of range.
func (g *GameStats) At(i int) *StageStats {
	if i < 0 || i >= len(g.stages) {
		return nil
	}
	return &g.stages[i]
}

// Summary returns the cached fold over every pushed record.
func (g *GameStats) Summary() GameSummary { return g.summary }

// Window returns the records inside a clamped run scope. The returned slice
// aliases the internal list and must be treated as read-only.
func (g *GameStats) Window(scope RunScope) []StageStats {
	start, end := scope.Range(len(g.stages))
	return g.stages[start:end]
}

// WindowSummary folds only the records inside the clamped scope.
func (g *GameStats) WindowSummary(scope RunScope) GameSummary {
	return AggregateRun(g.Window(scope))
}

// All returns every pushed record, read-only.
func (g *GameStats) All() []StageStats { return g.stages }
