package stats

// RunScope is a window over the game-wide stats list identifying the stages
// of one multi-stage dilemma: [StartIndex, StartIndex+ExpectedStages).
type RunScope struct {
	StartIndex     int `json:"start_index"`
	ExpectedStages int `json:"expected_stage_count"`
}

// NewRunScope builds a window. Negative inputs are clamped to zero.
func NewRunScope(startIndex, expectedStages int) RunScope {
	if startIndex < 0 {
		startIndex = 0
	}
	if expectedStages < 0 {
		expectedStages = 0
	}
	return RunScope{StartIndex: startIndex, ExpectedStages: expectedStages}
}

// Range clamps the window to the available stats length and returns the
// half-open slice bounds. Windows past the end collapse to an empty range
// at the list tail.
func (r RunScope) Range(total int) (start, end int) {
	if total < 0 {
		total = 0
	}
	start = r.StartIndex
	if start > total {
		start = total
	}
	end = r.StartIndex + r.ExpectedStages
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}
	return start, end
}

// Len reports how many stage records the clamped window actually covers.
func (r RunScope) Len(total int) int {
	start, end := r.Range(total)
	return end - start
}
