package flow

import (
	"fmt"

	"github.com/FraserHollow/TrolleyEngine/internal/scene"
)

// Graph is the wire form of the campaign progression graph.
type Graph struct {
	Version int     `json:"version"`
	Routes  []Route `json:"routes"`
}

// Route maps one dilemma to its possible continuations. Rules are evaluated
// in declaration order; the first match wins, and DefaultThen is used when
// none match.
type Route struct {
	From        scene.Ref   `json:"from"`
	Rules       []Rule      `json:"rules"`
	DefaultThen []scene.Ref `json:"default"`
}

// Rule fires when every condition in When holds against the evaluation
// context. An empty When always matches.
type Rule struct {
	Name string      `json:"name"`
	When []Condition `json:"when"`
	Then []scene.Ref `json:"then"`
}

// Condition is one predicate over the last stage's statistics and the
// cumulative summary. Value carries the comparison operand for ops that
// take one; Back selects how many stages to look behind for previous_* ops.
type Condition struct {
	Op    string  `json:"op"`
	Value float64 `json:"value,omitempty"`
	Back  int     `json:"back,omitempty"`
}

// The closed set of predicate operators.
const (
	OpFatalitiesGt             = "fatalities_gt"
	OpFatalitiesEq             = "fatalities_eq"
	OpDecisionsGt              = "decisions_gt"
	OpDecisionsEq              = "decisions_eq"
	OpTotalDecisionsGt         = "total_decisions_gt"
	OpTotalDecisionsEq         = "total_decisions_eq"
	OpSelectedOptionEq         = "selected_option_eq"
	OpLastRemainingIsSome      = "last_decision_remaining_is_some"
	OpLastRemainingIsNone      = "last_decision_remaining_is_none"
	OpLastRemainingLtSecs      = "last_decision_remaining_lt_secs"
	OpLastRemainingGteSecs     = "last_decision_remaining_gte_secs"
	OpOverallRemainingIsSome   = "overall_avg_remaining_is_some"
	OpOverallRemainingIsNone   = "overall_avg_remaining_is_none"
	OpOverallRemainingLtSecs   = "overall_avg_remaining_lt_secs"
	OpOverallRemainingGteSecs  = "overall_avg_remaining_gte_secs"
	OpPreviousSelectedOptionEq = "previous_selected_option_eq"
	OpPreviousDecisionsEq      = "previous_decisions_eq"
	OpPreviousDecisionsGt      = "previous_decisions_gt"
)

var knownOps = map[string]struct{}{
	OpFatalitiesGt:             {},
	OpFatalitiesEq:             {},
	OpDecisionsGt:              {},
	OpDecisionsEq:              {},
	OpTotalDecisionsGt:         {},
	OpTotalDecisionsEq:         {},
	OpSelectedOptionEq:         {},
	OpLastRemainingIsSome:      {},
	OpLastRemainingIsNone:      {},
	OpLastRemainingLtSecs:      {},
	OpLastRemainingGteSecs:     {},
	OpOverallRemainingIsSome:   {},
	OpOverallRemainingIsNone:   {},
	OpOverallRemainingLtSecs:   {},
	OpOverallRemainingGteSecs:  {},
	OpPreviousSelectedOptionEq: {},
	OpPreviousDecisionsEq:      {},
	OpPreviousDecisionsGt:      {},
}

// EvalContext is the flattened view of the statistics a rule may read: the
// just-finished stage, the cumulative summary, and the stages before it.
type EvalContext struct {
	NumFatalities       int
	NumDecisions        int
	TotalDecisions      int
	SelectedOption      *int
	LastRemainingSecs   *float64
	OverallAvgRemaining *float64

	// Oldest-last: index 0 is the stage immediately before the current one.
	PreviousSelectedOptions []*int
	PreviousNumDecisions    []int
}

func (ctx *EvalContext) previousSelectedOption(back int) (int, bool) {
	if back <= 0 || back > len(ctx.PreviousSelectedOptions) {
		return 0, false
	}
	p := ctx.PreviousSelectedOptions[back-1]
	if p == nil {
		return 0, false
	}
	return *p, true
}

func (ctx *EvalContext) previousNumDecisions(back int) (int, bool) {
	if back <= 0 || back > len(ctx.PreviousNumDecisions) {
		return 0, false
	}
	return ctx.PreviousNumDecisions[back-1], true
}

// Matches evaluates one condition. Conditions over absent optional values
// are false, except the explicit is_none forms.
func (c Condition) Matches(ctx *EvalContext) bool {
	switch c.Op {
	case OpFatalitiesGt:
		return ctx.NumFatalities > int(c.Value)
	case OpFatalitiesEq:
		return ctx.NumFatalities == int(c.Value)
	case OpDecisionsGt:
		return ctx.NumDecisions > int(c.Value)
	case OpDecisionsEq:
		return ctx.NumDecisions == int(c.Value)
	case OpTotalDecisionsGt:
		return ctx.TotalDecisions > int(c.Value)
	case OpTotalDecisionsEq:
		return ctx.TotalDecisions == int(c.Value)
	case OpSelectedOptionEq:
		return ctx.SelectedOption != nil && *ctx.SelectedOption == int(c.Value)
	case OpLastRemainingIsSome:
		return ctx.LastRemainingSecs != nil
	case OpLastRemainingIsNone:
		return ctx.LastRemainingSecs == nil
	case OpLastRemainingLtSecs:
		return ctx.LastRemainingSecs != nil && *ctx.LastRemainingSecs < c.Value
	case OpLastRemainingGteSecs:
		return ctx.LastRemainingSecs != nil && *ctx.LastRemainingSecs >= c.Value
	case OpOverallRemainingIsSome:
		return ctx.OverallAvgRemaining != nil
	case OpOverallRemainingIsNone:
		return ctx.OverallAvgRemaining == nil
	case OpOverallRemainingLtSecs:
		return ctx.OverallAvgRemaining != nil && *ctx.OverallAvgRemaining < c.Value
	case OpOverallRemainingGteSecs:
		return ctx.OverallAvgRemaining != nil && *ctx.OverallAvgRemaining >= c.Value
	case OpPreviousSelectedOptionEq:
		v, ok := ctx.previousSelectedOption(c.Back)
		return ok && v == int(c.Value)
	case OpPreviousDecisionsEq:
		v, ok := ctx.previousNumDecisions(c.Back)
		return ok && v == int(c.Value)
	case OpPreviousDecisionsGt:
		v, ok := ctx.previousNumDecisions(c.Back)
		return ok && v > int(c.Value)
	default:
		return false
	}
}

// Matches reports whether every condition of the rule holds.
func (r *Rule) Matches(ctx *EvalContext) bool {
	for _, cond := range r.When {
		if !cond.Matches(ctx) {
			return false
		}
	}
	return true
}

// ResolveThen returns the first matching rule's continuation, or
// DefaultThen when no rule fires.
func (r *Route) ResolveThen(ctx *EvalContext) []scene.Ref {
	for i := range r.Rules {
		if r.Rules[i].Matches(ctx) {
			return r.Rules[i].Then
		}
	}
	return r.DefaultThen
}

// MatchingRuleName names the rule that would fire, for event logging.
func (r *Route) MatchingRuleName(ctx *EvalContext) string {
	for i := range r.Rules {
		if r.Rules[i].Matches(ctx) {
			return r.Rules[i].Name
		}
	}
	return "default"
}

func (c Condition) String() string {
	if c.Back > 0 {
		return fmt.Sprintf("%s(back=%d, value=%g)", c.Op, c.Back, c.Value)
	}
	return fmt.Sprintf("%s(%g)", c.Op, c.Value)
}
