package flow

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/FraserHollow/TrolleyEngine/internal/scene"
	"github.com/FraserHollow/TrolleyEngine/internal/stats"
)

//go:embed content/campaign_graph.json
var campaignGraphJSON []byte

var (
	campaignOnce sync.Once
	campaign     *Graph
	campaignErr  error
)

// Campaign returns the compiled-in progression graph, parsed and validated
// exactly once. Validation failure is fatal to gameplay; the caller decides
// whether to abort or fall back to a single-level mode.
func Campaign() (*Graph, error) {
	campaignOnce.Do(func() {
		campaign, campaignErr = Load(campaignGraphJSON)
	})
	return campaign, campaignErr
}

// Load parses and validates a graph from raw JSON. All validation errors
// are reported together via errors.Join.
func Load(data []byte) (*Graph, error) {
	var g Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parse campaign graph: %w", err)
	}
	if errs := Validate(&g); len(errs) > 0 {
		return nil, fmt.Errorf("campaign graph failed validation with %d error(s): %w",
			len(errs), errors.Join(errs...))
	}
	return &g, nil
}

// RouteFor finds the route whose source is the given dilemma.
func (g *Graph) RouteFor(current scene.ID) (*Route, bool) {
	if current.Kind != scene.KindDilemma {
		return nil, false
	}
	for i := range g.Routes {
		from, err := g.Routes[i].From.Resolve()
		if err == nil && from == current {
			return &g.Routes[i], true
		}
	}
	return nil, false
}

// ContextFrom flattens the game-wide statistics into the view rules read:
// the latest stage record plus lookback history. A run with no records
// yields the zero context, which only default rules should ever see.
func ContextFrom(game *stats.GameStats) *EvalContext {
	ctx := &EvalContext{}
	if game == nil || game.Len() == 0 {
		return ctx
	}

	last := game.Last()
	ctx.NumFatalities = last.NumFatalities
	ctx.NumDecisions = last.NumDecisions
	ctx.LastRemainingSecs = last.DurationRemainingAtLastFlip
	if last.Result != nil {
		if idx, ok := last.Result.OptionIndex(); ok {
			ctx.SelectedOption = &idx
		}
	}

	summary := game.Summary()
	ctx.TotalDecisions = summary.TotalDecisions
	ctx.OverallAvgRemaining = summary.AvgDurationRemainingAtLast

	// History runs newest-first so back=1 is the stage before the last.
	for i := game.Len() - 2; i >= 0; i-- {
		prev := game.At(i)
		ctx.PreviousNumDecisions = append(ctx.PreviousNumDecisions, prev.NumDecisions)
		var selected *int
		if prev.Result != nil {
			if idx, ok := prev.Result.OptionIndex(); ok {
				selected = &idx
			}
		}
		ctx.PreviousSelectedOptions = append(ctx.PreviousSelectedOptions, selected)
	}
	return ctx
}

// NextScenes resolves the continuation for the just-finished dilemma. The
// returned rule name identifies which branch fired, for telemetry. A false
// second return means the graph has no route for the scene.
func (g *Graph) NextScenes(current scene.ID, game *stats.GameStats) ([]scene.ID, string, bool) {
	route, ok := g.RouteFor(current)
	if !ok {
		return nil, "", false
	}

	ctx := ContextFrom(game)
	rule := route.MatchingRuleName(ctx)

	refs := route.ResolveThen(ctx)
	out := make([]scene.ID, 0, len(refs))
	for _, ref := range refs {
		// Validation guarantees these resolve; a failure here is a bug.
		id, err := ref.Resolve()
		if err != nil {
			return nil, "", false
		}
		out = append(out, id)
	}
	return out, rule, true
}
