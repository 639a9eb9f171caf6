package flow

import (
	"fmt"

	"github.com/FraserHollow/TrolleyEngine/internal/scene"
)

// Validate checks the whole graph and returns every problem found rather
// than stopping at the first, so a broken campaign file is fixable in one
// round trip.
func Validate(g *Graph) []error {
	var errs []error
	sources := make(map[scene.Ref]struct{})

	for ri := range g.Routes {
		route := &g.Routes[ri]
		if _, dup := sources[route.From]; dup {
			errs = append(errs, fmt.Errorf("duplicate route source %s %q", route.From.Kind, route.From.Name))
		}
		sources[route.From] = struct{}{}
		errs = append(errs, validateRoute(route, ri)...)
	}
	return errs
}

func validateRoute(route *Route, ri int) []error {
	var errs []error

	from, err := route.From.Resolve()
	if err != nil {
		errs = append(errs, fmt.Errorf("routes[%d].from: %w", ri, err))
	} else if from.Kind != scene.KindDilemma {
		errs = append(errs, fmt.Errorf("routes[%d]: source %s is not a dilemma", ri, from))
	}

	if len(route.DefaultThen) == 0 {
		errs = append(errs, fmt.Errorf("routes[%d] (%s): empty default continuation", ri, route.From.Name))
	}
	for di, ref := range route.DefaultThen {
		if _, err := ref.Resolve(); err != nil {
			errs = append(errs, fmt.Errorf("routes[%d].default[%d]: %w", ri, di, err))
		}
	}

	names := make(map[string]struct{})
	for rui, rule := range route.Rules {
		if _, dup := names[rule.Name]; dup {
			errs = append(errs, fmt.Errorf("routes[%d] (%s): duplicate rule name %q", ri, route.From.Name, rule.Name))
		}
		names[rule.Name] = struct{}{}

		if len(rule.Then) == 0 {
			errs = append(errs, fmt.Errorf("routes[%d].rules[%d] (%s): empty continuation", ri, rui, rule.Name))
		}
		for ci, cond := range rule.When {
			if _, ok := knownOps[cond.Op]; !ok {
				errs = append(errs, fmt.Errorf("routes[%d].rules[%d].when[%d]: unknown op %q", ri, rui, ci, cond.Op))
			}
		}
		for ti, ref := range rule.Then {
			if _, err := ref.Resolve(); err != nil {
				errs = append(errs, fmt.Errorf("routes[%d].rules[%d].then[%d]: %w", ri, rui, ti, err))
			}
		}
	}
	return errs
}
