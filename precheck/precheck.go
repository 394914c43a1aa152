// Package precheck validates that a plant and a specification are suitable
// operands for synthesis before the virtual product is ever built, so a
// malformed pairing fails with a diagnosis instead of producing a confusing
// result — or a panic — deep inside the synthesis DFS.
package precheck

import (
	"fmt"

	"github.com/desrw/monosup/automaton"
)

// Result collects the findings from Check. Errors block synthesis;
// Warnings are advisory and left for the caller to act on.
type Result struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no error-level finding was recorded.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins every error-level finding into a single error, or returns nil
// if there were none.
func (r Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return fmt.Errorf("precheck: %d issue(s): %v", len(r.Errors), r.Errors)
}

// Check validates plant and spec as a synthesis operand pair: that they
// share one N_EVENTS capacity, that both have at least one state, and that
// each operand's Init() lies within its own state space.
func Check(plant, spec automaton.Transitions) Result {
	var r Result

	plantStates := plant.NumStates()
	specStates := spec.NumStates()
	if plantStates == 0 {
		r.Errors = append(r.Errors, "plant automaton has no states")
	}
	if specStates == 0 {
		r.Errors = append(r.Errors, "specification automaton has no states")
	}

	plantCap := plant.Alphabet().Cap()
	specCap := spec.Alphabet().Cap()
	if plantCap != specCap {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"plant and specification were built with different event-id bounds (%d vs %d)", plantCap, specCap))
	}

	if plantStates > 0 && plant.Init() >= plantStates {
		r.Errors = append(r.Errors, fmt.Sprintf("plant Init() %d is out of range [0, %d)", plant.Init(), plantStates))
	}
	if specStates > 0 && spec.Init() >= specStates {
		r.Errors = append(r.Errors, fmt.Sprintf("specification Init() %d is out of range [0, %d)", spec.Init(), specStates))
	}

	if len(r.Errors) == 0 {
		shared := plant.Alphabet().Intersect(spec.Alphabet())
		if !shared.Any() {
			r.Warnings = append(r.Warnings, "plant and specification share no events; synthesis will leave every plant state unconstrained")
		}
	}

	return r
}
