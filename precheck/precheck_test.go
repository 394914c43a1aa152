package precheck

import (
	"testing"

	"github.com/desrw/monosup/automaton"
)

func TestCheckValidPairPasses(t *testing.T) {
	plant := automaton.New(2, 0, []automaton.StateID{0}, 4)
	plant.SetTransition(0, 1, 0)
	spec := automaton.New(1, 0, []automaton.StateID{0}, 4)
	spec.SetTransition(0, 0, 0)

	r := Check(plant, spec)
	if !r.Valid() {
		t.Fatalf("expected a valid pair, got errors %v", r.Errors)
	}
	if r.Err() != nil {
		t.Errorf("expected a nil Err() for a valid pair")
	}
}

func TestCheckFlagsEmptyOperands(t *testing.T) {
	empty := automaton.Empty(4)
	nonEmpty := automaton.New(1, 0, []automaton.StateID{0}, 4)

	r := Check(empty, nonEmpty)
	if r.Valid() {
		t.Errorf("expected an empty plant to invalidate the pair")
	}
	if r.Err() == nil {
		t.Errorf("expected Err() to be non-nil when there are errors")
	}
}

func TestCheckFlagsMismatchedEventBounds(t *testing.T) {
	plant := automaton.New(1, 0, []automaton.StateID{0}, 4)
	spec := automaton.New(1, 0, []automaton.StateID{0}, 8)

	r := Check(plant, spec)
	if r.Valid() {
		t.Errorf("expected mismatched event-id bounds to invalidate the pair")
	}
}

func TestCheckWarnsOnDisjointAlphabets(t *testing.T) {
	plant := automaton.New(1, 0, []automaton.StateID{0}, 4)
	plant.SetTransition(0, 0, 0)
	spec := automaton.New(1, 0, []automaton.StateID{0}, 4)
	spec.SetTransition(0, 0, 1)

	r := Check(plant, spec)
	if !r.Valid() {
		t.Fatalf("disjoint alphabets should only warn, not invalidate")
	}
	if len(r.Warnings) == 0 {
		t.Errorf("expected a warning for disjoint alphabets")
	}
}
