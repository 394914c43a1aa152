// Package monosup computes the monolithic Ramadge-Wonham supervisor for a
// plant and a specification automaton: the largest controllable,
// nonblocking sublanguage of the specification, expressed as a trimmed
// concrete automaton. It wires together eventset, automaton, product,
// reduce, synth and materialize into the small entry-point surface callers
// actually need, running precheck.Check ahead of synthesis so a malformed
// operand pair fails with a diagnosis rather than deep inside the DFS.
package monosup

import (
	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/eventset"
	"github.com/desrw/monosup/materialize"
	"github.com/desrw/monosup/precheck"
	"github.com/desrw/monosup/product"
	"github.com/desrw/monosup/reduce"
	"github.com/desrw/monosup/synth"
)

// MakeAutomaton builds a concrete automaton with nStates states, an
// initial state, a marked set and room for nEvents distinct events. It
// panics if init or any marked id is out of range — a contract violation
// by the caller, not a runtime condition to recover from.
func MakeAutomaton(nStates uint64, init automaton.StateID, marked []automaton.StateID, nEvents uint) *automaton.Automaton {
	return automaton.New(nStates, init, marked, nEvents)
}

// ParallelCompose returns the lazy (virtual) parallel composition of a and
// b. Neither operand is copied or mutated; the returned Product answers
// every query by dispatching to both.
func ParallelCompose(a, b automaton.Transitions) *product.Product {
	return product.New(a, b)
}

// ReduceTree combines items into a single automaton.Transitions via a
// balanced binary tree of virtual products. Panics if items is empty.
func ReduceTree(items []automaton.Transitions) automaton.Transitions {
	return reduce.Tree(items)
}

// SupervisorSynth computes the monolithic supervisor for plant and spec
// restricted to uncontrollable, and returns it as a trimmed, concrete
// automaton. It runs precheck.Check first and returns its error, wrapping
// every finding, before attempting synthesis; synth.Synthesize and
// materialize.Materialize then run in sequence. An empty-but-valid outcome
// (the specification admits no safe behavior at all) is returned as
// automaton.Empty with a nil error, not as a failure.
func SupervisorSynth(plant, spec automaton.Transitions, uncontrollable *eventset.Set, opts ...synth.Option) (*automaton.Automaton, error) {
	if r := precheck.Check(plant, spec); !r.Valid() {
		return nil, r.Err()
	}

	res, err := synth.Synthesize(plant, spec, uncontrollable, opts...)
	if err != nil {
		return nil, err
	}
	return materialize.Materialize(res), nil
}

// SupervisorSynthMany reduces plants and specs into single composed
// operands via ReduceTree and runs SupervisorSynth on the results.
func SupervisorSynthMany(plants, specs []automaton.Transitions, uncontrollable *eventset.Set, opts ...synth.Option) (*automaton.Automaton, error) {
	plant := reduce.Tree(plants)
	spec := reduce.Tree(specs)
	return SupervisorSynth(plant, spec, uncontrollable, opts...)
}
