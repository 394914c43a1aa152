// Package materialize turns a synth.Result's surviving virtual states into
// a concrete automaton.Automaton and trims it to its accessible ∩
// co-accessible part, mirroring the original library's two-stage
// materialise-then-trim pipeline rather than fusing them into one pass.
package materialize

import (
	"sort"

	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/synth"
)

// Materialize renumbers the surviving states of res into a fresh
// automaton.Automaton, starting from zero, and returns its trim (the part
// both reachable from the initial state and able to reach a marked state).
// If the virtual product's initial state did not survive synthesis, it
// returns automaton.Empty: an empty supervisor is a documented outcome, not
// an error.
func Materialize(res *synth.Result) *automaton.Automaton {
	nEvents := uint(res.Plant.Alphabet().Cap())

	if _, ok := res.Survivors[res.Init]; !ok {
		return automaton.Empty(nEvents)
	}

	oldIDs := make([]automaton.StateID, 0, len(res.Survivors))
	for q := range res.Survivors {
		oldIDs = append(oldIDs, q)
	}
	sort.Slice(oldIDs, func(i, j int) bool { return oldIDs[i] < oldIDs[j] })

	newID := make(map[automaton.StateID]automaton.StateID, len(oldIDs))
	for i, q := range oldIDs {
		newID[q] = automaton.StateID(i)
	}

	nStatesPlant := res.Plant.NumStates()
	var marked []automaton.StateID
	for _, q := range oldIDs {
		qx := q % nStatesPlant
		qy := q / nStatesPlant
		if res.Plant.IsMarked(qx) && res.Spec.IsMarked(qy) {
			marked = append(marked, newID[q])
		}
	}

	raw := automaton.New(uint64(len(oldIDs)), newID[res.Init], marked, nEvents)
	for _, q := range oldIDs {
		for _, e := range res.Survivors[q] {
			to, survived := newID[e.To]
			if !survived {
				continue
			}
			raw.SetTransition(newID[q], to, e.Event)
		}
	}

	return Trim(raw)
}

// Trim returns the part of a that is both accessible (reachable from the
// initial state) and co-accessible (able to reach a marked state),
// renumbered from zero. If every state is kept, a itself is returned. If
// the initial state itself is not co-accessible, the whole automaton is
// vacuous and Trim returns automaton.Empty.
func Trim(a *automaton.Automaton) *automaton.Automaton {
	nEvents := uint(a.Alphabet().Cap())
	if a.IsEmpty() {
		return a
	}

	accessible := bfsForward(a)

	a.AllocateInverse()
	coaccessible := bfsBackwardFromMarked(a)
	a.ClearInverse()

	trimSet := make(map[automaton.StateID]struct{})
	for q := range accessible {
		if _, ok := coaccessible[q]; ok {
			trimSet[q] = struct{}{}
		}
	}

	if _, ok := trimSet[a.Init()]; !ok {
		return automaton.Empty(nEvents)
	}
	if uint64(len(trimSet)) == a.NumStates() {
		return a
	}

	keep := make([]automaton.StateID, 0, len(trimSet))
	for q := range trimSet {
		keep = append(keep, q)
	}
	sort.Slice(keep, func(i, j int) bool { return keep[i] < keep[j] })

	newID := make(map[automaton.StateID]automaton.StateID, len(keep))
	for i, q := range keep {
		newID[q] = automaton.StateID(i)
	}

	var marked []automaton.StateID
	for _, q := range keep {
		if a.IsMarked(q) {
			marked = append(marked, newID[q])
		}
	}

	out := automaton.New(uint64(len(keep)), newID[a.Init()], marked, nEvents)
	for _, q := range keep {
		for _, e := range a.StateEvents(q).Bits() {
			to, ok := a.Trans(q, e)
			if !ok {
				continue
			}
			if toNew, kept := newID[to]; kept {
				out.SetTransition(newID[q], toNew, e)
			}
		}
	}
	return out
}

func bfsForward(a *automaton.Automaton) map[automaton.StateID]struct{} {
	seen := map[automaton.StateID]struct{}{a.Init(): {}}
	queue := []automaton.StateID{a.Init()}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		for _, to := range a.Successors(q) {
			if _, ok := seen[to]; !ok {
				seen[to] = struct{}{}
				queue = append(queue, to)
			}
		}
	}
	return seen
}

func bfsBackwardFromMarked(a *automaton.Automaton) map[automaton.StateID]struct{} {
	seen := make(map[automaton.StateID]struct{})
	var queue []automaton.StateID
	for _, q := range a.Marked() {
		seen[q] = struct{}{}
		queue = append(queue, q)
	}
	for len(queue) > 0 {
		q := queue[0]
		queue = queue[1:]
		for _, from := range a.Predecessors(q) {
			if _, ok := seen[from]; !ok {
				seen[from] = struct{}{}
				queue = append(queue, from)
			}
		}
	}
	return seen
}
