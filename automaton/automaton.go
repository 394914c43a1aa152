// Package automaton implements the concrete finite-automaton representation:
// a bitset-encoded event alphabet, a sparse forward transition relation with
// a lazily built inverse, a marked set and an initial state. It also defines
// the Transitions contract shared with the virtual product in package
// product, so the reduction tree and synthesis engine can be written once
// against an interface rather than a class hierarchy.
package automaton

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/desrw/monosup/eventset"
)

// StateID identifies a state. Virtual product ids are products of operand
// state counts and must not be truncated, hence the 64-bit width.
type StateID = uint64

// EventID re-exports eventset.EventID so callers rarely need to import
// eventset directly just to name an event.
type EventID = eventset.EventID

// NoState is returned by Trans when no transition is defined.
const NoState StateID = ^StateID(0)

// Transitions is the query contract shared by a concrete Automaton and a
// virtual product: both expose identical semantics over their respective
// state spaces, so composition can recurse over either without knowing
// which it is holding.
type Transitions interface {
	// NumStates returns the size of the state space, states [0, NumStates()).
	NumStates() uint64
	// Alphabet returns the set of events that may appear on any transition.
	Alphabet() *eventset.Set
	// Init returns the initial state id.
	Init() StateID
	// IsMarked reports whether q is a marked (accepting) state.
	IsMarked(q StateID) bool
	// ContainsTrans reports whether a transition q--e-->q' exists.
	ContainsTrans(q StateID, e EventID) bool
	// Trans returns the unique successor of q on e, or (NoState, false).
	Trans(q StateID, e EventID) (StateID, bool)
	// StateEvents returns the events enabled at q.
	StateEvents(q StateID) *eventset.Set
	// ContainsInvTrans reports whether some q' has q'--e-->q.
	ContainsInvTrans(q StateID, e EventID) bool
	// InvTrans returns every predecessor of q on e. May be empty.
	InvTrans(q StateID, e EventID) []StateID
	// InvStateEvents returns the events e such that some q' has q'--e-->q.
	InvStateEvents(q StateID) *eventset.Set
	// AllocateInverse builds (or rebuilds) the inverse transition index.
	AllocateInverse()
	// ClearInverse releases the inverse transition index.
	ClearInverse()
}

// Automaton is a concrete stored finite automaton: sparse forward
// transitions, a lazily built inverse, a marked set, an initial state and a
// fixed-capacity event alphabet.
type Automaton struct {
	nStates  uint64
	init     StateID
	nEvents  uint
	alphabet *eventset.Set
	marked   map[StateID]struct{}

	// forward[from][to] is the set of events taking from to to.
	forward []map[StateID]*eventset.Set
	// stateEvents[q] caches the union of forward[q]'s event sets.
	stateEvents []*eventset.Set

	// inverse and invStateEvents mirror forward/stateEvents but transposed;
	// both are nil until AllocateInverse is called and are released by
	// ClearInverse. SetTransition panics while they are allocated.
	inverse        []map[StateID]*eventset.Set
	invStateEvents []*eventset.Set
}

// New creates an automaton with nStates states (ids in [0, nStates)), a
// designated initial state, an initial marked set, and room for nEvents
// distinct event ids. It panics if init or any marked id is out of range.
func New(nStates uint64, init StateID, marked []StateID, nEvents uint) *Automaton {
	if nStates > 0 && init >= nStates {
		panic(fmt.Sprintf("automaton: init state %d out of range [0, %d)", init, nStates))
	}
	a := &Automaton{
		nStates:     nStates,
		init:        init,
		nEvents:     nEvents,
		alphabet:    eventset.New(nEvents),
		marked:      make(map[StateID]struct{}, len(marked)),
		forward:     make([]map[StateID]*eventset.Set, nStates),
		stateEvents: make([]*eventset.Set, nStates),
	}
	for q := range a.forward {
		a.forward[q] = make(map[StateID]*eventset.Set)
		a.stateEvents[q] = eventset.New(nEvents)
	}
	for _, m := range marked {
		a.markChecked(m)
	}
	return a
}

// Empty returns the automaton with no states: the documented representation
// of a supervisor whose initial state never survived synthesis. It is not
// an error value.
func Empty(nEvents uint) *Automaton {
	return New(0, 0, nil, nEvents)
}

func (a *Automaton) markChecked(q StateID) {
	if q >= a.nStates {
		panic(fmt.Sprintf("automaton: marked state %d out of range [0, %d)", q, a.nStates))
	}
	a.marked[q] = struct{}{}
}

// IsEmpty reports whether the automaton has no states.
func (a *Automaton) IsEmpty() bool {
	return a.nStates == 0
}

// NumStates implements Transitions.
func (a *Automaton) NumStates() uint64 { return a.nStates }

// Alphabet implements Transitions.
func (a *Automaton) Alphabet() *eventset.Set { return a.alphabet }

// Init implements Transitions.
func (a *Automaton) Init() StateID { return a.init }

// Marked returns the marked states in ascending order.
func (a *Automaton) Marked() []StateID {
	out := make([]StateID, 0, len(a.marked))
	for q := range a.marked {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsMarked implements Transitions.
func (a *Automaton) IsMarked(q StateID) bool {
	_, ok := a.marked[q]
	return ok
}

func (a *Automaton) checkState(q StateID) {
	if q >= a.nStates {
		panic(fmt.Sprintf("automaton: state %d out of range [0, %d)", q, a.nStates))
	}
}

func (a *Automaton) checkEvent(e EventID) {
	if uint(e) >= a.nEvents {
		panic(fmt.Sprintf("automaton: event %d out of range [0, %d)", e, a.nEvents))
	}
}

// SetTransition adds a transition from--e-->to, growing the alphabet to
// include e if necessary. Panics on out-of-range from, to or e, or if
// called while an inverse index is allocated (mutation after AllocateInverse
// is a contract violation: callers must ClearInverse first).
func (a *Automaton) SetTransition(from, to StateID, e EventID) {
	a.checkState(from)
	a.checkState(to)
	a.checkEvent(e)
	if a.inverse != nil {
		panic("automaton: SetTransition called while inverse index is allocated; call ClearInverse first")
	}
	if a.forward[from][to] == nil {
		a.forward[from][to] = eventset.New(a.nEvents)
	}
	a.forward[from][to].Set(e)
	a.stateEvents[from].Set(e)
	a.alphabet.Set(e)
}

// ContainsTrans implements Transitions.
func (a *Automaton) ContainsTrans(q StateID, e EventID) bool {
	if q >= a.nStates || uint(e) >= a.nEvents {
		return false
	}
	return a.stateEvents[q].Test(e)
}

// Trans implements Transitions. Automata are deterministic on (state,
// event), so the first matching successor found is returned.
func (a *Automaton) Trans(q StateID, e EventID) (StateID, bool) {
	if !a.ContainsTrans(q, e) {
		return NoState, false
	}
	for to, evs := range a.forward[q] {
		if evs.Test(e) {
			return to, true
		}
	}
	return NoState, false
}

// StateEvents implements Transitions.
func (a *Automaton) StateEvents(q StateID) *eventset.Set {
	if q >= a.nStates {
		return eventset.New(a.nEvents)
	}
	return a.stateEvents[q]
}

// AllocateInverse implements Transitions: builds the inverse transition map
// and inv_state_events cache from the current forward relation.
func (a *Automaton) AllocateInverse() {
	a.inverse = make([]map[StateID]*eventset.Set, a.nStates)
	a.invStateEvents = make([]*eventset.Set, a.nStates)
	for q := range a.inverse {
		a.inverse[q] = make(map[StateID]*eventset.Set)
		a.invStateEvents[q] = eventset.New(a.nEvents)
	}
	for from, outs := range a.forward {
		for to, evs := range outs {
			fromID := StateID(from)
			if a.inverse[to][fromID] == nil {
				a.inverse[to][fromID] = eventset.New(a.nEvents)
			}
			a.inverse[to][fromID] = a.inverse[to][fromID].Union(evs)
			a.invStateEvents[to] = a.invStateEvents[to].Union(evs)
		}
	}
}

// ClearInverse implements Transitions.
func (a *Automaton) ClearInverse() {
	a.inverse = nil
	a.invStateEvents = nil
}

// ContainsInvTrans implements Transitions.
func (a *Automaton) ContainsInvTrans(q StateID, e EventID) bool {
	if a.invStateEvents == nil || q >= a.nStates || uint(e) >= a.nEvents {
		return false
	}
	return a.invStateEvents[q].Test(e)
}

// InvTrans implements Transitions.
func (a *Automaton) InvTrans(q StateID, e EventID) []StateID {
	if a.inverse == nil || q >= a.nStates || uint(e) >= a.nEvents {
		return nil
	}
	var out []StateID
	for from, evs := range a.inverse[q] {
		if evs.Test(e) {
			out = append(out, from)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// InvStateEvents implements Transitions.
func (a *Automaton) InvStateEvents(q StateID) *eventset.Set {
	if a.invStateEvents == nil || q >= a.nStates {
		return eventset.New(a.nEvents)
	}
	return a.invStateEvents[q]
}

// Successors returns the distinct states reachable from q in one step, in
// ascending order. Used by the materialiser's accessibility BFS.
func (a *Automaton) Successors(q StateID) []StateID {
	a.checkState(q)
	out := make([]StateID, 0, len(a.forward[q]))
	for to := range a.forward[q] {
		out = append(out, to)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Predecessors returns the distinct states with an edge into q, in
// ascending order. Requires AllocateInverse to have been called.
func (a *Automaton) Predecessors(q StateID) []StateID {
	if a.inverse == nil {
		return nil
	}
	a.checkState(q)
	out := make([]StateID, 0, len(a.inverse[q]))
	for from := range a.inverse[q] {
		out = append(out, from)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Signature returns a deterministic content hash of the automaton's states,
// transitions, marked set and alphabet. It is an opaque digest for cache
// keys and log correlation, not a serialization format: the automaton file
// format that would let this round-trip is explicitly out of scope.
func (a *Automaton) Signature() [32]byte {
	h := sha256.New()
	var buf [8]byte

	writeUint := func(v uint64) {
		binary.BigEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}

	writeUint(a.nStates)
	writeUint(uint64(a.init))
	writeUint(uint64(a.nEvents))

	for _, e := range a.alphabet.Bits() {
		writeUint(uint64(e))
	}

	for _, q := range a.Marked() {
		writeUint(q)
	}

	for from := StateID(0); from < a.nStates; from++ {
		tos := a.Successors(from)
		for _, to := range tos {
			writeUint(from)
			writeUint(to)
			for _, e := range a.forward[from][to].Bits() {
				writeUint(uint64(e))
			}
		}
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

var _ Transitions = (*Automaton)(nil)
