package monosup

import (
	"testing"

	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/eventset"
)

// Event ids shared by every scenario below, matching spec.md's concrete
// scenarios: a0=0, a1=1, b0=2, b1=3, with {b0,b1} uncontrollable.
const (
	a0 automaton.EventID = 0
	a1 automaton.EventID = 1
	b0 automaton.EventID = 2
	b1 automaton.EventID = 3
)

const nEvents = 4

func uncontrollableSet() *eventset.Set {
	return eventset.New(nEvents).Set(b0).Set(b1)
}

// s1Plant builds the 4-state plant shared by S1 and S2:
// 0--a0-->1, 0--a1-->2, 1--b0-->0, 1--a1-->3, 2--b1-->0, 2--a0-->3, 3--b1-->1, 3--b0-->2
// marked {0}.
func s1Plant() *automaton.Automaton {
	p := MakeAutomaton(4, 0, []automaton.StateID{0}, nEvents)
	p.SetTransition(0, 1, a0)
	p.SetTransition(0, 2, a1)
	p.SetTransition(1, 0, b0)
	p.SetTransition(1, 3, a1)
	p.SetTransition(2, 0, b1)
	p.SetTransition(2, 3, a0)
	p.SetTransition(3, 1, b1)
	p.SetTransition(3, 2, b0)
	return p
}

// identitySpec is a 1-state automaton where every event self-loops,
// imposing no restriction on the plant.
func identitySpec() *automaton.Automaton {
	s := MakeAutomaton(1, 0, []automaton.StateID{0}, nEvents)
	s.SetTransition(0, 0, a0)
	s.SetTransition(0, 0, a1)
	s.SetTransition(0, 0, b0)
	s.SetTransition(0, 0, b1)
	return s
}

func TestPlantOnlyNoSpecSupervisorEqualsTrimmedPlant(t *testing.T) {
	plant := s1Plant()
	spec := identitySpec()

	sup, err := SupervisorSynth(plant, spec, uncontrollableSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sup.IsEmpty() {
		t.Fatalf("expected a nonempty supervisor")
	}
	if sup.NumStates() != plant.NumStates() {
		t.Errorf("expected supervisor to retain all %d plant states, got %d", plant.NumStates(), sup.NumStates())
	}

	for q := automaton.StateID(0); q < automaton.StateID(plant.NumStates()); q++ {
		if !sup.StateEvents(q).Equal(plant.StateEvents(q)) {
			t.Errorf("state %d: expected enabled events to match the plant exactly, got %s vs plant %s",
				q, sup.StateEvents(q), plant.StateEvents(q))
		}
	}
}

// s2Spec builds the 2-state spec used in S2: 0--b0-->1, 1--a1-->0, marked {0,1}.
func s2Spec() *automaton.Automaton {
	s := MakeAutomaton(2, 0, []automaton.StateID{0, 1}, nEvents)
	s.SetTransition(0, 1, b0)
	s.SetTransition(1, 0, a1)
	return s
}

func TestSpecDisablesUncontrollableKillsAffectedPlantStates(t *testing.T) {
	plant := s1Plant()
	spec := s2Spec()

	sup, err := SupervisorSynth(plant, spec, uncontrollableSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !sup.IsEmpty() {
		if sup.NumStates() > plant.NumStates() {
			t.Errorf("supervisor must not have more states than the plant, got %d", sup.NumStates())
		}
		// every state that reports b0 enabled must also have a b0 successor.
		for q := automaton.StateID(0); q < automaton.StateID(sup.NumStates()); q++ {
			if sup.ContainsTrans(q, b0) {
				if _, ok := sup.Trans(q, b0); !ok {
					t.Errorf("state %d: b0 reported contained but has no target", q)
				}
			}
		}
	}
}

func TestEmptySupervisorWhenUncontrollableIsImmediatelyBlocked(t *testing.T) {
	// Plant: 1 state, self-loop on b0.
	plant := MakeAutomaton(1, 0, []automaton.StateID{0}, nEvents)
	plant.SetTransition(0, 0, b0)

	// Spec: 1 state, empty alphabet — b0 is required-uncontrollable at the
	// plant but never enabled in the composition.
	spec := MakeAutomaton(1, 0, []automaton.StateID{0}, nEvents)

	sup, err := SupervisorSynth(plant, spec, uncontrollableSet())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sup.IsEmpty() {
		t.Fatalf("expected the empty automaton, got %d states", sup.NumStates())
	}
}

// twoStatePlant builds a minimal 2-state fully-controllable plant cycling
// on a single event, parameterized so two distinct instances can be
// composed in both orders for the commutativity check.
func twoStatePlant(self automaton.EventID, other automaton.EventID) *automaton.Automaton {
	p := MakeAutomaton(2, 0, []automaton.StateID{0, 1}, nEvents)
	p.SetTransition(0, 1, self)
	p.SetTransition(1, 0, other)
	return p
}

func identitySpecNoUncontrollable() *automaton.Automaton {
	s := MakeAutomaton(1, 0, []automaton.StateID{0}, nEvents)
	s.SetTransition(0, 0, a0)
	s.SetTransition(0, 0, a1)
	return s
}

func isomorphic(t *testing.T, a, b *automaton.Automaton) bool {
	t.Helper()
	if a.IsEmpty() != b.IsEmpty() {
		return false
	}
	if a.IsEmpty() {
		return true
	}
	if a.NumStates() != b.NumStates() {
		return false
	}

	// BFS both from init simultaneously, building a candidate bijection;
	// two automata built from the same virtual product up to operand order
	// visit states in a consistent order because materialize renumbers by
	// ascending surviving virtual-state id, which commutes with trim.
	mapping := map[automaton.StateID]automaton.StateID{a.Init(): b.Init()}
	queue := []automaton.StateID{a.Init()}
	for len(queue) > 0 {
		qa := queue[0]
		queue = queue[1:]
		qb := mapping[qa]

		if a.IsMarked(qa) != b.IsMarked(qb) {
			return false
		}
		if !a.StateEvents(qa).Equal(b.StateEvents(qb)) {
			return false
		}
		for _, e := range a.StateEvents(qa).Bits() {
			na, _ := a.Trans(qa, e)
			nb, _ := b.Trans(qb, e)
			if existing, seen := mapping[na]; seen {
				if existing != nb {
					return false
				}
				continue
			}
			mapping[na] = nb
			queue = append(queue, na)
		}
	}
	return true
}

func TestParallelComposeIsCommutativeUpToIsomorphism(t *testing.T) {
	p1 := twoStatePlant(a0, a1)
	p2 := twoStatePlant(a1, a0)
	spec := identitySpecNoUncontrollable()
	empty := eventset.New(nEvents)

	sup12, err := SupervisorSynth(ParallelCompose(p1, p2), spec, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sup21, err := SupervisorSynth(ParallelCompose(p2, p1), spec, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !isomorphic(t, sup12, sup21) {
		t.Errorf("expected supervisor(P1||P2) and supervisor(P2||P1) to be isomorphic")
	}
}

func TestReduceTreeIsAssociativeUpToIsomorphism(t *testing.T) {
	items := []automaton.Transitions{
		twoStatePlant(a0, a1),
		twoStatePlant(a1, a0),
		twoStatePlant(a0, a1),
		twoStatePlant(a1, a0),
	}
	spec := identitySpecNoUncontrollable()
	empty := eventset.New(nEvents)

	// ((A||B)||(C||D))
	left := ParallelCompose(items[0], items[1])
	right := ParallelCompose(items[2], items[3])
	balanced := ParallelCompose(left, right)

	// (((A||B)||C)||D)
	nested := ParallelCompose(ParallelCompose(items[0], items[1]), items[2])
	nested = ParallelCompose(nested, items[3])

	supBalanced, err := SupervisorSynth(balanced, spec, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	supNested, err := SupervisorSynth(nested, spec, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !isomorphic(t, supBalanced, supNested) {
		t.Errorf("expected balanced and left-nested reductions to be isomorphic")
	}

	// ReduceTree itself must agree with the balanced composition above.
	tree := ReduceTree(items)
	supTree, err := SupervisorSynth(tree, spec, empty)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !isomorphic(t, supTree, supBalanced) {
		t.Errorf("expected ReduceTree to match an explicit balanced composition")
	}
}

func TestSupervisorSynthManyReducesBothSides(t *testing.T) {
	plants := []automaton.Transitions{twoStatePlant(a0, a1), twoStatePlant(a1, a0)}
	specs := []automaton.Transitions{identitySpecNoUncontrollable(), identitySpecNoUncontrollable()}

	supMany, err := SupervisorSynthMany(plants, specs, eventset.New(nEvents))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	supDirect, err := SupervisorSynth(
		ParallelCompose(plants[0], plants[1]),
		ParallelCompose(specs[0], specs[1]),
		eventset.New(nEvents),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !isomorphic(t, supMany, supDirect) {
		t.Errorf("expected SupervisorSynthMany to match the manually reduced equivalent")
	}
}

func TestInverseTransitionsAreConsistentWithForwardEdges(t *testing.T) {
	plant := s1Plant()
	plant.AllocateInverse()
	defer plant.ClearInverse()

	for q := automaton.StateID(0); q < automaton.StateID(plant.NumStates()); q++ {
		for _, e := range plant.StateEvents(q).Bits() {
			to, ok := plant.Trans(q, e)
			if !ok {
				continue
			}
			found := false
			for _, pred := range plant.InvTrans(to, e) {
				if pred == q {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("forward edge (%d, %d, %d) has no matching inverse entry", q, e, to)
			}
		}
	}
}

func TestSupervisorSynthRejectsEmptyOperands(t *testing.T) {
	empty := automaton.Empty(nEvents)
	spec := identitySpec()

	if _, err := SupervisorSynth(empty, spec, uncontrollableSet()); err == nil {
		t.Errorf("expected precheck to reject a plant with zero states")
	}
}

func TestMakeAutomatonPanicsOnOutOfRangeInit(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected MakeAutomaton to panic on an out-of-range init state")
		}
	}()
	MakeAutomaton(2, 5, nil, nEvents)
}
