package product

import (
	"testing"

	"github.com/desrw/monosup/automaton"
)

// Two small automata sharing event 0, each with a private event:
// X: states 0,1; alphabet {0,1}; 0--0-->1, 1--1-->0
// Y: states 0,1; alphabet {0,2}; 0--0-->1, 1--2-->0
func buildXY() (*automaton.Automaton, *automaton.Automaton) {
	x := automaton.New(2, 0, []automaton.StateID{0}, 4)
	x.SetTransition(0, 1, 0)
	x.SetTransition(1, 0, 1)

	y := automaton.New(2, 0, []automaton.StateID{0}, 4)
	y.SetTransition(0, 1, 0)
	y.SetTransition(1, 0, 2)
	return x, y
}

func TestProductInitAndNumStates(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	if p.NumStates() != 4 {
		t.Fatalf("expected 4 states, got %d", p.NumStates())
	}
	if p.Init() != 0 {
		t.Fatalf("expected init 0, got %d", p.Init())
	}
}

func TestProductSharedEventRequiresBothSides(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	// q=(0,0)=0: event 0 is shared and enabled on both sides.
	if !p.ContainsTrans(0, 0) {
		t.Errorf("expected shared event 0 enabled at (0,0)")
	}
	to, ok := p.Trans(0, 0)
	if !ok || to != 3 { // (qx',qy') = (1,1), nStatesX=2 -> 1*2+1=3
		t.Errorf("Trans(0,0) = %d,%v; want 3,true", to, ok)
	}
}

func TestProductPrivateEventFiresAlone(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	// q=(1,0) encodes qx=1,qy=0 -> id = 0*2+1 = 1
	q := automaton.StateID(1)
	// event 1 is private to X (onlyX); X enables it at qx=1.
	if !p.ContainsTrans(q, 1) {
		t.Errorf("expected private X event 1 enabled at (1,0)")
	}
	to, ok := p.Trans(q, 1)
	if !ok {
		t.Fatalf("expected Trans to succeed")
	}
	// X moves 1->0, Y stays at 0: id = 0*2+0 = 0
	if to != 0 {
		t.Errorf("Trans(q,1) = %d; want 0", to)
	}
}

func TestProductSharedEventBlockedOnOneSide(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	// q=(0,1) encodes qx=0 qy=1 -> id=1*2+0=2. Event 0 is shared; X enables
	// it at qx=0 but Y does not at qy=1, so it must not fire even though
	// one side enables it.
	if p.ContainsTrans(2, 0) {
		t.Errorf("shared event should not fire when disabled on one side")
	}
}

func TestProductProjectionConsistency(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	// P4: trans then project, for a shared event.
	qp, ok := p.Trans(0, 0)
	if !ok {
		t.Fatalf("expected transition to exist")
	}
	nStatesX := x.NumStates()
	gotX := qp % nStatesX
	gotY := qp / nStatesX
	wantX, _ := x.Trans(0, 0)
	wantY, _ := y.Trans(0, 0)
	if gotX != wantX || gotY != wantY {
		t.Errorf("projection mismatch: got (%d,%d), want (%d,%d)", gotX, gotY, wantX, wantY)
	}
}

func TestProductInvTransContainsPredecessor(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	p.AllocateInverse()
	defer p.ClearInverse()

	qp, ok := p.Trans(0, 0)
	if !ok {
		t.Fatalf("expected transition")
	}
	preds := p.InvTrans(qp, 0)
	found := false
	for _, pr := range preds {
		if pr == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected InvTrans(%d, 0) to contain predecessor 0, got %v", qp, preds)
	}
}

func TestProductStateEventsFormula(t *testing.T) {
	x, y := buildXY()
	p := New(x, y)
	se := p.StateEvents(0) // (0,0)
	// Both X and Y enable event 0 at state 0 (shared, both sides), so it
	// should be present; no private events are enabled at state 0.
	if !se.Test(0) {
		t.Errorf("expected shared event 0 enabled at (0,0)")
	}
	if se.Test(1) || se.Test(2) {
		t.Errorf("did not expect private events at (0,0), got %v", se.Bits())
	}
}

func TestNestedProductIsTransitionsCompatible(t *testing.T) {
	x, y := buildXY()
	inner := New(x, y)
	z := automaton.New(1, 0, []automaton.StateID{0}, 4)
	outer := New(inner, z)
	if outer.NumStates() != inner.NumStates()*z.NumStates() {
		t.Errorf("nested product NumStates mismatch")
	}
	// Smoke-test that queries on a product-of-products don't panic.
	_ = outer.StateEvents(0)
	_ = outer.ContainsTrans(0, 0)
}
