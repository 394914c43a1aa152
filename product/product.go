// Package product implements the lazy (virtual) parallel composition of two
// automata, P∥E, without ever materialising the product's transition
// relation. A Product answers every automaton.Transitions query by
// dispatching to its two operands and combining their answers according to
// the synchronous-product rule, so arbitrarily deep trees of products (a
// product of products) cost one extra level of dispatch per query, not an
// extra level of storage.
package product

import (
	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/eventset"
)

// Product is the non-materialised composition of two operands, X and Y,
// which may themselves be concrete automata or further Products. Operands
// are read-only for the life of the Product; the caller must not mutate X
// or Y (beyond AllocateInverse/ClearInverse) while a Product references
// them.
type Product struct {
	x, y automaton.Transitions

	nStatesX uint64

	// shared is X.Alphabet() ∩ Y.Alphabet(); onlyX/onlyY are the rest.
	shared, onlyX, onlyY *eventset.Set
	alphabet             *eventset.Set
}

// New builds the virtual product of x and y. Both must have been built with
// the same N_EVENTS bound; mismatched bounds make the composed alphabet
// nonsensical but New does not itself validate this — see package precheck
// for a pre-synthesis check.
func New(x, y automaton.Transitions) *Product {
	shared := x.Alphabet().Intersect(y.Alphabet())
	onlyX := x.Alphabet().Xor(shared)
	onlyY := y.Alphabet().Xor(shared)
	return &Product{
		x:        x,
		y:        y,
		nStatesX: x.NumStates(),
		shared:   shared,
		onlyX:    onlyX,
		onlyY:    onlyY,
		alphabet: x.Alphabet().Union(y.Alphabet()),
	}
}

// X returns the left operand.
func (p *Product) X() automaton.Transitions { return p.x }

// Y returns the right operand.
func (p *Product) Y() automaton.Transitions { return p.y }

// split decodes a composed state id q into its (qx, qy) projections.
func (p *Product) split(q automaton.StateID) (qx, qy automaton.StateID) {
	return q % p.nStatesX, q / p.nStatesX
}

// NumStates implements automaton.Transitions.
func (p *Product) NumStates() uint64 {
	return p.x.NumStates() * p.y.NumStates()
}

// Alphabet implements automaton.Transitions.
func (p *Product) Alphabet() *eventset.Set { return p.alphabet }

// Init implements automaton.Transitions.
func (p *Product) Init() automaton.StateID {
	return p.y.Init()*p.nStatesX + p.x.Init()
}

// IsMarked implements automaton.Transitions: q is marked iff both
// projections are marked in their respective operands.
func (p *Product) IsMarked(q automaton.StateID) bool {
	qx, qy := p.split(q)
	return p.x.IsMarked(qx) && p.y.IsMarked(qy)
}

// enabled applies the §4.3 composition rule for a single event at (qx, qy),
// reporting whether e fires given whether each operand enables it.
func (p *Product) enabled(qx, qy automaton.StateID, e automaton.EventID, inX, inY bool) bool {
	if p.shared.Test(e) {
		return inX && inY
	}
	if p.onlyX.Test(e) {
		return inX
	}
	if p.onlyY.Test(e) {
		return inY
	}
	return false
}

// ContainsTrans implements automaton.Transitions.
func (p *Product) ContainsTrans(q automaton.StateID, e automaton.EventID) bool {
	if !p.alphabet.Test(e) {
		return false
	}
	qx, qy := p.split(q)
	return p.enabled(qx, qy, e, p.x.ContainsTrans(qx, e), p.y.ContainsTrans(qy, e))
}

// Trans implements automaton.Transitions.
func (p *Product) Trans(q automaton.StateID, e automaton.EventID) (automaton.StateID, bool) {
	if !p.alphabet.Test(e) {
		return automaton.NoState, false
	}
	qx, qy := p.split(q)
	inX := p.x.ContainsTrans(qx, e)
	inY := p.y.ContainsTrans(qy, e)
	if !p.enabled(qx, qy, e, inX, inY) {
		return automaton.NoState, false
	}

	switch {
	case p.shared.Test(e):
		nx, _ := p.x.Trans(qx, e)
		ny, _ := p.y.Trans(qy, e)
		return ny*p.nStatesX + nx, true
	case inX:
		nx, _ := p.x.Trans(qx, e)
		return qy*p.nStatesX + nx, true
	default: // inY, e ∈ onlyY
		ny, _ := p.y.Trans(qy, e)
		return ny*p.nStatesX + qx, true
	}
}

// StateEvents implements automaton.Transitions using the formula from
// §4.3: (X∩Y) ∪ (X∩onlyX) ∪ (Y∩onlyY), evaluated on the operands'
// state_events at the projected states.
func (p *Product) StateEvents(q automaton.StateID) *eventset.Set {
	qx, qy := p.split(q)
	ex := p.x.StateEvents(qx)
	ey := p.y.StateEvents(qy)
	return ex.Intersect(ey).Union(ex.Intersect(p.onlyX)).Union(ey.Intersect(p.onlyY))
}

// ContainsInvTrans implements automaton.Transitions.
func (p *Product) ContainsInvTrans(q automaton.StateID, e automaton.EventID) bool {
	if !p.alphabet.Test(e) {
		return false
	}
	qx, qy := p.split(q)
	return p.enabled(qx, qy, e, p.x.ContainsInvTrans(qx, e), p.y.ContainsInvTrans(qy, e))
}

// InvTrans implements automaton.Transitions: enumerates predecessors per the
// §4.3 cases, taking the cross product of operand predecessors for a shared
// event and lifting single-side predecessors otherwise.
func (p *Product) InvTrans(q automaton.StateID, e automaton.EventID) []automaton.StateID {
	if !p.alphabet.Test(e) {
		return nil
	}
	qx, qy := p.split(q)
	inX := p.x.ContainsInvTrans(qx, e)
	inY := p.y.ContainsInvTrans(qy, e)
	if !p.enabled(qx, qy, e, inX, inY) {
		return nil
	}

	switch {
	case p.shared.Test(e):
		px := p.x.InvTrans(qx, e)
		py := p.y.InvTrans(qy, e)
		out := make([]automaton.StateID, 0, len(px)*len(py))
		for _, p1 := range py {
			for _, p0 := range px {
				out = append(out, p1*p.nStatesX+p0)
			}
		}
		return out
	case inX:
		px := p.x.InvTrans(qx, e)
		out := make([]automaton.StateID, 0, len(px))
		for _, p0 := range px {
			out = append(out, qy*p.nStatesX+p0)
		}
		return out
	default: // inY, e ∈ onlyY
		py := p.y.InvTrans(qy, e)
		out := make([]automaton.StateID, 0, len(py))
		for _, p1 := range py {
			out = append(out, p1*p.nStatesX+qx)
		}
		return out
	}
}

// InvStateEvents implements automaton.Transitions with the same formula as
// StateEvents, substituting each operand's InvStateEvents.
func (p *Product) InvStateEvents(q automaton.StateID) *eventset.Set {
	qx, qy := p.split(q)
	ex := p.x.InvStateEvents(qx)
	ey := p.y.InvStateEvents(qy)
	return ex.Intersect(ey).Union(ex.Intersect(p.onlyX)).Union(ey.Intersect(p.onlyY))
}

// AllocateInverse implements automaton.Transitions by recursing into both
// operands; a Product holds no storage of its own to allocate.
func (p *Product) AllocateInverse() {
	p.x.AllocateInverse()
	p.y.AllocateInverse()
}

// ClearInverse implements automaton.Transitions by recursing into both
// operands.
func (p *Product) ClearInverse() {
	p.x.ClearInverse()
	p.y.ClearInverse()
}

var _ automaton.Transitions = (*Product)(nil)
