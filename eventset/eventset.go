// Package eventset implements a fixed-capacity bitset over event ids,
// the representation used throughout this module for event alphabets,
// enabled-event sets and uncontrollable-event masks.
package eventset

import "github.com/bits-and-blooms/bitset"

// EventID identifies an event in [0, N) for some automaton's alphabet
// bound N. Ids are not interpreted; they are positions in the bitset.
type EventID = uint16

// Set is a bitset of fixed width N, chosen when the Set is created.
// Test/Set/Clear on an id outside [0, N) are documented no-ops rather than
// panics: Set is a low-level bitset utility, not the contract boundary.
// Callers that need fail-fast behavior on bad ids should go through the
// automaton package, whose setters do panic on out-of-range ids.
type Set struct {
	bits *bitset.BitSet
	n    uint
}

// New returns an empty Set with capacity for n events.
func New(n uint) *Set {
	return &Set{bits: bitset.New(n), n: n}
}

// Cap returns the fixed capacity N this Set was created with.
func (s *Set) Cap() uint {
	return s.n
}

// Test reports whether event e is present in the set.
func (s *Set) Test(e EventID) bool {
	if uint(e) >= s.n {
		return false
	}
	return s.bits.Test(uint(e))
}

// Set adds event e to the set and returns s for chaining.
func (s *Set) Set(e EventID) *Set {
	if uint(e) >= s.n {
		return s
	}
	s.bits.Set(uint(e))
	return s
}

// Clear removes event e from the set and returns s for chaining.
func (s *Set) Clear(e EventID) *Set {
	if uint(e) >= s.n {
		return s
	}
	s.bits.Clear(uint(e))
	return s
}

// Count returns the number of events present in the set.
func (s *Set) Count() uint {
	return s.bits.Count()
}

// Any reports whether at least one event is present.
func (s *Set) Any() bool {
	return s.bits.Any()
}

// Clone returns an independent copy of s.
func (s *Set) Clone() *Set {
	return &Set{bits: s.bits.Clone(), n: s.n}
}

// Union returns a new Set containing events present in s or other.
func (s *Set) Union(other *Set) *Set {
	n := s.n
	if other.n > n {
		n = other.n
	}
	return &Set{bits: s.bits.Union(other.bits), n: n}
}

// Intersect returns a new Set containing events present in both s and other.
func (s *Set) Intersect(other *Set) *Set {
	n := s.n
	if other.n < n {
		n = other.n
	}
	return &Set{bits: s.bits.Intersection(other.bits), n: n}
}

// Xor returns a new Set containing events present in exactly one of s, other.
func (s *Set) Xor(other *Set) *Set {
	n := s.n
	if other.n > n {
		n = other.n
	}
	return &Set{bits: s.bits.SymmetricDifference(other.bits), n: n}
}

// Complement returns a new Set containing every event in [0, N) not in s.
func (s *Set) Complement() *Set {
	return &Set{bits: s.bits.Complement(), n: s.n}
}

// Equal reports whether s and other contain exactly the same events.
func (s *Set) Equal(other *Set) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.bits.Equal(other.bits)
}

// Bits returns the set's members as event ids in ascending order.
// Callers that rely on ordering (e.g. the synthesis engine's event
// iteration) depend on this ascending guarantee.
func (s *Set) Bits() []EventID {
	out := make([]EventID, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, EventID(i))
	}
	return out
}

// String renders the set as "{e0,e1,...}" for debugging and log output.
func (s *Set) String() string {
	return s.bits.String()
}
