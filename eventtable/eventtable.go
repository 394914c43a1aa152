// Package eventtable provides a small bidirectional mapping between human
// event names and the eventset.EventID bit positions used everywhere else
// in this module. It exists only to let package config translate a
// YAML-authored event list into the numeric ids the synthesis engine
// actually operates on; no other package imports it.
package eventtable

import "fmt"

// Table maps event names to dense EventID positions in [0, Len()).
type Table struct {
	byName []string
	idOf   map[string]uint16
}

// New returns an empty Table.
func New() *Table {
	return &Table{idOf: make(map[string]uint16)}
}

// Register assigns the next free EventID to name if it is not already
// present, returning that id either way. Panics if the table would exceed
// 65536 entries, the width of an EventID.
func (t *Table) Register(name string) uint16 {
	if id, ok := t.idOf[name]; ok {
		return id
	}
	if len(t.byName) >= 1<<16 {
		panic("eventtable: table exhausted all 65536 event ids")
	}
	id := uint16(len(t.byName))
	t.byName = append(t.byName, name)
	t.idOf[name] = id
	return id
}

// Lookup returns the id registered for name, if any.
func (t *Table) Lookup(name string) (uint16, bool) {
	id, ok := t.idOf[name]
	return id, ok
}

// MustLookup returns the id registered for name, or panics — intended for
// callers that have already validated every name exists.
func (t *Table) MustLookup(name string) uint16 {
	id, ok := t.Lookup(name)
	if !ok {
		panic(fmt.Sprintf("eventtable: unknown event %q", name))
	}
	return id
}

// Name returns the name registered at id, if any.
func (t *Table) Name(id uint16) (string, bool) {
	if int(id) >= len(t.byName) {
		return "", false
	}
	return t.byName[id], true
}

// Len returns the number of registered events, and thus the minimum
// N_EVENTS bound an automaton built against this table needs.
func (t *Table) Len() uint {
	return uint(len(t.byName))
}
