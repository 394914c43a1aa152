// Package reduce builds a balanced binary reduction tree of virtual
// products over a list of automata, so N plants or M specs can be combined
// into one composed operand before synthesis runs.
package reduce

import (
	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/product"
)

// Tree combines items into a single automaton.Transitions by repeatedly
// pairing adjacent entries into virtual products and carrying an unpaired
// trailing entry through to the next level, until one node remains. The
// tree is balanced to within one level and deterministic: the same input
// list produces the same tree. Every intermediate Product returned by
// product.New retains shared references to its operands, so the whole tree
// stays alive as long as the returned root is reachable. Panics if items is
// empty.
func Tree(items []automaton.Transitions) automaton.Transitions {
	if len(items) == 0 {
		panic("reduce: Tree requires at least one automaton")
	}
	level := make([]automaton.Transitions, len(items))
	copy(level, items)

	for len(level) > 1 {
		next := make([]automaton.Transitions, 0, (len(level)+1)/2)
		i := 0
		for ; i+1 < len(level); i += 2 {
			next = append(next, product.New(level[i], level[i+1]))
		}
		if i < len(level) {
			next = append(next, level[i])
		}
		level = next
	}
	return level[0]
}
