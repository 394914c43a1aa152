// Package synthcache memoizes the synth.Synthesize + materialize.Materialize
// pipeline keyed by a content hash of the plant, the specification and the
// uncontrollable event set, so repeated synthesis calls over the same
// operands (e.g. while tuning a specification interactively) skip both the
// DFS and the trim pass entirely.
package synthcache

import (
	"crypto/sha256"
	"encoding/binary"
	"sync"

	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/eventset"
	"github.com/desrw/monosup/materialize"
	"github.com/desrw/monosup/synth"
)

// Cache memoizes materialised supervisors. The zero value is not usable;
// build one with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[[32]byte]*automaton.Automaton
	order   [][32]byte
	maxSize int

	hits      int64
	misses    int64
	evictions int64
}

// New creates a cache holding at most maxSize entries. When full, the
// oldest entry is evicted (FIFO). maxSize of 0 means unlimited.
func New(maxSize int) *Cache {
	return &Cache{
		entries: make(map[[32]byte]*automaton.Automaton),
		maxSize: maxSize,
	}
}

// key hashes the operand pair and the uncontrollable set into a cache key.
// Only concrete automata have a stable Signature; a caller caching across
// virtual products should materialise them first.
func key(plant, spec automaton.Transitions, uncontrollable *eventset.Set) [32]byte {
	h := sha256.New()

	writeOperand := func(t automaton.Transitions) {
		if a, ok := t.(*automaton.Automaton); ok {
			sig := a.Signature()
			h.Write(sig[:])
			return
		}
		var zero [32]byte
		h.Write(zero[:])
	}
	writeOperand(plant)
	writeOperand(spec)

	var buf [2]byte
	for _, e := range uncontrollable.Bits() {
		binary.BigEndian.PutUint16(buf[:], e)
		h.Write(buf[:])
	}

	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Get retrieves a cached supervisor for the given operands. Returns (nil,
// false) on a miss.
func (c *Cache) Get(plant, spec automaton.Transitions, uncontrollable *eventset.Set) (*automaton.Automaton, bool) {
	k := key(plant, spec, uncontrollable)

	c.mu.Lock()
	defer c.mu.Unlock()

	if sup, ok := c.entries[k]; ok {
		c.hits++
		return sup, true
	}
	c.misses++
	return nil, false
}

// Put stores a materialised supervisor for the given operands.
func (c *Cache) Put(plant, spec automaton.Transitions, uncontrollable *eventset.Set, sup *automaton.Automaton) {
	k := key(plant, spec, uncontrollable)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[k]; !exists {
		if c.maxSize > 0 && len(c.entries) >= c.maxSize && len(c.order) > 0 {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
			c.evictions++
		}
		c.order = append(c.order, k)
	}
	c.entries[k] = sup
}

// GetOrCompute returns the cached supervisor for the operands if present,
// otherwise runs synth.Synthesize followed by materialize.Materialize and
// caches the resulting trimmed supervisor before returning it. A synthesis
// error is never cached.
func (c *Cache) GetOrCompute(plant, spec automaton.Transitions, uncontrollable *eventset.Set, opts ...synth.Option) (*automaton.Automaton, error) {
	if sup, ok := c.Get(plant, spec, uncontrollable); ok {
		return sup, nil
	}
	res, err := synth.Synthesize(plant, spec, uncontrollable, opts...)
	if err != nil {
		return nil, err
	}
	sup := materialize.Materialize(res)
	c.Put(plant, spec, uncontrollable, sup)
	return sup, nil
}

// Stats reports cache occupancy and hit/miss counters.
type Stats struct {
	Size      int
	MaxSize   int
	Hits      int64
	Misses    int64
	Evictions int64
	HitRate   float64
}

// Stats returns the current cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := c.hits + c.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Size:      len(c.entries),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		HitRate:   hitRate,
	}
}

// Clear removes every entry and resets the eviction order, leaving the
// hit/miss/eviction counters untouched.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[[32]byte]*automaton.Automaton)
	c.order = nil
}

// Size returns the number of entries currently cached.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
