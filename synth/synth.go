// Package synth implements the monolithic supervisor synthesis algorithm: a
// depth-first walk of the virtual composition of a plant and a
// specification that prunes bad states — states where the specification
// disables an event the plant demands uncontrollably — via inverse-BFS
// propagation over the uncontrollable events.
package synth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/desrw/monosup/automaton"
	"github.com/desrw/monosup/eventset"
	"github.com/desrw/monosup/product"
	"github.com/desrw/monosup/reduce"
)

// Edge is a surviving outgoing transition recorded during synthesis. To may
// name a state that is later discovered to be killed; materialize.Materialize
// filters those out rather than synth eagerly maintaining the invariant.
type Edge struct {
	To    automaton.StateID
	Event automaton.EventID
}

// Result is the output of Synthesize: the virtual composition's initial
// state, the surviving virtual states and their outgoing edges, and the
// operands the composition was built from (needed by materialize to decide
// which states are marked).
type Result struct {
	Init      automaton.StateID
	Survivors map[automaton.StateID][]Edge
	Plant     automaton.Transitions
	Spec      automaton.Transitions
	RunID     string
}

type config struct {
	logger zerolog.Logger
	runID  string
}

// Option configures an optional, purely observational aspect of a
// Synthesize call; none of them change the algorithm's result.
type Option func(*config)

// WithLogger routes per-state kill/survive trace events to l. The default
// is zerolog.Nop(), so logging costs nothing unless requested.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithRunID tags log events and the returned Result with an explicit run
// id, useful for correlating a call with a runstore/report record. If
// omitted, a fresh uuid is generated.
func WithRunID(id string) Option {
	return func(c *config) { c.runID = id }
}

// Synthesize computes the monolithic supervisor's surviving virtual states
// for plant ∥ spec, restricted to the uncontrollable events in
// uncontrollable. It does not materialise a concrete automaton; pass the
// Result to materialize.Materialize for that.
func Synthesize(plant, spec automaton.Transitions, uncontrollable *eventset.Set, opts ...Option) (*Result, error) {
	if plant.NumStates() == 0 {
		return nil, fmt.Errorf("synth: plant automaton has no states")
	}
	if spec.NumStates() == 0 {
		return nil, fmt.Errorf("synth: spec automaton has no states")
	}

	cfg := &config{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.runID == "" {
		cfg.runID = uuid.New().String()
	}
	log := cfg.logger.With().Str("run_id", cfg.runID).Logger()

	v := product.New(plant, spec)

	ncbitP := uncontrollable.Intersect(plant.Alphabet())
	ncbitV := ncbitP.Intersect(v.Alphabet())

	v.AllocateInverse()
	defer v.ClearInverse()

	survivors := make(map[automaton.StateID][]Edge)
	killed := make(map[automaton.StateID]struct{})
	frontier := []automaton.StateID{v.Init()}
	nStatesPlant := plant.NumStates()

	for len(frontier) > 0 {
		q := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if _, ok := killed[q]; ok {
			continue
		}
		if _, ok := survivors[q]; ok {
			continue
		}

		qx := q % nStatesPlant
		requiredU := ncbitP.Intersect(plant.StateEvents(qx))
		enabledU := requiredU.Intersect(v.StateEvents(q))

		if !enabledU.Equal(requiredU) {
			log.Debug().Uint64("state", q).Msg("bad state: spec disables a required uncontrollable event")
			kill(v, q, ncbitV, killed, survivors)
			continue
		}

		edges := make([]Edge, 0)
		for _, e := range v.StateEvents(q).Bits() {
			qp, ok := v.Trans(q, e)
			if !ok {
				continue
			}
			if _, isKilled := killed[qp]; !isKilled {
				if _, isSurvivor := survivors[qp]; !isSurvivor {
					frontier = append(frontier, qp)
				}
			}
			edges = append(edges, Edge{To: qp, Event: e})
		}
		survivors[q] = edges
		log.Trace().Uint64("state", q).Int("out_degree", len(edges)).Msg("state survives")
	}

	return &Result{
		Init:      v.Init(),
		Survivors: survivors,
		Plant:     plant,
		Spec:      spec,
		RunID:     cfg.runID,
	}, nil
}

// SynthesizeMany reduces plants and specs into single composed operands via
// reduce.Tree and runs Synthesize on the results, subsuming the list-based
// overload of the original algorithm.
func SynthesizeMany(plants, specs []automaton.Transitions, uncontrollable *eventset.Set, opts ...Option) (*Result, error) {
	plant := reduce.Tree(plants)
	spec := reduce.Tree(specs)
	return Synthesize(plant, spec, uncontrollable, opts...)
}

// kill runs the inverse BFS/DFS described in §4.5: q0 and every
// uncontrollable-event predecessor of a killed state (transitively) are
// removed from consideration, since a controllable predecessor can prevent
// reaching a bad state but an uncontrollable one cannot.
func kill(v automaton.Transitions, q0 automaton.StateID, ncbitV *eventset.Set, killed map[automaton.StateID]struct{}, survivors map[automaton.StateID][]Edge) {
	stack := []automaton.StateID{q0}
	killed[q0] = struct{}{}

	for len(stack) > 0 {
		x := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		backEvents := v.InvStateEvents(x).Intersect(ncbitV)
		for _, e := range backEvents.Bits() {
			for _, p := range v.InvTrans(x, e) {
				if _, ok := killed[p]; ok {
					continue
				}
				killed[p] = struct{}{}
				stack = append(stack, p)
				delete(survivors, p)
			}
		}
	}
}
