package rete

import "sync"

// Registry is the fact registry & WME layer (spec §4.1): it assigns
// each declared fact a stable, monotonically increasing id and owns the
// working-memory table. Grounded on the teacher's almanac.go factMap
// (sync.Map keyed lookup), generalized to id-addressed storage — the
// teacher addresses facts by path/name, this spec's WME model addresses
// them by id (REDESIGN FLAG, see DESIGN.md).
type Registry struct {
	mu     sync.Mutex
	nextID uint64
	wmes   map[uint64]*Fact
}

func newRegistry() *Registry {
	return &Registry{wmes: map[uint64]*Fact{}}
}

// declare stores raw as a new fact of factType and returns it with a
// freshly minted id. Duplicate values always receive distinct ids (bag
// semantics, spec §9 Open Question / R2).
func (r *Registry) declare(factType string, raw []byte) *Fact {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	f := newFact(r.nextID, factType, raw)
	r.wmes[f.ID] = f
	return f
}

// get looks up a fact by id.
func (r *Registry) get(id uint64) (*Fact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.wmes[id]
	return f, ok
}

// retract removes a fact by id, returning it for downstream negative
// propagation. ok is false if id is unknown.
func (r *Registry) retract(id uint64) (*Fact, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.wmes[id]
	if !ok {
		return nil, false
	}
	delete(r.wmes, id)
	return f, true
}

// reset empties the WME table and restarts the id counter (spec §4.1).
func (r *Registry) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wmes = map[uint64]*Fact{}
	r.nextID = 0
}

// size returns the number of resident facts (used by tests/invariants).
func (r *Registry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.wmes)
}
