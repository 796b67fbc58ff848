package rete

import (
	"fmt"
	"sync"
)

// alphaMemory is a set of fact ids whose facts pass one (fact-type,
// canonicalized-constraint-set) combination (spec §3, §4.3). Memories
// are shared across rules by content — interned by canonicalKey in
// AlphaNetwork.intern.
type alphaMemory struct {
	factType    string
	constraints []Constraint
	ids         map[uint64]*Fact
	subscribers []*joinNode

	// index, per subscribing join node, of fact ids keyed by the hash of
	// that join's key field values — the "per outgoing join node" index
	// described in spec §4.3.
	index map[*joinNode]map[uint64][]uint64
}

func newAlphaMemory(factType string, constraints []Constraint) *alphaMemory {
	return &alphaMemory{
		factType:    factType,
		constraints: constraints,
		ids:         map[uint64]*Fact{},
		index:       map[*joinNode]map[uint64][]uint64{},
	}
}

func (am *alphaMemory) matches(f *Fact) (bool, error) {
	for _, c := range am.constraints {
		ok, err := evaluateConstraint(c, f)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// addSubscriber registers node as a downstream join for this memory and
// builds its join-key index over the facts already resident. The join
// key is node's joinVars, a list of *variable* names — resolved to this
// pattern's own field bindings, not read as field names directly.
func (am *alphaMemory) addSubscriber(node *joinNode) {
	am.subscribers = append(am.subscribers, node)
	idx := map[uint64][]uint64{}
	for id, f := range am.ids {
		if h, ok := am.keyHash(node, f); ok {
			idx[h] = append(idx[h], id)
		}
	}
	am.index[node] = idx
}

// keyHash resolves node's join variables to fields via node.pattern's
// bindings, reads them off f, and hashes the result. ok is false when
// node has an empty join key or f is missing a bound field.
func (am *alphaMemory) keyHash(node *joinNode, f *Fact) (uint64, bool) {
	if len(node.joinVars) == 0 {
		return 0, false
	}
	vals := make([]Value, len(node.joinVars))
	for i, v := range node.joinVars {
		field, ok := node.pattern.fieldForVar(v)
		if !ok {
			return 0, false
		}
		val, ok := f.Field(field)
		if !ok {
			return 0, false
		}
		vals[i] = val
	}
	h, err := hashValues(vals)
	if err != nil {
		return 0, false
	}
	return h, true
}

// lookup returns the fact ids matching keyHash for the given subscriber,
// or all resident ids when the subscriber has an empty join key
// (Cartesian product, spec §4.4).
func (am *alphaMemory) lookup(node *joinNode, keyHash uint64, hasKey bool) []uint64 {
	if !hasKey {
		out := make([]uint64, 0, len(am.ids))
		for id := range am.ids {
			out = append(out, id)
		}
		return out
	}
	return am.index[node][keyHash]
}

// AlphaNetwork owns every alpha memory in an engine, keyed by (fact
// type, canonical constraint set) for sharing (spec §4.2/§4.3/§9).
type AlphaNetwork struct {
	mu     sync.Mutex
	byType map[string][]*alphaMemory
	byKey  map[uint64]*alphaMemory
}

func newAlphaNetwork() *AlphaNetwork {
	return &AlphaNetwork{
		byType: map[string][]*alphaMemory{},
		byKey:  map[uint64]*alphaMemory{},
	}
}

// intern looks up or creates the alpha memory for (factType, cs),
// registering it in the per-type subscriber list if newly created
// (spec §4.2 step 2).
func (an *AlphaNetwork) intern(factType string, cs []Constraint) (*alphaMemory, error) {
	an.mu.Lock()
	defer an.mu.Unlock()

	canon := canonicalConstraints(cs)
	key, err := canonicalKey(factType, canon)
	if err != nil {
		return nil, fmt.Errorf("alpha network: hashing canonical constraints: %w", err)
	}
	if am, ok := an.byKey[key]; ok {
		return am, nil
	}
	am := newAlphaMemory(factType, canon)
	an.byKey[key] = am
	an.byType[factType] = append(an.byType[factType], am)
	return am, nil
}

// assert propagates a newly declared fact through every alpha memory
// subscribed to its type (spec §4.3).
func (an *AlphaNetwork) assert(f *Fact) error {
	an.mu.Lock()
	memories := append([]*alphaMemory(nil), an.byType[f.Type]...)
	an.mu.Unlock()

	for _, am := range memories {
		ok, err := am.matches(f)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		an.mu.Lock()
		am.ids[f.ID] = f
		for node, idx := range am.index {
			if h, hasKey := am.keyHash(node, f); hasKey {
				idx[h] = append(idx[h], f.ID)
			}
		}
		subs := append([]*joinNode(nil), am.subscribers...)
		an.mu.Unlock()

		Debug(fmt.Sprintf("alpha::assert type:%s id:%d matched memory(fields:%v)", f.Type, f.ID, am.constraints))
		for _, node := range subs {
			if err := node.rightActivation(f.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

// retract withdraws a fact from every alpha memory that held it,
// notifying downstream joins to withdraw dependent tokens (spec §4.3).
func (an *AlphaNetwork) retract(f *Fact) error {
	an.mu.Lock()
	memories := append([]*alphaMemory(nil), an.byType[f.Type]...)
	an.mu.Unlock()

	for _, am := range memories {
		an.mu.Lock()
		_, present := am.ids[f.ID]
		if present {
			delete(am.ids, f.ID)
			for node, idx := range am.index {
				if h, hasKey := am.keyHash(node, f); hasKey {
					idx[h] = removeID(idx[h], f.ID)
				}
			}
		}
		subs := append([]*joinNode(nil), am.subscribers...)
		an.mu.Unlock()

		if !present {
			continue
		}
		Debug(fmt.Sprintf("alpha::retract type:%s id:%d withdrawn from memory(fields:%v)", f.Type, f.ID, am.constraints))
		for _, node := range subs {
			node.rightDeactivation(f.ID)
		}
	}
	return nil
}

// reset empties every alpha memory's contents, keeping the compiled
// network structure intact (spec §6.2).
func (an *AlphaNetwork) reset() {
	an.mu.Lock()
	defer an.mu.Unlock()
	for _, memories := range an.byType {
		for _, am := range memories {
			am.ids = map[uint64]*Fact{}
			for node := range am.index {
				am.index[node] = map[uint64][]uint64{}
			}
		}
	}
}

func removeID(ids []uint64, id uint64) []uint64 {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
