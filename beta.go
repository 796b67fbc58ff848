package rete

import "fmt"

// Token is an ordered tuple of fact ids representing a partial or
// complete match of a rule's first k patterns, plus the resolved
// variable environment (spec §3). Tokens are value-equal iff their
// id-tuples are equal.
type Token struct {
	Facts []uint64
	Env   map[string]Value
}

func emptyToken() *Token {
	return &Token{Facts: nil, Env: map[string]Value{}}
}

func (t *Token) extend(factID uint64, env map[string]Value) *Token {
	facts := make([]uint64, len(t.Facts)+1)
	copy(facts, t.Facts)
	facts[len(t.Facts)] = factID
	return &Token{Facts: facts, Env: env}
}

// tokenKey returns a stable hash of the token's id-tuple — tokens are
// value-equal iff their id-tuples are equal (spec §3).
func tokenKey(facts []uint64) uint64 {
	h := uint64(1469598103934665603) // FNV offset basis
	for _, id := range facts {
		h ^= id
		h *= 1099511628211
	}
	return h
}

// joinSink receives tokens flowing out of a join node: the next join
// node in the chain, or the rule's terminal node (spec §4.2 step 5).
type joinSink interface {
	tokenAdded(tok *Token) error
	tokenRemoved(tok *Token)
}

// betaMemory holds the tokens living at a join node's output — the
// "beta memory" of spec §3/§4.4. It indexes tokens by the join key the
// *next* join node will need, and keeps the bookkeeping required to
// cascade removals without rescanning the whole set.
type betaMemory struct {
	tokens map[uint64]*Token

	byParent    map[uint64][]*Token // parent token key -> child tokens
	byRightFact map[uint64][]*Token // right-input fact id -> child tokens

	keyIndex map[uint64][]*Token // hash(next join's key values) -> tokens
}

func newBetaMemory() *betaMemory {
	return &betaMemory{
		tokens:      map[uint64]*Token{},
		byParent:    map[uint64][]*Token{},
		byRightFact: map[uint64][]*Token{},
		keyIndex:    map[uint64][]*Token{},
	}
}

func (bm *betaMemory) add(tok *Token, parentKey uint64, rightFact uint64, nextKeyHash uint64, hasNextKey bool) {
	k := tokenKey(tok.Facts)
	bm.tokens[k] = tok
	bm.byParent[parentKey] = append(bm.byParent[parentKey], tok)
	bm.byRightFact[rightFact] = append(bm.byRightFact[rightFact], tok)
	if hasNextKey {
		bm.keyIndex[nextKeyHash] = append(bm.keyIndex[nextKeyHash], tok)
	}
}

func (bm *betaMemory) remove(tok *Token, parentKey uint64, rightFact uint64) {
	k := tokenKey(tok.Facts)
	delete(bm.tokens, k)
	bm.byParent[parentKey] = removeToken(bm.byParent[parentKey], tok)
	bm.byRightFact[rightFact] = removeToken(bm.byRightFact[rightFact], tok)
	for h, list := range bm.keyIndex {
		bm.keyIndex[h] = removeToken(list, tok)
	}
}

func (bm *betaMemory) reset() {
	bm.tokens = map[uint64]*Token{}
	bm.byParent = map[uint64][]*Token{}
	bm.byRightFact = map[uint64][]*Token{}
	bm.keyIndex = map[uint64][]*Token{}
}

func removeToken(list []*Token, tok *Token) []*Token {
	target := tokenKey(tok.Facts)
	for i, t := range list {
		if tokenKey(t.Facts) == target {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// joinNode is one join in a rule's beta chain (spec §4.2 step 4,
// §4.4). joinNode i combines the left input (beta memory of join i-1,
// or the conceptual dummy top token for i==0) with the alpha memory of
// pattern i, using joinVars as the join key.
type joinNode struct {
	rule         *CompiledRule
	patternIndex int
	pattern      *PatternIR
	joinVars     []string // shared vars: Vars(<=i-1) ∩ vars bound by pattern i

	left  *betaMemory // nil for the first join node (dummy top)
	right *alphaMemory

	output     *betaMemory
	downstream joinSink
}

// nextJoinVars reports the join key the *downstream* join node needs,
// so this node's output betaMemory can pre-index for it (spec §3's
// "Beta Memory ... indexed by the join key required by the next join").
func (n *joinNode) nextJoinVars() []string {
	if next, ok := n.downstream.(*joinNode); ok {
		return next.joinVars
	}
	return nil
}

// leftActivation handles a new token arriving from upstream (spec
// §4.4). For the first join node this is never called: its "left" is
// the single, permanent dummy token, handled directly in rightActivation.
func (n *joinNode) tokenAdded(tok *Token) error {
	return n.leftActivation(tok)
}

func (n *joinNode) tokenRemoved(tok *Token) {
	n.leftDeactivation(tok)
}

func (n *joinNode) leftActivation(tok *Token) error {
	if len(n.joinVars) == 0 {
		for id := range n.right.ids {
			if err := n.emit(tok, id); err != nil {
				return err
			}
		}
		return nil
	}
	vals, ok := envValues(tok.Env, n.joinVars)
	if !ok {
		return nil
	}
	h, err := hashValues(vals)
	if err != nil {
		return err
	}
	for _, id := range n.right.lookup(n, h, true) {
		if err := n.emit(tok, id); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) rightActivation(factID uint64) error {
	if n.left == nil {
		// Dummy top: the single permanent empty token crossed with this
		// one new right fact (empty join key, spec §4.4).
		return n.emit(emptyToken(), factID)
	}

	f := n.right.ids[factID]
	if len(n.joinVars) == 0 {
		for _, tok := range n.left.tokens {
			if err := n.emit(tok, factID); err != nil {
				return err
			}
		}
		return nil
	}

	// The join key values, read off the right-hand fact via this
	// pattern's own bindings for the same variable names — this is an
	// equality join, so these must match the values the left memory
	// indexed its tokens under (see emit/nextJoinVars).
	h, ok := n.right.keyHash(n, f)
	if !ok {
		return nil
	}
	for _, tok := range n.left.keyIndex[h] {
		if err := n.emit(tok, factID); err != nil {
			return err
		}
	}
	return nil
}

func (n *joinNode) rightDeactivation(factID uint64) {
	children := append([]*Token(nil), n.output.byRightFact[factID]...)
	for _, child := range children {
		parentKey := tokenKey(child.Facts[:len(child.Facts)-1])
		n.output.remove(child, parentKey, factID)
		n.downstream.tokenRemoved(child)
	}
}

func (n *joinNode) leftDeactivation(parentTok *Token) {
	parentKey := tokenKey(parentTok.Facts)
	children := append([]*Token(nil), n.output.byParent[parentKey]...)
	for _, child := range children {
		rightFact := child.Facts[len(child.Facts)-1]
		n.output.remove(child, parentKey, rightFact)
		n.downstream.tokenRemoved(child)
	}
}

// emit extends parentTok with a newly matched right-hand fact, records
// it in this node's output, and propagates it downstream.
func (n *joinNode) emit(parentTok *Token, factID uint64) error {
	f := n.right.ids[factID]
	if f == nil {
		return fmt.Errorf("rete: emit: fact %d missing from alpha memory", factID)
	}
	env := make(map[string]Value, len(parentTok.Env)+len(n.pattern.Bindings))
	for k, v := range parentTok.Env {
		env[k] = v
	}
	for _, b := range n.pattern.Bindings {
		v, ok := f.Field(b.Field)
		if !ok {
			return NewSchemaError("MISSING_FIELD", fmt.Sprintf("fact %d missing bound field %q", f.ID, b.Field))
		}
		env[b.Var] = v
	}

	child := parentTok.extend(factID, env)
	parentKey := tokenKey(parentTok.Facts)

	nextVars := n.nextJoinVars()
	var nextHash uint64
	hasNext := false
	if len(nextVars) > 0 {
		vals, ok := envValues(env, nextVars)
		if ok {
			h, err := hashValues(vals)
			if err != nil {
				return err
			}
			nextHash, hasNext = h, true
		}
	}

	n.output.add(child, parentKey, factID, nextHash, hasNext)
	Debug(fmt.Sprintf("beta::emit rule:%s pattern:%d facts:%v", n.rule.Name, n.patternIndex, child.Facts))
	return n.downstream.tokenAdded(child)
}

func envValues(env map[string]Value, vars []string) ([]Value, bool) {
	out := make([]Value, len(vars))
	for i, v := range vars {
		val, ok := env[v]
		if !ok {
			return nil, false
		}
		out[i] = val
	}
	return out, true
}
