package rete

import "fmt"

// Activation is one pending rule firing: a rule paired with a token
// that has fully matched all of its patterns, ranked for agenda
// ordering by salience then insertion sequence (spec §3, §5 I1).
type Activation struct {
	Rule     *CompiledRule
	Token    *Token
	Salience int32
	Sequence uint64

	key agendaKey // (rule, tokenKey(Token.Facts)) — see agendaKey
}

// TerminalNode sits at the end of a rule's join chain. It turns newly
// completed tokens into Activations and inserts them into the shared
// Agenda, and withdraws an Activation (refraction, spec §5 I2) when the
// underlying token is retracted before it fires. Grounded on the
// teacher's RuleResult (rule_result.go) as "the outcome of a rule
// matching", generalized from a one-shot evaluation result to a
// standing, revocable agenda entry.
type TerminalNode struct {
	rule   *CompiledRule
	agenda *Agenda

	live map[uint64]*Activation // tokenKey -> live activation for this rule
}

func newTerminalNode(rule *CompiledRule, agenda *Agenda) *TerminalNode {
	return &TerminalNode{
		rule:   rule,
		agenda: agenda,
		live:   map[uint64]*Activation{},
	}
}

// tokenAdded creates and schedules a new activation for tok. At most
// one activation is ever live per (rule, token) — refractoriness (spec
// §5 I2) — so a token that somehow re-arrives while its prior
// activation is still pending (or already fired and not yet retracted)
// is not rescheduled.
func (t *TerminalNode) tokenAdded(tok *Token) error {
	k := tokenKey(tok.Facts)
	if _, exists := t.live[k]; exists {
		return nil
	}
	act := &Activation{
		Rule:     t.rule,
		Token:    tok,
		Salience: t.rule.Salience,
		key:      agendaKey{rule: t.rule, tok: k},
	}
	t.live[k] = act
	t.agenda.insert(act)
	Debug(fmt.Sprintf("terminal::tokenAdded rule:%s facts:%v", t.rule.Name, tok.Facts))
	return nil
}

// tokenRemoved withdraws tok's activation, if still pending, from the
// agenda (spec §5 I2: retracting a fact removes any activation whose
// token depends on it, fired or not-yet-fired).
func (t *TerminalNode) tokenRemoved(tok *Token) {
	k := tokenKey(tok.Facts)
	act, ok := t.live[k]
	if !ok {
		return
	}
	delete(t.live, k)
	t.agenda.remove(act)
	Debug(fmt.Sprintf("terminal::tokenRemoved rule:%s facts:%v", t.rule.Name, tok.Facts))
}

// reset drops every live activation for this rule, without touching
// the agenda directly — callers reset the whole Agenda separately
// (spec §6.2, Engine.Reset).
func (t *TerminalNode) reset() {
	t.live = map[uint64]*Activation{}
}
