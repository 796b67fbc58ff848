package rete

import (
	"fmt"

	"github.com/asaskevich/EventBus"
)

// Action fires when a rule's token survives to the terminal node (spec
// §3's "action"). It receives the resolved facts for the rule's
// patterns, in pattern order, and the bound variable environment.
type Action func(facts []*Fact, env map[string]Value) error

// RuleConfig is the caller-facing description of a rule, compiled into
// a CompiledRule by compileRule. Shaped after the teacher's RuleConfig
// (rule.go's NewRule), generalized from a boolean condition tree to an
// ordered list of Rete patterns (spec §3, §4.2).
type RuleConfig struct {
	Name     string
	Salience int32 // default 0; higher fires first (spec §5 I1)
	Patterns []PatternIR
	Action   Action

	// OnFire and OnError mirror the teacher's onSuccess/onFailure rule
	// callbacks (rule.go NewRule), published over the rule's own
	// EventBus.Bus rather than invoked directly, so multiple observers
	// can subscribe independently.
	OnFire  func(facts []*Fact, env map[string]Value)
	OnError func(err error)
}

// CompiledRule is a rule after compilation: its patterns have been
// turned into a chain of interned alpha memories and join nodes
// terminating in a TerminalNode (spec §4.2).
type CompiledRule struct {
	Name     string
	Salience int32
	Patterns []PatternIR
	Action   Action

	bus      EventBus.Bus
	joins    []*joinNode
	terminal *TerminalNode
}

// fireSuccess and fireFailure publish the rule's lifecycle events,
// following the teacher's per-rule EventBus convention (rule.go:
// bus.Publish("success"/"failure", ...)).
func (r *CompiledRule) fireSuccess(facts []*Fact, env map[string]Value) {
	r.bus.Publish("success", facts, env)
}

func (r *CompiledRule) fireFailure(err error) {
	r.bus.Publish("failure", err)
}

// compileRule builds a rule's join chain against an existing alpha
// network and attaches a fresh TerminalNode, following spec §4.2's
// compile-time algorithm:
//  1. canonicalize and intern each pattern's alpha memory
//  2. compute Vars(<=i-1) cumulatively and each pattern's own bound vars
//  3. join key for pattern i = Vars(<=i-1) ∩ boundVars(pattern i)
//  4. chain join nodes, dummy top for pattern 0
//  5. attach the terminal node to the last join node's output
//
// Compile-time SchemaError checks (B2): an ordering operator (lt/lte/
// gt/gte) against a non-ordered literal kind is rejected regardless of
// whether any TypeRegistry is declared, since it can never succeed.
func compileRule(cfg RuleConfig, an *AlphaNetwork, agenda *Agenda, types *TypeRegistry) (*CompiledRule, error) {
	if cfg.Name == "" {
		return nil, NewSchemaError("MISSING_NAME", "rule has no name")
	}
	if len(cfg.Patterns) == 0 {
		return nil, NewSchemaError("NO_PATTERNS", fmt.Sprintf("rule %q has no patterns", cfg.Name))
	}
	if cfg.Action == nil {
		return nil, NewSchemaError("NO_ACTION", fmt.Sprintf("rule %q has no action", cfg.Name))
	}

	for pi, p := range cfg.Patterns {
		if p.FactType == "" {
			return nil, NewSchemaError("MISSING_FACT_TYPE", fmt.Sprintf("rule %q pattern %d has no fact type", cfg.Name, pi))
		}
		for _, c := range p.Constraints {
			if err := checkConstraintSchema(cfg.Name, pi, c, types, p.FactType); err != nil {
				return nil, err
			}
		}
		if types != nil {
			for _, b := range p.Bindings {
				if err := types.checkField(p.FactType, b.Field); err != nil {
					return nil, fmt.Errorf("rule %q pattern %d: %w", cfg.Name, pi, err)
				}
			}
		}
	}

	rule := &CompiledRule{
		Name:     cfg.Name,
		Salience: cfg.Salience,
		Patterns: cfg.Patterns,
		Action:   cfg.Action,
		bus:      EventBus.New(),
	}
	if cfg.OnFire != nil {
		if err := rule.bus.Subscribe("success", cfg.OnFire); err != nil {
			return nil, fmt.Errorf("rete: subscribing onFire for rule %q: %w", cfg.Name, err)
		}
	}
	if cfg.OnError != nil {
		if err := rule.bus.Subscribe("failure", cfg.OnError); err != nil {
			return nil, fmt.Errorf("rete: subscribing onError for rule %q: %w", cfg.Name, err)
		}
	}

	terminal := newTerminalNode(rule, agenda)
	rule.terminal = terminal

	cumulative := map[string]struct{}{}
	var downstream joinSink = terminal
	joins := make([]*joinNode, len(cfg.Patterns))

	// Build from the last pattern backwards so each join node's
	// downstream is already known, then fix up left/output linkage and
	// join-key computation forwards.
	for i := len(cfg.Patterns) - 1; i >= 0; i-- {
		p := cfg.Patterns[i]
		am, err := an.intern(p.FactType, p.Constraints)
		if err != nil {
			return nil, fmt.Errorf("rete: compiling rule %q pattern %d: %w", cfg.Name, i, err)
		}
		node := &joinNode{
			rule:         rule,
			patternIndex: i,
			pattern:      &cfg.Patterns[i],
			right:        am,
			output:       newBetaMemory(),
			downstream:   downstream,
		}
		joins[i] = node
		downstream = node
		Debug(fmt.Sprintf("rule::compile %q pattern %d interned alpha memory(type:%s)", cfg.Name, i, p.FactType))
	}

	for i, node := range joins {
		p := cfg.Patterns[i]
		bound := p.boundVars()
		var joinVars []string
		for v := range cumulative {
			if _, ok := bound[v]; ok {
				joinVars = append(joinVars, v)
			}
		}
		node.joinVars = joinVars
		if i > 0 {
			node.left = joins[i-1].output
		}
		node.right.addSubscriber(node)
		for v := range bound {
			cumulative[v] = struct{}{}
		}
	}

	// Prime the chain with facts already resident when this rule was
	// compiled — rules may be registered after facts are declared, and
	// the network must behave as if it had seen them all along.
	for _, node := range joins {
		ids := make([]uint64, 0, len(node.right.ids))
		for id := range node.right.ids {
			ids = append(ids, id)
		}
		for _, id := range ids {
			if err := node.rightActivation(id); err != nil {
				return nil, fmt.Errorf("rete: priming rule %q: %w", cfg.Name, err)
			}
		}
	}

	Debug(fmt.Sprintf("rule::compile %q compiled with %d pattern(s)", cfg.Name, len(cfg.Patterns)))
	rule.joins = joins
	return rule, nil
}

// checkConstraintSchema rejects at compile time any constraint that can
// never evaluate meaningfully: an unknown operator, an ordering operator
// over a non-ordered literal kind (B2), or — when types is non-nil — a
// field not declared for the pattern's fact type.
func checkConstraintSchema(ruleName string, patternIndex int, c Constraint, types *TypeRegistry, factType string) error {
	if _, ok := operators[c.Op]; !ok {
		return NewSchemaError("UNKNOWN_OPERATOR", fmt.Sprintf("rule %q pattern %d: unknown operator %q", ruleName, patternIndex, c.Op))
	}
	switch c.Op {
	case OpLt, OpLte, OpGt, OpGte:
		if !c.Literal.Kind.Ordered() {
			return NewSchemaError("UNORDERED_LITERAL", fmt.Sprintf("rule %q pattern %d: operator %q cannot apply to a %s literal", ruleName, patternIndex, c.Op, c.Literal.Kind))
		}
	}
	if types != nil {
		if err := types.checkField(factType, c.Field); err != nil {
			return fmt.Errorf("rule %q pattern %d: %w", ruleName, patternIndex, err)
		}
	}
	return nil
}
