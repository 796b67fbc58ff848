package rete

import (
	"fmt"
	"sync"

	"github.com/asaskevich/EventBus"
)

const (
	statusReady    = "READY"
	statusRunning  = "RUNNING"
	statusFinished = "FINISHED"
)

// EngineOptions configures a new Engine, mirroring the teacher's
// RuleEngineOptions (shared_types.go) generalized to this spec's
// validator/type-registry boundary.
type EngineOptions struct {
	Validator FactValidator
	Types     *TypeRegistry
}

func DefaultEngineOptions() EngineOptions {
	return EngineOptions{Validator: PermissiveValidator{}}
}

// Engine is the facade over the compiled Rete network: fact registry,
// alpha network, compiled rules, and agenda (spec §4.7). Grounded on the
// teacher's Engine (shared_types.go/engine.go) — Status state machine,
// per-engine EventBus.Bus, mutex-guarded mutation — generalized from
// the teacher's condition-tree evaluator to a standing Rete network
// that runs incrementally as facts are declared/retracted.
type Engine struct {
	mu sync.Mutex

	registry *Registry
	alpha    *AlphaNetwork
	agenda   *Agenda
	types    *TypeRegistry
	validator FactValidator

	rules map[string]*CompiledRule
	bus   EventBus.Bus

	status  string
	running bool // reentrancy guard for Run (spec §5, §7 ReentrancyError)
	halted  bool
}

func NewEngine(opts EngineOptions) *Engine {
	if opts.Validator == nil {
		opts.Validator = PermissiveValidator{}
	}
	types := opts.Types
	if types == nil {
		types = newTypeRegistry()
	}
	return &Engine{
		registry:  newRegistry(),
		alpha:     newAlphaNetwork(),
		agenda:    newAgenda(),
		types:     types,
		validator: opts.Validator,
		rules:     map[string]*CompiledRule{},
		bus:       EventBus.New(),
		status:    statusReady,
	}
}

// DeclareFactType registers the field names legal for factType, enabling
// compile-time unknown-field checks on rules referencing it (spec
// §4.1/§6.1).
func (e *Engine) DeclareFactType(factType string, fields []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.types.declare(factType, fields)
}

// RegisterRule compiles cfg against the current alpha network and adds
// it to the engine (spec §4.2). Rules may be registered after facts
// have already been declared — compileRule primes the new rule's join
// chain with every matching fact already resident.
func (e *Engine) RegisterRule(cfg RuleConfig) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.rules[cfg.Name]; exists {
		return NewSchemaError("DUPLICATE_RULE", fmt.Sprintf("rule %q already registered", cfg.Name))
	}
	rule, err := compileRule(cfg, e.alpha, e.agenda, e.types)
	if err != nil {
		return err
	}
	e.rules[cfg.Name] = rule
	return nil
}

// Declare validates and stores a new fact of factType, assigning it a
// fresh id, and propagates it through the alpha network (spec §4.1,
// §4.3). Bag semantics: declaring the same content twice always yields
// two distinct facts (R2).
func (e *Engine) Declare(factType string, raw []byte) (uint64, error) {
	if err := e.validator.Validate(factType, raw); err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	f := e.registry.declare(factType, raw)
	Debug(fmt.Sprintf("engine::declare type:%s id:%d", f.Type, f.ID))
	if err := e.alpha.assert(f); err != nil {
		return 0, err
	}
	e.bus.Publish("fact:declared", f)
	return f.ID, nil
}

// Retract withdraws a previously declared fact by id, propagating
// removal through the alpha and beta networks and withdrawing any
// activation that depended on it (spec §4.1, §5 I2).
func (e *Engine) Retract(id uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, ok := e.registry.retract(id)
	if !ok {
		return NewUnknownFactError(id)
	}
	Debug(fmt.Sprintf("engine::retract type:%s id:%d", f.Type, f.ID))
	if err := e.alpha.retract(f); err != nil {
		return err
	}
	e.bus.Publish("fact:retracted", f)
	return nil
}

// Reset empties every fact, beta-network token, and pending activation,
// returning the engine to its initial state while keeping all compiled
// rules and declared types intact (spec §6.2).
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.registry.reset()
	e.alpha.reset()
	for _, r := range e.rules {
		for _, j := range r.joins {
			j.output.reset()
		}
		r.terminal.reset()
	}
	e.agenda.reset()
	e.status = statusReady
	e.halted = false
}

// Halt stops a running Run loop before its budget is exhausted (spec
// §4.7, mirrors the teacher's Engine.Stop).
func (e *Engine) Halt() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.halted = true
}

// Run pops and fires activations in agenda order — highest salience
// first, FIFO among ties — until the agenda is empty, maxFires
// activations have fired, or Halt is called, returning the number of
// activations fired (spec §4.7/§5 I1).
//
// An action that panics or returns an error aborts the run immediately,
// preserving all engine state as it stood at that point (§7, the
// redesigned abort-run-preserve-state behavior — see DESIGN.md Open
// Question OQ1) and is reported to the caller as an *ActionError.
// Calling Run from within an action's call stack returns a
// *ReentrancyError instead of deadlocking or corrupting the agenda.
func (e *Engine) Run(maxFires int) (fired int, err error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return 0, NewReentrancyError()
	}
	e.running = true
	e.status = statusRunning
	e.halted = false
	e.mu.Unlock()

	Debug("engine::run started")
	defer func() {
		e.mu.Lock()
		e.running = false
		if err == nil {
			e.status = statusFinished
		}
		e.mu.Unlock()
	}()

	for maxFires <= 0 || fired < maxFires {
		e.mu.Lock()
		if e.halted {
			e.mu.Unlock()
			break
		}
		act := e.agenda.popMax()
		e.mu.Unlock()
		if act == nil {
			break
		}

		ran, fireErr := e.fire(act)
		if fireErr != nil {
			act.Rule.fireFailure(fireErr)
			return fired, fireErr
		}
		if ran {
			fired++
		}
	}
	Debug(fmt.Sprintf("engine::run completed fired:%d", fired))
	return fired, nil
}

// fire resolves act's token to its underlying facts and invokes the
// rule's action, recovering a panic into an *ActionError (§7). ran is
// true only when the action ran and returned without error.
func (e *Engine) fire(act *Activation) (ran bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewActionError(act.Rule.Name, fmt.Errorf("panic: %v", r))
		}
	}()

	facts := make([]*Fact, len(act.Token.Facts))
	for i, id := range act.Token.Facts {
		f, ok := e.registry.get(id)
		if !ok {
			// A fact backing this token vanished without the retraction
			// path having withdrawn the activation — defensively skip
			// rather than fire against a stale token.
			return false, nil
		}
		facts[i] = f
	}

	Debug(fmt.Sprintf("engine::fire rule:%s facts:%v", act.Rule.Name, act.Token.Facts))
	if actErr := act.Rule.Action(facts, act.Token.Env); actErr != nil {
		return false, NewActionError(act.Rule.Name, actErr)
	}
	act.Rule.fireSuccess(facts, act.Token.Env)
	return true, nil
}

// Status reports the engine's current lifecycle state.
func (e *Engine) Status() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// AgendaLen reports the number of pending activations (used by tests
// and callers polling for quiescence).
func (e *Engine) AgendaLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.agenda.len()
}

// Bus exposes the engine's lifecycle EventBus for subscribers observing
// fact declaration/retraction independent of any one rule's own bus.
func (e *Engine) Bus() EventBus.Bus {
	return e.bus
}
