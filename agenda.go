package rete

import (
	"container/heap"
	"fmt"
)

// Agenda is the engine's conflict set: every pending Activation,
// ordered by descending salience and, within equal salience, ascending
// sequence number (FIFO tie-break) — spec §5 I1. No example repo in the
// corpus exercises a third-party priority-queue library from its own
// code (see DESIGN.md), so this is built on the standard library's
// container/heap, wrapped with a secondary index so an arbitrary
// activation can be removed in O(log n) when its token is retracted
// (spec §5 I2) rather than only ever popping the max.
type Agenda struct {
	items []*agendaItem
	index map[agendaKey]*agendaItem // Activation.key -> heap slot
	seq   uint64
}

// agendaKey identifies an Activation uniquely across every rule sharing
// this Agenda: the token alone is not enough, since two different rules
// can derive tokens with identical fact-id tuples (e.g. two single-
// pattern rules both matching the same fact yield token [id] for each).
type agendaKey struct {
	rule *CompiledRule
	tok  uint64
}

type agendaItem struct {
	act  *Activation
	slot int
}

func newAgenda() *Agenda {
	return &Agenda{index: map[agendaKey]*agendaItem{}}
}

func (a *Agenda) nextSeq() uint64 {
	a.seq++
	return a.seq
}

// insert assigns act a sequence number and adds it to the agenda.
func (a *Agenda) insert(act *Activation) {
	act.Sequence = a.nextSeq()
	it := &agendaItem{act: act}
	heap.Push(a, it)
	a.index[act.key] = it
	Debug(fmt.Sprintf("agenda::insert rule:%s seq:%d salience:%d", act.Rule.Name, act.Sequence, act.Salience))
}

// remove withdraws act from the agenda if it is still pending. A no-op
// if it has already been popped.
func (a *Agenda) remove(act *Activation) {
	it, ok := a.index[act.key]
	if !ok {
		Debug(fmt.Sprintf("agenda::remove rule:%s seq:%d; already popped, skipping", act.Rule.Name, act.Sequence))
		return
	}
	heap.Remove(a, it.slot)
	delete(a.index, act.key)
	Debug(fmt.Sprintf("agenda::remove rule:%s seq:%d", act.Rule.Name, act.Sequence))
}

// popMax removes and returns the highest-priority activation, or nil if
// the agenda is empty.
func (a *Agenda) popMax() *Activation {
	if len(a.items) == 0 {
		return nil
	}
	it := heap.Pop(a).(*agendaItem)
	delete(a.index, it.act.key)
	Debug(fmt.Sprintf("agenda::popMax rule:%s seq:%d salience:%d", it.act.Rule.Name, it.act.Sequence, it.act.Salience))
	return it.act
}

func (a *Agenda) len() int {
	return len(a.items)
}

// reset empties the agenda entirely (spec §6.2).
func (a *Agenda) reset() {
	a.items = nil
	a.index = map[agendaKey]*agendaItem{}
	a.seq = 0
}

// container/heap.Interface — ordering is salience desc, sequence asc.
func (a *Agenda) Len() int { return len(a.items) }

func (a *Agenda) Less(i, j int) bool {
	ai, aj := a.items[i].act, a.items[j].act
	if ai.Salience != aj.Salience {
		return ai.Salience > aj.Salience
	}
	return ai.Sequence < aj.Sequence
}

func (a *Agenda) Swap(i, j int) {
	a.items[i], a.items[j] = a.items[j], a.items[i]
	a.items[i].slot = i
	a.items[j].slot = j
}

func (a *Agenda) Push(x interface{}) {
	it := x.(*agendaItem)
	it.slot = len(a.items)
	a.items = append(a.items, it)
}

func (a *Agenda) Pop() interface{} {
	old := a.items
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	a.items = old[:n-1]
	return it
}
