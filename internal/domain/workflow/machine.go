package workflow

import (
	"context"
	"fmt"
	"sort"
)

// Definition is the closed state set and transition table of one entity kind.
// It is immutable once built and safe for concurrent use.
type Definition struct {
	name        string
	states      map[State]bool
	order       []State
	terminal    map[State]bool
	internal    map[Trigger]bool
	transitions map[State]map[Trigger]State
}

// Name returns the kind the definition belongs to
func (d *Definition) Name() string {
	return d.name
}

// IsValid reports whether the state belongs to this kind
func (d *Definition) IsValid(s State) bool {
	return d.states[s]
}

// IsTerminal reports whether no trigger leaves the state
func (d *Definition) IsTerminal(s State) bool {
	return d.terminal[s]
}

// IsInternal reports whether the trigger is fired by the engine only
func (d *Definition) IsInternal(t Trigger) bool {
	return d.internal[t]
}

// States returns every legal state in a stable order
func (d *Definition) States() []State {
	return append([]State(nil), d.order...)
}

// Triggers returns every trigger used anywhere in the table, sorted
func (d *Definition) Triggers() []Trigger {
	seen := make(map[Trigger]bool)
	for _, byTrigger := range d.transitions {
		for t := range byTrigger {
			seen[t] = true
		}
	}
	return sortedTriggers(seen)
}

// Target returns the state a trigger leads to from the given state
func (d *Definition) Target(from State, trigger Trigger) (State, bool) {
	to, ok := d.transitions[from][trigger]
	return to, ok
}

// Machine starts a state machine positioned at the given state
func (d *Definition) Machine(current State) (StateMachine, error) {
	if !d.IsValid(current) {
		return nil, fmt.Errorf("%w: %s is not a %s state", ErrInvalidState, current, d.name)
	}
	return &stateMachine{def: d, currentState: current}, nil
}

// StateMachine tracks the current state of one entity and validates transitions
type StateMachine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger is permitted in the current state
	CanFire(trigger Trigger) bool

	// Fire attempts to execute the trigger, transitioning to the new state if allowed
	Fire(ctx context.Context, trigger Trigger) error

	// PermittedTriggers returns the triggers configured for the current state, sorted
	PermittedTriggers() []Trigger
}

type stateMachine struct {
	def          *Definition
	currentState State
}

func (m *stateMachine) State() State {
	return m.currentState
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	_, ok := m.def.Target(m.currentState, trigger)
	return ok
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	to, ok := m.def.Target(m.currentState, trigger)
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from %s %s", ErrInvalidTransition, trigger, m.def.name, m.currentState)
	}
	m.currentState = to
	return nil
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	seen := make(map[Trigger]bool)
	for t := range m.def.transitions[m.currentState] {
		seen[t] = true
	}
	return sortedTriggers(seen)
}

func sortedTriggers(set map[Trigger]bool) []Trigger {
	triggers := make([]Trigger, 0, len(set))
	for t := range set {
		triggers = append(triggers, t)
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}
