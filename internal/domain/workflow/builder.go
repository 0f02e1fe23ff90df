package workflow

import (
	"fmt"
	"sort"
)

// DefinitionBuilder assembles the transition table of one entity kind
type DefinitionBuilder interface {
	// Terminal marks states that accept no further triggers
	Terminal(states ...State) DefinitionBuilder

	// Internal marks triggers that only the engine fires, never an actor
	Internal(triggers ...Trigger) DefinitionBuilder

	// Configure returns a state configuration for the given state
	Configure(state State) StateConfiguration

	// Build freezes the table into an immutable Definition
	Build() *Definition
}

// StateConfiguration configures transitions leaving a specific state
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target state
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitReentry allows a trigger that leaves the state unchanged
	PermitReentry(trigger Trigger) StateConfiguration
}

type stateConfig struct {
	builder     *definitionBuilder
	fromState   State
	transitions map[Trigger]State
}

type definitionBuilder struct {
	name           string
	states         map[State]bool
	terminal       map[State]bool
	internal       map[Trigger]bool
	configurations map[State]*stateConfig
}

// NewBuilder creates a builder for a kind whose legal states are listed up front
func NewBuilder(name string, states ...State) DefinitionBuilder {
	b := &definitionBuilder{
		name:           name,
		states:         make(map[State]bool, len(states)),
		terminal:       make(map[State]bool),
		internal:       make(map[Trigger]bool),
		configurations: make(map[State]*stateConfig),
	}
	for _, s := range states {
		b.states[s] = true
	}
	return b
}

func (b *definitionBuilder) Terminal(states ...State) DefinitionBuilder {
	for _, s := range states {
		b.mustKnow(s)
		b.terminal[s] = true
	}
	return b
}

func (b *definitionBuilder) Internal(triggers ...Trigger) DefinitionBuilder {
	for _, t := range triggers {
		b.internal[t] = true
	}
	return b
}

func (b *definitionBuilder) Configure(state State) StateConfiguration {
	b.mustKnow(state)
	if b.terminal[state] {
		panic(fmt.Sprintf("%s: terminal state %s cannot have transitions", b.name, state))
	}

	config, exists := b.configurations[state]
	if !exists {
		config = &stateConfig{
			builder:     b,
			fromState:   state,
			transitions: make(map[Trigger]State),
		}
		b.configurations[state] = config
	}
	return config
}

func (b *definitionBuilder) Build() *Definition {
	def := &Definition{
		name:        b.name,
		states:      make(map[State]bool, len(b.states)),
		terminal:    make(map[State]bool, len(b.terminal)),
		internal:    make(map[Trigger]bool, len(b.internal)),
		transitions: make(map[State]map[Trigger]State, len(b.configurations)),
	}
	for s := range b.states {
		def.states[s] = true
		def.order = append(def.order, s)
	}
	sort.Slice(def.order, func(i, j int) bool { return def.order[i] < def.order[j] })
	for s := range b.terminal {
		def.terminal[s] = true
	}
	for t := range b.internal {
		def.internal[t] = true
	}
	for state, config := range b.configurations {
		copied := make(map[Trigger]State, len(config.transitions))
		for trigger, to := range config.transitions {
			copied[trigger] = to
		}
		def.transitions[state] = copied
	}
	return def
}

func (b *definitionBuilder) mustKnow(state State) {
	if !b.states[state] {
		panic(fmt.Sprintf("%s: invalid state: %s", b.name, state))
	}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	c.builder.mustKnow(toState)
	if existing, ok := c.transitions[trigger]; ok && existing != toState {
		panic(fmt.Sprintf("%s: trigger %s from %s already targets %s", c.builder.name, trigger, c.fromState, existing))
	}
	c.transitions[trigger] = toState
	return c
}

func (c *stateConfig) PermitReentry(trigger Trigger) StateConfiguration {
	return c.Permit(trigger, c.fromState)
}
