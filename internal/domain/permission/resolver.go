// Package permission decides which workflow operations and fields an actor may use.
//
// Authority is data: a Rule per (kind, state, trigger) names the roles allowed
// to fire the trigger and whether the actor must also own the entity. Adding a
// role or a state is an edit to DefaultRules, not to the engine.
package permission

import (
	"fmt"
	"sort"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// Rule grants a trigger in one state of one kind.
// Empty Roles means no role is required; Owner requires actor == owner.
type Rule struct {
	Kind    entity.Kind
	State   workflow.State
	Trigger workflow.Trigger
	Roles   []entity.Role
	Owner   bool
}

// Decision is the outcome of a permission check
type Decision int

const (
	Allow Decision = iota
	// DenyState means no rule exists for the trigger in the current state
	DenyState
	// DenyRole means the actor holds none of the required roles
	DenyRole
	// DenyOwner means the rule requires the entity owner
	DenyOwner
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyState:
		return "deny_state"
	case DenyRole:
		return "deny_role"
	case DenyOwner:
		return "deny_owner"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Field names a group of fields subject to read rules
type Field string

const FieldPrices Field = "prices"

// FieldRule hides a field from holders of HiddenFor unless they also hold one of UnlessAny
type FieldRule struct {
	Kind      entity.Kind
	Field     Field
	HiddenFor entity.Role
	UnlessAny []entity.Role
}

// ReadTable lists the roles that see every entity of a kind, and the field rules
type ReadTable struct {
	ViewAll map[entity.Kind][]entity.Role
	Fields  []FieldRule
}

type ruleKey struct {
	kind    entity.Kind
	state   workflow.State
	trigger workflow.Trigger
}

// Resolver evaluates the rule and read tables. It holds no mutable state.
type Resolver struct {
	rules   map[ruleKey]Rule
	ordered []Rule
	read    ReadTable
}

// NewResolver indexes the tables. It panics on duplicate rows.
func NewResolver(rules []Rule, read ReadTable) *Resolver {
	r := &Resolver{
		rules:   make(map[ruleKey]Rule, len(rules)),
		ordered: append([]Rule(nil), rules...),
		read:    read,
	}
	for _, rule := range rules {
		k := ruleKey{rule.Kind, rule.State, rule.Trigger}
		if _, dup := r.rules[k]; dup {
			panic(fmt.Sprintf("duplicate permission rule %s/%s/%s", rule.Kind, rule.State, rule.Trigger))
		}
		r.rules[k] = rule
	}
	return r
}

// Default returns a resolver over DefaultRules and DefaultReadTable
func Default() *Resolver {
	return NewResolver(DefaultRules, DefaultReadTable)
}

// Rules returns a copy of the rule table
func (r *Resolver) Rules() []Rule {
	return append([]Rule(nil), r.ordered...)
}

// Decide evaluates whether actor may fire trigger on an entity of kind in state
func (r *Resolver) Decide(actor entity.Actor, kind entity.Kind, state workflow.State, trigger workflow.Trigger, ownerID string) Decision {
	rule, ok := r.rules[ruleKey{kind, state, trigger}]
	if !ok {
		return DenyState
	}
	if len(rule.Roles) > 0 && !actor.HasAnyRole(rule.Roles...) {
		return DenyRole
	}
	if rule.Owner && (actor.ID == "" || actor.ID != ownerID) {
		return DenyOwner
	}
	return Allow
}

// Check is Decide mapped onto the failure taxonomy
func (r *Resolver) Check(op string, actor entity.Actor, kind entity.Kind, state workflow.State, trigger workflow.Trigger, ownerID string) error {
	switch r.Decide(actor, kind, state, trigger, ownerID) {
	case Allow:
		return nil
	case DenyState:
		return apperr.InvalidState(op, "%s is not allowed while %s is %s", trigger, kind, state)
	case DenyOwner:
		return apperr.Forbidden(op, "only the owner may %s this %s", trigger, kind)
	default:
		return apperr.Forbidden(op, "actor %s lacks a role allowed to %s in %s", actor.ID, trigger, state)
	}
}

// Allowed lists the triggers actor may fire right now, sorted
func (r *Resolver) Allowed(actor entity.Actor, kind entity.Kind, state workflow.State, ownerID string) []workflow.Trigger {
	var triggers []workflow.Trigger
	for k := range r.rules {
		if k.kind != kind || k.state != state {
			continue
		}
		if r.Decide(actor, kind, state, k.trigger, ownerID) == Allow {
			triggers = append(triggers, k.trigger)
		}
	}
	sort.Slice(triggers, func(i, j int) bool { return triggers[i] < triggers[j] })
	return triggers
}

// ViewsAll returns true if actor may see every entity of kind
func (r *Resolver) ViewsAll(actor entity.Actor, kind entity.Kind) bool {
	return actor.HasAnyRole(r.read.ViewAll[kind]...)
}

// CanView returns true if actor may read doc
func (r *Resolver) CanView(actor entity.Actor, doc entity.Document) bool {
	if r.ViewsAll(actor, doc.Kind()) {
		return true
	}
	if actor.ID != "" && actor.ID == doc.OwnerID() {
		return true
	}
	for _, id := range doc.Participants() {
		if id == actor.ID {
			return true
		}
	}
	return false
}

// CanSee returns true if the field group is visible to actor
func (r *Resolver) CanSee(actor entity.Actor, kind entity.Kind, field Field) bool {
	for _, rule := range r.read.Fields {
		if rule.Kind != kind || rule.Field != field {
			continue
		}
		if actor.HasRole(rule.HiddenFor) && !actor.HasAnyRole(rule.UnlessAny...) {
			return false
		}
	}
	return true
}
