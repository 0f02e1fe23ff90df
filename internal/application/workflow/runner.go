package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/event"
	domainwf "github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// docStore is the subset of an entity repository the runner uses
type docStore[T entity.Document] interface {
	Create(ctx context.Context, doc T) error
	GetByID(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, doc T, expectedVersion int64) error
}

// step describes one operation on an existing entity
type step[T entity.Document] struct {
	op      string
	trigger domainwf.Trigger
	action  string
	// actionFrom overrides action for specific source states
	actionFrom map[domainwf.State]string
	notes      string
	// apply validates the payload and mutates doc. It runs after the permission check.
	apply func(ctx context.Context, doc T) error
	// follow names an internal trigger to fire right after the main one
	follow func(doc T) (domainwf.Trigger, string, bool)
}

func isNil[T any](v T) bool {
	var zero T
	return any(v) == any(zero)
}

func definitionOf(kind entity.Kind) *domainwf.Definition {
	def, _ := domainwf.DefinitionFor(string(kind))
	return def
}

// classify keeps taxonomy errors and reports everything else as a storage failure
func classify(op string, err error) error {
	if err == nil || apperr.IsClassified(err) {
		return err
	}
	return apperr.StorageUnavailable(op, err)
}

func requireNotes(op, notes string) error {
	if strings.TrimSpace(notes) == "" {
		return apperr.InvalidInput(op, "notes are required")
	}
	return nil
}

// transition runs s against the entity id under the per-entity lock.
// version is the entity version the caller last read; any other stored version fails with Conflict.
func transition[T entity.Document](ctx context.Context, e *Engine, store docStore[T], kind entity.Kind, id string, version int64, actor entity.Actor, s step[T]) (T, error) {
	var (
		zero   T
		result T
		events []*event.Event
		start  = time.Now()
	)

	if version <= 0 {
		return zero, apperr.InvalidInput(s.op, "expected version of %s %s is required", kind, id)
	}

	unlock := e.locks.Lock(id)
	defer unlock()

	err := e.repos.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		doc, err := store.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if isNil(doc) {
			return apperr.NotFound(s.op, "%s %s", kind, id)
		}

		base := doc.Base()
		if base.Version != version {
			return apperr.Conflict(s.op, "%s %s is at version %d, expected %d", kind, id, base.Version, version)
		}

		history, err := e.repos.History.ListByEntity(txCtx, id)
		if err != nil {
			return err
		}
		base.History = history

		from := base.Status
		if err := e.resolver.Check(s.op, actor, kind, from, s.trigger, doc.OwnerID()); err != nil {
			return err
		}

		machine, err := definitionOf(kind).Machine(from)
		if err != nil {
			return apperr.InvalidState(s.op, "%v", err)
		}

		if s.apply != nil {
			if err := s.apply(txCtx, doc); err != nil {
				return err
			}
		}

		if err := machine.Fire(txCtx, s.trigger); err != nil {
			return apperr.InvalidState(s.op, "%v", err)
		}

		now := e.now()
		action := s.action
		if a, ok := s.actionFrom[from]; ok {
			action = a
		}
		entries := []entity.HistoryEntry{base.AppendHistory(entity.HistoryEntry{
			Action:     action,
			ActorID:    actor.ID,
			ActorName:  actor.Name,
			FromStatus: from,
			ToStatus:   machine.State(),
			Notes:      s.notes,
			Timestamp:  now,
		})}
		fired := []domainwf.Trigger{s.trigger}

		if s.follow != nil {
			if next, nextAction, ok := s.follow(doc); ok {
				before := machine.State()
				if err := machine.Fire(txCtx, next); err != nil {
					return apperr.InvalidState(s.op, "%v", err)
				}
				entries = append(entries, base.AppendHistory(entity.HistoryEntry{
					Action:     nextAction,
					ActorID:    actor.ID,
					ActorName:  actor.Name,
					FromStatus: before,
					ToStatus:   machine.State(),
					Timestamp:  now,
				}))
				fired = append(fired, next)
			}
		}

		prevVersion := base.Version
		base.Status = machine.State()
		base.UpdatedAt = now

		if err := e.repos.History.Append(txCtx, kind, id, entries...); err != nil {
			return err
		}
		if err := store.Update(txCtx, doc, prevVersion); err != nil {
			return err
		}

		notificationIDs, err := e.enqueue(txCtx, doc, fired...)
		if err != nil {
			return err
		}

		events = append(events, event.NewEvent(event.TypeTransitionApplied, string(kind), id, map[string]interface{}{
			event.KeyTrigger:    string(s.trigger),
			event.KeyFromStatus: string(from),
			event.KeyToStatus:   string(base.Status),
			event.KeyActorID:    actor.ID,
			event.KeyOwnerID:    doc.OwnerID(),
			event.KeyNumber:     doc.Number(),
		}))
		if len(notificationIDs) > 0 {
			events = append(events, event.NewEventWithCorrelation(event.TypeNotificationsQueued, string(kind), id, map[string]interface{}{
				event.KeyNotificationIDs: notificationIDs,
			}, events[0].CorrelationID))
		}

		result = doc
		return nil
	})

	err = classify(s.op, err)
	e.observe(kind, string(s.trigger), id, actor, err, start)
	if err != nil {
		return zero, err
	}

	e.publish(ctx, events)
	return result, nil
}

// create allocates a number and inserts a new draft built by build
func create[T entity.Document](ctx context.Context, e *Engine, store docStore[T], kind entity.Kind, actor entity.Actor, build func(number string) (T, error)) (T, error) {
	const op = "create"
	var (
		zero   T
		result T
		events []*event.Event
		start  = time.Now()
	)

	if actor.ID == "" {
		err := apperr.Forbidden(op, "an identified actor is required")
		e.observe(kind, op, "", actor, err, start)
		return zero, err
	}

	err := e.repos.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		number, err := e.nextNumber(txCtx, kind)
		if err != nil {
			return err
		}

		doc, err := build(number)
		if err != nil {
			return err
		}

		now := e.now()
		base := doc.Base()
		base.ID = e.newID()
		base.Status = domainwf.StateDraft
		base.Version = 1
		base.CreatedAt = now
		base.UpdatedAt = now
		entry := base.AppendHistory(entity.HistoryEntry{
			Action:    entity.ActionCreated,
			ActorID:   actor.ID,
			ActorName: actor.Name,
			ToStatus:  domainwf.StateDraft,
			Timestamp: now,
		})

		if err := store.Create(txCtx, doc); err != nil {
			return err
		}
		if err := e.repos.History.Append(txCtx, kind, base.ID, entry); err != nil {
			return err
		}

		events = append(events, event.NewEvent(event.TypeEntityCreated, string(kind), base.ID, map[string]interface{}{
			event.KeyActorID:  actor.ID,
			event.KeyOwnerID:  doc.OwnerID(),
			event.KeyNumber:   doc.Number(),
			event.KeyToStatus: string(domainwf.StateDraft),
		}))
		result = doc
		return nil
	})

	err = classify(op, err)
	e.observe(kind, op, "", actor, err, start)
	if err != nil {
		return zero, err
	}

	e.publish(ctx, events)
	return result, nil
}

// load reads an entity with its history for a read-only projection
func load[T entity.Document](ctx context.Context, e *Engine, store docStore[T], kind entity.Kind, id string, actor entity.Actor) (T, error) {
	const op = "get"
	var zero T

	doc, err := store.GetByID(ctx, id)
	if err != nil {
		return zero, classify(op, err)
	}
	if isNil(doc) {
		return zero, apperr.NotFound(op, "%s %s", kind, id)
	}
	if !e.resolver.CanView(actor, doc) {
		return zero, apperr.Forbidden(op, "actor %s may not view %s %s", actor.ID, kind, id)
	}

	history, err := e.repos.History.ListByEntity(ctx, id)
	if err != nil {
		return zero, classify(op, err)
	}
	doc.Base().History = history
	return doc, nil
}

func (e *Engine) observe(kind entity.Kind, trigger, id string, actor entity.Actor, err error, start time.Time) {
	outcome := apperr.Code(err)
	if e.metrics != nil {
		e.metrics.ObserveTransition(string(kind), trigger, outcome, time.Since(start))
	}
	if e.logger == nil {
		return
	}
	if isStorageFailure(err) {
		e.logger.Error("Workflow operation failed",
			"kind", kind,
			"trigger", trigger,
			"entity_id", id,
			"actor_id", actor.ID,
			"error", err,
		)
		return
	}
	e.logger.Info("Workflow operation",
		"kind", kind,
		"trigger", trigger,
		"entity_id", id,
		"actor_id", actor.ID,
		"outcome", outcome,
	)
}

func isStorageFailure(err error) bool {
	return apperr.KindOf(err) == apperr.ErrStorageUnavailable
}

func (e *Engine) publish(ctx context.Context, events []*event.Event) {
	if e.dispatcher == nil {
		return
	}
	for _, evt := range events {
		e.dispatcher.DispatchAsync(ctx, evt)
	}
}
