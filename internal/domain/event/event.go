package event

import (
	"time"

	"github.com/google/uuid"
)

// Payload keys shared by publishers and handlers
const (
	KeyTrigger         = "trigger"
	KeyFromStatus      = "from_status"
	KeyToStatus        = "to_status"
	KeyActorID         = "actor_id"
	KeyOwnerID         = "owner_id"
	KeyNumber          = "number"
	KeyNotificationIDs = "notification_ids"
)

// Event is a fact published after a workflow transaction commits
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	EntityKind    string                 `json:"entity_kind"`
	EntityID      string                 `json:"entity_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with a fresh ID and correlation chain
func NewEvent(eventType Type, entityKind, entityID string, payload map[string]interface{}) *Event {
	id := uuid.NewString()
	return NewEventWithCorrelation(eventType, entityKind, entityID, payload, id)
}

// NewEventWithCorrelation creates an event linked to an existing correlation chain
func NewEventWithCorrelation(eventType Type, entityKind, entityID string, payload map[string]interface{}, correlationID string) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		EntityKind:    entityKind,
		EntityID:      entityID,
		Payload:       payload,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
	}
}

// WithPayload returns a copy of the event with an added payload key-value pair
func (e *Event) WithPayload(key string, value interface{}) *Event {
	newPayload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		newPayload[k] = v
	}
	newPayload[key] = value

	cp := *e
	cp.Payload = newPayload
	return &cp
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadStrings retrieves a string list from the payload.
// Lists decoded from JSON arrive as []interface{} and are converted.
func (e *Event) GetPayloadStrings(key string) []string {
	switch v := e.Payload[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
