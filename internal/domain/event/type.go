package event

// Type identifies the type of domain event
type Type string

const (
	TypeEntityCreated       Type = "entity.created"
	TypeTransitionApplied   Type = "entity.transition_applied"
	TypeNotificationsQueued Type = "notification.queued"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeEntityCreated,
		TypeTransitionApplied,
		TypeNotificationsQueued:
		return true
	default:
		return false
	}
}
