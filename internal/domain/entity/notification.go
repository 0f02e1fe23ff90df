package entity

import "time"

// Notification tells a user, or every holder of a role, that an entity needs attention
type Notification struct {
	ID                string     `json:"id"`
	EntityKind        Kind       `json:"entity_kind"`
	RequestID         string     `json:"request_id"`
	RequestNumber     string     `json:"request_number"`
	Message           string     `json:"message"`
	RecipientID       string     `json:"recipient_id,omitempty"`
	RecipientRole     Role       `json:"recipient_role,omitempty"`
	IsRead            bool       `json:"is_read"`
	ReadAt            *time.Time `json:"read_at,omitempty"`
	DeliveryStatus    string     `json:"delivery_status"`
	Attempts          int        `json:"attempts"`
	LastError         string     `json:"last_error,omitempty"`
	DeliveredChannels []string   `json:"delivered_channels,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	DeliveredAt       *time.Time `json:"delivered_at,omitempty"`
}

// DeliveredVia returns true if channel already accepted the notification.
// Retries skip such channels.
func (n *Notification) DeliveredVia(channel string) bool {
	for _, c := range n.DeliveredChannels {
		if c == channel {
			return true
		}
	}
	return false
}

// AddressedTo returns true if the actor is the recipient or holds the recipient role
func (n *Notification) AddressedTo(actor Actor) bool {
	if n.RecipientID != "" {
		return n.RecipientID == actor.ID
	}
	return n.RecipientRole != "" && actor.HasRole(n.RecipientRole)
}
