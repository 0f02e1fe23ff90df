package entity

import (
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// HistoryEntry is one row of an entity's append-only audit trail
type HistoryEntry struct {
	Seq        int            `json:"seq"`
	Action     string         `json:"action"`
	ActorID    string         `json:"actor_id"`
	ActorName  string         `json:"actor_name"`
	FromStatus workflow.State `json:"from_status,omitempty"`
	ToStatus   workflow.State `json:"to_status"`
	Notes      string         `json:"notes,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}
