package entity

import (
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// Record holds the fields every workflow entity shares
type Record struct {
	ID        string         `json:"id"`
	Status    workflow.State `json:"status"`
	Version   int64          `json:"version"`
	History   []HistoryEntry `json:"history"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Base returns the shared record
func (r *Record) Base() *Record {
	return r
}

// AppendHistory adds an entry at the end of the log and returns it with its sequence number set
func (r *Record) AppendHistory(entry HistoryEntry) HistoryEntry {
	entry.Seq = len(r.History) + 1
	r.History = append(r.History, entry)
	return entry
}

// Document is implemented by GoodsRequest, PaymentRequest and ProjectProposal
type Document interface {
	Base() *Record
	Kind() Kind
	Number() string
	OwnerID() string
	// Participants lists users besides the owner who take part in the workflow
	Participants() []string
}
