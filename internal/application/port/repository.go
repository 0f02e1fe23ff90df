package port

import (
	"context"
	"time"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// ListFilter narrows entity listings. Zero values mean no restriction.
type ListFilter struct {
	OwnerID string
	// ParticipantID also matches entities where the user takes part without owning them
	ParticipantID string
	Status        workflow.State
	Limit         int
	Offset        int
}

// GoodsRequestRepository defines persistence operations for GoodsRequest.
// GetByID returns (nil, nil) when the id is unknown. Returned entities carry no history.
type GoodsRequestRepository interface {
	Create(ctx context.Context, req *entity.GoodsRequest) error
	GetByID(ctx context.Context, id string) (*entity.GoodsRequest, error)
	// Update persists req only if the stored version equals expectedVersion
	Update(ctx context.Context, req *entity.GoodsRequest, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter) ([]*entity.GoodsRequest, error)
}

// PaymentRequestRepository defines persistence operations for PaymentRequest
type PaymentRequestRepository interface {
	Create(ctx context.Context, req *entity.PaymentRequest) error
	GetByID(ctx context.Context, id string) (*entity.PaymentRequest, error)
	Update(ctx context.Context, req *entity.PaymentRequest, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter) ([]*entity.PaymentRequest, error)
}

// ProjectProposalRepository defines persistence operations for ProjectProposal
type ProjectProposalRepository interface {
	Create(ctx context.Context, p *entity.ProjectProposal) error
	GetByID(ctx context.Context, id string) (*entity.ProjectProposal, error)
	Update(ctx context.Context, p *entity.ProjectProposal, expectedVersion int64) error
	List(ctx context.Context, filter ListFilter) ([]*entity.ProjectProposal, error)
	// ProjectCodeExists reports whether another proposal already holds the code
	ProjectCodeExists(ctx context.Context, code, excludeID string) (bool, error)
}

// HistoryRepository is the append-only audit log. There is no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, kind entity.Kind, entityID string, entries ...entity.HistoryEntry) error
	ListByEntity(ctx context.Context, entityID string) ([]entity.HistoryEntry, error)
}

// NotificationRepository defines persistence operations for Notification
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	// ListForRecipient returns notifications addressed to the user or to one of roles, newest first
	ListForRecipient(ctx context.Context, userID string, roles []entity.Role, limit int) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string, roles []entity.Role) (int, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	// ListUndelivered returns failed notifications below maxAttempts plus pending ones
	// created at or before pendingBefore, oldest first. Newer pending rows belong to
	// the delivery that queued them.
	ListUndelivered(ctx context.Context, maxAttempts int, pendingBefore time.Time, limit int) ([]*entity.Notification, error)
	// RecordAttempt increments attempts in place and stores the outcome. A sent row stays sent.
	RecordAttempt(ctx context.Context, id, status string, deliveredChannels []string, lastError string, deliveredAt *time.Time) error
}

// UserRepository defines persistence operations for the user directory
type UserRepository interface {
	Upsert(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
	Delete(ctx context.Context, id string) error
}

// CostCenterRepository defines persistence operations for CostCenter
type CostCenterRepository interface {
	Create(ctx context.Context, cc *entity.CostCenter) error
	GetByID(ctx context.Context, id string) (*entity.CostCenter, error)
	List(ctx context.Context) ([]*entity.CostCenter, error)
	Update(ctx context.Context, cc *entity.CostCenter) error
	Delete(ctx context.Context, id string) error
}

// SequenceRepository hands out gap-free counters for human-readable numbers
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
