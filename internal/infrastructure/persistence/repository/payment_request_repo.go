package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// PaymentRequestRepository implements port.PaymentRequestRepository
type PaymentRequestRepository struct {
	store documentStore
}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository(db *sql.DB, logger *zap.Logger) port.PaymentRequestRepository {
	return &PaymentRequestRepository{
		store: documentStore{db: db, logger: logger, kind: entity.KindPaymentRequest},
	}
}

func decodePaymentRequest(data []byte) (entity.Document, error) {
	var req entity.PaymentRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *PaymentRequestRepository) Create(ctx context.Context, req *entity.PaymentRequest) error {
	return r.store.insert(ctx, req)
}

func (r *PaymentRequestRepository) GetByID(ctx context.Context, id string) (*entity.PaymentRequest, error) {
	doc, err := r.store.get(ctx, id, decodePaymentRequest)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.(*entity.PaymentRequest), nil
}

func (r *PaymentRequestRepository) Update(ctx context.Context, req *entity.PaymentRequest, expectedVersion int64) error {
	return r.store.update(ctx, req, expectedVersion)
}

func (r *PaymentRequestRepository) List(ctx context.Context, filter port.ListFilter) ([]*entity.PaymentRequest, error) {
	docs, err := r.store.list(ctx, filter, decodePaymentRequest)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.PaymentRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.(*entity.PaymentRequest))
	}
	return out, nil
}
