package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// GoodsRequestRepository implements port.GoodsRequestRepository
type GoodsRequestRepository struct {
	store documentStore
}

// NewGoodsRequestRepository creates a new goods request repository
func NewGoodsRequestRepository(db *sql.DB, logger *zap.Logger) port.GoodsRequestRepository {
	return &GoodsRequestRepository{
		store: documentStore{db: db, logger: logger, kind: entity.KindGoodsRequest},
	}
}

func decodeGoodsRequest(data []byte) (entity.Document, error) {
	var req entity.GoodsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// Create inserts a new goods request
func (r *GoodsRequestRepository) Create(ctx context.Context, req *entity.GoodsRequest) error {
	return r.store.insert(ctx, req)
}

// GetByID retrieves a goods request by ID
func (r *GoodsRequestRepository) GetByID(ctx context.Context, id string) (*entity.GoodsRequest, error) {
	doc, err := r.store.get(ctx, id, decodeGoodsRequest)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.(*entity.GoodsRequest), nil
}

// Update persists a goods request guarded by its version
func (r *GoodsRequestRepository) Update(ctx context.Context, req *entity.GoodsRequest, expectedVersion int64) error {
	return r.store.update(ctx, req, expectedVersion)
}

// List retrieves goods requests matching the filter, newest first
func (r *GoodsRequestRepository) List(ctx context.Context, filter port.ListFilter) ([]*entity.GoodsRequest, error) {
	docs, err := r.store.list(ctx, filter, decodeGoodsRequest)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.GoodsRequest, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.(*entity.GoodsRequest))
	}
	return out, nil
}
