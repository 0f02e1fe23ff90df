package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// ProjectProposalRepository implements port.ProjectProposalRepository
type ProjectProposalRepository struct {
	store documentStore
}

// NewProjectProposalRepository creates a new project proposal repository
func NewProjectProposalRepository(db *sql.DB, logger *zap.Logger) port.ProjectProposalRepository {
	return &ProjectProposalRepository{
		store: documentStore{db: db, logger: logger, kind: entity.KindProjectProposal},
	}
}

func decodeProjectProposal(data []byte) (entity.Document, error) {
	var p entity.ProjectProposal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectProposalRepository) Create(ctx context.Context, p *entity.ProjectProposal) error {
	return r.store.insert(ctx, p)
}

func (r *ProjectProposalRepository) GetByID(ctx context.Context, id string) (*entity.ProjectProposal, error) {
	doc, err := r.store.get(ctx, id, decodeProjectProposal)
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.(*entity.ProjectProposal), nil
}

func (r *ProjectProposalRepository) Update(ctx context.Context, p *entity.ProjectProposal, expectedVersion int64) error {
	return r.store.update(ctx, p, expectedVersion)
}

func (r *ProjectProposalRepository) List(ctx context.Context, filter port.ListFilter) ([]*entity.ProjectProposal, error) {
	docs, err := r.store.list(ctx, filter, decodeProjectProposal)
	if err != nil {
		return nil, err
	}
	out := make([]*entity.ProjectProposal, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.(*entity.ProjectProposal))
	}
	return out, nil
}

// ProjectCodeExists checks whether a proposal other than excludeID holds code
func (r *ProjectProposalRepository) ProjectCodeExists(ctx context.Context, code, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM workflow_entities WHERE project_code = ? AND id <> ?`

	var count int
	err := getExecutor(ctx, r.store.db).QueryRowContext(ctx, query, code, excludeID).Scan(&count)
	if err != nil {
		r.store.logger.Error("Failed to check project code", zap.String("project_code", code), zap.Error(err))
		return false, apperr.StorageUnavailable("project code lookup", fmt.Errorf("failed to check project code: %w", err))
	}
	return count > 0, nil
}
