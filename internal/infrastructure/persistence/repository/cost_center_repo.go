package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// CostCenterRepository implements port.CostCenterRepository
type CostCenterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCostCenterRepository creates a new cost center repository
func NewCostCenterRepository(db *sql.DB, logger *zap.Logger) port.CostCenterRepository {
	return &CostCenterRepository{
		db:     db,
		logger: logger,
	}
}

func (r *CostCenterRepository) Create(ctx context.Context, cc *entity.CostCenter) error {
	_, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`INSERT INTO cost_centers (id, name, name_en) VALUES (?, ?, ?)`,
		cc.ID, cc.Name, cc.NameEn)
	if err != nil {
		r.logger.Error("Failed to create cost center", zap.String("name", cc.Name), zap.Error(err))
		return storageError("create cost center", "create cost center", err)
	}
	return nil
}

func (r *CostCenterRepository) GetByID(ctx context.Context, id string) (*entity.CostCenter, error) {
	var cc entity.CostCenter
	err := getExecutor(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, name_en FROM cost_centers WHERE id = ?`, id).Scan(&cc.ID, &cc.Name, &cc.NameEn)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get cost center", zap.String("id", id), zap.Error(err))
		return nil, apperr.StorageUnavailable("get cost center", fmt.Errorf("failed to get cost center: %w", err))
	}
	return &cc, nil
}

func (r *CostCenterRepository) List(ctx context.Context) ([]*entity.CostCenter, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, `SELECT id, name, name_en FROM cost_centers ORDER BY name`)
	if err != nil {
		r.logger.Error("Failed to list cost centers", zap.Error(err))
		return nil, apperr.StorageUnavailable("list cost centers", fmt.Errorf("failed to list cost centers: %w", err))
	}
	defer rows.Close()

	var out []*entity.CostCenter
	for rows.Next() {
		var cc entity.CostCenter
		if err := rows.Scan(&cc.ID, &cc.Name, &cc.NameEn); err != nil {
			return nil, apperr.StorageUnavailable("list cost centers", fmt.Errorf("failed to scan cost center: %w", err))
		}
		out = append(out, &cc)
	}
	return out, rows.Err()
}

func (r *CostCenterRepository) Update(ctx context.Context, cc *entity.CostCenter) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx,
		`UPDATE cost_centers SET name = ?, name_en = ? WHERE id = ?`, cc.Name, cc.NameEn, cc.ID)
	if err != nil {
		r.logger.Error("Failed to update cost center", zap.String("id", cc.ID), zap.Error(err))
		return storageError("update cost center", "update cost center", err)
	}
	return requireRow(result, "update cost center", cc.ID)
}

func (r *CostCenterRepository) Delete(ctx context.Context, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM cost_centers WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete cost center", zap.String("id", id), zap.Error(err))
		return apperr.StorageUnavailable("delete cost center", fmt.Errorf("failed to delete cost center: %w", err))
	}
	return requireRow(result, "delete cost center", id)
}

func requireRow(result sql.Result, op, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.StorageUnavailable(op, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound(op, "%s", id)
	}
	return nil
}
