package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
)

// SequenceRepository implements port.SequenceRepository on the sequences table.
// Called inside the caller's transaction, a rolled back operation also rolls back its number.
type SequenceRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSequenceRepository creates a new sequence repository
func NewSequenceRepository(db *sql.DB, logger *zap.Logger) port.SequenceRepository {
	return &SequenceRepository{
		db:     db,
		logger: logger,
	}
}

// Next increments the named counter and returns the new value, starting at 1
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	query := `
		INSERT INTO sequences (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
		RETURNING value
	`

	var value int64
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, name).Scan(&value); err != nil {
		r.logger.Error("Failed to advance sequence", zap.String("name", name), zap.Error(err))
		return 0, apperr.StorageUnavailable("next sequence", fmt.Errorf("failed to advance sequence %s: %w", name, err))
	}
	return value, nil
}
