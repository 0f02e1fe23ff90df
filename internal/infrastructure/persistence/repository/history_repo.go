package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// HistoryRepository implements port.HistoryRepository.
// The table rejects UPDATE and DELETE through triggers.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes entries at their sequence numbers. A taken sequence number is a conflict.
func (r *HistoryRepository) Append(ctx context.Context, kind entity.Kind, entityID string, entries ...entity.HistoryEntry) error {
	query := `
		INSERT INTO workflow_history (
			entity_id, entity_kind, seq, action, actor_id, actor_name,
			from_status, to_status, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	exec := getExecutor(ctx, r.db)
	for _, e := range entries {
		_, err := exec.ExecContext(ctx, query,
			entityID,
			kind,
			e.Seq,
			e.Action,
			e.ActorID,
			e.ActorName,
			e.FromStatus,
			e.ToStatus,
			e.Notes,
			e.Timestamp,
		)
		if err != nil {
			r.logger.Error("Failed to append history",
				zap.String("entity_id", entityID),
				zap.Int("seq", e.Seq),
				zap.Error(err))
			return storageError("append history", "append history", err)
		}
	}
	return nil
}

// ListByEntity retrieves the full history of an entity in sequence order
func (r *HistoryRepository) ListByEntity(ctx context.Context, entityID string) ([]entity.HistoryEntry, error) {
	query := `
		SELECT seq, action, actor_id, actor_name, from_status, to_status, notes, created_at
		FROM workflow_history
		WHERE entity_id = ?
		ORDER BY seq ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, entityID)
	if err != nil {
		r.logger.Error("Failed to get history", zap.String("entity_id", entityID), zap.Error(err))
		return nil, apperr.StorageUnavailable("list history", fmt.Errorf("failed to get history: %w", err))
	}
	defer rows.Close()

	var entries []entity.HistoryEntry
	for rows.Next() {
		var (
			e          entity.HistoryEntry
			fromStatus string
			toStatus   string
		)
		if err := rows.Scan(&e.Seq, &e.Action, &e.ActorID, &e.ActorName, &fromStatus, &toStatus, &e.Notes, &e.Timestamp); err != nil {
			return nil, apperr.StorageUnavailable("list history", fmt.Errorf("failed to scan history: %w", err))
		}
		e.FromStatus = workflow.State(fromStatus)
		e.ToStatus = workflow.State(toStatus)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageUnavailable("list history", fmt.Errorf("failed to iterate history: %w", err))
	}
	return entries, nil
}
