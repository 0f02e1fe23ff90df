package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
)

// documentStore persists workflow entities in workflow_entities.
// Identity, status and version live in columns; the rest of the entity is a
// JSON document. History is stored separately and never written here.
type documentStore struct {
	db     *sql.DB
	logger *zap.Logger
	kind   entity.Kind
}

type decodeFunc func(data []byte) (entity.Document, error)

const documentColumns = `id, status, version, document, created_at, updated_at`

func encodeDocument(doc entity.Document) ([]byte, error) {
	base := doc.Base()
	history := base.History
	base.History = nil
	defer func() { base.History = history }()
	return json.Marshal(doc)
}

func participantOf(doc entity.Document) string {
	if p := doc.Participants(); len(p) > 0 {
		return p[0]
	}
	return ""
}

func projectCodeOf(doc entity.Document) sql.NullString {
	if p, ok := doc.(*entity.ProjectProposal); ok {
		return nullString(p.ProjectCode)
	}
	return sql.NullString{}
}

func (s *documentStore) insert(ctx context.Context, doc entity.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return apperr.StorageUnavailable("create "+string(s.kind), fmt.Errorf("failed to encode document: %w", err))
	}

	base := doc.Base()
	query := `
		INSERT INTO workflow_entities (
			id, kind, number, owner_id, participant_id, status, version,
			project_code, document, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = getExecutor(ctx, s.db).ExecContext(ctx, query,
		base.ID,
		s.kind,
		doc.Number(),
		doc.OwnerID(),
		participantOf(doc),
		base.Status,
		base.Version,
		projectCodeOf(doc),
		string(data),
		base.CreatedAt,
		base.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("Failed to create entity",
			zap.String("kind", string(s.kind)),
			zap.String("id", base.ID),
			zap.Error(err))
		return storageError("create "+string(s.kind), "create entity", err)
	}
	return nil
}

// update writes doc if the stored version still equals expectedVersion, then bumps the version
func (s *documentStore) update(ctx context.Context, doc entity.Document, expectedVersion int64) error {
	op := "update " + string(s.kind)
	data, err := encodeDocument(doc)
	if err != nil {
		return apperr.StorageUnavailable(op, fmt.Errorf("failed to encode document: %w", err))
	}

	base := doc.Base()
	query := `
		UPDATE workflow_entities SET
			number = ?, owner_id = ?, participant_id = ?, status = ?,
			version = version + 1, project_code = ?, document = ?, updated_at = ?
		WHERE id = ? AND kind = ? AND version = ?
	`

	result, err := getExecutor(ctx, s.db).ExecContext(ctx, query,
		doc.Number(),
		doc.OwnerID(),
		participantOf(doc),
		base.Status,
		projectCodeOf(doc),
		string(data),
		base.UpdatedAt,
		base.ID,
		s.kind,
		expectedVersion,
	)
	if err != nil {
		s.logger.Error("Failed to update entity",
			zap.String("kind", string(s.kind)),
			zap.String("id", base.ID),
			zap.Error(err))
		return storageError(op, "update entity", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.StorageUnavailable(op, fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.Conflict(op, "%s %s changed since version %d", s.kind, base.ID, expectedVersion)
	}

	base.Version = expectedVersion + 1
	return nil
}

func (s *documentStore) get(ctx context.Context, id string, decode decodeFunc) (entity.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM workflow_entities WHERE id = ? AND kind = ?`

	doc, err := s.scan(getExecutor(ctx, s.db).QueryRowContext(ctx, query, id, s.kind), decode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to get entity",
			zap.String("kind", string(s.kind)),
			zap.String("id", id),
			zap.Error(err))
		return nil, apperr.StorageUnavailable("get "+string(s.kind), fmt.Errorf("failed to get entity: %w", err))
	}
	return doc, nil
}

func (s *documentStore) list(ctx context.Context, filter port.ListFilter, decode decodeFunc) ([]entity.Document, error) {
	conds := []string{"kind = ?"}
	args := []interface{}{s.kind}

	switch {
	case filter.OwnerID != "" && filter.ParticipantID != "":
		conds = append(conds, "(owner_id = ? OR participant_id = ?)")
		args = append(args, filter.OwnerID, filter.ParticipantID)
	case filter.OwnerID != "":
		conds = append(conds, "owner_id = ?")
		args = append(args, filter.OwnerID)
	case filter.ParticipantID != "":
		conds = append(conds, "participant_id = ?")
		args = append(args, filter.ParticipantID)
	}
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + documentColumns + ` FROM workflow_entities WHERE ` +
		strings.Join(conds, " AND ") + ` ORDER BY created_at DESC, id`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := getExecutor(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to list entities", zap.String("kind", string(s.kind)), zap.Error(err))
		return nil, apperr.StorageUnavailable("list "+string(s.kind), fmt.Errorf("failed to list entities: %w", err))
	}
	defer rows.Close()

	var docs []entity.Document
	for rows.Next() {
		doc, err := s.scan(rows, decode)
		if err != nil {
			return nil, apperr.StorageUnavailable("list "+string(s.kind), fmt.Errorf("failed to scan entity: %w", err))
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageUnavailable("list "+string(s.kind), fmt.Errorf("failed to iterate entities: %w", err))
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *documentStore) scan(row rowScanner, decode decodeFunc) (entity.Document, error) {
	var (
		id        string
		status    string
		version   int64
		data      string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &status, &version, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	doc, err := decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}

	base := doc.Base()
	base.ID = id
	base.Status = workflow.State(status)
	base.Version = version
	base.History = nil
	base.CreatedAt = createdAt
	base.UpdatedAt = updatedAt
	return doc, nil
}
