package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

// NotificationRepository implements port.NotificationRepository
type NotificationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *sql.DB, logger *zap.Logger) port.NotificationRepository {
	return &NotificationRepository{
		db:     db,
		logger: logger,
	}
}

const notificationColumns = `
	id, entity_kind, request_id, request_number, message, recipient_id, recipient_role,
	is_read, read_at, delivery_status, attempts, last_error, delivered_channels, created_at, delivered_at
`

// Create inserts a new notification
func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES (` + placeholders(15) + `)`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		n.ID,
		n.EntityKind,
		n.RequestID,
		n.RequestNumber,
		n.Message,
		n.RecipientID,
		n.RecipientRole,
		n.IsRead,
		n.ReadAt,
		n.DeliveryStatus,
		n.Attempts,
		n.LastError,
		strings.Join(n.DeliveredChannels, ","),
		n.CreatedAt,
		n.DeliveredAt,
	)
	if err != nil {
		r.logger.Error("Failed to create notification",
			zap.String("request_id", n.RequestID),
			zap.Error(err))
		return storageError("create notification", "create notification", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *NotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`

	n, err := scanNotification(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get notification", zap.String("id", id), zap.Error(err))
		return nil, apperr.StorageUnavailable("get notification", fmt.Errorf("failed to get notification: %w", err))
	}
	return n, nil
}

// recipientClause matches notifications addressed to the user directly or to any of roles
func recipientClause(userID string, roles []entity.Role) (string, []interface{}) {
	args := []interface{}{userID}
	if len(roles) == 0 {
		return "recipient_id = ?", args
	}
	for _, role := range roles {
		args = append(args, role)
	}
	return "(recipient_id = ? OR (recipient_id = '' AND recipient_role IN (" + placeholders(len(roles)) + ")))", args
}

// ListForRecipient retrieves notifications for a user, newest first
func (r *NotificationRepository) ListForRecipient(ctx context.Context, userID string, roles []entity.Role, limit int) ([]*entity.Notification, error) {
	clause, args := recipientClause(userID, roles)
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE ` + clause + ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return r.query(ctx, "list notifications", query, args...)
}

// CountUnread counts unread notifications for a user
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string, roles []entity.Role) (int, error) {
	clause, args := recipientClause(userID, roles)
	query := `SELECT COUNT(*) FROM notifications WHERE is_read = 0 AND ` + clause

	var count int
	if err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count unread notifications", zap.String("user_id", userID), zap.Error(err))
		return 0, apperr.StorageUnavailable("count unread", fmt.Errorf("failed to count notifications: %w", err))
	}
	return count, nil
}

// MarkRead marks a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, ?) WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, at, id)
	if err != nil {
		r.logger.Error("Failed to mark notification read", zap.String("id", id), zap.Error(err))
		return apperr.StorageUnavailable("mark read", fmt.Errorf("failed to mark notification read: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.StorageUnavailable("mark read", fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound("mark read", "notification %s", id)
	}
	return nil
}

// ListUndelivered retrieves notifications the retry worker owes an attempt, oldest first
func (r *NotificationRepository) ListUndelivered(ctx context.Context, maxAttempts int, pendingBefore time.Time, limit int) ([]*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE attempts < ?
		AND (delivery_status = ? OR (delivery_status = ? AND created_at <= ?))
		ORDER BY created_at ASC, id
		LIMIT ?`

	return r.query(ctx, "list undelivered", query,
		maxAttempts, entity.DeliveryStatusFailed, entity.DeliveryStatusPending, pendingBefore, limit)
}

// RecordAttempt stores the outcome of one delivery attempt
func (r *NotificationRepository) RecordAttempt(ctx context.Context, id, status string, deliveredChannels []string, lastError string, deliveredAt *time.Time) error {
	query := `UPDATE notifications SET
		attempts = attempts + 1,
		delivery_status = CASE WHEN delivery_status = ? THEN delivery_status ELSE ? END,
		delivered_channels = ?,
		last_error = CASE WHEN delivery_status = ? THEN last_error ELSE ? END,
		delivered_at = COALESCE(delivered_at, ?)
		WHERE id = ?`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		entity.DeliveryStatusSent, status,
		strings.Join(deliveredChannels, ","),
		entity.DeliveryStatusSent, lastError,
		deliveredAt,
		id,
	)
	if err != nil {
		r.logger.Error("Failed to record notification delivery", zap.String("id", id), zap.Error(err))
		return apperr.StorageUnavailable("record delivery", fmt.Errorf("failed to record delivery: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.StorageUnavailable("record delivery", fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound("record delivery", "notification %s", id)
	}
	return nil
}

func (r *NotificationRepository) query(ctx context.Context, op, query string, args ...interface{}) ([]*entity.Notification, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query notifications", zap.String("op", op), zap.Error(err))
		return nil, apperr.StorageUnavailable(op, fmt.Errorf("failed to query notifications: %w", err))
	}
	defer rows.Close()

	var out []*entity.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, apperr.StorageUnavailable(op, fmt.Errorf("failed to scan notification: %w", err))
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageUnavailable(op, fmt.Errorf("failed to iterate notifications: %w", err))
	}
	return out, nil
}

func scanNotification(row rowScanner) (*entity.Notification, error) {
	var (
		n           entity.Notification
		kind        string
		role        string
		readAt      sql.NullTime
		channels    string
		deliveredAt sql.NullTime
	)
	err := row.Scan(
		&n.ID,
		&kind,
		&n.RequestID,
		&n.RequestNumber,
		&n.Message,
		&n.RecipientID,
		&role,
		&n.IsRead,
		&readAt,
		&n.DeliveryStatus,
		&n.Attempts,
		&n.LastError,
		&channels,
		&n.CreatedAt,
		&deliveredAt,
	)
	if err != nil {
		return nil, err
	}

	n.EntityKind = entity.Kind(kind)
	n.RecipientRole = entity.Role(role)
	if channels != "" {
		n.DeliveredChannels = strings.Split(channels, ",")
	}
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		n.DeliveredAt = &t
	}
	return &n, nil
}
