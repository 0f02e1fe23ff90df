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

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert creates or replaces a user and its role set
func (r *UserRepository) Upsert(ctx context.Context, user *entity.User) error {
	exec := getExecutor(ctx, r.db)

	query := `
		INSERT INTO users (id, name, email, lark_open_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			lark_open_id = excluded.lark_open_id,
			updated_at = excluded.updated_at
	`
	_, err := exec.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.LarkOpenID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to upsert user", zap.String("user_id", user.ID), zap.Error(err))
		return storageError("upsert user", "upsert user", err)
	}

	if _, err := exec.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, user.ID); err != nil {
		r.logger.Error("Failed to clear user roles", zap.String("user_id", user.ID), zap.Error(err))
		return storageError("upsert user", "clear user roles", err)
	}
	for _, role := range user.Roles {
		if _, err := exec.ExecContext(ctx,
			`INSERT OR IGNORE INTO user_roles (user_id, role) VALUES (?, ?)`, user.ID, role); err != nil {
			r.logger.Error("Failed to insert user role", zap.String("user_id", user.ID), zap.Error(err))
			return storageError("upsert user", "insert user role", err)
		}
	}
	return nil
}

// GetByID retrieves a user with roles
func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT id, name, email, lark_open_id, created_at, updated_at FROM users WHERE id = ?`

	var u entity.User
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.LarkOpenID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get user", zap.String("user_id", id), zap.Error(err))
		return nil, apperr.StorageUnavailable("get user", fmt.Errorf("failed to get user: %w", err))
	}

	roles, err := r.rolesByUser(ctx, `WHERE user_id = ?`, id)
	if err != nil {
		return nil, err
	}
	u.Roles = roles[u.ID]
	return &u, nil
}

// List retrieves every user ordered by name
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	return r.list(ctx, `SELECT id, name, email, lark_open_id, created_at, updated_at FROM users ORDER BY name, id`)
}

// ListByRole retrieves the users holding role
func (r *UserRepository) ListByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	return r.list(ctx, `
		SELECT u.id, u.name, u.email, u.lark_open_id, u.created_at, u.updated_at
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role = ?
		ORDER BY u.name, u.id
	`, role)
}

// Delete removes a user; roles cascade
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return apperr.StorageUnavailable("delete user", fmt.Errorf("failed to delete user: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return apperr.StorageUnavailable("delete user", fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rows == 0 {
		return apperr.NotFound("delete user", "user %s", id)
	}
	return nil
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.User, error) {
	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, apperr.StorageUnavailable("list users", fmt.Errorf("failed to list users: %w", err))
	}

	var users []*entity.User
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.LarkOpenID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			rows.Close()
			return nil, apperr.StorageUnavailable("list users", fmt.Errorf("failed to scan user: %w", err))
		}
		users = append(users, &u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageUnavailable("list users", fmt.Errorf("failed to iterate users: %w", err))
	}

	if len(users) == 0 {
		return users, nil
	}

	roles, err := r.rolesByUser(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		u.Roles = roles[u.ID]
	}
	return users, nil
}

func (r *UserRepository) rolesByUser(ctx context.Context, where string, args ...interface{}) (map[string][]entity.Role, error) {
	query := `SELECT user_id, role FROM user_roles ` + where + ` ORDER BY user_id, role`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to load user roles", zap.Error(err))
		return nil, apperr.StorageUnavailable("load roles", fmt.Errorf("failed to load roles: %w", err))
	}
	defer rows.Close()

	roles := make(map[string][]entity.Role)
	for rows.Next() {
		var userID, role string
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, apperr.StorageUnavailable("load roles", fmt.Errorf("failed to scan role: %w", err))
		}
		roles[userID] = append(roles[userID], entity.Role(role))
	}
	return roles, rows.Err()
}
