package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/sqlite"
)

// getExecutor returns the transaction carried by ctx, or db
func getExecutor(ctx context.Context, db *sql.DB) sqlite.Executor {
	return sqlite.ExecutorFrom(ctx, db)
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// storageError classifies a driver error for callers
func storageError(op, action string, err error) error {
	if isUniqueViolation(err) {
		return apperr.Conflict(op, "%s: duplicate key", action)
	}
	return apperr.StorageUnavailable(op, fmt.Errorf("failed to %s: %w", action, err))
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
