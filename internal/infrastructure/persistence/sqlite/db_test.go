package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tx.db")
	sqlDB, err := sql.Open("sqlite3", "file:"+path+"?_txlock=immediate")
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	_, err = sqlDB.Exec(`CREATE TABLE items (name TEXT NOT NULL)`)
	require.NoError(t, err)

	logger, _ := zap.NewDevelopment()
	return NewDB(sqlDB, logger)
}

func countItems(t *testing.T, db *DB) int {
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&n))
	return n
}

func TestWithTransaction_Commit(t *testing.T) {
	db := setupDB(t)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		_, err := ExecutorFrom(ctx, db.DB).ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, db))
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := setupDB(t)
	boom := errors.New("boom")

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		if _, err := ExecutorFrom(ctx, db.DB).ExecContext(ctx, `INSERT INTO items (name) VALUES ('a')`); err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countItems(t, db))
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	db := setupDB(t)

	err := db.WithTransaction(context.Background(), func(ctx context.Context) error {
		outer := ExecutorFrom(ctx, db.DB)
		return db.WithTransaction(ctx, func(inner context.Context) error {
			assert.Same(t, outer, ExecutorFrom(inner, db.DB))
			_, err := ExecutorFrom(inner, db.DB).ExecContext(inner, `INSERT INTO items (name) VALUES ('b')`)
			return err
		})
	})

	require.NoError(t, err)
	assert.Equal(t, 1, countItems(t, db))
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)

	assert.Panics(t, func() {
		_ = db.WithTransaction(context.Background(), func(ctx context.Context) error {
			_, _ = ExecutorFrom(ctx, db.DB).ExecContext(ctx, `INSERT INTO items (name) VALUES ('c')`)
			panic("boom")
		})
	})
	assert.Equal(t, 0, countItems(t, db))
}

func TestExecutorFrom_NoTransaction(t *testing.T) {
	db := setupDB(t)
	assert.False(t, InTransaction(context.Background()))
	assert.Equal(t, db.DB, ExecutorFrom(context.Background(), db.DB))
}
