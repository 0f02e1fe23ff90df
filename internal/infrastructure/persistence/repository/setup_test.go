package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/internal/domain/workflow"
	"github.com/garyjia/procurement-portal/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/procurement-portal/pkg/database"
)

func setupTestDB(t *testing.T) (*sqlite.DB, *zap.Logger) {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	db, err := database.New(database.Config{Path: filepath.Join(t.TempDir(), "test.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Run(database.Schema()))
	return sqlite.NewDB(db.DB, logger), logger
}

var testTime = time.Date(2025, 4, 1, 9, 30, 0, 0, time.UTC)

func newGoods(id, owner string) *entity.GoodsRequest {
	return &entity.GoodsRequest{
		Record: entity.Record{
			ID:        id,
			Status:    workflow.StateDraft,
			Version:   1,
			CreatedAt: testTime,
			UpdatedAt: testTime,
		},
		RequestNumber: "1404-" + id,
		RequesterID:   owner,
		RequesterName: "Requester " + owner,
		ItemName:      "Laptop",
		Quantity:      2,
		CostCenter:    "IT",
	}
}
