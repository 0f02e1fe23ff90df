package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

func TestUserRepository(t *testing.T) {
	db, logger := setupTestDB(t)
	repo := NewUserRepository(db.DB, logger)
	ctx := context.Background()

	alice := &entity.User{ID: "u1", Name: "Alice", Roles: []entity.Role{entity.RoleRequester, entity.RoleProcurement}, CreatedAt: testTime, UpdatedAt: testTime}
	bob := &entity.User{ID: "u2", Name: "Bob", Roles: []entity.Role{entity.RoleProcurement}, LarkOpenID: "ou_bob", CreatedAt: testTime, UpdatedAt: testTime}
	require.NoError(t, repo.Upsert(ctx, alice))
	require.NoError(t, repo.Upsert(ctx, bob))

	got, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []entity.Role{entity.RoleRequester, entity.RoleProcurement}, got.Roles)

	buyers, err := repo.ListByRole(ctx, entity.RoleProcurement)
	require.NoError(t, err)
	require.Len(t, buyers, 2)
	assert.Equal(t, "Alice", buyers[0].Name)
	assert.Equal(t, "ou_bob", buyers[1].LarkOpenID)

	alice.Roles = []entity.Role{entity.RoleRequester}
	require.NoError(t, repo.Upsert(ctx, alice))
	buyers, err = repo.ListByRole(ctx, entity.RoleProcurement)
	require.NoError(t, err)
	assert.Len(t, buyers, 1)

	require.NoError(t, repo.Delete(ctx, "u2"))
	assert.ErrorIs(t, repo.Delete(ctx, "u2"), apperr.ErrNotFound)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []entity.Role{entity.RoleRequester}, all[0].Roles)

	missing, err := repo.GetByID(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCostCenterRepository(t *testing.T) {
	db, logger := setupTestDB(t)
	repo := NewCostCenterRepository(db.DB, logger)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.CostCenter{ID: "c1", Name: "فناوری اطلاعات", NameEn: "IT"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.CostCenter{ID: "c2", Name: "فناوری اطلاعات"}), apperr.ErrConflict)

	require.NoError(t, repo.Update(ctx, &entity.CostCenter{ID: "c1", Name: "IT Dept", NameEn: "IT"}))
	got, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "IT Dept", got.Name)

	assert.ErrorIs(t, repo.Update(ctx, &entity.CostCenter{ID: "zz", Name: "x"}), apperr.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, "c1"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSequenceRepository_Next(t *testing.T) {
	db, logger := setupTestDB(t)
	repo := NewSequenceRepository(db.DB, logger)
	ctx := context.Background()

	first, err := repo.Next(ctx, "goods_request")
	require.NoError(t, err)
	second, err := repo.Next(ctx, "goods_request")
	require.NoError(t, err)
	other, err := repo.Next(ctx, "receipt")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(1), other)
}

func TestSequenceRepository_ConcurrentNextIsUnique(t *testing.T) {
	db, logger := setupTestDB(t)
	repo := NewSequenceRepository(db.DB, logger)
	ctx := context.Background()

	const workers = 8
	results := make(chan int64, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int64
			err := db.WithTransaction(ctx, func(txCtx context.Context) error {
				var err error
				v, err = repo.Next(txCtx, "payment_request")
				return err
			})
			if assert.NoError(t, err) {
				results <- v
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for v := range results {
		assert.False(t, seen[v], "duplicate sequence value %d", v)
		seen[v] = true
	}
	assert.Len(t, seen, workers)
}

func TestSequenceRepository_RollbackReleasesNumber(t *testing.T) {
	db, logger := setupTestDB(t)
	repo := NewSequenceRepository(db.DB, logger)
	ctx := context.Background()

	_ = db.WithTransaction(ctx, func(txCtx context.Context) error {
		_, err := repo.Next(txCtx, "project_proposal")
		require.NoError(t, err)
		return apperr.InvalidInput("create", "title is required")
	})

	v, err := repo.Next(ctx, "project_proposal")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
