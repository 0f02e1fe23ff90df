package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

var admin = entity.Actor{ID: "a1", Roles: []entity.Role{entity.RoleAdmin}}

func TestUserService_ResolveActor(t *testing.T) {
	repo := newMockUserRepo(&entity.User{ID: "u1", Name: "Sara", Roles: []entity.Role{entity.RoleRequester, entity.RoleCOO}})
	svc := NewUserService(repo, nopLogger{})

	actor, err := svc.ResolveActor(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "Sara", actor.Name)
	assert.True(t, actor.HasRole(entity.RoleCOO))

	_, err = svc.ResolveActor(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUserService_Save(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMockUserRepo(&entity.User{ID: "u1", Name: "Old", CreatedAt: created})
	svc := NewUserService(repo, nopLogger{})

	tests := []struct {
		name    string
		actor   entity.Actor
		in      UserInput
		wantErr error
	}{
		{"non admin", requester, UserInput{ID: "u2", Name: "Reza"}, apperr.ErrForbidden},
		{"missing name", admin, UserInput{ID: "u2"}, apperr.ErrInvalidInput},
		{"bad email", admin, UserInput{ID: "u2", Name: "Reza", Email: "reza-at-example"}, apperr.ErrInvalidInput},
		{"unknown role", admin, UserInput{ID: "u2", Name: "Reza", Roles: []entity.Role{"ceo"}}, apperr.ErrInvalidInput},
		{"new user", admin, UserInput{ID: "u2", Name: "Reza", Roles: []entity.Role{entity.RoleFinancial}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := svc.Save(context.Background(), tt.actor, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in.Roles, u.Roles)
		})
	}

	u, err := svc.Save(context.Background(), admin, UserInput{ID: "u1", Name: " New "})
	require.NoError(t, err)
	assert.Equal(t, "New", u.Name)
	assert.Equal(t, created, u.CreatedAt, "update keeps creation time")
	assert.NotNil(t, u.Roles)
}

func TestUserService_GetAndDelete(t *testing.T) {
	repo := newMockUserRepo(&entity.User{ID: "u1", Name: "Sara"})
	svc := NewUserService(repo, nopLogger{})
	ctx := context.Background()

	u, err := svc.Get(ctx, requester, "u1")
	require.NoError(t, err, "users may read themselves")
	assert.Equal(t, "Sara", u.Name)

	_, err = svc.Get(ctx, buyer, "u1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.Get(ctx, admin, "ghost")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, requester, "u1"), apperr.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, admin, admin.ID), apperr.ErrInvalidInput)
	require.NoError(t, svc.Delete(ctx, admin, "u1"))
	assert.Equal(t, []string{"u1"}, repo.deleted)

	repo.deleteErr = apperr.NotFound("delete user", "user %s", "u9")
	assert.ErrorIs(t, svc.Delete(ctx, admin, "u9"), apperr.ErrNotFound)
}
