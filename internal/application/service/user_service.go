package service

import (
	"context"
	"strings"
	"time"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/pkg/utils"
)

// UserInput is the admin-editable part of a directory user
type UserInput struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Roles      []entity.Role `json:"roles"`
	LarkOpenID string        `json:"lark_open_id"`
}

// UserService manages the user directory
type UserService interface {
	// ResolveActor turns an authenticated user id into the acting identity
	ResolveActor(ctx context.Context, userID string) (entity.Actor, error)
	List(ctx context.Context, actor entity.Actor) ([]*entity.User, error)
	Get(ctx context.Context, actor entity.Actor, id string) (*entity.User, error)
	Save(ctx context.Context, actor entity.Actor, in UserInput) (*entity.User, error)
	Delete(ctx context.Context, actor entity.Actor, id string) error
}

type userServiceImpl struct {
	userRepo port.UserRepository
	now      func() time.Time
	logger   Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo port.UserRepository, logger Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger,
	}
}

func requireAdmin(op string, actor entity.Actor) error {
	if !actor.HasRole(entity.RoleAdmin) {
		return apperr.Forbidden(op, "admin role required")
	}
	return nil
}

func (s *userServiceImpl) ResolveActor(ctx context.Context, userID string) (entity.Actor, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return entity.Actor{}, err
	}
	if u == nil {
		return entity.Actor{}, apperr.NotFound("resolve actor", "user %s", userID)
	}
	return u.Actor(), nil
}

func (s *userServiceImpl) List(ctx context.Context, actor entity.Actor) ([]*entity.User, error) {
	if err := requireAdmin("list users", actor); err != nil {
		return nil, err
	}
	return s.userRepo.List(ctx)
}

// Get returns a user. Admins may read anyone; other actors only themselves.
func (s *userServiceImpl) Get(ctx context.Context, actor entity.Actor, id string) (*entity.User, error) {
	const op = "get user"
	if actor.ID != id {
		if err := requireAdmin(op, actor); err != nil {
			return nil, err
		}
	}
	u, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperr.NotFound(op, "user %s", id)
	}
	return u, nil
}

func (s *userServiceImpl) Save(ctx context.Context, actor entity.Actor, in UserInput) (*entity.User, error) {
	const op = "save user"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}

	in.ID = strings.TrimSpace(in.ID)
	in.Name = utils.SanitizeString(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.ID == "" || in.Name == "" {
		return nil, apperr.InvalidInput(op, "id and name are required")
	}
	if in.Email != "" {
		if err := utils.ValidateEmail(in.Email); err != nil {
			return nil, apperr.InvalidInput(op, "%v", err)
		}
	}
	for _, r := range in.Roles {
		if !r.IsValid() {
			return nil, apperr.InvalidInput(op, "unknown role %q", r)
		}
	}

	existing, err := s.userRepo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := &entity.User{
		ID:         in.ID,
		Name:       in.Name,
		Email:      in.Email,
		Roles:      in.Roles,
		LarkOpenID: in.LarkOpenID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if existing != nil {
		u.CreatedAt = existing.CreatedAt
	}
	if u.Roles == nil {
		u.Roles = []entity.Role{}
	}

	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User saved", "user_id", u.ID, "roles", u.Roles, "by", actor.ID)
	return u, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, actor entity.Actor, id string) error {
	const op = "delete user"
	if err := requireAdmin(op, actor); err != nil {
		return err
	}
	if actor.ID == id {
		return apperr.InvalidInput(op, "admins cannot delete themselves")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("User deleted", "user_id", id, "by", actor.ID)
	return nil
}
