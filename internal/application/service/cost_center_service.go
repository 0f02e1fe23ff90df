package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/garyjia/procurement-portal/internal/application/port"
	"github.com/garyjia/procurement-portal/internal/domain/apperr"
	"github.com/garyjia/procurement-portal/internal/domain/entity"
	"github.com/garyjia/procurement-portal/pkg/utils"
)

// CostCenterInput is the editable part of a cost center
type CostCenterInput struct {
	Name   string `json:"name"`
	NameEn string `json:"name_en"`
}

// CostCenterService manages cost center reference data.
// Anyone may list; only admins change it.
type CostCenterService interface {
	List(ctx context.Context) ([]*entity.CostCenter, error)
	Create(ctx context.Context, actor entity.Actor, in CostCenterInput) (*entity.CostCenter, error)
	Update(ctx context.Context, actor entity.Actor, id string, in CostCenterInput) (*entity.CostCenter, error)
	Delete(ctx context.Context, actor entity.Actor, id string) error
}

type costCenterServiceImpl struct {
	costCenterRepo port.CostCenterRepository
	logger         Logger
}

// NewCostCenterService creates a new CostCenterService
func NewCostCenterService(costCenterRepo port.CostCenterRepository, logger Logger) CostCenterService {
	return &costCenterServiceImpl{
		costCenterRepo: costCenterRepo,
		logger:         logger,
	}
}

func (s *costCenterServiceImpl) List(ctx context.Context) ([]*entity.CostCenter, error) {
	return s.costCenterRepo.List(ctx)
}

func validateCostCenter(op string, in CostCenterInput) (CostCenterInput, error) {
	in.Name = utils.SanitizeString(in.Name)
	in.NameEn = utils.SanitizeString(in.NameEn)
	if in.Name == "" {
		return in, apperr.InvalidInput(op, "name is required")
	}
	return in, nil
}

func (s *costCenterServiceImpl) Create(ctx context.Context, actor entity.Actor, in CostCenterInput) (*entity.CostCenter, error) {
	const op = "create cost center"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}
	in, err := validateCostCenter(op, in)
	if err != nil {
		return nil, err
	}

	cc := &entity.CostCenter{ID: uuid.NewString(), Name: in.Name, NameEn: in.NameEn}
	if err := s.costCenterRepo.Create(ctx, cc); err != nil {
		return nil, err
	}
	s.logger.Info("Cost center created", "id", cc.ID, "name", cc.Name)
	return cc, nil
}

func (s *costCenterServiceImpl) Update(ctx context.Context, actor entity.Actor, id string, in CostCenterInput) (*entity.CostCenter, error) {
	const op = "update cost center"
	if err := requireAdmin(op, actor); err != nil {
		return nil, err
	}
	in, err := validateCostCenter(op, in)
	if err != nil {
		return nil, err
	}

	cc := &entity.CostCenter{ID: id, Name: in.Name, NameEn: in.NameEn}
	if err := s.costCenterRepo.Update(ctx, cc); err != nil {
		return nil, err
	}
	return cc, nil
}

func (s *costCenterServiceImpl) Delete(ctx context.Context, actor entity.Actor, id string) error {
	if err := requireAdmin("delete cost center", actor); err != nil {
		return err
	}
	if err := s.costCenterRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Cost center deleted", "id", id)
	return nil
}
