package service

import (
	"context"
	"strings"

	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/apperror"
	"rentdesk_backend/pkg/utils/validation"
)

type UnitTypeInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Category    string `json:"category" validate:"required,enum=type_category"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

// UnitTypeService manages the rental unit type table. Active property
// category entries are the accepted property types.
type UnitTypeService struct {
	store repository.Store
}

func NewUnitTypeService(store repository.Store) *UnitTypeService {
	return &UnitTypeService{store: store}
}

func (s *UnitTypeService) List(ctx context.Context, category string) ([]model.RentalUnitType, error) {
	return s.store.ListRentalUnitTypes(ctx, repository.TypeFilter{Category: category})
}

func (s *UnitTypeService) Create(ctx context.Context, user *model.User, in UnitTypeInput) (*model.RentalUnitType, error) {
	t := &model.RentalUnitType{IsActive: true}
	return t, s.save(ctx, user, t, in)
}

func (s *UnitTypeService) Update(ctx context.Context, user *model.User, id uint, in UnitTypeInput) (*model.RentalUnitType, error) {
	t, err := s.store.GetRentalUnitType(ctx, id)
	if err != nil {
		return nil, err
	}
	return t, s.save(ctx, user, t, in)
}

func (s *UnitTypeService) save(ctx context.Context, user *model.User, t *model.RentalUnitType, in UnitTypeInput) error {
	if !user.IsAdmin() {
		return apperror.Forbidden("Only administrators can manage rental unit types")
	}
	in.Name = strings.TrimSpace(in.Name)
	if errs := validation.Struct(in); errs != nil {
		return apperror.Validation(errs)
	}

	in.Category = canonical(refdata.TypeCategory, in.Category)

	existing, err := s.store.ListRentalUnitTypes(ctx, repository.TypeFilter{Category: in.Category})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.ID != t.ID && strings.EqualFold(e.Name, in.Name) {
			return apperror.Validation(map[string][]string{"name": {"A type with this name already exists in this category."}})
		}
	}

	t.Name = in.Name
	t.Category = model.TypeCategory(in.Category)
	t.Description = in.Description
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	return s.store.SaveRentalUnitType(ctx, t)
}
