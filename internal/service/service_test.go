package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"rentdesk_backend/internal/importer"
	"rentdesk_backend/internal/model"
	"rentdesk_backend/internal/refdata"
	"rentdesk_backend/internal/repository"
	"rentdesk_backend/pkg/utils/apperror"
)

type fixture struct {
	ctx     context.Context
	store   *repository.MemoryStore
	admin   *model.User
	manager *model.User
	audit   *ImportAudit

	properties *PropertyService
	units      *RentalUnitService
	assets     *AssetService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()

	for _, name := range []string{"Apartment", "Villa"} {
		require.NoError(t, store.SaveRentalUnitType(ctx, &model.RentalUnitType{
			Name: name, Category: model.TypeCategoryProperty, IsActive: true,
		}))
	}

	admin := &model.User{Email: "admin@example.com", Name: "Admin", Role: model.RoleAdmin, IsActive: true}
	manager := &model.User{Email: "manager@example.com", Name: "Manager", Role: model.RolePropertyManager, IsActive: true}
	require.NoError(t, store.CreateUser(ctx, admin))
	require.NoError(t, store.CreateUser(ctx, manager))

	ref := refdata.New(store)
	audit := NewImportAudit(store, nil, nil)
	return &fixture{
		ctx:        ctx,
		store:      store,
		admin:      admin,
		manager:    manager,
		audit:      audit,
		properties: NewPropertyService(store, ref, audit, nil),
		units:      NewRentalUnitService(store, ref, audit),
		assets:     NewAssetService(store, ref, audit),
	}
}

func propertyInput(name string, quota int) PropertyInput {
	return PropertyInput{
		Name:                name,
		Type:                "villa",
		Street:              name + " Street",
		City:                "Male",
		Island:              "Male",
		NumberOfFloors:      2,
		NumberOfRentalUnits: quota,
		Bedrooms:            4,
		Bathrooms:           3,
	}
}

func (f *fixture) createProperty(t *testing.T, name string, quota int) *model.Property {
	t.Helper()
	p, err := f.properties.Create(f.ctx, f.admin, propertyInput(name, quota))
	require.NoError(t, err)
	return p
}

func unitInput(propertyID uint, number string) UnitInput {
	rent := decimal.NewFromInt(8500)
	return UnitInput{
		PropertyID:    propertyID,
		UnitNumber:    number,
		RentAmount:    &rent,
		Currency:      "MVR",
		NumberOfRooms: 1,
	}
}

func requireAppError(t *testing.T, err error, status int) *apperror.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperror.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	require.Equal(t, status, appErr.StatusCode)
	return appErr
}

func mapping(fields ...importer.Field) importer.FieldMapping {
	m := make(importer.FieldMapping, len(fields))
	for i, f := range fields {
		m[i] = importer.ColumnMapping{Column: i, Field: f}
	}
	return m
}
