package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func gormModel(id uint) gorm.Model {
	return gorm.Model{ID: id}
}

func TestStatusFromUnits(t *testing.T) {
	assert.Equal(t, PropertyStatusVacant, StatusFromUnits(nil))
	assert.Equal(t, PropertyStatusVacant, StatusFromUnits([]RentalUnit{{Status: UnitStatusMaintenance}, {Status: UnitStatusAvailable}}))
	assert.Equal(t, PropertyStatusOccupied, StatusFromUnits([]RentalUnit{{Status: UnitStatusAvailable}, {Status: UnitStatusOccupied}}))
}

func TestCheckOccupancy(t *testing.T) {
	tenant := uint(3)
	assert.ErrorIs(t, (&RentalUnit{Status: UnitStatusOccupied}).CheckOccupancy(), ErrOccupiedWithoutTenant)
	assert.ErrorIs(t, (&RentalUnit{Status: UnitStatusAvailable, TenantID: &tenant}).CheckOccupancy(), ErrTenantOnFreeUnit)
	assert.NoError(t, (&RentalUnit{Status: UnitStatusOccupied, TenantID: &tenant}).CheckOccupancy())
}

func TestCardNumbers(t *testing.T) {
	assert.Equal(t, []string{"A1", "A2", "A3"}, ParseCardNumbers(" A1, A2,,A3 "))
	assert.Nil(t, ParseCardNumbers(" , "))

	u := &RentalUnit{}
	u.SetCards([]string{"C-1", "C-2"})
	assert.Equal(t, "C-1,C-2", u.AccessCardNumbers)
	assert.Len(t, u.AccessCards, 2)
}

func TestCanManage(t *testing.T) {
	managerID := uint(5)
	p := &Property{AssignedManagerID: &managerID}

	assert.True(t, (&User{Role: RoleAdmin}).CanManage(p))
	assert.True(t, (&User{Model: gormModel(5), Role: RolePropertyManager}).CanManage(p))
	assert.False(t, (&User{Model: gormModel(6), Role: RolePropertyManager}).CanManage(p))
	assert.False(t, (&User{Model: gormModel(5), Role: RolePropertyManager}).CanManage(&Property{}))
}

func TestRemainingUnits(t *testing.T) {
	p := &Property{NumberOfRentalUnits: 4}
	assert.Equal(t, 1, p.RemainingUnits(3))
	assert.Equal(t, -1, p.RemainingUnits(5))
}
