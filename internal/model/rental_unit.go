package model

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type UnitType string

const (
	UnitTypeResidential UnitType = "residential"
	UnitTypeOffice      UnitType = "office"
	UnitTypeShop        UnitType = "shop"
	UnitTypeWarehouse   UnitType = "warehouse"
	UnitTypeOther       UnitType = "other"
)

type RentalUnitStatus string

const (
	UnitStatusAvailable   RentalUnitStatus = "available"
	UnitStatusOccupied    RentalUnitStatus = "occupied"
	UnitStatusMaintenance RentalUnitStatus = "maintenance"
	UnitStatusRenovation  RentalUnitStatus = "renovation"
	UnitStatusDeactivated RentalUnitStatus = "deactivated"
)

const DefaultCurrency = "MVR"

var (
	ErrOccupiedWithoutTenant = errors.New("an occupied rental unit must have a tenant")
	ErrTenantOnFreeUnit      = errors.New("a rental unit with a tenant must be occupied")
)

type RentalUnit struct {
	gorm.Model
	PropertyID      uint     `json:"property_id" gorm:"not null;uniqueIndex:idx_property_unit_number,where:deleted_at IS NULL"`
	UnitNumber      string   `json:"unit_number" gorm:"size:50;not null;uniqueIndex:idx_property_unit_number,where:deleted_at IS NULL"`
	UnitType        UnitType `json:"unit_type" gorm:"size:20;not null"`
	FloorNumber     int      `json:"floor_number" gorm:"default:1"`
	NumberOfRooms   int      `json:"number_of_rooms" gorm:"default:0"`
	NumberOfToilets int      `json:"number_of_toilets" gorm:"default:0"`
	SquareFeet      *float64 `json:"square_feet"`

	RentAmount    decimal.Decimal `json:"rent_amount" gorm:"type:decimal(12,2);not null"`
	DepositAmount decimal.Decimal `json:"deposit_amount" gorm:"type:decimal(12,2);not null"`
	Currency      string          `json:"currency" gorm:"size:10;not null;default:MVR"`

	WaterMeterNumber          string `json:"water_meter_number" gorm:"size:100"`
	WaterBillingAccount       string `json:"water_billing_account" gorm:"size:100"`
	ElectricityMeterNumber    string `json:"electricity_meter_number" gorm:"size:100"`
	ElectricityBillingAccount string `json:"electricity_billing_account" gorm:"size:100"`

	Status       RentalUnitStatus `json:"status" gorm:"size:20;not null;default:available"`
	TenantID     *uint            `json:"tenant_id" gorm:"index"`
	MoveInDate   *time.Time       `json:"move_in_date" gorm:"type:date"`
	LeaseEndDate *time.Time       `json:"lease_end_date" gorm:"type:date"`
	Amenities    datatypes.JSON   `json:"amenities"`
	Photos       datatypes.JSON   `json:"photos"`
	Notes        string           `json:"notes" gorm:"type:text"`
	IsActive     bool             `json:"is_active" gorm:"default:true"`

	// virgülle ayrılmış kart listesi; kaynak AccessCards tablosudur
	AccessCardNumbers string `json:"access_card_numbers" gorm:"-"`

	// İlişkiler
	Property    *Property         `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	AccessCards []AccessCard      `json:"-" gorm:"foreignKey:RentalUnitID;constraint:OnDelete:CASCADE"`
	Assets      []RentalUnitAsset `json:"assets,omitempty" gorm:"foreignKey:RentalUnitID"`
}

// AccessCard is one access card number assigned to a unit. Numbers are unique
// across all units.
type AccessCard struct {
	ID           uint      `json:"id" gorm:"primarykey"`
	RentalUnitID uint      `json:"rental_unit_id" gorm:"not null;index"`
	Number       string    `json:"number" gorm:"size:100;not null;uniqueIndex"`
	CreatedAt    time.Time `json:"created_at"`
}

// CheckOccupancy enforces occupied <=> tenant assigned.
func (u *RentalUnit) CheckOccupancy() error {
	if u.Status == UnitStatusOccupied && u.TenantID == nil {
		return ErrOccupiedWithoutTenant
	}
	if u.Status != UnitStatusOccupied && u.TenantID != nil {
		return ErrTenantOnFreeUnit
	}
	return nil
}

func (u *RentalUnit) BeforeSave(tx *gorm.DB) error {
	return u.CheckOccupancy()
}

func (u *RentalUnit) AfterFind(tx *gorm.DB) error {
	u.SyncCardNumbers()
	return nil
}

// SetCards replaces the unit's access card rows with numbers.
func (u *RentalUnit) SetCards(numbers []string) {
	u.AccessCards = make([]AccessCard, 0, len(numbers))
	for _, n := range numbers {
		u.AccessCards = append(u.AccessCards, AccessCard{RentalUnitID: u.ID, Number: n})
	}
	u.SyncCardNumbers()
}

func (u *RentalUnit) SyncCardNumbers() {
	numbers := make([]string, 0, len(u.AccessCards))
	for _, c := range u.AccessCards {
		numbers = append(numbers, c.Number)
	}
	u.AccessCardNumbers = strings.Join(numbers, ",")
}

// ParseCardNumbers splits "A1, A2,,A3" into trimmed non-empty numbers.
func ParseCardNumbers(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if n := strings.TrimSpace(part); n != "" {
			out = append(out, n)
		}
	}
	return out
}
