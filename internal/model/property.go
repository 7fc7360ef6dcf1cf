package model

import (
	"strings"

	"gorm.io/gorm"
)

// PropertyStatus mülkün doluluk durumu
type PropertyStatus string

const (
	PropertyStatusOccupied    PropertyStatus = "occupied"
	PropertyStatusVacant      PropertyStatus = "vacant"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
	PropertyStatusRenovation  PropertyStatus = "renovation"
)

const DefaultCountry = "Maldives"

type Property struct {
	gorm.Model
	Name        string         `json:"name" gorm:"size:255;not null;index"`
	Type        string         `json:"type" gorm:"size:100;not null"`
	Street      string         `json:"street" gorm:"size:255;not null;index:idx_property_address"`
	City        string         `json:"city" gorm:"size:255;not null"`
	Island      string         `json:"island" gorm:"size:255;not null;index:idx_property_address"`
	PostalCode  string         `json:"postal_code" gorm:"size:20"`
	Country     string         `json:"country" gorm:"size:100;default:Maldives"`
	Description string         `json:"description" gorm:"type:text"`
	Status      PropertyStatus `json:"status" gorm:"size:20;not null;default:vacant"`

	NumberOfFloors      int  `json:"number_of_floors" gorm:"not null"`
	NumberOfRentalUnits int  `json:"number_of_rental_units" gorm:"not null"` // kapasite (birim kotası)
	Bedrooms            int  `json:"bedrooms" gorm:"not null"`
	Bathrooms           int  `json:"bathrooms" gorm:"not null"`
	SquareFeet          *int `json:"square_feet"`
	YearBuilt           *int `json:"year_built"`

	AssignedManagerID *uint `json:"assigned_manager_id" gorm:"index"`
	IsActive          bool  `json:"is_active" gorm:"default:true"`

	RentalUnitsCount int64 `json:"rental_units_count" gorm:"-"`

	// İlişkiler
	AssignedManager *User           `json:"assigned_manager,omitempty" gorm:"foreignKey:AssignedManagerID"`
	Photos          []PropertyPhoto `json:"photos,omitempty" gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE"`
}

type PropertyPhoto struct {
	gorm.Model
	PropertyID uint   `json:"property_id" gorm:"index"`
	URL        string `json:"url" gorm:"not null"`
	IsCover    bool   `json:"is_cover" gorm:"default:false"`
	Order      int    `json:"order" gorm:"default:0"`
}

// NormalizeName is the key used for case and whitespace insensitive name comparison.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// StatusFromUnits mülk durumunu birimlerin doluluğuna göre hesaplar
func StatusFromUnits(units []RentalUnit) PropertyStatus {
	for _, u := range units {
		if u.Status == UnitStatusOccupied {
			return PropertyStatusOccupied
		}
	}
	return PropertyStatusVacant
}

// RemainingUnits is the unit quota left after existing units.
func (p *Property) RemainingUnits(existing int64) int {
	return p.NumberOfRentalUnits - int(existing)
}
