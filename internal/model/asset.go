package model

import (
	"time"

	"gorm.io/gorm"
)

type AssetCategory string

const (
	AssetCategoryFurniture   AssetCategory = "furniture"
	AssetCategoryAppliance   AssetCategory = "appliance"
	AssetCategoryElectronics AssetCategory = "electronics"
	AssetCategoryPlumbing    AssetCategory = "plumbing"
	AssetCategoryElectrical  AssetCategory = "electrical"
	AssetCategoryHVAC        AssetCategory = "hvac"
	AssetCategorySecurity    AssetCategory = "security"
	AssetCategoryOther       AssetCategory = "other"
)

type AssetStatus string

const (
	AssetStatusWorking     AssetStatus = "working"
	AssetStatusFaulty      AssetStatus = "faulty"
	AssetStatusMaintenance AssetStatus = "maintenance"
	AssetStatusRetired     AssetStatus = "retired"
)

// Asset katalog kaydı; (name, serial_no) çifti tekildir, seri no yoksa NULL
type Asset struct {
	gorm.Model
	Name        string        `json:"name" gorm:"size:255;not null;index:idx_asset_name_serial"`
	Brand       string        `json:"brand" gorm:"size:255"`
	SerialNo    *string       `json:"serial_no" gorm:"size:255;index:idx_asset_name_serial"`
	Category    AssetCategory `json:"category" gorm:"size:20;not null"`
	Status      AssetStatus   `json:"status" gorm:"size:20;not null;default:working"`
	Description string        `json:"description" gorm:"type:text"`
}

// RentalUnitAsset is one placement of an asset in a unit. The same asset may be
// placed in a unit several times.
type RentalUnitAsset struct {
	gorm.Model
	RentalUnitID     uint        `json:"rental_unit_id" gorm:"not null;index"`
	AssetID          uint        `json:"asset_id" gorm:"not null;index"`
	Quantity         int         `json:"quantity" gorm:"not null;default:1"`
	SerialNumbers    string      `json:"serial_numbers"`
	AssetLocation    string      `json:"asset_location" gorm:"size:255"`
	InstallationDate *time.Time  `json:"installation_date" gorm:"type:date"`
	Status           AssetStatus `json:"status" gorm:"size:20;not null;default:working"`
	Notes            string      `json:"notes" gorm:"type:text"`
	IsActive         bool        `json:"is_active" gorm:"default:true"`

	Asset *Asset `json:"asset,omitempty" gorm:"foreignKey:AssetID"`
}
