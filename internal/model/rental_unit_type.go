package model

import "gorm.io/gorm"

type TypeCategory string

const (
	TypeCategoryProperty TypeCategory = "property"
	TypeCategoryUnit     TypeCategory = "unit"
)

// RentalUnitType is a managed lookup entry. Active entries in the "property"
// category are the valid values of Property.Type.
type RentalUnitType struct {
	gorm.Model
	Name        string       `json:"name" gorm:"size:100;not null;uniqueIndex:idx_type_name_category"`
	Category    TypeCategory `json:"category" gorm:"size:20;not null;uniqueIndex:idx_type_name_category"`
	Description string       `json:"description" gorm:"type:text"`
	IsActive    bool         `json:"is_active" gorm:"default:true"`
}
